package config

import (
	"errors"
	"strings"
)

const (
	secretService = "flyerctl"
	secretAccount = "api_token"
)

// ErrNoToken is returned when no bearer token has been stored yet.
var ErrNoToken = errors.New("no API token stored; run `flyerctl login` first")

// GetAPIToken returns the stored bearer token. The FLYERCTL_API_TOKEN
// environment variable takes precedence over the platform secret store,
// which keeps CI and scripted use out of the login flow.
func GetAPIToken() (string, error) {
	if t := envToken(); t != "" {
		return t, nil
	}
	data, err := secretGet(secretService, secretAccount)
	if err != nil {
		return "", ErrNoToken
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// SaveAPIToken persists the bearer token in the platform secret store:
// macOS Keychain on darwin, a 0600 secrets file elsewhere.
func SaveAPIToken(token string) error {
	return secretSet(secretService, secretAccount, token)
}

// DeleteAPIToken removes the stored bearer token. Deleting a token that was
// never stored is not an error.
func DeleteAPIToken() error {
	return secretDelete(secretService, secretAccount)
}

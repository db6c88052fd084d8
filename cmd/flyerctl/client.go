package main

import (
	"errors"
	"fmt"

	"github.com/flyerdeck/flyerctl/internal/config"
	"github.com/flyerdeck/flyerctl/internal/flyerapi"
)

// newAPIClient builds an authenticated dashboard client from config and the
// stored bearer token. Overridable in tests.
var newAPIClient = func() (*flyerapi.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	token, err := config.GetAPIToken()
	if err != nil {
		if errors.Is(err, config.ErrNoToken) {
			return nil, err
		}
		return nil, fmt.Errorf("getting API token: %w", err)
	}

	return flyerapi.New(cfg.API.BaseURL, token), nil
}

// newAnonClient builds an unauthenticated client, used only by login.
var newAnonClient = func() (*flyerapi.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return flyerapi.New(cfg.API.BaseURL, ""), nil
}

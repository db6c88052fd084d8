//go:build darwin

package config

import (
	"fmt"
	"os"
	"os/exec"
)

func envToken() string {
	return os.Getenv("FLYERCTL_API_TOKEN")
}

func secretGet(service, account string) ([]byte, error) {
	return exec.Command(
		"security", "find-generic-password",
		"-s", service,
		"-a", account,
		"-w",
	).Output()
}

func secretSet(service, account, value string) error {
	// -U updates an existing item instead of failing.
	out, err := exec.Command(
		"security", "add-generic-password",
		"-U",
		"-s", service,
		"-a", account,
		"-w", value,
	).CombinedOutput()
	if err != nil {
		return fmt.Errorf("writing to keychain: %w, output: %s", err, out)
	}
	return nil
}

func secretDelete(service, account string) error {
	// Absent items are fine; deletion is idempotent.
	_ = exec.Command(
		"security", "delete-generic-password",
		"-s", service,
		"-a", account,
	).Run()
	return nil
}

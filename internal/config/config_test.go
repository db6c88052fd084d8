package config

import (
	"testing"
	"time"
)

// fakeBackend is an in-memory ConfigBackend for tests.
type fakeBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		strings: make(map[string]string),
		ints:    make(map[string]int),
	}
}

func (f *fakeBackend) GetString(key string) (string, bool, error) {
	v, ok := f.strings[key]
	return v, ok, nil
}

func (f *fakeBackend) GetInt(key string) (int, bool, error) {
	v, ok := f.ints[key]
	return v, ok, nil
}

func (f *fakeBackend) SetString(key, value string) error {
	f.strings[key] = value
	return nil
}

func (f *fakeBackend) SetInt(key string, value int) error {
	f.ints[key] = value
	return nil
}

func (f *fakeBackend) Delete(key string) error {
	delete(f.strings, key)
	delete(f.ints, key)
	return nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
	t.Setenv("FLYERCTL_API_TOKEN", "")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newFakeBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.API.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.Poll.Interval != "3s" {
		t.Errorf("Poll.Interval = %q, want 3s", cfg.Poll.Interval)
	}
	if cfg.Poll.MaxAttempts != 60 {
		t.Errorf("Poll.MaxAttempts = %d, want 60", cfg.Poll.MaxAttempts)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadBackendValues(t *testing.T) {
	clearEnv(t)

	b := newFakeBackend()
	b.strings["api.base_url"] = "https://dashboard.example.com"
	b.strings["poll.interval"] = "500ms"
	b.ints["poll.max_attempts"] = 10
	b.strings["log.level"] = "debug"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.API.BaseURL != "https://dashboard.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Poll.Interval != "500ms" {
		t.Errorf("Poll.Interval = %q", cfg.Poll.Interval)
	}
	if cfg.Poll.MaxAttempts != 10 {
		t.Errorf("Poll.MaxAttempts = %d", cfg.Poll.MaxAttempts)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	clearEnv(t)

	b := newFakeBackend()
	b.strings["api.base_url"] = "https://from-backend.example.com"
	b.ints["poll.max_attempts"] = 10

	t.Setenv("FLYERCTL_API_BASE_URL", "https://from-env.example.com")
	t.Setenv("FLYERCTL_POLL_MAX_ATTEMPTS", "25")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}

	if cfg.API.BaseURL != "https://from-env.example.com" {
		t.Errorf("BaseURL = %q, env should win over backend", cfg.API.BaseURL)
	}
	if cfg.Poll.MaxAttempts != 25 {
		t.Errorf("Poll.MaxAttempts = %d, env should win over backend", cfg.Poll.MaxAttempts)
	}
}

func TestBadIntEnvKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLYERCTL_POLL_MAX_ATTEMPTS", "lots")

	cfg, err := loadWith(newFakeBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Poll.MaxAttempts != 60 {
		t.Errorf("Poll.MaxAttempts = %d, want default on unparsable env", cfg.Poll.MaxAttempts)
	}
}

func TestMissingBaseURLFails(t *testing.T) {
	clearEnv(t)

	b := newFakeBackend()
	b.strings["api.base_url"] = ""

	// A backend value of "" is still "present" and so clears the default.
	if _, err := loadWith(b); err == nil {
		t.Fatal("expected error for empty api.base_url")
	}
}

func TestIntervalDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"3s", 3 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"1m", time.Minute},
		{"", 3 * time.Second},
		{"soon", 3 * time.Second},
		{"-5s", 3 * time.Second},
	}
	for _, c := range cases {
		got := PollConfig{Interval: c.in}.IntervalDuration()
		if got != c.want {
			t.Errorf("IntervalDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestShowAllListsEveryKey(t *testing.T) {
	cfg := defaults()
	infos := ShowAll(cfg)

	if len(infos) != len(specs) {
		t.Fatalf("ShowAll returned %d entries, want %d", len(infos), len(specs))
	}
	seen := make(map[string]bool)
	for _, ki := range infos {
		seen[ki.Key] = true
		if ki.Key == "api.token" {
			t.Error("token must never appear in config listing")
		}
	}
	for _, k := range ValidKeys() {
		if !seen[k] {
			t.Errorf("key %s missing from ShowAll", k)
		}
	}
}

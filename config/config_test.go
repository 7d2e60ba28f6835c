package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidateYAMLContent_ValidConfig(t *testing.T) {
	t.Parallel()

	content := []byte(`
service:
  url: "https://timesheet.example.com"
  token: "abc123"
  timeout_seconds: 20

directory:
  url: "https://directory.example.com"

storage:
  path: "/tmp/timepunch.db"

tracking:
  default_type: "weekly"

billing:
  default_hourly_rate: 45.5

sync:
  auto_reconcile: false
`)

	cfg, err := ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("validate config: %v", err)
	}
	if cfg.Service.URL != "https://timesheet.example.com" {
		t.Fatalf("unexpected service url: %q", cfg.Service.URL)
	}
	if cfg.Service.Timeout() != 20*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Service.Timeout())
	}
	if cfg.DirectoryURL() != "https://directory.example.com" {
		t.Fatalf("unexpected directory url: %q", cfg.DirectoryURL())
	}
	if cfg.Tracking.DefaultType != "weekly" {
		t.Fatalf("unexpected tracking type: %q", cfg.Tracking.DefaultType)
	}
	if cfg.Sync.AutoReconcile {
		t.Fatalf("expected auto_reconcile to be disabled")
	}
}

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(`
service:
  url: "https://timesheet.example.com"
`))
	if err != nil {
		t.Fatalf("validate config: %v", err)
	}
	if cfg.Service.Timeout() != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Service.Timeout())
	}
	if cfg.Storage.Path != "timepunch.db" {
		t.Fatalf("expected default storage path, got %q", cfg.Storage.Path)
	}
	if cfg.Tracking.DefaultType != "hourly" {
		t.Fatalf("expected default tracking type, got %q", cfg.Tracking.DefaultType)
	}
	if !cfg.Sync.AutoReconcile {
		t.Fatalf("expected auto_reconcile default to be enabled")
	}
	if cfg.DirectoryURL() != cfg.Service.URL {
		t.Fatalf("expected directory fallback to service url, got %q", cfg.DirectoryURL())
	}
}

func TestValidateYAMLContent_MissingServiceURL(t *testing.T) {
	t.Parallel()

	_, err := ValidateYAMLContent([]byte(`
storage:
  path: "timepunch.db"
`))
	if err == nil {
		t.Fatalf("expected validation failure without service.url")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_InvalidServiceURL(t *testing.T) {
	t.Parallel()

	_, err := ValidateYAMLContent([]byte(`
service:
  url: "not a url"
`))
	if err == nil {
		t.Fatalf("expected validation failure for malformed url")
	}
}

func TestValidateYAMLContent_UnknownTrackingType(t *testing.T) {
	t.Parallel()

	_, err := ValidateYAMLContent([]byte(`
service:
  url: "https://timesheet.example.com"

tracking:
  default_type: "fortnightly"
`))
	if err == nil {
		t.Fatalf("expected validation failure for unknown tracking type")
	}
	if !strings.Contains(err.Error(), "fortnightly") {
		t.Fatalf("error does not name the offending value: %v", err)
	}
}

func TestExampleYAML_Validates(t *testing.T) {
	t.Parallel()

	if _, err := ValidateYAMLContent([]byte(ExampleYAML())); err != nil {
		t.Fatalf("example config must validate: %v", err)
	}
}

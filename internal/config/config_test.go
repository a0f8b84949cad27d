package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmswain/bindery/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "bindery"
user = "bindery"
password = "bindery"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[storage]
container_name = "yearbooks"
connection_string = "DefaultEndpointsProtocol=http;AccountName=binderystore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/binderystore;"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[pipeline]
max_attempts = 3
dispatch_timeout = "10s"
safety_url = "http://scanner:9001/scan"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[pipeline]
max_attempts = 5
`

const minimalConfig = `
shutdown_timeout = "30s"

[database]
name = "bindery"
user = "bindery"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Storage.ContainerName != "yearbooks" {
		t.Errorf("storage container: got %s, want yearbooks", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Pipeline.MaxAttempts != 3 {
		t.Errorf("pipeline max_attempts: got %d, want 3", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.SafetyURL != "http://scanner:9001/scan" {
		t.Errorf("pipeline safety_url: got %s", cfg.Pipeline.SafetyURL)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvBinderyEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("overlay port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("overlay db host: got %s, want prodhost", cfg.Database.Host)
	}
	if cfg.Pipeline.MaxAttempts != 5 {
		t.Errorf("overlay max_attempts: got %d, want 5", cfg.Pipeline.MaxAttempts)
	}

	// Base values not in the overlay carry through.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("base host: got %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Database.Name != "bindery" {
		t.Errorf("base db name: got %s, want bindery", cfg.Database.Name)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("default base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.Storage.ContainerName != "yearbooks" {
		t.Errorf("default container: got %s, want yearbooks", cfg.Storage.ContainerName)
	}
	if cfg.Pipeline.MaxAttempts != 3 {
		t.Errorf("default max_attempts: got %d, want 3", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.DispatchTimeoutDuration() != 10*time.Second {
		t.Errorf("default dispatch_timeout: got %s", cfg.Pipeline.DispatchTimeout)
	}
	if cfg.API.OpenAPI.Title != "Bindery API" {
		t.Errorf("default openapi title: got %s", cfg.API.OpenAPI.Title)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	t.Setenv("BINDERY_SERVER_PORT", "3000")
	t.Setenv("BINDERY_DB_HOST", "envhost")
	t.Setenv("BINDERY_PIPELINE_MAX_ATTEMPTS", "7")
	t.Setenv("BINDERY_PIPELINE_OCR_URL", "http://ocr.internal/run")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("env port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Host != "envhost" {
		t.Errorf("env db host: got %s, want envhost", cfg.Database.Host)
	}
	if cfg.Pipeline.MaxAttempts != 7 {
		t.Errorf("env max_attempts: got %d, want 7", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.OCRURL != "http://ocr.internal/run" {
		t.Errorf("env ocr_url: got %s", cfg.Pipeline.OCRURL)
	}
}

func TestInvalidShutdownTimeout(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", strings.Replace(
		minimalConfig,
		`shutdown_timeout = "30s"`,
		`shutdown_timeout = "not-a-duration"`,
		1,
	))
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid shutdown_timeout")
	}
}

func TestInvalidPipelineConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig+`
[pipeline]
dispatch_timeout = "never"
`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid dispatch_timeout")
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %s, want 30s", cfg.ShutdownTimeoutDuration())
	}
}

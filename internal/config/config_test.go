package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "apiconfig"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ViewStyle != "grid" {
		t.Errorf("default ViewStyle = %q, want grid", cfg.ViewStyle)
	}
	if cfg.IsLoggedIn() {
		t.Error("defaults must not be logged in")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiconfig")

	cfg := NewConfig()
	cfg.APIURL = "https://drive.example.com/api.php"
	cfg.APIToken = "tok-123"
	cfg.Email = "me@example.com"
	cfg.ViewStyle = "list"
	cfg.DownloadDir = "/tmp/downloads"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, cfg)
	}
}

func TestSaveRestrictsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "apiconfig")
	if err := Save(NewConfig(), path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 0600", perm)
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "apiconfig")
	if err := Save(NewConfig(), path); err != nil {
		t.Fatalf("Save into missing directory: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestClearSessionPreservesSettings(t *testing.T) {
	cfg := &Config{
		APIURL:      "https://drive.example.com/api.php",
		APIToken:    "tok-123",
		Email:       "me@example.com",
		ViewStyle:   "list",
		DownloadDir: "/tmp/downloads",
	}

	cfg.ClearSession()

	if cfg.APIToken != "" || cfg.Email != "" {
		t.Error("ClearSession must drop credentials")
	}
	if cfg.APIURL == "" || cfg.ViewStyle != "list" || cfg.DownloadDir == "" {
		t.Error("ClearSession must keep URL and display settings")
	}
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != ErrMissingAPIURL {
		t.Errorf("Validate() = %v, want ErrMissingAPIURL", err)
	}

	cfg.APIURL = "https://drive.example.com/api.php"
	if err := cfg.Validate(); err != ErrNotLoggedIn {
		t.Errorf("Validate() = %v, want ErrNotLoggedIn", err)
	}

	cfg.APIToken = "tok"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

package config

import (
	"path/filepath"
	"testing"
)

func TestReadConfig(t *testing.T) {
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	cfg, err := ReadConfig(configPath)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	if cfg.Webserver.Session.ExpiryTime <= 0 {
		t.Error("Webserver.Session.ExpiryTime should be positive")
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	t.Setenv("BANDESK_CONFIG_JSON", `{"Title":"overridden","Webserver":{"Port":9999}}`)

	cfg, err := ReadConfig(configPath)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "overridden" {
		t.Errorf("Title = %q, want %q", cfg.Title, "overridden")
	}

	if cfg.Webserver.Port != 9999 {
		t.Errorf("Webserver.Port = %d, want 9999", cfg.Webserver.Port)
	}

	// fields absent from the JSON keep their file values
	if cfg.DB.Host == "" {
		t.Error("DB.Host should keep its file value")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig(t.TempDir() + string(filepath.Separator)); err == nil {
		t.Error("ReadConfig() with missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{}
	valid.Webserver.Port = 8080
	valid.Webserver.URL = "http://localhost:8080"

	if err := validate(valid); err != nil {
		t.Errorf("validate() on valid config = %v", err)
	}

	noPort := valid
	noPort.Webserver.Port = 0

	if err := validate(noPort); err == nil {
		t.Error("validate() should reject port 0")
	}

	noURL := valid
	noURL.Webserver.URL = ""

	if err := validate(noURL); err == nil {
		t.Error("validate() should reject empty URL")
	}
}

func TestDumpConfig(t *testing.T) {
	c := Config{Title: "BanDesk"}

	out, err := DumpConfig(c)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if out == "" {
		t.Error("DumpConfig() should not be empty")
	}
}

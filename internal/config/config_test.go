package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `{
		"feed_url": "https://example.com/ostatki.zip",
		"data_dir": "/tmp/sellersync",
		"interval_minutes": 30,
		"ozon": {"client_id": "12345", "api_key": "secret"},
		"market": {
			"token": "mtoken",
			"fbs": {"campaign_id": "111", "warehouse_id": 10},
			"dbs": {"campaign_id": "222", "warehouse_id": 20}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OzonEnabled() || !cfg.FBSEnabled() || !cfg.DBSEnabled() {
		t.Fatalf("targets not enabled: %+v", cfg)
	}
	if cfg.Market.FBS.WarehouseID != 10 || cfg.IntervalMinutes != 30 {
		t.Fatalf("unexpected: %+v", cfg)
	}
	if cfg.NotifyEnabled() {
		t.Fatal("telegram must be disabled without credentials")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `{"ozon": {"client_id": "old", "api_key": "old"}}`)
	t.Setenv("CLIENT_ID", "67890")
	t.Setenv("SELLER_TOKEN", "fresh")
	t.Setenv("MARKET_TOKEN", "mtoken")
	t.Setenv("FBS_ID", "333")
	t.Setenv("WAREHOUSE_FBS_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ozon.ClientID != "67890" || cfg.Ozon.APIKey != "fresh" {
		t.Fatalf("env must override file: %+v", cfg.Ozon)
	}
	if !cfg.FBSEnabled() || cfg.Market.FBS.WarehouseID != 42 {
		t.Fatalf("unexpected market config: %+v", cfg.Market)
	}
	if cfg.DBSEnabled() {
		t.Fatal("dbs must stay disabled without a campaign id")
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("CLIENT_ID", "1")
	t.Setenv("SELLER_TOKEN", "2")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OzonEnabled() {
		t.Fatalf("unexpected: %+v", cfg)
	}
	if cfg.DataDir == "" {
		t.Fatal("data dir default missing")
	}
}

func TestLoadNoTargets(t *testing.T) {
	for _, k := range []string{"CLIENT_ID", "SELLER_TOKEN", "MARKET_TOKEN", "FBS_ID", "DBS_ID"} {
		t.Setenv(k, "")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error when no target is configured")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

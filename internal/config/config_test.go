package config

import (
	"context"
	"os"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// clearEnv blanks the variables that would leak host configuration into a
// test. t.Setenv restores the originals on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "ENVIRONMENT", "LOG_LEVEL",
		"GCP_PROJECT", "SECRET_NAME",
		"FOXY_WEBFLOW_LIMIT", "FOXY_SKIP_UPDATEINFO_NAME",
		"FOXY_WEBFLOW_TOKEN", "WEBFLOW_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FOXY_WEBHOOK_ENCRYPTION_KEY", "secret")
	t.Setenv("FOXY_ORDERDESK_API_KEY", "od-key")
	t.Setenv("FOXY_ORDERDESK_STORE_ID", "od-store")
	t.Setenv("FOXY_WEBFLOW_TOKEN", "wf-token")
	t.Setenv("FOXY_SKIP_PRICE_CODES", "A,B")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Foxy.EncryptionKey != "secret" {
		t.Errorf("EncryptionKey = %q", cfg.Foxy.EncryptionKey)
	}
	if cfg.OrderDesk.APIKey != "od-key" || cfg.OrderDesk.StoreID != "od-store" {
		t.Errorf("OrderDesk = %+v", cfg.OrderDesk)
	}
	if cfg.Datastore.SkipPriceCodes != "A,B" {
		t.Errorf("SkipPriceCodes = %q", cfg.Datastore.SkipPriceCodes)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Webflow.PageLimit != DefaultWebflowPageLimit {
		t.Errorf("PageLimit = %d, want %d", cfg.Webflow.PageLimit, DefaultWebflowPageLimit)
	}
	if cfg.Datastore.UpdateInfoName != DefaultUpdateInfoName {
		t.Errorf("UpdateInfoName = %q", cfg.Datastore.UpdateInfoName)
	}
}

func TestLegacyEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEBFLOW_TOKEN", "legacy-token")
	t.Setenv("FX_FIELD_CODE", "sku")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Webflow.Token != "legacy-token" {
		t.Errorf("Token = %q, want legacy spelling honored", cfg.Webflow.Token)
	}
	if cfg.Datastore.FieldCode != "sku" {
		t.Errorf("FieldCode = %q, want sku", cfg.Datastore.FieldCode)
	}
}

func TestPreferredOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOXY_WEBFLOW_TOKEN", "new-token")
	t.Setenv("WEBFLOW_TOKEN", "legacy-token")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Webflow.Token != "new-token" {
		t.Errorf("Token = %q, want FOXY_ spelling to win", cfg.Webflow.Token)
	}
}

func TestProductionRequiresGCPSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	if _, err := Load(context.Background()); err == nil {
		t.Error("Load() in production without GCP_PROJECT should fail")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := t.TempDir() + "/config.json"
	writeFile(t, path, `{
		"port": "7070",
		"foxy": {"encryption_key": "file-secret"},
		"webflow": {"page_limit": 50}
	}`)
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %q, want 7070", cfg.Port)
	}
	if cfg.Foxy.EncryptionKey != "file-secret" {
		t.Errorf("EncryptionKey = %q", cfg.Foxy.EncryptionKey)
	}
	if cfg.Webflow.PageLimit != 50 {
		t.Errorf("PageLimit = %d, want 50", cfg.Webflow.PageLimit)
	}
}

func TestLoadFromFileInvalidJSON(t *testing.T) {
	clearEnv(t)
	path := t.TempDir() + "/config.json"
	writeFile(t, path, `{not json`)
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(context.Background()); err == nil {
		t.Error("Load() with malformed config file should fail")
	}
}

func TestFieldOverrides(t *testing.T) {
	cfg := &Config{Datastore: DatastoreConfig{
		FieldCode:      "sku",
		FieldInventory: "on-hand",
	}}
	overrides := cfg.FieldOverrides()
	if overrides["code"] != "sku" {
		t.Errorf("code override = %q", overrides["code"])
	}
	if overrides["inventory"] != "on-hand" {
		t.Errorf("inventory override = %q", overrides["inventory"])
	}
	if _, ok := overrides["price"]; ok {
		t.Error("unset price override should be absent")
	}
}

// Package config handles loading and validation of service configuration.
// Supports both development (env vars, optional JSON file) and production
// (GCP Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/go-playground/validator/v10"
)

// Config holds all service configuration. Built once at startup and passed
// by reference into each component; never mutated after construction.
type Config struct {
	// Server settings
	Port        string `json:"port"`
	Environment string `json:"environment" validate:"oneof=development production"`
	LogLevel    string `json:"log_level" validate:"oneof=debug info warn error"`

	// GCP settings (required in production)
	GCPProject string `json:"gcp_project"`
	SecretName string `json:"secret_name"`

	Foxy          FoxyConfig          `json:"foxy"`
	OrderDesk     OrderDeskConfig     `json:"orderdesk"`
	Webflow       WebflowConfig       `json:"webflow"`
	Wix           WixConfig           `json:"wix"`
	Shiptheory    ShiptheoryConfig    `json:"shiptheory"`
	IdevAffiliate IdevAffiliateConfig `json:"idevaffiliate"`
	Lune          LuneConfig          `json:"lune"`
	Datastore     DatastoreConfig     `json:"datastore"`
}

// FoxyConfig carries the shared webhook secret. An empty key disables
// signature verification (with a logged warning).
type FoxyConfig struct {
	EncryptionKey string `json:"encryption_key"`
}

// OrderDeskConfig holds OrderDesk API credentials.
type OrderDeskConfig struct {
	APIKey  string `json:"api_key"`
	StoreID string `json:"store_id"`
}

// WebflowConfig holds the Webflow CMS token and collection settings.
type WebflowConfig struct {
	Token        string `json:"token"`
	CollectionID string `json:"collection_id"`
	PageLimit    int    `json:"page_limit" validate:"gte=0,lte=100"`
}

// WixConfig holds Wix stores-reader credentials.
type WixConfig struct {
	APIKey    string `json:"api_key"`
	AccountID string `json:"account_id"`
	SiteID    string `json:"site_id"`
}

// ShiptheoryConfig holds Shiptheory login credentials.
type ShiptheoryConfig struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IdevAffiliateConfig holds the idevAffiliate endpoint and key.
type IdevAffiliateConfig struct {
	APIURL    string `json:"api_url" validate:"omitempty,url"`
	SecretKey string `json:"secret_key"`
}

// LuneConfig holds the Lune API key.
type LuneConfig struct {
	APIKey string `json:"api_key"`
}

// DatastoreConfig carries the validation tuning shared by all catalog
// integrations: field-name overrides, skip lists and message templates.
type DatastoreConfig struct {
	// Field-name overrides for catalogs with custom field names.
	FieldCode      string `json:"field_code"`
	FieldPrice     string `json:"field_price"`
	FieldInventory string `json:"field_inventory"`

	// Comma-separated code lists, or the __ALL__ sentinel.
	SkipPriceCodes           string `json:"skip_price_codes"`
	SkipInventoryCodes       string `json:"skip_inventory_codes"`
	SkipInventoryUpdateCodes string `json:"skip_inventory_update_codes"`

	// Custom error message templates.
	ErrorInsufficientInventory string `json:"error_insufficient_inventory"`
	ErrorPriceMismatch         string `json:"error_price_mismatch"`

	// Name of the pseudo-item some carts carry for customer-info updates;
	// filtered out before validation.
	UpdateInfoName string `json:"update_info_name"`
}

// DefaultWebflowPageLimit is the collection page size used when none is
// configured.
const DefaultWebflowPageLimit = 100

// DefaultUpdateInfoName matches the pseudo-item name Foxy templates use.
const DefaultUpdateInfoName = "Update Your Customer Information"

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → env vars, plus Secret Manager overlay in
// production. Validates the result and returns an error if it is unusable.
func Load(ctx context.Context) (*Config, error) {
	var cfg *Config
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		loaded, err := loadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = loadFromEnv()
	}

	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if cfg.SecretName == "" {
			return nil, fmt.Errorf("SECRET_NAME required in production environment")
		}
		if err := cfg.loadFromSecretManager(ctx); err != nil {
			return nil, fmt.Errorf("loading secrets: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file. Used for local
// development to avoid a long list of env vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

// loadFromEnv reads configuration from environment variables. Several keys
// accept a legacy FX_-prefixed spelling kept for older deployments.
func loadFromEnv() *Config {
	return &Config{
		Port:        envOrDefault("PORT", "8080"),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		SecretName:  os.Getenv("SECRET_NAME"),
		Foxy: FoxyConfig{
			EncryptionKey: os.Getenv("FOXY_WEBHOOK_ENCRYPTION_KEY"),
		},
		OrderDesk: OrderDeskConfig{
			APIKey:  os.Getenv("FOXY_ORDERDESK_API_KEY"),
			StoreID: os.Getenv("FOXY_ORDERDESK_STORE_ID"),
		},
		Webflow: WebflowConfig{
			Token:        envOrLegacy("FOXY_WEBFLOW_TOKEN", "WEBFLOW_TOKEN"),
			CollectionID: envOrLegacy("FOXY_WEBFLOW_COLLECTION", "WEBFLOW_COLLECTION"),
			PageLimit:    envInt("FOXY_WEBFLOW_LIMIT", 0),
		},
		Wix: WixConfig{
			APIKey:    os.Getenv("FOXY_WIX_API_KEY"),
			AccountID: os.Getenv("FOXY_WIX_ACCOUNT_ID"),
			SiteID:    os.Getenv("FOXY_WIX_SITE_ID"),
		},
		Shiptheory: ShiptheoryConfig{
			Email:    os.Getenv("FOXY_SHIPTHEORY_EMAIL"),
			Password: os.Getenv("FOXY_SHIPTHEORY_PASSWORD"),
		},
		IdevAffiliate: IdevAffiliateConfig{
			APIURL:    envOrLegacy("FOXY_IDEV_API_URL", "IDEV_API_URL"),
			SecretKey: envOrLegacy("FOXY_IDEV_SECRET_KEY", "IDEV_SECRET_KEY"),
		},
		Lune: LuneConfig{
			APIKey: os.Getenv("FOXY_LUNE_API_KEY"),
		},
		Datastore: DatastoreConfig{
			FieldCode:                  envOrLegacy("FOXY_FIELD_CODE", "FX_FIELD_CODE"),
			FieldPrice:                 envOrLegacy("FOXY_FIELD_PRICE", "FX_FIELD_PRICE"),
			FieldInventory:             envOrLegacy("FOXY_FIELD_INVENTORY", "FX_FIELD_INVENTORY"),
			SkipPriceCodes:             envOrLegacy("FOXY_SKIP_PRICE_CODES", "FX_SKIP_PRICE_CODES"),
			SkipInventoryCodes:         envOrLegacy("FOXY_SKIP_INVENTORY_CODES", "FX_SKIP_INVENTORY_CODES"),
			SkipInventoryUpdateCodes:   os.Getenv("FOXY_SKIP_INVENTORY_UPDATE_CODES"),
			ErrorInsufficientInventory: envOrLegacy("FOXY_ERROR_INSUFFICIENT_INVENTORY", "FX_ERROR_INSUFFICIENT_INVENTORY"),
			ErrorPriceMismatch:         envOrLegacy("FOXY_ERROR_PRICE_MISMATCH", "FX_ERROR_PRICE_MISMATCH"),
			UpdateInfoName:             os.Getenv("FOXY_SKIP_UPDATEINFO_NAME"),
		},
	}
}

// loadFromSecretManager overlays credentials from a GCP Secret Manager
// secret holding the same JSON shape as CONFIG_FILE. Non-credential
// settings already loaded from the environment are kept.
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", c.GCPProject, c.SecretName)
	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", name, err)
	}

	if err := json.Unmarshal(result.Payload.Data, c); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Webflow.PageLimit == 0 {
		c.Webflow.PageLimit = DefaultWebflowPageLimit
	}
	if c.Datastore.UpdateInfoName == "" {
		c.Datastore.UpdateInfoName = DefaultUpdateInfoName
	}
}

// FieldOverrides returns the configured logical-to-actual field name map
// for catalogs with custom field names.
func (c *Config) FieldOverrides() map[string]string {
	overrides := make(map[string]string)
	if c.Datastore.FieldCode != "" {
		overrides["code"] = c.Datastore.FieldCode
	}
	if c.Datastore.FieldPrice != "" {
		overrides["price"] = c.Datastore.FieldPrice
	}
	if c.Datastore.FieldInventory != "" {
		overrides["inventory"] = c.Datastore.FieldInventory
	}
	return overrides
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// envOrLegacy returns the first non-empty of a FOXY_-prefixed variable and
// its legacy spelling.
func envOrLegacy(key, legacy string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return os.Getenv(legacy)
}

func envInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var n int
	if _, err := fmt.Sscanf(val, "%d", &n); err != nil {
		return defaultVal
	}
	return n
}

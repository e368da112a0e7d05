package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Ozon struct {
	ClientID string `json:"client_id"`
	APIKey   string `json:"api_key"`
}

type MarketCampaign struct {
	CampaignID  string `json:"campaign_id"`
	WarehouseID int64  `json:"warehouse_id"`
}

type Market struct {
	Token string         `json:"token"`
	FBS   MarketCampaign `json:"fbs"`
	DBS   MarketCampaign `json:"dbs"`
}

type Telegram struct {
	BotToken string `json:"bot_token,omitempty"`
	ChatID   int64  `json:"chat_id,omitempty"`
}

type Config struct {
	FeedURL string `json:"feed_url,omitempty"`
	DataDir string `json:"data_dir,omitempty"`

	// IntervalMinutes > 0 runs the sync on a schedule; 0 means a single pass.
	IntervalMinutes int `json:"interval_minutes,omitempty"`

	Ozon     Ozon     `json:"ozon"`
	Market   Market   `json:"market"`
	Telegram Telegram `json:"telegram,omitempty"`

	Debug bool `json:"debug,omitempty"`
}

func DefaultDataDir() string {
	if v := os.Getenv("SELLERSYNC_DATA_DIR"); v != "" {
		return v
	}
	return "/var/lib/sellersync"
}

func DefaultConfigPath() string {
	if v := os.Getenv("SELLERSYNC_CONFIG"); v != "" {
		return v
	}
	return "/etc/sellersync/config.json"
}

// Load reads the JSON config file, applies environment overrides
// (SELLER_TOKEN, CLIENT_ID, MARKET_TOKEN and friends), fills defaults and
// validates. A missing file is fine as long as the environment provides
// credentials.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	var cfg Config
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid config json: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)

	if !cfg.OzonEnabled() && !cfg.FBSEnabled() && !cfg.DBSEnabled() {
		return Config{}, fmt.Errorf("no marketplace target configured (set ozon or market credentials in %s or env)", path)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setStr := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	setStr(&cfg.Ozon.ClientID, "CLIENT_ID")
	setStr(&cfg.Ozon.APIKey, "SELLER_TOKEN")
	setStr(&cfg.Market.Token, "MARKET_TOKEN")
	setStr(&cfg.Market.FBS.CampaignID, "FBS_ID")
	setStr(&cfg.Market.DBS.CampaignID, "DBS_ID")
	setStr(&cfg.FeedURL, "FEED_URL")
	setStr(&cfg.DataDir, "SELLERSYNC_DATA_DIR")
	setStr(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")

	if v := os.Getenv("WAREHOUSE_FBS_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Market.FBS.WarehouseID = id
		}
	}
	if v := os.Getenv("WAREHOUSE_DBS_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Market.DBS.WarehouseID = id
		}
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("SELLERSYNC_DEBUG"); v != "" {
		cfg.Debug = v == "1" || v == "true" || v == "yes"
	}
}

func (c Config) OzonEnabled() bool {
	return c.Ozon.ClientID != "" && c.Ozon.APIKey != ""
}

func (c Config) FBSEnabled() bool {
	return c.Market.Token != "" && c.Market.FBS.CampaignID != ""
}

func (c Config) DBSEnabled() bool {
	return c.Market.Token != "" && c.Market.DBS.CampaignID != ""
}

func (c Config) NotifyEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

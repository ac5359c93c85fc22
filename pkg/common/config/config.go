package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/dexwatch/swap-tracker/pkg/common/enum"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

var validate = validator.New()

type Config struct {
	Environment   string                `yaml:"environment"    validate:"required,oneof=production development"`
	Tracker       TrackerCfg            `yaml:"tracker"        validate:"required"`
	Projects      map[string]ProjectCfg `yaml:"projects"       validate:"required,min=1"`
	ChainDefaults ChainCfg              `yaml:"chain_defaults"`
	SymbolAliases map[string]string     `yaml:"symbol_aliases"`
	Pricing       PricingCfg            `yaml:"pricing"        validate:"required"`
	Alerting      AlertingCfg           `yaml:"alerting"`
	NATS          NATSCfg               `yaml:"nats"`
	KVStore       KVStoreCfg            `yaml:"kvstore"        validate:"required"`
}

type TrackerCfg struct {
	Name            string        `yaml:"name" validate:"required"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	CursorTTL       time.Duration `yaml:"cursor_ttl"`
	ConfirmationLag time.Duration `yaml:"confirmation_lag"`
}

type ProjectCfg struct {
	Chains map[string]ChainCfg `yaml:"chains" validate:"required,min=1"`
}

type ChainCfg struct {
	SubgraphURL   string        `yaml:"subgraph_url"    validate:"required,url"`
	ExplorerTxURL string        `yaml:"explorer_tx_url"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	PageSize      int           `yaml:"page_size"`
}

type PricingCfg struct {
	BinanceURL      string            `yaml:"binance_url" validate:"required,url"`
	RefreshInterval time.Duration     `yaml:"refresh_interval"`
	Aliases         map[string]string `yaml:"aliases"`   // symbol -> priced symbol, e.g. WETH: ETH
	Overrides       map[string]string `yaml:"overrides"` // symbol -> fixed price, "0" blacklists
}

type AlertingCfg struct {
	MainstreamThreshold string       `yaml:"mainstream_threshold"`
	AltThreshold        string       `yaml:"alt_threshold"`
	Locales             []string     `yaml:"locales"`
	Telegram            TelegramCfg  `yaml:"telegram"`
	TagLookup           TagLookupCfg `yaml:"tag_lookup"`
}

type TelegramCfg struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

type TagLookupCfg struct {
	URL    string            `yaml:"url"`
	Static map[string]TagCfg `yaml:"static"`
}

type TagCfg struct {
	DisplayTag string `yaml:"display_tag"`
	Twitter    string `yaml:"twitter"`
}

type NATSCfg struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Stream        string `yaml:"stream"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type KVStoreCfg struct {
	Type   enum.KVStoreType `yaml:"type" validate:"required,oneof=badger redis"`
	Badger BadgerKVCfg      `yaml:"badger"`
	Redis  RedisKVCfg       `yaml:"redis"`
}

type BadgerKVCfg struct {
	Directory string `yaml:"directory"`
	Prefix    string `yaml:"prefix"`
}

type RedisKVCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Defaults applied by Load when the corresponding field is unset.
const (
	DefaultPollInterval        = 60 * time.Second
	DefaultCursorTTL           = time.Hour
	DefaultConfirmationLag     = 600 * time.Second
	DefaultPageSize            = 1000
	DefaultMainstreamThreshold = "10000000"
	DefaultAltThreshold        = "150000"
)

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	cfg.applyDefaults()

	// merge chain defaults into every project chain
	for pname, project := range cfg.Projects {
		for cname, chain := range project.Chains {
			if err := mergo.Merge(&chain, cfg.ChainDefaults); err != nil {
				return cfg, err
			}
			if chain.PollInterval == 0 {
				chain.PollInterval = cfg.Tracker.PollInterval
			}
			if chain.PageSize == 0 {
				chain.PageSize = DefaultPageSize
			}
			project.Chains[cname] = chain
		}
		cfg.Projects[pname] = project
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	for pname, project := range cfg.Projects {
		for cname, chain := range project.Chains {
			if err := validate.Struct(chain); err != nil {
				return cfg, fmt.Errorf("chain %s/%s validation failed: %w", pname, cname, err)
			}
		}
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tracker.PollInterval == 0 {
		c.Tracker.PollInterval = DefaultPollInterval
	}
	if c.Tracker.CursorTTL == 0 {
		c.Tracker.CursorTTL = DefaultCursorTTL
	}
	if c.Tracker.ConfirmationLag == 0 {
		c.Tracker.ConfirmationLag = DefaultConfirmationLag
	}
	if c.Pricing.RefreshInterval == 0 {
		c.Pricing.RefreshInterval = c.Tracker.PollInterval
	}
	if c.Alerting.MainstreamThreshold == "" {
		c.Alerting.MainstreamThreshold = DefaultMainstreamThreshold
	}
	if c.Alerting.AltThreshold == "" {
		c.Alerting.AltThreshold = DefaultAltThreshold
	}
	if len(c.Alerting.Locales) == 0 {
		c.Alerting.Locales = []string{"en", "zh"}
	}
}

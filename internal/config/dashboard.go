package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FunnelEvents names the analytics events tracked per funnel step.
type FunnelEvents struct {
	PageView      string `mapstructure:"pageView"`
	PricingView   string `mapstructure:"pricingView"`
	CheckoutClick string `mapstructure:"checkoutClick"`
	Purchase      string `mapstructure:"purchase"`
}

// CustomRatePair is the default numerator/denominator pair for the custom rate.
type CustomRatePair struct {
	Numerator   string `mapstructure:"numerator"`
	Denominator string `mapstructure:"denominator"`
}

// DashboardConfig holds operator-tunable dashboard settings.
type DashboardConfig struct {
	FunnelEvents  FunnelEvents   `mapstructure:"funnelEvents"`
	ReferrerLimit int            `mapstructure:"referrerLimit"`
	MockDomains   []string       `mapstructure:"mockDomains"`
	DefaultRate   CustomRatePair `mapstructure:"defaultRate"`
}

func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		FunnelEvents: FunnelEvents{
			PageView:      "$pageview",
			PricingView:   "pricing_page_viewed",
			CheckoutClick: "checkout_clicked",
			Purchase:      "purchase_completed",
		},
		ReferrerLimit: 10,
		MockDomains:   []string{"google.com", "x.com", "github.com", "news.ycombinator.com", "reddit.com"},
		DefaultRate:   CustomRatePair{Numerator: "purchases", Denominator: "visitors"},
	}
}

// DashboardConfigHolder exposes the current dashboard config with hot reload.
type DashboardConfigHolder struct {
	current atomic.Value // holds DashboardConfig
}

func NewDashboardConfigHolder() (*DashboardConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/revboard/config") // Volume-mounted config
	v.AddConfigPath("/etc/revboard")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("REVBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDashboardConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		v.SetDefault("dashboard.funnelEvents", defaults.FunnelEvents)
		v.SetDefault("dashboard.referrerLimit", defaults.ReferrerLimit)
		v.SetDefault("dashboard.mockDomains", defaults.MockDomains)
		v.SetDefault("dashboard.defaultRate", defaults.DefaultRate)
	}

	var cfg DashboardConfig
	if err := v.UnmarshalKey("dashboard", &cfg); err != nil {
		return nil, err
	}
	applyDashboardDefaults(&cfg, defaults)
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DashboardConfig
		if err := v.UnmarshalKey("dashboard", &updated); err != nil {
			log.Printf("[dashboard-config] reload failed: %v", err)
			return
		}
		applyDashboardDefaults(&updated, defaults)
		if err := validateDashboardConfig(updated); err != nil {
			log.Printf("[dashboard-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[dashboard-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticDashboardConfigHolder wraps a fixed config with no file watching.
// Intended for tests.
func NewStaticDashboardConfigHolder(cfg DashboardConfig) *DashboardConfigHolder {
	holder := &DashboardConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *DashboardConfigHolder) Get() DashboardConfig {
	return h.current.Load().(DashboardConfig)
}

func applyDashboardDefaults(cfg *DashboardConfig, defaults DashboardConfig) {
	if strings.TrimSpace(cfg.FunnelEvents.PageView) == "" {
		cfg.FunnelEvents.PageView = defaults.FunnelEvents.PageView
	}
	if strings.TrimSpace(cfg.FunnelEvents.PricingView) == "" {
		cfg.FunnelEvents.PricingView = defaults.FunnelEvents.PricingView
	}
	if strings.TrimSpace(cfg.FunnelEvents.CheckoutClick) == "" {
		cfg.FunnelEvents.CheckoutClick = defaults.FunnelEvents.CheckoutClick
	}
	if strings.TrimSpace(cfg.FunnelEvents.Purchase) == "" {
		cfg.FunnelEvents.Purchase = defaults.FunnelEvents.Purchase
	}
	if cfg.ReferrerLimit == 0 {
		cfg.ReferrerLimit = defaults.ReferrerLimit
	}
	if len(cfg.MockDomains) == 0 {
		cfg.MockDomains = defaults.MockDomains
	}
	if strings.TrimSpace(cfg.DefaultRate.Numerator) == "" || strings.TrimSpace(cfg.DefaultRate.Denominator) == "" {
		cfg.DefaultRate = defaults.DefaultRate
	}
}

func validateDashboardConfig(cfg DashboardConfig) error {
	if cfg.ReferrerLimit <= 0 {
		return errors.New("dashboard.referrerLimit must be positive")
	}
	if len(cfg.MockDomains) == 0 {
		return errors.New("dashboard.mockDomains cannot be empty")
	}
	return nil
}

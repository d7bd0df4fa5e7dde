package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	CatalogFile string `default:"" usage:"Product catalog JSON file, optionally gzipped (empty uses the built-in catalog)" flag:"catalog-file"`
	Discount    DiscountConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// DiscountConfig controls automatic discount code issuance.
type DiscountConfig struct {
	NthOrder int    `default:"3" usage:"Issue a discount code every N orders" flag:"nth-order"`
	Prefix   string `default:"UNIBLOX" usage:"Discount code prefix"`
	Percent  string `default:"10" usage:"Percentage discount granted by issued codes"`
}

// AdminConfig controls admin endpoint authentication. Authentication is
// enabled only when KeyHash is set.
type AdminConfig struct {
	KeyHash string `default:"" usage:"Hex HMAC-SHA256 of the admin API key (see cmd/admin-key)" flag:"admin-key-hash"`
	Pepper  string `default:"" usage:"HMAC pepper used to hash the admin API key" flag:"admin-pepper"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window, 0 disables"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		Files: []string{"config.yaml", "/etc/shop/config.yaml"},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	ac.EnvPrefix = "SHOP"
	ac.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}
	loader := aconfig.LoaderFor(&cfg, ac)
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the platform-provided PORT variable onto Addr
// unless Addr was configured explicitly.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// Validate checks value ranges that struct tags cannot express.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.Discount.NthOrder < 1 {
		return errors.Errorf("discount.nth_order: must be at least 1, got %d", c.Discount.NthOrder)
	}
	if c.Discount.Prefix == "" {
		return errors.New("discount.prefix is required")
	}
	p, err := c.DiscountPercent()
	if err != nil {
		return err
	}
	if !p.IsPositive() || p.GreaterThan(decimal.NewFromInt(100)) {
		return errors.Errorf("discount.percent: must be in (0, 100], got %s", p)
	}
	if c.RateLimit.Max > 0 && c.RateLimit.Window <= 0 {
		return errors.New("rate_limit.window must be positive when rate limiting is enabled")
	}
	if c.Graceful.ShutdownTimeout <= 0 {
		return errors.New("graceful.shutdown_timeout must be positive")
	}
	return nil
}

// DiscountPercent parses Discount.Percent.
func (c *Config) DiscountPercent() (decimal.Decimal, error) {
	p, err := decimal.NewFromString(c.Discount.Percent)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "discount.percent %q", c.Discount.Percent)
	}
	return p, nil
}

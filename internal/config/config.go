// Package config loads server settings from a YAML file, the environment and flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Identity modes.
const (
	ModeJWT  = "jwt"
	ModeOIDC = "oidc"
)

type Config struct {
	ConfigPath string `yaml:"-"`

	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
	DSN      string `yaml:"dsn"`
	TLSCert  string `yaml:"tls_cert"`
	TLSKey   string `yaml:"tls_key"`

	Redis    RedisConfig    `yaml:"redis"`
	Identity IdentityConfig `yaml:"identity"`
	Limiter  LimiterConfig  `yaml:"limiter"`

	WebhookSecret string `yaml:"webhook_secret"`
	YouTubeAPIKey string `yaml:"youtube_api_key"`
	SearchSpace   int    `yaml:"search_space"`
	Dev           bool   `yaml:"dev"`
}

// RedisConfig configures the invalidation channel. An empty Addr logs tags instead.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type IdentityConfig struct {
	Mode     string `yaml:"mode"`
	JWTKey   string `yaml:"jwt_key"`
	Issuer   string `yaml:"issuer"`
	ClientID string `yaml:"client_id"`
}

type LimiterConfig struct {
	Window   time.Duration `yaml:"window"`
	MaxFails int           `yaml:"max_fails"`
	BlockFor time.Duration `yaml:"block_for"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		GRPCAddr: ":8443",
		HTTPAddr: ":8080",
		Redis:    RedisConfig{Channel: "dktube:invalidate"},
		Identity: IdentityConfig{Mode: ModeJWT},
		Limiter: LimiterConfig{
			Window:   15 * time.Minute,
			MaxFails: 10,
			BlockFor: 15 * time.Minute,
		},
		SearchSpace: 500,
	}
}

func (c *Config) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&c.ConfigPath, "config", "c", c.ConfigPath, "path to a YAML config file")
	fs.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "gRPC listen address")
	fs.StringVar(&c.HTTPAddr, "http-addr", c.HTTPAddr, "webhook HTTP listen address (empty disables)")
	fs.StringVar(&c.DSN, "dsn", c.DSN, "PostgreSQL DSN")
	fs.StringVar(&c.TLSCert, "tls-cert", c.TLSCert, "TLS certificate (PEM); empty serves plaintext")
	fs.StringVar(&c.TLSKey, "tls-key", c.TLSKey, "TLS private key (PEM)")
	fs.StringVar(&c.Redis.Addr, "redis-addr", c.Redis.Addr, "Redis address for invalidation signals")
	fs.StringVar(&c.Redis.Channel, "redis-channel", c.Redis.Channel, "Redis pub/sub channel")
	fs.StringVar(&c.Identity.Mode, "identity", c.Identity.Mode, "identity token verifier: jwt or oidc")
	fs.StringVar(&c.Identity.JWTKey, "jwt-key", c.Identity.JWTKey, "HS256 signing key (jwt mode)")
	fs.StringVar(&c.Identity.Issuer, "oidc-issuer", c.Identity.Issuer, "OIDC issuer URL (oidc mode)")
	fs.StringVar(&c.Identity.ClientID, "oidc-client-id", c.Identity.ClientID, "expected audience (oidc mode)")
	fs.StringVar(&c.WebhookSecret, "webhook-secret", c.WebhookSecret, "identity webhook signing secret")
	fs.StringVar(&c.YouTubeAPIKey, "youtube-api-key", c.YouTubeAPIKey, "YouTube Data API key for durations")
	fs.DurationVar(&c.Limiter.Window, "limiter-window", c.Limiter.Window, "failure counting window")
	fs.IntVar(&c.Limiter.MaxFails, "limiter-max-fails", c.Limiter.MaxFails, "failures before a peer is blocked")
	fs.DurationVar(&c.Limiter.BlockFor, "limiter-block", c.Limiter.BlockFor, "block duration")
	fs.IntVar(&c.SearchSpace, "search-space", c.SearchSpace, "recent videos considered by search")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "enable gRPC reflection and debug logs")
	return fs
}

// Load builds the configuration from defaults, the optional YAML file, environment
// variables and args. pflag.ErrHelp is returned when help was requested.
func Load(name string, args []string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	probe := Default()
	probe.ConfigPath = getenv("DKTUBE_CONFIG")
	if err := probe.flagSet(name).Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if probe.ConfigPath != "" {
		if err := cfg.loadFile(probe.ConfigPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.ConfigPath = probe.ConfigPath
	// flags given on the command line win over file and environment
	if err := cfg.flagSet(name).Parse(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Usage prints flag help.
func Usage(name string) string {
	c := Default()
	return c.flagSet(name).FlagUsages()
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	str(&c.GRPCAddr, "DKTUBE_GRPC_ADDR")
	str(&c.HTTPAddr, "DKTUBE_HTTP_ADDR")
	str(&c.DSN, "DKTUBE_DSN", "DATABASE_URL")
	str(&c.TLSCert, "DKTUBE_TLS_CERT")
	str(&c.TLSKey, "DKTUBE_TLS_KEY")
	str(&c.Redis.Addr, "DKTUBE_REDIS_ADDR", "REDIS_ADDR")
	str(&c.Redis.Password, "DKTUBE_REDIS_PASSWORD")
	str(&c.Redis.Channel, "DKTUBE_REDIS_CHANNEL")
	str(&c.Identity.Mode, "DKTUBE_IDENTITY")
	str(&c.Identity.JWTKey, "DKTUBE_JWT_KEY")
	str(&c.Identity.Issuer, "DKTUBE_OIDC_ISSUER")
	str(&c.Identity.ClientID, "DKTUBE_OIDC_CLIENT_ID")
	str(&c.WebhookSecret, "DKTUBE_WEBHOOK_SECRET", "WEBHOOK_SECRET")
	str(&c.YouTubeAPIKey, "DKTUBE_YOUTUBE_API_KEY", "YOUTUBE_API_KEY")

	if v := getenv("DKTUBE_DEV"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DKTUBE_DEV: %w", err)
		}
		c.Dev = b
	}
	if v := getenv("DKTUBE_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DKTUBE_REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var problems []error
	if c.GRPCAddr == "" {
		problems = append(problems, errors.New("grpc address is required"))
	}
	if c.DSN == "" {
		problems = append(problems, errors.New("dsn is required"))
	}
	switch c.Identity.Mode {
	case ModeJWT:
		if c.Identity.JWTKey == "" {
			problems = append(problems, errors.New("jwt mode needs a signing key"))
		}
	case ModeOIDC:
		if c.Identity.Issuer == "" {
			problems = append(problems, errors.New("oidc mode needs an issuer"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown identity mode %q", c.Identity.Mode))
	}
	if c.HTTPAddr != "" && c.WebhookSecret == "" {
		problems = append(problems, errors.New("webhook secret is required when the webhook listener is enabled"))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		problems = append(problems, errors.New("tls cert and key must be set together"))
	}
	if c.Limiter.Window <= 0 || c.Limiter.BlockFor <= 0 || c.Limiter.MaxFails <= 0 {
		problems = append(problems, errors.New("limiter window, block and max fails must be positive"))
	}
	return errors.Join(problems...)
}

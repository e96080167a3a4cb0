package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/engine/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "engine.yaml"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "VANGO_ENGINE"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultConcurrency is the default number of concurrent prerenders.
	DefaultConcurrency = 4
)

// Store backends.
const (
	BackendNone  = "none"
	BackendDir   = "dir"
	BackendS3    = "s3"
	BackendRedis = "redis"
)

// Config represents the complete engine configuration.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `mapstructure:"server"`

	// Render contains per-render defaults.
	Render RenderConfig `mapstructure:"render"`

	// Log contains logging configuration.
	Log LogConfig `mapstructure:"log"`

	// Store contains snapshot store configuration.
	Store StoreConfig `mapstructure:"store"`

	// Prerender contains prerender configuration.
	Prerender PrerenderConfig `mapstructure:"prerender"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `mapstructure:"host"`

	// Port is the port to listen on.
	Port int `mapstructure:"port"`

	// ReadTimeout bounds reading a request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RequestTimeout cancels renders that do not stabilize in time. Zero
	// means renders wait as long as the client does.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// PublicURL is the canonical origin pages are rendered for, e.g.
	// "https://shop.example". Empty derives the origin from each request
	// and keys cached snapshots by scheme and host.
	PublicURL string `mapstructure:"public_url"`
}

// RenderConfig contains render settings.
type RenderConfig struct {
	// AppID is the server transition id of the application.
	AppID string `mapstructure:"app_id"`

	// Shell is the path to the document shell template. Empty uses the
	// built-in shell.
	Shell string `mapstructure:"shell"`

	// Title is the default document title.
	Title string `mapstructure:"title"`

	// Lang is the document language.
	Lang string `mapstructure:"lang"`

	// BaseHref is the <base href> of the document.
	BaseHref string `mapstructure:"base_href"`

	// Sanitize passes raw HTML through the sanitizer.
	Sanitize bool `mapstructure:"sanitize"`

	// Styles and Scripts are asset names linked by the built-in shell.
	Styles  []string `mapstructure:"styles"`
	Scripts []string `mapstructure:"scripts"`

	// Assets is an optional JSON manifest mapping asset names to
	// fingerprinted file names.
	Assets string `mapstructure:"assets"`

	// AssetPrefix is prepended to every asset URL.
	AssetPrefix string `mapstructure:"asset_prefix"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// StoreConfig contains snapshot store settings.
type StoreConfig struct {
	// Backend is none, dir, s3 or redis.
	Backend string `mapstructure:"backend"`

	// Dir is the snapshot directory of the dir backend.
	Dir string `mapstructure:"dir"`

	// S3 configures the s3 backend.
	S3 S3Config `mapstructure:"s3"`

	// Redis configures the redis backend.
	Redis RedisConfig `mapstructure:"redis"`
}

// S3Config contains S3 snapshot store settings.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PathStyle       bool   `mapstructure:"path_style"`
}

// RedisConfig contains Redis snapshot store settings.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// PrerenderConfig contains prerender settings.
type PrerenderConfig struct {
	// Manifest is the path to the route manifest.
	Manifest string `mapstructure:"manifest"`

	// Concurrency is the number of routes rendered at once.
	Concurrency int `mapstructure:"concurrency"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Render: RenderConfig{
			AppID:       "app",
			Lang:        "en",
			AssetPrefix: "/",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Backend: BackendNone,
			Dir:     "snapshots",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "vango:engine:",
				TTL:    5 * time.Minute,
			},
		},
		Prerender: PrerenderConfig{
			Concurrency: DefaultConcurrency,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for engine.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path, then overlays
// VANGO_ENGINE_ environment variables. An empty path loads defaults and the
// environment only.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, New())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return nil, errors.New("E141").
					WithDetail("No configuration found at " + path).
					WithSuggestion("Create " + ConfigFileName + " or pass --config")
			}
			return nil, errors.New("E120").Wrap(err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.New("E120").
				WithDetail(fmt.Sprintf("Failed to parse %s: %v", path, err)).
				WithSuggestion("Check that the file is valid YAML or JSON")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to decode configuration: " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.public_url", d.Server.PublicURL)

	v.SetDefault("render.app_id", d.Render.AppID)
	v.SetDefault("render.shell", d.Render.Shell)
	v.SetDefault("render.title", d.Render.Title)
	v.SetDefault("render.lang", d.Render.Lang)
	v.SetDefault("render.base_href", d.Render.BaseHref)
	v.SetDefault("render.sanitize", d.Render.Sanitize)
	v.SetDefault("render.asset_prefix", d.Render.AssetPrefix)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.dir", d.Store.Dir)
	v.SetDefault("store.s3.bucket", d.Store.S3.Bucket)
	v.SetDefault("store.s3.prefix", d.Store.S3.Prefix)
	v.SetDefault("store.s3.region", d.Store.S3.Region)
	v.SetDefault("store.s3.endpoint", d.Store.S3.Endpoint)
	v.SetDefault("store.s3.access_key_id", d.Store.S3.AccessKeyID)
	v.SetDefault("store.s3.secret_access_key", d.Store.S3.SecretAccessKey)
	v.SetDefault("store.s3.path_style", d.Store.S3.PathStyle)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.prefix", d.Store.Redis.Prefix)
	v.SetDefault("store.redis.ttl", d.Store.Redis.TTL)

	v.SetDefault("prerender.manifest", d.Prerender.Manifest)
	v.SetDefault("prerender.concurrency", d.Prerender.Concurrency)
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Render.Lang == "" {
		c.Render.Lang = d.Render.Lang
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendNone
	}
	if c.Prerender.Concurrency == 0 {
		c.Prerender.Concurrency = d.Prerender.Concurrency
	}

	// Relative paths resolve against the config file.
	if dir := c.Dir(); dir != "" {
		c.Render.Shell = resolve(dir, c.Render.Shell)
		c.Render.Assets = resolve(dir, c.Render.Assets)
		c.Store.Dir = resolve(dir, c.Store.Dir)
		c.Prerender.Manifest = resolve(dir, c.Prerender.Manifest)
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Server.RequestTimeout < 0 {
		return errors.New("E122").
			WithDetail("server.request_timeout must not be negative")
	}
	if c.Server.PublicURL != "" {
		u, err := url.Parse(c.Server.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" ||
			strings.Trim(u.Path, "/") != "" || u.RawQuery != "" || u.Fragment != "" {
			return errors.New("E122").
				WithDetail("server.public_url must be an http or https origin").
				WithSuggestion(`Use a value such as "https://shop.example"`)
		}
	}
	if strings.TrimSpace(c.Render.AppID) == "" {
		return errors.New("E122").
			WithDetail("render.app_id must not be empty").
			WithSuggestion("Set render.app_id to the id the client application bootstraps with")
	}
	if c.Prerender.Concurrency < 1 {
		return errors.New("E122").
			WithDetail("prerender.concurrency must be at least 1")
	}

	switch c.Store.Backend {
	case BackendNone:
	case BackendDir:
		if c.Store.Dir == "" {
			return errors.New("E122").WithDetail("store.dir is required for the dir backend")
		}
	case BackendS3:
		if c.Store.S3.Bucket == "" {
			return errors.New("E122").WithDetail("store.s3.bucket is required for the s3 backend")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("E122").WithDetail("store.redis.addr is required for the redis backend")
		}
	default:
		return errors.New("E122").
			WithDetail(fmt.Sprintf("unknown store.backend %q", c.Store.Backend)).
			WithSuggestion("Use one of: none, dir, s3, redis")
	}
	return nil
}

// Address returns the listen address of the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

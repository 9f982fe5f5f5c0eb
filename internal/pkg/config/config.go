package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Data       DataConfig       `mapstructure:"data"`
	Datasets   []DatasetConfig  `mapstructure:"datasets"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Background BackgroundConfig `mapstructure:"background"`
	Layout     LayoutConfig     `mapstructure:"layout"`
	Style      StyleConfig      `mapstructure:"style"`
	Viewport   ViewportConfig   `mapstructure:"viewport"`
	Labels     domain.Labels    `mapstructure:"labels"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Log        LogConfig        `mapstructure:"log"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// SessionTTL is the idle lifetime of a viewer session in seconds.
	SessionTTL int `mapstructure:"session_ttl"`
	RateLimit  int `mapstructure:"rate_limit"`
	// AllowOrigins is a comma separated CORS origin list.
	AllowOrigins string `mapstructure:"allow_origins"`
	// AssetsDir is served under /assets when set.
	AssetsDir string `mapstructure:"assets_dir"`
}

// DataConfig locates the static datasets and catalog.
type DataConfig struct {
	// Root is a directory or an http(s) base URL.
	Root        string `mapstructure:"root"`
	CatalogFile string `mapstructure:"catalog_file"`
	Timeout     int    `mapstructure:"timeout"`
}

// DatasetConfig maps one document to the layer role it is drawn as.
type DatasetConfig struct {
	Source string `mapstructure:"source"`
	Role   string `mapstructure:"role"`
}

type CatalogConfig struct {
	// Source is "file" or "postgres".
	Source string `mapstructure:"source"`
}

type BackgroundConfig struct {
	Href   string  `mapstructure:"href"`
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

type LayoutConfig struct {
	SchemeWidth  float64 `mapstructure:"scheme_width"`
	SchemeHeight float64 `mapstructure:"scheme_height"`
	CalibrationX float64 `mapstructure:"calibration_x"`
	OffsetY      float64 `mapstructure:"offset_y"`
	FlipY        bool    `mapstructure:"flip_y"`
}

type StyleConfig struct {
	Mode      string   `mapstructure:"mode"`
	DrawOrder []string `mapstructure:"draw_order"`
}

type ViewportConfig struct {
	MinZoom    float64 `mapstructure:"min_zoom"`
	MaxZoom    float64 `mapstructure:"max_zoom"`
	LocateZoom float64 `mapstructure:"locate_zoom"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	// MaxAge is the selection stream retention in seconds.
	MaxAge int `mapstructure:"max_age"`
}

type ValkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Prefix  string `mapstructure:"prefix"`
	TTL     int    `mapstructure:"ttl"`
}

type SnapshotConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ChromePath string `mapstructure:"chrome_path"`
	Timeout    int    `mapstructure:"timeout"`
	NoSandbox  bool   `mapstructure:"no_sandbox"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
}

// Load reads configuration from .env, file and environment variables.
func Load(service string) (*Config, error) {
	_ = godotenv.Load() // OK if missing

	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TERRITORY_LAYOUT_CALIBRATION_X → layout.calibration_x
	v.SetEnvPrefix("TERRITORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Labels = cfg.Labels.Merge(domain.DefaultLabels())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.session_ttl", 1800)
	v.SetDefault("server.rate_limit", 200)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("server.assets_dir", "./data")
	v.SetDefault("data.root", "./data")
	v.SetDefault("data.catalog_file", "catalog.json")
	v.SetDefault("data.timeout", 10)
	v.SetDefault("datasets", []map[string]any{
		{"source": "zones.geojson", "role": string(domain.RoleZones)},
		{"source": "paths.geojson", "role": string(domain.RolePaths)},
		{"source": "cabins.geojson", "role": string(domain.RoleCabins)},
		{"source": "poi.geojson", "role": string(domain.RolePOI)},
	})
	v.SetDefault("catalog.source", "file")
	v.SetDefault("background.href", "/assets/base.png")
	v.SetDefault("background.width", 1482)
	v.SetDefault("background.height", 844)
	v.SetDefault("layout.scheme_width", 1126)
	v.SetDefault("layout.scheme_height", 844)
	v.SetDefault("layout.calibration_x", -32)
	v.SetDefault("layout.offset_y", 0)
	v.SetDefault("layout.flip_y", false)
	v.SetDefault("style.mode", "uniform")
	v.SetDefault("style.draw_order", []string{"zones", "paths", "cabins", "poi"})
	v.SetDefault("viewport.min_zoom", -2)
	v.SetDefault("viewport.max_zoom", 2)
	v.SetDefault("viewport.locate_zoom", 1)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "territory")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "territorymap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_age", 3600)
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.prefix", service)
	v.SetDefault("valkey.ttl", 600)
	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.chrome_path", "")
	v.SetDefault("snapshot.timeout", 30)
	v.SetDefault("snapshot.no_sandbox", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "localhost:4317")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Data.Root == "" {
		errs = append(errs, "data.root is required")
	}
	if len(c.Datasets) == 0 {
		errs = append(errs, "at least one dataset is required")
	}
	for i, ds := range c.Datasets {
		if ds.Source == "" {
			errs = append(errs, fmt.Sprintf("datasets[%d].source is required", i))
		}
	}
	switch c.Catalog.Source {
	case "file", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("catalog.source must be file or postgres, got %q", c.Catalog.Source))
	}
	if c.Background.Width <= 0 || c.Background.Height <= 0 {
		errs = append(errs, "background.width and background.height must be positive")
	}
	if c.Layout.SchemeWidth <= 0 || c.Layout.SchemeHeight <= 0 {
		errs = append(errs, "layout.scheme_width and layout.scheme_height must be positive")
	}
	switch c.Style.Mode {
	case "uniform", "typed":
	default:
		errs = append(errs, fmt.Sprintf("style.mode must be uniform or typed, got %q", c.Style.Mode))
	}
	if c.Viewport.MaxZoom < c.Viewport.MinZoom {
		errs = append(errs, "viewport.max_zoom must not be below viewport.min_zoom")
	}
	if c.Telemetry.Enabled && c.Telemetry.TempoAddr == "" {
		errs = append(errs, "telemetry.tempo_addr is required when telemetry is enabled")
	}
	if c.Catalog.Source == "postgres" {
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// DrawOrder returns the configured draw order as roles.
func (c *Config) DrawOrder() []domain.Role {
	out := make([]domain.Role, 0, len(c.Style.DrawOrder))
	for _, r := range c.Style.DrawOrder {
		out = append(out, domain.Role(r))
	}
	return out
}

// DataTimeout returns the static fetch timeout.
func (c *Config) DataTimeout() time.Duration {
	return time.Duration(c.Data.Timeout) * time.Second
}

// SessionTTL returns the idle lifetime of a viewer session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTL) * time.Second
}

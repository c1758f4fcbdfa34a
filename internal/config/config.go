package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/farescout/farescout/internal/extract"
)

// Config holds the full application configuration.
type Config struct {
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Dedup      DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Acceptance AcceptanceConfig `yaml:"acceptance" mapstructure:"acceptance"`
	Raster     RasterConfig     `yaml:"raster" mapstructure:"raster"`
	Vendors    VendorsConfig    `yaml:"vendors" mapstructure:"vendors"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// PipelineConfig configures the event loop's timing.
type PipelineConfig struct {
	DebounceMs     int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
	RenderSettleMs int `yaml:"render_settle_ms" mapstructure:"render_settle_ms"`
	MinTextLen     int `yaml:"min_text_len" mapstructure:"min_text_len"`
}

func (c PipelineConfig) Debounce() time.Duration     { return time.Duration(c.DebounceMs) * time.Millisecond }
func (c PipelineConfig) RenderSettle() time.Duration { return time.Duration(c.RenderSettleMs) * time.Millisecond }

// ExtractConfig configures field extraction thresholds. Mirrors
// extract.Config so thresholds tune from file or environment.
type ExtractConfig struct {
	MinPrice           float64 `yaml:"min_price" mapstructure:"min_price"`
	MaxPlausibleRate   float64 `yaml:"max_plausible_rate" mapstructure:"max_plausible_rate"`
	RateBandMin        float64 `yaml:"rate_band_min" mapstructure:"rate_band_min"`
	RateBandMax        float64 `yaml:"rate_band_max" mapstructure:"rate_band_max"`
	TypicalRate        float64 `yaml:"typical_rate" mapstructure:"typical_rate"`
	Tier1MinConfidence float64 `yaml:"tier1_min_confidence" mapstructure:"tier1_min_confidence"`
	Tier2MinConfidence float64 `yaml:"tier2_min_confidence" mapstructure:"tier2_min_confidence"`
	ContextScoreFloor  int     `yaml:"context_score_floor" mapstructure:"context_score_floor"`
}

// ToExtract converts to the extraction package's config type.
func (c ExtractConfig) ToExtract() extract.Config {
	return extract.Config{
		MinPrice:           c.MinPrice,
		MaxPlausibleRate:   c.MaxPlausibleRate,
		RateBandMin:        c.RateBandMin,
		RateBandMax:        c.RateBandMax,
		TypicalRate:        c.TypicalRate,
		Tier1MinConfidence: c.Tier1MinConfidence,
		Tier2MinConfidence: c.Tier2MinConfidence,
		ContextScoreFloor:  c.ContextScoreFloor,
	}
}

// DedupConfig configures the fingerprint cache.
type DedupConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
	TTLSecs  int `yaml:"ttl_secs" mapstructure:"ttl_secs"`
}

func (c DedupConfig) TTL() time.Duration { return time.Duration(c.TTLSecs) * time.Second }

// AcceptanceConfig configures the acceptance tracker.
type AcceptanceConfig struct {
	WindowSecs  int `yaml:"window_secs" mapstructure:"window_secs"`
	TripMaxMins int `yaml:"trip_max_mins" mapstructure:"trip_max_mins"`
}

func (c AcceptanceConfig) Window() time.Duration  { return time.Duration(c.WindowSecs) * time.Second }
func (c AcceptanceConfig) TripMax() time.Duration { return time.Duration(c.TripMaxMins) * time.Minute }

// RasterConfig configures the capture fallback. CaptureCmd must write a PNG
// to stdout; RecognizeCmd must read a PNG on stdin and write text to stdout.
type RasterConfig struct {
	Enabled      bool     `yaml:"enabled" mapstructure:"enabled"`
	CooldownSecs int      `yaml:"cooldown_secs" mapstructure:"cooldown_secs"`
	CaptureCmd   []string `yaml:"capture_cmd" mapstructure:"capture_cmd"`
	RecognizeCmd []string `yaml:"recognize_cmd" mapstructure:"recognize_cmd"`
}

func (c RasterConfig) Cooldown() time.Duration { return time.Duration(c.CooldownSecs) * time.Second }

// VendorsConfig points at optional profile overrides.
type VendorsConfig struct {
	OverridesPath string `yaml:"overrides_path" mapstructure:"overrides_path"`
}

// ServerConfig configures the status endpoint.
type ServerConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Port    int  `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FARESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8090)
	v.SetDefault("pipeline.debounce_ms", 250)
	v.SetDefault("pipeline.render_settle_ms", 700)
	v.SetDefault("pipeline.min_text_len", 8)
	v.SetDefault("extract.min_price", 2.0)
	v.SetDefault("extract.max_plausible_rate", 60.0)
	v.SetDefault("extract.rate_band_min", 0.6)
	v.SetDefault("extract.rate_band_max", 35.0)
	v.SetDefault("extract.typical_rate", 2.5)
	v.SetDefault("extract.tier1_min_confidence", 0.5)
	v.SetDefault("extract.tier2_min_confidence", 0.4)
	v.SetDefault("extract.context_score_floor", 1)
	v.SetDefault("dedup.capacity", 200)
	v.SetDefault("dedup.ttl_secs", 90)
	v.SetDefault("acceptance.window_secs", 45)
	v.SetDefault("acceptance.trip_max_mins", 120)
	v.SetDefault("raster.enabled", true)
	v.SetDefault("raster.cooldown_secs", 20)
	v.SetDefault("raster.recognize_cmd", []string{"tesseract", "stdin", "stdout", "-l", "por"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Package config loads the dashboard configuration from defaults, an
// optional YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"fpna_dashboard/pkg/core/ingest"
	"fpna_dashboard/pkg/core/llm"
	"fpna_dashboard/pkg/core/projection"
	"fpna_dashboard/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. FPNA_FORECAST_HORIZON.
const EnvPrefix = "FPNA"

// Config represents the complete application configuration.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"  yaml:"data_dir"`
	Forecast  ForecastConfig  `mapstructure:"forecast"  yaml:"forecast"`
	Narrative NarrativeConfig `mapstructure:"narrative" yaml:"narrative"`
	Generate  GenerateConfig  `mapstructure:"generate"  yaml:"generate"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ForecastConfig holds the forecasting engine settings.
type ForecastConfig struct {
	Horizon         int     `mapstructure:"horizon"          yaml:"horizon"`
	RollingWindow   int     `mapstructure:"rolling_window"   yaml:"rolling_window"`
	Z               float64 `mapstructure:"z"                yaml:"z"`
	SeasonalEnabled bool    `mapstructure:"seasonal_enabled" yaml:"seasonal_enabled"`
	Workers         int     `mapstructure:"workers"          yaml:"workers"`
}

// NarrativeConfig holds the summary provider settings. Credentials are
// normally supplied through the environment.
type NarrativeConfig struct {
	Provider        string  `mapstructure:"provider"          yaml:"provider"` // "auto", "azure", "openai", "gemini", "fallback"
	OpenAIModel     string  `mapstructure:"openai_model"      yaml:"openai_model"`
	GeminiModel     string  `mapstructure:"gemini_model"      yaml:"gemini_model"`
	Temperature     float64 `mapstructure:"temperature"       yaml:"temperature"`
	AzureAPIVersion string  `mapstructure:"azure_api_version" yaml:"azure_api_version"`
	AzureKey        string  `mapstructure:"azure_key"         yaml:"-"`
	AzureEndpoint   string  `mapstructure:"azure_endpoint"    yaml:"azure_endpoint"`
	AzureDeployment string  `mapstructure:"azure_deployment"  yaml:"azure_deployment"`
	OpenAIKey       string  `mapstructure:"openai_key"        yaml:"-"`
	GeminiKey       string  `mapstructure:"gemini_key"        yaml:"-"`
}

// GenerateConfig holds the synthetic data generator settings.
type GenerateConfig struct {
	Seed        uint64   `mapstructure:"seed"        yaml:"seed"`
	Start       string   `mapstructure:"start"       yaml:"start"` // YYYY-MM
	Months      int      `mapstructure:"months"      yaml:"months"`
	Departments []string `mapstructure:"departments" yaml:"departments"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// ConfigFile is an explicit YAML file. When empty, fpna.yaml is searched
	// in ./config and ~/.fpna and is optional.
	ConfigFile string
	// EnvFile is loaded into the process environment before lookups;
	// a missing file is ignored. Defaults to ".env".
	EnvFile string
}

// Load reads the configuration. Precedence, highest first: FPNA_* environment
// variables, the config file, defaults. Provider credentials also fall back to
// AZURE_OPENAI_KEY, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT,
// AZURE_OPENAI_API_VERSION, OPENAI_API_KEY and GEMINI_API_KEY.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("fpna")
		v.AddConfigPath("./config")
		v.AddConfigPath(filepath.Join(homeDir(), ".fpna"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")

	def := projection.DefaultOptions()
	v.SetDefault("forecast.horizon", def.Horizon)
	v.SetDefault("forecast.rolling_window", def.Window)
	v.SetDefault("forecast.z", def.Z)
	v.SetDefault("forecast.seasonal_enabled", def.SeasonalEnabled)
	v.SetDefault("forecast.workers", def.Workers)

	v.SetDefault("narrative.provider", "auto")
	v.SetDefault("narrative.openai_model", llm.DefaultOpenAIModel)
	v.SetDefault("narrative.gemini_model", llm.DefaultGeminiModel)
	v.SetDefault("narrative.temperature", llm.DefaultTemperature)
	v.SetDefault("narrative.azure_api_version", llm.DefaultAzureAPIVersion)
	// Registered so AutomaticEnv picks up FPNA_NARRATIVE_* during Unmarshal.
	v.SetDefault("narrative.azure_key", "")
	v.SetDefault("narrative.azure_endpoint", "")
	v.SetDefault("narrative.azure_deployment", "")
	v.SetDefault("narrative.openai_key", "")
	v.SetDefault("narrative.gemini_key", "")

	gen := ingest.DefaultGenerateOptions()
	v.SetDefault("generate.seed", gen.Seed)
	v.SetDefault("generate.start", gen.Start.String())
	v.SetDefault("generate.months", gen.Months)
	v.SetDefault("generate.departments", gen.Departments)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv fills unset credentials from the conventional provider
// variable names.
func overrideFromEnv(cfg *Config) {
	n := &cfg.Narrative
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&n.AzureKey, "AZURE_OPENAI_KEY")
	fill(&n.AzureEndpoint, "AZURE_OPENAI_ENDPOINT")
	fill(&n.AzureDeployment, "AZURE_OPENAI_DEPLOYMENT")
	fill(&n.OpenAIKey, "OPENAI_API_KEY")
	fill(&n.GeminiKey, "GEMINI_API_KEY")
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" && os.Getenv(EnvPrefix+"_NARRATIVE_AZURE_API_VERSION") == "" {
		n.AzureAPIVersion = v
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Forecast.Horizon <= 0 {
		return fmt.Errorf("forecast.horizon must be positive, got %d", c.Forecast.Horizon)
	}
	if c.Forecast.RollingWindow <= 0 {
		return fmt.Errorf("forecast.rolling_window must be positive, got %d", c.Forecast.RollingWindow)
	}
	if c.Forecast.Z < 0 {
		return fmt.Errorf("forecast.z must not be negative, got %g", c.Forecast.Z)
	}
	if _, err := models.ParseMonth(c.Generate.Start); err != nil {
		return fmt.Errorf("generate.start: %w", err)
	}
	return nil
}

// ForecastOptions maps the forecast section onto the engine options.
func (c *Config) ForecastOptions() projection.Options {
	return projection.Options{
		Horizon:         c.Forecast.Horizon,
		Window:          c.Forecast.RollingWindow,
		Z:               c.Forecast.Z,
		SeasonalEnabled: c.Forecast.SeasonalEnabled,
		Workers:         c.Forecast.Workers,
	}
}

// LLMSettings maps the narrative section onto provider selection settings.
func (c *Config) LLMSettings() llm.Settings {
	n := c.Narrative
	return llm.Settings{
		Provider:        n.Provider,
		AzureKey:        n.AzureKey,
		AzureEndpoint:   n.AzureEndpoint,
		AzureDeployment: n.AzureDeployment,
		AzureAPIVersion: n.AzureAPIVersion,
		OpenAIKey:       n.OpenAIKey,
		OpenAIModel:     n.OpenAIModel,
		GeminiKey:       n.GeminiKey,
		GeminiModel:     n.GeminiModel,
		Temperature:     n.Temperature,
	}
}

// GenerateOptions maps the generate section onto generator options.
func (c *Config) GenerateOptions() (ingest.GenerateOptions, error) {
	start, err := models.ParseMonth(c.Generate.Start)
	if err != nil {
		return ingest.GenerateOptions{}, fmt.Errorf("generate.start: %w", err)
	}
	return ingest.GenerateOptions{
		Seed:        c.Generate.Seed,
		Start:       start,
		Months:      c.Generate.Months,
		Departments: c.Generate.Departments,
	}, nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

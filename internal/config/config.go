package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/investor-alpha/holdings-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	// Funds is the universe of managers the pipeline processes. A list
	// rather than a map so display-name casing survives the config
	// round trip; viper lowercases map keys.
	Funds  []model.Fund `yaml:"funds" mapstructure:"funds"`
	EDGAR  EDGARConfig  `yaml:"edgar" mapstructure:"edgar"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Ticker TickerConfig `yaml:"ticker" mapstructure:"ticker"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// FundMap returns the universe keyed by display name.
func (c *Config) FundMap() map[string]string {
	m := make(map[string]string, len(c.Funds))
	for _, f := range c.Funds {
		m[f.Name] = f.CIK
	}
	return m
}

// EDGARConfig configures access to the SEC EDGAR services.
type EDGARConfig struct {
	// UserAgent is mandatory on every request; SEC rejects anonymous clients.
	// Format: "Company Name contact@example.com".
	UserAgent       string `yaml:"user_agent" mapstructure:"user_agent"`
	DataBaseURL     string `yaml:"data_base_url" mapstructure:"data_base_url"`
	ArchivesBaseURL string `yaml:"archives_base_url" mapstructure:"archives_base_url"`
	FormType        string `yaml:"form_type" mapstructure:"form_type"`
	TimeoutSecs     int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries      int    `yaml:"max_retries" mapstructure:"max_retries"`
	// FundPauseSecs is the extra fixed sleep between funds in the pipeline
	// loop, on top of the per-host request pacing.
	FundPauseSecs int `yaml:"fund_pause_secs" mapstructure:"fund_pause_secs"`
}

// OutputConfig configures where tables are written.
type OutputConfig struct {
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	AnalysisDir  string `yaml:"analysis_dir" mapstructure:"analysis_dir"`
}

// TickerConfig configures the CUSIP-to-ticker resolver.
type TickerConfig struct {
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	CachePath string `yaml:"cache_path" mapstructure:"cache_path"`
	// NegativeCache preserves the original behavior of permanently caching
	// "UNKNOWN" after a failed lookup, including transient rate-limit
	// failures. Set false to retry failed lookups on a later run; confirmed
	// not-found answers are cached either way.
	NegativeCache bool `yaml:"negative_cache" mapstructure:"negative_cache"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultFunds is the built-in fund universe, overridable via config file.
var defaultFunds = []model.Fund{
	{Name: "Berkshire Hathaway", CIK: "0001067983"},
	{Name: "Appaloosa LP", CIK: "0001656456"},
	{Name: "Altimeter Capital Management, LP", CIK: "0001541617"},
	{Name: "Pershing Square (Ackman)", CIK: "0001336528"},
	{Name: "Third Point", CIK: "0001040273"},
	{Name: "Tiger Global", CIK: "0001167483"},
	{Name: "Baupost Group", CIK: "0001061768"},
	{Name: "Mohnish Pabrai", CIK: "0001549575"},
	{Name: "SRS Investment Management", CIK: "0001503174"},
	{Name: "DUQUESNE FAMILY OFFICE LLC", CIK: "0001536411"},
	{Name: "KENSICO CAPITAL MANAGEMENT CORP", CIK: "0001113000"},
	{Name: "RATAN CAPITAL MANAGEMENT LP", CIK: "0001566887"},
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HOLDINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("funds", defaultFunds)
	v.SetDefault("edgar.user_agent", "InvestorAlpha-Student/1.0 (admin@investoralpha.com)")
	v.SetDefault("edgar.data_base_url", "https://data.sec.gov")
	v.SetDefault("edgar.archives_base_url", "https://www.sec.gov")
	v.SetDefault("edgar.form_type", "13F-HR")
	v.SetDefault("edgar.timeout_secs", 15)
	v.SetDefault("edgar.max_retries", 2)
	v.SetDefault("edgar.fund_pause_secs", 1)
	v.SetDefault("output.processed_dir", "data/processed")
	v.SetDefault("output.analysis_dir", "data/analysis")
	v.SetDefault("ticker.base_url", "https://api.sec-api.io")
	v.SetDefault("ticker.cache_path", "data/ticker_map.json")
	v.SetDefault("ticker.negative_cache", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/holdings.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks the configuration for problems that would only surface
// mid-run otherwise.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Funds) == 0 {
		problems = append(problems, "funds must not be empty")
	}
	for _, f := range c.Funds {
		if f.Name == "" {
			problems = append(problems, "funds: entry with empty name")
		}
		if f.CIK == "" {
			problems = append(problems, "funds: missing CIK for "+f.Name)
		}
	}
	if c.EDGAR.UserAgent == "" {
		problems = append(problems, "edgar.user_agent is required (SEC rejects anonymous clients)")
	}
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if len(problems) > 0 {
		return eris.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
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

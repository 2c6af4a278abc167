package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ShortScan/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Source struct {
		Type          string `yaml:"type" default:"finnhub" validate:"oneof=finnhub clickhouse"`
		ArchivePrices bool   `yaml:"archive_prices"`
	} `yaml:"source"`
	Finnhub struct {
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url" default:"https://finnhub.io/api/v1" validate:"url"`
		Timeout        time.Duration `yaml:"timeout" default:"30s"`
		RequestsPerSec int           `yaml:"requests_per_sec" default:"1" validate:"gte=1"`
		MaxRetryTime   time.Duration `yaml:"max_retry_time" default:"30s"`
	} `yaml:"finnhub"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"shortscan"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
		PriceTable       string        `yaml:"price_table" default:"daily_prices"`
		RunTable         string        `yaml:"run_table" default:"fold_results"`
		ImportanceTable  string        `yaml:"importance_table" default:"feature_importances"`
		InitSchema       bool          `yaml:"init_schema" default:"true"`
		StoreRuns        bool          `yaml:"store_runs"`
	} `yaml:"clickhouse"`
	Cache struct {
		Type          string        `yaml:"type" default:"none" validate:"oneof=none memory redis layered"`
		TTL           time.Duration `yaml:"ttl" default:"12h"`
		MemoryTTL     time.Duration `yaml:"memory_ttl" default:"10m"`
		SweepInterval time.Duration `yaml:"sweep_interval" default:"5m"`
		Redis         struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"shortscan:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"shortscan.runs"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Pipeline Pipeline `yaml:"pipeline"`
	Output struct {
		Dir           string `yaml:"dir" default:"outputs"`
		ExportDataset bool   `yaml:"export_dataset" default:"true"`
	} `yaml:"output"`
	Server struct {
		Enabled         bool          `yaml:"enabled"`
		RunOnStart      bool          `yaml:"run_on_start" default:"true"`
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"30s"`
	} `yaml:"server"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// Pipeline holds the universe, date range and model hyperparameters of a run.
type Pipeline struct {
	Symbols        []string `yaml:"symbols" default:"[\"AAPL\",\"MSFT\",\"TSLA\",\"AMZN\",\"META\"]" validate:"min=1,dive,required"`
	Start          string   `yaml:"start" default:"2015-01-01" validate:"datetime=2006-01-02"`
	End            string   `yaml:"end" default:"2024-01-01" validate:"datetime=2006-01-02"`
	Splits         int      `yaml:"splits" default:"5" validate:"gte=1"`
	NEstimators    int      `yaml:"n_estimators" default:"400" validate:"gte=1"`
	MinSamplesLeaf int      `yaml:"min_samples_leaf" default:"5" validate:"gte=1"`
	Seed           int64    `yaml:"seed" default:"42"`
	Jobs           int      `yaml:"jobs" validate:"gte=0"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is read first when present.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := read(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Pipeline.Symbols = util.SplitSymbols(v)
	}
	if v := os.Getenv("START_DATE"); v != "" {
		c.Pipeline.Start = v
	}
	if v := os.Getenv("END_DATE"); v != "" {
		c.Pipeline.End = v
	}
	c.Pipeline.Splits = util.ParseIntDefault(os.Getenv("SPLITS"), c.Pipeline.Splits)
	c.Pipeline.NEstimators = util.ParseIntDefault(os.Getenv("N_ESTIMATORS"), c.Pipeline.NEstimators)
	c.Pipeline.MinSamplesLeaf = util.ParseIntDefault(os.Getenv("MIN_SAMPLES_LEAF"), c.Pipeline.MinSamplesLeaf)
	if v := os.Getenv("SOURCE"); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	start, end, err := c.Pipeline.Dates()
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("pipeline.start %s is after pipeline.end %s", c.Pipeline.Start, c.Pipeline.End)
	}
	if c.Source.Type == "finnhub" && c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required when source.type is finnhub")
	}
	if (c.Source.Type == "clickhouse" || c.Source.ArchivePrices || c.ClickHouse.StoreRuns) && !c.ClickHouse.Enabled {
		return fmt.Errorf("clickhouse.enabled is required by source.type=%s archive_prices=%t store_runs=%t",
			c.Source.Type, c.Source.ArchivePrices, c.ClickHouse.StoreRuns)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if (c.Cache.Type == "redis" || c.Cache.Type == "layered") && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis cache")
	}
	return nil
}

// Dates parses the configured date range.
func (p *Pipeline) Dates() (time.Time, time.Time, error) {
	start, ok := util.ParseTime(p.Start)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pipeline.start %q", p.Start)
	}
	end, ok := util.ParseTime(p.End)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid pipeline.end %q", p.End)
	}
	return start, end, nil
}

package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeOnce  = "once"
	ModeServe = "serve"

	SourceSample        = "sample"
	SourceTravelpayouts = "travelpayouts"
	SourcePostgres      = "postgres"

	defaultMaxGroundTime = 2 * time.Hour
)

type Config struct {
	Env           string              `yaml:"env" env:"ENV" env-default:"local"`
	Mode          string              `yaml:"mode" env:"MODE" env-default:"once"`
	Jaeger        string              `yaml:"jaeger" env:"JAEGER"`
	Log           LogConfig           `yaml:"log"`
	Filter        FilterConfig        `yaml:"filter"`
	Source        SourceConfig        `yaml:"source"`
	Output        OutputConfig        `yaml:"output"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Redis         RedisConfig         `yaml:"redis"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Travelpayouts TravelpayoutsConfig `yaml:"travelpayouts"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type FilterConfig struct {
	// Zero is a valid cap, so the default is set before reading rather than via env-default.
	MaxGroundTime time.Duration `yaml:"max_ground_time" env:"FILTER_MAX_GROUND_TIME"`
}

type SourceConfig struct {
	Kind     string        `yaml:"kind" env:"SOURCE_KIND" env-default:"sample"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"SOURCE_CACHE_TTL" env-default:"0s"`
}

type OutputConfig struct {
	NoColor bool `yaml:"no_color" env:"NO_COLOR"`
}

type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port int    `yaml:"port" env:"GRPC_PORT" env-default:"44046"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
}

type TravelpayoutsConfig struct {
	BaseURL         string        `yaml:"base_url" env:"TRAVELPAYOUTS_BASE_URL" env-default:"https://api.travelpayouts.com"`
	Token           string        `yaml:"token" env:"TRAVELPAYOUTS_TOKEN"`
	Currency        string        `yaml:"currency" env:"TRAVELPAYOUTS_CURRENCY" env-default:"rub"`
	Limit           int           `yaml:"limit" env:"TRAVELPAYOUTS_LIMIT" env-default:"30"`
	Timeout         time.Duration `yaml:"timeout" env:"TRAVELPAYOUTS_TIMEOUT" env-default:"5s"`
	OriginIATA      string        `yaml:"origin_iata" env:"TRAVELPAYOUTS_ORIGIN_IATA" env-default:"MOW"`
	DestinationIATA string        `yaml:"destination_iata" env:"TRAVELPAYOUTS_DESTINATION_IATA" env-default:"LED"`
	DaysAhead       int           `yaml:"days_ahead" env:"TRAVELPAYOUTS_DAYS_AHEAD" env-default:"3"`
}

func (c GRPCConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	return MustLoadByPath(path)
}

func MustLoadByPath(configPath string) *Config {
	cfg, err := LoadByPath(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func LoadByPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exists: %s", configPath)
	}

	cfg := Config{
		Filter: FilterConfig{MaxGroundTime: defaultMaxGroundTime},
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read the config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeOnce, ModeServe:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	switch c.Source.Kind {
	case SourceSample, SourceTravelpayouts, SourcePostgres:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if c.Filter.MaxGroundTime < 0 {
		return fmt.Errorf("filter.max_ground_time must not be negative: %s", c.Filter.MaxGroundTime)
	}

	return nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	if res == "" {
		res = "config/local.yaml"
	}

	return res
}

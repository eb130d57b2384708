package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Server    ServerConfig    `mapstructure:"server"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	ConsumerID   string        `mapstructure:"consumer_id"`
	GroupName    string        `mapstructure:"group_name"`
	InputStream  string        `mapstructure:"input_stream"`
	OutputStream string        `mapstructure:"output_stream"`
	BatchSize    int64         `mapstructure:"batch_size"`
	BlockTime    time.Duration `mapstructure:"block_time"`
	MaxLen       int64         `mapstructure:"max_len"`
}

type S3Config struct {
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type CorpusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Driver  string `mapstructure:"driver"` // sqlite | postgres
	DSN     string `mapstructure:"dsn"`
	Table   string `mapstructure:"table"`
}

type ServerConfig struct {
	HTTPAddr       string        `mapstructure:"http_addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type PipelineConfig struct {
	Inputs    []string `mapstructure:"inputs"`
	Schema    string   `mapstructure:"schema"` // empty = detect from header
	Output    string   `mapstructure:"output"` // local path or s3://bucket/key
	SortLive  bool     `mapstructure:"sort_live"`
	Seed      int64    `mapstructure:"seed"`
	Publish   bool     `mapstructure:"publish"`
	BatchSize int      `mapstructure:"batch_size"` // records per pipelined publish, 0 = unbatched
	Delimiter string   `mapstructure:"delimiter"` // empty = by extension
}

type TemplatesConfig struct {
	Path string `mapstructure:"path"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PBP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.name", "commentary-corpus")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("redis.addr", "localhost:6380")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.consumer_id", "commentary-corpus-1")
	v.SetDefault("redis.group_name", "commentary-builders")
	v.SetDefault("redis.input_stream", "pbp.raw.basketball_nba")
	v.SetDefault("redis.output_stream", "pbp.commentary.basketball_nba")
	v.SetDefault("redis.batch_size", 100)
	v.SetDefault("redis.block_time", "5s")
	v.SetDefault("redis.max_len", 100000)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("corpus.enabled", false)
	v.SetDefault("corpus.driver", "sqlite")
	v.SetDefault("corpus.dsn", "file:commentary.db")
	v.SetDefault("corpus.table", "commentary_corpus")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("pipeline.schema", "")
	v.SetDefault("pipeline.output", "commentary_corpus.csv")
	v.SetDefault("pipeline.sort_live", true)
	v.SetDefault("pipeline.seed", 0)
	v.SetDefault("pipeline.publish", false)
	v.SetDefault("pipeline.batch_size", 100)
	v.SetDefault("pipeline.delimiter", "")
	v.SetDefault("templates.path", "")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "STOREFRONT_CONFIG_FILE"

type storage struct {
	Backend     string `mapstructure:"backend"`
	Dir         string `mapstructure:"dir"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type pipeline struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	UploadTimeout   time.Duration `mapstructure:"upload_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

type mockAPI struct {
	Addr      string        `mapstructure:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	Latency   time.Duration `mapstructure:"latency"`
}

type Config struct {
	LogLevel   slog.Level `mapstructure:"log_level"`
	APIBaseURL string     `mapstructure:"api_base_url"`
	Storage    storage    `mapstructure:"storage"`
	Pipeline   pipeline   `mapstructure:"pipeline"`
	MockAPI    mockAPI    `mapstructure:"mock_api"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	setDefaults()

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
}

func setDefaults() {
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("api_base_url", "http://localhost:8080")
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.dir", ".storefront")
	viper.SetDefault("storage.redis_prefix", "storefront:")
	viper.SetDefault("pipeline.timeout", "10s")
	viper.SetDefault("pipeline.retry_attempts", 3)
	viper.SetDefault("pipeline.slow_threshold", "3s")
	viper.SetDefault("pipeline.upload_timeout", "60s")
	viper.SetDefault("pipeline.download_timeout", "30s")
	viper.SetDefault("mock_api.addr", ":8080")
	viper.SetDefault("mock_api.jwt_secret", "dev-secret")
	viper.SetDefault("mock_api.latency", "0s")
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	APIBaseURL=%q

	Storage:
	Backend=%q
	Dir=%q
	RedisAddr=%q
	RedisPrefix=%q

	Pipeline:
	Timeout=%q
	RetryAttempts=%d
	SlowThreshold=%q
	UploadTimeout=%q
	DownloadTimeout=%q

	MockAPI:
	Addr=%q
	Latency=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.APIBaseURL,
		c.Storage.Backend,
		c.Storage.Dir,
		c.Storage.RedisAddr,
		c.Storage.RedisPrefix,
		c.Pipeline.Timeout,
		c.Pipeline.RetryAttempts,
		c.Pipeline.SlowThreshold,
		c.Pipeline.UploadTimeout,
		c.Pipeline.DownloadTimeout,
		c.MockAPI.Addr,
		c.MockAPI.Latency,
	)
}

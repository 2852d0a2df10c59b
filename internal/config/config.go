package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/xo-engine/internal/validator"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090" validate:"required,numeric"`
	Storage   Storage   `yaml:"storage"`
	Redis     Redis     `yaml:"redis"`
	Computer  Computer  `yaml:"computer"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Storage struct {
	Driver     string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory" validate:"oneof=memory redis"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"STORAGE_SESSION_TTL" env-default:"24h" validate:"gte=0"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379" validate:"numeric"`
}

type Computer struct {
	Policy string `yaml:"policy" env:"COMPUTER_POLICY" env-default:"greedy" validate:"oneof=greedy random"`
	// Seed of the computer's random source; 0 derives one from the clock.
	Seed uint64 `yaml:"seed" env:"COMPUTER_SEED" env-default:"0"`
}

type Telemetry struct {
	// Exporter of spans and metrics: none keeps the no-op providers.
	Exporter string `yaml:"exporter" env:"TELEMETRY_EXPORTER" env-default:"none" validate:"oneof=none stdout"`
}

// Load reads the YAML file at path when it exists, then the environment, and
// validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err = validator.Get().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if config.Storage.Driver == StorageRedis && config.Redis.Host == "" {
		return nil, errors.New("invalid config: redis storage needs redis.host")
	}

	return config, nil
}

// MustLoad - load all configurations, panics on failure.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

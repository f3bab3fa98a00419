package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel       string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort       string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort     string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"7777"`
	PublicURL      string `yaml:"public-url" env:"PUBLIC_URL" env-default:"http://localhost:5173"`
	DictionaryPath string `yaml:"dictionary-path" env:"DICTIONARY_PATH"`
	Storage        string `yaml:"storage" env:"STORAGE" env-default:"redis"`
	Redis          Redis  `yaml:"redis"`
	Game           Game   `yaml:"game"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Game struct {
	RoomCodeLength    int           `yaml:"room-code-length" env-default:"6"`
	RoomTTL           time.Duration `yaml:"room-ttl" env-default:"6h"`
	DefaultMaxPlayers int           `yaml:"default-max-players" env-default:"10"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads the yaml file at path and applies environment overrides on top of it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// JoinURL is the link a room QR code points to.
func (that *Config) JoinURL(roomCode string) string {
	return fmt.Sprintf("%s/join/%s", that.PublicURL, roomCode)
}

package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	DayHistory    int    `yaml:"dayHistory"`
	LatestLimit   int    `yaml:"latestLimit"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.Server.DayHistory <= 0 {
		config.Server.DayHistory = 30
	}
	if config.Server.LatestLimit <= 0 {
		config.Server.LatestLimit = 20
	}

	return config, nil
}

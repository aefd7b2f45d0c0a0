package config

import (
	"os"

	"github.com/go-yaml/yaml"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server Server `yaml:"server"`
	Scorer Scorer `yaml:"scorer"`
}

type Server struct {
	Addr          string `yaml:"addr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Scorer struct {
	IntervalSeconds       int               `yaml:"intervalSeconds"`
	BatchSize             int               `yaml:"batchSize"`
	Concurrency           int               `yaml:"concurrency"`
	StaleClaimSeconds     int               `yaml:"staleClaimSeconds"`
	ScoreCacheTTLSeconds  int               `yaml:"scoreCacheTTLSeconds"`
	CommunityCacheSeconds int               `yaml:"communityCacheSeconds"`
	DefaultWeight         string            `yaml:"defaultWeight"`
	Weights               map[string]string `yaml:"weights"`
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

	if config.Server.Addr == "" {
		config.Server.Addr = ":8000"
	}

	return config, nil
}

// ParseWeights turns the configured provider weights into decimals. A
// missing or empty defaultWeight means unknown providers score zero.
func (s Scorer) ParseWeights() (map[string]decimal.Decimal, decimal.Decimal, error) {
	weights := make(map[string]decimal.Decimal, len(s.Weights))
	for provider, raw := range s.Weights {
		weight, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, decimal.Zero, err
		}
		weights[provider] = weight
	}

	defaultWeight := decimal.Zero
	if s.DefaultWeight != "" {
		parsed, err := decimal.NewFromString(s.DefaultWeight)
		if err != nil {
			return nil, decimal.Zero, err
		}
		defaultWeight = parsed
	}

	return weights, defaultWeight, nil
}

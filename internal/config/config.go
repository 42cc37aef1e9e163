package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type AuctionConfig struct {
	Env            string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer     `yaml:"http_server"`
	AuctionDB      `yaml:"auction_db"`
	Redis          `yaml:"redis"`
	KafkaService   `yaml:"kafka-service"`
	PaymentGateway `yaml:"payment_gateway"`
	Bidding        `yaml:"bidding"`
	Scheduler      `yaml:"scheduler"`
	LogConfig      `yaml:"log_config"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type AuctionDB struct {
	Dsn            string `yaml:"dsn" env:"AUCTION_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type KafkaService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type PaymentGateway struct {
	Endpoint  string `yaml:"endpoint"`
	KeyID     string `yaml:"key_id" env:"GATEWAY_KEY_ID"`
	KeySecret string `yaml:"key_secret" env:"GATEWAY_KEY_SECRET"`
	Currency  string `yaml:"currency" env-default:"INR"`
	// Mock enables the synthetic-identifier path for test environments.
	// Never set in production configs.
	Mock bool `yaml:"mock" env:"GATEWAY_MOCK"`
}

type Bidding struct {
	// AllowSelfOutbid lets the current highest bidder raise their own bid.
	AllowSelfOutbid bool `yaml:"allow_self_outbid" env-default:"true"`
}

type Scheduler struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"5s"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
}

func MustLoad() *AuctionConfig {
	configPath := os.Getenv("AUCTION_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("AUCTION_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg AuctionConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}

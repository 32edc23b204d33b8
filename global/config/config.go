package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig is merged from an optional YAML file and the environment;
// environment values win.
type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
	Media  MediaConfig  `yaml:"media"`
	NodeID int64        `yaml:"node_id"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type MongoConfig struct {
	URI         string `yaml:"uri"`
	Database    string `yaml:"database"`
	MaxPoolSize int    `yaml:"max_pool_size"`
	MaxRetry    int    `yaml:"max_retry"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type MediaConfig struct {
	UploadURL string `yaml:"upload_url"`
}

func defaults() AppConfig {
	return AppConfig{
		Server: ServerConfig{Addr: ":5001"},
		Mongo: MongoConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "chatline",
			MaxPoolSize: 20,
			MaxRetry:    3,
		},
		Redis:  RedisConfig{Addr: "127.0.0.1:6379"},
		NodeID: 1,
	}
}

// Load reads .env (if present), then the YAML file named by CHATLINE_CONFIG
// (if any), then individual environment overrides.
func Load() (AppConfig, error) {
	_ = godotenv.Load(".env")

	cfg := defaults()
	if path := os.Getenv("CHATLINE_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MEDIA_UPLOAD_URL"); v != "" {
		cfg.Media.UploadURL = v
	}
	if v := os.Getenv("NODE_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.NodeID = n
		}
	}
}

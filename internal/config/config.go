package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	GitHub struct {
		Tokens         []string `yaml:"tokens"`
		APIBase        string   `yaml:"apiBase"`
		TimeoutSeconds int      `yaml:"timeoutSeconds"`
		MaxAttempts    int      `yaml:"maxAttempts"`
		MaxFiles       int      `yaml:"maxFiles"`
		MaxFileKB      int      `yaml:"maxFileKB"`
		MaxTotalKB     int      `yaml:"maxTotalKB"`
		CommitWindow   int      `yaml:"commitWindow"`
	} `yaml:"github"`

	AI struct {
		APIKeys        []string `yaml:"apiKeys"`
		Model          string   `yaml:"model"`
		TimeoutSeconds int      `yaml:"timeoutSeconds"`
	} `yaml:"ai"`

	Cache struct {
		Driver   string `yaml:"driver"` // sqlite, mysql or postgres
		Path     string `yaml:"path"`   // sqlite only
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"` // postgres only
	} `yaml:"cache"`

	Archive struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"archive"`

	Auth struct {
		APIKeys map[string]string `yaml:"apiKeys"` // client name -> key
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"` // tokens per second
	} `yaml:"rateLimit"`

	Offline bool `yaml:"offline"`
}

// Load reads the yaml file and applies env fallbacks. A missing file is not
// fatal when env vars cover the required settings.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if len(c.GitHub.Tokens) == 0 {
		for _, key := range []string{"GITHUB_TOKEN", "GITHUB_TOKEN_BACKUP_1", "GITHUB_TOKEN_BACKUP_2"} {
			if v := os.Getenv(key); v != "" {
				c.GitHub.Tokens = append(c.GitHub.Tokens, v)
			}
		}
	}
	if len(c.AI.APIKeys) == 0 {
		for _, key := range []string{"OPENAI_API_KEY", "OPENAI_API_KEY_BACKUP_1", "OPENAI_API_KEY_BACKUP_2"} {
			if v := os.Getenv(key); v != "" {
				c.AI.APIKeys = append(c.AI.APIKeys, v)
			}
		}
	}
	if v := os.Getenv("OFFLINE_MODE"); v == "1" || v == "true" {
		c.Offline = true
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "sqlite"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "gitgrade.db"
	}
	if c.Cache.SSLMode == "" {
		c.Cache.SSLMode = "disable"
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Cache.User,
		c.Cache.Password,
		c.Cache.Host,
		c.Cache.Port,
		c.Cache.Name,
	)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Cache.Host,
		c.Cache.Port,
		c.Cache.User,
		c.Cache.Password,
		c.Cache.Name,
		c.Cache.SSLMode,
	)
}

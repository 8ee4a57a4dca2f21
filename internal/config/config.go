package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI struct {
		Provider string `yaml:"provider"` // openai | gemini
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url"` // optional, OpenAI-compatible endpoints
	} `yaml:"ai"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
}

// Load reads config.yaml after loading .env. A missing config file is
// not an error; defaults apply. Environment variables override both.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "rechtsdoc.db"
	}

	if apiKey := os.Getenv("RECHTSDOC_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("RECHTSDOC_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("RECHTSDOC_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}

	return &cfg, nil
}

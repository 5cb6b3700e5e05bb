// Package config loads service configuration from an optional YAML file with
// environment-variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Vector backend selectors.
const (
	BackendMemory = "memory"
	BackendQdrant = "qdrant"
)

type Config struct {
	Chunking struct {
		Size    int `yaml:"size"`
		Overlap int `yaml:"overlap"`
	} `yaml:"chunking"`
	Retrieval struct {
		TopK  int    `yaml:"top_k"`
		Query string `yaml:"query"`
	} `yaml:"retrieval"`
	Window struct {
		LookBackDays  int `yaml:"look_back_days"`
		LookAheadDays int `yaml:"look_ahead_days"`
	} `yaml:"window"`
	Embedding struct {
		Model     string `yaml:"model"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"embedding"`
	LLM struct {
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		Temperature    float64 `yaml:"temperature"`
		MaxTokens      int     `yaml:"max_tokens"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	Vector struct {
		Backend    string `yaml:"backend"`
		QdrantHost string `yaml:"qdrant_host"`
		QdrantPort int    `yaml:"qdrant_port"`
	} `yaml:"vector"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// Default returns the built-in configuration. The chunking and window
// numbers are load-bearing retrieval policy, not tuning suggestions.
func Default() *Config {
	var c Config
	c.Chunking.Size = 500
	c.Chunking.Overlap = 100
	c.Retrieval.TopK = 5
	c.Retrieval.Query = "What are the core trading techniques, investment principles, and entry points advocated in this video?"
	c.Window.LookBackDays = 10
	c.Window.LookAheadDays = 5
	c.Embedding.Model = "text-embedding-3-small"
	c.Embedding.BatchSize = 500
	c.LLM.BaseURL = "https://router.huggingface.co/v1"
	c.LLM.Model = "openai/gpt-oss-20b:groq"
	c.LLM.Temperature = 0.1
	c.LLM.MaxTokens = 2048
	c.LLM.TimeoutSeconds = 90
	c.Vector.Backend = BackendMemory
	c.Vector.QdrantHost = "localhost"
	c.Vector.QdrantPort = 6334
	c.Server.Port = "8080"
	return &c
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VECTOR_BACKEND"); v != "" {
		c.Vector.Backend = v
	}
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		c.Vector.QdrantHost = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Vector.QdrantPort = p
		}
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, size), got %d", c.Chunking.Overlap)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Window.LookBackDays < 0 || c.Window.LookAheadDays < 0 {
		return fmt.Errorf("window days must not be negative")
	}
	if c.Vector.Backend != BackendMemory && c.Vector.Backend != BackendQdrant {
		return fmt.Errorf("vector.backend must be %q or %q, got %q", BackendMemory, BackendQdrant, c.Vector.Backend)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	return nil
}

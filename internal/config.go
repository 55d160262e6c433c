package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Embedding providers.
const (
	EmbeddingFake   = "fake"
	EmbeddingOpenAI = "openai"
)

// Vector index backends.
const (
	IndexMemory = "memory"
	IndexQdrant = "qdrant"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	LLM        LLMConfig         `yaml:"llm"`
	Embedding  EmbeddingConfig   `yaml:"embedding"`
	Index      IndexConfig       `yaml:"index"`
	Collection CollectionConfig  `yaml:"collection"`
	Training   TrainingConfig    `yaml:"training"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Collection.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// LLMConfig holds the completion endpoint configuration. TopP, TopK, and
// MinP are optional sampling parameters; nil means "let the server decide".
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Mode        string        `yaml:"mode"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	TopP        *float64      `yaml:"top_p"`
	TopK        *int          `yaml:"top_k"`
	MinP        *float64      `yaml:"min_p"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Mode, validation.Required, validation.In("completions", "chat")),
		validation.Field(&c.MaxTokens, validation.Min(1)),
	)
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"`
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Model     string        `yaml:"model"`
	Dimension int           `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Validate validates the embedding configuration.
func (c *EmbeddingConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(EmbeddingFake, EmbeddingOpenAI)),
		validation.Field(&c.Dimension, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.Provider == EmbeddingOpenAI && c.BaseURL == "" {
		return fmt.Errorf("embedding: provider is %q but base_url is empty", EmbeddingOpenAI)
	}
	return nil
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Backend string        `yaml:"backend"`
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(IndexMemory, IndexQdrant)),
	); err != nil {
		return err
	}
	if c.Backend == IndexQdrant && c.URL == "" {
		return fmt.Errorf("index: backend is %q but url is empty", IndexQdrant)
	}
	return nil
}

// CollectionConfig holds the path to the flashcard collection database and
// an optional deck filter (empty means the whole collection).
type CollectionConfig struct {
	Path string `yaml:"path"`
	Deck string `yaml:"deck"`
}

// Validate validates the collection configuration.
func (c *CollectionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TrainingConfig holds the training data log location. An empty path
// disables training capture.
type TrainingConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		LLM: LLMConfig{
			BaseURL:     "http://localhost:8000",
			Mode:        "completions",
			MaxTokens:   3000,
			Temperature: 0,
			Timeout:     2 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			Provider:  EmbeddingFake,
			Dimension: 384,
			Timeout:   30 * time.Second,
		},
		Index: IndexConfig{
			Backend: IndexMemory,
			Name:    "notes",
			Timeout: 30 * time.Second,
		},
		Collection: CollectionConfig{
			Path: "./collection.db",
		},
		Training: TrainingConfig{
			Path: "./data/training.jsonl",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

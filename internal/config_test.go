package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLLMConfig_RejectsUnknownMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.Mode = "streaming"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown llm mode should fail validation")
	}
}

func TestLLMConfig_RequiresBaseURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.LLM.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty llm base_url should fail validation")
	}
}

func TestEmbeddingConfig_OpenAINeedsBaseURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Embedding.Provider = EmbeddingOpenAI
	cfg.Embedding.BaseURL = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("openai provider without base_url should fail")
	}
	if !strings.Contains(err.Error(), "base_url is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEmbeddingConfig_RequiresDimension(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Embedding.Dimension = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero dimension should fail validation")
	}
}

func TestIndexConfig_QdrantNeedsURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Index.Backend = IndexQdrant
	cfg.Index.URL = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("qdrant backend without url should fail")
	}
	if !strings.Contains(err.Error(), "url is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCollectionConfig_RequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Collection.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty collection path should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

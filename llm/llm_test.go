package llm_test

import (
	"testing"

	"github.com/innopdf/policy-agent/config"
	"github.com/innopdf/policy-agent/llm"
)

func TestNewClientOllama(t *testing.T) {
	cfg := config.Config{
		LLM:        config.LLMConfig{Provider: config.ProviderOllama, Model: "llama3"},
		OllamaHost: "http://localhost:11434",
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client")
	}
	if _, ok := client.(llm.StreamClient); !ok {
		t.Fatal("expected ollama client to support streaming")
	}
}

func TestNewClientOpenAI(t *testing.T) {
	cfg := config.Config{
		LLM:          config.LLMConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini"},
		OpenAIAPIKey: "sk-test",
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := client.(llm.StreamClient); !ok {
		t.Fatal("expected openai client to support streaming")
	}
}

func TestNewClientOpenAIRequiresKey(t *testing.T) {
	cfg := config.Config{
		LLM: config.LLMConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o-mini"},
	}

	if _, err := llm.NewClient(cfg); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	cfg := config.Config{LLM: config.LLMConfig{Provider: "bedrock"}}

	if _, err := llm.NewClient(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

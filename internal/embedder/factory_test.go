package embedder

import "testing"

func TestFactory_Defaults(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	o, ok := e.(*Ollama)
	if !ok {
		t.Fatalf("expected *Ollama, got %T", e)
	}
	if o.ModelName() != DefaultOllamaModel {
		t.Errorf("expected model %q, got %q", DefaultOllamaModel, o.ModelName())
	}
	if o.Dimensions() != DefaultOllamaDimensions {
		t.Errorf("expected %d dimensions, got %d", DefaultOllamaDimensions, o.Dimensions())
	}
}

func TestFactory_CustomModelSkipsDimensionCheck(t *testing.T) {
	e, err := New(Config{Provider: "ollama", Model: "mxbai-embed-large"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if e.Dimensions() != 0 {
		t.Errorf("expected unknown dimensions for custom model, got %d", e.Dimensions())
	}
}

func TestFactory_OpenAI(t *testing.T) {
	if _, err := New(Config{Provider: "openai"}); err == nil {
		t.Error("expected error without API key")
	}

	e, err := New(Config{Provider: "openai", OpenAIKey: "test-key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := e.(*OpenAI); !ok {
		t.Errorf("expected *OpenAI, got %T", e)
	}
}

func TestFactory_Hash(t *testing.T) {
	e, err := New(Config{Provider: "hash", Dimensions: 64})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := e.(*Hash); !ok {
		t.Errorf("expected *Hash, got %T", e)
	}
	if e.Dimensions() != 64 {
		t.Errorf("expected 64 dimensions, got %d", e.Dimensions())
	}
}

func TestFactory_Unknown(t *testing.T) {
	if _, err := New(Config{Provider: "cohere"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

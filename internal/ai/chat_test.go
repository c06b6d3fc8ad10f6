package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestChatAsk(t *testing.T) {
	stub := &stubGenerator{response: "Acme handles SEO."}
	chat := NewChat(stub, zap.NewNop())

	vendorContext := `[{"name":"Acme","services":["SEO"]}]`
	question := "Who does SEO?"

	answer, err := chat.Ask(context.Background(), question, vendorContext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != "Acme handles SEO." {
		t.Fatalf("expected verbatim model answer, got %q", answer)
	}

	// Both the context string and the question must be embedded exactly.
	if !strings.Contains(stub.lastPrompt, vendorContext) {
		t.Fatalf("prompt missing vendor context: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, question) {
		t.Fatalf("prompt missing question: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "You are ViRA") {
		t.Fatalf("prompt missing assistant instruction: %s", stub.lastPrompt)
	}
}

func TestChatAskGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("deadline exceeded")}
	chat := NewChat(stub, zap.NewNop())

	answer, err := chat.Ask(context.Background(), "Who does SEO?", "[]")
	if !errors.Is(err, ErrChatUnavailable) {
		t.Fatalf("expected ErrChatUnavailable, got %v", err)
	}
	if answer != "" {
		t.Fatalf("expected empty answer on failure, got %q", answer)
	}
}

package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Chat answers free-text questions about vendors. The vendor context
// string and the question are embedded verbatim; the model's text
// comes back unmodified as the answer. No JSON parsing here.
type Chat struct {
	generator ContentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewChat(generator ContentGenerator, logger *zap.Logger) *Chat {
	return &Chat{
		generator: generator,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

// Ask sends the chat prompt and returns the raw answer. Any failure
// from the model is ErrChatUnavailable; conversation state is the
// caller's problem and is re-sent on every turn.
func (c *Chat) Ask(ctx context.Context, question, vendorContext string) (string, error) {
	prompt := buildChatPrompt(question, vendorContext)

	c.logger.Debug("chat request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("question_preview", truncateForLog(question, c.maxLogLen)),
	)

	answer, err := c.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChatUnavailable, err)
	}

	c.logger.Debug("chat response",
		zap.Int("response_length", utf8.RuneCountInString(answer)),
	)

	return answer, nil
}

func buildChatPrompt(question, vendorContext string) string {
	var b strings.Builder
	b.WriteString("You are ViRA, a helpful assistant with deep knowledge of the company's vendors.\n")
	b.WriteString("Use the provided vendor data to answer the user's question concisely.\n\n")
	b.WriteString("Vendor Data Context:\n")
	b.WriteString(vendorContext)
	b.WriteString("\n\nUser's Question:\n")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}

// Package ai holds the prompt-building and response-parsing contracts
// around the language model: vendor matching and the ViRA chat
// assistant. The model itself is reached through a ContentGenerator,
// so every component here is testable with a stub.
package ai

import (
	"context"
	"errors"
)

// ContentGenerator sends a text prompt to a language model and returns
// its textual response.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// VendorRecommendation is one ranked match returned by the model.
// Details is filled in by the caller via exact name lookup against the
// known vendor list; recommendations naming unknown vendors are dropped.
type VendorRecommendation struct {
	VendorName string `json:"vendorName"`
	Reason     string `json:"reason"`
}

// ErrRecommendation marks a failed recommendation request: the model
// call failed or its output did not parse as the expected JSON array.
// There is no retry and no partial result.
var ErrRecommendation = errors.New("vendor recommendation failed")

// ErrChatUnavailable marks a failed chat request. The caller shows the
// canned apology message instead of failing silently.
var ErrChatUnavailable = errors.New("chat assistant unavailable")

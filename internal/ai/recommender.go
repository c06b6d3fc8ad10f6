package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"vira-api/internal/models"
)

const defaultMaxLogLength = 200

// Recommender asks the model to rank vendors against project
// requirements. The prompt embeds the full vendor list serialized as
// JSON and the response must be a JSON array of
// {"vendorName": ..., "reason": ...} objects.
type Recommender struct {
	generator ContentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewRecommender(generator ContentGenerator, logger *zap.Logger) *Recommender {
	return &Recommender{
		generator: generator,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

// Recommend builds the matching prompt, sends it to the model and
// strictly parses the response. A malformed response is a hard
// ErrRecommendation, never a partial list.
func (r *Recommender) Recommend(ctx context.Context, req models.ProjectRequirements, vendors []models.Vendor) ([]VendorRecommendation, error) {
	vendorsJSON, err := json.MarshalIndent(vendors, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal vendor list: %v", ErrRecommendation, err)
	}

	prompt := buildRecommendationPrompt(req, string(vendorsJSON))

	r.logger.Debug("recommendation request",
		zap.Int("vendor_count", len(vendors)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", truncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendation, err)
	}

	r.logger.Debug("recommendation response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", truncateForLog(raw, r.maxLogLen)),
	)

	recs, err := parseRecommendations(raw)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func buildRecommendationPrompt(req models.ProjectRequirements, vendorsJSON string) string {
	location := "Any"
	if req.Location != nil && strings.TrimSpace(*req.Location) != "" {
		location = strings.TrimSpace(*req.Location)
	}

	var b strings.Builder
	b.WriteString("You are a vendor recommendation expert. Based on the following project requirements,\n")
	b.WriteString("and the provided list of vendors, return a ranked list of the top 3-5 vendor names\n")
	b.WriteString("that are the best match. Provide a short reason for each recommendation.\n")
	b.WriteString("Omit vendors you have no information about.\n\n")
	b.WriteString("Project Requirements:\n")
	fmt.Fprintf(&b, "- Scope: %s\n", req.Scope)
	fmt.Fprintf(&b, "- Budget: $%g\n", req.Budget)
	fmt.Fprintf(&b, "- Location: %s\n", location)
	fmt.Fprintf(&b, "- Preferred Attributes: %s\n\n", req.PreferredVendorAttributes)
	b.WriteString("Available Vendors:\n")
	b.WriteString(vendorsJSON)
	b.WriteString("\n\nOutput format must be a JSON array of objects, each with \"vendorName\" and \"reason\" keys.\n")
	return b.String()
}

// parseRecommendations decodes the model output as a JSON array of
// recommendations. Fenced code blocks are stripped first; anything
// else non-JSON fails the whole call.
func parseRecommendations(raw string) ([]VendorRecommendation, error) {
	cleaned := extractJSON(raw)

	var recs []VendorRecommendation
	if err := json.Unmarshal([]byte(cleaned), &recs); err != nil {
		return nil, fmt.Errorf("%w: parse model response: %v", ErrRecommendation, err)
	}

	for i, rec := range recs {
		if strings.TrimSpace(rec.VendorName) == "" {
			return nil, fmt.Errorf("%w: entry %d has no vendorName", ErrRecommendation, i)
		}
	}
	return recs, nil
}

// Augment attaches full vendor records to recommendations by
// case-sensitive exact name match. Recommendations with no matching
// vendor are dropped.
func Augment(recs []VendorRecommendation, vendors []models.Vendor) []RecommendedVendor {
	byName := make(map[string]models.Vendor, len(vendors))
	for _, v := range vendors {
		byName[v.Name] = v
	}

	out := make([]RecommendedVendor, 0, len(recs))
	for _, rec := range recs {
		v, ok := byName[rec.VendorName]
		if !ok {
			continue
		}
		out = append(out, RecommendedVendor{
			VendorName: rec.VendorName,
			Reason:     rec.Reason,
			Details:    v,
		})
	}
	return out
}

// RecommendedVendor is a recommendation augmented with the matching
// vendor record.
type RecommendedVendor struct {
	VendorName string        `json:"vendorName"`
	Reason     string        `json:"reason"`
	Details    models.Vendor `json:"details"`
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// truncateForLog shortens s to limit runes, appending an ellipsis when truncated.
func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

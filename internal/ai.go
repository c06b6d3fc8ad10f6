package internal

import (
	"encoding/json"
	"net/http"
	"strings"

	"vira-api/internal/ai"
	"vira-api/internal/models"

	"go.uber.org/zap"
)

// Error messages surfaced to clients when the model is unreachable or
// returns garbage. Kept stable so frontends can match on them.
const (
	msgRecommendationFailed = "Failed to get vendor recommendations."
	msgChatUnavailable      = "ViRA is currently unable to respond."
)

type matchVendorsRequest struct {
	Scope                     string  `json:"scope"`
	Budget                    float64 `json:"budget"`
	Location                  *string `json:"location"`
	PreferredVendorAttributes string  `json:"preferredVendorAttributes"`
}

type matchVendorsResponse struct {
	Recommendations []ai.RecommendedVendor `json:"recommendations"`
}

// matchVendors asks the model to rank stored vendors against the given
// project requirements.
func (s *Server) matchVendors(w http.ResponseWriter, r *http.Request) {
	if s.Recommender == nil {
		http.Error(w, "AI is not configured", http.StatusServiceUnavailable)
		return
	}

	var in matchVendorsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if len(strings.TrimSpace(in.Scope)) < 10 {
		http.Error(w, "scope must be at least 10 characters", 400)
		return
	}
	if len(strings.TrimSpace(in.PreferredVendorAttributes)) < 10 {
		http.Error(w, "preferredVendorAttributes must be at least 10 characters", 400)
		return
	}
	if in.Budget < 0 {
		http.Error(w, "budget must not be negative", 400)
		return
	}

	vendors, err := s.fetchAllVendors(r)
	if err != nil {
		s.Metrics.ObserveAI("match-vendors", "error")
		http.Error(w, err.Error(), 500)
		return
	}

	req := models.ProjectRequirements{
		Scope:                     in.Scope,
		Budget:                    in.Budget,
		Location:                  in.Location,
		PreferredVendorAttributes: in.PreferredVendorAttributes,
	}

	recs, err := s.Recommender.Recommend(r.Context(), req, vendors)
	if err != nil {
		s.Metrics.ObserveAI("match-vendors", "error")
		s.Logger.Error("vendor recommendation failed", zap.Error(err))
		http.Error(w, msgRecommendationFailed, http.StatusBadGateway)
		return
	}

	s.Metrics.ObserveAI("match-vendors", "ok")
	writeJSON(w, http.StatusOK, matchVendorsResponse{
		Recommendations: ai.Augment(recs, vendors),
	})
}

type chatRequest struct {
	Question string `json:"question"`
	// VendorData optionally overrides the context; when empty the
	// handler serializes the stored vendor list.
	VendorData string `json:"vendorData"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// chatWithVira answers a free-text question using vendor records as
// context.
func (s *Server) chatWithVira(w http.ResponseWriter, r *http.Request) {
	if s.Chat == nil {
		http.Error(w, "AI is not configured", http.StatusServiceUnavailable)
		return
	}

	var in chatRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if strings.TrimSpace(in.Question) == "" {
		http.Error(w, "question is required", 400)
		return
	}

	vendorContext := in.VendorData
	if vendorContext == "" {
		vendors, err := s.fetchAllVendors(r)
		if err != nil {
			s.Metrics.ObserveAI("chat", "error")
			http.Error(w, err.Error(), 500)
			return
		}
		data, err := json.Marshal(vendors)
		if err != nil {
			s.Metrics.ObserveAI("chat", "error")
			http.Error(w, err.Error(), 500)
			return
		}
		vendorContext = string(data)
	}

	answer, err := s.Chat.Ask(r.Context(), in.Question, vendorContext)
	if err != nil {
		s.Metrics.ObserveAI("chat", "error")
		s.Logger.Error("chat request failed", zap.Error(err))
		http.Error(w, msgChatUnavailable, http.StatusBadGateway)
		return
	}

	s.Metrics.ObserveAI("chat", "ok")
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

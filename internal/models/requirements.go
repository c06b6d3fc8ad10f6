package models

// ProjectRequirements is the ephemeral input to vendor matching.
// It is validated at the request boundary and never persisted.
type ProjectRequirements struct {
	Scope                     string  `json:"scope"`
	Budget                    float64 `json:"budget"`
	Location                  *string `json:"location,omitempty"`
	PreferredVendorAttributes string  `json:"preferredVendorAttributes"`
}

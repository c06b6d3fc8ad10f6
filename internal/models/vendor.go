package models

import "time"

// Vendor is a service provider that can be assigned to projects and rated.
// Rating and ReviewCount are derived fields: they are recomputed by the
// rating aggregator from project team ratings and are never settable
// through create/update requests.
type Vendor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     *string   `json:"location,omitempty"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"reviewCount"`
	Services     []string  `json:"services"`
	ContactEmail *string   `json:"contactEmail,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

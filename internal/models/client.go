package models

import "time"

// Client is the customer entity on whose behalf a project is run.
type Client struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contactPerson,omitempty"`
	ContactEmail  *string   `json:"contactEmail,omitempty"`
	Industry      *string   `json:"industry,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	LogoURL       *string   `json:"logoUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

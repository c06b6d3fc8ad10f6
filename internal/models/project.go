package models

import "time"

// Project statuses accepted on create/update.
var ValidProjectStatuses = []string{"Planning", "In Progress", "Completed", "On Hold"}

// IsValidProjectStatus reports whether s is one of the fixed statuses.
func IsValidProjectStatus(s string) bool {
	for _, v := range ValidProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Project is a unit of work, optionally linked to one vendor and one
// client. VendorID/ClientID are references, not ownership: deleting a
// vendor or client leaves projects pointing at the dead id.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Budget      float64   `json:"budget"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	VendorID    *string   `json:"vendorId,omitempty"`
	ClientID    *string   `json:"clientId,omitempty"`
	TeamRating  *int      `json:"teamRating,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

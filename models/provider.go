package models

// Provider is the read-only slice of a provider profile this service needs:
// enough to render contact affordances on a booking card.
type Provider struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PhoneNumber  string  `json:"phoneNumber,omitempty"`
	ProfileImage string  `json:"profileImage,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
}

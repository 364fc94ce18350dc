package masterdata

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the party or item does not exist.
	ErrNotFound = errors.New("masterdata: not found")
)

// Party represents a customer or supplier on the tenant's books.
type Party struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin,omitempty"`
	Address   string    `json:"address,omitempty"`
	State     string    `json:"state,omitempty"`
	StateCode string    `json:"state_code,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a billable product or service. Rate is the live rate that
// document reports resolve against.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	HSNCode   string    `json:"hsn_code,omitempty"`
	Unit      string    `json:"unit,omitempty"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
}

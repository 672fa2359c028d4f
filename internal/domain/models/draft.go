package models

import (
	"encoding/json"
	"time"
)

// Draft is an autosaved, partially completed booking form.
type Draft struct {
	ID        string          `json:"id"`
	Step      int             `json:"step"`
	Data      json.RawMessage `json:"data"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func (d Draft) Expired(now time.Time) bool {
	return !d.ExpiresAt.After(now)
}

package models

import "time"

// Preference is a persisted viewer setting.
type Preference struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

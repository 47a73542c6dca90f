// Package models defines the domain types for Koyomi.
package models

import "time"

// Setting keys stored in the settings table.
const (
	SettingUserBirthday = "userBirthday"
)

// Character is a registered entity with a recurring annual birthday.
type Character struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Birthday string `json:"birthday"` // canonical "MM-DD", zero-padded, no year
	Source   string `json:"source,omitempty"`
	// Image is a data-URL encoding of a user-supplied picture, empty if none.
	// It is never imported from tabular sources and never exported.
	Image               string    `json:"image,omitempty"`
	UserBirthdayMessage string    `json:"userBirthdayMessage,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// View modes supported by the list projection.
const (
	ViewModeCard = "card"
	ViewModeList = "list"
)

// FilterAll is the category filter value that keeps every character.
const FilterAll = "all"

// ViewState is the ephemeral presentation state passed into each projection
// call. It is a plain value, never persisted and never held as shared state.
type ViewState struct {
	Filter string `json:"filter"` // FilterAll or an exact category string
	Mode   string `json:"mode"`   // ViewModeCard or ViewModeList
}

// DefaultViewState returns the state used when a client supplies nothing.
func DefaultViewState() ViewState {
	return ViewState{Filter: FilterAll, Mode: ViewModeCard}
}

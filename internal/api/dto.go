package api

import (
	"github.com/mizutama/koyomi/internal/notify"
	"github.com/mizutama/koyomi/internal/registry"
	"github.com/mizutama/koyomi/internal/tabular"
	"github.com/mizutama/koyomi/internal/view"
)

// CharacterRequest is the request body for creating or updating a character.
type CharacterRequest = registry.CharacterInput

// CharacterRow is a projected character as it appears in list responses
// (aliased from the domain layer).
type CharacterRow = view.Row

// CharacterListResponse wraps a projected character listing together with the
// category index and the filter the projection was resolved against (aliased
// from the domain layer).
type CharacterListResponse = registry.ViewResult

// CategoriesResponse wraps the category index.
type CategoriesResponse struct {
	Categories []string `json:"categories" validate:"required"`
}

// OwnerBirthdayRequest is the request body for setting the owner's birthday.
type OwnerBirthdayRequest struct {
	Birthday string `json:"birthday" example:"07-07" validate:"required"`
}

// OwnerBirthdayResponse reports the stored owner birthday. Configured is
// false when no birthday has been saved yet.
type OwnerBirthdayResponse struct {
	Birthday   string `json:"birthday" example:"07-07"`
	Configured bool   `json:"configured" example:"true" validate:"required"`
}

// ImportResponse wraps the outcome of a bulk import.
type ImportResponse struct {
	Report tabular.Report `json:"report" validate:"required"`
	Empty  bool           `json:"empty" example:"false" validate:"required"`
}

// CheckResponse reports the notifications produced by a birthday check
// (aliased from the domain layer).
type CheckResponse = notify.Report

// Package registry coordinates store access, validation, and the
// post-mutation recompute that keeps projections and feeds fresh.
package registry

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mizutama/koyomi/internal/apperr"
	"github.com/mizutama/koyomi/internal/datekey"
	"github.com/mizutama/koyomi/internal/models"
	"github.com/mizutama/koyomi/internal/store"
	"github.com/mizutama/koyomi/internal/view"
)

// CharacterInput carries the mutable fields of a character as submitted by a
// caller. Birthday may arrive loosely formatted ("5-5"); it is normalized to
// the canonical zero-padded form before validation and persistence.
type CharacterInput struct {
	Name                string `json:"name"`
	Birthday            string `json:"birthday"`
	Source              string `json:"source"`
	Image               string `json:"image"`
	UserBirthdayMessage string `json:"userBirthdayMessage"`
}

// Validate checks the input after normalization.
func (in CharacterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Birthday, validation.Required, validation.Match(datekey.Canonical)),
	)
}

// ViewResult is the full projection returned after reads and mutations: the
// display rows plus the recomputed category options and the filter the client
// should select next.
type ViewResult struct {
	Rows       []view.Row       `json:"rows"`
	Categories []string         `json:"categories"`
	Filter     string           `json:"filter"`
	State      models.ViewState `json:"state"`
}

// Service exposes the registry operations.
type Service struct {
	store    store.Registry
	clock    datekey.Clock
	onMutate func()
}

// NewService creates a registry service. onMutate, if non-nil, runs after
// every successful mutation (create, update, delete, import, setting write),
// strictly after the store write and before the call returns.
func NewService(st store.Registry, clock datekey.Clock, onMutate func()) *Service {
	if clock == nil {
		clock = datekey.RealClock{}
	}
	return &Service{store: st, clock: clock, onMutate: onMutate}
}

// Store exposes the underlying registry for collaborators that only read.
func (s *Service) Store() store.Registry { return s.store }

// Clock exposes the service clock so collaborators share one notion of today.
func (s *Service) Clock() datekey.Clock { return s.clock }

func (s *Service) mutated() {
	if s.onMutate != nil {
		s.onMutate()
	}
}

// normalize trims free-text fields and zero-pads the birthday.
func normalize(in CharacterInput) (CharacterInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Source = strings.TrimSpace(in.Source)
	if key, ok := datekey.Normalize(in.Birthday); ok {
		in.Birthday = key
	} else {
		in.Birthday = strings.TrimSpace(in.Birthday)
	}
	if err := in.Validate(); err != nil {
		return in, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return in, nil
}

// AddCharacter validates and persists a new character.
func (s *Service) AddCharacter(_ context.Context, in CharacterInput) (*models.Character, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	c := models.Character{
		Name:                in.Name,
		Birthday:            in.Birthday,
		Source:              in.Source,
		Image:               in.Image,
		UserBirthdayMessage: in.UserBirthdayMessage,
	}
	id, err := s.store.CreateCharacter(c)
	if err != nil {
		return nil, err
	}
	s.mutated()
	return s.store.GetCharacter(id)
}

// UpdateCharacter replaces a character's mutable fields. When the input
// carries no image, the previously stored image is preserved exactly.
func (s *Service) UpdateCharacter(_ context.Context, id string, in CharacterInput) (*models.Character, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	if in.Image == "" {
		old, err := s.store.GetCharacter(id)
		if err != nil {
			return nil, err
		}
		in.Image = old.Image
	}
	c := models.Character{
		Name:                in.Name,
		Birthday:            in.Birthday,
		Source:              in.Source,
		Image:               in.Image,
		UserBirthdayMessage: in.UserBirthdayMessage,
	}
	if err := s.store.UpdateCharacter(id, c); err != nil {
		return nil, err
	}
	s.mutated()
	return s.store.GetCharacter(id)
}

// DeleteCharacter removes a character by id.
func (s *Service) DeleteCharacter(_ context.Context, id string) error {
	if err := s.store.DeleteCharacter(id); err != nil {
		return err
	}
	s.mutated()
	return nil
}

// GetCharacter returns a single character.
func (s *Service) GetCharacter(_ context.Context, id string) (*models.Character, error) {
	return s.store.GetCharacter(id)
}

// View projects the current character set through the given view state.
// The returned filter reflects the stale-filter fallback: a selected category
// that no longer exists collapses to "all" (and the rows are re-projected
// accordingly).
func (s *Service) View(_ context.Context, state models.ViewState) (*ViewResult, error) {
	chars, err := s.store.ListCharacters()
	if err != nil {
		return nil, err
	}
	cats := view.Categories(chars)
	state.Filter = view.NextFilter(state.Filter, cats)
	if state.Mode == "" {
		state.Mode = models.ViewModeCard
	}
	rows := view.Project(chars, state, datekey.Today(s.clock))
	if rows == nil {
		rows = []view.Row{}
	}
	if cats == nil {
		cats = []string{}
	}
	return &ViewResult{Rows: rows, Categories: cats, Filter: state.Filter, State: state}, nil
}

// Categories returns the distinct categories currently in the store.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	chars, err := s.store.ListCharacters()
	if err != nil {
		return nil, err
	}
	cats := view.Categories(chars)
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

// SaveOwnerBirthday stores the owner's own "MM-DD" birthday, zero-padding
// loose input. Overwrites any previous value.
func (s *Service) SaveOwnerBirthday(_ context.Context, value string) (string, error) {
	key, ok := datekey.Normalize(value)
	if !ok {
		return "", fmt.Errorf("%w: birthday must be MM-DD, got %q", apperr.ErrValidation, value)
	}
	if err := s.store.PutSetting(models.SettingUserBirthday, key); err != nil {
		return "", err
	}
	s.mutated()
	return key, nil
}

// OwnerBirthday returns the configured owner birthday. Absence is a valid
// state surfaced as apperr.ErrNotFound.
func (s *Service) OwnerBirthday(_ context.Context) (string, error) {
	return s.store.GetSetting(models.SettingUserBirthday)
}

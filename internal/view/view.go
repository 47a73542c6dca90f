// Package view derives presentation-ready projections from the character set.
// Projections are pure functions of (characters, view state, today key); the
// store remains the only source of truth.
package view

import (
	"sort"

	"github.com/mizutama/koyomi/internal/models"
)

// BirthdayMarker is appended to the display name on a character's birthday.
const BirthdayMarker = " 🎂"

// Row is one display entry produced by Project.
type Row struct {
	models.Character
	DisplayName     string `json:"display_name"`
	IsBirthdayToday bool   `json:"is_birthday_today"`
}

// Project filters by category, sorts for list mode, and derives per-row
// display fields. today is the canonical "MM-DD" key for the current date.
//
// Filtering is an exact, case-sensitive match on Source; trimming happened at
// write time. In list mode rows sort ascending by birthday using plain string
// comparison, which is date-ordered because the key is zero-padded. Card mode
// leaves store order untouched.
func Project(chars []models.Character, state models.ViewState, today string) []Row {
	filtered := chars
	if state.Filter != "" && state.Filter != models.FilterAll {
		filtered = make([]models.Character, 0, len(chars))
		for _, c := range chars {
			if c.Source == state.Filter {
				filtered = append(filtered, c)
			}
		}
	}

	if state.Mode == models.ViewModeList {
		sorted := make([]models.Character, len(filtered))
		copy(sorted, filtered)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Birthday < sorted[j].Birthday
		})
		filtered = sorted
	}

	rows := make([]Row, len(filtered))
	for i, c := range filtered {
		r := Row{Character: c, DisplayName: c.Name}
		if c.Birthday == today {
			r.IsBirthdayToday = true
			r.DisplayName = c.Name + BirthdayMarker
		}
		rows[i] = r
	}
	return rows
}

// Categories returns the distinct non-empty source values, sorted
// lexicographically. It is recomputed after every store mutation so that
// filter options never go stale.
func Categories(chars []models.Character) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range chars {
		if c.Source == "" {
			continue
		}
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}
		out = append(out, c.Source)
	}
	sort.Strings(out)
	return out
}

// NextFilter keeps the currently selected filter if it still exists among the
// recomputed categories, otherwise falls back to "all".
func NextFilter(current string, categories []string) string {
	if current == "" || current == models.FilterAll {
		return models.FilterAll
	}
	for _, c := range categories {
		if c == current {
			return current
		}
	}
	return models.FilterAll
}

// Package notify implements the birthday check: one synchronous pass that
// compares every character's birthday, and the owner's configured birthday,
// against today's local date key and emits notification events.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mizutama/koyomi/internal/apperr"
	"github.com/mizutama/koyomi/internal/datekey"
	"github.com/mizutama/koyomi/internal/models"
	"github.com/mizutama/koyomi/internal/store"
)

// Event types emitted by a check pass.
const (
	EventCharacterBirthday     = "character.birthday"
	EventOwnerBirthdayGreeting = "owner.greeting"
)

// FallbackGreeting is used when a character has no stored message for the
// owner's birthday.
const FallbackGreeting = "Happy birthday!"

// Event is a single notification. Image may be empty.
type Event struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Image string `json:"image,omitempty"`
}

// Sink delivers events to the user, best effort. A sink may be entirely
// unavailable; its errors are swallowed per event and never retried.
type Sink interface {
	Notify(ctx context.Context, e Event) error
}

// Report summarizes one check pass.
type Report struct {
	Today              string `json:"today"`
	CharacterBirthdays int    `json:"character_birthdays"`
	OwnerGreetings     int    `json:"owner_greetings"`
}

// Notifier runs the daily check.
type Notifier struct {
	Store store.Registry
	Clock datekey.Clock
	Sink  Sink
}

// New creates a Notifier.
func New(st store.Registry, clock datekey.Clock, sink Sink) *Notifier {
	if clock == nil {
		clock = datekey.RealClock{}
	}
	return &Notifier{Store: st, Clock: clock, Sink: sink}
}

// Check runs one pass. The two triggers are independent: a character sharing
// the owner's birthday produces both a birthday event and a greeting event.
// Emission follows store order. Store read failures surface; sink failures do
// not.
func (n *Notifier) Check(ctx context.Context) (Report, error) {
	today := datekey.Today(n.Clock)
	rep := Report{Today: today}
	log := slog.With(slog.String("component", "notify"), slog.String("today", today))

	// Trigger 1: characters whose birthday is today.
	celebrants, err := n.Store.ListByBirthday(today)
	if err != nil {
		return rep, fmt.Errorf("notify: birthday scan: %w", err)
	}
	for _, c := range celebrants {
		n.emit(ctx, log, Event{
			Type:  EventCharacterBirthday,
			Title: "Character birthday",
			Body:  fmt.Sprintf("Today is %s's birthday!", c.Name),
			Image: c.Image,
		})
		rep.CharacterBirthdays++
	}

	// Trigger 2: the owner's own birthday. Every registered character sends
	// its greeting, falling back to a generic one.
	owner, err := n.Store.GetSetting(models.SettingUserBirthday)
	if errors.Is(err, apperr.ErrNotFound) {
		return rep, nil
	}
	if err != nil {
		return rep, fmt.Errorf("notify: read owner birthday: %w", err)
	}
	if owner != today {
		return rep, nil
	}

	chars, err := n.Store.ListCharacters()
	if err != nil {
		return rep, fmt.Errorf("notify: list characters: %w", err)
	}
	for _, c := range chars {
		msg := c.UserBirthdayMessage
		if msg == "" {
			msg = FallbackGreeting
		}
		n.emit(ctx, log, Event{
			Type:  EventOwnerBirthdayGreeting,
			Title: fmt.Sprintf("A wish from %s", c.Name),
			Body:  msg,
			Image: c.Image,
		})
		rep.OwnerGreetings++
	}

	log.Info("birthday check finished",
		slog.Int("character_birthdays", rep.CharacterBirthdays),
		slog.Int("owner_greetings", rep.OwnerGreetings))
	return rep, nil
}

// emit hands the event to the sink. Delivery is best effort: an absent or
// failing sink is a silent no-op for that event.
func (n *Notifier) emit(ctx context.Context, log *slog.Logger, e Event) {
	if n.Sink == nil {
		return
	}
	if err := n.Sink.Notify(ctx, e); err != nil {
		log.Debug("sink unavailable", slog.String("type", e.Type), slog.String("error", err.Error()))
	}
}

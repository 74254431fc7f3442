// Package scheduler implements the per-card review state machine and its
// policy parameters. The interval curve is entirely preset-defined: every
// number the Review transition uses comes out of a Preset, so swapping
// presets swaps the policy without touching the machine.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Preset validation errors.
var (
	ErrInvalidPreset = errors.New("invalid scheduler preset")
)

// ReviewAction grades a single review outcome.
type ReviewAction string

const (
	// ReviewAgain is a failing grade: the card was not recalled.
	ReviewAgain ReviewAction = "again"

	// ReviewHard means recalled with serious difficulty.
	ReviewHard ReviewAction = "hard"

	// ReviewGood means recalled correctly.
	ReviewGood ReviewAction = "good"

	// ReviewEasy means recalled effortlessly.
	ReviewEasy ReviewAction = "easy"
)

// ValidReviewAction reports whether a is a known review action.
func ValidReviewAction(a ReviewAction) bool {
	switch a {
	case ReviewAgain, ReviewHard, ReviewGood, ReviewEasy:
		return true
	default:
		return false
	}
}

// Preset is a named, immutable parameter set governing interval growth.
// Presets are shared by reference from decks and copied into card schedulers
// at creation time; they are never mutated in place.
type Preset struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	// LearningSteps are the short intra-day intervals a card climbs through
	// in the learning state before entering the review state.
	LearningSteps []time.Duration `json:"learning_steps"`

	// MinInterval is the floor for every computed interval and the interval
	// a scheduler resets to.
	MinInterval time.Duration `json:"min_interval"`

	// GraduatingInterval is the first review-state interval, assigned when
	// the learning steps are exhausted.
	GraduatingInterval time.Duration `json:"graduating_interval"`

	// MaxInterval caps interval growth and is assigned on graduation.
	MaxInterval time.Duration `json:"max_interval"`

	// Ease bounds and starting value. Ease multiplies the interval on a
	// good review.
	EaseStart float64 `json:"ease_start"`
	EaseMin   float64 `json:"ease_min"`
	EaseMax   float64 `json:"ease_max"`

	// Per-action ease deltas applied on review-state reviews.
	EaseAdjustmentAgain float64 `json:"ease_adjustment_again"`
	EaseAdjustmentHard  float64 `json:"ease_adjustment_hard"`
	EaseAdjustmentEasy  float64 `json:"ease_adjustment_easy"`

	// HardModifier scales the interval on a hard review (instead of ease).
	HardModifier float64 `json:"hard_modifier"`

	// EasyModifier is an extra multiplier on top of ease for easy reviews.
	EasyModifier float64 `json:"easy_modifier"`

	// LapseFactor shrinks the interval when a review-state card fails.
	// Must be in (0, 1] so a failing action can never grow the interval.
	LapseFactor float64 `json:"lapse_factor"`
}

// DefaultPreset returns the built-in preset assigned to decks that do not
// choose their own.
func DefaultPreset() Preset {
	return Preset{
		ID:   uuid.New(),
		Name: "default",
		LearningSteps: []time.Duration{
			1 * time.Minute,
			10 * time.Minute,
			1 * time.Hour,
		},
		MinInterval:         1 * time.Minute,
		GraduatingInterval:  24 * time.Hour,
		MaxInterval:         365 * 24 * time.Hour,
		EaseStart:           2.0,
		EaseMin:             1.3,
		EaseMax:             2.5,
		EaseAdjustmentAgain: -0.20,
		EaseAdjustmentHard:  -0.15,
		EaseAdjustmentEasy:  0.15,
		HardModifier:        1.2,
		EasyModifier:        1.3,
		LapseFactor:         0.5,
	}
}

// Validate fails fast on missing or degenerate parameters so a broken
// preset can never silently produce degenerate intervals.
func (p Preset) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: preset ID cannot be nil", ErrInvalidPreset)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: preset name cannot be empty", ErrInvalidPreset)
	}
	if len(p.LearningSteps) == 0 {
		return fmt.Errorf("%w: at least one learning step required", ErrInvalidPreset)
	}
	for i, step := range p.LearningSteps {
		if step <= 0 {
			return fmt.Errorf("%w: learning step %d must be positive", ErrInvalidPreset, i)
		}
	}
	if p.MinInterval <= 0 {
		return fmt.Errorf("%w: min interval must be positive", ErrInvalidPreset)
	}
	if p.GraduatingInterval < p.MinInterval {
		return fmt.Errorf("%w: graduating interval below min interval", ErrInvalidPreset)
	}
	if p.MaxInterval < p.GraduatingInterval {
		return fmt.Errorf("%w: max interval below graduating interval", ErrInvalidPreset)
	}
	if p.EaseMin <= 0 || p.EaseMax < p.EaseMin {
		return fmt.Errorf("%w: ease bounds must satisfy 0 < min <= max", ErrInvalidPreset)
	}
	if p.EaseStart < p.EaseMin || p.EaseStart > p.EaseMax {
		return fmt.Errorf("%w: ease start outside [min, max]", ErrInvalidPreset)
	}
	if p.HardModifier <= 0 {
		return fmt.Errorf("%w: hard modifier must be positive", ErrInvalidPreset)
	}
	if p.EasyModifier <= 0 {
		return fmt.Errorf("%w: easy modifier must be positive", ErrInvalidPreset)
	}
	if p.LapseFactor <= 0 || p.LapseFactor > 1 {
		return fmt.Errorf("%w: lapse factor must be in (0, 1]", ErrInvalidPreset)
	}
	return nil
}

// clampEase bounds an ease value to the preset's [EaseMin, EaseMax].
func (p Preset) clampEase(ease float64) float64 {
	if ease < p.EaseMin {
		return p.EaseMin
	}
	if ease > p.EaseMax {
		return p.EaseMax
	}
	return ease
}

// clampInterval bounds an interval to the preset's [MinInterval, MaxInterval].
func (p Preset) clampInterval(interval time.Duration) time.Duration {
	if interval < p.MinInterval {
		return p.MinInterval
	}
	if interval > p.MaxInterval {
		return p.MaxInterval
	}
	return interval
}

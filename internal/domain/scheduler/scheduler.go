package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// Scheduler errors.
var (
	ErrInvalidAction = errors.New("invalid review action")
	ErrInvalidState  = errors.New("invalid scheduler state")
)

// State is the review-progress state of a single card.
type State string

const (
	// StateNew marks a card that has never been reviewed.
	StateNew State = "new"

	// StateLearning marks a card climbing the preset's learning steps.
	StateLearning State = "learning"

	// StateReview marks a card in long-term review rotation.
	StateReview State = "review"

	// StateGraduated marks a card administratively promoted out of the
	// rotation. Terminal success: further reviews do not change state.
	StateGraduated State = "graduated"
)

// ValidState reports whether s is a known scheduler state.
func ValidState(s State) bool {
	switch s {
	case StateNew, StateLearning, StateReview, StateGraduated:
		return true
	default:
		return false
	}
}

// Scheduler is the per-card review state machine. It is embedded 1:1 in a
// card and has no independent identity. All transitions are pure functions
// of (state, interval, ease, step, preset, action, now) — value in, value
// out — so replaying the same inputs always yields the same schedule.
type Scheduler struct {
	Preset         Preset        `json:"preset"`
	State          State         `json:"state"`
	StepIndex      int           `json:"step_index"`
	Interval       time.Duration `json:"interval"`
	Ease           float64       `json:"ease"`
	DueAt          time.Time     `json:"due_at"`
	LastReviewedAt time.Time     `json:"last_reviewed_at,omitempty"`
}

// New builds a fresh scheduler in StateNew with the preset's minimum
// interval, due immediately. Fails fast on an invalid preset.
func New(preset Preset, now time.Time) (Scheduler, error) {
	if err := preset.Validate(); err != nil {
		return Scheduler{}, err
	}
	return Scheduler{
		Preset:   preset,
		State:    StateNew,
		Interval: preset.MinInterval,
		Ease:     preset.EaseStart,
		DueAt:    now.UTC(),
	}, nil
}

// Review applies a single graded review at the given time and returns the
// resulting scheduler. The returned schedule always satisfies: interval is
// non-negative, the due date is not before now, and a failing action never
// yields a larger interval than before the review.
func (s Scheduler) Review(action ReviewAction, now time.Time) (Scheduler, error) {
	if !ValidReviewAction(action) {
		return Scheduler{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	now = now.UTC()
	prev := s.Interval
	next := s
	next.LastReviewedAt = now

	switch s.State {
	case StateGraduated:
		// Absorbing state: reviews keep the card parked at the ceiling.
		next.Interval = s.Preset.MaxInterval

	case StateNew:
		next.State = StateLearning
		next.StepIndex = 0
		if action == ReviewEasy {
			next.StepIndex = 1
		}
		next = next.placeOnStep()

	case StateLearning:
		switch action {
		case ReviewAgain:
			next.StepIndex = 0
		case ReviewHard:
			// Repeat the current step.
		case ReviewGood:
			next.StepIndex++
		case ReviewEasy:
			next.StepIndex += 2
		}
		next = next.placeOnStep()

	case StateReview:
		switch action {
		case ReviewAgain:
			next.State = StateLearning
			next.StepIndex = 0
			next.Ease = s.Preset.clampEase(s.Ease + s.Preset.EaseAdjustmentAgain)
			next.Interval = s.Preset.clampInterval(
				time.Duration(float64(prev) * s.Preset.LapseFactor))
		case ReviewHard:
			next.Ease = s.Preset.clampEase(s.Ease + s.Preset.EaseAdjustmentHard)
			next.Interval = s.Preset.clampInterval(
				time.Duration(float64(prev) * s.Preset.HardModifier))
		case ReviewGood:
			next.Interval = s.Preset.clampInterval(
				time.Duration(float64(prev) * s.Ease))
		case ReviewEasy:
			next.Ease = s.Preset.clampEase(s.Ease + s.Preset.EaseAdjustmentEasy)
			next.Interval = s.Preset.clampInterval(
				time.Duration(float64(prev) * s.Ease * s.Preset.EasyModifier))
		}

	default:
		return Scheduler{}, fmt.Errorf("%w: %q", ErrInvalidState, s.State)
	}

	// A failing grade must never grow the interval, whatever the preset's
	// step layout looks like.
	if action == ReviewAgain && next.Interval > prev {
		next.Interval = prev
	}

	next.DueAt = now.Add(next.Interval)
	return next, nil
}

// placeOnStep assigns the interval for the current learning step, promoting
// the card into the review state when the steps are exhausted.
func (s Scheduler) placeOnStep() Scheduler {
	if s.StepIndex >= len(s.Preset.LearningSteps) {
		s.State = StateReview
		s.StepIndex = 0
		s.Interval = s.Preset.GraduatingInterval
		return s
	}
	s.Interval = s.Preset.LearningSteps[s.StepIndex]
	return s
}

// Graduate force-promotes the card to the graduated state with the preset's
// maximum interval, regardless of current state. Used for administrative
// promotion, not via normal review.
func (s Scheduler) Graduate(now time.Time) Scheduler {
	now = now.UTC()
	s.State = StateGraduated
	s.StepIndex = 0
	s.Interval = s.Preset.MaxInterval
	s.DueAt = now.Add(s.Interval)
	return s
}

// Reset force-returns the card to the new state with the preset's minimum
// interval and starting ease, discarding review history. Used when a card's
// content changes materially enough to invalidate its progress.
func (s Scheduler) Reset(now time.Time) Scheduler {
	now = now.UTC()
	s.State = StateNew
	s.StepIndex = 0
	s.Interval = s.Preset.MinInterval
	s.Ease = s.Preset.EaseStart
	s.DueAt = now
	s.LastReviewedAt = time.Time{}
	return s
}

// UpdatePreset replaces the embedded policy without altering the current
// state or interval; future reviews use the new preset. Fails fast on an
// invalid preset.
func (s Scheduler) UpdatePreset(preset Preset) (Scheduler, error) {
	if err := preset.Validate(); err != nil {
		return Scheduler{}, err
	}
	s.Preset = preset
	return s, nil
}

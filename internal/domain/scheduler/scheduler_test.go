package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) Scheduler {
	t.Helper()
	s, err := New(DefaultPreset(), time.Now())
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()
	now := time.Now()
	preset := DefaultPreset()

	s, err := New(preset, now)
	require.NoError(t, err)

	assert.Equal(t, StateNew, s.State)
	assert.Equal(t, preset.MinInterval, s.Interval)
	assert.Equal(t, preset.EaseStart, s.Ease)
	assert.Equal(t, now.UTC(), s.DueAt)
	assert.True(t, s.LastReviewedAt.IsZero())
}

func TestNewRejectsInvalidPreset(t *testing.T) {
	t.Parallel()
	preset := DefaultPreset()
	preset.LearningSteps = nil

	_, err := New(preset, time.Now())
	require.ErrorIs(t, err, ErrInvalidPreset)
}

func TestReviewRejectsUnknownAction(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)

	_, err := s.Review(ReviewAction("meh"), time.Now())
	require.ErrorIs(t, err, ErrInvalidAction)
}

func TestReviewFromNewEntersLearning(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		action       ReviewAction
		wantStep     int
		wantInterval time.Duration
	}{
		{"again starts at first step", ReviewAgain, 0, 1 * time.Minute},
		{"hard starts at first step", ReviewHard, 0, 1 * time.Minute},
		{"good starts at first step", ReviewGood, 0, 1 * time.Minute},
		{"easy skips to second step", ReviewEasy, 1, 10 * time.Minute},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := newTestScheduler(t)
			now := time.Now()

			next, err := s.Review(tc.action, now)
			require.NoError(t, err)

			assert.Equal(t, StateLearning, next.State)
			assert.Equal(t, tc.wantStep, next.StepIndex)
			assert.Equal(t, tc.wantInterval, next.Interval)
			assert.Equal(t, now.UTC().Add(tc.wantInterval), next.DueAt)
			assert.Equal(t, now.UTC(), next.LastReviewedAt)
		})
	}
}

func TestReviewClimbsLearningSteps(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	now := time.Now()

	// new -> learning step 0
	s, err := s.Review(ReviewGood, now)
	require.NoError(t, err)
	assert.Equal(t, 1*time.Minute, s.Interval)

	// step 0 -> step 1
	s, err = s.Review(ReviewGood, now)
	require.NoError(t, err)
	require.Equal(t, StateLearning, s.State)
	assert.Equal(t, 1, s.StepIndex)
	assert.Equal(t, 10*time.Minute, s.Interval)

	// step 1 -> step 2
	s, err = s.Review(ReviewGood, now)
	require.NoError(t, err)
	assert.Equal(t, 2, s.StepIndex)
	assert.Equal(t, 1*time.Hour, s.Interval)

	// steps exhausted -> review state at graduating interval
	s, err = s.Review(ReviewGood, now)
	require.NoError(t, err)
	assert.Equal(t, StateReview, s.State)
	assert.Equal(t, 24*time.Hour, s.Interval)
}

func TestReviewLearningActions(t *testing.T) {
	t.Parallel()
	now := time.Now()

	// A scheduler parked on the middle learning step.
	base := newTestScheduler(t)
	base.State = StateLearning
	base.StepIndex = 1
	base.Interval = base.Preset.LearningSteps[1]

	testCases := []struct {
		name      string
		action    ReviewAction
		wantState State
		wantStep  int
	}{
		{"again falls back to first step", ReviewAgain, StateLearning, 0},
		{"hard repeats the current step", ReviewHard, StateLearning, 1},
		{"good advances one step", ReviewGood, StateLearning, 2},
		{"easy jumps past the last step into review", ReviewEasy, StateReview, 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			next, err := base.Review(tc.action, now)
			require.NoError(t, err)
			assert.Equal(t, tc.wantState, next.State)
			assert.Equal(t, tc.wantStep, next.StepIndex)
		})
	}
}

func TestReviewStateTransitions(t *testing.T) {
	t.Parallel()
	now := time.Now()

	// A review-state scheduler with a 10-day interval and starting ease.
	newReviewState := func() Scheduler {
		s := newTestScheduler(t)
		s.State = StateReview
		s.Interval = 10 * 24 * time.Hour
		return s
	}

	t.Run("again lapses into learning with shrunk interval", func(t *testing.T) {
		t.Parallel()
		s := newReviewState()
		next, err := s.Review(ReviewAgain, now)
		require.NoError(t, err)

		assert.Equal(t, StateLearning, next.State)
		assert.Equal(t, time.Duration(float64(s.Interval)*s.Preset.LapseFactor), next.Interval)
		assert.InDelta(t, s.Ease+s.Preset.EaseAdjustmentAgain, next.Ease, 1e-9)
	})

	t.Run("hard scales by the hard modifier", func(t *testing.T) {
		t.Parallel()
		s := newReviewState()
		next, err := s.Review(ReviewHard, now)
		require.NoError(t, err)

		assert.Equal(t, StateReview, next.State)
		assert.Equal(t, time.Duration(float64(s.Interval)*s.Preset.HardModifier), next.Interval)
		assert.InDelta(t, s.Ease+s.Preset.EaseAdjustmentHard, next.Ease, 1e-9)
	})

	t.Run("good scales by ease and keeps ease", func(t *testing.T) {
		t.Parallel()
		s := newReviewState()
		next, err := s.Review(ReviewGood, now)
		require.NoError(t, err)

		assert.Equal(t, StateReview, next.State)
		assert.Equal(t, time.Duration(float64(s.Interval)*s.Ease), next.Interval)
		assert.Equal(t, s.Ease, next.Ease)
	})

	t.Run("easy scales by ease and the easy modifier", func(t *testing.T) {
		t.Parallel()
		s := newReviewState()
		next, err := s.Review(ReviewEasy, now)
		require.NoError(t, err)

		assert.Equal(t, StateReview, next.State)
		assert.Equal(t,
			time.Duration(float64(s.Interval)*s.Ease*s.Preset.EasyModifier), next.Interval)
		assert.InDelta(t, s.Ease+s.Preset.EaseAdjustmentEasy, next.Ease, 1e-9)
	})
}

func TestReviewIntervalStaysWithinPresetBounds(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	s.State = StateReview
	s.Interval = s.Preset.MaxInterval
	now := time.Now()

	next, err := s.Review(ReviewEasy, now)
	require.NoError(t, err)
	assert.Equal(t, s.Preset.MaxInterval, next.Interval)

	s.Interval = s.Preset.MinInterval
	next, err = s.Review(ReviewAgain, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, next.Interval, s.Preset.MinInterval)
}

func TestReviewFailingActionNeverGrowsInterval(t *testing.T) {
	t.Parallel()
	now := time.Now()

	// A preset whose first learning step is longer than a new card's
	// starting interval: a failing first review lands on that step, so the
	// interval guard has to clamp it back down.
	preset := DefaultPreset()
	preset.LearningSteps = []time.Duration{12 * time.Hour}

	s, err := New(preset, now)
	require.NoError(t, err)

	next, err := s.Review(ReviewAgain, now)
	require.NoError(t, err)
	assert.LessOrEqual(t, next.Interval, s.Interval)

	// The same property holds for a lapsed review-state card.
	s.State = StateReview
	s.Interval = 2 * time.Hour
	next, err = s.Review(ReviewAgain, now)
	require.NoError(t, err)
	assert.LessOrEqual(t, next.Interval, s.Interval)
}

func TestReviewDueNeverBeforeNow(t *testing.T) {
	t.Parallel()
	now := time.Now()
	s := newTestScheduler(t)

	for _, action := range []ReviewAction{ReviewAgain, ReviewHard, ReviewGood, ReviewEasy} {
		next, err := s.Review(action, now)
		require.NoError(t, err)
		assert.False(t, next.DueAt.Before(now.UTC()), "action %s scheduled in the past", action)
	}
}

func TestReviewGraduatedIsAbsorbing(t *testing.T) {
	t.Parallel()
	now := time.Now()
	s := newTestScheduler(t).Graduate(now)

	for _, action := range []ReviewAction{ReviewAgain, ReviewHard, ReviewGood, ReviewEasy} {
		next, err := s.Review(action, now)
		require.NoError(t, err)
		assert.Equal(t, StateGraduated, next.State)
		assert.Equal(t, s.Preset.MaxInterval, next.Interval)
	}
}

func TestGraduate(t *testing.T) {
	t.Parallel()
	now := time.Now()
	s := newTestScheduler(t)

	g := s.Graduate(now)
	assert.Equal(t, StateGraduated, g.State)
	assert.Equal(t, s.Preset.MaxInterval, g.Interval)
	assert.Equal(t, now.UTC().Add(s.Preset.MaxInterval), g.DueAt)
}

func TestReset(t *testing.T) {
	t.Parallel()
	now := time.Now()
	s := newTestScheduler(t)

	// Push the scheduler somewhere deep, then reset.
	s, err := s.Review(ReviewGood, now)
	require.NoError(t, err)
	s, err = s.Review(ReviewGood, now)
	require.NoError(t, err)

	r := s.Reset(now)
	assert.Equal(t, StateNew, r.State)
	assert.Equal(t, 0, r.StepIndex)
	assert.Equal(t, s.Preset.MinInterval, r.Interval)
	assert.Equal(t, s.Preset.EaseStart, r.Ease)
	assert.True(t, r.LastReviewedAt.IsZero())
}

func TestUpdatePresetKeepsStateAndInterval(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)
	s.State = StateReview
	s.Interval = 48 * time.Hour

	replacement := DefaultPreset()
	replacement.Name = "aggressive"
	replacement.GraduatingInterval = 12 * time.Hour

	next, err := s.UpdatePreset(replacement)
	require.NoError(t, err)
	assert.Equal(t, StateReview, next.State)
	assert.Equal(t, 48*time.Hour, next.Interval)
	assert.Equal(t, replacement.ID, next.Preset.ID)
}

func TestUpdatePresetRejectsInvalidPreset(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t)

	bad := DefaultPreset()
	bad.LapseFactor = 1.5

	_, err := s.UpdatePreset(bad)
	require.ErrorIs(t, err, ErrInvalidPreset)
}

func TestReviewIsDeterministic(t *testing.T) {
	t.Parallel()
	now := time.Now()
	s := newTestScheduler(t)

	a, err := s.Review(ReviewGood, now)
	require.NoError(t, err)
	b, err := s.Review(ReviewGood, now)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

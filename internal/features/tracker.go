package features

import "errors"

// ErrFeatureExpired is returned by Tracker.Fallback once a feature has been
// reused for too long.
var ErrFeatureExpired = errors.New("feature expired")

// Tracker remembers the last successful value of one feature.
//
// The zero value has nothing stored and an expiry of zero, so every
// fallback fails. Use NewTracker.
type Tracker[T any] struct {
	expiry int
	budget int

	value       T
	has         bool
	lastSuccess int
	remaining   int
}

// NewTracker returns a tracker that allows at most budget fallbacks, none
// further than expiry frames after the last success. A negative budget uses
// expiry as the budget.
func NewTracker[T any](expiry, budget int) *Tracker[T] {
	if budget < 0 {
		budget = expiry
	}
	return &Tracker[T]{expiry: expiry, budget: budget}
}

// Succeed stores v as detected in frame and refills the age budget.
func (t *Tracker[T]) Succeed(frame int, v T) {
	t.value = v
	t.has = true
	t.lastSuccess = frame
	t.remaining = t.budget
}

// Fallback returns the stored value for a frame in which detection failed.
//
// Every granted fallback spends one unit of the age budget. When nothing is
// stored, the budget is spent or the last success is more than expiry
// frames back, the stored value is cleared and ErrFeatureExpired returned.
func (t *Tracker[T]) Fallback(frame int) (T, error) {
	if !t.has || t.remaining <= 0 || frame-t.lastSuccess > t.expiry {
		t.clear()
		var zero T
		return zero, ErrFeatureExpired
	}
	t.remaining--
	return t.value, nil
}

// Age returns the number of frames since the last success, or -1 when
// nothing is stored.
func (t *Tracker[T]) Age(frame int) int {
	if !t.has {
		return -1
	}
	return frame - t.lastSuccess
}

// Reset forgets the stored value, as when a new video is opened.
func (t *Tracker[T]) Reset() {
	t.clear()
}

func (t *Tracker[T]) clear() {
	var zero T
	t.value = zero
	t.has = false
	t.lastSuccess = 0
	t.remaining = 0
}

package service

import (
	"context"
	"log"
)

// ProgressStore bumps a single quest counter.
type ProgressStore interface {
	IncrementQuestProgress(ctx context.Context, uid, counter string) error
}

// Tracker records quest progress fire-and-forget. Features call Track
// inline; a counter failure never fails the triggering operation.
type Tracker struct {
	store ProgressStore
}

// NewTracker creates a Tracker.
func NewTracker(store ProgressStore) *Tracker {
	return &Tracker{store: store}
}

// Track bumps the counter, logging instead of propagating errors.
func (t *Tracker) Track(ctx context.Context, uid, counter string) {
	if err := t.store.IncrementQuestProgress(ctx, uid, counter); err != nil {
		log.Printf("[rewards] quest progress failed user_id=%s counter=%s: %v", uid, counter, err)
	}
}

package service

import (
	"context"

	"github.com/casaloop/casaloop-backend/internal/users/domain"
)

// UserStore is the repository surface the service needs.
type UserStore interface {
	Get(ctx context.Context, uid string) (*domain.User, error)
	ToggleFavorite(ctx context.Context, uid, propertyID string) (bool, error)
}

// QuestTracker records quest progress for added favorites.
type QuestTracker interface {
	Track(ctx context.Context, uid, counter string)
}

// UserService implements profile reads and favorites.
type UserService struct {
	store  UserStore
	quests QuestTracker
}

// NewUserService creates a UserService.
func NewUserService(store UserStore, quests QuestTracker) *UserService {
	return &UserService{store: store, quests: quests}
}

// Profile returns the caller's own profile document.
func (s *UserService) Profile(ctx context.Context, uid string) (*domain.User, error) {
	return s.store.Get(ctx, uid)
}

// ToggleFavorite flips a property in the user's favorites and reports
// whether it ended up added. Only additions count toward quests.
func (s *UserService) ToggleFavorite(ctx context.Context, uid, propertyID string) (bool, error) {
	added, err := s.store.ToggleFavorite(ctx, uid, propertyID)
	if err != nil {
		return false, err
	}
	if added {
		s.quests.Track(ctx, uid, "favoritesAdded")
	}
	return added, nil
}

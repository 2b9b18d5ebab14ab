package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"

	"github.com/casaloop/casaloop-backend/internal/listings/domain"
)

// viewDedupWindow suppresses repeat view counts from the same user.
const viewDedupWindow = 6 * time.Hour

// PropertyStore is the listing persistence used by the service.
type PropertyStore interface {
	Create(ctx context.Context, p *domain.Property) error
	Get(ctx context.Context, id string) (*domain.Property, error)
	ListActive(ctx context.Context) ([]*domain.Property, error)
	ListByOwner(ctx context.Context, userID string) ([]*domain.Property, error)
	Update(ctx context.Context, id string, updates []firestore.Update) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
}

// TrustGate decides whether a user may publish listings.
type TrustGate interface {
	CanList(ctx context.Context, userID string) (bool, error)
}

// QuestTracker records quest-counter progress for a user action.
type QuestTracker interface {
	Track(ctx context.Context, uid, counter string)
}

// Notifier fans out listing notifications.
type Notifier interface {
	NotifyPropertyView(ctx context.Context, ownerID, propertyID, propertyTitle string, viewCount int64)
}

// ListingService implements listing operations on top of the stores.
type ListingService struct {
	store    PropertyStore
	trust    TrustGate
	quests   QuestTracker
	notifier Notifier
	redis    *redis.Client
}

// NewListingService creates a new ListingService.
func NewListingService(store PropertyStore, trust TrustGate, quests QuestTracker, notifier Notifier, redisClient *redis.Client) *ListingService {
	return &ListingService{
		store:    store,
		trust:    trust,
		quests:   quests,
		notifier: notifier,
		redis:    redisClient,
	}
}

// Create publishes a listing after the trust gate allows it.
func (s *ListingService) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	ok, err := s.trust.CanList(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrListingBlocked
	}

	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	s.quests.Track(ctx, p.UserID, "listingsCreated")
	return p, nil
}

// Browse returns active listings after in-memory filtering, sorting and
// pagination.
func (s *ListingService) Browse(ctx context.Context, f domain.Filter) ([]*domain.Property, int, error) {
	all, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := FilterProperties(all, f)
	total := len(filtered)
	return Paginate(filtered, f.Page, f.PageSize), total, nil
}

// Mine returns all listings owned by the user, active or not.
func (s *ListingService) Mine(ctx context.Context, userID string) ([]*domain.Property, error) {
	return s.store.ListByOwner(ctx, userID)
}

// Get returns one listing by id.
func (s *ListingService) Get(ctx context.Context, id string) (*domain.Property, error) {
	return s.store.Get(ctx, id)
}

// Update lets the owner edit listing fields.
func (s *ListingService) Update(ctx context.Context, userID, id string, updates []firestore.Update) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return domain.ErrNotOwner
	}

	return s.store.Update(ctx, id, updates)
}

// Delete lets the owner remove a listing.
func (s *ListingService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return domain.ErrNotOwner
	}

	return s.store.Delete(ctx, id)
}

// RecordView bumps the view counter unless the same viewer counted within
// the dedup window, tracks quest progress, and notifies the owner at
// round milestones.
func (s *ListingService) RecordView(ctx context.Context, viewerID, propertyID string) (int64, error) {
	if s.redis != nil && viewerID != "" {
		key := "views:" + propertyID + ":" + viewerID
		fresh, err := s.redis.SetNX(ctx, key, 1, viewDedupWindow).Result()
		if err != nil {
			log.Printf("[listings] view dedup unavailable: %v", err)
		} else if !fresh {
			p, err := s.store.Get(ctx, propertyID)
			if err != nil {
				return 0, err
			}
			return p.Views, nil
		}
	}

	views, err := s.store.IncrementViews(ctx, propertyID)
	if err != nil {
		return 0, err
	}

	if viewerID != "" {
		s.quests.Track(ctx, viewerID, "propertiesViewed")
	}

	if isViewMilestone(views) {
		if p, err := s.store.Get(ctx, propertyID); err == nil {
			s.notifier.NotifyPropertyView(ctx, p.UserID, propertyID, p.Title, views)
		}
	}

	return views, nil
}

func isViewMilestone(views int64) bool {
	return views == 10 || views == 50 || (views > 0 && views%100 == 0)
}

// FilterProperties applies the filter in memory, then sorts.
func FilterProperties(props []*domain.Property, f domain.Filter) []*domain.Property {
	out := make([]*domain.Property, 0, len(props))
	search := strings.ToLower(strings.TrimSpace(f.Search))

	for _, p := range props {
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		if f.MinBedrooms > 0 && p.Bedrooms < f.MinBedrooms {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Location), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}

	switch f.SortBy {
	case "price_asc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case "price_desc":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case "views":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	default: // newest
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	}

	return out
}

// Paginate slices one page out of the filtered result set.
func Paginate(props []*domain.Property, page, pageSize int) []*domain.Property {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(props) {
		return []*domain.Property{}
	}

	end := start + pageSize
	if end > len(props) {
		end = len(props)
	}

	return props[start:end]
}

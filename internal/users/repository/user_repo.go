package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/casaloop/casaloop-backend/internal/users/domain"
)

const usersCollection = "users"

// UserRepository handles Firestore operations for user documents.
type UserRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(client *firestore.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) doc(uid string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid)
}

// Get retrieves a user by Pi uid.
func (r *UserRepository) Get(ctx context.Context, uid string) (*domain.User, error) {
	snap, err := r.doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user domain.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// Upsert returns the existing profile for the uid or creates a fresh one.
// Called on every signin so a Pioneer always has a document.
func (r *UserRepository) Upsert(ctx context.Context, uid, username string) (*domain.User, error) {
	user, err := r.Get(ctx, uid)
	if err == nil {
		if user.Username != username && username != "" {
			if _, uerr := r.doc(uid).Update(ctx, []firestore.Update{
				{Path: "username", Value: username},
			}); uerr != nil {
				return nil, fmt.Errorf("failed to update username: %w", uerr)
			}
			user.Username = username
		}
		return user, nil
	}
	if err != domain.ErrUserNotFound {
		return nil, err
	}

	fresh := &domain.User{
		UID:           uid,
		Username:      username,
		CasaPoints:    0,
		CreatedAt:     time.Now().UnixMilli(),
		Favorites:     []string{},
		QuestProgress: map[string]int64{},
		ClaimedQuests: []string{},
	}
	if _, err := r.doc(uid).Create(ctx, fresh); err != nil {
		// Another signin may have raced us; fall back to the winner.
		if status.Code(err) == codes.AlreadyExists {
			return r.Get(ctx, uid)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return fresh, nil
}

// UpdateInTx reads the user inside a Firestore transaction, applies the
// mutation's field updates atomically, and returns the snapshot that was
// read. The mutate callback may capture results via closure.
func (r *UserRepository) UpdateInTx(ctx context.Context, uid string, mutate func(*domain.User) ([]firestore.Update, error)) (*domain.User, error) {
	var read domain.User

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(r.doc(uid))
		if status.Code(err) == codes.NotFound {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if err := snap.DataTo(&read); err != nil {
			return fmt.Errorf("failed to decode user: %w", err)
		}

		updates, err := mutate(&read)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}

		return tx.Update(r.doc(uid), updates)
	})
	if err != nil {
		return nil, err
	}

	return &read, nil
}

// ToggleFavorite adds or removes the property from the user's favorites
// and reports whether it ended up added.
func (r *UserRepository) ToggleFavorite(ctx context.Context, uid, propertyID string) (bool, error) {
	added := false
	_, err := r.UpdateInTx(ctx, uid, func(u *domain.User) ([]firestore.Update, error) {
		if u.HasFavorite(propertyID) {
			return []firestore.Update{
				{Path: "favorites", Value: firestore.ArrayRemove(propertyID)},
			}, nil
		}
		added = true
		return []firestore.Update{
			{Path: "favorites", Value: firestore.ArrayUnion(propertyID)},
		}, nil
	})
	return added, err
}

// CreditPoints adds casa points to the user's balance.
func (r *UserRepository) CreditPoints(ctx context.Context, uid string, amount float64) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "casaPoints", Value: firestore.Increment(amount)},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	return nil
}

// AppendPayment records a completed payment on the user document.
func (r *UserRepository) AppendPayment(ctx context.Context, uid string, rec domain.PaymentRecord) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "paymentHistory", Value: firestore.ArrayUnion(rec)},
		{Path: "totalSpent", Value: firestore.Increment(rec.Amount)},
		{Path: "lastPaymentDate", Value: rec.Timestamp},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to append payment: %w", err)
	}
	return nil
}

// IncrementFailedPayments bumps the failed-payment counter used by fraud
// scoring.
func (r *UserRepository) IncrementFailedPayments(ctx context.Context, uid string) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "failedPayments", Value: firestore.Increment(1)},
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to increment failed payments: %w", err)
	}
	return nil
}

// IncrementQuestProgress bumps one quest counter on the user document.
func (r *UserRepository) IncrementQuestProgress(ctx context.Context, uid, counter string) error {
	_, err := r.doc(uid).Update(ctx, []firestore.Update{
		{Path: "questProgress." + counter, Value: firestore.Increment(1)},
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to increment quest progress: %w", err)
	}
	return nil
}

// ExpiredMiningSessions lists users whose mining session ended at or
// before now and has not been settled yet.
func (r *UserRepository) ExpiredMiningSessions(ctx context.Context, now int64) ([]*domain.User, error) {
	iter := r.client.Collection(usersCollection).
		Where("miningSessionEnd", ">", 0).
		Where("miningSessionEnd", "<=", now).
		Documents(ctx)
	defer iter.Stop()

	var users []*domain.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list expired mining sessions: %w", err)
		}

		var user domain.User
		if err := snap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}

	return users, nil
}

// ResetQuestProgress zeroes the given counters and clears claims for the
// given quest ids across all users. Run by the worker at period rollover.
func (r *UserRepository) ResetQuestProgress(ctx context.Context, counters []string, questIDs []string) error {
	iter := r.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		updates := make([]firestore.Update, 0, len(counters)+1)
		for _, counter := range counters {
			updates = append(updates, firestore.Update{Path: "questProgress." + counter, Value: int64(0)})
		}
		if len(questIDs) > 0 {
			ids := make([]interface{}, len(questIDs))
			for i, id := range questIDs {
				ids[i] = id
			}
			updates = append(updates, firestore.Update{Path: "claimedQuests", Value: firestore.ArrayRemove(ids...)})
		}

		if _, err := bw.Update(snap.Ref, updates); err != nil {
			return fmt.Errorf("failed to queue quest reset: %w", err)
		}
	}
	bw.End()

	return nil
}

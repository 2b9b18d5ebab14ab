package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/casaloop/casaloop-backend/internal/rewards/domain"
	usersdomain "github.com/casaloop/casaloop-backend/internal/users/domain"
)

// UserStore is the slice of the user repository the reward flows need.
type UserStore interface {
	Get(ctx context.Context, uid string) (*usersdomain.User, error)
	UpdateInTx(ctx context.Context, uid string, mutate func(*usersdomain.User) ([]firestore.Update, error)) (*usersdomain.User, error)
	ExpiredMiningSessions(ctx context.Context, now int64) ([]*usersdomain.User, error)
}

// Notifier announces reward events to the user.
type Notifier interface {
	NotifySystem(ctx context.Context, userID, title, message string)
}

// RewardService implements check-in streaks, the prize wheel, quests
// and mining sessions. All reads-modify-writes run inside Firestore
// transactions so concurrent requests cannot double-award.
type RewardService struct {
	users    UserStore
	notifier Notifier
	rng      *rand.Rand
	now      func() int64
}

// NewRewardService creates a RewardService with a time-seeded wheel.
func NewRewardService(users UserStore, notifier Notifier) *RewardService {
	return &RewardService{
		users:    users,
		notifier: notifier,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock overrides the time source, for tests.
func (s *RewardService) WithClock(now func() int64) *RewardService {
	s.now = now
	return s
}

// WithRand overrides the wheel's randomness source, for tests.
func (s *RewardService) WithRand(r *rand.Rand) *RewardService {
	s.rng = r
	return s
}

// streakReward is the CASA credit for a given streak length.
func streakReward(streak int) float64 {
	reward := domain.StreakBaseReward
	switch {
	case streak >= domain.StreakMonthThreshold:
		reward *= domain.StreakMonthMultiplier
	case streak >= domain.StreakWeekThreshold:
		reward *= domain.StreakWeekMultiplier
	}
	return reward
}

// CheckIn advances the user's daily streak. Within 24h of the last
// check-in it is a no-op; within the 48h grace window the streak
// increments; beyond that it resets to 1.
func (s *RewardService) CheckIn(ctx context.Context, uid string) (*domain.CheckInResult, error) {
	now := s.now()
	var result domain.CheckInResult
	var spinUnlocked bool

	_, err := s.users.UpdateInTx(ctx, uid, func(u *usersdomain.User) ([]firestore.Update, error) {
		elapsed := now - u.LastCheckIn

		if u.LastCheckIn > 0 && elapsed < domain.StreakSameDayWindow {
			result = domain.CheckInResult{
				Streak:        u.CurrentStreak,
				LongestStreak: u.LongestStreak,
				AlreadyDone:   true,
			}
			return nil, nil
		}

		streak := 1
		if u.LastCheckIn > 0 && elapsed < domain.StreakGraceWindow {
			streak = u.CurrentStreak + 1
		}

		longest := u.LongestStreak
		if streak > longest {
			longest = streak
		}

		reward := streakReward(streak)
		spinUnlocked = !u.SpinAvailable

		// Every successful check-in refreshes the spin.
		result = domain.CheckInResult{
			Streak:        streak,
			LongestStreak: longest,
			Reward:        reward,
			SpinAwarded:   true,
		}

		return []firestore.Update{
			{Path: "currentStreak", Value: streak},
			{Path: "longestStreak", Value: longest},
			{Path: "lastCheckIn", Value: now},
			{Path: "totalCheckIns", Value: firestore.Increment(1)},
			{Path: "casaPoints", Value: firestore.Increment(reward)},
			{Path: "spinAvailable", Value: true},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("check-in failed: %w", err)
	}

	if result.SpinAwarded && spinUnlocked {
		s.notifier.NotifySystem(ctx, uid, "Spin earned!",
			fmt.Sprintf("Your %d-day check-in earned you a free spin.", result.Streak))
	}
	return &result, nil
}

// drawPrize picks a wheel slot by cumulative weight.
func drawPrize(roll int) domain.SpinPrize {
	cumulative := 0
	for _, p := range domain.SpinTable {
		cumulative += p.Weight
		if roll < cumulative {
			return p
		}
	}
	return domain.SpinTable[len(domain.SpinTable)-1]
}

// Spin consumes the user's available spin and credits the prize.
func (s *RewardService) Spin(ctx context.Context, uid string) (*domain.SpinResult, error) {
	prize := drawPrize(s.rng.Intn(100))
	now := s.now()
	var result domain.SpinResult

	_, err := s.users.UpdateInTx(ctx, uid, func(u *usersdomain.User) ([]firestore.Update, error) {
		if !u.SpinAvailable {
			return nil, domain.ErrSpinUnavailable
		}
		result = domain.SpinResult{
			Points: prize.Points,
			Total:  int(u.CasaPoints) + prize.Points,
		}
		return []firestore.Update{
			{Path: "spinAvailable", Value: false},
			{Path: "lastSpinDate", Value: now},
			{Path: "casaPoints", Value: firestore.Increment(prize.Points)},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[rewards] spin user_id=%s points=%d", uid, prize.Points)
	return &result, nil
}

// Quests returns the catalogue with the user's progress filled in,
// stable-ordered daily first then by id.
func (s *RewardService) Quests(ctx context.Context, uid string) ([]domain.QuestStatus, error) {
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.QuestStatus, 0, len(domain.Quests))
	for _, q := range domain.Quests {
		progress := u.QuestProgress[q.Counter]
		statuses = append(statuses, domain.QuestStatus{
			Quest:    q,
			Progress: progress,
			Complete: progress >= q.Target,
			Claimed:  u.HasClaimedQuest(q.ID),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Period != statuses[j].Period {
			return statuses[i].Period == domain.PeriodDaily
		}
		return statuses[i].ID < statuses[j].ID
	})
	return statuses, nil
}

// ClaimQuest pays out a completed, unclaimed quest.
func (s *RewardService) ClaimQuest(ctx context.Context, uid, questID string) (*domain.SpinResult, error) {
	quest, ok := domain.Quests[questID]
	if !ok {
		return nil, domain.ErrUnknownQuest
	}

	var result domain.SpinResult
	_, err := s.users.UpdateInTx(ctx, uid, func(u *usersdomain.User) ([]firestore.Update, error) {
		if u.HasClaimedQuest(questID) {
			return nil, domain.ErrQuestAlreadyClaimed
		}
		if u.QuestProgress[quest.Counter] < quest.Target {
			return nil, domain.ErrQuestNotComplete
		}
		result = domain.SpinResult{
			Points: quest.Reward,
			Total:  int(u.CasaPoints) + quest.Reward,
		}
		return []firestore.Update{
			{Path: "claimedQuests", Value: firestore.ArrayUnion(questID)},
			{Path: "casaPoints", Value: firestore.Increment(quest.Reward)},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[rewards] quest claimed user_id=%s quest=%s reward=%d", uid, questID, quest.Reward)
	return &result, nil
}

// StartMining begins a 24h mining session.
func (s *RewardService) StartMining(ctx context.Context, uid string) (*domain.MiningStatus, error) {
	now := s.now()
	end := now + domain.MiningSessionDuration.Milliseconds()

	_, err := s.users.UpdateInTx(ctx, uid, func(u *usersdomain.User) ([]firestore.Update, error) {
		if u.MiningSessionEnd > now {
			return nil, domain.ErrMiningActive
		}
		return []firestore.Update{
			{Path: "miningSessionEnd", Value: end},
			{Path: "lastMiningStart", Value: now},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.MiningStatus{
		Active:      true,
		SessionEnd:  end,
		Reward:      domain.MiningReward,
		RemainingMs: end - now,
	}, nil
}

// MiningStatus reports the user's current session.
func (s *RewardService) MiningStatus(ctx context.Context, uid string) (*domain.MiningStatus, error) {
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := &domain.MiningStatus{
		Reward:      domain.MiningReward,
		LastClaimed: u.LastMiningClaim,
	}
	switch {
	case u.MiningSessionEnd == 0:
	case u.MiningSessionEnd > now:
		status.Active = true
		status.SessionEnd = u.MiningSessionEnd
		status.RemainingMs = u.MiningSessionEnd - now
	default:
		status.Claimable = true
		status.SessionEnd = u.MiningSessionEnd
	}
	return status, nil
}

// ClaimMining pays out a finished session and clears it.
func (s *RewardService) ClaimMining(ctx context.Context, uid string) (*domain.MiningStatus, error) {
	now := s.now()

	_, err := s.users.UpdateInTx(ctx, uid, func(u *usersdomain.User) ([]firestore.Update, error) {
		if u.MiningSessionEnd == 0 {
			return nil, domain.ErrNoMiningSession
		}
		if u.MiningSessionEnd > now {
			return nil, domain.ErrMiningNotReady
		}
		return []firestore.Update{
			{Path: "miningSessionEnd", Value: int64(0)},
			{Path: "lastMiningClaim", Value: now},
			{Path: "casaPoints", Value: firestore.Increment(domain.MiningReward)},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[rewards] mining claimed user_id=%s reward=%.2f", uid, domain.MiningReward)
	return &domain.MiningStatus{
		Claimable:   false,
		Reward:      domain.MiningReward,
		LastClaimed: now,
	}, nil
}

// SweepExpiredMining credits finished sessions that were never claimed
// and notifies the owners. Run from the worker on a schedule.
func (s *RewardService) SweepExpiredMining(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.users.ExpiredMiningSessions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mining sweep query failed: %w", err)
	}

	swept := 0
	for _, u := range expired {
		if _, err := s.ClaimMining(ctx, u.UID); err != nil {
			log.Printf("[rewards] mining sweep claim failed user_id=%s: %v", u.UID, err)
			continue
		}
		s.notifier.NotifySystem(ctx, u.UID, "Mining complete",
			fmt.Sprintf("Your mining session finished and %.2f CASA was added to your balance.", domain.MiningReward))
		swept++
	}
	if swept > 0 {
		log.Printf("[rewards] mining sweep credited %d sessions", swept)
	}
	return swept, nil
}

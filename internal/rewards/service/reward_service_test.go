package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaloop/casaloop-backend/internal/rewards/domain"
	usersdomain "github.com/casaloop/casaloop-backend/internal/users/domain"
)

// fakeUserStore runs mutations against an in-memory user. It applies
// plain-valued field updates so sequential calls observe each other;
// server-side increments are applied by the tests directly.
type fakeUserStore struct {
	user *usersdomain.User
}

func (f *fakeUserStore) Get(ctx context.Context, uid string) (*usersdomain.User, error) {
	if f.user == nil {
		return nil, usersdomain.ErrUserNotFound
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeUserStore) UpdateInTx(ctx context.Context, uid string, mutate func(*usersdomain.User) ([]firestore.Update, error)) (*usersdomain.User, error) {
	if f.user == nil {
		return nil, usersdomain.ErrUserNotFound
	}
	cp := *f.user
	updates, err := mutate(&cp)
	if err != nil {
		return nil, err
	}
	for _, u := range updates {
		f.apply(u)
	}
	return &cp, nil
}

func (f *fakeUserStore) apply(u firestore.Update) {
	switch u.Path {
	case "currentStreak":
		if v, ok := u.Value.(int); ok {
			f.user.CurrentStreak = v
		}
	case "longestStreak":
		if v, ok := u.Value.(int); ok {
			f.user.LongestStreak = v
		}
	case "lastCheckIn":
		if v, ok := u.Value.(int64); ok {
			f.user.LastCheckIn = v
		}
	case "spinAvailable":
		if v, ok := u.Value.(bool); ok {
			f.user.SpinAvailable = v
		}
	case "lastSpinDate":
		if v, ok := u.Value.(int64); ok {
			f.user.LastSpinDate = v
		}
	case "miningSessionEnd":
		if v, ok := u.Value.(int64); ok {
			f.user.MiningSessionEnd = v
		}
	case "lastMiningStart":
		if v, ok := u.Value.(int64); ok {
			f.user.LastMiningStart = v
		}
	case "lastMiningClaim":
		if v, ok := u.Value.(int64); ok {
			f.user.LastMiningClaim = v
		}
	}
}

func (f *fakeUserStore) ExpiredMiningSessions(ctx context.Context, now int64) ([]*usersdomain.User, error) {
	if f.user != nil && f.user.MiningSessionEnd > 0 && f.user.MiningSessionEnd <= now {
		cp := *f.user
		return []*usersdomain.User{&cp}, nil
	}
	return nil, nil
}

type nopNotifier struct{}

func (nopNotifier) NotifySystem(ctx context.Context, userID, title, message string) {}

func newTestService(u *usersdomain.User, now int64) (*RewardService, *fakeUserStore) {
	store := &fakeUserStore{user: u}
	svc := NewRewardService(store, nopNotifier{}).
		WithClock(func() int64 { return now }).
		WithRand(rand.New(rand.NewSource(1)))
	return svc, store
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UnixMilli()
	hour := time.Hour.Milliseconds()

	t.Run("first check-in starts the streak", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{UID: "u1"}, now)

		res, err := svc.CheckIn(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Streak)
		assert.Equal(t, 1, res.LongestStreak)
		assert.InDelta(t, domain.StreakBaseReward, res.Reward, 0.001)
		assert.False(t, res.AlreadyDone)
		assert.True(t, res.SpinAwarded)
		assert.True(t, store.user.SpinAvailable)
	})

	t.Run("second check-in within 24h is a no-op", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{
			UID: "u1", CurrentStreak: 4, LongestStreak: 6, LastCheckIn: now - 23*hour,
		}, now)

		res, err := svc.CheckIn(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, res.AlreadyDone)
		assert.Equal(t, 4, res.Streak)
		assert.Zero(t, res.Reward)
		assert.False(t, res.SpinAwarded)
		assert.False(t, store.user.SpinAvailable)
	})

	t.Run("check-in within the grace window increments", func(t *testing.T) {
		for _, gap := range []int64{25, 30, 47} {
			svc, _ := newTestService(&usersdomain.User{
				UID: "u1", CurrentStreak: 4, LongestStreak: 4, LastCheckIn: now - gap*hour,
			}, now)

			res, err := svc.CheckIn(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, 5, res.Streak, "gap %dh", gap)
			assert.Equal(t, 5, res.LongestStreak, "gap %dh", gap)
		}
	})

	t.Run("every successful check-in refreshes the spin", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{
			UID: "u1", CurrentStreak: 1, LongestStreak: 1, LastCheckIn: now - 25*hour,
		}, now)

		res, err := svc.CheckIn(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Streak)
		assert.True(t, res.SpinAwarded)
		assert.True(t, store.user.SpinAvailable)
	})

	t.Run("check-in past the grace window resets", func(t *testing.T) {
		svc, _ := newTestService(&usersdomain.User{
			UID: "u1", CurrentStreak: 12, LongestStreak: 12, LastCheckIn: now - 49*hour,
		}, now)

		res, err := svc.CheckIn(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Streak)
		assert.Equal(t, 12, res.LongestStreak)
	})

	t.Run("week-long streak doubles the reward", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{
			UID: "u1", CurrentStreak: 6, LongestStreak: 6, LastCheckIn: now - 25*hour,
		}, now)

		res, err := svc.CheckIn(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 7, res.Streak)
		assert.InDelta(t, domain.StreakBaseReward*2, res.Reward, 0.001)
		assert.True(t, res.SpinAwarded)
		assert.True(t, store.user.SpinAvailable)
	})

	t.Run("month-long streak triples the reward", func(t *testing.T) {
		svc, _ := newTestService(&usersdomain.User{
			UID: "u1", CurrentStreak: 29, LongestStreak: 29, LastCheckIn: now - 25*hour,
		}, now)

		res, err := svc.CheckIn(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 30, res.Streak)
		assert.InDelta(t, domain.StreakBaseReward*3, res.Reward, 0.001)
	})
}

func TestSpin(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UnixMilli()

	t.Run("spin without availability is rejected", func(t *testing.T) {
		svc, _ := newTestService(&usersdomain.User{UID: "u1"}, now)

		_, err := svc.Spin(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrSpinUnavailable)
	})

	t.Run("spin consumes availability and pays a prize", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{UID: "u1", SpinAvailable: true}, now)

		res, err := svc.Spin(ctx, "u1")
		require.NoError(t, err)
		assert.Contains(t, []int{1, 3, 5, 10, 20, 50, 100}, res.Points)
		assert.False(t, store.user.SpinAvailable)
	})
}

func TestDrawPrizeDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	const draws = 100000
	counts := map[int]int{}
	for i := 0; i < draws; i++ {
		counts[drawPrize(rng.Intn(100)).Points]++
	}

	// Shares must track the wheel weights within one percentage point.
	expect := map[int]float64{1: 0.30, 3: 0.25, 5: 0.20, 10: 0.15, 20: 0.07, 50: 0.02, 100: 0.01}
	for points, share := range expect {
		got := float64(counts[points]) / draws
		assert.InDelta(t, share, got, 0.01, "prize %d", points)
	}
}

func TestQuests(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UnixMilli()

	t.Run("progress and completion are reported per quest", func(t *testing.T) {
		svc, _ := newTestService(&usersdomain.User{
			UID:           "u1",
			QuestProgress: map[string]int64{"propertiesViewed": 5, "messagesSent": 1},
			ClaimedQuests: []string{"view_properties"},
		}, now)

		statuses, err := svc.Quests(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, statuses, len(domain.Quests))

		byID := map[string]domain.QuestStatus{}
		for _, st := range statuses {
			byID[st.ID] = st
		}

		assert.True(t, byID["view_properties"].Complete)
		assert.True(t, byID["view_properties"].Claimed)
		assert.False(t, byID["send_message"].Complete)
		assert.EqualValues(t, 1, byID["send_message"].Progress)
	})

	t.Run("claim pays once and only when complete", func(t *testing.T) {
		svc, _ := newTestService(&usersdomain.User{
			UID:           "u1",
			CasaPoints:    10,
			QuestProgress: map[string]int64{"transactionsCompleted": 1},
		}, now)

		res, err := svc.ClaimQuest(ctx, "u1", "complete_transaction")
		require.NoError(t, err)
		assert.Equal(t, 50, res.Points)
		assert.Equal(t, 60, res.Total)

		_, err = svc.ClaimQuest(ctx, "u1", "view_properties")
		assert.ErrorIs(t, err, domain.ErrQuestNotComplete)

		_, err = svc.ClaimQuest(ctx, "u1", "nonsense")
		assert.ErrorIs(t, err, domain.ErrUnknownQuest)
	})

	t.Run("claimed quest cannot be claimed again", func(t *testing.T) {
		svc, _ := newTestService(&usersdomain.User{
			UID:           "u1",
			QuestProgress: map[string]int64{"listingsCreated": 3},
			ClaimedQuests: []string{"create_listing"},
		}, now)

		_, err := svc.ClaimQuest(ctx, "u1", "create_listing")
		assert.ErrorIs(t, err, domain.ErrQuestAlreadyClaimed)
	})
}

func TestMining(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UnixMilli()

	t.Run("start opens a 24h session", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{UID: "u1"}, now)

		st, err := svc.StartMining(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, st.Active)
		assert.Equal(t, now+domain.MiningSessionDuration.Milliseconds(), st.SessionEnd)
		assert.Equal(t, st.SessionEnd, store.user.MiningSessionEnd)

		_, err = svc.StartMining(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrMiningActive)
	})

	t.Run("claim before the session ends is rejected", func(t *testing.T) {
		svc, _ := newTestService(&usersdomain.User{
			UID: "u1", MiningSessionEnd: now + time.Hour.Milliseconds(),
		}, now)

		_, err := svc.ClaimMining(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrMiningNotReady)
	})

	t.Run("claim after the session pays and clears it", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{
			UID: "u1", MiningSessionEnd: now - time.Minute.Milliseconds(),
		}, now)

		st, err := svc.ClaimMining(ctx, "u1")
		require.NoError(t, err)
		assert.InDelta(t, domain.MiningReward, st.Reward, 0.001)
		assert.EqualValues(t, 0, store.user.MiningSessionEnd)

		_, err = svc.ClaimMining(ctx, "u1")
		assert.ErrorIs(t, err, domain.ErrNoMiningSession)
	})

	t.Run("sweep settles expired sessions", func(t *testing.T) {
		svc, store := newTestService(&usersdomain.User{
			UID: "u1", MiningSessionEnd: now - time.Minute.Milliseconds(),
		}, now)

		swept, err := svc.SweepExpiredMining(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, swept)
		assert.EqualValues(t, 0, store.user.MiningSessionEnd)
	})
}

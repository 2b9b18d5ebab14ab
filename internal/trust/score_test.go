package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/casaloop/casaloop-backend/internal/trust/domain"
)

func TestScore(t *testing.T) {
	now := time.Now().UnixMilli()

	t.Run("empty record keeps only the smoothed transaction term", func(t *testing.T) {
		// 0/(0+0+1) ratio contributes nothing.
		assert.Equal(t, 0, Score(&domain.UserVerification{}, now))
	})

	t.Run("fully verified veteran hits the ceiling", func(t *testing.T) {
		v := &domain.UserVerification{
			PiKYCVerified:             true,
			PiKYCLevel:                domain.KYCFull,
			PhoneVerified:             true,
			EmailVerified:             true,
			IDVerified:                true,
			PropertyDocumentsVerified: true,
			BusinessLicenseVerified:   true,
			CompletedTransactions:     100,
			AverageRating:             5,
			TotalReviews:              40,
			AccountCreatedAt:          now - 365*24*time.Hour.Milliseconds(),
		}
		assert.Equal(t, 100, Score(v, now))
	})

	t.Run("basic KYC is worth less than full", func(t *testing.T) {
		full := &domain.UserVerification{PiKYCVerified: true, PiKYCLevel: domain.KYCFull}
		basic := &domain.UserVerification{PiKYCVerified: true, PiKYCLevel: domain.KYCBasic}
		assert.Equal(t, 10, Score(full, now)-Score(basic, now))
	})

	t.Run("reports and flags strictly decrease the score", func(t *testing.T) {
		base := &domain.UserVerification{
			PiKYCVerified:         true,
			PiKYCLevel:            domain.KYCFull,
			IDVerified:            true,
			CompletedTransactions: 50,
		}
		clean := Score(base, now)

		base.FlaggedCount = 2
		flagged := Score(base, now)
		assert.Equal(t, clean-10, flagged)

		base.ReportedCount = 1
		reported := Score(base, now)
		assert.Equal(t, flagged-10, reported)

		base.DisputedTransactions = 2
		assert.Equal(t, reported-6, Score(base, now))
	})

	t.Run("score never goes negative", func(t *testing.T) {
		v := &domain.UserVerification{ReportedCount: 20}
		assert.Equal(t, 0, Score(v, now))
	})

	t.Run("account age caps at five points", func(t *testing.T) {
		young := &domain.UserVerification{AccountCreatedAt: now - monthMillis}
		old := &domain.UserVerification{AccountCreatedAt: now - 24*monthMillis}
		assert.Equal(t, 1, Score(young, now))
		assert.Equal(t, 5, Score(old, now))
	})
}

func TestLevel(t *testing.T) {
	cases := []struct {
		score   int
		level   string
		canList bool
	}{
		{95, "Highly Trusted", true},
		{80, "Highly Trusted", true},
		{60, "Trusted", true},
		{40, "New Seller", true},
		{20, "Unverified", false},
		{5, "High Risk", false},
	}
	for _, tc := range cases {
		lvl := Level(tc.score)
		assert.Equal(t, tc.level, lvl.Level, "score %d", tc.score)
		assert.Equal(t, tc.canList, lvl.CanList, "score %d", tc.score)
	}
}

func TestRedFlags(t *testing.T) {
	now := time.Now().UnixMilli()

	t.Run("clean veteran has no flags", func(t *testing.T) {
		v := &domain.UserVerification{
			PiKYCVerified:         true,
			PhoneVerified:         true,
			IDVerified:            true,
			CompletedTransactions: 10,
			AccountCreatedAt:      now - 90*24*time.Hour.Milliseconds(),
		}
		assert.Empty(t, RedFlags(v, now))
	})

	t.Run("fresh unverified account collects the checklist", func(t *testing.T) {
		v := &domain.UserVerification{
			AccountCreatedAt: now - time.Hour.Milliseconds(),
			ReportedCount:    2,
		}
		flags := RedFlags(v, now)
		assert.Contains(t, flags, "No Pi Network KYC verification")
		assert.Contains(t, flags, "No contact information verified")
		assert.Contains(t, flags, "No government ID verified")
		assert.Contains(t, flags, "New account with no transaction history")
		assert.Contains(t, flags, "2 reports filed against this user")
	})
}

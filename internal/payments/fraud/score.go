// Package fraud implements the heuristic fraud score consulted during
// payment verification. Scores are 0 (clean) to 100 (certain fraud).
package fraud

import (
	"time"

	"github.com/casaloop/casaloop-backend/internal/users/domain"
)

const dayMillis = 24 * int64(time.Hour/time.Millisecond)

// Score computes the fraud score for a user. A nil user (unknown
// account) is maximum risk. now is unix milliseconds.
func Score(u *domain.User, now int64) int {
	if u == nil {
		return 100
	}

	score := 0

	// New account, less than 24 hours old.
	if now-u.CreatedAt < dayMillis {
		score += 30
	}

	// No payment history.
	if len(u.PaymentHistory) == 0 {
		score += 20
	}

	// Multiple failed payments.
	if u.FailedPayments > 3 {
		score += 40
	}

	// No verification at all.
	if !u.Verified && !u.KYCVerified {
		score += 20
	}

	if score > 100 {
		score = 100
	}
	return score
}

// RecentPayments counts completed payments in the trailing window.
// The verification flow rejects bursts above its hourly cap.
func RecentPayments(u *domain.User, now int64, window time.Duration) int {
	if u == nil {
		return 0
	}

	cutoff := now - window.Milliseconds()
	count := 0
	for _, p := range u.PaymentHistory {
		if p.Timestamp > cutoff {
			count++
		}
	}
	return count
}

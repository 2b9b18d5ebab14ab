// Package trust implements the weighted trust-scoring model that gates
// who may publish listings and warns Pioneers about risky counterparties.
package trust

import (
	"fmt"
	"math"
	"time"

	"github.com/casaloop/casaloop-backend/internal/trust/domain"
)

const monthMillis = 30 * 24 * int64(time.Hour/time.Millisecond)

// Score computes the 0-100 trust score for a verification record.
// now is unix milliseconds.
func Score(v *domain.UserVerification, now int64) int {
	score := 0.0

	// Pi KYC (30 points max)
	if v.PiKYCVerified {
		switch v.PiKYCLevel {
		case domain.KYCFull:
			score += 30
		case domain.KYCBasic:
			score += 20
		}
	}

	// Contact verification (10 points)
	if v.PhoneVerified {
		score += 5
	}
	if v.EmailVerified {
		score += 5
	}

	// Identity (20 points)
	if v.IDVerified {
		score += 20
	}

	// Documents (10 points)
	if v.PropertyDocumentsVerified {
		score += 5
	}
	if v.BusinessLicenseVerified {
		score += 5
	}

	// Transaction history (15 points): success ratio with +1 smoothing.
	ratio := float64(v.CompletedTransactions) / float64(v.CompletedTransactions+v.FailedTransactions+1)
	score += math.Min(15, ratio*15)

	// Reviews (10 points)
	if v.TotalReviews > 0 {
		score += (v.AverageRating / 5) * 10
	}

	// Account age: 1 point per month, capped at 5.
	if v.AccountCreatedAt > 0 && now > v.AccountCreatedAt {
		months := float64(now-v.AccountCreatedAt) / float64(monthMillis)
		score += math.Min(5, months)
	}

	// Penalties
	score -= float64(v.FlaggedCount) * 5
	score -= float64(v.ReportedCount) * 10
	score -= float64(v.DisputedTransactions) * 3

	return int(math.Max(0, math.Min(100, math.Round(score))))
}

// Level maps a trust score to its label and listing gate.
func Level(score int) domain.TrustLevel {
	switch {
	case score >= 80:
		return domain.TrustLevel{
			Level:       "Highly Trusted",
			Description: "Fully verified and highly trusted seller",
			CanList:     true,
		}
	case score >= 60:
		return domain.TrustLevel{
			Level:       "Trusted",
			Description: "Verified seller with good reputation",
			CanList:     true,
		}
	case score >= 40:
		return domain.TrustLevel{
			Level:       "New Seller",
			Description: "New to CasaLoop, building reputation",
			CanList:     true,
		}
	case score >= 20:
		return domain.TrustLevel{
			Level:       "Unverified",
			Description: "Limited verification, proceed with caution",
			CanList:     false,
		}
	default:
		return domain.TrustLevel{
			Level:       "High Risk",
			Description: "Multiple flags or reports, not recommended",
			CanList:     false,
		}
	}
}

// RedFlags lists the warning signs for a verification record.
func RedFlags(v *domain.UserVerification, now int64) []string {
	var flags []string

	if !v.PiKYCVerified {
		flags = append(flags, "No Pi Network KYC verification")
	}
	if !v.PhoneVerified && !v.EmailVerified {
		flags = append(flags, "No contact information verified")
	}
	if !v.IDVerified {
		flags = append(flags, "No government ID verified")
	}
	weekMillis := 7 * 24 * int64(time.Hour/time.Millisecond)
	if v.CompletedTransactions == 0 && v.AccountCreatedAt > now-weekMillis {
		flags = append(flags, "New account with no transaction history")
	}
	if v.FlaggedCount > 2 {
		flags = append(flags, fmt.Sprintf("Account flagged %d times", v.FlaggedCount))
	}
	if v.ReportedCount > 0 {
		flags = append(flags, fmt.Sprintf("%d reports filed against this user", v.ReportedCount))
	}
	if v.DisputedTransactions > 2 {
		flags = append(flags, "Multiple disputed transactions")
	}

	return flags
}

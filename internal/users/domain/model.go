package domain

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserBanned   = errors.New("user is banned")
)

// PaymentRecord is one entry in a user's payment history.
type PaymentRecord struct {
	PaymentID string  `firestore:"paymentId" json:"paymentId"`
	Amount    float64 `firestore:"amount" json:"amount"`
	Timestamp int64   `firestore:"timestamp" json:"timestamp"`
	Status    string  `firestore:"status" json:"status"`
}

// User is the per-Pioneer document in the users collection. Timestamps
// are unix milliseconds to stay compatible with documents written by the
// original client.
type User struct {
	UID        string   `firestore:"uid" json:"uid"`
	Username   string   `firestore:"username" json:"username"`
	CasaPoints float64  `firestore:"casaPoints" json:"casaPoints"`
	CreatedAt  int64    `firestore:"createdAt" json:"createdAt"`
	Favorites  []string `firestore:"favorites" json:"favorites"`

	// Daily check-in streak.
	CurrentStreak int   `firestore:"currentStreak" json:"currentStreak"`
	LongestStreak int   `firestore:"longestStreak" json:"longestStreak"`
	LastCheckIn   int64 `firestore:"lastCheckIn" json:"lastCheckIn"`
	TotalCheckIns int   `firestore:"totalCheckIns" json:"totalCheckIns"`
	SpinAvailable bool  `firestore:"spinAvailable" json:"spinAvailable"`
	LastSpinDate  int64 `firestore:"lastSpinDate" json:"lastSpinDate"`

	// Mining session.
	MiningSessionEnd int64 `firestore:"miningSessionEnd" json:"miningSessionEnd"`
	LastMiningStart  int64 `firestore:"lastMiningStart" json:"lastMiningStart"`
	LastMiningClaim  int64 `firestore:"lastMiningClaim" json:"lastMiningClaim"`

	// Quest progress counters keyed by action (propertiesViewed,
	// messagesSent, ...) and ids of quests already claimed.
	QuestProgress map[string]int64 `firestore:"questProgress" json:"questProgress"`
	ClaimedQuests []string         `firestore:"claimedQuests" json:"claimedQuests"`

	// Payment signals consumed by fraud scoring.
	PaymentHistory  []PaymentRecord `firestore:"paymentHistory" json:"paymentHistory"`
	TotalSpent      float64         `firestore:"totalSpent" json:"totalSpent"`
	LastPaymentDate int64           `firestore:"lastPaymentDate" json:"lastPaymentDate"`
	FailedPayments  int             `firestore:"failedPayments" json:"failedPayments"`

	Verified    bool   `firestore:"verified" json:"verified"`
	KYCVerified bool   `firestore:"kycVerified" json:"kycVerified"`
	Banned      bool   `firestore:"banned" json:"banned"`
	BanReason   string `firestore:"banReason,omitempty" json:"banReason,omitempty"`
}

// HasFavorite reports whether the property id is in the favorites list.
func (u *User) HasFavorite(propertyID string) bool {
	for _, id := range u.Favorites {
		if id == propertyID {
			return true
		}
	}
	return false
}

// HasClaimedQuest reports whether the quest reward was already taken.
func (u *User) HasClaimedQuest(questID string) bool {
	for _, id := range u.ClaimedQuests {
		if id == questID {
			return true
		}
	}
	return false
}

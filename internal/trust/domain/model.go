package domain

import "errors"

var ErrVerificationNotFound = errors.New("verification record not found")

type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusPending    VerificationStatus = "pending"
	StatusVerified   VerificationStatus = "verified"
	StatusRejected   VerificationStatus = "rejected"
)

type KYCLevel string

const (
	KYCNone  KYCLevel = "none"
	KYCBasic KYCLevel = "basic"
	KYCFull  KYCLevel = "full"
)

// UserVerification aggregates every verification signal for one user.
type UserVerification struct {
	UserID   string `firestore:"userId" json:"userId"`
	Username string `firestore:"username" json:"username"`

	PiKYCVerified bool     `firestore:"piKycVerified" json:"piKycVerified"`
	PiKYCLevel    KYCLevel `firestore:"piKycLevel" json:"piKycLevel"`

	PhoneVerified bool   `firestore:"phoneVerified" json:"phoneVerified"`
	PhoneNumber   string `firestore:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	EmailVerified bool   `firestore:"emailVerified" json:"emailVerified"`
	Email         string `firestore:"email,omitempty" json:"email,omitempty"`

	IDVerified         bool   `firestore:"idVerified" json:"idVerified"`
	IDDocumentType     string `firestore:"idDocumentType,omitempty" json:"idDocumentType,omitempty"`
	IDVerificationDate int64  `firestore:"idVerificationDate,omitempty" json:"idVerificationDate,omitempty"`

	PropertyDocumentsVerified bool `firestore:"propertyDocumentsVerified" json:"propertyDocumentsVerified"`
	BusinessLicenseVerified   bool `firestore:"businessLicenseVerified" json:"businessLicenseVerified"`

	CompletedTransactions int `firestore:"completedTransactions" json:"completedTransactions"`
	FailedTransactions    int `firestore:"failedTransactions" json:"failedTransactions"`
	DisputedTransactions  int `firestore:"disputedTransactions" json:"disputedTransactions"`

	AverageRating float64 `firestore:"averageRating" json:"averageRating"`
	TotalReviews  int     `firestore:"totalReviews" json:"totalReviews"`

	AccountCreatedAt int64 `firestore:"accountCreatedAt" json:"accountCreatedAt"`

	VerificationStatus VerificationStatus `firestore:"verificationStatus" json:"verificationStatus"`
	VerifiedAt         int64              `firestore:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`

	FlaggedCount  int    `firestore:"flaggedCount" json:"flaggedCount"`
	ReportedCount int    `firestore:"reportedCount" json:"reportedCount"`
	IsBanned      bool   `firestore:"isBanned" json:"isBanned"`
	BanReason     string `firestore:"banReason,omitempty" json:"banReason,omitempty"`
}

// TrustLevel maps a score to a label and the listing gate.
type TrustLevel struct {
	Level       string `json:"level"`
	Description string `json:"description"`
	CanList     bool   `json:"canList"`
}

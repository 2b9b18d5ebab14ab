package domain

import "errors"

var (
	// ErrInvalidRating rejects ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrSelfReview rejects reviewing your own listing or service.
	ErrSelfReview = errors.New("cannot review your own listing")
)

// Review targets.
const (
	TargetProperty = "property"
	TargetService  = "service"
)

// Review is an append-only rating of a listing or service provider.
type Review struct {
	ID           string `firestore:"-" json:"id"`
	TargetType   string `firestore:"targetType" json:"targetType"`
	TargetID     string `firestore:"targetId" json:"targetId"`
	OwnerID      string `firestore:"ownerId" json:"ownerId"`
	ReviewerID   string `firestore:"reviewerId" json:"reviewerId"`
	ReviewerName string `firestore:"reviewerName,omitempty" json:"reviewerName,omitempty"`
	Rating       int    `firestore:"rating" json:"rating"`
	Comment      string `firestore:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt    int64  `firestore:"createdAt" json:"createdAt"`
}

// Report flags a listing or user for moderation. Append-only.
type Report struct {
	ID           string `firestore:"-" json:"id"`
	TargetType   string `firestore:"targetType" json:"targetType"`
	TargetID     string `firestore:"targetId" json:"targetId"`
	ReportedUser string `firestore:"reportedUser,omitempty" json:"reportedUser,omitempty"`
	ReporterID   string `firestore:"reporterId" json:"reporterId"`
	Reason       string `firestore:"reason" json:"reason"`
	Details      string `firestore:"details,omitempty" json:"details,omitempty"`
	CreatedAt    int64  `firestore:"createdAt" json:"createdAt"`
}

package domain

// Payment purposes accepted by the verification endpoint.
const (
	TypeReservation    = "reservation"
	TypeServiceBooking = "service_booking"
	TypeOther          = "other"
)

// VerifyRequest is the body of POST /payments/verify.
type VerifyRequest struct {
	PaymentID     string  `json:"paymentId"`
	UserID        string  `json:"userId"`
	Amount        float64 `json:"amount"`
	PropertyID    string  `json:"propertyId,omitempty"`
	ServiceID     string  `json:"serviceId,omitempty"`
	ReservationID string  `json:"reservationId,omitempty"`
	BookingID     string  `json:"bookingId,omitempty"`
	Type          string  `json:"type"`

	// Captured server-side from the request, not the client body.
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// ValidType reports whether the purpose tag is one we accept.
func (r *VerifyRequest) ValidType() bool {
	switch r.Type {
	case TypeReservation, TypeServiceBooking, TypeOther:
		return true
	}
	return false
}

// PaymentLog is the idempotency record written once a payment completes.
// Its existence under paymentLogs/{paymentId} is what rejects replays.
type PaymentLog struct {
	PaymentID     string  `firestore:"paymentId" json:"paymentId"`
	UserID        string  `firestore:"userId" json:"userId"`
	Amount        float64 `firestore:"amount" json:"amount"`
	Type          string  `firestore:"type" json:"type"`
	PropertyID    string  `firestore:"propertyId,omitempty" json:"propertyId,omitempty"`
	ServiceID     string  `firestore:"serviceId,omitempty" json:"serviceId,omitempty"`
	ReservationID string  `firestore:"reservationId,omitempty" json:"reservationId,omitempty"`
	BookingID     string  `firestore:"bookingId,omitempty" json:"bookingId,omitempty"`
	Status        string  `firestore:"status" json:"status"`
	Timestamp     int64   `firestore:"timestamp" json:"timestamp"`
	TxID          string  `firestore:"txid,omitempty" json:"txid,omitempty"`
	FromAddress   string  `firestore:"fromAddress,omitempty" json:"fromAddress,omitempty"`
	ToAddress     string  `firestore:"toAddress,omitempty" json:"toAddress,omitempty"`
	Verified      bool    `firestore:"verified" json:"verified"`
	FraudScore    int     `firestore:"fraudScore" json:"fraudScore"`
	UserAgent     string  `firestore:"userAgent,omitempty" json:"userAgent,omitempty"`
	IPAddress     string  `firestore:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

// FailedPayment is an append-only fraud-monitoring record.
type FailedPayment struct {
	PaymentID string  `firestore:"paymentId" json:"paymentId"`
	UserID    string  `firestore:"userId" json:"userId"`
	Amount    float64 `firestore:"amount" json:"amount"`
	Type      string  `firestore:"type" json:"type"`
	Reason    string  `firestore:"reason" json:"reason"`
	Timestamp int64   `firestore:"timestamp" json:"timestamp"`
	UserAgent string  `firestore:"userAgent,omitempty" json:"userAgent,omitempty"`
}

// VerifyResult is the success body of the verification endpoint.
type VerifyResult struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"paymentId"`
	TxID      string `json:"txid,omitempty"`
	Message   string `json:"message"`
}

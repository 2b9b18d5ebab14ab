package pi

// User is the profile returned by the platform for an access token.
type User struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
}

// PaymentStatus carries the platform's boolean status flags for a payment.
type PaymentStatus struct {
	DeveloperApproved   bool `json:"developer_approved"`
	TransactionVerified bool `json:"transaction_verified"`
	DeveloperCompleted  bool `json:"developer_completed"`
	Cancelled           bool `json:"cancelled"`
	UserCancelled       bool `json:"user_cancelled"`
}

// PaymentTransaction is the on-chain transaction attached to a payment,
// present once the transfer has been submitted.
type PaymentTransaction struct {
	TxID     string `json:"txid"`
	Verified bool   `json:"verified"`
	Link     string `json:"_link"`
}

// Payment is the payment DTO returned by GET /v2/payments/:id.
type Payment struct {
	Identifier  string                 `json:"identifier"`
	UserUID     string                 `json:"user_uid"`
	Amount      float64                `json:"amount"`
	Memo        string                 `json:"memo"`
	Metadata    map[string]interface{} `json:"metadata"`
	FromAddress string                 `json:"from_address"`
	ToAddress   string                 `json:"to_address"`
	Direction   string                 `json:"direction"`
	CreatedAt   string                 `json:"created_at"`
	Network     string                 `json:"network"`
	Status      PaymentStatus          `json:"status"`
	Transaction *PaymentTransaction    `json:"transaction"`
}

// TxID returns the on-chain transaction id, falling back to the payment
// identifier when the platform has not attached a transaction yet.
func (p *Payment) TxID() string {
	if p.Transaction != nil && p.Transaction.TxID != "" {
		return p.Transaction.TxID
	}
	return p.Identifier
}

package domain

import "errors"

var (
	// ErrConversationNotFound means the conversation id does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNotParticipant means the caller is not part of the conversation.
	ErrNotParticipant = errors.New("not a conversation participant")

	// ErrEmptyMessage rejects blank message bodies.
	ErrEmptyMessage = errors.New("message text is empty")
)

// Conversation is a two-party thread, optionally anchored to a listing.
type Conversation struct {
	ID               string           `firestore:"-" json:"id"`
	Participants     []string         `firestore:"participants" json:"participants"`
	ParticipantNames map[string]string `firestore:"participantNames" json:"participantNames"`
	PropertyID       string           `firestore:"propertyId,omitempty" json:"propertyId,omitempty"`
	PropertyTitle    string           `firestore:"propertyTitle,omitempty" json:"propertyTitle,omitempty"`
	LastMessage      string           `firestore:"lastMessage" json:"lastMessage"`
	LastMessageTime  int64            `firestore:"lastMessageTime" json:"lastMessageTime"`
	UnreadCount      map[string]int64 `firestore:"unreadCount" json:"unreadCount"`
	CreatedAt        int64            `firestore:"createdAt" json:"createdAt"`
}

// HasParticipant reports whether uid belongs to the conversation.
func (c *Conversation) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// Other returns the counterpart of uid in a two-party conversation.
func (c *Conversation) Other(uid string) string {
	for _, p := range c.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}

// Message is one entry in a conversation's message subcollection.
type Message struct {
	ID             string `firestore:"-" json:"id"`
	ConversationID string `firestore:"conversationId" json:"conversationId"`
	SenderID       string `firestore:"senderId" json:"senderId"`
	SenderName     string `firestore:"senderName,omitempty" json:"senderName,omitempty"`
	Text           string `firestore:"text" json:"text"`
	Timestamp      int64  `firestore:"timestamp" json:"timestamp"`
	Read           bool   `firestore:"read" json:"read"`
}

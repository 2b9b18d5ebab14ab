package service

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/casaloop/casaloop-backend/internal/messaging/domain"
)

const inquirySeedText = "Interested in your property"

// ConversationStore is the repository surface the service needs.
type ConversationStore interface {
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, uid string) ([]*domain.Conversation, error)
	FindByPairAndProperty(ctx context.Context, a, b, propertyID string) (*domain.Conversation, error)
	Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error)
	MarkRead(ctx context.Context, conversationID, uid string) error
}

// Notifier announces new messages to the recipient.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, userID, senderName, preview, conversationID string)
}

// QuestTracker records quest progress for sent messages.
type QuestTracker interface {
	Track(ctx context.Context, uid, counter string)
}

// MessagingService implements conversations and messages.
type MessagingService struct {
	store    ConversationStore
	notifier Notifier
	quests   QuestTracker
	now      func() int64
}

// NewMessagingService creates a MessagingService.
func NewMessagingService(store ConversationStore, notifier Notifier, quests QuestTracker) *MessagingService {
	return &MessagingService{
		store:    store,
		notifier: notifier,
		quests:   quests,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock overrides the time source, for tests.
func (s *MessagingService) WithClock(now func() int64) *MessagingService {
	s.now = now
	return s
}

// Conversations lists the caller's threads, most recent first.
func (s *MessagingService) Conversations(ctx context.Context, uid string) ([]*domain.Conversation, error) {
	return s.store.ListByUser(ctx, uid)
}

// Messages returns a conversation's history after checking membership.
func (s *MessagingService) Messages(ctx context.Context, conversationID, uid string) ([]*domain.Message, error) {
	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(uid) {
		return nil, domain.ErrNotParticipant
	}
	return s.store.ListMessages(ctx, conversationID)
}

// Send appends a message, bumps quest progress and notifies the
// recipient.
func (s *MessagingService) Send(ctx context.Context, conversationID, senderID, senderName, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, domain.ErrNotParticipant
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Text:           text,
		Timestamp:      s.now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.quests.Track(ctx, senderID, "messagesSent")
	s.notifier.NotifyNewMessage(ctx, conv.Other(senderID), senderName, preview(text), conversationID)

	return msg, nil
}

// StartInquiry opens (or reuses) the conversation between a buyer and a
// listing owner about a property, seeding it with an inquiry message.
func (s *MessagingService) StartInquiry(ctx context.Context, buyerID, buyerName, ownerID, ownerName, propertyID, propertyTitle string) (*domain.Conversation, error) {
	existing, err := s.store.FindByPairAndProperty(ctx, buyerID, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.now()
	conv := &domain.Conversation{
		Participants: []string{buyerID, ownerID},
		ParticipantNames: map[string]string{
			buyerID: buyerName,
			ownerID: ownerName,
		},
		PropertyID:      propertyID,
		PropertyTitle:   propertyTitle,
		LastMessage:     inquirySeedText,
		LastMessageTime: now,
		// AppendMessage below bumps the owner's counter to 1.
		UnreadCount: map[string]int64{
			buyerID: 0,
			ownerID: 0,
		},
		CreatedAt: now,
	}
	conv, err = s.store.Create(ctx, conv)
	if err != nil {
		return nil, err
	}

	seed := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       buyerID,
		SenderName:     buyerName,
		Text:           inquirySeedText,
		Timestamp:      now,
	}
	if err := s.store.AppendMessage(ctx, seed); err != nil {
		log.Printf("[messaging] inquiry seed failed conversation_id=%s: %v", conv.ID, err)
	}

	s.quests.Track(ctx, buyerID, "messagesSent")
	s.notifier.NotifyNewMessage(ctx, ownerID, buyerName, inquirySeedText, conv.ID)

	return conv, nil
}

// MarkRead clears the caller's unread counter on a conversation.
func (s *MessagingService) MarkRead(ctx context.Context, conversationID, uid string) error {
	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(uid) {
		return domain.ErrNotParticipant
	}
	return s.store.MarkRead(ctx, conversationID, uid)
}

func preview(text string) string {
	const max = 80
	if len(text) <= max {
		return text
	}
	// Back up to a rune boundary so the cut never splits a character.
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/casaloop/casaloop-backend/internal/messaging/domain"
)

const (
	conversationsCollection = "conversations"
	messagesSubcollection   = "messages"
)

// ConversationRepository handles Firestore operations for conversations
// and their message subcollections.
type ConversationRepository struct {
	client *firestore.Client
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(client *firestore.Client) *ConversationRepository {
	return &ConversationRepository{client: client}
}

func (r *ConversationRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(conversationsCollection).Doc(id)
}

// Get retrieves a conversation by id.
func (r *ConversationRepository) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	snap, err := r.doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	var conv domain.Conversation
	if err := snap.DataTo(&conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	conv.ID = snap.Ref.ID
	return &conv, nil
}

// ListByUser returns the user's conversations, most recent first.
func (r *ConversationRepository) ListByUser(ctx context.Context, uid string) ([]*domain.Conversation, error) {
	iter := r.client.Collection(conversationsCollection).
		Where("participants", "array-contains", uid).
		OrderBy("lastMessageTime", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var convs []*domain.Conversation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list conversations: %w", err)
		}

		var conv domain.Conversation
		if err := snap.DataTo(&conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		conv.ID = snap.Ref.ID
		convs = append(convs, &conv)
	}
	return convs, nil
}

// FindByPairAndProperty returns the existing conversation between the
// two users about the given listing, or nil when none exists.
func (r *ConversationRepository) FindByPairAndProperty(ctx context.Context, a, b, propertyID string) (*domain.Conversation, error) {
	iter := r.client.Collection(conversationsCollection).
		Where("participants", "array-contains", a).
		Where("propertyId", "==", propertyID).
		Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find conversation: %w", err)
		}

		var conv domain.Conversation
		if err := snap.DataTo(&conv); err != nil {
			return nil, fmt.Errorf("failed to decode conversation: %w", err)
		}
		if conv.HasParticipant(b) {
			conv.ID = snap.Ref.ID
			return &conv, nil
		}
	}
}

// Create writes a new conversation and returns it with its id set.
func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	id := uuid.NewString()
	if _, err := r.doc(id).Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	conv.ID = id
	return conv, nil
}

// AppendMessage writes the message and updates the conversation summary
// in one transaction so lastMessage and unread counters never drift
// from the subcollection.
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *domain.Message) error {
	convRef := r.doc(msg.ConversationID)
	msgRef := convRef.Collection(messagesSubcollection).Doc(uuid.NewString())

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(convRef)
		if status.Code(err) == codes.NotFound {
			return domain.ErrConversationNotFound
		}
		if err != nil {
			return err
		}

		var conv domain.Conversation
		if err := snap.DataTo(&conv); err != nil {
			return fmt.Errorf("failed to decode conversation: %w", err)
		}
		if !conv.HasParticipant(msg.SenderID) {
			return domain.ErrNotParticipant
		}

		if err := tx.Create(msgRef, msg); err != nil {
			return err
		}

		recipient := conv.Other(msg.SenderID)
		return tx.Update(convRef, []firestore.Update{
			{Path: "lastMessage", Value: msg.Text},
			{Path: "lastMessageTime", Value: msg.Timestamp},
			{Path: "unreadCount." + recipient, Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return err
	}

	msg.ID = msgRef.ID
	return nil
}

// ListMessages returns a conversation's messages in chronological order.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	iter := r.doc(conversationID).Collection(messagesSubcollection).
		OrderBy("timestamp", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var msgs []*domain.Message
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		var msg domain.Message
		if err := snap.DataTo(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		msg.ID = snap.Ref.ID
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// MarkRead zeroes the user's unread counter on the conversation.
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, uid string) error {
	_, err := r.doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "unreadCount." + uid, Value: int64(0)},
	})
	if status.Code(err) == codes.NotFound {
		return domain.ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return nil
}

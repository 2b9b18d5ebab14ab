package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaloop/casaloop-backend/internal/messaging/domain"
)

type fakeConvStore struct {
	convs    map[string]*domain.Conversation
	messages map[string][]*domain.Message
	nextID   int
}

func newFakeConvStore(convs ...*domain.Conversation) *fakeConvStore {
	s := &fakeConvStore{
		convs:    map[string]*domain.Conversation{},
		messages: map[string][]*domain.Message{},
	}
	for _, c := range convs {
		s.convs[c.ID] = c
	}
	return s
}

func (s *fakeConvStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	c, ok := s.convs[id]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	return c, nil
}

func (s *fakeConvStore) ListByUser(ctx context.Context, uid string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range s.convs {
		if c.HasParticipant(uid) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeConvStore) FindByPairAndProperty(ctx context.Context, a, b, propertyID string) (*domain.Conversation, error) {
	for _, c := range s.convs {
		if c.PropertyID == propertyID && c.HasParticipant(a) && c.HasParticipant(b) {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeConvStore) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	s.nextID++
	conv.ID = "conv_" + string(rune('0'+s.nextID))
	s.convs[conv.ID] = conv
	return conv, nil
}

func (s *fakeConvStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	conv, ok := s.convs[msg.ConversationID]
	if !ok {
		return domain.ErrConversationNotFound
	}
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	conv.LastMessage = msg.Text
	conv.LastMessageTime = msg.Timestamp
	conv.UnreadCount[conv.Other(msg.SenderID)]++
	return nil
}

func (s *fakeConvStore) ListMessages(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	return s.messages[conversationID], nil
}

func (s *fakeConvStore) MarkRead(ctx context.Context, conversationID, uid string) error {
	s.convs[conversationID].UnreadCount[uid] = 0
	return nil
}

type capturingNotifier struct {
	recipients []string
	previews   []string
}

func (n *capturingNotifier) NotifyNewMessage(ctx context.Context, userID, senderName, preview, conversationID string) {
	n.recipients = append(n.recipients, userID)
	n.previews = append(n.previews, preview)
}

type countingTracker struct{ counters []string }

func (t *countingTracker) Track(ctx context.Context, uid, counter string) {
	t.counters = append(t.counters, counter)
}

func twoPartyConv() *domain.Conversation {
	return &domain.Conversation{
		ID:           "conv_ab",
		Participants: []string{"alice", "bob"},
		ParticipantNames: map[string]string{
			"alice": "Alice", "bob": "Bob",
		},
		PropertyID:  "prop_1",
		UnreadCount: map[string]int64{"alice": 0, "bob": 0},
	}
}

func newMessagingFixture(convs ...*domain.Conversation) (*MessagingService, *fakeConvStore, *capturingNotifier, *countingTracker) {
	store := newFakeConvStore(convs...)
	notifier := &capturingNotifier{}
	tracker := &countingTracker{}
	svc := NewMessagingService(store, notifier, tracker).
		WithClock(func() int64 { return 1000 })
	return svc, store, notifier, tracker
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers and notifies the other party", func(t *testing.T) {
		svc, store, notifier, tracker := newMessagingFixture(twoPartyConv())

		msg, err := svc.Send(ctx, "conv_ab", "alice", "Alice", "  Is it still available?  ")
		require.NoError(t, err)
		assert.Equal(t, "Is it still available?", msg.Text)
		assert.EqualValues(t, 1000, msg.Timestamp)

		assert.EqualValues(t, 1, store.convs["conv_ab"].UnreadCount["bob"])
		assert.Equal(t, []string{"bob"}, notifier.recipients)
		assert.Equal(t, []string{"messagesSent"}, tracker.counters)
	})

	t.Run("rejects blank text", func(t *testing.T) {
		svc, _, _, _ := newMessagingFixture(twoPartyConv())

		_, err := svc.Send(ctx, "conv_ab", "alice", "Alice", "   ")
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	})

	t.Run("rejects outsiders", func(t *testing.T) {
		svc, _, _, _ := newMessagingFixture(twoPartyConv())

		_, err := svc.Send(ctx, "conv_ab", "mallory", "Mallory", "hi")
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		svc, _, _, _ := newMessagingFixture()

		_, err := svc.Send(ctx, "conv_missing", "alice", "Alice", "hi")
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("long messages are previewed", func(t *testing.T) {
		svc, _, notifier, _ := newMessagingFixture(twoPartyConv())

		long := strings.Repeat("x", 120)
		_, err := svc.Send(ctx, "conv_ab", "alice", "Alice", long)
		require.NoError(t, err)
		require.Len(t, notifier.previews, 1)
		assert.Len(t, notifier.previews[0], 83)
		assert.True(t, strings.HasSuffix(notifier.previews[0], "..."))
	})

	t.Run("preview never splits a multi-byte character", func(t *testing.T) {
		svc, _, notifier, _ := newMessagingFixture(twoPartyConv())

		// Three-byte runes, 79 bytes of prefix puts the cut mid-rune.
		long := strings.Repeat("x", 79) + strings.Repeat("屋", 20)
		_, err := svc.Send(ctx, "conv_ab", "alice", "Alice", long)
		require.NoError(t, err)
		require.Len(t, notifier.previews, 1)
		assert.True(t, utf8.ValidString(notifier.previews[0]))
		assert.True(t, strings.HasSuffix(notifier.previews[0], "..."))
	})
}

func TestStartInquiry(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a seeded conversation", func(t *testing.T) {
		svc, store, notifier, tracker := newMessagingFixture()

		conv, err := svc.StartInquiry(ctx, "alice", "Alice", "bob", "Bob", "prop_1", "Beach villa")
		require.NoError(t, err)
		require.NotEmpty(t, conv.ID)
		assert.Equal(t, "prop_1", conv.PropertyID)
		assert.ElementsMatch(t, []string{"alice", "bob"}, conv.Participants)

		msgs, _ := store.ListMessages(ctx, conv.ID)
		require.Len(t, msgs, 1)
		assert.Equal(t, inquirySeedText, msgs[0].Text)

		// Only the owner has something unread.
		assert.EqualValues(t, 1, conv.UnreadCount["bob"])
		assert.EqualValues(t, 0, conv.UnreadCount["alice"])

		assert.Equal(t, []string{"bob"}, notifier.recipients)
		assert.Equal(t, []string{"messagesSent"}, tracker.counters)
	})

	t.Run("reuses the existing thread for the same pair and property", func(t *testing.T) {
		svc, store, _, _ := newMessagingFixture(twoPartyConv())

		conv, err := svc.StartInquiry(ctx, "alice", "Alice", "bob", "Bob", "prop_1", "Beach villa")
		require.NoError(t, err)
		assert.Equal(t, "conv_ab", conv.ID)
		assert.Len(t, store.convs, 1)
	})
}

func TestMessagesAndMarkRead(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newMessagingFixture(twoPartyConv())

	_, err := svc.Send(ctx, "conv_ab", "alice", "Alice", "hello")
	require.NoError(t, err)

	t.Run("participants can read the history", func(t *testing.T) {
		msgs, err := svc.Messages(ctx, "conv_ab", "bob")
		require.NoError(t, err)
		assert.Len(t, msgs, 1)
	})

	t.Run("outsiders cannot", func(t *testing.T) {
		_, err := svc.Messages(ctx, "conv_ab", "mallory")
		assert.ErrorIs(t, err, domain.ErrNotParticipant)

		err = svc.MarkRead(ctx, "conv_ab", "mallory")
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
	})

	t.Run("mark read clears the caller's counter", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, "conv_ab", "bob"))
		assert.EqualValues(t, 0, store.convs["conv_ab"].UnreadCount["bob"])
	})
}

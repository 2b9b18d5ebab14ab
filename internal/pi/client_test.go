package pi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMe(t *testing.T) {
	t.Run("resolves the token owner", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/me", r.URL.Path)
			assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{"uid": "pi_u1", "username": "alice"})
		}))
		defer srv.Close()

		user, err := NewClient(srv.URL, "key").Me(context.Background(), "tok123")
		require.NoError(t, err)
		assert.Equal(t, "pi_u1", user.UID)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "key").Me(context.Background(), "bad")
		assert.Error(t, err)
	})

	t.Run("rejects an empty uid", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"username": "ghost"})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "key").Me(context.Background(), "tok")
		assert.Error(t, err)
	})
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payments/PMT_1", r.URL.Path)
		assert.Equal(t, "Key secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"identifier": "PMT_1",
			"user_uid":   "pi_u1",
			"amount":     0.01,
			"status": map[string]bool{
				"developer_approved":   true,
				"transaction_verified": true,
			},
			"transaction": map[string]string{"txid": "tx_abc"},
		})
	}))
	defer srv.Close()

	payment, err := NewClient(srv.URL, "secret").GetPayment(context.Background(), "PMT_1")
	require.NoError(t, err)
	assert.Equal(t, "PMT_1", payment.Identifier)
	assert.Equal(t, "pi_u1", payment.UserUID)
	assert.InDelta(t, 0.01, payment.Amount, 1e-9)
	assert.True(t, payment.Status.TransactionVerified)
	assert.Equal(t, "tx_abc", payment.TxID())
}

func TestCompletePayment(t *testing.T) {
	var captured map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/payments/PMT_1/complete", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "secret").CompletePayment(context.Background(), "PMT_1", "tx_abc")
	require.NoError(t, err)
	assert.Equal(t, "tx_abc", captured["txid"])
}

func TestApprovePaymentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"already approved"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "secret").ApprovePayment(context.Background(), "PMT_1")
	assert.ErrorContains(t, err, "400")
}

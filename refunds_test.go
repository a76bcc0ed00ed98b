//go:build !integration

package satispay

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundCharge(t *testing.T) {
	t.Run("validation happens before any network call", func(t *testing.T) {
		client := failOnCall(t)
		ctx := context.Background()

		tests := []struct {
			name   string
			params RefundChargeParams
		}{
			{"empty charge id", RefundChargeParams{Currency: "EUR", Amount: 1}},
			{"empty currency", RefundChargeParams{ChargeID: "charge-1", Amount: 1}},
			{"negative amount", RefundChargeParams{ChargeID: "charge-1", Currency: "EUR", Amount: -1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := client.RefundCharge(ctx, tt.params)
				assert.ErrorIs(t, err, ErrInvalidArgument)
			})
		}
	})

	t.Run("posts to the refunds collection", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/online/v1/refunds", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "charge-1", body["charge_id"])
			assert.Equal(t, "DUPLICATE", body["reason"])

			_, _ = w.Write([]byte(`{
				"id": "refund-1",
				"charge_id": "charge-1",
				"currency": "EUR",
				"amount": 50,
				"created": "2026-01-01T00:10:00Z",
				"reason": "DUPLICATE"
			}`))
		})

		refund, err := client.RefundCharge(context.Background(), RefundChargeParams{
			ChargeID: "charge-1",
			Currency: "EUR",
			Amount:   50,
			Reason:   RefundReasonDuplicate,
		})

		require.NoError(t, err)
		assert.Equal(t, "refund-1", refund.ID)
		assert.Equal(t, "charge-1", refund.ChargeID)
		assert.Equal(t, RefundReasonDuplicate, refund.Reason)
		assert.NotEmpty(t, refund.Created)
	})
}

func TestGetRefund(t *testing.T) {
	t.Run("rejects empty id", func(t *testing.T) {
		_, err := failOnCall(t).GetRefund(context.Background(), "")

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("requests the refund by id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/online/v1/refunds/refund-1", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"refund-1"}`))
		})

		refund, err := client.GetRefund(context.Background(), "refund-1")

		require.NoError(t, err)
		assert.Equal(t, "refund-1", refund.ID)
	})
}

func TestGetRefunds(t *testing.T) {
	t.Run("rejects non-positive limit", func(t *testing.T) {
		_, err := failOnCall(t).GetRefunds(context.Background(), &ListParams{Limit: -5})

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("requests the refunds collection, not users", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/online/v1/refunds", r.URL.Path)
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"has_more":false,"list":[]}`))
		})

		refunds, err := client.GetRefunds(context.Background(), nil)

		require.NoError(t, err)
		assert.False(t, refunds.HasMore)
		assert.Empty(t, refunds.List)
	})
}

func TestUpdateRefund(t *testing.T) {
	t.Run("rejects empty id", func(t *testing.T) {
		_, err := failOnCall(t).UpdateRefund(context.Background(), "", map[string]string{"k": "v"})

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("rejects nil metadata", func(t *testing.T) {
		_, err := failOnCall(t).UpdateRefund(context.Background(), "refund-1", nil)

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("puts the metadata", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/online/v1/refunds/refund-1", r.URL.Path)

			var body map[string]map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"order": "ord-7"}, body["metadata"])

			_, _ = w.Write([]byte(`{"id":"refund-1","metadata":{"order":"ord-7"}}`))
		})

		refund, err := client.UpdateRefund(context.Background(), "refund-1", map[string]string{"order": "ord-7"})

		require.NoError(t, err)
		assert.Equal(t, "ord-7", refund.Metadata["order"])
	})
}

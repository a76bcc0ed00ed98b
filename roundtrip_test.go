//go:build !integration

package satispay_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	satispay "github.com/satispay-community/satispay-go"
	"github.com/satispay-community/satispay-go/internal/sandbox"
)

// newSandboxClient points a real client at the in-memory provider emulator.
func newSandboxClient(t *testing.T) *satispay.Client {
	t.Helper()

	server := httptest.NewServer(sandbox.New("sandbox-bearer").Engine())
	t.Cleanup(server.Close)

	client, err := satispay.New("sandbox-bearer", satispay.WithBaseURL(server.URL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRoundTrip_Users(t *testing.T) {
	client := newSandboxClient(t)
	ctx := context.Background()

	created, err := client.CreateUser(ctx, "+393331234567")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.UUID)
	assert.Equal(t, "+393331234567", created.PhoneNumber)

	t.Run("read is idempotent", func(t *testing.T) {
		fetched, err := client.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)
	})

	t.Run("registering the same phone returns the same user", func(t *testing.T) {
		again, err := client.CreateUser(ctx, "+393331234567")
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
	})

	t.Run("limit 1 with two users pages with has_more", func(t *testing.T) {
		_, err := client.CreateUser(ctx, "+393337654321")
		require.NoError(t, err)

		users, err := client.GetUsers(ctx, &satispay.ListParams{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, users.List, 1)
		assert.True(t, users.HasMore)
	})

	t.Run("unknown user is a provider error", func(t *testing.T) {
		_, err := client.GetUser(ctx, "missing")
		var apiErr *satispay.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, satispay.ErrorKindProvider, apiErr.Kind)
	})
}

func TestRoundTrip_Charges(t *testing.T) {
	client := newSandboxClient(t)
	ctx := context.Background()

	user, err := client.CreateUser(ctx, "+393331234567")
	require.NoError(t, err)

	charge, err := client.CreateCharge(ctx, satispay.CreateChargeParams{
		UserID:   user.ID,
		Currency: "EUR",
		Amount:   1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, charge.ID)
	assert.NotEmpty(t, charge.ExpireDate)
	assert.Equal(t, user.ID, charge.UserID)
	assert.Equal(t, int64(1), charge.Amount)
	assert.Equal(t, satispay.ChargeStatusRequired, charge.Status)
	assert.Empty(t, charge.StatusDetail)
	assert.Equal(t, "EUR", charge.Currency)

	t.Run("fetch returns the same charge", func(t *testing.T) {
		fetched, err := client.GetCharge(ctx, charge.ID)
		require.NoError(t, err)
		assert.Equal(t, charge.ID, fetched.ID)
	})

	t.Run("cancel maps to FAILURE with DECLINED_BY_PAYER", func(t *testing.T) {
		canceled, err := client.UpdateCharge(ctx, charge.ID, satispay.UpdateChargeParams{
			ChargeState: satispay.ChargeStateCanceled,
		})
		require.NoError(t, err)
		assert.True(t, canceled.Failure())
		assert.True(t, canceled.DeclinedByPayer())
		assert.True(t, canceled.Declined())
	})

	t.Run("charge for an unknown user is a validation error", func(t *testing.T) {
		_, err := client.CreateCharge(ctx, satispay.CreateChargeParams{
			UserID:   "missing",
			Currency: "EUR",
			Amount:   1,
		})
		assert.True(t, satispay.IsValidation(err))
	})
}

func TestRoundTrip_Refunds(t *testing.T) {
	client := newSandboxClient(t)
	ctx := context.Background()

	user, err := client.CreateUser(ctx, "+393331234567")
	require.NoError(t, err)
	charge, err := client.CreateCharge(ctx, satispay.CreateChargeParams{
		UserID:   user.ID,
		Currency: "EUR",
		Amount:   115,
	})
	require.NoError(t, err)

	refund, err := client.RefundCharge(ctx, satispay.RefundChargeParams{
		ChargeID: charge.ID,
		Currency: "EUR",
		Amount:   15,
		Reason:   satispay.RefundReasonRequestedByCustomer,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, refund.ID)
	assert.Equal(t, charge.ID, refund.ChargeID)
	assert.NotEmpty(t, refund.Created)

	t.Run("refund amount accumulates on the charge", func(t *testing.T) {
		fetched, err := client.GetCharge(ctx, charge.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15), fetched.RefundAmount)
	})

	t.Run("metadata update round-trips", func(t *testing.T) {
		updated, err := client.UpdateRefund(ctx, refund.ID, map[string]string{"ticket": "T-42"})
		require.NoError(t, err)
		assert.Equal(t, "T-42", updated.Metadata["ticket"])
	})

	t.Run("refunds list contains the refund", func(t *testing.T) {
		refunds, err := client.GetRefunds(ctx, nil)
		require.NoError(t, err)
		require.Len(t, refunds.List, 1)
		assert.Equal(t, refund.ID, refunds.List[0].ID)
	})
}

func TestRoundTrip_Authentication(t *testing.T) {
	server := httptest.NewServer(sandbox.New("sandbox-bearer").Engine())
	t.Cleanup(server.Close)
	ctx := context.Background()

	t.Run("valid bearer authenticates", func(t *testing.T) {
		client, err := satispay.New("sandbox-bearer", satispay.WithBaseURL(server.URL))
		require.NoError(t, err)
		defer client.Close()

		assert.NoError(t, client.CheckAuthorization(ctx))
	})

	t.Run("wrong bearer is unauthorized with provider fields", func(t *testing.T) {
		client, err := satispay.New("wrong-bearer", satispay.WithBaseURL(server.URL))
		require.NoError(t, err)
		defer client.Close()

		err = client.CheckAuthorization(ctx)
		require.Error(t, err)
		assert.True(t, satispay.IsUnauthorized(err))

		var apiErr *satispay.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 36, apiErr.Code)
		assert.NotEmpty(t, apiErr.Message)
		assert.NotEmpty(t, apiErr.Wlt)
		assert.NotEqual(t, apiErr.Message, apiErr.Wlt)
	})
}

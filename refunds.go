package satispay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// RefundReason is the optional reason reported when refunding a charge.
type RefundReason string

const (
	RefundReasonDuplicate           RefundReason = "DUPLICATE"
	RefundReasonFraudulent          RefundReason = "FRAUDULENT"
	RefundReasonRequestedByCustomer RefundReason = "REQUESTED_BY_CUSTOMER"
)

// Refund is a reversal of all or part of a previously settled charge.
type Refund struct {
	ID          string            `json:"id"`
	ChargeID    string            `json:"charge_id"`
	Description string            `json:"description"`
	Currency    string            `json:"currency"`
	Amount      int64             `json:"amount"`
	Created     string            `json:"created"`
	Reason      RefundReason      `json:"reason"`
	Metadata    map[string]string `json:"metadata"`
}

// RefundChargeParams describes a refund of an existing charge. ChargeID and
// Currency are required; Amount is in the smallest currency units.
type RefundChargeParams struct {
	ChargeID    string
	Currency    string
	Amount      int64
	Description string
	Reason      RefundReason
	Metadata    map[string]string
}

type createRefundRequest struct {
	ChargeID    string            `json:"charge_id"`
	Currency    string            `json:"currency"`
	Amount      int64             `json:"amount"`
	Description string            `json:"description,omitempty"`
	Reason      RefundReason      `json:"reason,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// RefundCharge creates a refund against a specific charge.
func (c *Client) RefundCharge(ctx context.Context, params RefundChargeParams) (Refund, error) {
	if params.ChargeID == "" {
		return Refund{}, fmt.Errorf("%w: chargeID must not be empty", ErrInvalidArgument)
	}
	if params.Currency == "" {
		return Refund{}, fmt.Errorf("%w: currency must not be empty", ErrInvalidArgument)
	}
	if params.Amount < 0 {
		return Refund{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidArgument)
	}
	if err := validateMetadata(params.Metadata); err != nil {
		return Refund{}, err
	}

	return request[Refund](ctx, c, http.MethodPost, "/online/v1/refunds", createRefundRequest{
		ChargeID:    params.ChargeID,
		Currency:    params.Currency,
		Amount:      params.Amount,
		Description: params.Description,
		Reason:      params.Reason,
		Metadata:    params.Metadata,
	})
}

// GetRefund fetches a refund by id.
func (c *Client) GetRefund(ctx context.Context, refundID string) (Refund, error) {
	if refundID == "" {
		return Refund{}, fmt.Errorf("%w: refundID must not be empty", ErrInvalidArgument)
	}

	return request[Refund](ctx, c, http.MethodGet, "/online/v1/refunds/"+url.PathEscape(refundID), nil)
}

// GetRefunds lists previously created refunds in provider order.
func (c *Client) GetRefunds(ctx context.Context, params *ListParams) (List[Refund], error) {
	path, err := listPath("/online/v1/refunds", params, 0)
	if err != nil {
		return List[Refund]{}, err
	}

	return request[List[Refund]](ctx, c, http.MethodGet, path, nil)
}

type updateRefundRequest struct {
	Metadata map[string]string `json:"metadata"`
}

// UpdateRefund replaces the refund metadata. Metadata is required here; keys
// sent with a null value are removed by the provider.
func (c *Client) UpdateRefund(ctx context.Context, refundID string, metadata map[string]string) (Refund, error) {
	if refundID == "" {
		return Refund{}, fmt.Errorf("%w: refundID must not be empty", ErrInvalidArgument)
	}
	if metadata == nil {
		return Refund{}, fmt.Errorf("%w: metadata must not be nil", ErrInvalidArgument)
	}
	if err := validateMetadata(metadata); err != nil {
		return Refund{}, err
	}

	return request[Refund](ctx, c, http.MethodPut, "/online/v1/refunds/"+url.PathEscape(refundID), updateRefundRequest{
		Metadata: metadata,
	})
}

package satispay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ChargeStatus is the provider-controlled lifecycle state of a charge.
type ChargeStatus string

const (
	ChargeStatusRequired ChargeStatus = "REQUIRED"
	ChargeStatusSuccess  ChargeStatus = "SUCCESS"
	ChargeStatusFailure  ChargeStatus = "FAILURE"
)

// ChargeStatusDetail explains why a charge reached a terminal state. It is
// empty while the charge is still REQUIRED.
type ChargeStatusDetail string

const (
	StatusDetailDeclinedByPayer            ChargeStatusDetail = "DECLINED_BY_PAYER"
	StatusDetailDeclinedByPayerNotRequired ChargeStatusDetail = "DECLINED_BY_PAYER_NOT_REQUIRED"
	StatusDetailCancelByNewCharge          ChargeStatusDetail = "CANCEL_BY_NEW_CHARGE"
	StatusDetailInternalFailure            ChargeStatusDetail = "INTERNAL_FAILURE"
	StatusDetailExpired                    ChargeStatusDetail = "EXPIRED"
)

// ChargeState is the only client-driven transition: cancelling a pending
// charge. The provider maps it to status FAILURE / DECLINED_BY_PAYER.
type ChargeState string

const ChargeStateCanceled ChargeState = "CANCELED"

// Metadata limits enforced by the provider and validated before any request.
const (
	maxMetadataEntries  = 20
	maxMetadataKeyLen   = 45
	maxMetadataValueLen = 500
)

// Charge is a request for payment of a fixed amount against a specific user.
// Amount and RefundAmount are in the smallest currency units (1.15 EUR = 115).
type Charge struct {
	ID                   string             `json:"id"`
	Currency             string             `json:"currency"`
	Amount               int64              `json:"amount"`
	Description          string             `json:"description"`
	Status               ChargeStatus       `json:"status"`
	StatusDetail         ChargeStatusDetail `json:"status_detail"`
	UserID               string             `json:"user_id"`
	UserShortName        string             `json:"user_short_name"`
	Metadata             map[string]string  `json:"metadata"`
	Paid                 bool               `json:"paid"`
	RequiredSuccessEmail string             `json:"required_success_email"`
	ExpireDate           string             `json:"expire_date"`
	ChargeDate           string             `json:"charge_date"`
	CallbackURL          string             `json:"callback_url"`
	RefundAmount         int64              `json:"refund_amount"`
}

// The predicates below are projections of Status/StatusDetail. The state
// machine itself lives in the remote service and is only observed here.

// Required reports whether the charge is still waiting for the payer.
func (c Charge) Required() bool { return c.Status == ChargeStatusRequired }

// Success reports whether the charge was paid.
func (c Charge) Success() bool { return c.Status == ChargeStatusSuccess }

// Failure reports whether the charge reached a terminal failed state.
func (c Charge) Failure() bool { return c.Status == ChargeStatusFailure }

// Declined reports whether the payer declined the charge, in either variant.
func (c Charge) Declined() bool {
	return c.StatusDetail == StatusDetailDeclinedByPayer ||
		c.StatusDetail == StatusDetailDeclinedByPayerNotRequired
}

func (c Charge) DeclinedByPayer() bool {
	return c.StatusDetail == StatusDetailDeclinedByPayer
}

func (c Charge) DeclinedByPayerNotRequired() bool {
	return c.StatusDetail == StatusDetailDeclinedByPayerNotRequired
}

func (c Charge) CancelByNewCharge() bool {
	return c.StatusDetail == StatusDetailCancelByNewCharge
}

func (c Charge) InternalFailure() bool {
	return c.StatusDetail == StatusDetailInternalFailure
}

func (c Charge) Expired() bool {
	return c.StatusDetail == StatusDetailExpired
}

// CreateChargeParams describes a new charge. UserID and Currency are
// required. ExpireIn is in seconds, defaults to 900 and must be at least 60.
// CallbackURL should contain the literal {uuid} placeholder so the callback
// carries the charge id.
type CreateChargeParams struct {
	UserID      string
	Currency    string
	Amount      int64
	Description string
	ExpireIn    int
	Metadata    map[string]string
	CallbackURL string
}

type createChargeRequest struct {
	UserID      string            `json:"user_id"`
	Currency    string            `json:"currency"`
	Amount      int64             `json:"amount"`
	Description string            `json:"description,omitempty"`
	ExpireIn    int               `json:"expire_in,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CallbackURL string            `json:"callback_url,omitempty"`
}

// CreateCharge creates a charge for the specified user.
func (c *Client) CreateCharge(ctx context.Context, params CreateChargeParams) (Charge, error) {
	if params.UserID == "" {
		return Charge{}, fmt.Errorf("%w: userID must not be empty", ErrInvalidArgument)
	}
	if params.Currency == "" {
		return Charge{}, fmt.Errorf("%w: currency must not be empty", ErrInvalidArgument)
	}
	if params.Amount < 0 {
		return Charge{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidArgument)
	}
	expireIn := params.ExpireIn
	if expireIn == 0 {
		expireIn = 900
	}
	if expireIn < 60 {
		return Charge{}, fmt.Errorf("%w: expireIn must be at least 60 seconds", ErrInvalidArgument)
	}
	if err := validateMetadata(params.Metadata); err != nil {
		return Charge{}, err
	}

	return request[Charge](ctx, c, http.MethodPost, "/online/v1/charges", createChargeRequest{
		UserID:      params.UserID,
		Currency:    params.Currency,
		Amount:      params.Amount,
		Description: params.Description,
		ExpireIn:    expireIn,
		Metadata:    params.Metadata,
		CallbackURL: params.CallbackURL,
	})
}

// GetCharge fetches a charge by id.
func (c *Client) GetCharge(ctx context.Context, chargeID string) (Charge, error) {
	if chargeID == "" {
		return Charge{}, fmt.Errorf("%w: chargeID must not be empty", ErrInvalidArgument)
	}

	return request[Charge](ctx, c, http.MethodGet, "/online/v1/charges/"+url.PathEscape(chargeID), nil)
}

// GetCharges lists charges ordered by creation. The provider caps the page
// size at 100.
func (c *Client) GetCharges(ctx context.Context, params *ListParams) (List[Charge], error) {
	path, err := listPath("/online/v1/charges", params, 100)
	if err != nil {
		return List[Charge]{}, err
	}

	return request[List[Charge]](ctx, c, http.MethodGet, path, nil)
}

// UpdateChargeParams carries the only mutable charge fields. Metadata keys
// set to an empty value are forwarded as-is; the provider removes keys sent
// with a null value. ChargeState may only be ChargeStateCanceled.
type UpdateChargeParams struct {
	Description string
	Metadata    map[string]string
	ChargeState ChargeState
}

type updateChargeRequest struct {
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ChargeState ChargeState       `json:"charge_state,omitempty"`
}

// UpdateCharge updates description, metadata or cancels a pending charge.
func (c *Client) UpdateCharge(ctx context.Context, chargeID string, params UpdateChargeParams) (Charge, error) {
	if chargeID == "" {
		return Charge{}, fmt.Errorf("%w: chargeID must not be empty", ErrInvalidArgument)
	}
	if params.ChargeState != "" && params.ChargeState != ChargeStateCanceled {
		return Charge{}, fmt.Errorf("%w: chargeState only accepts %q", ErrInvalidArgument, ChargeStateCanceled)
	}
	if err := validateMetadata(params.Metadata); err != nil {
		return Charge{}, err
	}

	return request[Charge](ctx, c, http.MethodPut, "/online/v1/charges/"+url.PathEscape(chargeID), updateChargeRequest{
		Description: params.Description,
		Metadata:    params.Metadata,
		ChargeState: params.ChargeState,
	})
}

func validateMetadata(metadata map[string]string) error {
	if len(metadata) > maxMetadataEntries {
		return fmt.Errorf("%w: metadata allows at most %d entries", ErrInvalidArgument, maxMetadataEntries)
	}
	for k, v := range metadata {
		if len(k) > maxMetadataKeyLen {
			return fmt.Errorf("%w: metadata key %q exceeds %d characters", ErrInvalidArgument, k, maxMetadataKeyLen)
		}
		if len(v) > maxMetadataValueLen {
			return fmt.Errorf("%w: metadata value for key %q exceeds %d characters", ErrInvalidArgument, k, maxMetadataValueLen)
		}
	}
	return nil
}

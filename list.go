package satispay

import (
	"fmt"

	"github.com/google/go-querystring/query"
)

// List is a single page of entities in provider order.
type List[T any] struct {
	HasMore bool `json:"has_more"`
	List    []T  `json:"list"`
}

const defaultListLimit = 20

// ListParams are the cursor-pagination parameters shared by every list
// endpoint. StartingAfter and EndingBefore are opaque entity ids and are
// mutually exclusive.
type ListParams struct {
	Limit         int    `url:"limit"`
	StartingAfter string `url:"starting_after,omitempty"`
	EndingBefore  string `url:"ending_before,omitempty"`
}

// listPath validates the params and appends them to path as a query string.
// A nil params uses the provider default limit of 20. maxLimit of 0 means the
// provider does not enforce an upper bound.
func listPath(path string, params *ListParams, maxLimit int) (string, error) {
	p := ListParams{Limit: defaultListLimit}
	if params != nil {
		p = *params
		if p.Limit == 0 {
			p.Limit = defaultListLimit
		}
	}

	if p.Limit < 1 {
		return "", fmt.Errorf("%w: limit must be at least 1", ErrInvalidArgument)
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		return "", fmt.Errorf("%w: limit must be at most %d", ErrInvalidArgument, maxLimit)
	}
	if p.StartingAfter != "" && p.EndingBefore != "" {
		return "", fmt.Errorf("%w: startingAfter and endingBefore cannot be used together", ErrInvalidArgument)
	}

	v, err := query.Values(p)
	if err != nil {
		return "", fmt.Errorf("encode list params: %w", err)
	}
	return path + "?" + v.Encode(), nil
}

package satispay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// User is a Satispay consumer a shop can send charge requests to.
type User struct {
	ID          string `json:"id"`
	UUID        string `json:"uuid"`
	PhoneNumber string `json:"phone_number"`
}

type createUserRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// CreateUser registers the consumer with the given phone number for this
// shop. The consumer must already be subscribed to the Satispay service.
func (c *Client) CreateUser(ctx context.Context, phoneNumber string) (User, error) {
	if phoneNumber == "" {
		return User{}, fmt.Errorf("%w: phoneNumber must not be empty", ErrInvalidArgument)
	}

	return request[User](ctx, c, http.MethodPost, "/online/v1/users", createUserRequest{
		PhoneNumber: phoneNumber,
	})
}

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	if userID == "" {
		return User{}, fmt.Errorf("%w: userID must not be empty", ErrInvalidArgument)
	}

	return request[User](ctx, c, http.MethodGet, "/online/v1/users/"+url.PathEscape(userID), nil)
}

// GetUsers lists the shop users in provider order. A nil params requests the
// default page of 20.
func (c *Client) GetUsers(ctx context.Context, params *ListParams) (List[User], error) {
	path, err := listPath("/online/v1/users", params, 0)
	if err != nil {
		return List[User]{}, err
	}

	return request[List[User]](ctx, c, http.MethodGet, path, nil)
}

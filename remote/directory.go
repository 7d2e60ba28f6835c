package remote

import (
	"context"
	"net/http"
	"net/url"

	"timepunch/shift"
)

// HTTPDirectory resolves users against the team/identity service. It
// shares the transport and error classification of HTTPClient.
type HTTPDirectory struct {
	client *HTTPClient
}

func NewDirectory(cfg ClientConfig) (*HTTPDirectory, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &HTTPDirectory{client: client}, nil
}

func (d *HTTPDirectory) GetUser(ctx context.Context, userID string) (shift.User, error) {
	path := "/api/users/" + url.PathEscape(userID)
	var out shift.User
	if err := d.client.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return shift.User{}, err
	}
	return out, nil
}

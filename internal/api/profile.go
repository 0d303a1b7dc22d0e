package api

import (
	"context"
	"net/http"

	"carwash-client/internal/domain"
)

const pathProfile = "/users/profile"

// FetchProfile requiere token. Si el usuario aun no tiene perfil el error
// cumple errors.Is(err, domain.ErrNotFound).
func (c *Client) FetchProfile(ctx context.Context) (domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodGet, pathProfile, nil, nil, &out); err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}

func (c *Client) CreateProfile(ctx context.Context, in domain.ProfileInput) (domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodPost, pathProfile, nil, in, &out); err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in domain.ProfileInput) (domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodPut, pathProfile, nil, in, &out); err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}

// UpdateLocation maneja PATCH /users/profile/location.
func (c *Client) UpdateLocation(ctx context.Context, latitude, longitude float64) (domain.Profile, error) {
	body := struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}{latitude, longitude}

	var out domain.Profile
	if err := c.do(ctx, http.MethodPatch, pathProfile+"/location", nil, body, &out); err != nil {
		return domain.Profile{}, err
	}
	return out, nil
}

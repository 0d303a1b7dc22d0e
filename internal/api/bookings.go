package api

import (
	"context"
	"net/http"
	"net/url"

	"carwash-client/internal/domain"
)

const pathBookings = "/bookings"

func (c *Client) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	if err := c.do(ctx, http.MethodGet, pathBookings, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking envia userName como query param y el resto en el cuerpo.
func (c *Client) CreateBooking(ctx context.Context, in domain.BookingInput) (domain.Booking, error) {
	query := url.Values{}
	query.Set("userName", in.UserName)

	var out domain.Booking
	if err := c.do(ctx, http.MethodPost, pathBookings, query, in, &out); err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	var out domain.Booking
	if err := c.do(ctx, http.MethodGet, pathBookings+"/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (c *Client) ListBookingsByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	var out []domain.Booking
	path := pathBookings + "/status/" + url.PathEscape(string(status))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelBooking maneja DELETE /bookings/{id}.
func (c *Client) CancelBooking(ctx context.Context, id string) (domain.MessageResponse, error) {
	var out domain.MessageResponse
	if err := c.do(ctx, http.MethodDelete, pathBookings+"/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return domain.MessageResponse{}, err
	}
	return out, nil
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (domain.Booking, error) {
	body := struct {
		Status domain.BookingStatus `json:"status"`
	}{status}

	var out domain.Booking
	path := pathBookings + "/" + url.PathEscape(id) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

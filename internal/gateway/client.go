// Package gateway is the client for the letsplay booking API. It owns
// request construction (identity header, time normalization) and the
// translation of transport and server failures into the typed taxonomy
// in errors.go; callers never see raw HTTP details.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/letsplay-client/internal/booking"
	"github.com/example/letsplay-client/internal/session"
)

type Client struct {
	base string
	hc   *http.Client
	id   session.Identity
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(baseURL string, id session.Identity, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		id:   id,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DayParam formats t as the venue-local calendar day. The time's own
// offset is kept: converting through UTC first would query the wrong
// day for evening slots east of Greenwich.
func DayParam(t time.Time) string {
	return t.Format("2006-01-02")
}

// ListForVenueAndDate fetches the reservation snapshot the slot
// classifier runs against, scoped to one venue-local day.
func (c *Client) ListForVenueAndDate(ctx context.Context, venueID int64, date time.Time) ([]booking.Reservation, error) {
	q := url.Values{}
	q.Set("groundId", strconv.FormatInt(venueID, 10))
	q.Set("date", DayParam(date))

	var out []booking.Reservation
	if err := c.get(ctx, "/bookings/slots", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublic fetches the cross-venue public games list. The server is
// expected to pre-filter, but capacity may have filled since, so the
// client filters again.
func (c *Client) ListPublic(ctx context.Context) ([]booking.Reservation, error) {
	var out []booking.Reservation
	if err := c.get(ctx, "/bookings/public", nil, &out); err != nil {
		return nil, err
	}
	return booking.FilterJoinable(out), nil
}

// Create submits a new reservation. The window is validated locally
// and the start/end instants are sent with their own offsets intact.
func (c *Client) Create(ctx context.Context, venueID int64, w booking.TimeWindow, isPublic bool, maxPlayers int) (booking.Reservation, error) {
	if err := c.requireIdentity(); err != nil {
		return booking.Reservation{}, err
	}
	if err := w.Validate(); err != nil {
		return booking.Reservation{}, err
	}
	if maxPlayers < 1 {
		maxPlayers = 1
	}

	body := struct {
		GroundID   int64  `json:"groundId"`
		StartTime  string `json:"startTime"`
		EndTime    string `json:"endTime"`
		IsPublic   bool   `json:"isPublic"`
		MaxPlayers int    `json:"maxPlayers"`
	}{
		GroundID:   venueID,
		StartTime:  w.Start.Format(time.RFC3339),
		EndTime:    w.End.Format(time.RFC3339),
		IsPublic:   isPublic,
		MaxPlayers: maxPlayers,
	}

	var out booking.Reservation
	if err := c.post(ctx, "/bookings", body, &out); err != nil {
		return booking.Reservation{}, err
	}
	return out, nil
}

// Join takes a seat in a public reservation and returns the updated
// occupancy and status.
func (c *Client) Join(ctx context.Context, reservationID int64) (booking.Reservation, error) {
	if err := c.requireIdentity(); err != nil {
		return booking.Reservation{}, err
	}
	var out booking.Reservation
	if err := c.post(ctx, fmt.Sprintf("/bookings/%d/join", reservationID), struct{}{}, &out); err != nil {
		return booking.Reservation{}, err
	}
	return out, nil
}

// Fetch reads one reservation; the workflow poll loop lives on this.
func (c *Client) Fetch(ctx context.Context, reservationID int64) (booking.Reservation, error) {
	var out booking.Reservation
	if err := c.get(ctx, fmt.Sprintf("/bookings/%d", reservationID), nil, &out); err != nil {
		return booking.Reservation{}, err
	}
	return out, nil
}

func (c *Client) Venue(ctx context.Context, venueID int64) (booking.Venue, error) {
	var out booking.Venue
	if err := c.get(ctx, fmt.Sprintf("/grounds/%d", venueID), nil, &out); err != nil {
		return booking.Venue{}, err
	}
	return out, nil
}

// Venues lists the catalog, optionally narrowed to one sport.
func (c *Client) Venues(ctx context.Context, sportType string) ([]booking.Venue, error) {
	var q url.Values
	if sportType != "" {
		q = url.Values{"sportType": {sportType}}
	}
	var out []booking.Venue
	if err := c.get(ctx, "/grounds", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyBookings lists the signed-in user's reservations.
func (c *Client) MyBookings(ctx context.Context) ([]booking.Reservation, error) {
	if err := c.requireIdentity(); err != nil {
		return nil, err
	}
	q := url.Values{"email": {c.id.Email}}
	var out []booking.Reservation
	if err := c.get(ctx, "/bookings/my", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History fetches a reservation's chat transcript, oldest first.
func (c *Client) History(ctx context.Context, reservationID int64) ([]booking.ChatMessage, error) {
	var out []booking.ChatMessage
	if err := c.get(ctx, fmt.Sprintf("/chat/%d", reservationID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Notifications lists join-request and booking notices for a user.
func (c *Client) Notifications(ctx context.Context, userID int64) ([]booking.Notification, error) {
	q := url.Values{"userId": {strconv.FormatInt(userID, 10)}}
	var out []booking.Notification
	if err := c.get(ctx, "/notifications", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges credentials for a session. It is the one call with
// no identity attached; the returned identity is what every other
// constructor takes.
func (c *Client) Login(ctx context.Context, email, password string) (session.Identity, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := c.post(ctx, "/auth/login", body, &out); err != nil {
		return session.Identity{}, err
	}

	id := session.Identity{UserID: out.ID, Name: out.Name, Email: out.Email, Token: out.Token}
	if id.Token != "" {
		// prefer the token's own claims when they decode
		if fromClaims, err := session.FromToken(id.Token); err == nil {
			if fromClaims.UserID != 0 {
				id.UserID = fromClaims.UserID
			}
			if fromClaims.Name != "" {
				id.Name = fromClaims.Name
			}
			if fromClaims.Email != "" {
				id.Email = fromClaims.Email
			}
		}
	}
	return id, nil
}

func (c *Client) requireIdentity() error {
	if !c.id.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	status, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(status, body, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return err
	}
	return decode(status, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.id.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.id.Token)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}
	return res.StatusCode, b, nil
}

func decode(status int, body []byte, out any) error {
	if status >= 400 {
		return apiError(status, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", ErrServerError, err)
	}
	return nil
}

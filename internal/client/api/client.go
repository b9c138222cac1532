// Package api is the HTTP client for the remote habit service. It
// attaches the session's bearer token to every request and discards
// the stored credential whenever the service answers 401, without
// forcing any navigation on the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/inhabitapp/inhabit/internal/client/session"
	"github.com/inhabitapp/inhabit/internal/models"
	"github.com/inhabitapp/inhabit/internal/service"
)

// Client talks to the habit service API.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
}

// New constructs a Client for the service at baseURL, authenticating
// with the given session.
func New(baseURL string, sess *session.Session) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		session: sess,
	}
}

// do performs one JSON request. A transport failure becomes a
// *NetworkError; a non-2xx response becomes a *ServiceError. On 401 the
// session credential is cleared before returning.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.session.BearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Invalid credential: discard it. Redirecting is the
		// presentation layer's call, not ours.
		c.session.Clear()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &ServiceError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates and installs the credential into the session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	c.session.Set(out.Token, out.User)
	return out.User, nil
}

// Register creates an account and installs the credential into the session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	var out struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil,
		map[string]string{"name": name, "email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	c.session.Set(out.Token, out.User)
	return out.User, nil
}

// Logout revokes the server-side token and clears the session either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.session.Clear()
	return err
}

// Me fetches the current user for the stored credential.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ListParams are the habit listing query parameters.
type ListParams struct {
	Days            int
	Category        string
	SortBy          string
	SortOrder       string
	IncludeArchived bool
}

// GetHabits lists the user's habits with recent completions attached.
func (c *Client) GetHabits(ctx context.Context, params ListParams) ([]models.Habit, error) {
	q := url.Values{}
	if params.Days > 0 {
		q.Set("days", fmt.Sprint(params.Days))
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.SortBy != "" {
		q.Set("sort_by", params.SortBy)
	}
	if params.SortOrder != "" {
		q.Set("sort_order", params.SortOrder)
	}
	if params.IncludeArchived {
		q.Set("include_archived", "true")
	}

	var out struct {
		Habits []models.Habit `json:"habits"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/habits", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Habits, nil
}

// GetHabit fetches one habit with its recent completions.
func (c *Client) GetHabit(ctx context.Context, id string) (*models.Habit, error) {
	var out struct {
		Habit *models.Habit `json:"habit"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/habits/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Habit, nil
}

// CreateHabit persists a new habit.
func (c *Client) CreateHabit(ctx context.Context, input service.CreateInput) (*models.Habit, error) {
	var out struct {
		Habit *models.Habit `json:"habit"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/habits", nil, input, &out); err != nil {
		return nil, err
	}
	return out.Habit, nil
}

// UpdateHabit applies a partial patch.
func (c *Client) UpdateHabit(ctx context.Context, id string, patch service.UpdateInput) (*models.Habit, error) {
	var out struct {
		Habit *models.Habit `json:"habit"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/habits/"+id, nil, patch, &out); err != nil {
		return nil, err
	}
	return out.Habit, nil
}

// DeleteHabit removes a habit.
func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/habits/"+id, nil, nil, nil)
}

// ToggleCompletion records a completion state for (habit, date) and
// returns the habit with server-recomputed streaks.
func (c *Client) ToggleCompletion(ctx context.Context, id, date string, completed bool) (*models.Habit, error) {
	var out struct {
		Habit *models.Habit `json:"habit"`
	}
	body := map[string]any{"date": date, "completed": completed}
	if err := c.do(ctx, http.MethodPost, "/api/habits/"+id+"/toggle", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Habit, nil
}

// SetArchived flips the archived flag on a habit.
func (c *Client) SetArchived(ctx context.Context, id string, archived bool) (*models.Habit, error) {
	var out struct {
		Habit *models.Habit `json:"habit"`
	}
	body := map[string]bool{"is_archived": archived}
	if err := c.do(ctx, http.MethodPost, "/api/habits/"+id+"/archive", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Habit, nil
}

// GetCompletions fetches a habit's completions within [start, end].
func (c *Client) GetCompletions(ctx context.Context, id, start, end string) ([]models.Completion, error) {
	q := url.Values{}
	if start != "" {
		q.Set("start_date", start)
	}
	if end != "" {
		q.Set("end_date", end)
	}

	var out struct {
		Completions []models.Completion `json:"completions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/habits/"+id+"/completions", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Completions, nil
}

// GetCategories fetches the user's distinct habit categories.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/habits/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

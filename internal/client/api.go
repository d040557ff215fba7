package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"undercover/internal/domain"
)

// API is a thin client for the coordination server's JSON endpoints
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates an API client for the given base URL
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError is a server-reported failure (the {error} body)
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// CreateRoomResult mirrors the room creation response
type CreateRoomResult struct {
	Code       string          `json:"code"`
	MaxPlayers int             `json:"maxPlayers"`
	Settings   domain.Settings `json:"settings"`
}

// JoinResult mirrors the join response: the private token plus the
// session's own room view
type JoinResult struct {
	Token string `json:"token"`
	domain.SessionView
}

// CreateRoom allocates a room. Zero values use the server defaults.
func (a *API) CreateRoom(ctx context.Context, maxPlayers, taskCount, maxSameType int) (CreateRoomResult, error) {
	body := map[string]int{
		"maxPlayers":  maxPlayers,
		"taskCount":   taskCount,
		"maxSameType": maxSameType,
	}

	var out CreateRoomResult
	err := a.doJSON(ctx, http.MethodPost, "/api/room", body, &out)
	return out, err
}

// Join joins a room. An empty token requests a fresh session; an
// already-issued token returns the existing one.
func (a *API) Join(ctx context.Context, name, code, token string) (JoinResult, error) {
	body := map[string]string{
		"name":  name,
		"code":  code,
		"token": token,
	}

	var out JoinResult
	err := a.doJSON(ctx, http.MethodPost, "/api/join", body, &out)
	return out, err
}

// Status fetches the session's own room view. Idempotent; safe to call
// repeatedly.
func (a *API) Status(ctx context.Context, code, token string) (domain.SessionView, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("token", token)

	var out domain.SessionView
	err := a.doJSON(ctx, http.MethodGet, "/api/me?"+q.Encode(), nil, &out)
	return out, err
}

// doJSON performs one request and decodes either the payload or the
// server's {error} body
func (a *API) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

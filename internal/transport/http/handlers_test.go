package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"undercover/internal/app"
	"undercover/internal/config"
	"undercover/internal/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewRoomHub(logger, app.NewAuditLog("", logger), 0)
	t.Cleanup(hub.Close)

	cfg := config.Load()
	return NewServer(cfg, hub, logger)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		data, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, w.Body.String())
	}
}

func createRoom(t *testing.T, s *Server, body interface{}) CreateRoomResponse {
	t.Helper()
	w := doJSON(t, s, "POST", "/api/room", body)
	if w.Code != http.StatusOK {
		t.Fatalf("create room: status %d, body %s", w.Code, w.Body.String())
	}
	var resp CreateRoomResponse
	decodeJSON(t, w, &resp)
	return resp
}

func joinRoom(t *testing.T, s *Server, name, code string) JoinResponse {
	t.Helper()
	w := doJSON(t, s, "POST", "/api/join", JoinRequest{Name: name, Code: code})
	if w.Code != http.StatusOK {
		t.Fatalf("join: status %d, body %s", w.Code, w.Body.String())
	}
	var resp JoinResponse
	decodeJSON(t, w, &resp)
	return resp
}

func TestCreateRoomDefaults(t *testing.T) {
	s := newTestServer(t)

	resp := createRoom(t, s, CreateRoomRequest{})
	if resp.Code == "" {
		t.Fatal("no room code returned")
	}
	if resp.MaxPlayers != 5 {
		t.Fatalf("want capacity 5, got %d", resp.MaxPlayers)
	}
	if resp.Settings != domain.DefaultSettings() {
		t.Fatalf("want default settings, got %+v", resp.Settings)
	}
}

func TestCreateRoomRejectsInfeasibleSettings(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s, "POST", "/api/room", CreateRoomRequest{TaskCount: 5, MaxSameType: 1})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d: %s", w.Code, w.Body.String())
	}

	var e ErrorResponse
	decodeJSON(t, w, &e)
	if e.Error == "" {
		t.Fatal("error body must carry a message")
	}
}

func TestJoinFlowThroughAssignment(t *testing.T) {
	s := newTestServer(t)
	room := createRoom(t, s, CreateRoomRequest{})

	joins := make([]JoinResponse, 0, 5)
	for i := 0; i < 5; i++ {
		resp := joinRoom(t, s, fmt.Sprintf("player-%c", 'a'+i), room.Code)
		if resp.Token == "" {
			t.Fatal("join must issue a token")
		}
		if resp.Joined != i+1 {
			t.Fatalf("join %d reports %d joined", i, resp.Joined)
		}
		joins = append(joins, resp)
	}

	// The fifth join's own response already carries its assignment
	if joins[4].Status != domain.StatusAssigned || joins[4].Role == "" {
		t.Fatalf("filling join must carry assignment, got %+v", joins[4].SessionView)
	}

	// Every session now observes the complete assignment
	undercovers := 0
	for i, j := range joins {
		w := doJSON(t, s, "GET", "/api/me?code="+room.Code+"&token="+j.Token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("me %d: status %d", i, w.Code)
		}
		var view domain.SessionView
		decodeJSON(t, w, &view)

		if view.Status != domain.StatusAssigned {
			t.Fatalf("session %d still %s after capacity reached", i, view.Status)
		}
		if view.Role == "" || view.Lane == "" {
			t.Fatalf("session %d observed partial assignment", i)
		}
		if view.Role == domain.RoleUndercover {
			undercovers++
		} else if len(view.Tasks) != 0 {
			t.Fatalf("crew session %d was sent tasks", i)
		}
	}
	if undercovers != 1 {
		t.Fatalf("want exactly 1 undercover, got %d", undercovers)
	}
}

func TestJoinErrors(t *testing.T) {
	s := newTestServer(t)
	room := createRoom(t, s, CreateRoomRequest{MaxPlayers: 2})
	joinRoom(t, s, "ana", room.Code)

	tests := []struct {
		name string
		req  JoinRequest
		want int
	}{
		{"unknown room", JoinRequest{Name: "x", Code: "NOSUCH"}, http.StatusNotFound},
		{"missing code", JoinRequest{Name: "x"}, http.StatusBadRequest},
		{"duplicate name", JoinRequest{Name: "ana", Code: room.Code}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, "POST", "/api/join", tt.req)
			if w.Code != tt.want {
				t.Fatalf("want %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}

	// Fill the room, then a sixth device is turned away
	joinRoom(t, s, "bo", room.Code)
	w := doJSON(t, s, "POST", "/api/join", JoinRequest{Name: "late", Code: room.Code})
	if w.Code != http.StatusConflict {
		t.Fatalf("full room join: want 409, got %d", w.Code)
	}
}

func TestJoinIdempotentWithToken(t *testing.T) {
	s := newTestServer(t)
	room := createRoom(t, s, CreateRoomRequest{})
	first := joinRoom(t, s, "ana", room.Code)

	w := doJSON(t, s, "POST", "/api/join", JoinRequest{Name: "ana", Code: room.Code, Token: first.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("re-join: status %d, body %s", w.Code, w.Body.String())
	}
	var again JoinResponse
	decodeJSON(t, w, &again)

	if again.Token != first.Token {
		t.Fatal("re-join must return the same token")
	}
	if again.Joined != 1 {
		t.Fatalf("re-join incremented membership to %d", again.Joined)
	}
}

func TestMeRequiresValidToken(t *testing.T) {
	s := newTestServer(t)
	room := createRoom(t, s, CreateRoomRequest{})
	joinRoom(t, s, "ana", room.Code)

	w := doJSON(t, s, "GET", "/api/me?code="+room.Code+"&token=bogus", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}

	w = doJSON(t, s, "GET", "/api/me?code="+room.Code, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing token: want 400, got %d", w.Code)
	}

	w = doJSON(t, s, "GET", "/api/me?code=NOSUCH&token=whatever", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown room: want 404, got %d", w.Code)
	}
}

func TestMeIsCaseInsensitiveOnCode(t *testing.T) {
	s := newTestServer(t)
	room := createRoom(t, s, CreateRoomRequest{})
	j := joinRoom(t, s, "ana", room.Code)

	lower := ""
	for _, c := range room.Code {
		lower += string(c | 0x20)
	}
	w := doJSON(t, s, "GET", "/api/me?code="+lower+"&token="+j.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("lowercase code lookup failed: %d", w.Code)
	}
}

func TestVerdictEndpoint(t *testing.T) {
	s := newTestServer(t)

	two := 2
	req := VerdictRequest{
		Players:        []string{"ana", "bo", "cy", "dee", "ed"},
		Votes:          []domain.Vote{{Choice: &two}, {Choice: &two}, {Choice: &two}, {}, {}},
		MatchResult:    domain.MatchLose,
		UndercoverIdx:  2,
		TasksCompleted: 0,
	}

	w := doJSON(t, s, "POST", "/api/verdict", req)
	if w.Code != http.StatusOK {
		t.Fatalf("verdict: status %d, body %s", w.Code, w.Body.String())
	}
	var verdict domain.Verdict
	decodeJSON(t, w, &verdict)
	if verdict.UndercoverWins {
		t.Fatalf("caught undercover after a loss should lose: %s", verdict.Text)
	}
	if verdict.VotedOutName != "cy" {
		t.Fatalf("want cy voted out, got %q", verdict.VotedOutName)
	}

	// Incomplete vote set is a blocking condition, not a guess
	req.Votes = req.Votes[:3]
	w = doJSON(t, s, "POST", "/api/verdict", req)
	if w.Code != http.StatusConflict {
		t.Fatalf("incomplete votes: want 409, got %d", w.Code)
	}
}

package domain

import (
	"fmt"
	"testing"
)

func newTestRoom(maxPlayers int) *Room {
	return NewRoom("TEST42", maxPlayers, DefaultSettings())
}

func testJoin(t *testing.T, r *Room, name string) *Player {
	t.Helper()
	n := len(r.Players)
	p, err := r.Join(name, "", func(name string, order int) *Player {
		return NewPlayer(fmt.Sprintf("id-%d", n), fmt.Sprintf("tok-%d", n), name, order)
	})
	if err != nil {
		t.Fatalf("join %q failed: %v", name, err)
	}
	return p
}

func TestJoinAssignsAtCapacity(t *testing.T) {
	r := newTestRoom(5)

	for i := 0; i < 4; i++ {
		testJoin(t, r, fmt.Sprintf("p%d", i))
		if r.Assigned() {
			t.Fatal("room assigned before reaching capacity")
		}
	}

	last := testJoin(t, r, "p4")
	if !r.Assigned() {
		t.Fatal("room must assign the instant membership reaches capacity")
	}
	if last.Role == "" {
		t.Fatal("the filling join must already carry its assignment")
	}

	// Exactly one undercover, everyone has a lane, only the
	// undercover has tasks
	undercovers := 0
	for _, p := range r.Players {
		if p.Role == RoleUndercover {
			undercovers++
			if len(p.Tasks) != r.Settings.TaskCount {
				t.Errorf("undercover has %d tasks, want %d", len(p.Tasks), r.Settings.TaskCount)
			}
		} else if len(p.Tasks) != 0 {
			t.Errorf("crew member %s has tasks", p.Name)
		}
		if p.Lane == "" {
			t.Errorf("player %s has no lane", p.Name)
		}
	}
	if undercovers != 1 {
		t.Fatalf("want exactly 1 undercover, got %d", undercovers)
	}
}

func TestJoinIdempotentPerToken(t *testing.T) {
	r := newTestRoom(5)
	first := testJoin(t, r, "ana")

	again, err := r.Join("whatever", first.Token, func(name string, order int) *Player {
		t.Fatal("factory must not run for a re-join")
		return nil
	})
	if err != nil {
		t.Fatalf("re-join failed: %v", err)
	}
	if again != first {
		t.Fatal("re-join must return the existing session")
	}
	if len(r.Players) != 1 {
		t.Fatalf("re-join incremented membership to %d", len(r.Players))
	}
}

func TestJoinRejectsDuplicateNameAndFullRoom(t *testing.T) {
	r := newTestRoom(2)
	testJoin(t, r, "ana")

	if _, err := r.Join("ana", "", nil); err != ErrNameTaken {
		t.Fatalf("want ErrNameTaken, got %v", err)
	}

	testJoin(t, r, "bo")
	if _, err := r.Join("cy", "", nil); err != ErrRoomFull {
		t.Fatalf("want ErrRoomFull, got %v", err)
	}
}

func TestJoinSubstitutesBlankName(t *testing.T) {
	r := newTestRoom(5)
	p := testJoin(t, r, "   ")
	if p.Name != "player-1" {
		t.Fatalf("blank name should default to player-1, got %q", p.Name)
	}
}

func TestAssignRunsOnce(t *testing.T) {
	r := newTestRoom(2)
	testJoin(t, r, "ana")
	testJoin(t, r, "bo")

	lanes := []string{r.Players[0].Lane, r.Players[1].Lane}
	idx := r.UndercoverIdx

	if err := r.Assign(); err != ErrAlreadyAssigned {
		t.Fatalf("second assignment must fail, got %v", err)
	}
	if r.UndercoverIdx != idx || r.Players[0].Lane != lanes[0] || r.Players[1].Lane != lanes[1] {
		t.Fatal("assignment was recomputed")
	}
}

func TestViewForNeverLeaksOtherSessions(t *testing.T) {
	r := newTestRoom(2)
	testJoin(t, r, "ana")
	testJoin(t, r, "bo")

	for i, p := range r.Players {
		view, err := r.ViewFor(p.Token)
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if view.Name != p.Name || view.Role != p.Role || view.Lane != p.Lane {
			t.Errorf("view %d does not match own session", i)
		}
		if view.Settings == nil {
			t.Errorf("assigned view %d missing settings", i)
		}
		if p.Role == RoleCrew && len(view.Tasks) != 0 {
			t.Errorf("crew view %d carries tasks", i)
		}
	}

	if _, err := r.ViewFor("not-a-token"); err != ErrUnauthorized {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if _, err := r.ViewFor(""); err != ErrUnauthorized {
		t.Fatalf("empty token must be unauthorized, got %v", err)
	}
}

func TestViewForWhileForming(t *testing.T) {
	r := newTestRoom(5)
	p := testJoin(t, r, "ana")

	view, err := r.ViewFor(p.Token)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if view.Status != StatusForming {
		t.Fatalf("want forming, got %s", view.Status)
	}
	if view.Role != "" || view.Tasks != nil || view.Settings != nil || view.Lane != "" {
		t.Fatal("forming view must not carry assignment fields")
	}
	if view.Joined != 1 || view.MaxPlayers != 5 {
		t.Fatalf("lobby counts wrong: %d/%d", view.Joined, view.MaxPlayers)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  ab3k9q "); got != "AB3K9Q" {
		t.Fatalf("NormalizeCode = %q", got)
	}
}

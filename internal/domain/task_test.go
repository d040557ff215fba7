package domain

import "testing"

func TestDrawTasksHonorsCountAndTypeCap(t *testing.T) {
	// Randomized draw, so exercise it many times
	for i := 0; i < 200; i++ {
		tasks, err := DrawTasks(4, 2)
		if err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if len(tasks) != 4 {
			t.Fatalf("want 4 tasks, got %d", len(tasks))
		}

		seen := make(map[string]int)
		byType := make(map[string]int)
		for _, task := range tasks {
			seen[task.ID]++
			byType[task.Type]++
		}

		for id, n := range seen {
			if n > 1 {
				t.Fatalf("task %s drawn %d times, draws must be without replacement", id, n)
			}
		}
		for typ, n := range byType {
			if n > 2 {
				t.Fatalf("type %s appears %d times, cap is 2", typ, n)
			}
		}
	}
}

func TestDrawTasksExhaustion(t *testing.T) {
	// 1 per type across 3 types can never fill a draw of 4
	if _, err := DrawTasks(4, 1); err != ErrTaskPoolExhausted {
		t.Fatalf("want ErrTaskPoolExhausted, got %v", err)
	}

	// But a draw of 3 fits exactly
	tasks, err := DrawTasks(3, 1)
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	types := make(map[string]bool)
	for _, task := range tasks {
		types[task.Type] = true
	}
	if len(types) != 3 {
		t.Fatalf("want one task of each type, got types %v", types)
	}
}

func TestSettingsClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{"below range", Settings{TaskCount: 0, MaxSameType: 0}, Settings{TaskCount: 3, MaxSameType: 1}},
		{"above range", Settings{TaskCount: 99, MaxSameType: 99}, Settings{TaskCount: 5, MaxSameType: 5}},
		{"in range", Settings{TaskCount: 4, MaxSameType: 2}, Settings{TaskCount: 4, MaxSameType: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(); got != tt.want {
				t.Errorf("Clamp() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := (Settings{TaskCount: 4, MaxSameType: 1}).Validate(); err != ErrTaskPoolExhausted {
		t.Errorf("infeasible settings should fail up front, got %v", err)
	}
	if err := (Settings{TaskCount: 3, MaxSameType: 1}).Validate(); err != nil {
		t.Errorf("feasible settings rejected: %v", err)
	}
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("default settings rejected: %v", err)
	}
}

func TestTaskPoolShape(t *testing.T) {
	byType := make(map[string]int)
	ids := make(map[string]bool)
	for _, task := range TaskPool {
		byType[task.Type]++
		if ids[task.ID] {
			t.Fatalf("duplicate task id %s", task.ID)
		}
		ids[task.ID] = true
	}

	if len(byType) != NumTaskTypes {
		t.Fatalf("want %d task types, got %d", NumTaskTypes, len(byType))
	}
	for typ, n := range byType {
		if n != 5 {
			t.Errorf("type %s has %d tasks, want 5", typ, n)
		}
	}
}

package domain

import "math/rand"

// Task type constants
const (
	TaskTypeEconomy   = "economy"
	TaskTypeTeamfight = "teamfight"
	TaskTypeBehavior  = "behavior"
)

// NumTaskTypes is the number of distinct task types in the pool
const NumTaskTypes = 3

// Task is a single sabotage objective handed to the undercover
type Task struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// TaskPool is the fixed pool tasks are drawn from, five per type
var TaskPool = []Task{
	// Economy
	{ID: "eco-1", Type: TaskTypeEconomy, Text: "Steal a teammate's red or blue buff once"},
	{ID: "eco-2", Type: TaskTypeEconomy, Text: "Take an entire minion wave from someone else's lane by yourself"},
	{ID: "eco-3", Type: TaskTypeEconomy, Text: "Finish the match third or lower on your team in gold"},
	{ID: "eco-4", Type: TaskTypeEconomy, Text: "Steal at least two jungle buffs"},
	{ID: "eco-5", Type: TaskTypeEconomy, Text: "Sit out at least two objective fights your team starts"},

	// Teamfight
	{ID: "tf-1", Type: TaskTypeTeamfight, Text: "Arrive last to a key teamfight, twice"},
	{ID: "tf-2", Type: TaskTypeTeamfight, Text: "Hold your ultimate through at least two teamfights"},
	{ID: "tf-3", Type: TaskTypeTeamfight, Text: "Abandon the lowest-health teammate at least twice"},
	{ID: "tf-4", Type: TaskTypeTeamfight, Text: "Die at least once between minutes 9 and 11"},
	{ID: "tf-5", Type: TaskTypeTeamfight, Text: "Open one fight by landing your engage on the frontline or missing entirely"},

	// Behavior
	{ID: "act-1", Type: TaskTypeBehavior, Text: "Split-push instead of grouping, three times"},
	{ID: "act-2", Type: TaskTypeBehavior, Text: "Burn a summoner spell at spawn right as the match starts"},
	{ID: "act-3", Type: TaskTypeBehavior, Text: "Force a risky engage while behind in gold"},
	{ID: "act-4", Type: TaskTypeBehavior, Text: "Clear the wave instead of defending during one key tower siege"},
	{ID: "act-5", Type: TaskTypeBehavior, Text: "Ping a wrong signal that gets a teammate caught at least once"},
}

// Settings are the per-room task draw parameters, fixed at creation
type Settings struct {
	TaskCount   int `json:"taskCount"`
	MaxSameType int `json:"maxSameType"`
}

// DefaultSettings returns the default task draw parameters
func DefaultSettings() Settings {
	return Settings{
		TaskCount:   4,
		MaxSameType: 2,
	}
}

// Clamp forces the settings into their legal ranges
func (s Settings) Clamp() Settings {
	return Settings{
		TaskCount:   clamp(s.TaskCount, 3, 5),
		MaxSameType: clamp(s.MaxSameType, 1, 5),
	}
}

// Validate reports whether the pool can satisfy the settings at all.
// With maxSameType tasks allowed per type, at most NumTaskTypes*maxSameType
// tasks can ever be drawn; anything beyond that would exhaust the pool.
func (s Settings) Validate() error {
	if s.TaskCount < 1 || s.MaxSameType < 1 {
		return ErrInvalidSettings
	}
	if s.TaskCount > s.MaxSameType*NumTaskTypes {
		return ErrTaskPoolExhausted
	}
	return nil
}

// DrawTasks draws count tasks from the pool without replacement, never
// taking more than maxSameType tasks of one type. Returns
// ErrTaskPoolExhausted if the pool cannot fill the draw under that cap.
func DrawTasks(count, maxSameType int) ([]Task, error) {
	return drawTasks(TaskPool, count, maxSameType)
}

func drawTasks(pool []Task, count, maxSameType int) ([]Task, error) {
	shuffled := make([]Task, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	typeCount := make(map[string]int)
	picked := make([]Task, 0, count)

	for _, t := range shuffled {
		if typeCount[t.Type] >= maxSameType {
			continue
		}
		picked = append(picked, t)
		typeCount[t.Type]++
		if len(picked) == count {
			return picked, nil
		}
	}

	return nil, ErrTaskPoolExhausted
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

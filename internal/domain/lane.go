package domain

import "math/rand"

// LanePool is the standard five-player position set, used for display only
var LanePool = []string{"top", "jungle", "mid", "bot", "support"}

// shuffledLanes returns n lane labels in random order. With five players
// each label appears once; larger rooms cycle through the pool.
func shuffledLanes(n int) []string {
	lanes := make([]string, 0, n)
	for i := 0; len(lanes) < n; i++ {
		lanes = append(lanes, LanePool[i%len(LanePool)])
	}

	rand.Shuffle(len(lanes), func(i, j int) {
		lanes[i], lanes[j] = lanes[j], lanes[i]
	})

	return lanes
}

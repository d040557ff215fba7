package domain

import "fmt"

// TaskWinThreshold is how many completed tasks win the match for the
// undercover outright, regardless of anything else.
const TaskWinThreshold = 3

// MatchResult is the declared outcome of the underlying match
type MatchResult string

const (
	MatchWin  MatchResult = "win"
	MatchLose MatchResult = "lose"
)

// Vote is one player's ballot in same-device mode. A nil Choice is an
// abstain.
type Vote struct {
	Choice *int `json:"choice"`
}

// Tally is the deterministic reduction of a completed vote set
type Tally struct {
	Counts   []int `json:"counts"`
	Abstains int   `json:"abstains"`

	// VotedOut is the index of the player with the strictly highest
	// vote count, or nil when the tally is empty or tied at the top.
	VotedOut *int `json:"votedOut"`
}

// Verdict is the full resolution of a finished match
type Verdict struct {
	Tally          Tally  `json:"tally"`
	VotedOutName   string `json:"votedOutName,omitempty"`
	UndercoverWins bool   `json:"undercoverWins"`
	Text           string `json:"text"`
}

// CountVotes tallies a completed vote set. It fails with
// ErrIncompleteVotes until every player has a vote record; abstains are
// counted separately and never toward a candidate. Any tie at the top,
// even among more than two candidates, yields a nil VotedOut.
func CountVotes(numPlayers int, votes []Vote) (Tally, error) {
	if len(votes) != numPlayers {
		return Tally{}, ErrIncompleteVotes
	}

	tally := Tally{Counts: make([]int, numPlayers)}

	for _, v := range votes {
		if v.Choice == nil {
			tally.Abstains++
			continue
		}
		if *v.Choice < 0 || *v.Choice >= numPlayers {
			return Tally{}, ErrInvalidVote
		}
		tally.Counts[*v.Choice]++
	}

	max, maxIdx, tied := 0, -1, false
	for i, c := range tally.Counts {
		switch {
		case c > max:
			max, maxIdx, tied = c, i, false
		case c == max && c > 0:
			tied = true
		}
	}

	if max > 0 && !tied {
		tally.VotedOut = &maxIdx
	}

	return tally, nil
}

// Resolve reduces a completed vote set and a declared match result to a
// single verdict. Pure: re-derivable from its inputs alone. Priority
// order is fixed: a task win beats everything, then the match result,
// then whether the undercover escaped the vote.
func Resolve(players []string, votes []Vote, result MatchResult, undercoverIdx, tasksDone int) (Verdict, error) {
	if result != MatchWin && result != MatchLose {
		return Verdict{}, ErrInvalidResult
	}
	if undercoverIdx < 0 || undercoverIdx >= len(players) {
		return Verdict{}, ErrInvalidVote
	}

	tally, err := CountVotes(len(players), votes)
	if err != nil {
		return Verdict{}, err
	}

	verdict := Verdict{Tally: tally}
	if tally.VotedOut != nil {
		verdict.VotedOutName = players[*tally.VotedOut]
	}

	undercover := players[undercoverIdx]
	caught := tally.VotedOut != nil && *tally.VotedOut == undercoverIdx

	switch {
	case tasksDone >= TaskWinThreshold:
		verdict.UndercoverWins = true
		verdict.Text = fmt.Sprintf("undercover %s wins: %d tasks completed", undercover, tasksDone)
	case result == MatchWin:
		verdict.Text = "crew wins: the match was won"
	case !caught:
		verdict.UndercoverWins = true
		verdict.Text = fmt.Sprintf("undercover %s wins: match lost and the vote missed", undercover)
	default:
		verdict.Text = fmt.Sprintf("crew wins: undercover %s was voted out", undercover)
	}

	return verdict, nil
}

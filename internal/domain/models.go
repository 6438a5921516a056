package domain

import "time"

// Position is an x/y coordinate pair. Clue positions stay hidden until the
// clue is solved.
type Position [2]float64

// Clue is a sub-puzzle inside a round. Solving it reveals its position.
type Clue struct {
	ID       int64    `json:"id"`
	RoundNo  int      `json:"roundNo"`
	Question string   `json:"question"`
	Answer   string   `json:"-"`
	Position Position `json:"position"`
}

// Round is one stage of the hunt, identified by its sequence number and
// gated by a single answer. Clues keep their insertion order.
type Round struct {
	Number   int    `json:"number"`
	Question string `json:"question"`
	Answer   string `json:"-"`
	Clues    []Clue `json:"clues,omitempty"`
}

// CentrePoint is the arithmetic mean of the round's clue positions, or the
// origin when the round has no clues.
func (r Round) CentrePoint() Position {
	if len(r.Clues) == 0 {
		return Position{0, 0}
	}
	var x, y float64
	for _, c := range r.Clues {
		x += c.Position[0]
		y += c.Position[1]
	}
	n := float64(len(r.Clues))
	return Position{x / n, y / n}
}

// Player is the per-identity progress record. RoundNo, Score and the solved
// set only ever grow.
type Player struct {
	Email       string
	DisplayName string
	AvatarURL   string
	RoundNo     int
	Score       int
	SolvedClues []int64
	SubmitTime  time.Time
	IsStaff     bool
}

// HasSolved reports whether the clue is already in the player's solved set.
func (p *Player) HasSolved(clueID int64) bool {
	for _, id := range p.SolvedClues {
		if id == clueID {
			return true
		}
	}
	return false
}

// MarkSolved adds the clue to the solved set. Re-solving is a no-op.
func (p *Player) MarkSolved(clueID int64) {
	if p.HasSolved(clueID) {
		return
	}
	p.SolvedClues = append(p.SolvedClues, clueID)
}

// QuizWindow is the administrator-managed gate on play. Absence of a window
// record means play is unrestricted.
type QuizWindow struct {
	StartTime         time.Time
	EndTime           time.Time
	MaxQuestion       int
	LeaderboardFreeze bool
	LeaderboardHide   bool
}

// Identity is a verified profile returned by an identity provider.
type Identity struct {
	Email       string
	DisplayName string
	AvatarURL   string
}

// Standing is one leaderboard row.
type Standing struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"name"`
	Score       int    `json:"score"`
	AvatarURL   string `json:"image"`
}

// Standings is the ranked leaderboard view derived from non-staff players.
type Standings struct {
	Hidden    bool       `json:"hidden"`
	Entries   []Standing `json:"standings"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RoundView is the public shape of a player's current round.
type RoundView struct {
	Number   int      `json:"number"`
	Question string   `json:"question"`
	Centre   Position `json:"centre"`
}

// ClueStatus reports a clue to the player; the position is present only once
// the clue is solved.
type ClueStatus struct {
	ID       int64     `json:"id"`
	Question string    `json:"question"`
	Solved   bool      `json:"solved"`
	Position *Position `json:"position,omitempty"`
}

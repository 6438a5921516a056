package domain

import "testing"

func TestCentrePointIsMeanOfCluePositions(t *testing.T) {
	round := Round{
		Number: 1,
		Clues: []Clue{
			{ID: 1, Position: Position{10, 20}},
			{ID: 2, Position: Position{30, 40}},
			{ID: 3, Position: Position{50, 60}},
		},
	}
	centre := round.CentrePoint()
	if centre != (Position{30, 40}) {
		t.Fatalf("expected centre [30 40], got %v", centre)
	}
}

func TestCentrePointOfEmptyRoundIsOrigin(t *testing.T) {
	centre := Round{Number: 1}.CentrePoint()
	if centre != (Position{0, 0}) {
		t.Fatalf("expected origin, got %v", centre)
	}
}

func TestMarkSolvedIsIdempotent(t *testing.T) {
	p := Player{}
	p.MarkSolved(7)
	p.MarkSolved(7)
	p.MarkSolved(9)
	if len(p.SolvedClues) != 2 {
		t.Fatalf("expected 2 solved clues, got %v", p.SolvedClues)
	}
	if !p.HasSolved(7) || !p.HasSolved(9) || p.HasSolved(8) {
		t.Fatalf("solved set wrong: %v", p.SolvedClues)
	}
}

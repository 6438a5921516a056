package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fortress-hunt-service/internal/app"
	"fortress-hunt-service/internal/domain"
	"fortress-hunt-service/internal/infra/memory"
)

type fixture struct {
	players *memory.PlayerStore
	windows *memory.WindowStore
	board   *app.Leaderboard
	engine  *app.Engine
}

func newFixture() *fixture {
	players := memory.NewPlayerStore()
	windows := memory.NewWindowStore()
	hunt := memory.NewHuntRepository(memory.NewStaticHuntLoader(sampleRounds()), 5*time.Minute)
	policy := app.NewWindowPolicy(windows)
	board := app.NewLeaderboard(players, policy)
	engine := app.NewEngine(players, hunt, policy, board)
	return &fixture{players: players, windows: windows, board: board, engine: engine}
}

func sampleRounds() []domain.Round {
	return []domain.Round{
		{
			Number:   1,
			Question: "Where does the journey begin?",
			Answer:   "library",
			Clues: []domain.Clue{
				{ID: 1, RoundNo: 1, Question: "Shelves of stories", Answer: "books", Position: domain.Position{10, 20}},
				{ID: 2, RoundNo: 1, Question: "Keeper of silence", Answer: "librarian", Position: domain.Position{30, 40}},
			},
		},
		{
			Number:   2,
			Question: "Follow the water",
			Answer:   "fountain",
			Clues: []domain.Clue{
				{ID: 3, RoundNo: 2, Question: "It rises and falls", Answer: "water", Position: domain.Position{50, 60}},
			},
		},
	}
}

func (f *fixture) addPlayer(t *testing.T, email string, roundNo int) {
	t.Helper()
	err := f.players.Create(context.Background(), &domain.Player{
		Email:       email,
		DisplayName: email,
		RoundNo:     roundNo,
		SolvedClues: []int64{},
	})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
}

func TestCorrectAnswerAdvancesAndScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)

	result, err := f.engine.SubmitRoundAnswer(ctx, "alice@example.com", "  Library ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.RoundNo != 2 || result.Score != 10 {
		t.Fatalf("expected round 2 score 10, got %+v", result)
	}

	player, err := f.players.Get(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if player.SubmitTime.IsZero() {
		t.Fatalf("expected submit time to be recorded")
	}
}

func TestWrongAnswerLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)

	_, err := f.engine.SubmitRoundAnswer(ctx, "alice@example.com", "fountain")
	if !errors.Is(err, domain.ErrWrongAnswer) {
		t.Fatalf("expected wrong answer, got %v", err)
	}

	player, _ := f.players.Get(ctx, "alice@example.com")
	if player.RoundNo != 1 || player.Score != 0 || !player.SubmitTime.IsZero() {
		t.Fatalf("expected untouched player, got %+v", player)
	}
}

func TestGetCurrentRoundExposesCentre(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)

	view, err := f.engine.GetCurrentRound(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get round: %v", err)
	}
	if view.Number != 1 {
		t.Fatalf("expected round 1, got %d", view.Number)
	}
	if view.Centre != (domain.Position{20, 30}) {
		t.Fatalf("expected centre [20 30], got %v", view.Centre)
	}
}

func TestFinishedAfterLastRound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 3)

	_, err := f.engine.GetCurrentRound(ctx, "alice@example.com")
	if !errors.Is(err, domain.ErrQuizFinished) {
		t.Fatalf("expected finished, got %v", err)
	}
}

func TestFinishedPastMaxQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 2)
	f.windows.Set(domain.QuizWindow{
		StartTime:   time.Now().Add(-time.Hour),
		EndTime:     time.Now().Add(time.Hour),
		MaxQuestion: 1,
	})

	_, err := f.engine.GetCurrentRound(ctx, "alice@example.com")
	if !errors.Is(err, domain.ErrQuizFinished) {
		t.Fatalf("expected finished, got %v", err)
	}
}

func TestClosedWindowBlocksPlay(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)
	f.windows.Set(domain.QuizWindow{
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(2 * time.Hour),
		MaxQuestion: 10,
	})

	if _, err := f.engine.GetCurrentRound(ctx, "alice@example.com"); !errors.Is(err, domain.ErrQuizInactive) {
		t.Fatalf("expected inactive on read, got %v", err)
	}
	if _, err := f.engine.SubmitRoundAnswer(ctx, "alice@example.com", "library"); !errors.Is(err, domain.ErrQuizInactive) {
		t.Fatalf("expected inactive on submit, got %v", err)
	}
}

func TestStaffBypassesWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	err := f.players.Create(ctx, &domain.Player{
		Email: "admin@example.com", DisplayName: "Admin", RoundNo: 1, SolvedClues: []int64{}, IsStaff: true,
	})
	if err != nil {
		t.Fatalf("create staff: %v", err)
	}
	f.windows.Set(domain.QuizWindow{
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(2 * time.Hour),
		MaxQuestion: 10,
	})

	result, err := f.engine.SubmitRoundAnswer(ctx, "admin@example.com", "library")
	if err != nil {
		t.Fatalf("expected staff to play through closed window, got %v", err)
	}
	if result.RoundNo != 2 {
		t.Fatalf("expected round 2, got %+v", result)
	}
}

type failingWindowStore struct{}

func (failingWindowStore) Get(context.Context) (domain.QuizWindow, bool, error) {
	return domain.QuizWindow{}, false, errors.New("store down")
}

func TestWindowLookupFailureAllowsPlay(t *testing.T) {
	ctx := context.Background()
	players := memory.NewPlayerStore()
	hunt := memory.NewHuntRepository(memory.NewStaticHuntLoader(sampleRounds()), 5*time.Minute)
	policy := app.NewWindowPolicy(failingWindowStore{})
	board := app.NewLeaderboard(players, policy)
	engine := app.NewEngine(players, hunt, policy, board)

	err := players.Create(ctx, &domain.Player{Email: "alice@example.com", DisplayName: "Alice", RoundNo: 1, SolvedClues: []int64{}})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if _, err := engine.SubmitRoundAnswer(ctx, "alice@example.com", "library"); err != nil {
		t.Fatalf("expected fail-open play, got %v", err)
	}
}

func TestFreezeSuppressesScoreButAdvancesRound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)
	f.windows.Set(domain.QuizWindow{
		StartTime:         time.Now().Add(-time.Hour),
		EndTime:           time.Now().Add(time.Hour),
		MaxQuestion:       10,
		LeaderboardFreeze: true,
	})

	result, err := f.engine.SubmitRoundAnswer(ctx, "alice@example.com", "library")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.RoundNo != 2 || result.Score != 0 {
		t.Fatalf("expected advance without score, got %+v", result)
	}

	player, _ := f.players.Get(ctx, "alice@example.com")
	if player.SubmitTime.IsZero() {
		t.Fatalf("expected submit time recorded during freeze")
	}
}

func TestConcurrentSubmitsCreditOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.SubmitRoundAnswer(ctx, "alice@example.com", "library")
		}(i)
	}
	wg.Wait()

	var wins, rejects int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrWrongAnswer):
			rejects++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || rejects != 1 {
		t.Fatalf("expected exactly one credited submit, got wins=%d rejects=%d", wins, rejects)
	}

	player, _ := f.players.Get(ctx, "alice@example.com")
	if player.RoundNo != 2 || player.Score != 10 {
		t.Fatalf("expected round 2 score 10, got %+v", player)
	}
}

func TestClueFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)

	clues, err := f.engine.ListClues(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("list clues: %v", err)
	}
	if len(clues) != 2 || clues[0].ID != 1 || clues[1].ID != 2 {
		t.Fatalf("expected clues 1,2 in order, got %+v", clues)
	}
	for _, c := range clues {
		if c.Solved || c.Position != nil {
			t.Fatalf("expected unsolved clue without position, got %+v", c)
		}
	}

	if _, err := f.engine.SubmitClueAnswer(ctx, "alice@example.com", 1, "pebbles"); !errors.Is(err, domain.ErrWrongAnswer) {
		t.Fatalf("expected wrong answer, got %v", err)
	}

	pos, err := f.engine.SubmitClueAnswer(ctx, "alice@example.com", 1, "Books")
	if err != nil {
		t.Fatalf("solve clue: %v", err)
	}
	if pos != (domain.Position{10, 20}) {
		t.Fatalf("expected position [10 20], got %v", pos)
	}

	// Re-solving is a no-op success and never duplicates the solved set.
	if _, err := f.engine.SubmitClueAnswer(ctx, "alice@example.com", 1, "books"); err != nil {
		t.Fatalf("re-solve clue: %v", err)
	}

	player, _ := f.players.Get(ctx, "alice@example.com")
	if len(player.SolvedClues) != 1 {
		t.Fatalf("expected single solved clue, got %v", player.SolvedClues)
	}
	if player.Score != 0 {
		t.Fatalf("clues must not award score, got %d", player.Score)
	}

	clues, _ = f.engine.ListClues(ctx, "alice@example.com")
	if !clues[0].Solved || clues[0].Position == nil {
		t.Fatalf("expected solved clue with position, got %+v", clues[0])
	}
	if clues[1].Solved || clues[1].Position != nil {
		t.Fatalf("expected second clue untouched, got %+v", clues[1])
	}
}

func TestSubmitUnknownClue(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addPlayer(t, "alice@example.com", 1)

	_, err := f.engine.SubmitClueAnswer(ctx, "alice@example.com", 99, "anything")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitForUnknownPlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.engine.SubmitRoundAnswer(ctx, "ghost@example.com", "library")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

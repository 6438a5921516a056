package http

import (
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fortress-hunt-service/internal/app"
	"fortress-hunt-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Server wires the progression engine and its collaborators into HTTP
// handlers. Transport stays thin: it authenticates, decodes, delegates, and
// maps outcomes to status codes.
type Server struct {
	engine       *app.Engine
	board        *app.Leaderboard
	registrar    *app.Registrar
	tokens       app.TokenIssuer
	exportSecret string
}

func NewServer(engine *app.Engine, board *app.Leaderboard, registrar *app.Registrar, tokens app.TokenIssuer, exportSecret string) *Server {
	return &Server{
		engine:       engine,
		board:        board,
		registrar:    registrar,
		tokens:       tokens,
		exportSecret: exportSecret,
	}
}

// Router builds the route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Get("/api/leaderboard", s.handleLeaderboard)
	r.Get("/ws/standings", s.handleStandingsStream)
	r.Get("/admin/leaderboard.csv", s.handleExportCSV)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/api/round", s.handleGetRound)
		r.Post("/api/round/answer", s.handleRoundAnswer)
		r.Get("/api/clues", s.handleListClues)
		r.Post("/api/clue/answer", s.handleClueAnswer)
		r.Get("/api/me", s.handleMe)
	})

	return r
}

type ctxKey int

const ctxKeyEmail ctxKey = iota

// authMiddleware resolves the bearer token to an identity and stores the
// email in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		email, err := s.tokens.Identity(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyEmail, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func emailFrom(r *http.Request) string {
	email, _ := r.Context().Value(ctxKeyEmail).(string)
	return email
}

type credentialRequest struct {
	Provider   string `json:"provider"`
	Credential string `json:"credential"`
}

type authResponse struct {
	Token  string        `json:"token"`
	Player playerProfile `json:"user"`
}

type playerProfile struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"image"`
	RoundNo     int    `json:"roundNo"`
	Score       int    `json:"score"`
}

func profileOf(p domain.Player) playerProfile {
	return playerProfile{
		Email:       p.Email,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		RoundNo:     p.RoundNo,
		Score:       p.Score,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	player, token, err := s.registrar.Register(r.Context(), req.Provider, req.Credential)
	if err != nil {
		slog.Warn("registration failed", "provider", req.Provider, "error", err)
		writeError(w, http.StatusUnauthorized, "identity verification failed")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, Player: profileOf(player)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	player, token, err := s.registrar.Login(r.Context(), req.Provider, req.Credential)
	if err != nil {
		if errors.Is(err, domain.ErrNotRegistered) {
			writeError(w, http.StatusUnauthorized, "not registered")
			return
		}
		slog.Warn("login failed", "provider", req.Provider, "error", err)
		writeError(w, http.StatusUnauthorized, "identity verification failed")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, Player: profileOf(player)})
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.GetCurrentRound(r.Context(), emailFrom(r))
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleRoundAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.engine.SubmitRoundAnswer(r.Context(), emailFrom(r), req.Answer)
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListClues(w http.ResponseWriter, r *http.Request) {
	clues, err := s.engine.ListClues(r.Context(), emailFrom(r))
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clues": clues})
}

type clueAnswerRequest struct {
	ClueID int64  `json:"clueId"`
	Answer string `json:"answer"`
}

func (s *Server) handleClueAnswer(w http.ResponseWriter, r *http.Request) {
	var req clueAnswerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	position, err := s.engine.SubmitClueAnswer(r.Context(), emailFrom(r), req.ClueID, req.Answer)
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"position": position})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	standings, err := s.board.Standings(r.Context())
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email := emailFrom(r)
	rank, err := s.board.Rank(r.Context(), email)
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	player, err := s.engine.Player(r.Context(), email)
	if err != nil {
		s.writeOutcome(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":  player.DisplayName,
		"email": player.Email,
		"score": player.Score,
		"rank":  rank,
	})
}

// handleExportCSV streams the full un-hidden ordering, emails included,
// behind the shared export secret.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if s.exportSecret == "" || r.URL.Query().Get("password") != s.exportSecret {
		writeError(w, http.StatusForbidden, "unauthorized")
		return
	}
	rows, err := s.board.ExportRows(r.Context())
	if err != nil {
		s.writeOutcome(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboards.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Name", "Email", "Score"})
	for _, row := range rows {
		_ = cw.Write([]string{row.DisplayName, row.Email, strconv.Itoa(row.Score)})
	}
	cw.Flush()
}

// writeOutcome maps engine outcomes to HTTP statuses. Anything unexpected
// becomes a generic 500 without leaking internals.
func (s *Server) writeOutcome(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizInactive):
		writeError(w, http.StatusGone, "quiz not active")
	case errors.Is(err, domain.ErrQuizFinished):
		writeJSON(w, http.StatusGone, map[string]any{"message": "Finished!", "finished": true})
	case errors.Is(err, domain.ErrWrongAnswer):
		writeError(w, http.StatusUnprocessableEntity, "wrong answer")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not available")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "not available")
	}
}

package domain

import "errors"

var (
	// ErrQuizInactive is returned when the quiz window denies play.
	ErrQuizInactive = errors.New("quiz not active")
	// ErrQuizFinished is returned once a player has passed the final round.
	ErrQuizFinished = errors.New("quiz finished")
	// ErrNotFound indicates a referenced round, clue or player is absent.
	ErrNotFound = errors.New("not found")
	// ErrWrongAnswer indicates the submitted answer did not match.
	ErrWrongAnswer = errors.New("wrong answer")
	// ErrNotRegistered is returned on login for an unknown identity.
	ErrNotRegistered = errors.New("identity not registered")
)

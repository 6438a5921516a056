package postgres

import (
	"time"

	"fortress-hunt-service/internal/domain"
	"github.com/uptrace/bun"
)

type playerRecord struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	Email       string    `bun:"email,pk"`
	DisplayName string    `bun:"display_name,notnull"`
	AvatarURL   string    `bun:"avatar_url"`
	RoundNo     int       `bun:"round_no,notnull"`
	Score       int       `bun:"score,notnull,default:0"`
	SolvedClues []int64   `bun:"solved_clues,type:jsonb"`
	SubmitTime  time.Time `bun:"submit_time,nullzero"`
	IsStaff     bool      `bun:"is_staff,notnull,default:false"`
}

func (r *playerRecord) toDomain() domain.Player {
	return domain.Player{
		Email:       r.Email,
		DisplayName: r.DisplayName,
		AvatarURL:   r.AvatarURL,
		RoundNo:     r.RoundNo,
		Score:       r.Score,
		SolvedClues: append([]int64(nil), r.SolvedClues...),
		SubmitTime:  r.SubmitTime,
		IsStaff:     r.IsStaff,
	}
}

func fromDomain(p domain.Player) playerRecord {
	return playerRecord{
		Email:       p.Email,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		RoundNo:     p.RoundNo,
		Score:       p.Score,
		SolvedClues: append([]int64{}, p.SolvedClues...),
		SubmitTime:  p.SubmitTime,
		IsStaff:     p.IsStaff,
	}
}

type windowRecord struct {
	bun.BaseModel `bun:"table:quiz_window,alias:w"`

	ID                int       `bun:"id,pk"`
	StartTime         time.Time `bun:"start_time,notnull"`
	EndTime           time.Time `bun:"end_time,notnull"`
	MaxQuestion       int       `bun:"max_question,notnull"`
	LeaderboardFreeze bool      `bun:"leaderboard_freeze,notnull,default:false"`
	LeaderboardHide   bool      `bun:"leaderboard_hide,notnull,default:false"`
}

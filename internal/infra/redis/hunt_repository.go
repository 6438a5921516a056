package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"fortress-hunt-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// HuntLoader fetches the full hunt content from a backing store.
type HuntLoader interface {
	LoadRounds(ctx context.Context) ([]domain.Round, error)
}

const (
	roundKeyPrefix = "hunt:round:"
	clueKeyPrefix  = "hunt:clue:"
	firstRoundKey  = "hunt:first"
)

// roundRecord is the cached wire form of a round. The expected answers are
// cached alongside because answer checks happen on every submission.
type roundRecord struct {
	Number   int          `json:"number"`
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Clues    []clueRecord `json:"clues"`
}

type clueRecord struct {
	ID       int64           `json:"id"`
	RoundNo  int             `json:"roundNo"`
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Position domain.Position `json:"position"`
}

// HuntRepository caches rounds and clues in Redis as JSON values and falls
// back to the loader on a miss, collapsing concurrent misses with
// singleflight.
type HuntRepository struct {
	client *redis.Client
	loader HuntLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewHuntRepository(client *redis.Client, loader HuntLoader, ttl time.Duration) *HuntRepository {
	return &HuntRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *HuntRepository) Round(ctx context.Context, number int) (domain.Round, error) {
	raw, err := r.client.Get(ctx, roundKeyPrefix+strconv.Itoa(number)).Result()
	if err == nil {
		return decodeRound(raw)
	}

	if err := r.fill(ctx); err != nil {
		return domain.Round{}, err
	}

	raw, err = r.client.Get(ctx, roundKeyPrefix+strconv.Itoa(number)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Round{}, domain.ErrNotFound
		}
		return domain.Round{}, err
	}
	return decodeRound(raw)
}

func (r *HuntRepository) Clue(ctx context.Context, id int64) (domain.Clue, error) {
	raw, err := r.client.Get(ctx, clueKeyPrefix+strconv.FormatInt(id, 10)).Result()
	if err == nil {
		return decodeClue(raw)
	}

	if err := r.fill(ctx); err != nil {
		return domain.Clue{}, err
	}

	raw, err = r.client.Get(ctx, clueKeyPrefix+strconv.FormatInt(id, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Clue{}, domain.ErrNotFound
		}
		return domain.Clue{}, err
	}
	return decodeClue(raw)
}

func (r *HuntRepository) FirstRound(ctx context.Context) (int, error) {
	raw, err := r.client.Get(ctx, firstRoundKey).Result()
	if err == nil {
		return strconv.Atoi(raw)
	}

	if err := r.fill(ctx); err != nil {
		return 0, err
	}

	raw, err = r.client.Get(ctx, firstRoundKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return strconv.Atoi(raw)
}

// fill loads the whole hunt from the backing store and writes every round
// and clue into the cache in one pipeline.
func (r *HuntRepository) fill(ctx context.Context) error {
	_, err, _ := r.sf.Do("hunt", func() (interface{}, error) {
		rounds, err := r.loader.LoadRounds(ctx)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		first := 0
		for i, round := range rounds {
			if i == 0 || round.Number < first {
				first = round.Number
			}
			data, err := json.Marshal(encodeRound(round))
			if err != nil {
				return nil, err
			}
			pipe.Set(ctx, roundKeyPrefix+strconv.Itoa(round.Number), data, ttl)
			for _, clue := range round.Clues {
				cdata, err := json.Marshal(encodeClue(clue))
				if err != nil {
					return nil, err
				}
				pipe.Set(ctx, clueKeyPrefix+strconv.FormatInt(clue.ID, 10), cdata, ttl)
			}
		}
		if len(rounds) > 0 {
			pipe.Set(ctx, firstRoundKey, strconv.Itoa(first), ttl)
		}
		_, err = pipe.Exec(ctx)
		return nil, err
	})
	return err
}

func encodeRound(round domain.Round) roundRecord {
	rec := roundRecord{
		Number:   round.Number,
		Question: round.Question,
		Answer:   round.Answer,
		Clues:    make([]clueRecord, 0, len(round.Clues)),
	}
	for _, clue := range round.Clues {
		rec.Clues = append(rec.Clues, encodeClue(clue))
	}
	return rec
}

func encodeClue(clue domain.Clue) clueRecord {
	return clueRecord{
		ID:       clue.ID,
		RoundNo:  clue.RoundNo,
		Question: clue.Question,
		Answer:   clue.Answer,
		Position: clue.Position,
	}
}

func decodeRound(raw string) (domain.Round, error) {
	var rec roundRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.Round{}, err
	}
	round := domain.Round{
		Number:   rec.Number,
		Question: rec.Question,
		Answer:   rec.Answer,
		Clues:    make([]domain.Clue, 0, len(rec.Clues)),
	}
	for _, c := range rec.Clues {
		round.Clues = append(round.Clues, domain.Clue{
			ID: c.ID, RoundNo: c.RoundNo, Question: c.Question, Answer: c.Answer, Position: c.Position,
		})
	}
	return round, nil
}

func decodeClue(raw string) (domain.Clue, error) {
	var rec clueRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.Clue{}, err
	}
	return domain.Clue{
		ID: rec.ID, RoundNo: rec.RoundNo, Question: rec.Question, Answer: rec.Answer, Position: rec.Position,
	}, nil
}

func (r *HuntRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"quiz-room-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ThemeLoader fetches theme questions from a backing store (files,
// Postgres, etc).
type ThemeLoader interface {
	LoadTheme(ctx context.Context, name string) ([]domain.Question, error)
}

// ThemeRepository caches theme question sequences in Redis and falls
// back to a loader on cache miss.
// Questions are stored as: SET theme:{name}:questions {json array}
type ThemeRepository struct {
	client *redis.Client
	loader ThemeLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewThemeRepository(client *redis.Client, loader ThemeLoader, ttl time.Duration) *ThemeRepository {
	return &ThemeRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ThemeRepository) GetTheme(ctx context.Context, name string) ([]domain.Question, error) {
	key := r.questionsKey(name)

	raw, err := r.client.Get(ctx, key).Result()
	if err == nil && raw != "" {
		return decodeQuestions([]byte(raw))
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := r.client.Get(ctx, key).Result()
		if err == nil && raw != "" {
			return decodeQuestions([]byte(raw))
		}

		questions, err := r.loader.LoadTheme(ctx, name)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *ThemeRepository) questionsKey(name string) string {
	return "theme:" + name + ":questions"
}

func decodeQuestions(raw []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *ThemeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

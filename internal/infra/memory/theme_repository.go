package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiz-room-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ThemeLoader fetches theme questions from a backing store (files,
// Postgres, etc).
type ThemeLoader interface {
	LoadTheme(ctx context.Context, name string) ([]domain.Question, error)
}

// ThemeRepository caches theme question sequences with TTL to avoid
// repeated backing-store hits on every startGame.
type ThemeRepository struct {
	loader ThemeLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedTheme
}

type cachedTheme struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewThemeRepository(loader ThemeLoader, ttl time.Duration) *ThemeRepository {
	return &ThemeRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTheme),
	}
}

func (r *ThemeRepository) GetTheme(ctx context.Context, name string) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadTheme(ctx, name)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[name] = cachedTheme{
			questions: questions,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// StaticThemeLoader is a simple loader backed by an in-memory map
// (useful for tests/demos).
type StaticThemeLoader struct {
	themes map[string][]domain.Question
}

func NewStaticThemeLoader(themes map[string][]domain.Question) *StaticThemeLoader {
	return &StaticThemeLoader{themes: themes}
}

func (l *StaticThemeLoader) LoadTheme(_ context.Context, name string) ([]domain.Question, error) {
	if questions, ok := l.themes[name]; ok {
		return questions, nil
	}
	return nil, domain.ErrThemeNotFound
}

func (r *ThemeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

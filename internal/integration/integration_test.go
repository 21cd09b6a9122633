package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/domain"
	pgloader "quiz-room-service/internal/infra/postgres"
	pgmigrations "quiz-room-service/internal/infra/postgres/migrations"
	infraredis "quiz-room-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestGameRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedTheme(t, ctx, pgURL, "capitals", sampleTheme())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewThemeLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	themeRepo := infraredis.NewThemeRepository(redisClient, loader, 5*time.Minute)
	roomStore := infraredis.NewRoomStore(redisClient, 5*time.Minute)
	service := app.NewRoomService(roomStore, themeRepo)

	sub := service.Create(ctx, "R1", "Alice")
	defer sub.Cancel()
	subBob := service.Join(ctx, "R1", "Bob")
	defer subBob.Cancel()

	if err := service.StartGame(ctx, "R1", "Alice", "capitals", 100, 30); err != nil {
		t.Fatalf("start game: %v", err)
	}

	service.SubmitAnswer(ctx, "R1", "Alice", 0, "paris")
	service.SubmitAnswer(ctx, "R1", "Bob", 0, "Lyon")

	deadline := time.After(5 * time.Second)
	var scored []domain.Participant
	for scored == nil {
		select {
		case event := <-sub.Events:
			if event.Type == domain.EventScoreUpdate {
				scored = event.Payload.([]domain.Participant)
			}
		case <-deadline:
			t.Fatalf("no score update received")
		}
	}
	scores := make(map[domain.Identity]int)
	for _, p := range scored {
		scores[p.Name] = p.Score
	}
	if scores["Alice"] != 10 || scores["Bob"] != 0 {
		t.Fatalf("unexpected scores: %v", scores)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedTheme(t *testing.T, ctx context.Context, dsn, name string, questions []domain.Question) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal theme: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO themes (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, name, string(data)); err != nil {
		t.Fatalf("insert theme: %v", err)
	}
}

func sampleTheme() []domain.Question {
	return []domain.Question{
		{Prompt: "Capital of France?", Answer: domain.Exact("Paris")},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}

package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/auth"
	"quiz-room-service/internal/config"
	"quiz-room-service/internal/domain"
	fileloader "quiz-room-service/internal/infra/file"
	"quiz-room-service/internal/infra/memory"
	pgloader "quiz-room-service/internal/infra/postgres"
	redisinfra "quiz-room-service/internal/infra/redis"
	transport "quiz-room-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.ThemeLoader = memory.NewStaticThemeLoader(sampleThemes())
	if pool != nil {
		loader = pgloader.NewThemeLoader(pool)
	} else if cfg.Themes.Dir != "" {
		loader = fileloader.NewThemeLoader(cfg.Themes.Dir)
	}

	themeTTL := config.TTLDuration(cfg.Themes.TTL, 10*time.Minute)
	var themeRepo app.ThemeRepository
	if redisClient != nil {
		themeRepo = redisinfra.NewThemeRepository(redisClient, loader, themeTTL)
	} else {
		themeRepo = memory.NewThemeRepository(loader, themeTTL)
	}

	var store app.RoomRepository
	if redisClient != nil {
		store = redisinfra.NewRoomStore(redisClient, redisTTL)
	} else {
		store = memory.NewRoomStore()
	}
	service := app.NewRoomService(store, themeRepo)

	var verifier auth.IdentityVerifier = auth.InsecureVerifier{}
	if cfg.Auth.Secret != "" {
		verifier = auth.NewJWTVerifier(cfg.Auth.Secret)
	} else {
		log.Printf("auth secret not configured, accepting unsigned identities (dev mode)")
	}
	wsHandler := transport.NewWSHandler(service, verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz room service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleThemes provides a minimal question pack; point cfg.Themes.Dir or
// Postgres at real packs in production.
func sampleThemes() map[string][]domain.Question {
	return map[string][]domain.Question{
		"minecraft": {
			{Prompt: "Which mob explodes when close to the player?", Answer: domain.Exact("Creeper"), Points: 10},
			{Prompt: "What do you need to enter the Nether?", Answer: domain.OneOf("Obsidian portal", "Nether portal"), Points: 10},
			{Prompt: "Which ore is needed to craft a beacon?", Answer: domain.Exact("Netherite"), Points: 20},
		},
	}
}

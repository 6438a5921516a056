package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fortress-hunt-service/internal/app"
	"fortress-hunt-service/internal/config"
	"fortress-hunt-service/internal/domain"
	"fortress-hunt-service/internal/identity"
	"fortress-hunt-service/internal/infra/memory"
	pgstore "fortress-hunt-service/internal/infra/postgres"
	redisstore "fortress-hunt-service/internal/infra/redis"
	transport "fortress-hunt-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the hunt server",
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
	tokenTTL := config.TTLDuration(cfg.Redis.TokenTTL, 0)
	cacheTTL := config.TTLDuration(cfg.Hunt.CacheTTL, 10*time.Minute)

	var (
		players app.PlayerStore
		windows app.WindowStore
		loader  memory.HuntLoader = memory.NewStaticHuntLoader(sampleHunt())
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		players = pgstore.NewPlayerStore(db)
		windows = pgstore.NewWindowStore(db)
		loader = pgstore.NewHuntLoader(pool)
	} else {
		players = memory.NewPlayerStore()
		windows = memory.NewWindowStore()
	}

	var hunt app.HuntRepository
	if redisClient != nil {
		hunt = redisstore.NewHuntRepository(redisClient, loader, cacheTTL)
	} else {
		hunt = memory.NewHuntRepository(loader, cacheTTL)
	}

	var tokens app.TokenIssuer
	if redisClient != nil {
		tokens = redisstore.NewTokenStore(redisClient, tokenTTL)
	} else {
		tokens = memory.NewTokenStore()
	}

	verifier := identity.NewVerifier(identity.Config{
		GoogleClientID:     cfg.Auth.GoogleClientID,
		GithubClientID:     cfg.Auth.GithubClientID,
		GithubClientSecret: cfg.Auth.GithubClientSecret,
	})

	policy := app.NewWindowPolicy(windows)
	board := app.NewLeaderboard(players, policy)
	engine := app.NewEngine(players, hunt, policy, board)
	registrar := app.NewRegistrar(players, hunt, verifier, tokens)
	srv := transport.NewServer(engine, board, registrar, tokens, cfg.Export.Secret)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting hunt service on :%s", finalPort)
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

// sampleHunt provides a minimal hunt for running without a database.
func sampleHunt() []domain.Round {
	return []domain.Round{
		{
			Number:   1,
			Question: "Where does the journey begin?",
			Answer:   "library",
			Clues: []domain.Clue{
				{ID: 1, RoundNo: 1, Question: "Shelves of stories", Answer: "books", Position: domain.Position{12.97, 77.59}},
				{ID: 2, RoundNo: 1, Question: "Keeper of silence", Answer: "librarian", Position: domain.Position{12.98, 77.60}},
			},
		},
		{
			Number:   2,
			Question: "Follow the water",
			Answer:   "fountain",
			Clues: []domain.Clue{
				{ID: 3, RoundNo: 2, Question: "It rises and falls but never leaves", Answer: "water", Position: domain.Position{12.99, 77.61}},
			},
		},
	}
}

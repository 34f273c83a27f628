package container

import (
	"context"
	"fmt"

	"maximally-judging/internal/config"
	"maximally-judging/internal/repository"
	"maximally-judging/internal/service"
	"maximally-judging/internal/service/auth"
	"maximally-judging/internal/service/mailer"
	"maximally-judging/pkg/database"
	"maximally-judging/pkg/logger"
	"maximally-judging/pkg/redis"
)

// Container wires configuration, storage, repositories, and services
// together for the HTTP layer.
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client

	HackathonRepo  repository.HackathonRepository
	JudgeRepo      repository.JudgeRepository
	SubmissionRepo repository.SubmissionRepository
	ScoreRepo      repository.ScoreRepository
	WinnerRepo     repository.WinnerRepository

	Auth       service.AuthService
	Judging    *service.JudgingService
	Progress   *service.ProgressService
	Winners    *service.WinnerService
	Moderation *service.ModerationService
}

// New builds the dependency container: database (required), Redis
// (optional, degrades to uncached), mailer (optional), repositories, and
// services.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	var mail service.Mailer
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResendMailer(cfg.ResendAPIKey, cfg.ReminderFromEmail, log)
	} else {
		log.Info("Resend API key not configured, judge reminders disabled")
	}

	hackathonRepo := repository.NewHackathonRepository(db)
	judgeRepo := repository.NewJudgeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)

	return &Container{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		RedisClient: redisClient,

		HackathonRepo:  hackathonRepo,
		JudgeRepo:      judgeRepo,
		SubmissionRepo: submissionRepo,
		ScoreRepo:      scoreRepo,
		WinnerRepo:     winnerRepo,

		Auth:       auth.NewService(cfg.SupabaseJWTSecret, log),
		Judging:    service.NewJudgingService(judgeRepo, submissionRepo, scoreRepo, hackathonRepo, redisClient, log),
		Progress:   service.NewProgressService(judgeRepo, submissionRepo, scoreRepo, redisClient, mail, log),
		Winners:    service.NewWinnerService(winnerRepo, submissionRepo, scoreRepo, redisClient, log),
		Moderation: service.NewModerationService(submissionRepo, log),
	}, nil
}

// Close releases the container's connections.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Error("Failed to close Redis connection")
			firstErr = err
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	return firstErr
}

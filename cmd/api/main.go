package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	_ "github.com/studentgov/election-api/api/swagger"
	"github.com/studentgov/election-api/internal/handler"
	"github.com/studentgov/election-api/internal/repository"
	"github.com/studentgov/election-api/internal/router"
	"github.com/studentgov/election-api/internal/service"
	"github.com/studentgov/election-api/pkg/cache"
	"github.com/studentgov/election-api/pkg/config"
	"github.com/studentgov/election-api/pkg/database"
	"github.com/studentgov/election-api/pkg/jobs"
	"github.com/studentgov/election-api/pkg/logger"
	"github.com/studentgov/election-api/pkg/mailer"
	"github.com/studentgov/election-api/pkg/storage"
)

// @title Student Election API
// @version 1.0.0
// @description Nomination, endorsement and manifesto backend for student body elections
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type otpMailPayload struct {
	Email string
	Code  string
}

// queueMailer bridges the auth service to the background mail queue.
type queueMailer struct {
	queue *jobs.Queue
}

func (m *queueMailer) EnqueueOTP(email, code string) error {
	return m.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "otp_mail",
		Payload: otpMailPayload{Email: email, Code: code},
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	blobs, err := storage.NewLocalBlobStore(cfg.Storage.BaseDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	smtpMailer := mailer.New(cfg.SMTP, logr)
	mailQueue := jobs.NewQueue("otp-mail", func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(otpMailPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type for job %s", job.ID)
		}
		return smtpMailer.SendOTP(payload.Email, payload.Code, "registration")
	}, jobs.QueueConfig{
		Workers:    cfg.Election.MailWorkers,
		MaxRetries: cfg.Election.MailRetries,
		Logger:     logr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	nominationRepo := repository.NewNominationRepository(db)
	supporterRepo := repository.NewSupporterRepository(db)
	manifestoRepo := repository.NewManifestoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	configRepo := repository.NewConfigRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	deadlines := service.NewDeadlineService(configRepo, cacheRepo, cfg.Election.ConfigCacheTTL, logr)
	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, otpRepo, activityRepo, &queueMailer{queue: mailQueue}, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
		EmailDomain: cfg.Election.EmailDomain,
		OTPExpiry:   cfg.Election.OTPExpiry,
	})
	nominationSvc := service.NewNominationService(nominationRepo, userRepo, deadlines, activityRepo, validate, logr)
	supporterSvc := service.NewSupporterService(supporterRepo, nominationRepo, deadlines, activityRepo, validate, logr)
	manifestoSvc := service.NewManifestoService(manifestoRepo, nominationRepo, deadlines, blobs, signer, activityRepo, validate, logr, cfg.Storage.MaxFileSize)
	reviewerSvc := service.NewReviewerService(commentRepo, manifestoRepo, deadlines, activityRepo, validate, logr, service.ReviewerConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.ReviewerExpiry,
		Issuer:      cfg.JWT.Issuer,
	})
	adminSvc := service.NewAdminService(configRepo, userRepo, statsRepo, nominationRepo, supporterRepo, manifestoRepo, commentRepo, activityRepo, deadlines, validate, logr)

	r := router.New(router.Deps{
		Config:    cfg,
		Logger:    logr,
		Activity:  activityRepo,
		Auth:      authSvc,
		Reviewer:  reviewerSvc,
		Metrics:   metricsSvc,
		AuthH:     handler.NewAuthHandler(authSvc),
		Nominate:  handler.NewNominationHandler(nominationSvc),
		Support:   handler.NewSupporterHandler(supporterSvc),
		Manifesto: handler.NewManifestoHandler(manifestoSvc),
		Review:    handler.NewReviewerHandler(reviewerSvc),
		Admin:     handler.NewAdminHandler(adminSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Info("server stopped")
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

// Window identifies one of the configured submission windows.
type Window string

const (
	WindowNomination     Window = "NOMINATION"
	WindowCampaigner     Window = "CAMPAIGNER"
	WindowManifestoOne   Window = "MANIFESTO_PHASE1"
	WindowManifestoTwo   Window = "MANIFESTO_PHASE2"
	WindowManifestoFinal Window = "MANIFESTO_FINAL"
)

// WindowForSupporterRole maps a supporter role to the window that governs it.
// Proposer and seconder requests follow the nomination window.
func WindowForSupporterRole(role models.SupporterRole) Window {
	switch role {
	case models.RoleCampaigner:
		return WindowCampaigner
	default:
		return WindowNomination
	}
}

// WindowForPhase maps a manifesto phase to its upload window.
func WindowForPhase(phase models.ManifestoPhase) Window {
	switch phase {
	case models.PhaseTwo:
		return WindowManifestoTwo
	case models.PhaseFinal:
		return WindowManifestoFinal
	default:
		return WindowManifestoOne
	}
}

type deadlineConfigRepository interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
}

type deadlineCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const configCacheKey = "election:config"

// DeadlineService answers whether a submission window is currently open. It
// reads the election configuration through a short-lived cache so hot paths
// avoid a database round trip per request.
type DeadlineService struct {
	repo     deadlineConfigRepository
	cache    deadlineCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDeadlineService constructs a DeadlineService.
func NewDeadlineService(repo deadlineConfigRepository, cache deadlineCache, cacheTTL time.Duration, logger *zap.Logger) *DeadlineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &DeadlineService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the current election configuration snapshot.
func (s *DeadlineService) Config(ctx context.Context) (*models.SystemConfig, error) {
	if s.cache != nil {
		var cached models.SystemConfig
		if err := s.cache.Get(ctx, configCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load election configuration")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, configCacheKey, cfg, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache election configuration", zap.Error(err))
		}
	}
	return cfg, nil
}

// Invalidate drops the cached configuration snapshot. Called after updates.
func (s *DeadlineService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, configCacheKey); err != nil {
		s.logger.Warn("failed to invalidate configuration cache", zap.Error(err))
	}
}

// IsOpen reports whether the window is open at the current instant. Bounds
// are inclusive; a missing bound keeps the window closed.
func (s *DeadlineService) IsOpen(ctx context.Context, w Window) (bool, error) {
	cfg, err := s.Config(ctx)
	if err != nil {
		return false, err
	}
	start, end := windowBounds(cfg, w)
	if start == nil || end == nil {
		return false, nil
	}
	now := s.now()
	return !now.Before(*start) && !now.After(*end), nil
}

// Require returns ErrWindowClosed unless the window is open.
func (s *DeadlineService) Require(ctx context.Context, w Window) error {
	open, err := s.IsOpen(ctx, w)
	if err != nil {
		return err
	}
	if !open {
		return appErrors.ErrWindowClosed
	}
	return nil
}

func windowBounds(cfg *models.SystemConfig, w Window) (*time.Time, *time.Time) {
	switch w {
	case WindowNomination:
		return cfg.NominationStart, cfg.NominationEnd
	case WindowCampaigner:
		return cfg.CampaignerStart, cfg.CampaignerEnd
	case WindowManifestoOne:
		return cfg.ManifestoPhase1Start, cfg.ManifestoPhase1End
	case WindowManifestoTwo:
		return cfg.ManifestoPhase2Start, cfg.ManifestoPhase2End
	case WindowManifestoFinal:
		return cfg.ManifestoFinalStart, cfg.ManifestoFinalEnd
	}
	return nil, nil
}

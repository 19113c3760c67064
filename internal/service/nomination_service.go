package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

type nominationRepository interface {
	Create(ctx context.Context, n *models.Nomination) error
	FindByID(ctx context.Context, id string) (*models.Nomination, error)
	FindByUserID(ctx context.Context, userID string) (*models.Nomination, error)
	Update(ctx context.Context, n *models.Nomination) error
	UpdateStatus(ctx context.Context, id string, status models.NominationStatus, locked bool) error
	ListDetail(ctx context.Context) ([]models.NominationDetail, error)
	ListDetailByStatus(ctx context.Context, status models.NominationStatus) ([]models.NominationDetail, error)
}

type nominationUserRepository interface {
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
}

type windowGate interface {
	Require(ctx context.Context, w Window) error
}

// NominationService orchestrates the candidate nomination lifecycle.
type NominationService struct {
	repo      nominationRepository
	users     nominationUserRepository
	gate      windowGate
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNominationService constructs a NominationService.
func NewNominationService(repo nominationRepository, users nominationUserRepository, gate windowGate, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *NominationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NominationService{
		repo:      repo,
		users:     users,
		gate:      gate,
		activity:  activity,
		validator: validate,
		logger:    logger,
	}
}

// Create files a nomination for the authenticated user. One per user; the
// filer is promoted to CANDIDATE.
func (s *NominationService) Create(ctx context.Context, userID string, req dto.CreateNominationRequest) (*models.Nomination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid nomination payload")
	}
	if err := s.gate.Require(ctx, WindowNomination); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a nomination already exists for this user")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing nomination")
	}

	n := &models.Nomination{
		UserID:    userID,
		Positions: pq.StringArray(req.Positions),
		CPI:       req.CPI,
		Status:    models.NominationPending,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create nomination")
	}

	if err := s.users.UpdateRole(ctx, userID, models.RoleCandidate); err != nil {
		s.logger.Warn("failed to promote user to candidate", zap.String("user_id", userID), zap.Error(err))
	}

	s.record(ctx, &userID, models.ActionNominationCreated, map[string]string{"nomination_id": n.ID})
	return n, nil
}

// Mine returns the caller's nomination.
func (s *NominationService) Mine(ctx context.Context, userID string) (*models.Nomination, error) {
	n, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no nomination found for this user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load nomination")
	}
	return n, nil
}

// Get returns a nomination by its ID.
func (s *NominationService) Get(ctx context.Context, id string) (*models.Nomination, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nomination not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load nomination")
	}
	return n, nil
}

// Update edits the caller's nomination. Edits are allowed only while the
// window is open and the nomination is still pending and unlocked.
func (s *NominationService) Update(ctx context.Context, userID string, req dto.UpdateNominationRequest) (*models.Nomination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid nomination payload")
	}
	if err := s.gate.Require(ctx, WindowNomination); err != nil {
		return nil, err
	}

	n, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no nomination found for this user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load nomination")
	}

	if n.Locked {
		return nil, appErrors.Clone(appErrors.ErrLocked, "nomination is locked")
	}
	if n.Status != models.NominationPending {
		return nil, appErrors.Clone(appErrors.ErrLocked, "nomination has already been decided")
	}

	n.Positions = pq.StringArray(req.Positions)
	n.CPI = req.CPI
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update nomination")
	}

	s.record(ctx, &userID, models.ActionNominationUpdated, map[string]string{"nomination_id": n.ID})
	return n, nil
}

// Decide records an admin status change. Accepting or rejecting locks the
// nomination; setting PENDING reverts the decision and unlocks it so the
// candidate may edit again while the window is open.
func (s *NominationService) Decide(ctx context.Context, actorID, nominationID string, req dto.NominationDecisionRequest) (*models.Nomination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	status := models.NominationStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be PENDING, ACCEPTED or REJECTED")
	}

	n, err := s.repo.FindByID(ctx, nominationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nomination not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load nomination")
	}

	locked := status != models.NominationPending
	if err := s.repo.UpdateStatus(ctx, n.ID, status, locked); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update nomination status")
	}
	n.Status = status
	n.Locked = locked

	s.record(ctx, &actorID, models.ActionNominationStatusChanged, map[string]string{
		"nomination_id": n.ID,
		"status":        string(status),
	})
	return n, nil
}

// List returns all nominations with candidate details, optionally filtered
// by status.
func (s *NominationService) List(ctx context.Context, status string) ([]models.NominationDetail, error) {
	if status != "" {
		parsed := models.NominationStatus(status)
		if !parsed.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown nomination status filter")
		}
		items, err := s.repo.ListDetailByStatus(ctx, parsed)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list nominations")
		}
		return items, nil
	}
	items, err := s.repo.ListDetail(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list nominations")
	}
	return items, nil
}

// ListAccepted returns only accepted nominations, for public candidate
// listings.
func (s *NominationService) ListAccepted(ctx context.Context) ([]models.NominationDetail, error) {
	items, err := s.repo.ListDetailByStatus(ctx, models.NominationAccepted)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accepted nominations")
	}
	return items, nil
}

func (s *NominationService) record(ctx context.Context, userID *string, action string, meta map[string]string) {
	if s.activity == nil {
		return
	}
	var payload []byte
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	if err := s.activity.Create(ctx, &models.ActivityLog{UserID: userID, Action: action, Metadata: payload}); err != nil {
		s.logger.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

type supporterRepository interface {
	Create(ctx context.Context, req *models.SupporterRequest) error
	FindByID(ctx context.Context, id string) (*models.SupporterRequest, error)
	Exists(ctx context.Context, studentID, nominationID string, role models.SupporterRole) (bool, error)
	AcceptWithinCap(ctx context.Context, id string, cap int) error
	UpdateStatus(ctx context.Context, id string, status models.SupporterStatus) error
	ListByCandidate(ctx context.Context, candidateID string) ([]models.SupporterRequestDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.SupporterRequestDetail, error)
	ListAllDetail(ctx context.Context) ([]models.SupporterRequestDetail, error)
}

type supporterNominationReader interface {
	FindByID(ctx context.Context, id string) (*models.Nomination, error)
}

type supporterConfigSource interface {
	Config(ctx context.Context) (*models.SystemConfig, error)
	Require(ctx context.Context, w Window) error
}

// SupporterService orchestrates supporter endorsements. Accepting a request
// is capacity checked inside a single database transaction so concurrent
// accepts for the last slot cannot both win.
type SupporterService struct {
	repo        supporterRepository
	nominations supporterNominationReader
	gate        supporterConfigSource
	activity    activityRecorder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSupporterService constructs a SupporterService.
func NewSupporterService(repo supporterRepository, nominations supporterNominationReader, gate supporterConfigSource, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *SupporterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SupporterService{
		repo:        repo,
		nominations: nominations,
		gate:        gate,
		activity:    activity,
		validator:   validate,
		logger:      logger,
	}
}

// Create files a supporter request against a nomination. Self-endorsement
// and duplicate (student, nomination, role) requests are rejected.
func (s *SupporterService) Create(ctx context.Context, studentID string, req dto.CreateSupporterRequest) (*models.SupporterRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid supporter payload")
	}
	role := models.SupporterRole(req.Role)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown supporter role")
	}

	if err := s.gate.Require(ctx, WindowForSupporterRole(role)); err != nil {
		return nil, err
	}

	nomination, err := s.nominations.FindByID(ctx, req.NominationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "nomination not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load nomination")
	}

	if nomination.UserID == studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "candidates cannot support their own nomination")
	}

	exists, err := s.repo.Exists(ctx, studentID, nomination.ID, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing request")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a request for this nomination and role already exists")
	}

	request := &models.SupporterRequest{
		StudentID:    studentID,
		CandidateID:  nomination.UserID,
		NominationID: nomination.ID,
		Role:         role,
		Status:       models.SupporterPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create supporter request")
	}

	s.record(ctx, &studentID, models.ActionSupporterRequestCreated, map[string]string{
		"request_id":    request.ID,
		"nomination_id": nomination.ID,
		"role":          string(role),
	})
	return request, nil
}

// Decide is the candidate's accept or reject of a pending request. Accepts
// go through the transactional capacity check; a full slot surfaces as
// CAPACITY_EXCEEDED with the request left pending.
func (s *SupporterService) Decide(ctx context.Context, candidateID, requestID string, req dto.SupporterDecisionRequest) (*models.SupporterRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "supporter request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load supporter request")
	}

	if request.CandidateID != candidateID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request does not belong to this candidate")
	}
	if request.Status != models.SupporterPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request has already been decided")
	}

	// No window check here: requests filed before the window closed can
	// still be decided afterwards.
	status := models.SupporterStatus(req.Status)
	switch status {
	case models.SupporterAccepted:
		cfg, err := s.gate.Config(ctx)
		if err != nil {
			return nil, err
		}
		limit := cfg.CapForRole(request.Role)
		if err := s.repo.AcceptWithinCap(ctx, request.ID, limit); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) {
				return nil, appErr
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept supporter request")
		}
		request.Status = models.SupporterAccepted
		s.record(ctx, &candidateID, models.ActionSupporterRequestAccepted, map[string]string{"request_id": request.ID})
	case models.SupporterRejected:
		if err := s.repo.UpdateStatus(ctx, request.ID, models.SupporterRejected); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject supporter request")
		}
		request.Status = models.SupporterRejected
		s.record(ctx, &candidateID, models.ActionSupporterRequestRejected, map[string]string{"request_id": request.ID})
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be ACCEPTED or REJECTED")
	}

	return request, nil
}

// ListForCandidate returns requests aimed at the caller's nomination.
func (s *SupporterService) ListForCandidate(ctx context.Context, candidateID string) ([]models.SupporterRequestDetail, error) {
	items, err := s.repo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supporter requests")
	}
	return items, nil
}

// ListForStudent returns the caller's outgoing requests.
func (s *SupporterService) ListForStudent(ctx context.Context, studentID string) ([]models.SupporterRequestDetail, error) {
	items, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supporter requests")
	}
	return items, nil
}

// ListAll returns every supporter request, for the admin console.
func (s *SupporterService) ListAll(ctx context.Context) ([]models.SupporterRequestDetail, error) {
	items, err := s.repo.ListAllDetail(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supporter requests")
	}
	return items, nil
}

func (s *SupporterService) record(ctx context.Context, userID *string, action string, meta map[string]string) {
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

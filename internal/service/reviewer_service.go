package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

type reviewerCommentRepository interface {
	Create(ctx context.Context, c *models.ReviewerComment) error
	ListByManifesto(ctx context.Context, manifestoID string) ([]models.ReviewerComment, error)
}

type reviewerManifestoReader interface {
	FindByID(ctx context.Context, id string) (*models.Manifesto, error)
	ListDetailByPhase(ctx context.Context, phase models.ManifestoPhase) ([]models.ManifestoDetail, error)
}

type reviewerConfigSource interface {
	Config(ctx context.Context) (*models.SystemConfig, error)
}

// ReviewerConfig tunes reviewer token issuance.
type ReviewerConfig struct {
	TokenSecret string
	TokenExpiry time.Duration
	Issuer      string
}

// ReviewerService handles phase-scoped reviewer sessions. Reviewers are not
// user accounts; they authenticate against credentials held on the election
// configuration and receive tokens valid only for review endpoints of their
// phase.
type ReviewerService struct {
	comments   reviewerCommentRepository
	manifestos reviewerManifestoReader
	configs    reviewerConfigSource
	activity   activityRecorder
	validator  *validator.Validate
	logger     *zap.Logger
	config     ReviewerConfig
	now        func() time.Time
}

// NewReviewerService constructs a ReviewerService.
func NewReviewerService(comments reviewerCommentRepository, manifestos reviewerManifestoReader, configs reviewerConfigSource, activity activityRecorder, validate *validator.Validate, logger *zap.Logger, config ReviewerConfig) *ReviewerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 12 * time.Hour
	}
	return &ReviewerService{
		comments:   comments,
		manifestos: manifestos,
		configs:    configs,
		activity:   activity,
		validator:  validate,
		logger:     logger,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login checks the submitted credentials against the configured pair for the
// phase and issues a phase-scoped token.
func (s *ReviewerService) Login(ctx context.Context, req dto.ReviewerLoginRequest) (*models.ReviewerLoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reviewer login payload")
	}
	phase, ok := models.ParsePhase(req.Phase)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown manifesto phase")
	}

	cfg, err := s.configs.Config(ctx)
	if err != nil {
		return nil, err
	}
	creds := cfg.CredentialsForPhase(phase)
	if creds.Username == "" || creds.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "reviewer access is not configured for this phase")
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(req.Username)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(req.Password)) == 1
	if !usernameMatch || !passwordMatch {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid reviewer credentials")
	}

	now := s.now()
	claims := models.ReviewerClaims{
		Username: creds.Username,
		Phase:    phase,
		Type:     models.TokenTypeReviewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   creds.Username,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenExpiry)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign reviewer token")
	}

	s.record(ctx, models.ActionReviewerLogin, map[string]string{"username": creds.Username, "phase": string(phase)})

	return &models.ReviewerLoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		Username:    creds.Username,
		Phase:       phase,
	}, nil
}

// ValidateToken parses and verifies a reviewer token.
func (s *ReviewerService) ValidateToken(tokenString string) (*models.ReviewerClaims, error) {
	claims := &models.ReviewerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired reviewer token")
	}
	if claims.Type != models.TokenTypeReviewer || !claims.Phase.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token is not a reviewer token")
	}
	return claims, nil
}

// ListManifestos returns the manifestos visible to the reviewer's phase.
func (s *ReviewerService) ListManifestos(ctx context.Context, claims *models.ReviewerClaims) ([]models.ManifestoDetail, error) {
	items, err := s.manifestos.ListDetailByPhase(ctx, claims.Phase)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list manifestos")
	}
	return items, nil
}

// Comment attaches reviewer feedback to a manifesto of the reviewer's phase.
func (s *ReviewerService) Comment(ctx context.Context, claims *models.ReviewerClaims, manifestoID string, req dto.CreateCommentRequest) (*models.ReviewerComment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	m, err := s.manifestos.FindByID(ctx, manifestoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "manifesto not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manifesto")
	}
	if m.Phase != claims.Phase {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "manifesto belongs to a different phase")
	}

	comment := &models.ReviewerComment{
		ManifestoID:  m.ID,
		ReviewerName: claims.Username,
		Content:      req.Content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}

	s.record(ctx, models.ActionReviewerCommentAdded, map[string]string{"manifesto_id": m.ID, "phase": string(m.Phase)})
	return comment, nil
}

// ListComments returns the comments on a manifesto of the reviewer's phase,
// newest first.
func (s *ReviewerService) ListComments(ctx context.Context, claims *models.ReviewerClaims, manifestoID string) ([]models.ReviewerComment, error) {
	m, err := s.manifestos.FindByID(ctx, manifestoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "manifesto not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manifesto")
	}
	if m.Phase != claims.Phase {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "manifesto belongs to a different phase")
	}

	items, err := s.comments.ListByManifesto(ctx, m.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return items, nil
}

// PublicComments returns a manifesto's comments without phase scoping, for
// the public listing.
func (s *ReviewerService) PublicComments(ctx context.Context, manifestoID string) ([]models.ReviewerComment, error) {
	m, err := s.manifestos.FindByID(ctx, manifestoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "manifesto not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manifesto")
	}

	items, err := s.comments.ListByManifesto(ctx, m.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	return items, nil
}

func (s *ReviewerService) record(ctx context.Context, action string, meta map[string]string) {
	if s.activity == nil {
		return
	}
	var payload []byte
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	if err := s.activity.Create(ctx, &models.ActivityLog{Action: action, Metadata: payload}); err != nil {
		s.logger.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

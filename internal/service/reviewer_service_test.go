package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

type memCommentRepo struct {
	comments []*models.ReviewerComment
}

func (r *memCommentRepo) Create(ctx context.Context, c *models.ReviewerComment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	clone := *c
	r.comments = append(r.comments, &clone)
	return nil
}

func (r *memCommentRepo) ListByManifesto(ctx context.Context, manifestoID string) ([]models.ReviewerComment, error) {
	out := []models.ReviewerComment{}
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].ManifestoID == manifestoID {
			out = append(out, *r.comments[i])
		}
	}
	return out, nil
}

type manifestoReaderStub struct {
	manifestos map[string]*models.Manifesto
}

func (s *manifestoReaderStub) FindByID(ctx context.Context, id string) (*models.Manifesto, error) {
	m, ok := s.manifestos[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *m
	return &clone, nil
}

func (s *manifestoReaderStub) ListDetailByPhase(ctx context.Context, phase models.ManifestoPhase) ([]models.ManifestoDetail, error) {
	out := []models.ManifestoDetail{}
	for _, m := range s.manifestos {
		if m.Phase == phase {
			out = append(out, models.ManifestoDetail{Manifesto: *m})
		}
	}
	return out, nil
}

func reviewerConfigWithCreds() *models.SystemConfig {
	return &models.SystemConfig{
		Phase1ReviewerCredentials: models.ReviewerCredentials{Username: "reviewer1", Password: "phase1secret"},
	}
}

func newReviewerFixture(manifestos map[string]*models.Manifesto) (*ReviewerService, *memCommentRepo) {
	comments := &memCommentRepo{}
	reader := &manifestoReaderStub{manifestos: manifestos}
	configs := &openGateStub{cfg: reviewerConfigWithCreds()}
	svc := NewReviewerService(comments, reader, configs, &activityStub{}, validator.New(), nil, ReviewerConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "election-api",
	})
	return svc, comments
}

func TestReviewerLoginIssuesPhaseToken(t *testing.T) {
	svc, _ := newReviewerFixture(nil)

	resp, err := svc.Login(context.Background(), dto.ReviewerLoginRequest{
		Username: "reviewer1",
		Password: "phase1secret",
		Phase:    "phase1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PhaseOne, resp.Phase)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseOne, claims.Phase)
	assert.Equal(t, models.TokenTypeReviewer, claims.Type)
}

func TestReviewerLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newReviewerFixture(nil)

	_, err := svc.Login(context.Background(), dto.ReviewerLoginRequest{
		Username: "reviewer1",
		Password: "wrong",
		Phase:    "phase1",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestReviewerLoginRejectsUnconfiguredPhase(t *testing.T) {
	svc, _ := newReviewerFixture(nil)

	_, err := svc.Login(context.Background(), dto.ReviewerLoginRequest{
		Username: "reviewer2",
		Password: "whatever1",
		Phase:    "phase2",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestReviewerCommentScopedToPhase(t *testing.T) {
	manifestos := map[string]*models.Manifesto{
		"m1": {ID: "m1", Phase: models.PhaseOne},
		"m2": {ID: "m2", Phase: models.PhaseTwo},
	}
	svc, comments := newReviewerFixture(manifestos)
	claims := &models.ReviewerClaims{Username: "reviewer1", Phase: models.PhaseOne, Type: models.TokenTypeReviewer}

	created, err := svc.Comment(context.Background(), claims, "m1", dto.CreateCommentRequest{Content: "clear and specific"})
	require.NoError(t, err)
	assert.Equal(t, "reviewer1", created.ReviewerName)
	assert.Len(t, comments.comments, 1)

	_, err = svc.Comment(context.Background(), claims, "m2", dto.CreateCommentRequest{Content: "should not land"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestReviewerUserTokenRejected(t *testing.T) {
	svc, _ := newReviewerFixture(nil)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

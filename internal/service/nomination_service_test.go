package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

type memNominationRepo struct {
	byUser map[string]*models.Nomination
}

func newMemNominationRepo() *memNominationRepo {
	return &memNominationRepo{byUser: make(map[string]*models.Nomination)}
}

func (r *memNominationRepo) Create(ctx context.Context, n *models.Nomination) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	clone := *n
	r.byUser[n.UserID] = &clone
	return nil
}

func (r *memNominationRepo) FindByID(ctx context.Context, id string) (*models.Nomination, error) {
	for _, n := range r.byUser {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memNominationRepo) FindByUserID(ctx context.Context, userID string) (*models.Nomination, error) {
	n, ok := r.byUser[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *n
	return &clone, nil
}

func (r *memNominationRepo) Update(ctx context.Context, n *models.Nomination) error {
	stored, ok := r.byUser[n.UserID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.Positions = n.Positions
	stored.CPI = n.CPI
	return nil
}

func (r *memNominationRepo) UpdateStatus(ctx context.Context, id string, status models.NominationStatus, locked bool) error {
	for _, n := range r.byUser {
		if n.ID == id {
			n.Status = status
			n.Locked = locked
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *memNominationRepo) ListDetail(ctx context.Context) ([]models.NominationDetail, error) {
	out := make([]models.NominationDetail, 0, len(r.byUser))
	for _, n := range r.byUser {
		out = append(out, models.NominationDetail{Nomination: *n})
	}
	return out, nil
}

func (r *memNominationRepo) ListDetailByStatus(ctx context.Context, status models.NominationStatus) ([]models.NominationDetail, error) {
	out := []models.NominationDetail{}
	for _, n := range r.byUser {
		if n.Status == status {
			out = append(out, models.NominationDetail{Nomination: *n})
		}
	}
	return out, nil
}

type roleRecorderStub struct {
	roles map[string]models.UserRole
}

func (s *roleRecorderStub) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	if s.roles == nil {
		s.roles = make(map[string]models.UserRole)
	}
	s.roles[id] = role
	return nil
}

type gateStub struct {
	err error
}

func (s *gateStub) Require(ctx context.Context, w Window) error { return s.err }

func newNominationFixture(gateErr error) (*NominationService, *memNominationRepo, *roleRecorderStub) {
	repo := newMemNominationRepo()
	users := &roleRecorderStub{}
	svc := NewNominationService(repo, users, &gateStub{err: gateErr}, &activityStub{}, validator.New(), nil)
	return svc, repo, users
}

func TestNominationCreatePromotesCandidate(t *testing.T) {
	svc, repo, users := newNominationFixture(nil)

	n, err := svc.Create(context.Background(), "u1", dto.CreateNominationRequest{
		Positions: []string{"President"},
		CPI:       8.2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.NominationPending, n.Status)
	assert.Len(t, repo.byUser, 1)
	assert.Equal(t, models.RoleCandidate, users.roles["u1"])
}

func TestNominationCreateRejectsSecond(t *testing.T) {
	svc, _, _ := newNominationFixture(nil)

	_, err := svc.Create(context.Background(), "u1", dto.CreateNominationRequest{Positions: []string{"President"}, CPI: 8.2})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "u1", dto.CreateNominationRequest{Positions: []string{"Treasurer"}, CPI: 8.2})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestNominationCreateClosedWindow(t *testing.T) {
	svc, _, _ := newNominationFixture(appErrors.ErrWindowClosed)

	_, err := svc.Create(context.Background(), "u1", dto.CreateNominationRequest{Positions: []string{"President"}, CPI: 8.2})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrWindowClosed)
}

func TestNominationUpdateBlockedAfterDecision(t *testing.T) {
	svc, repo, _ := newNominationFixture(nil)

	n, err := svc.Create(context.Background(), "u1", dto.CreateNominationRequest{Positions: []string{"President"}, CPI: 8.2})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), n.ID, models.NominationAccepted, true))

	_, err = svc.Update(context.Background(), "u1", dto.UpdateNominationRequest{Positions: []string{"Treasurer"}, CPI: 9.0})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrLocked.Code, appErr.Code)
}

func TestNominationDecideLocks(t *testing.T) {
	svc, repo, _ := newNominationFixture(nil)

	created, err := svc.Create(context.Background(), "u1", dto.CreateNominationRequest{Positions: []string{"President"}, CPI: 8.2})
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), "admin1", created.ID, dto.NominationDecisionRequest{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, models.NominationAccepted, decided.Status)
	assert.True(t, decided.Locked)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Locked)
}

func TestNominationDecidePendingRevertsAndUnlocks(t *testing.T) {
	svc, repo, _ := newNominationFixture(nil)

	created, err := svc.Create(context.Background(), "u1", dto.CreateNominationRequest{Positions: []string{"President"}, CPI: 8.2})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), "admin1", created.ID, dto.NominationDecisionRequest{Status: "ACCEPTED"})
	require.NoError(t, err)

	reverted, err := svc.Decide(context.Background(), "admin1", created.ID, dto.NominationDecisionRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, models.NominationPending, reverted.Status)
	assert.False(t, reverted.Locked)

	// edits re-open after the revert
	updated, err := svc.Update(context.Background(), "u1", dto.UpdateNominationRequest{Positions: []string{"Treasurer"}, CPI: 9.0})
	require.NoError(t, err)
	assert.Equal(t, []string(updated.Positions), []string{"Treasurer"})

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Locked)
}

func TestNominationDecideRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newNominationFixture(nil)

	created, err := svc.Create(context.Background(), "u1", dto.CreateNominationRequest{Positions: []string{"President"}, CPI: 8.2})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), "admin1", created.ID, dto.NominationDecisionRequest{Status: "VERIFIED"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

// memSupporterRepo mimics the database capacity transaction with a mutex so
// concurrent accepts serialise the count-then-set exactly like FOR UPDATE.
type memSupporterRepo struct {
	mu       sync.Mutex
	requests map[string]*models.SupporterRequest
}

func newMemSupporterRepo() *memSupporterRepo {
	return &memSupporterRepo{requests: make(map[string]*models.SupporterRequest)}
}

func (r *memSupporterRepo) Create(ctx context.Context, req *models.SupporterRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *memSupporterRepo) FindByID(ctx context.Context, id string) (*models.SupporterRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (r *memSupporterRepo) Exists(ctx context.Context, studentID, nominationID string, role models.SupporterRole) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.StudentID == studentID && req.NominationID == nominationID && req.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSupporterRepo) AcceptWithinCap(ctx context.Context, id string, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return appErrors.ErrNotFound
	}
	if req.Status != models.SupporterPending {
		return appErrors.ErrConflict
	}
	accepted := 0
	for _, other := range r.requests {
		if other.NominationID == req.NominationID && other.Role == req.Role && other.Status == models.SupporterAccepted {
			accepted++
		}
	}
	if accepted >= limit {
		return appErrors.ErrCapacityExceeded
	}
	req.Status = models.SupporterAccepted
	return nil
}

func (r *memSupporterRepo) UpdateStatus(ctx context.Context, id string, status models.SupporterStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return sql.ErrNoRows
	}
	req.Status = status
	return nil
}

func (r *memSupporterRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.SupporterRequestDetail, error) {
	return nil, nil
}

func (r *memSupporterRepo) ListByStudent(ctx context.Context, studentID string) ([]models.SupporterRequestDetail, error) {
	return nil, nil
}

func (r *memSupporterRepo) ListAllDetail(ctx context.Context) ([]models.SupporterRequestDetail, error) {
	return nil, nil
}

func (r *memSupporterRepo) countAccepted(nominationID string, role models.SupporterRole) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.requests {
		if req.NominationID == nominationID && req.Role == role && req.Status == models.SupporterAccepted {
			n++
		}
	}
	return n
}

type nominationReaderStub struct {
	nomination *models.Nomination
	err        error
}

func (s *nominationReaderStub) FindByID(ctx context.Context, id string) (*models.Nomination, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.nomination == nil || s.nomination.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *s.nomination
	return &clone, nil
}

type openGateStub struct {
	cfg *models.SystemConfig
}

func (s *openGateStub) Require(ctx context.Context, w Window) error { return nil }

func (s *openGateStub) Config(ctx context.Context) (*models.SystemConfig, error) {
	return s.cfg, nil
}

type closedGateStub struct {
	cfg *models.SystemConfig
}

func (s *closedGateStub) Require(ctx context.Context, w Window) error {
	return appErrors.ErrWindowClosed
}

func (s *closedGateStub) Config(ctx context.Context) (*models.SystemConfig, error) {
	return s.cfg, nil
}

func newSupporterFixture(t *testing.T, caps *models.SystemConfig) (*SupporterService, *memSupporterRepo) {
	t.Helper()
	repo := newMemSupporterRepo()
	nominations := &nominationReaderStub{nomination: &models.Nomination{ID: "nom1", UserID: "cand1", Status: models.NominationAccepted}}
	gate := &openGateStub{cfg: caps}
	svc := NewSupporterService(repo, nominations, gate, &activityStub{}, validator.New(), nil)
	return svc, repo
}

func defaultCaps() *models.SystemConfig {
	return &models.SystemConfig{
		MaxProposers:   models.DefaultMaxProposers,
		MaxSeconders:   models.DefaultMaxSeconders,
		MaxCampaigners: models.DefaultMaxCampaigners,
	}
}

func TestSupporterCreateRejectsSelfSupport(t *testing.T) {
	svc, _ := newSupporterFixture(t, defaultCaps())
	svc.nominations = &nominationReaderStub{nomination: &models.Nomination{ID: "11111111-1111-4111-8111-111111111111", UserID: "cand1"}}

	_, err := svc.Create(context.Background(), "cand1", dto.CreateSupporterRequest{
		NominationID: "11111111-1111-4111-8111-111111111111",
		Role:         "PROPOSER",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestSupporterCreateRejectsDuplicate(t *testing.T) {
	svc, repo := newSupporterFixture(t, defaultCaps())
	nominations := &nominationReaderStub{nomination: &models.Nomination{ID: "22222222-2222-4222-8222-222222222222", UserID: "cand1"}}
	svc.nominations = nominations

	req := dto.CreateSupporterRequest{NominationID: "22222222-2222-4222-8222-222222222222", Role: "SECONDER"}
	first, err := svc.Create(context.Background(), "stu1", req)
	require.NoError(t, err)
	assert.Equal(t, models.SupporterPending, first.Status)
	assert.Len(t, repo.requests, 1)

	_, err = svc.Create(context.Background(), "stu1", req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestSupporterDecideAcceptWithinCap(t *testing.T) {
	caps := defaultCaps()
	caps.MaxProposers = 1
	svc, repo := newSupporterFixture(t, caps)

	request := &models.SupporterRequest{
		StudentID:    "stu1",
		CandidateID:  "cand1",
		NominationID: "nom1",
		Role:         models.RoleProposer,
		Status:       models.SupporterPending,
	}
	require.NoError(t, repo.Create(context.Background(), request))

	decided, err := svc.Decide(context.Background(), "cand1", request.ID, dto.SupporterDecisionRequest{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, models.SupporterAccepted, decided.Status)
	assert.Equal(t, 1, repo.countAccepted("nom1", models.RoleProposer))
}

// Requests filed while the window was open can still be decided after it
// closes; only Create is window-gated.
func TestSupporterDecideSucceedsAfterWindowCloses(t *testing.T) {
	svc, repo := newSupporterFixture(t, defaultCaps())
	svc.gate = &closedGateStub{cfg: defaultCaps()}

	request := &models.SupporterRequest{
		StudentID:    "stu1",
		CandidateID:  "cand1",
		NominationID: "nom1",
		Role:         models.RoleProposer,
		Status:       models.SupporterPending,
	}
	require.NoError(t, repo.Create(context.Background(), request))

	decided, err := svc.Decide(context.Background(), "cand1", request.ID, dto.SupporterDecisionRequest{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, models.SupporterAccepted, decided.Status)
}

func TestSupporterCreateClosedWindow(t *testing.T) {
	svc, _ := newSupporterFixture(t, defaultCaps())
	svc.gate = &closedGateStub{cfg: defaultCaps()}
	svc.nominations = &nominationReaderStub{nomination: &models.Nomination{ID: "33333333-3333-4333-8333-333333333333", UserID: "cand1"}}

	_, err := svc.Create(context.Background(), "stu1", dto.CreateSupporterRequest{
		NominationID: "33333333-3333-4333-8333-333333333333",
		Role:         "PROPOSER",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrWindowClosed)
}

func TestSupporterDecideRejectsWrongCandidate(t *testing.T) {
	svc, repo := newSupporterFixture(t, defaultCaps())

	request := &models.SupporterRequest{
		StudentID:    "stu1",
		CandidateID:  "cand1",
		NominationID: "nom1",
		Role:         models.RoleProposer,
		Status:       models.SupporterPending,
	}
	require.NoError(t, repo.Create(context.Background(), request))

	_, err := svc.Decide(context.Background(), "someone-else", request.ID, dto.SupporterDecisionRequest{Status: "ACCEPTED"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestSupporterConcurrentAcceptsHonourCap(t *testing.T) {
	caps := defaultCaps()
	caps.MaxProposers = 2
	svc, repo := newSupporterFixture(t, caps)

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		request := &models.SupporterRequest{
			StudentID:    uuid.NewString(),
			CandidateID:  "cand1",
			NominationID: "nom1",
			Role:         models.RoleProposer,
			Status:       models.SupporterPending,
		}
		require.NoError(t, repo.Create(context.Background(), request))
		ids = append(ids, request.ID)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(requestID string) {
			defer wg.Done()
			_, err := svc.Decide(context.Background(), "cand1", requestID, dto.SupporterDecisionRequest{Status: "ACCEPTED"})
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	accepted, capacity := 0, 0
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrCapacityExceeded.Code {
			capacity++
		}
	}

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 1, capacity)
	assert.Equal(t, 2, repo.countAccepted("nom1", models.RoleProposer))

	// the loser stays pending
	pending := 0
	for _, req := range repo.requests {
		if req.Status == models.SupporterPending {
			pending++
		}
	}
	assert.Equal(t, 1, pending)
}

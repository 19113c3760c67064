package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/storage"
)

type memManifestoRepo struct {
	rows map[string]*models.Manifesto
}

func newMemManifestoRepo() *memManifestoRepo {
	return &memManifestoRepo{rows: make(map[string]*models.Manifesto)}
}

func (r *memManifestoRepo) Create(ctx context.Context, m *models.Manifesto) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	clone := *m
	r.rows[m.ID] = &clone
	return nil
}

func (r *memManifestoRepo) FindByID(ctx context.Context, id string) (*models.Manifesto, error) {
	m, ok := r.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *m
	return &clone, nil
}

func (r *memManifestoRepo) FindByNominationAndPhase(ctx context.Context, nominationID string, phase models.ManifestoPhase) (*models.Manifesto, error) {
	for _, m := range r.rows {
		if m.NominationID == nominationID && m.Phase == phase {
			clone := *m
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memManifestoRepo) UpdateFile(ctx context.Context, id, fileName, fileURL, storageKey string, status models.ManifestoStatus) error {
	m, ok := r.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.FileName = fileName
	m.FileURL = fileURL
	m.StorageKey = storageKey
	m.Status = status
	return nil
}

func (r *memManifestoRepo) UpdateStatus(ctx context.Context, id string, status models.ManifestoStatus) error {
	m, ok := r.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.Status = status
	return nil
}

func (r *memManifestoRepo) Delete(ctx context.Context, id string) error {
	delete(r.rows, id)
	return nil
}

func (r *memManifestoRepo) ListByNomination(ctx context.Context, nominationID string) ([]models.Manifesto, error) {
	var out []models.Manifesto
	for _, m := range r.rows {
		if m.NominationID == nominationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memManifestoRepo) ListDetailByPhase(ctx context.Context, phase models.ManifestoPhase) ([]models.ManifestoDetail, error) {
	return nil, nil
}

// memBlobStore keeps blobs in a map and records every Put and Delete so tests
// can assert cleanup of replaced or removed files.
type memBlobStore struct {
	objects   map[string][]byte
	puts      []string
	deletes   []string
	deleteErr error
	seq       int
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte)}
}

func (s *memBlobStore) Put(ctx context.Context, data []byte, fileName, folder string) (*storage.StoredBlob, error) {
	s.seq++
	key := fmt.Sprintf("%s/%d-%s", folder, s.seq, fileName)
	s.objects[key] = data
	s.puts = append(s.puts, key)
	return &storage.StoredBlob{URL: "/uploads/" + key, StorageKey: key, FileName: fileName}, nil
}

func (s *memBlobStore) Delete(ctx context.Context, storageKey string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, storageKey)
	s.deletes = append(s.deletes, storageKey)
	return nil
}

func (s *memBlobStore) Open(storageKey string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

type nominationByUserStub struct {
	nomination *models.Nomination
}

func (s *nominationByUserStub) FindByUserID(ctx context.Context, userID string) (*models.Nomination, error) {
	if s.nomination == nil || s.nomination.UserID != userID {
		return nil, sql.ErrNoRows
	}
	clone := *s.nomination
	return &clone, nil
}

func newManifestoFixture(t *testing.T, status models.NominationStatus) (*ManifestoService, *memManifestoRepo, *memBlobStore) {
	t.Helper()
	repo := newMemManifestoRepo()
	blobs := newMemBlobStore()
	nominations := &nominationByUserStub{nomination: &models.Nomination{ID: "nom1", UserID: "cand1", Status: status}}
	svc := NewManifestoService(repo, nominations, &openGateStub{cfg: defaultCaps()}, blobs, nil, &activityStub{}, validator.New(), nil, 0)
	return svc, repo, blobs
}

func TestManifestoUploadStoresBlobAndRow(t *testing.T) {
	svc, repo, blobs := newManifestoFixture(t, models.NominationAccepted)

	m, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "vision.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, models.ManifestoSubmitted, m.Status)
	assert.Equal(t, models.PhaseOne, m.Phase)
	assert.Len(t, repo.rows, 1)
	assert.Contains(t, blobs.objects, m.StorageKey)
}

func TestManifestoUploadAllowsPendingNomination(t *testing.T) {
	svc, repo, _ := newManifestoFixture(t, models.NominationPending)

	m, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "vision.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "nom1", m.NominationID)
	assert.Len(t, repo.rows, 1)
}

func TestManifestoReplaceKeepsOneRowAndDeletesOldBlob(t *testing.T) {
	svc, repo, blobs := newManifestoFixture(t, models.NominationAccepted)

	first, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "draft.pdf", Data: []byte("%PDF-1.4 draft")})
	require.NoError(t, err)
	oldKey := first.StorageKey

	second, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "final.pdf", Data: []byte("%PDF-1.4 final")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.rows, 1)
	assert.Equal(t, models.ManifestoSubmitted, second.Status)
	assert.NotEqual(t, oldKey, second.StorageKey)
	assert.Contains(t, blobs.deletes, oldKey)
	assert.NotContains(t, blobs.objects, oldKey)
	assert.Contains(t, blobs.objects, second.StorageKey)
}

func TestManifestoReplaceRejectsLocked(t *testing.T) {
	svc, repo, blobs := newManifestoFixture(t, models.NominationAccepted)

	first, err := svc.Upload(context.Background(), "cand1", "phase2", ManifestoUpload{FileName: "draft.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), first.ID, models.ManifestoLocked))

	_, err = svc.Upload(context.Background(), "cand1", "phase2", ManifestoUpload{FileName: "late.pdf", Data: []byte("%PDF-1.4")})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrLocked.Code, appErr.Code)
	assert.Len(t, blobs.puts, 1)
}

func TestManifestoUploadClosedWindow(t *testing.T) {
	svc, _, blobs := newManifestoFixture(t, models.NominationAccepted)
	svc.gate = &closedGateStub{cfg: defaultCaps()}

	_, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "vision.pdf", Data: []byte("%PDF-1.4")})
	require.ErrorIs(t, err, appErrors.ErrWindowClosed)
	assert.Empty(t, blobs.puts)
}

func TestManifestoUploadRejectsNonPDF(t *testing.T) {
	svc, _, _ := newManifestoFixture(t, models.NominationAccepted)

	_, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "vision.docx", Data: []byte("content")})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestManifestoDeleteRemovesBlobAndRow(t *testing.T) {
	svc, repo, blobs := newManifestoFixture(t, models.NominationAccepted)

	m, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "vision.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "cand1", "phase1"))
	assert.Empty(t, repo.rows)
	assert.NotContains(t, blobs.objects, m.StorageKey)
}

func TestManifestoDeleteKeepsRowWhenBlobDeleteFails(t *testing.T) {
	svc, repo, blobs := newManifestoFixture(t, models.NominationAccepted)

	_, err := svc.Upload(context.Background(), "cand1", "phase1", ManifestoUpload{FileName: "vision.pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	blobs.deleteErr = errors.New("storage unavailable")

	err = svc.Delete(context.Background(), "cand1", "phase1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Len(t, repo.rows, 1)
}

func TestManifestoDeleteMissingPhase(t *testing.T) {
	svc, _, _ := newManifestoFixture(t, models.NominationAccepted)

	err := svc.Delete(context.Background(), "cand1", "final")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/storage"
)

type manifestoRepository interface {
	Create(ctx context.Context, m *models.Manifesto) error
	FindByID(ctx context.Context, id string) (*models.Manifesto, error)
	FindByNominationAndPhase(ctx context.Context, nominationID string, phase models.ManifestoPhase) (*models.Manifesto, error)
	UpdateFile(ctx context.Context, id, fileName, fileURL, storageKey string, status models.ManifestoStatus) error
	UpdateStatus(ctx context.Context, id string, status models.ManifestoStatus) error
	Delete(ctx context.Context, id string) error
	ListByNomination(ctx context.Context, nominationID string) ([]models.Manifesto, error)
	ListDetailByPhase(ctx context.Context, phase models.ManifestoPhase) ([]models.ManifestoDetail, error)
}

type manifestoNominationReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Nomination, error)
}

// ManifestoUpload carries a file received on the upload endpoint.
type ManifestoUpload struct {
	FileName string
	Data     []byte
}

const maxProxyRedirects = 5

// ManifestoService orchestrates phased manifesto uploads. Blob writes happen
// before row writes so a failed upload never leaves a dangling reference;
// replaced blobs are removed after the row is updated.
type ManifestoService struct {
	repo        manifestoRepository
	nominations manifestoNominationReader
	gate        windowGate
	blobs       storage.BlobStore
	signer      *storage.SignedURLSigner
	activity    activityRecorder
	httpClient  *http.Client
	validator   *validator.Validate
	logger      *zap.Logger
	maxFileSize int64
}

// NewManifestoService constructs a ManifestoService.
func NewManifestoService(repo manifestoRepository, nominations manifestoNominationReader, gate windowGate, blobs storage.BlobStore, signer *storage.SignedURLSigner, activity activityRecorder, validate *validator.Validate, logger *zap.Logger, maxFileSize int64) *ManifestoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxFileSize <= 0 {
		maxFileSize = 10 << 20
	}
	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxProxyRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &ManifestoService{
		repo:        repo,
		nominations: nominations,
		gate:        gate,
		blobs:       blobs,
		signer:      signer,
		activity:    activity,
		httpClient:  client,
		validator:   validate,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// Upload stores a manifesto for the caller's nomination and phase. A second
// upload in the same phase replaces the previous file in place, deleting the
// old blob and resetting the status to SUBMITTED.
func (s *ManifestoService) Upload(ctx context.Context, userID, rawPhase string, upload ManifestoUpload) (*models.Manifesto, error) {
	phase, ok := models.ParsePhase(rawPhase)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown manifesto phase")
	}
	if err := validateUpload(upload, s.maxFileSize); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, WindowForPhase(phase)); err != nil {
		return nil, err
	}

	nomination, err := s.requireNomination(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByNominationAndPhase(ctx, nomination.ID, phase)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing manifesto")
	}

	if existing != nil {
		if existing.Status == models.ManifestoLocked {
			return nil, appErrors.Clone(appErrors.ErrLocked, "manifesto is locked for this phase")
		}
		blob, err := s.blobs.Put(ctx, upload.Data, upload.FileName, string(phase))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store manifesto file")
		}
		oldKey := existing.StorageKey
		if err := s.repo.UpdateFile(ctx, existing.ID, blob.FileName, blob.URL, blob.StorageKey, models.ManifestoSubmitted); err != nil {
			if delErr := s.blobs.Delete(ctx, blob.StorageKey); delErr != nil {
				s.logger.Warn("failed to remove orphaned blob", zap.String("storage_key", blob.StorageKey), zap.Error(delErr))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update manifesto")
		}
		if err := s.blobs.Delete(ctx, oldKey); err != nil {
			s.logger.Warn("failed to delete replaced blob", zap.String("storage_key", oldKey), zap.Error(err))
		}
		existing.FileName = blob.FileName
		existing.FileURL = blob.URL
		existing.StorageKey = blob.StorageKey
		existing.Status = models.ManifestoSubmitted
		s.record(ctx, &userID, models.ActionManifestoUpdated, map[string]string{"manifesto_id": existing.ID, "phase": string(phase)})
		return existing, nil
	}

	blob, err := s.blobs.Put(ctx, upload.Data, upload.FileName, string(phase))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store manifesto file")
	}
	m := &models.Manifesto{
		NominationID: nomination.ID,
		Phase:        phase,
		FileName:     blob.FileName,
		FileURL:      blob.URL,
		StorageKey:   blob.StorageKey,
		Status:       models.ManifestoSubmitted,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if delErr := s.blobs.Delete(ctx, blob.StorageKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob", zap.String("storage_key", blob.StorageKey), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create manifesto")
	}

	s.record(ctx, &userID, models.ActionManifestoUploaded, map[string]string{"manifesto_id": m.ID, "phase": string(phase)})
	return m, nil
}

// Delete removes the caller's manifesto for a phase, blob included.
func (s *ManifestoService) Delete(ctx context.Context, userID, rawPhase string) error {
	phase, ok := models.ParsePhase(rawPhase)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown manifesto phase")
	}
	if err := s.gate.Require(ctx, WindowForPhase(phase)); err != nil {
		return err
	}

	nomination, err := s.requireNomination(ctx, userID)
	if err != nil {
		return err
	}

	m, err := s.repo.FindByNominationAndPhase(ctx, nomination.ID, phase)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no manifesto uploaded for this phase")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manifesto")
	}
	if m.Status == models.ManifestoLocked {
		return appErrors.Clone(appErrors.ErrLocked, "manifesto is locked for this phase")
	}

	// Blob first, then the row. A blob-delete failure aborts with the row
	// intact rather than leaving an orphaned file.
	if err := s.blobs.Delete(ctx, m.StorageKey); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete manifesto file")
	}
	if err := s.repo.Delete(ctx, m.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete manifesto")
	}

	s.record(ctx, &userID, models.ActionManifestoDeleted, map[string]string{"manifesto_id": m.ID, "phase": string(phase)})
	return nil
}

// Mine lists the caller's manifestos across phases.
func (s *ManifestoService) Mine(ctx context.Context, userID string) ([]models.Manifesto, error) {
	nomination, err := s.nominations.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no nomination found for this user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load nomination")
	}
	items, err := s.repo.ListByNomination(ctx, nomination.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list manifestos")
	}
	return items, nil
}

// ListForNomination lists a nomination's manifestos across phases.
func (s *ManifestoService) ListForNomination(ctx context.Context, nominationID string) ([]models.Manifesto, error) {
	items, err := s.repo.ListByNomination(ctx, nominationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list manifestos")
	}
	return items, nil
}

// ListByPhase lists accepted candidates' manifestos for a phase.
func (s *ManifestoService) ListByPhase(ctx context.Context, rawPhase string) ([]models.ManifestoDetail, error) {
	phase, ok := models.ParsePhase(rawPhase)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown manifesto phase")
	}
	items, err := s.repo.ListDetailByPhase(ctx, phase)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list manifestos")
	}
	return items, nil
}

// SetLocked toggles a manifesto's replaceability. Admin only.
func (s *ManifestoService) SetLocked(ctx context.Context, actorID, manifestoID string, locked bool) (*models.Manifesto, error) {
	m, err := s.repo.FindByID(ctx, manifestoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "manifesto not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manifesto")
	}

	status := models.ManifestoSubmitted
	if locked {
		status = models.ManifestoLocked
	}
	if err := s.repo.UpdateStatus(ctx, m.ID, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update manifesto status")
	}
	m.Status = status

	s.record(ctx, &actorID, models.ActionManifestoLockChanged, map[string]string{"manifesto_id": m.ID, "status": string(status)})
	return m, nil
}

// SignedURL issues a short-lived download token for a manifesto blob.
func (s *ManifestoService) SignedURL(ctx context.Context, manifestoID string) (string, time.Time, error) {
	m, err := s.repo.FindByID(ctx, manifestoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "manifesto not found")
		}
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manifesto")
	}
	token, expiresAt, err := s.signer.Generate(m.ID, m.StorageKey)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return token, expiresAt, nil
}

// OpenSigned resolves a download token to the underlying blob.
func (s *ManifestoService) OpenSigned(token string) (io.ReadCloser, string, error) {
	manifestoID, storageKey, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	rc, err := s.blobs.Open(storageKey)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "manifesto file not found")
	}
	return rc, manifestoID, nil
}

// FetchInline streams a manifesto's file from its stored URL for inline
// viewing. Redirects are followed up to a fixed bound; any upstream failure
// maps to UPSTREAM_ERROR before a single body byte is written.
func (s *ManifestoService) FetchInline(ctx context.Context, manifestoID string) (io.ReadCloser, string, error) {
	m, err := s.repo.FindByID(ctx, manifestoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "manifesto not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manifesto")
	}

	if !strings.HasPrefix(m.FileURL, "http://") && !strings.HasPrefix(m.FileURL, "https://") {
		rc, err := s.blobs.Open(m.StorageKey)
		if err != nil {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "manifesto file not found")
		}
		return rc, "application/pdf", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.FileURL, nil)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrBadGateway.Code, appErrors.ErrBadGateway.Status, "failed to build upstream request")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrBadGateway.Code, appErrors.ErrBadGateway.Status, "upstream fetch failed")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", appErrors.Clone(appErrors.ErrBadGateway, "upstream returned a non-success status")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return resp.Body, contentType, nil
}

// requireNomination resolves the caller's nomination. Any status will do;
// manifestos only require that a nomination exists.
func (s *ManifestoService) requireNomination(ctx context.Context, userID string) (*models.Nomination, error) {
	nomination, err := s.nominations.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no nomination found for this user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load nomination")
	}
	return nomination, nil
}

func (s *ManifestoService) record(ctx context.Context, userID *string, action string, meta map[string]string) {
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

func validateUpload(upload ManifestoUpload, maxSize int64) error {
	if len(upload.Data) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if int64(len(upload.Data)) > maxSize {
		return appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}
	if !strings.HasSuffix(strings.ToLower(upload.FileName), ".pdf") {
		return appErrors.Clone(appErrors.ErrValidation, "only PDF files are accepted")
	}
	return nil
}

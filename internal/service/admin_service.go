package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studentgov/election-api/internal/dto"
	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
	"github.com/studentgov/election-api/pkg/export"
)

type adminConfigRepository interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
	Update(ctx context.Context, cfg *models.SystemConfig) error
}

type adminUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	List(ctx context.Context) ([]models.User, error)
}

type adminStatsRepository interface {
	Collect(ctx context.Context) (*models.Statistics, error)
}

type adminNominationReader interface {
	ListDetail(ctx context.Context) ([]models.NominationDetail, error)
}

type adminSupporterReader interface {
	ListAllDetail(ctx context.Context) ([]models.SupporterRequestDetail, error)
}

type adminManifestoReader interface {
	ListAllDetail(ctx context.Context) ([]models.ManifestoDetail, error)
}

type adminCommentReader interface {
	ListAllDetail(ctx context.Context) ([]models.ReviewerCommentDetail, error)
}

type adminActivityReader interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// ExportFormat selects the export rendering.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult carries rendered export bytes with their media metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AdminService backs the superadmin console: configuration, statistics,
// exports, and role administration.
type AdminService struct {
	configs     adminConfigRepository
	users       adminUserRepository
	stats       adminStatsRepository
	nominations adminNominationReader
	supporters  adminSupporterReader
	manifestos  adminManifestoReader
	comments    adminCommentReader
	activity    adminActivityReader
	gate        cacheInvalidator
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(
	configs adminConfigRepository,
	users adminUserRepository,
	stats adminStatsRepository,
	nominations adminNominationReader,
	supporters adminSupporterReader,
	manifestos adminManifestoReader,
	comments adminCommentReader,
	activity adminActivityReader,
	gate cacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdminService{
		configs:     configs,
		users:       users,
		stats:       stats,
		nominations: nominations,
		supporters:  supporters,
		manifestos:  manifestos,
		comments:    comments,
		activity:    activity,
		gate:        gate,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		validator:   validate,
		logger:      logger,
	}
}

// GetConfig returns the current election configuration.
func (s *AdminService) GetConfig(ctx context.Context) (*models.SystemConfig, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load configuration")
	}
	return cfg, nil
}

// UpdateConfig applies a partial configuration update and invalidates the
// deadline cache so new bounds take effect immediately.
func (s *AdminService) UpdateConfig(ctx context.Context, actorID string, req dto.UpdateConfigRequest) (*models.SystemConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid configuration payload")
	}

	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load configuration")
	}

	applyWindow := func(w *dto.WindowInput, start, end **time.Time) {
		if w == nil {
			return
		}
		*start = w.Start
		*end = w.End
	}
	applyWindow(req.NominationWindow, &cfg.NominationStart, &cfg.NominationEnd)
	applyWindow(req.CampaignerWindow, &cfg.CampaignerStart, &cfg.CampaignerEnd)
	applyWindow(req.ManifestoPhase1, &cfg.ManifestoPhase1Start, &cfg.ManifestoPhase1End)
	applyWindow(req.ManifestoPhase2, &cfg.ManifestoPhase2Start, &cfg.ManifestoPhase2End)
	applyWindow(req.ManifestoFinal, &cfg.ManifestoFinalStart, &cfg.ManifestoFinalEnd)

	if req.MaxProposers != nil {
		cfg.MaxProposers = *req.MaxProposers
	}
	if req.MaxSeconders != nil {
		cfg.MaxSeconders = *req.MaxSeconders
	}
	if req.MaxCampaigners != nil {
		cfg.MaxCampaigners = *req.MaxCampaigners
	}
	if req.Phase1Credentials != nil {
		cfg.Phase1ReviewerCredentials = models.ReviewerCredentials{Username: req.Phase1Credentials.Username, Password: req.Phase1Credentials.Password}
	}
	if req.Phase2Credentials != nil {
		cfg.Phase2ReviewerCredentials = models.ReviewerCredentials{Username: req.Phase2Credentials.Username, Password: req.Phase2Credentials.Password}
	}
	if req.FinalCredentials != nil {
		cfg.FinalReviewerCredentials = models.ReviewerCredentials{Username: req.FinalCredentials.Username, Password: req.FinalCredentials.Password}
	}

	if err := s.configs.Update(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update configuration")
	}
	if s.gate != nil {
		s.gate.Invalidate(ctx)
	}

	s.record(ctx, &actorID, models.ActionConfigUpdated, nil)
	return cfg, nil
}

// Statistics returns counts across the whole election dataset.
func (s *AdminService) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats, err := s.stats.Collect(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect statistics")
	}
	return stats, nil
}

// PromoteAdmin elevates a user to the ADMIN role.
func (s *AdminService) PromoteAdmin(ctx context.Context, actorID string, req dto.PromoteAdminRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid promotion payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role == models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrConflict, "superadmin role cannot be changed")
	}
	if user.Role == models.RoleAdmin {
		return user, nil
	}

	if err := s.users.UpdateRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	user.Role = models.RoleAdmin

	s.record(ctx, &actorID, models.ActionAdminCreated, map[string]string{"user_id": user.ID})
	return user, nil
}

// ListUsers returns all registered users.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// ListActivity returns recent audit entries.
func (s *AdminService) ListActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	items, err := s.activity.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity")
	}
	return items, nil
}

// Export renders one of the export datasets as CSV or PDF.
func (s *AdminService) Export(ctx context.Context, actorID, exportType string, format ExportFormat) (*ExportResult, error) {
	var (
		dataset export.Dataset
		title   string
		err     error
	)
	switch exportType {
	case "candidates":
		dataset, err = s.candidateDataset(ctx)
		title = "Candidate Nominations"
	case "supporters":
		dataset, err = s.supporterDataset(ctx)
		title = "Supporter Requests"
	case "manifestos":
		dataset, err = s.manifestoDataset(ctx)
		title = "Manifesto Submissions"
	case "comments":
		dataset, err = s.commentDataset(ctx)
		title = "Reviewer Comments"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export type")
	}
	if err != nil {
		return nil, err
	}

	var (
		payload     []byte
		contentType string
		extension   string
	)
	switch format {
	case ExportPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
		extension = "pdf"
	case ExportCSV, "":
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
		extension = "csv"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export format")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.record(ctx, &actorID, models.ActionDataExported, map[string]string{"type": exportType, "format": string(format)})

	return &ExportResult{
		FileName:    fmt.Sprintf("election_%s.%s", exportType, extension),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

func (s *AdminService) candidateDataset(ctx context.Context) (export.Dataset, error) {
	items, err := s.nominations.ListDetail(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list nominations")
	}
	dataset := export.Dataset{
		Headers: []string{"Name", "Email", "Roll No", "Department", "Positions", "CPI", "Status"},
	}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":       item.CandidateName,
			"Email":      item.CandidateEmail,
			"Roll No":    item.CandidateRollNo,
			"Department": item.Department,
			"Positions":  strings.Join(item.Positions, "; "),
			"CPI":        fmt.Sprintf("%.2f", item.CPI),
			"Status":     string(item.Status),
		})
	}
	return dataset, nil
}

func (s *AdminService) supporterDataset(ctx context.Context) (export.Dataset, error) {
	items, err := s.supporters.ListAllDetail(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list supporter requests")
	}
	dataset := export.Dataset{
		Headers: []string{"Student", "Student Roll No", "Candidate", "Role", "Status", "Requested At"},
	}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":         item.StudentName,
			"Student Roll No": item.StudentRollNo,
			"Candidate":       item.CandidateName,
			"Role":            string(item.Role),
			"Status":          string(item.Status),
			"Requested At":    item.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return dataset, nil
}

func (s *AdminService) manifestoDataset(ctx context.Context) (export.Dataset, error) {
	items, err := s.manifestos.ListAllDetail(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list manifestos")
	}
	dataset := export.Dataset{
		Headers: []string{"Candidate", "Email", "Phase", "File Name", "File URL", "Status", "Uploaded At"},
	}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Candidate":   item.CandidateName,
			"Email":       item.CandidateEmail,
			"Phase":       string(item.Phase),
			"File Name":   item.FileName,
			"File URL":    item.FileURL,
			"Status":      string(item.Status),
			"Uploaded At": item.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return dataset, nil
}

func (s *AdminService) commentDataset(ctx context.Context) (export.Dataset, error) {
	items, err := s.comments.ListAllDetail(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	dataset := export.Dataset{
		Headers: []string{"Candidate", "Phase", "Reviewer", "Comment", "Created At"},
	}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Candidate":  item.CandidateName,
			"Phase":      string(item.Phase),
			"Reviewer":   item.ReviewerName,
			"Comment":    item.Content,
			"Created At": item.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return dataset, nil
}

func (s *AdminService) record(ctx context.Context, userID *string, action string, meta map[string]string) {
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

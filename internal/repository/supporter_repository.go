package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studentgov/election-api/internal/models"
	"github.com/studentgov/election-api/pkg/errors"
)

// SupporterRepository provides database access for supporter requests.
type SupporterRepository struct {
	db *sqlx.DB
}

// NewSupporterRepository creates a new instance of SupporterRepository.
func NewSupporterRepository(db *sqlx.DB) *SupporterRepository {
	return &SupporterRepository{db: db}
}

const supporterColumns = `id, student_id, candidate_id, nomination_id, role, status, created_at, updated_at`

// Create inserts a new supporter request.
func (r *SupporterRepository) Create(ctx context.Context, req *models.SupporterRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	const query = `INSERT INTO supporter_requests (id, student_id, candidate_id, nomination_id, role, status, created_at, updated_at)
VALUES (:id, :student_id, :candidate_id, :nomination_id, :role, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create supporter request: %w", err)
	}
	return nil
}

// FindByID returns a supporter request by identifier.
func (r *SupporterRepository) FindByID(ctx context.Context, id string) (*models.SupporterRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM supporter_requests WHERE id = $1 LIMIT 1`, supporterColumns)
	var req models.SupporterRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find supporter request by id: %w", err)
	}
	return &req, nil
}

// Exists reports whether the student already has a request for this
// nomination and role, in any status.
func (r *SupporterRepository) Exists(ctx context.Context, studentID, nominationID string, role models.SupporterRole) (bool, error) {
	const query = `SELECT COUNT(*) FROM supporter_requests
WHERE student_id = $1 AND nomination_id = $2 AND role = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, nominationID, role); err != nil {
		return false, fmt.Errorf("check supporter request exists: %w", err)
	}
	return count > 0, nil
}

// AcceptWithinCap transitions a pending request to ACCEPTED only while the
// accepted count for the (nomination, role) pair stays below cap. The
// nomination row is locked for the duration of the transaction so concurrent
// accepts for the same slot serialise on it; locking only the request row
// would let two accepts of different requests count in parallel and both
// slip under the cap. On a full slot the request stays PENDING and
// ErrCapacityExceeded is returned.
func (r *SupporterRepository) AcceptWithinCap(ctx context.Context, id string, cap int) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT id, student_id, candidate_id, nomination_id, role, status, created_at, updated_at
FROM supporter_requests WHERE id = $1 FOR UPDATE`
	var req models.SupporterRequest
	if err = tx.GetContext(ctx, &req, lockQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return errors.ErrNotFound
		}
		return fmt.Errorf("lock supporter request: %w", err)
	}

	if req.Status != models.SupporterPending {
		return errors.ErrConflict
	}

	const nominationLockQuery = `SELECT id FROM nominations WHERE id = $1 FOR UPDATE`
	var nominationID string
	if err = tx.GetContext(ctx, &nominationID, nominationLockQuery, req.NominationID); err != nil {
		if err == sql.ErrNoRows {
			return errors.ErrNotFound
		}
		return fmt.Errorf("lock nomination: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM supporter_requests
WHERE nomination_id = $1 AND role = $2 AND status = $3`
	var accepted int
	if err = tx.GetContext(ctx, &accepted, countQuery, req.NominationID, req.Role, models.SupporterAccepted); err != nil {
		return fmt.Errorf("count accepted supporters: %w", err)
	}
	if accepted >= cap {
		err = errors.ErrCapacityExceeded
		return err
	}

	const updateQuery = `UPDATE supporter_requests SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, id, models.SupporterAccepted, time.Now().UTC()); err != nil {
		return fmt.Errorf("accept supporter request: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpdateStatus changes a supporter request's status without a capacity check.
// Used for rejections and administrative resets.
func (r *SupporterRepository) UpdateStatus(ctx context.Context, id string, status models.SupporterStatus) error {
	const query = `UPDATE supporter_requests SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update supporter request status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountAccepted returns the number of accepted supporters for a nomination
// and role.
func (r *SupporterRepository) CountAccepted(ctx context.Context, nominationID string, role models.SupporterRole) (int, error) {
	const query = `SELECT COUNT(*) FROM supporter_requests
WHERE nomination_id = $1 AND role = $2 AND status = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, nominationID, role, models.SupporterAccepted); err != nil {
		return 0, fmt.Errorf("count accepted supporters: %w", err)
	}
	return count, nil
}

// ListByCandidate returns requests aimed at a candidate, with student fields.
func (r *SupporterRepository) ListByCandidate(ctx context.Context, candidateID string) ([]models.SupporterRequestDetail, error) {
	const query = `SELECT s.id, s.student_id, s.candidate_id, s.nomination_id, s.role, s.status, s.created_at, s.updated_at,
       st.name AS student_name, st.email AS student_email, st.roll_no AS student_roll_no, st.department AS student_department,
       c.name AS candidate_name, c.roll_no AS candidate_roll_no
FROM supporter_requests s
JOIN users st ON st.id = s.student_id
JOIN users c ON c.id = s.candidate_id
WHERE s.candidate_id = $1
ORDER BY s.created_at DESC`
	var items []models.SupporterRequestDetail
	if err := r.db.SelectContext(ctx, &items, query, candidateID); err != nil {
		return nil, fmt.Errorf("list supporter requests by candidate: %w", err)
	}
	return items, nil
}

// ListByStudent returns requests made by a student, with candidate fields.
func (r *SupporterRepository) ListByStudent(ctx context.Context, studentID string) ([]models.SupporterRequestDetail, error) {
	const query = `SELECT s.id, s.student_id, s.candidate_id, s.nomination_id, s.role, s.status, s.created_at, s.updated_at,
       st.name AS student_name, st.email AS student_email, st.roll_no AS student_roll_no, st.department AS student_department,
       c.name AS candidate_name, c.roll_no AS candidate_roll_no
FROM supporter_requests s
JOIN users st ON st.id = s.student_id
JOIN users c ON c.id = s.candidate_id
WHERE s.student_id = $1
ORDER BY s.created_at DESC`
	var items []models.SupporterRequestDetail
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list supporter requests by student: %w", err)
	}
	return items, nil
}

// ListAllDetail returns every supporter request with both parties' fields.
func (r *SupporterRepository) ListAllDetail(ctx context.Context) ([]models.SupporterRequestDetail, error) {
	const query = `SELECT s.id, s.student_id, s.candidate_id, s.nomination_id, s.role, s.status, s.created_at, s.updated_at,
       st.name AS student_name, st.email AS student_email, st.roll_no AS student_roll_no, st.department AS student_department,
       c.name AS candidate_name, c.roll_no AS candidate_roll_no
FROM supporter_requests s
JOIN users st ON st.id = s.student_id
JOIN users c ON c.id = s.candidate_id
ORDER BY s.created_at DESC`
	var items []models.SupporterRequestDetail
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list supporter requests: %w", err)
	}
	return items, nil
}

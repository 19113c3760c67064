package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/studentgov/election-api/internal/models"
)

// StatsRepository aggregates counts for the superadmin statistics view.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Collect gathers counts across all election tables in one pass.
func (r *StatsRepository) Collect(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}

	const userQuery = `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE role = $1) AS candidates,
COUNT(*) FILTER (WHERE role = $2) AS students
FROM users`
	userRow := struct {
		Total      int `db:"total"`
		Candidates int `db:"candidates"`
		Students   int `db:"students"`
	}{}
	if err := r.db.GetContext(ctx, &userRow, userQuery, models.RoleCandidate, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("collect user stats: %w", err)
	}
	stats.Users = models.UserStats{Total: userRow.Total, Candidates: userRow.Candidates, Students: userRow.Students}

	const nominationQuery = `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
COUNT(*) FILTER (WHERE status = 'ACCEPTED') AS accepted,
COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected
FROM nominations`
	nominationRow := struct {
		Total    int `db:"total"`
		Pending  int `db:"pending"`
		Accepted int `db:"accepted"`
		Rejected int `db:"rejected"`
	}{}
	if err := r.db.GetContext(ctx, &nominationRow, nominationQuery); err != nil {
		return nil, fmt.Errorf("collect nomination stats: %w", err)
	}
	stats.Nominations = models.NominationStats{
		Total:    nominationRow.Total,
		Pending:  nominationRow.Pending,
		Accepted: nominationRow.Accepted,
		Rejected: nominationRow.Rejected,
	}

	const supporterQuery = `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'ACCEPTED') AS accepted,
COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
COUNT(*) FILTER (WHERE status = 'ACCEPTED' AND role = 'PROPOSER') AS proposers,
COUNT(*) FILTER (WHERE status = 'ACCEPTED' AND role = 'SECONDER') AS seconders,
COUNT(*) FILTER (WHERE status = 'ACCEPTED' AND role = 'CAMPAIGNER') AS campaigners
FROM supporter_requests`
	supporterRow := struct {
		Total       int `db:"total"`
		Accepted    int `db:"accepted"`
		Pending     int `db:"pending"`
		Proposers   int `db:"proposers"`
		Seconders   int `db:"seconders"`
		Campaigners int `db:"campaigners"`
	}{}
	if err := r.db.GetContext(ctx, &supporterRow, supporterQuery); err != nil {
		return nil, fmt.Errorf("collect supporter stats: %w", err)
	}
	stats.Supporters = models.SupporterStats{
		Total:    supporterRow.Total,
		Accepted: supporterRow.Accepted,
		Pending:  supporterRow.Pending,
		Breakdown: models.SupporterBreakdown{
			Proposers:   supporterRow.Proposers,
			Seconders:   supporterRow.Seconders,
			Campaigners: supporterRow.Campaigners,
		},
	}

	const manifestoQuery = `SELECT
COUNT(*) AS total,
COUNT(*) FILTER (WHERE phase = 'PHASE1') AS phase1,
COUNT(*) FILTER (WHERE phase = 'PHASE2') AS phase2,
COUNT(*) FILTER (WHERE phase = 'FINAL') AS final
FROM manifestos`
	manifestoRow := struct {
		Total  int `db:"total"`
		Phase1 int `db:"phase1"`
		Phase2 int `db:"phase2"`
		Final  int `db:"final"`
	}{}
	if err := r.db.GetContext(ctx, &manifestoRow, manifestoQuery); err != nil {
		return nil, fmt.Errorf("collect manifesto stats: %w", err)
	}
	stats.Manifestos = models.ManifestoStats{
		Total:  manifestoRow.Total,
		Phase1: manifestoRow.Phase1,
		Phase2: manifestoRow.Phase2,
		Final:  manifestoRow.Final,
	}

	const commentQuery = `SELECT COUNT(*) FROM reviewer_comments`
	if err := r.db.GetContext(ctx, &stats.Comments, commentQuery); err != nil {
		return nil, fmt.Errorf("collect comment stats: %w", err)
	}

	return stats, nil
}

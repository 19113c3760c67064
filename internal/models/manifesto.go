package models

import (
	"time"

	"github.com/lib/pq"
)

// ManifestoPhase is a manifesto review stage with its own window and
// reviewer pool.
type ManifestoPhase string

const (
	PhaseOne   ManifestoPhase = "PHASE1"
	PhaseTwo   ManifestoPhase = "PHASE2"
	PhaseFinal ManifestoPhase = "FINAL"
)

// Valid reports whether p is a known phase.
func (p ManifestoPhase) Valid() bool {
	switch p {
	case PhaseOne, PhaseTwo, PhaseFinal:
		return true
	}
	return false
}

// ParsePhase maps the lowercase wire names (phase1, phase2, final) onto the
// canonical enum.
func ParsePhase(raw string) (ManifestoPhase, bool) {
	switch raw {
	case "phase1":
		return PhaseOne, true
	case "phase2":
		return PhaseTwo, true
	case "final":
		return PhaseFinal, true
	}
	return "", false
}

// ManifestoStatus tracks whether a manifesto can still be replaced.
type ManifestoStatus string

const (
	ManifestoSubmitted ManifestoStatus = "SUBMITTED"
	ManifestoLocked    ManifestoStatus = "LOCKED"
)

// Manifesto is an uploaded policy document, unique per (nomination, phase).
type Manifesto struct {
	ID           string          `db:"id" json:"id"`
	NominationID string          `db:"nomination_id" json:"nomination_id"`
	Phase        ManifestoPhase  `db:"phase" json:"phase"`
	FileName     string          `db:"file_name" json:"file_name"`
	FileURL      string          `db:"file_url" json:"file_url"`
	StorageKey   string          `db:"storage_key" json:"-"`
	Status       ManifestoStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// ManifestoDetail joins the owning candidate for reviewer listings and
// exports.
type ManifestoDetail struct {
	Manifesto
	CandidateName   string         `db:"candidate_name" json:"candidate_name"`
	CandidateEmail  string         `db:"candidate_email" json:"candidate_email"`
	CandidateRollNo string         `db:"candidate_roll_no" json:"candidate_roll_no"`
	Positions       pq.StringArray `db:"positions" json:"positions"`
}

// ReviewerComment is feedback attached to a manifesto. Reviewers are not
// full user accounts; the name is the phase-scoped login username.
type ReviewerComment struct {
	ID           string    `db:"id" json:"id"`
	ManifestoID  string    `db:"manifesto_id" json:"manifesto_id"`
	ReviewerName string    `db:"reviewer_name" json:"reviewer_name"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ReviewerCommentDetail joins the manifesto phase and candidate for the
// superadmin export.
type ReviewerCommentDetail struct {
	ReviewerComment
	Phase          ManifestoPhase `db:"phase" json:"phase"`
	CandidateName  string         `db:"candidate_name" json:"candidate_name"`
	CandidateEmail string         `db:"candidate_email" json:"candidate_email"`
}

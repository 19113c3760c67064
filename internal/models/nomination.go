package models

import (
	"time"

	"github.com/lib/pq"
)

// NominationStatus is the canonical nomination decision vocabulary.
type NominationStatus string

const (
	NominationPending  NominationStatus = "PENDING"
	NominationAccepted NominationStatus = "ACCEPTED"
	NominationRejected NominationStatus = "REJECTED"
)

// Valid reports whether s is a known nomination status.
func (s NominationStatus) Valid() bool {
	switch s {
	case NominationPending, NominationAccepted, NominationRejected:
		return true
	}
	return false
}

// Nomination is a candidate's election application. Exactly one per user.
type Nomination struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Positions pq.StringArray   `db:"positions" json:"positions"`
	CPI       float64          `db:"cpi" json:"cpi"`
	Status    NominationStatus `db:"status" json:"status"`
	Locked    bool             `db:"locked" json:"locked"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// NominationDetail joins the owning candidate onto the nomination for
// listings and the admin console.
type NominationDetail struct {
	Nomination
	CandidateName   string `db:"candidate_name" json:"candidate_name"`
	CandidateEmail  string `db:"candidate_email" json:"candidate_email"`
	CandidateRollNo string `db:"candidate_roll_no" json:"candidate_roll_no"`
	Department      string `db:"department" json:"department"`
}

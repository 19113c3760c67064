package models

import "time"

// SupporterRole is a peer-endorsement category with its own cap and window.
type SupporterRole string

const (
	RoleProposer   SupporterRole = "PROPOSER"
	RoleSeconder   SupporterRole = "SECONDER"
	RoleCampaigner SupporterRole = "CAMPAIGNER"
)

// Valid reports whether r is a known supporter role.
func (r SupporterRole) Valid() bool {
	switch r {
	case RoleProposer, RoleSeconder, RoleCampaigner:
		return true
	}
	return false
}

// SupporterStatus tracks the lifecycle of a supporter request.
type SupporterStatus string

const (
	SupporterPending  SupporterStatus = "PENDING"
	SupporterAccepted SupporterStatus = "ACCEPTED"
	SupporterRejected SupporterStatus = "REJECTED"
)

// SupporterRequest links a student to a candidate's nomination in a role.
// Unique per (student, nomination, role).
type SupporterRequest struct {
	ID           string          `db:"id" json:"id"`
	StudentID    string          `db:"student_id" json:"student_id"`
	CandidateID  string          `db:"candidate_id" json:"candidate_id"`
	NominationID string          `db:"nomination_id" json:"nomination_id"`
	Role         SupporterRole   `db:"role" json:"role"`
	Status       SupporterStatus `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// SupporterRequestDetail joins the student and candidate identities for
// listings.
type SupporterRequestDetail struct {
	SupporterRequest
	StudentName       string `db:"student_name" json:"student_name"`
	StudentEmail      string `db:"student_email" json:"student_email"`
	StudentRollNo     string `db:"student_roll_no" json:"student_roll_no"`
	StudentDepartment string `db:"student_department" json:"student_department"`
	CandidateName     string `db:"candidate_name" json:"candidate_name"`
	CandidateRollNo   string `db:"candidate_roll_no" json:"candidate_roll_no"`
}

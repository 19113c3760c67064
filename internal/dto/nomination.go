package dto

// CreateNominationRequest files a candidate's nomination.
type CreateNominationRequest struct {
	Positions []string `json:"positions" validate:"required,min=1,dive,required"`
	CPI       float64  `json:"cpi" validate:"required,gte=0,lte=10"`
}

// UpdateNominationRequest edits a still-pending nomination.
type UpdateNominationRequest struct {
	Positions []string `json:"positions" validate:"required,min=1,dive,required"`
	CPI       float64  `json:"cpi" validate:"required,gte=0,lte=10"`
}

// NominationDecisionRequest records an admin status decision. PENDING
// reverts an earlier decision.
type NominationDecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING ACCEPTED REJECTED"`
}

// CreateSupporterRequest asks a candidate to endorse their nomination in a
// role.
type CreateSupporterRequest struct {
	NominationID string `json:"nomination_id" validate:"required,uuid4"`
	Role         string `json:"role" validate:"required,oneof=PROPOSER SECONDER CAMPAIGNER"`
}

// SupporterDecisionRequest is the candidate's accept or reject of a pending
// supporter request.
type SupporterDecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

// CreateCommentRequest attaches reviewer feedback to a manifesto.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}

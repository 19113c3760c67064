package dto

import "time"

// ReviewerCredentialsInput sets one phase's reviewer login.
type ReviewerCredentialsInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateConfigRequest partially updates the election configuration. Nil
// fields are left untouched; window bounds may be cleared by sending an
// explicit null inside a set Window.
type UpdateConfigRequest struct {
	NominationWindow  *WindowInput              `json:"nomination_window"`
	CampaignerWindow  *WindowInput              `json:"campaigner_window"`
	ManifestoPhase1   *WindowInput              `json:"manifesto_phase1_window"`
	ManifestoPhase2   *WindowInput              `json:"manifesto_phase2_window"`
	ManifestoFinal    *WindowInput              `json:"manifesto_final_window"`
	MaxProposers      *int                      `json:"max_proposers" validate:"omitempty,gte=0"`
	MaxSeconders      *int                      `json:"max_seconders" validate:"omitempty,gte=0"`
	MaxCampaigners    *int                      `json:"max_campaigners" validate:"omitempty,gte=0"`
	Phase1Credentials *ReviewerCredentialsInput `json:"phase1_reviewer_credentials"`
	Phase2Credentials *ReviewerCredentialsInput `json:"phase2_reviewer_credentials"`
	FinalCredentials  *ReviewerCredentialsInput `json:"final_reviewer_credentials"`
}

// WindowInput carries a pair of optional bounds. A nil bound closes the
// window on that side.
type WindowInput struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// PromoteAdminRequest elevates an existing user to ADMIN.
type PromoteAdminRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// ManifestoLockRequest toggles a manifesto's replaceability.
type ManifestoLockRequest struct {
	Locked bool `json:"locked"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReviewerCredentials are the phase-scoped login credentials stored on the
// system config row as JSONB.
type ReviewerCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Value implements driver.Valuer.
func (c ReviewerCredentials) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *ReviewerCredentials) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = ReviewerCredentials{}
		return nil
	}
	return fmt.Errorf("unsupported reviewer credentials type %T", src)
}

// SystemConfig is the single persisted election configuration row. Absent
// bounds mean the window never opens. The nomination window also governs
// proposer and seconder requests.
type SystemConfig struct {
	ID string `db:"id" json:"id"`

	NominationStart      *time.Time `db:"nomination_start" json:"nomination_start"`
	NominationEnd        *time.Time `db:"nomination_end" json:"nomination_end"`
	CampaignerStart      *time.Time `db:"campaigner_start" json:"campaigner_start"`
	CampaignerEnd        *time.Time `db:"campaigner_end" json:"campaigner_end"`
	ManifestoPhase1Start *time.Time `db:"manifesto_phase1_start" json:"manifesto_phase1_start"`
	ManifestoPhase1End   *time.Time `db:"manifesto_phase1_end" json:"manifesto_phase1_end"`
	ManifestoPhase2Start *time.Time `db:"manifesto_phase2_start" json:"manifesto_phase2_start"`
	ManifestoPhase2End   *time.Time `db:"manifesto_phase2_end" json:"manifesto_phase2_end"`
	ManifestoFinalStart  *time.Time `db:"manifesto_final_start" json:"manifesto_final_start"`
	ManifestoFinalEnd    *time.Time `db:"manifesto_final_end" json:"manifesto_final_end"`

	MaxProposers   int `db:"max_proposers" json:"max_proposers"`
	MaxSeconders   int `db:"max_seconders" json:"max_seconders"`
	MaxCampaigners int `db:"max_campaigners" json:"max_campaigners"`

	Phase1ReviewerCredentials ReviewerCredentials `db:"phase1_reviewer_credentials" json:"phase1_reviewer_credentials"`
	Phase2ReviewerCredentials ReviewerCredentials `db:"phase2_reviewer_credentials" json:"phase2_reviewer_credentials"`
	FinalReviewerCredentials  ReviewerCredentials `db:"final_reviewer_credentials" json:"final_reviewer_credentials"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Default supporter caps applied when the config row is lazily created.
const (
	DefaultMaxProposers   = 5
	DefaultMaxSeconders   = 5
	DefaultMaxCampaigners = 10
)

// CapForRole resolves a supporter role to its configured cap. The mapping is
// explicit rather than derived from field names.
func (c *SystemConfig) CapForRole(role SupporterRole) int {
	switch role {
	case RoleProposer:
		return c.MaxProposers
	case RoleSeconder:
		return c.MaxSeconders
	case RoleCampaigner:
		return c.MaxCampaigners
	}
	return 0
}

// CredentialsForPhase resolves a manifesto phase to its reviewer credentials.
func (c *SystemConfig) CredentialsForPhase(phase ManifestoPhase) ReviewerCredentials {
	switch phase {
	case PhaseOne:
		return c.Phase1ReviewerCredentials
	case PhaseTwo:
		return c.Phase2ReviewerCredentials
	case PhaseFinal:
		return c.FinalReviewerCredentials
	}
	return ReviewerCredentials{}
}

package models

import "time"

// Activity action tags appended on every lifecycle mutation.
const (
	ActionUserRegistered           = "USER_REGISTERED"
	ActionUserLogin                = "USER_LOGIN"
	ActionAdminCreated             = "ADMIN_CREATED"
	ActionNominationCreated        = "NOMINATION_CREATED"
	ActionNominationUpdated        = "NOMINATION_UPDATED"
	ActionNominationStatusChanged  = "NOMINATION_STATUS_CHANGED"
	ActionSupporterRequestCreated  = "SUPPORTER_REQUEST_CREATED"
	ActionSupporterRequestAccepted = "SUPPORTER_REQUEST_ACCEPTED"
	ActionSupporterRequestRejected = "SUPPORTER_REQUEST_REJECTED"
	ActionManifestoUploaded        = "MANIFESTO_UPLOADED"
	ActionManifestoUpdated         = "MANIFESTO_UPDATED"
	ActionManifestoDeleted         = "MANIFESTO_DELETED"
	ActionManifestoLockChanged     = "MANIFESTO_LOCK_CHANGED"
	ActionReviewerLogin            = "REVIEWER_LOGIN"
	ActionReviewerCommentAdded     = "REVIEWER_COMMENT_ADDED"
	ActionConfigUpdated            = "SYSTEM_CONFIG_UPDATED"
	ActionDataExported             = "DATA_EXPORTED"
)

// ActivityLog is an append-only audit record. Writes are best-effort and
// never abort the triggering mutation.
type ActivityLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	Metadata  []byte    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

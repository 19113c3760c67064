package models

// Statistics is the superadmin console snapshot of election activity.
type Statistics struct {
	Users       UserStats       `json:"users"`
	Nominations NominationStats `json:"nominations"`
	Supporters  SupporterStats  `json:"supporters"`
	Manifestos  ManifestoStats  `json:"manifestos"`
	Comments    int             `json:"comments"`
}

type UserStats struct {
	Total      int `json:"total"`
	Candidates int `json:"candidates"`
	Students   int `json:"students"`
}

type NominationStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

type SupporterStats struct {
	Total     int                `json:"total"`
	Accepted  int                `json:"accepted"`
	Pending   int                `json:"pending"`
	Breakdown SupporterBreakdown `json:"breakdown"`
}

// SupporterBreakdown counts accepted supporters per role.
type SupporterBreakdown struct {
	Proposers   int `json:"proposers"`
	Seconders   int `json:"seconders"`
	Campaigners int `json:"campaigners"`
}

type ManifestoStats struct {
	Total  int `json:"total"`
	Phase1 int `json:"phase1"`
	Phase2 int `json:"phase2"`
	Final  int `json:"final"`
}

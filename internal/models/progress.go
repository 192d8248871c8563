package models

// LabJob is one pending "analyze evidence" request.
type LabJob struct {
	EvidenceID    string `json:"evidenceId"`
	TimeToProcess int    `json:"timeToProcess"`
}

// LabState is the persisted state of the evidence lab. At most one job is current.
type LabState struct {
	// CaseID is the case whose evidence is in the pipeline.
	CaseID    string   `json:"caseId,omitempty"`
	Current   *LabJob  `json:"current,omitempty"`
	Remaining int      `json:"remaining"`
	Queue     []LabJob `json:"queue,omitempty"`
}

// TimerState is the persisted countdown of one case attempt.
type TimerState struct {
	CaseID string `json:"caseId,omitempty"`
	// Remaining is nil when the case has no limit or the timer has been stopped.
	Remaining *int `json:"remaining"`
	Active    bool `json:"active"`
	// Expired marks that the countdown reached zero during this attempt.
	Expired bool `json:"expired"`
}

// Progress is everything besides the case roster that must survive a restart.
type Progress struct {
	ActiveCaseID string
	NewsUnread   bool
	Lab          LabState
	Timer        TimerState
}

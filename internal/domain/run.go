package domain

import "time"

// RunStatus is the outcome of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// SourceImpact counts how often the reinforcement and penalty tables and
// the contextual rules touched the rows of one source.
type SourceImpact struct {
	Rows                int `json:"rows"`
	RowsWithAdd         int `json:"rows_with_add"`
	RowsWithNeg         int `json:"rows_with_neg"`
	RowsAdjustedByRules int `json:"rows_adjusted_by_rules"`
}

// RunOutputs lists the artifacts a run wrote. Empty paths were not written.
type RunOutputs struct {
	Dataset   string             `json:"dataset,omitempty"`
	ByChannel map[Channel]string `json:"by_channel,omitempty"`
	ChangeLog string             `json:"change_log,omitempty"`
	Report    string             `json:"report,omitempty"`
	Workbook  string             `json:"workbook,omitempty"`
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	ID               string                  `json:"id"`
	Status           RunStatus               `json:"status"`
	Error            string                  `json:"error,omitempty"`
	StartedAt        time.Time               `json:"started_at"`
	FinishedAt       time.Time               `json:"finished_at"`
	ProcessingTime   string                  `json:"processing_time"`
	Total            int                     `json:"total"`
	ByChannel        map[Channel]int         `json:"by_channel"`
	ByCategory       map[Category]int        `json:"by_category"`
	DictionaryImpact map[string]SourceImpact `json:"dictionary_impact"`
	ChangesByRule    map[RepairRule]int      `json:"changes_by_rule"`
	Outputs          RunOutputs              `json:"outputs"`
}

// Tally fills the per channel and per category counts from tickets.
func (r *RunReport) Tally(tickets []Ticket) {
	r.Total = len(tickets)
	r.ByChannel = make(map[Channel]int)
	r.ByCategory = make(map[Category]int)
	for _, t := range tickets {
		r.ByChannel[t.Channel]++
		r.ByCategory[t.Category]++
	}
}

// TallyChanges fills the per rule change counts.
func (r *RunReport) TallyChanges(changes []ChangeLogEntry) {
	r.ChangesByRule = make(map[RepairRule]int)
	for _, c := range changes {
		r.ChangesByRule[c.Rule]++
	}
}

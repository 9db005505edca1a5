package domain

// RepairRule tags the rule that changed a close timestamp.
type RepairRule string

const (
	RuleFutureCloseCleared          RepairRule = "future_close_cleared"
	RuleOpenWithCloseCleared        RepairRule = "open_with_close_cleared"
	RuleCloseBeforeCreationCleared  RepairRule = "close_before_creation_cleared"
	RuleCloseBeforeFirstFixedToMax  RepairRule = "close_before_first_fixed_to_max"
	RuleCloseBeforeFirstNoCandidate RepairRule = "close_before_first_cleared_no_candidate"
	RuleCloseBeforeFirstOpenState   RepairRule = "close_before_first_cleared_open_state"
	RuleClosedWithoutCloseImputed   RepairRule = "closed_without_close_imputed"
)

// RepairRules lists every tag in pipeline order.
var RepairRules = []RepairRule{
	RuleFutureCloseCleared,
	RuleOpenWithCloseCleared,
	RuleCloseBeforeCreationCleared,
	RuleCloseBeforeFirstFixedToMax,
	RuleCloseBeforeFirstNoCandidate,
	RuleCloseBeforeFirstOpenState,
	RuleClosedWithoutCloseImputed,
}

// ChangeLogEntry is an immutable audit record of one close timestamp
// mutation. Empty before/after means absent.
type ChangeLogEntry struct {
	TicketID    string     `json:"ticket_id"`
	Rule        RepairRule `json:"rule"`
	CloseBefore string     `json:"close_before"`
	CloseAfter  string     `json:"close_after"`
}

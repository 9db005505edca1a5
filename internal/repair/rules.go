package repair

import (
	"time"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
)

// state is the part of a ticket the rules read. Only close is ever
// rewritten.
type state struct {
	status  domain.TicketStatus
	created timestamp.Value
	first   timestamp.Value
	close   timestamp.Value
}

// rule inspects a state and returns the close value it wants, the tag to
// record and whether it fired.
type rule func(s state, now time.Time) (timestamp.Value, domain.RepairRule, bool)

// pipeline is the order of a repair pass. Every rule sees the close value
// left by the previous one. Imputation runs last so that a close cleared
// by an earlier rule can be recovered from the other timestamps.
var pipeline = []rule{
	clearFutureClose,
	clearCloseOnOpenTicket,
	clearCloseBeforeCreation,
	fixCloseBeforeFirstReply,
	imputeMissingClose,
}

var absent = timestamp.Value{}

func clearFutureClose(s state, now time.Time) (timestamp.Value, domain.RepairRule, bool) {
	if s.close.Valid && s.close.Time.After(now) {
		return absent, domain.RuleFutureCloseCleared, true
	}
	return s.close, "", false
}

func clearCloseOnOpenTicket(s state, _ time.Time) (timestamp.Value, domain.RepairRule, bool) {
	if s.status.IsOpen() && s.close.Valid {
		return absent, domain.RuleOpenWithCloseCleared, true
	}
	return s.close, "", false
}

func clearCloseBeforeCreation(s state, _ time.Time) (timestamp.Value, domain.RepairRule, bool) {
	if s.close.Before(s.created) {
		return absent, domain.RuleCloseBeforeCreationCleared, true
	}
	return s.close, "", false
}

func fixCloseBeforeFirstReply(s state, now time.Time) (timestamp.Value, domain.RepairRule, bool) {
	if !s.close.Before(s.first) {
		return s.close, "", false
	}
	if !s.status.IsClosed() {
		return absent, domain.RuleCloseBeforeFirstOpenState, true
	}
	if target, ok := closeCandidate(s, now); ok {
		return target, domain.RuleCloseBeforeFirstFixedToMax, true
	}
	return absent, domain.RuleCloseBeforeFirstNoCandidate, true
}

func imputeMissingClose(s state, now time.Time) (timestamp.Value, domain.RepairRule, bool) {
	if !s.status.IsClosed() || s.close.Valid {
		return s.close, "", false
	}
	if target, ok := closeCandidate(s, now); ok {
		return target, domain.RuleClosedWithoutCloseImputed, true
	}
	return s.close, "", false
}

// closeCandidate is the latest of first reply and creation. A candidate in
// the future is refused, otherwise the next pass would clear it again.
func closeCandidate(s state, now time.Time) (timestamp.Value, bool) {
	target := timestamp.Latest(s.first, s.created)
	if !target.Valid || target.Time.After(now) {
		return absent, false
	}
	return target, true
}

func sameValue(a, b timestamp.Value) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Time.Equal(b.Time)
}

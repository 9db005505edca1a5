package normalize

import (
	"regexp"
	"strings"

	"github.com/spec-kit/ticket-dataset/internal/domain"
)

var documentationPattern = regexp.MustCompile(`(?i)\b(?:documentation|manual|knowledge\s*base|kb|documentaci[oó]n)\b`)

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// channelFirstSource maps the first Kaggle export's channel labels.
func channelFirstSource(v string) domain.Channel {
	switch lower(v) {
	case "chat", "self-service", "self service":
		return domain.ChannelSupportPortal
	case "mail", "email":
		return domain.ChannelEmail
	case "phone":
		return domain.ChannelInternalPortal
	}
	return domain.ChannelSupportPortal
}

// channelSecondSource maps the second Kaggle export's channel labels.
func channelSecondSource(v string) domain.Channel {
	switch lower(v) {
	case "email":
		return domain.ChannelEmail
	case "phone":
		return domain.ChannelInternalPortal
	case "chat", "social media":
		return domain.ChannelSupportPortal
	}
	return domain.ChannelSupportPortal
}

// channelCanonical accepts channels already in the dataset catalogue and
// otherwise falls back to the second export's labels.
func channelCanonical(v string) domain.Channel {
	up := domain.Channel(strings.ToUpper(strings.TrimSpace(v)))
	for _, c := range domain.Channels {
		if c == up {
			return c
		}
	}
	return channelSecondSource(v)
}

// MentionsDocumentation reports whether text talks about documentation or
// a knowledge base.
func MentionsDocumentation(text string) bool {
	return documentationPattern.MatchString(text)
}

// MapPriority folds source priorities onto the four dataset levels.
func MapPriority(v string) domain.TicketPriority {
	switch lower(v) {
	case "critical", "critica", "crítica", "p1":
		return domain.TicketPriorityCritical
	case "high", "alta", "urgent", "p2":
		return domain.TicketPriorityHigh
	case "medium", "media", "normal", "p3":
		return domain.TicketPriorityMedium
	case "low", "baja", "minor", "p4":
		return domain.TicketPriorityLow
	}
	return domain.TicketPriorityMedium
}

// MapStatus folds source states onto the five dataset states.
func MapStatus(v string) domain.TicketStatus {
	switch lower(v) {
	case "open", "abierto", "pendiente", "new":
		return domain.TicketStatusOpen
	case "in progress", "en progreso", "en curso", "working":
		return domain.TicketStatusInProgress
	case "resolved", "resuelto":
		return domain.TicketStatusResolved
	case "closed", "cerrado", "done":
		return domain.TicketStatusClosed
	case "reopened", "reabierto":
		return domain.TicketStatusReopened
	}
	return domain.TicketStatusOpen
}

// MapSLAMet cleans spreadsheet artefacts and maps yes/no variants to
// "true", "false" or "".
func MapSLAMet(v string) string {
	s := lower(v)
	s = strings.ReplaceAll(s, `="`, "")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.TrimLeft(s, "'")
	switch s {
	case "true", "verdadero", "v", "1", "yes", "y":
		return "true"
	case "false", "falso", "f", "0", "no", "n":
		return "false"
	}
	return ""
}

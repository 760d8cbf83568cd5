package priority

import (
	"strings"

	"github.com/propflow/commshub/internal/record"
)

// urgentLexicon covers emergency and outage language. A single hit
// anywhere in the body marks the conversation urgent.
var urgentLexicon = []string{
	"urgent",
	"emergency",
	"asap",
	"immediately",
	"leak",
	"flood",
	"pipe burst",
	"burst pipe",
	"no heat",
	"no hot water",
	"no power",
	"power out",
	"gas smell",
	"smell gas",
	"fire",
	"break in",
	"break-in",
	"broken into",
	"lockout",
	"locked out",
}

// importantLexicon covers scheduling and inquiry language.
var importantLexicon = []string{
	"tour",
	"showing",
	"viewing",
	"schedule",
	"reschedule",
	"appointment",
	"application",
	"apply",
	"available",
	"availability",
	"interested",
	"move in",
	"move-in",
	"lease",
	"deposit",
	"pricing",
	"how much",
}

// Classify assigns a triage priority from message content alone. It is
// deterministic and pure: identical input always yields the identical
// label.
//
// An inbound message from a property owner is at least important even
// without a keyword hit; an owner reaching out always warrants priority
// handling.
func Classify(body string, direction record.Direction, kind record.ContactKind) record.Priority {
	lower := strings.ToLower(body)
	if containsAny(lower, urgentLexicon) {
		return record.PriorityUrgent
	}
	if containsAny(lower, importantLexicon) {
		return record.PriorityImportant
	}
	if direction == record.Inbound && kind == record.KindOwner {
		return record.PriorityImportant
	}
	return record.PriorityNormal
}

// ForConversation classifies a conversation by its summary record,
// honoring an upstream promotional annotation: promo email that would
// otherwise be normal drops to low. The low tier is never computed
// here, only respected.
func ForConversation(latest record.CommunicationRecord) record.Priority {
	p := Classify(latest.Body, latest.Direction, latest.Identity.Kind)
	if p == record.PriorityNormal && latest.Promotional {
		return record.PriorityLow
	}
	return p
}

func containsAny(lower string, lexicon []string) bool {
	for _, term := range lexicon {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

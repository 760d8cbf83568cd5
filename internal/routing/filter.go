package routing

import (
	"github.com/propflow/commshub/internal/record"
)

// ViewKind selects which mailbox partition a query targets.
type ViewKind string

const (
	// ViewAll shows every record; privileged viewers only.
	ViewAll ViewKind = "all"
	// ViewMailbox shows one user's mailbox ("mine", or a named peer's).
	ViewMailbox ViewKind = "mailbox"
	// ViewUnassigned shows records matched by no assignment and no
	// recognized line.
	ViewUnassigned ViewKind = "unassigned"
)

// View is a routing target: a kind plus the viewer it scopes to.
type View struct {
	Kind     ViewKind
	ViewerID string
}

// All returns the privileged everything view.
func All() View { return View{Kind: ViewAll} }

// Mailbox returns the view of one user's mailbox.
func Mailbox(viewerID string) View { return View{Kind: ViewMailbox, ViewerID: viewerID} }

// Unassigned returns the orphaned-records view.
func Unassigned() View { return View{Kind: ViewUnassigned} }

// Table indexes the phone/line assignment directory by normalized line
// number. It is rebuilt from directory data on each refresh.
type Table struct {
	byLine map[string]record.PhoneAssignment
}

// NewTable builds a routing table from assignment directory entries.
func NewTable(assignments []record.PhoneAssignment) *Table {
	t := &Table{byLine: make(map[string]record.PhoneAssignment, len(assignments))}
	for _, a := range assignments {
		if a.PhoneNumber == "" {
			continue
		}
		if _, ok := t.byLine[a.PhoneNumber]; !ok {
			t.byLine[a.PhoneNumber] = a
		}
	}
	return t
}

// Visible reports whether a record belongs in the given view.
//
// For a mailbox view the record is included when it is explicitly
// assigned to the viewer, arrived on the viewer's personal line, or
// arrived on a company line (shared org-wide). A record on another
// user's personal line is excluded. A record carrying no routing
// metadata at all is a legacy record, visible to everyone.
func (t *Table) Visible(r record.CommunicationRecord, v View) bool {
	switch v.Kind {
	case ViewAll:
		return true

	case ViewUnassigned:
		if r.AssigneeID != "" {
			return false
		}
		if r.Line == "" {
			return true
		}
		_, recognized := t.byLine[r.Line]
		return !recognized

	case ViewMailbox:
		// An explicit assignment is the most specific routing signal.
		if v.ViewerID != "" && r.AssigneeID == v.ViewerID {
			return true
		}
		if r.Line != "" {
			a, ok := t.byLine[r.Line]
			if !ok {
				// A line nobody claims routes to no mailbox.
				return false
			}
			if a.PhoneType == record.PhoneCompany {
				return true
			}
			return a.UserID == v.ViewerID
		}
		// No line and no assignment: legacy record, visible to everyone.
		return r.AssigneeID == ""
	}
	return false
}

// Filter returns the records from recs that belong in view.
func (t *Table) Filter(recs []record.CommunicationRecord, v View) []record.CommunicationRecord {
	var out []record.CommunicationRecord
	for _, r := range recs {
		if t.Visible(r, v) {
			out = append(out, r)
		}
	}
	return out
}

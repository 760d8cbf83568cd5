package identity

import "github.com/propflow/commshub/internal/record"

// Entry is one contact in a domain directory (lead, owner or tenant).
type Entry struct {
	Kind        record.ContactKind
	ID          string
	DisplayName string
	Phone       string
	Email       string
}

// Directory is an immutable snapshot of the lead/owner/tenant
// cross-reference directories, indexed by normalized phone and email.
// The caller rebuilds it from fresh directory data on each refresh; the
// resolver only reads it.
type Directory struct {
	byPhone map[string]Entry
	byEmail map[string]Entry
	byID    map[record.ContactKind]map[string]Entry
}

// NewDirectory builds a snapshot from directory entries. Phone and
// email keys are normalized during indexing; later entries never
// displace earlier ones for the same key.
func NewDirectory(entries []Entry) *Directory {
	d := &Directory{
		byPhone: make(map[string]Entry),
		byEmail: make(map[string]Entry),
		byID:    make(map[record.ContactKind]map[string]Entry),
	}
	for _, e := range entries {
		if p := NormalizePhone(e.Phone); p != "" {
			if _, ok := d.byPhone[p]; !ok {
				d.byPhone[p] = e
			}
		}
		if m := NormalizeEmail(e.Email); m != "" {
			if _, ok := d.byEmail[m]; !ok {
				d.byEmail[m] = e
			}
		}
		if e.ID != "" {
			kinds := d.byID[e.Kind]
			if kinds == nil {
				kinds = make(map[string]Entry)
				d.byID[e.Kind] = kinds
			}
			kinds[e.ID] = e
		}
	}
	return d
}

// LookupPhone returns the directory entry for a normalized phone key.
func (d *Directory) LookupPhone(normalized string) (Entry, bool) {
	if d == nil || normalized == "" {
		return Entry{}, false
	}
	e, ok := d.byPhone[normalized]
	return e, ok
}

// LookupEmail returns the directory entry for an email address.
func (d *Directory) LookupEmail(email string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.byEmail[NormalizeEmail(email)]
	return e, ok
}

// LookupID returns the directory entry for a foreign key within one
// contact kind.
func (d *Directory) LookupID(kind record.ContactKind, id string) (Entry, bool) {
	if d == nil || id == "" {
		return Entry{}, false
	}
	e, ok := d.byID[kind][id]
	return e, ok
}

package identity

import "github.com/propflow/commshub/internal/record"

// Resolver attributes raw records to canonical contact identities using
// a directory snapshot. Resolution is a pure function over the snapshot:
// no lookups are issued and nothing is cached between calls.
type Resolver struct {
	dir *Directory
}

// NewResolver creates a resolver over a directory snapshot.
func NewResolver(dir *Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve maps a raw record to a contact identity. Precedence, first
// match wins:
//
//  1. explicit foreign key hint (lead/owner)
//  2. dual-speaker transcript content (spoken name/phone are ground
//     truth and override placeholder metadata)
//  3. adapter match metadata (tenant ref, matched external name)
//  4. directory match on normalized phone or email
//  5. adapter free-text fields, else unknown
//
// Resolution never fails; an unmatched record comes back with
// kind=unknown and whatever display fields the adapter observed.
func (r *Resolver) Resolve(raw record.RawRecord) record.ContactIdentity {
	phone := NormalizePhone(raw.ContactRef.Phone)
	email := NormalizeEmail(raw.ContactRef.Email)

	switch h := raw.Hint.(type) {
	case record.LeadRef:
		return r.fromRef(record.KindLead, h.ID, h.DisplayName, phone, email)
	case record.OwnerRef:
		return r.fromRef(record.KindOwner, h.ID, h.DisplayName, phone, email)
	}

	if id, ok := r.fromTranscript(raw, phone, email); ok {
		return id
	}

	switch h := raw.Hint.(type) {
	case record.TenantRef:
		return r.fromRef(record.KindTenant, h.ID, h.DisplayName, phone, email)
	case record.ExternalName:
		p := phone
		if hp := NormalizePhone(h.Phone); hp != "" {
			p = hp
		}
		return record.ContactIdentity{
			Kind:            record.KindExternal,
			DisplayName:     h.Name,
			NormalizedPhone: p,
			NormalizedEmail: email,
		}
	}

	if e, ok := r.dir.LookupPhone(phone); ok {
		return identityFromEntry(e, phone, email)
	}
	if e, ok := r.dir.LookupEmail(email); ok {
		return identityFromEntry(e, phone, email)
	}

	return fallbackIdentity(raw, phone, email)
}

// fromRef resolves an explicit foreign key against the directory, using
// the hint's own display fields when the directory has no entry for it.
func (r *Resolver) fromRef(kind record.ContactKind, id, name, phone, email string) record.ContactIdentity {
	if e, ok := r.dir.LookupID(kind, id); ok {
		return identityFromEntry(e, phone, email)
	}
	if name == "" {
		name = "Unknown"
	}
	return record.ContactIdentity{
		Kind:            kind,
		DisplayName:     name,
		NormalizedPhone: phone,
		NormalizedEmail: email,
		SourceID:        id,
	}
}

func (r *Resolver) fromTranscript(raw record.RawRecord, phone, email string) (record.ContactIdentity, bool) {
	body := raw.Body
	if h, ok := raw.Hint.(record.Transcript); ok && h.Raw != "" {
		body = h.Raw
	} else if !IsTranscript(body) {
		return record.ContactIdentity{}, false
	}

	tc := ParseTranscript(body)
	if tc.Name == "" && tc.Phone == "" {
		return record.ContactIdentity{}, false
	}

	p := tc.Phone
	if p == "" {
		p = phone
	}
	id := record.ContactIdentity{
		Kind:            record.KindExternal,
		NormalizedPhone: p,
		NormalizedEmail: email,
	}
	if e, ok := r.dir.LookupPhone(p); ok {
		id.Kind = e.Kind
		id.SourceID = e.ID
		id.DisplayName = e.DisplayName
	}
	// The spoken name beats both the directory name and any placeholder
	// the provider attached.
	if tc.Name != "" {
		id.DisplayName = tc.Name
	}
	if id.DisplayName == "" {
		id.DisplayName = raw.ContactRef.Name
	}
	if id.DisplayName == "" {
		id.DisplayName = "Unknown"
	}
	return id, true
}

func identityFromEntry(e Entry, phone, email string) record.ContactIdentity {
	p := phone
	if p == "" {
		p = NormalizePhone(e.Phone)
	}
	m := email
	if m == "" {
		m = NormalizeEmail(e.Email)
	}
	return record.ContactIdentity{
		Kind:            e.Kind,
		DisplayName:     e.DisplayName,
		NormalizedPhone: p,
		NormalizedEmail: m,
		SourceID:        e.ID,
	}
}

func fallbackIdentity(raw record.RawRecord, phone, email string) record.ContactIdentity {
	name := raw.ContactRef.Name
	kind := record.KindExternal
	switch {
	case raw.Channel == record.ChannelDraft && name == "":
		kind = record.KindDraft
		name = "Draft"
	case name == "" && phone == "" && email == "":
		kind = record.KindUnknown
		name = "Unknown"
	case name == "":
		// A phone or email with no name still identifies somebody.
		name = raw.ContactRef.Phone
		if name == "" {
			name = email
		}
	}
	return record.ContactIdentity{
		Kind:            kind,
		DisplayName:     name,
		NormalizedPhone: phone,
		NormalizedEmail: email,
	}
}

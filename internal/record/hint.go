package record

// IdentityHint is adapter-specific identity metadata attached to a raw
// record. It is a closed set of variants so resolution precedence can
// switch exhaustively instead of probing loosely-shaped optional fields.
type IdentityHint interface {
	isIdentityHint()
}

// LeadRef links a record to a lead by foreign key.
type LeadRef struct {
	ID          string
	DisplayName string
}

// OwnerRef links a record to a property owner by foreign key.
type OwnerRef struct {
	ID          string
	DisplayName string
}

// TenantRef links a record to a tenant by foreign key.
type TenantRef struct {
	ID          string
	DisplayName string
}

// ExternalName carries a free-text sender name the source matched,
// with an optional phone number.
type ExternalName struct {
	Name  string
	Phone string
}

// Transcript marks a record whose body is a recorded voice-assistant
// call transcript; the caller's identity is extracted from the raw text.
type Transcript struct {
	Raw string
}

func (LeadRef) isIdentityHint()      {}
func (OwnerRef) isIdentityHint()     {}
func (TenantRef) isIdentityHint()    {}
func (ExternalName) isIdentityHint() {}
func (Transcript) isIdentityHint()   {}

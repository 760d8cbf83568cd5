package record

// Channel identifies the communication channel a record arrived on.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelCall  Channel = "call"
	ChannelDraft Channel = "draft"
)

// Direction indicates whether a record was received or sent.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// ContactKind classifies which domain directory a contact belongs to.
type ContactKind string

const (
	KindLead     ContactKind = "lead"
	KindOwner    ContactKind = "owner"
	KindTenant   ContactKind = "tenant"
	KindPersonal ContactKind = "personal"
	KindExternal ContactKind = "external"
	KindDraft    ContactKind = "draft"
	KindUnknown  ContactKind = "unknown"
)

// Priority is the triage urgency assigned to a conversation.
type Priority string

const (
	PriorityUrgent    Priority = "urgent"
	PriorityImportant Priority = "important"
	PriorityNormal    Priority = "normal"
	PriorityLow       Priority = "low"
)

// Rank returns the sort weight of a priority; lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityImportant:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Status is the per-conversation workflow state.
type Status string

const (
	StatusOpen     Status = "open"
	StatusSnoozed  Status = "snoozed"
	StatusDone     Status = "done"
	StatusAwaiting Status = "awaiting"
	StatusArchived Status = "archived"
)

// Valid reports whether s is one of the known workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusSnoozed, StatusDone, StatusAwaiting, StatusArchived:
		return true
	}
	return false
}

// PhoneType marks how a routing line is assigned.
type PhoneType string

const (
	PhonePersonal PhoneType = "personal"
	PhoneCompany  PhoneType = "company"
)

// ContactIdentity is the resolved canonical identity of a record's contact.
type ContactIdentity struct {
	Kind            ContactKind
	DisplayName     string
	NormalizedPhone string
	NormalizedEmail string
	SourceID        string
}

// ContactRef carries the free-text contact fields an adapter observed.
type ContactRef struct {
	Name  string
	Phone string
	Email string
}

// RawRecord is one message/call/draft snapshot as fetched from a source
// store, before identity resolution. Records are read-only: the engine
// never mutates them, and every refresh supersedes the previous set.
type RawRecord struct {
	ID         string
	Channel    Channel
	Direction  Direction
	Body       string
	Subject    string
	Timestamp  int64 // unix ms
	ContactRef ContactRef
	Hint       IdentityHint
	// Line is the raw number of the org phone line the record arrived on,
	// empty when the source has no line concept (email, drafts).
	Line string
	// AssigneeID is an explicit per-record assignment, when the source
	// tracks one.
	AssigneeID string
	// Promotional is an upstream annotation (newsletter/promo email
	// classification); the engine respects it but never computes it.
	Promotional bool
	// Resolved marks a record its source already considers handled.
	Resolved bool
}

// CommunicationRecord is a RawRecord after identity resolution.
type CommunicationRecord struct {
	ID          string
	Channel     Channel
	Direction   Direction
	Body        string
	Subject     string
	Timestamp   int64
	Identity    ContactIdentity
	Line        string // normalized
	AssigneeID  string
	Promotional bool
	Resolved    bool
}

// PhoneAssignment maps an org phone line to its owning user.
type PhoneAssignment struct {
	UserID      string
	PhoneNumber string // normalized
	PhoneType   PhoneType
}

// ConversationStatusRecord is the persisted workflow state for one
// conversation key as seen by one viewer. At most one record exists per
// (Key, ViewerID) pair.
type ConversationStatusRecord struct {
	Key          string
	ViewerID     string
	Status       Status
	Priority     Priority // advisory; recomputed on read
	SnoozedUntil int64    // unix ms, 0 when not snoozed
	UpdatedAt    int64    // unix ms
}

package routing

import (
	"testing"

	"github.com/propflow/commshub/internal/record"
)

func testTable() *Table {
	return NewTable([]record.PhoneAssignment{
		{UserID: "user-a", PhoneNumber: "4045550001", PhoneType: record.PhonePersonal},
		{UserID: "user-b", PhoneNumber: "4045550002", PhoneType: record.PhonePersonal},
		{UserID: "user-a", PhoneNumber: "4045559000", PhoneType: record.PhoneCompany},
	})
}

func TestVisibleMailbox(t *testing.T) {
	tbl := testTable()
	tests := []struct {
		name string
		rec  record.CommunicationRecord
		view View
		want bool
	}{
		{"own personal line", record.CommunicationRecord{Line: "4045550001"}, Mailbox("user-a"), true},
		{"peer personal line excluded", record.CommunicationRecord{Line: "4045550001"}, Mailbox("user-b"), false},
		{"company line shared", record.CommunicationRecord{Line: "4045559000"}, Mailbox("user-b"), true},
		{"explicit assignment", record.CommunicationRecord{AssigneeID: "user-b"}, Mailbox("user-b"), true},
		{"assigned to someone else", record.CommunicationRecord{AssigneeID: "user-a"}, Mailbox("user-b"), false},
		{"legacy record visible to everyone", record.CommunicationRecord{}, Mailbox("user-b"), true},
		{"unclaimed line routes nowhere", record.CommunicationRecord{Line: "4045550777"}, Mailbox("user-a"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.Visible(tt.rec, tt.view); got != tt.want {
				t.Errorf("Visible(%+v, %+v) = %v, want %v", tt.rec, tt.view, got, tt.want)
			}
		})
	}
}

// A record on A's personal line shows up for A and in the all view, and
// never in any other user's mailbox.
func TestRoutingIsolation(t *testing.T) {
	tbl := testTable()
	rec := record.CommunicationRecord{ID: "r1", Line: "4045550001"}

	if !tbl.Visible(rec, Mailbox("user-a")) {
		t.Error("record on A's personal line missing from A's mailbox")
	}
	if !tbl.Visible(rec, All()) {
		t.Error("record missing from all view")
	}
	for _, other := range []string{"user-b", "user-c", ""} {
		if tbl.Visible(rec, Mailbox(other)) {
			t.Errorf("record on A's personal line leaked into %q's mailbox", other)
		}
	}
}

func TestVisibleUnassigned(t *testing.T) {
	tbl := testTable()
	tests := []struct {
		name string
		rec  record.CommunicationRecord
		want bool
	}{
		{"no metadata", record.CommunicationRecord{}, true},
		{"unrecognized line", record.CommunicationRecord{Line: "4045550777"}, true},
		{"recognized line", record.CommunicationRecord{Line: "4045550001"}, false},
		{"assigned", record.CommunicationRecord{AssigneeID: "user-a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.Visible(tt.rec, Unassigned()); got != tt.want {
				t.Errorf("Visible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	tbl := testTable()
	recs := []record.CommunicationRecord{
		{ID: "mine", Line: "4045550001"},
		{ID: "peers", Line: "4045550002"},
		{ID: "shared", Line: "4045559000"},
		{ID: "legacy"},
	}
	got := tbl.Filter(recs, Mailbox("user-a"))
	want := map[string]bool{"mine": true, "shared": true, "legacy": true}
	if len(got) != len(want) {
		t.Fatalf("filtered %d records, want %d", len(got), len(want))
	}
	for _, r := range got {
		if !want[r.ID] {
			t.Errorf("unexpected record %q in user-a's mailbox", r.ID)
		}
	}
}

package triage

import (
	"testing"
	"time"

	"github.com/propflow/commshub/internal/record"
)

func TestInitial(t *testing.T) {
	tests := []struct {
		name   string
		latest record.CommunicationRecord
		want   record.Status
	}{
		{"inbound unresolved", record.CommunicationRecord{Direction: record.Inbound}, record.StatusOpen},
		{"inbound already resolved", record.CommunicationRecord{Direction: record.Inbound, Resolved: true}, record.StatusDone},
		{"outbound", record.CommunicationRecord{Direction: record.Outbound}, record.StatusDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initial(tt.latest); got != tt.want {
				t.Errorf("Initial = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEffectiveNoRecord(t *testing.T) {
	got := Effective(nil, record.CommunicationRecord{Direction: record.Inbound}, time.Now())
	if got != record.StatusOpen {
		t.Errorf("Effective(nil, inbound) = %s, want open", got)
	}
}

func TestEffectiveSnoozeExpiry(t *testing.T) {
	now := time.UnixMilli(100_000)
	rec := &record.ConversationStatusRecord{
		Key:          "4045550100",
		Status:       record.StatusSnoozed,
		SnoozedUntil: now.UnixMilli() - 1000,
		UpdatedAt:    50_000,
	}
	if got := Effective(rec, record.CommunicationRecord{}, now); got != record.StatusOpen {
		t.Errorf("expired snooze displays %s, want open", got)
	}
	// Still snoozed while the deadline is in the future.
	rec.SnoozedUntil = now.UnixMilli() + 1000
	if got := Effective(rec, record.CommunicationRecord{}, now); got != record.StatusSnoozed {
		t.Errorf("live snooze displays %s, want snoozed", got)
	}
}

func TestEffectiveAutoReopen(t *testing.T) {
	now := time.UnixMilli(200_000)
	done := &record.ConversationStatusRecord{
		Key:       "4045550100",
		Status:    record.StatusDone,
		UpdatedAt: 100_000,
	}

	// Inbound reply one second after the conversation was closed out.
	reply := record.CommunicationRecord{Direction: record.Inbound, Timestamp: 101_000}
	if got := Effective(done, reply, now); got != record.StatusOpen {
		t.Errorf("reply after done displays %s, want open", got)
	}
	// The persisted record is untouched.
	if done.Status != record.StatusDone {
		t.Errorf("persisted status mutated to %s", done.Status)
	}

	// An outbound message after done does not reopen.
	ours := record.CommunicationRecord{Direction: record.Outbound, Timestamp: 101_000}
	if got := Effective(done, ours, now); got != record.StatusDone {
		t.Errorf("outbound after done displays %s, want done", got)
	}

	// An inbound message older than the close does not reopen.
	old := record.CommunicationRecord{Direction: record.Inbound, Timestamp: 99_000}
	if got := Effective(done, old, now); got != record.StatusDone {
		t.Errorf("old inbound displays %s, want done", got)
	}
}

func TestMutationBuilders(t *testing.T) {
	now := time.UnixMilli(500_000)

	done := MarkDone("k", "v1", now)
	if done.Status != record.StatusDone || done.UpdatedAt != 500_000 {
		t.Errorf("MarkDone = %+v", done)
	}

	sn := Snooze("k", "v1", 2*time.Hour, now)
	if sn.Status != record.StatusSnoozed {
		t.Errorf("Snooze status = %s", sn.Status)
	}
	if want := now.Add(2 * time.Hour).UnixMilli(); sn.SnoozedUntil != want {
		t.Errorf("SnoozedUntil = %d, want %d", sn.SnoozedUntil, want)
	}

	re := Reopen("k", "v1", now)
	if re.Status != record.StatusOpen {
		t.Errorf("Reopen status = %s", re.Status)
	}
}

func TestSet(t *testing.T) {
	now := time.Now()
	rec, err := Set("k", "v1", record.StatusAwaiting, now)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != record.StatusAwaiting {
		t.Errorf("Set status = %s", rec.Status)
	}
	if _, err := Set("k", "v1", record.Status("bogus"), now); err == nil {
		t.Error("Set should reject unknown status")
	}
}

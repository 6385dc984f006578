package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseStatusAcceptsCodeAndLabel(t *testing.T) {
	for _, raw := range []string{"contacted", "ติดต่อแล้ว", " contacted "} {
		got, ok := ParseStatus(raw)
		if !ok || got != StatusContacted {
			t.Fatalf("ParseStatus(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}

func TestEveryTransitionIsAllowed(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			if !CanTransition(from, to) {
				t.Fatalf("expected %s -> %s to be allowed", from, to)
			}
		}
	}
	if CanTransition(StatusWon, Status("bogus")) {
		t.Fatalf("expected unknown target to be rejected")
	}
}

func TestEarlyAndTerminal(t *testing.T) {
	if !StatusNew.IsEarly() || !StatusUncalled.IsEarly() || StatusContacted.IsEarly() {
		t.Fatalf("unexpected early classification")
	}
	if !StatusWon.IsTerminal() || !StatusLost.IsTerminal() || StatusFollowUp.IsTerminal() {
		t.Fatalf("unexpected terminal classification")
	}
}

func TestDescribeChange(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	cases := []struct {
		name    string
		old     Snapshot
		next    Snapshot
		want    string
		changed bool
	}{
		{
			name:    "status only",
			old:     Snapshot{Status: StatusNew, AssignedTo: &a, AssigneeName: "Nok"},
			next:    Snapshot{Status: StatusContacted, AssignedTo: &a, AssigneeName: "Nok"},
			want:    `เปลี่ยนสถานะเป็น "ติดต่อแล้ว"`,
			changed: true,
		},
		{
			name:    "assignee only",
			old:     Snapshot{Status: StatusNew, AssignedTo: &a},
			next:    Snapshot{Status: StatusNew, AssignedTo: &b, AssigneeName: "Ploy"},
			want:    `มอบหมายงานให้ "Ploy"`,
			changed: true,
		},
		{
			name:    "both",
			old:     Snapshot{Status: StatusNew},
			next:    Snapshot{Status: StatusWon, AssignedTo: &b, AssigneeName: "Ploy"},
			want:    `เปลี่ยนสถานะเป็น "สำเร็จ", มอบหมายงานให้ "Ploy"`,
			changed: true,
		},
		{
			name:    "unassigned",
			old:     Snapshot{Status: StatusNew, AssignedTo: &a},
			next:    Snapshot{Status: StatusNew},
			want:    `มอบหมายงานให้ "N/A"`,
			changed: true,
		},
		{
			name: "nothing",
			old:  Snapshot{Status: StatusLost, AssignedTo: &a},
			next: Snapshot{Status: StatusLost, AssignedTo: &a},
		},
	}

	for _, tc := range cases {
		got, changed := DescribeChange(tc.old, tc.next)
		if changed != tc.changed || got != tc.want {
			t.Fatalf("%s: got (%q, %v), want (%q, %v)", tc.name, got, changed, tc.want, tc.changed)
		}
	}
}

func TestCallDescription(t *testing.T) {
	got := CallDescription(StatusFollowUp, " โทรกลับพรุ่งนี้ ")
	if got != "ติดต่อลูกค้า: ติดตามผล - โทรกลับพรุ่งนี้" {
		t.Fatalf("unexpected call description: %q", got)
	}
}

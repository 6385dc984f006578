package followup

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateCalendarOffsets(t *testing.T) {
	leadID, staffID := uuid.New(), uuid.New()
	service := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	got := Generate(leadID, staffID, service, "Test")
	if len(got) != 5 {
		t.Fatalf("expected 5 appointments, got %d", len(got))
	}

	wantDates := []string{"2024-03-11", "2024-04-10", "2024-06-10", "2024-09-10", "2025-03-10"}
	wantTitles := []string{
		"ติดตามผล 1 วัน - Test",
		"ติดตามผล 1 เดือน - Test",
		"ติดตามผล 3 เดือน - Test",
		"ติดตามผล 6 เดือน - Test",
		"ติดตามผล 1 ปี - Test",
	}
	for i, a := range got {
		if d := a.Start.Format("2006-01-02"); d != wantDates[i] {
			t.Fatalf("appointment %d: expected %s, got %s", i, wantDates[i], d)
		}
		if a.End.Sub(a.Start) != time.Hour {
			t.Fatalf("appointment %d: expected 1h span, got %s", i, a.End.Sub(a.Start))
		}
		if a.Title != wantTitles[i] {
			t.Fatalf("appointment %d: unexpected title %q", i, a.Title)
		}
		if a.LeadID != leadID || a.StaffID != staffID {
			t.Fatalf("appointment %d: lead/staff not carried", i)
		}
	}
}

func TestGenerateKeepsTimeOfDayAndLocation(t *testing.T) {
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	service := time.Date(2024, 1, 31, 14, 30, 0, 0, bangkok)

	got := Generate(uuid.New(), uuid.New(), service, "x")
	// Jan 31 + 1 month normalises to Mar 2 in a leap year.
	if d := got[1].Start.Format("2006-01-02 15:04"); d != "2024-03-02 14:30" {
		t.Fatalf("unexpected +1 month start: %s", d)
	}
	if got[0].Start.Location() != bangkok {
		t.Fatalf("expected location to be preserved")
	}
}

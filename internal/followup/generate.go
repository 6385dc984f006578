// Package followup books the after-care calls that follow a closed sale and
// reminds staff of the ones due each day.
package followup

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Duration is the fixed length of every follow-up appointment.
const Duration = time.Hour

type offset struct {
	label         string
	years, months int
	days          int
}

// Calendar offsets, applied with AddDate so month and year boundaries follow
// the calendar rather than a fixed number of hours.
var offsets = []offset{
	{label: "ติดตามผล 1 วัน", days: 1},
	{label: "ติดตามผล 1 เดือน", months: 1},
	{label: "ติดตามผล 3 เดือน", months: 3},
	{label: "ติดตามผล 6 เดือน", months: 6},
	{label: "ติดตามผล 1 ปี", years: 1},
}

// Appointment is one generated calendar entry.
type Appointment struct {
	LeadID  uuid.UUID `json:"leadId"`
	StaffID uuid.UUID `json:"staffId"`
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Generate returns the five follow-ups for a service date. It is pure: the
// same input always yields the same batch.
func Generate(leadID, staffID uuid.UUID, serviceDate time.Time, leadLabel string) []Appointment {
	out := make([]Appointment, 0, len(offsets))
	for _, o := range offsets {
		start := serviceDate.AddDate(o.years, o.months, o.days)
		out = append(out, Appointment{
			LeadID:  leadID,
			StaffID: staffID,
			Title:   fmt.Sprintf("%s - %s", o.label, leadLabel),
			Start:   start,
			End:     start.Add(Duration),
		})
	}
	return out
}

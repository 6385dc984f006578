package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadflow_backend/internal/events"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

func leadPayload(l events.LeadSummary, actor string) Payload {
	return Payload{
		"leadName": l.Name,
		"phone":    l.Phone,
		"source":   l.Source,
		"program":  l.Program,
		"status":   l.StatusLabel,
		"assignee": l.AssigneeName,
		"actor":    actor,
	}
}

func idlePayload(e events.IdleLeadsDetected, loc *time.Location) Payload {
	lines := make([]string, 0, len(e.Leads))
	for i, item := range e.Leads {
		line := fmt.Sprintf("%d. %s (%s) %s ค้าง %s", i+1, item.Lead.Name, item.Lead.Phone, item.Lead.StatusLabel, humanDuration(item.Age))
		if item.Lead.AssigneeName != "" {
			line += " ผู้รับผิดชอบ: " + item.Lead.AssigneeName
		}
		if item.SuggestedAssignee != "" {
			line += " → แนะนำ: " + item.SuggestedAssignee
		}
		lines = append(lines, line)
	}
	return Payload{
		"count":     strconv.Itoa(len(e.Leads)),
		"threshold": humanDuration(e.Threshold),
		"items":     strings.Join(lines, "\n"),
		"checkedAt": e.OccurredAt().In(loc).Format(dateTimeLayout),
	}
}

func followUpPayload(e events.FollowUpsDue, loc *time.Location) Payload {
	lines := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		lines = append(lines, fmt.Sprintf("%s %s (%s)", item.StartTime.In(loc).Format("15:04"), item.Title, orDefault(item.StaffName, "N/A")))
	}
	return Payload{
		"day":   e.Day.In(loc).Format(dateLayout),
		"count": strconv.Itoa(len(e.Items)),
		"items": strings.Join(lines, "\n"),
	}
}

func birthdayPayload(e events.BirthdayReport, loc *time.Location) Payload {
	format := func(leads []events.BirthdayLead) string {
		lines := make([]string, 0, len(leads))
		for _, l := range leads {
			lines = append(lines, fmt.Sprintf("- %s (%s) %s", l.Name, l.Phone, l.Birthday.Format("02/01")))
		}
		return strings.Join(lines, "\n")
	}
	return Payload{
		"day":            e.Day.In(loc).Format(dateLayout),
		"birthdaysToday": format(e.Today),
		"birthdaysMonth": format(e.ThisMonth),
		"countToday":     strconv.Itoa(len(e.Today)),
		"countMonth":     strconv.Itoa(len(e.ThisMonth)),
	}
}

// humanDuration renders whole days, hours or minutes in Thai.
func humanDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d วัน", int(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%d ชั่วโมง", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d นาที", int(d/time.Minute))
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

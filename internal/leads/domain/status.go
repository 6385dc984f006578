// Package domain holds the lead lifecycle rules: status values, their display
// labels, the transition table and the change descriptions written to the
// activity log.
package domain

import "strings"

// Status is a stored lead status code.
type Status string

const (
	StatusNew       Status = "new"
	StatusUncalled  Status = "uncalled"
	StatusContacted Status = "contacted"
	StatusFollowUp  Status = "follow_up"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

// Statuses lists every status in funnel order.
var Statuses = []Status{StatusNew, StatusUncalled, StatusContacted, StatusFollowUp, StatusWon, StatusLost}

var labels = map[Status]string{
	StatusNew:       "ใหม่",
	StatusUncalled:  "ยังไม่ได้โทร",
	StatusContacted: "ติดต่อแล้ว",
	StatusFollowUp:  "ติดตามผล",
	StatusWon:       "สำเร็จ",
	StatusLost:      "ยกเลิก",
}

// ParseStatus accepts either a status code or its display label.
func ParseStatus(raw string) (Status, bool) {
	value := strings.TrimSpace(raw)
	if _, ok := labels[Status(value)]; ok {
		return Status(value), true
	}
	for status, label := range labels {
		if label == value {
			return status, true
		}
	}
	return "", false
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Label is the Thai display label shown to staff and in notifications.
func (s Status) Label() string {
	if label, ok := labels[s]; ok {
		return label
	}
	return string(s)
}

// IsEarly reports whether the lead has not been worked yet. Idle escalation
// and unread counts only look at early leads.
func (s Status) IsEarly() bool {
	return s == StatusNew || s == StatusUncalled
}

// IsTerminal reports whether the sales funnel is closed. Terminal leads stay
// editable.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

// EarlyStatuses are the statuses IsEarly accepts.
func EarlyStatuses() []Status {
	return []Status{StatusNew, StatusUncalled}
}

// CanTransition reports whether a manual update may move a lead from one
// status to another. Every pair is allowed so staff can correct data-entry
// mistakes; the table exists so a guarded edge can be added in one place.
func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}

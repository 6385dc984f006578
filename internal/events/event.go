// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadflow_backend/platform/events"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// InMemoryBus is the process-local bus both binaries run.
type InMemoryBus = events.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadSummary is the display-ready view of a lead carried by lead events.
// Labels are already localised so subscribers never reach back into the store.
type LeadSummary struct {
	LeadID       uuid.UUID `json:"leadId"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Source       string    `json:"source,omitempty"`
	Program      string    `json:"program,omitempty"`
	StatusLabel  string    `json:"statusLabel"`
	AssigneeName string    `json:"assigneeName,omitempty"`
}

// LeadCreated is published after a lead is stored and its creation entry appended.
type LeadCreated struct {
	BaseEvent
	Lead      LeadSummary `json:"lead"`
	ActorName string      `json:"actorName"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published when a write changed the status or the assignee.
type LeadUpdated struct {
	BaseEvent
	Lead                LeadSummary `json:"lead"`
	PreviousStatusLabel string      `json:"previousStatusLabel"`
	Change              string      `json:"change"`
	ActorName           string      `json:"actorName"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// LeadDeleted is published synchronously, before the row is removed.
type LeadDeleted struct {
	BaseEvent
	Lead      LeadSummary `json:"lead"`
	ActorName string      `json:"actorName"`
}

func (e LeadDeleted) EventName() string { return "leads.lead.deleted" }

// =============================================================================
// Escalation Events
// =============================================================================

// IdleKind distinguishes the two escalation tiers.
type IdleKind string

const (
	IdleKindStale    IdleKind = "stale"
	IdleKindReassign IdleKind = "reassign"
)

// IdleLead is one entry in an idle-lead report.
type IdleLead struct {
	Lead              LeadSummary   `json:"lead"`
	Age               time.Duration `json:"age"`
	SuggestedAssignee string        `json:"suggestedAssignee,omitempty"`
}

// IdleLeadsDetected is published once per check run that found idle leads.
type IdleLeadsDetected struct {
	BaseEvent
	Kind      IdleKind      `json:"kind"`
	Threshold time.Duration `json:"threshold"`
	Leads     []IdleLead    `json:"leads"`
}

func (e IdleLeadsDetected) EventName() string { return "escalation.idle_leads.detected" }

// =============================================================================
// Follow-up & Report Events
// =============================================================================

// DueFollowUp is a calendar entry starting on the reported day.
type DueFollowUp struct {
	Title     string    `json:"title"`
	LeadName  string    `json:"leadName"`
	StaffName string    `json:"staffName"`
	StartTime time.Time `json:"startTime"`
}

// FollowUpsDue carries the follow-up appointments for one local day.
type FollowUpsDue struct {
	BaseEvent
	Day   time.Time     `json:"day"`
	Items []DueFollowUp `json:"items"`
}

func (e FollowUpsDue) EventName() string { return "followup.reminders.due" }

// BirthdayLead is one lead in the birthday report.
type BirthdayLead struct {
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Birthday time.Time `json:"birthday"`
}

// BirthdayReport lists leads whose birthday is today and later this month.
type BirthdayReport struct {
	BaseEvent
	Day       time.Time      `json:"day"`
	Today     []BirthdayLead `json:"today"`
	ThisMonth []BirthdayLead `json:"thisMonth"`
}

func (e BirthdayReport) EventName() string { return "reports.birthdays" }

// TestNotification is requested by an admin to check channel wiring.
type TestNotification struct {
	BaseEvent
	RequestedBy string `json:"requestedBy"`
}

func (e TestNotification) EventName() string { return "notification.test" }

// Package notification delivers workflow events to the team's external
// channels. Delivery is fire-and-forget: failures are logged and counted but
// never reach the action that triggered them.
package notification

// Kind names one notification template.
type Kind string

const (
	KindNewLead          Kind = "new_lead"
	KindUpdateStatus     Kind = "update_status"
	KindDeleteLead       Kind = "delete_lead"
	KindIdleLeads        Kind = "idle_leads"
	KindReassignLeads    Kind = "reassign_leads"
	KindFollowUpReminder Kind = "followup_reminder"
	KindBirthdayReport   Kind = "birthday_report"
	KindTest             Kind = "test"
)

// Kinds lists every kind a template must exist for.
var Kinds = []Kind{
	KindNewLead,
	KindUpdateStatus,
	KindDeleteLead,
	KindIdleLeads,
	KindReassignLeads,
	KindFollowUpReminder,
	KindBirthdayReport,
	KindTest,
}

// IsDigest reports whether the kind is a batched report. Only digests go to
// email.
func (k Kind) IsDigest() bool {
	switch k {
	case KindIdleLeads, KindReassignLeads, KindFollowUpReminder, KindBirthdayReport:
		return true
	default:
		return false
	}
}

// Payload is a flat record of display strings.
type Payload map[string]string

// Message is a rendered notification handed to every channel.
type Message struct {
	Kind    Kind    `json:"kind"`
	Subject string  `json:"subject"`
	Text    string  `json:"text"`
	Payload Payload `json:"payload"`
}

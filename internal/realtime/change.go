// Package realtime pushes record changes to connected sessions. Sessions get
// a "refresh" hint and re-fetch their own working set; nothing is patched
// field by field.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	staffdomain "leadflow_backend/internal/staff/domain"

	"github.com/google/uuid"
)

// Channel is the Postgres notification channel written by the row triggers.
const Channel = "record_changes"

const (
	TableLeads = "leads"
	TableStaff = "staff"
	// TableAll tells a session to refetch everything it shows.
	TableAll = "*"
)

// Op is the row operation that produced a change.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Change is one decoded row notification.
type Change struct {
	Table       string     `json:"table"`
	Op          Op         `json:"op"`
	RecordID    uuid.UUID  `json:"id"`
	OldAssignee *uuid.UUID `json:"old_assigned_to"`
	NewAssignee *uuid.UUID `json:"new_assigned_to"`
}

// DecodeChange parses a trigger payload.
func DecodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("decode record change: %w", err)
	}
	c.Op = Op(strings.ToUpper(string(c.Op)))
	switch c.Table {
	case TableLeads, TableStaff:
	default:
		return Change{}, fmt.Errorf("unexpected table %q in record change", c.Table)
	}
	switch c.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return Change{}, fmt.Errorf("unexpected op %q in record change", c.Op)
	}
	return c, nil
}

// Session identifies who is watching.
type Session struct {
	UserID uuid.UUID
	Role   staffdomain.Role
}

// Relevant reports whether a session must refresh for c. Staff changes go to
// everyone since any view may render assignee pickers. Admins see every lead
// change; everyone else only changes touching leads assigned to them before
// or after the write.
func Relevant(s Session, c Change) bool {
	if c.Table == TableStaff {
		return true
	}
	if s.Role == staffdomain.RoleAdmin {
		return true
	}

	is := func(id *uuid.UUID) bool { return id != nil && *id == s.UserID }
	switch c.Op {
	case OpInsert:
		return is(c.NewAssignee)
	case OpUpdate:
		return is(c.OldAssignee) || is(c.NewAssignee)
	case OpDelete:
		return is(c.OldAssignee)
	default:
		return false
	}
}

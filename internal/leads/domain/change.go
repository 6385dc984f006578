package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// CreatedDescription is the first entry of every lead's history.
	CreatedDescription = "สร้างลีดใหม่"

	unassignedName = "N/A"
)

// Snapshot is the part of a lead the activity diff looks at.
type Snapshot struct {
	Status       Status
	AssignedTo   *uuid.UUID
	AssigneeName string
}

// DescribeChange renders the status and assignee differences between old and
// next. It returns false when neither changed, in which case no activity
// entry is written.
func DescribeChange(old, next Snapshot) (string, bool) {
	parts := make([]string, 0, 2)
	if old.Status != next.Status {
		parts = append(parts, fmt.Sprintf(`เปลี่ยนสถานะเป็น "%s"`, next.Status.Label()))
	}
	if !sameAssignee(old.AssignedTo, next.AssignedTo) {
		name := strings.TrimSpace(next.AssigneeName)
		if next.AssignedTo == nil || name == "" {
			name = unassignedName
		}
		parts = append(parts, fmt.Sprintf(`มอบหมายงานให้ "%s"`, name))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// CallDescription is the extra entry written when a call outcome is logged.
func CallDescription(status Status, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		note = "-"
	}
	return fmt.Sprintf("ติดต่อลูกค้า: %s - %s", status.Label(), note)
}

func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

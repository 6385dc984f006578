package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskIdleCheck         = "leads.idle.check"
	TaskIdleReassign      = "leads.idle.reassign"
	TaskFollowUpReminders = "followups.remind"
	TaskBirthdayReport    = "birthdays.report"
)

// SlotPayload identifies the run a task belongs to: an interval slot for the
// idle checks or a local date for the daily reports. Two replicas computing
// the same slot produce byte-identical payloads, which is what asynq's unique
// lock keys on.
type SlotPayload struct {
	Slot string `json:"slot"`
}

func NewSlotTask(taskType, slot string) (*asynq.Task, error) {
	data, err := json.Marshal(SlotPayload{Slot: slot})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

func ParseSlotPayload(task *asynq.Task) (SlotPayload, error) {
	var payload SlotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SlotPayload{}, err
	}
	return payload, nil
}

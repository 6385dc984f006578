package transport

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Request DTOs
type CreateLeadRequest struct {
	Name         string         `json:"name" validate:"required,min=1,max=200"`
	Phone        string         `json:"phone" validate:"omitempty,max=30"`
	Source       string         `json:"source" validate:"omitempty,max=100"`
	Program      string         `json:"program" validate:"omitempty,max=200"`
	Status       string         `json:"status" validate:"omitempty,leadstatus"`
	AssignedTo   OptionalUUID   `json:"assignedTo" validate:"-"`
	Value        FlexibleNumber `json:"value" validate:"-"`
	Notes        string         `json:"notes" validate:"omitempty,max=5000"`
	ReceivedDate string         `json:"receivedDate" validate:"omitempty,datetime=2006-01-02"`
	Birthday     string         `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Address      string         `json:"address" validate:"omitempty,max=500"`
}

// UpdateLeadRequest is a partial update. Absent fields keep their value.
// An empty birthday clears it. ServiceDate, sent with a won status,
// schedules the follow-up batch.
type UpdateLeadRequest struct {
	Name         *string        `json:"name" validate:"omitempty,min=1,max=200"`
	Phone        *string        `json:"phone" validate:"omitempty,max=30"`
	Source       *string        `json:"source" validate:"omitempty,max=100"`
	Program      *string        `json:"program" validate:"omitempty,max=200"`
	Status       *string        `json:"status" validate:"omitempty,leadstatus"`
	AssignedTo   OptionalUUID   `json:"assignedTo" validate:"-"`
	Value        FlexibleNumber `json:"value" validate:"-"`
	Notes        *string        `json:"notes" validate:"omitempty,max=5000"`
	ReceivedDate *string        `json:"receivedDate" validate:"omitempty,datetime=2006-01-02"`
	Birthday     *string        `json:"birthday" validate:"omitempty,max=10"`
	Address      *string        `json:"address" validate:"omitempty,max=500"`
	ServiceDate  *string        `json:"serviceDate" validate:"omitempty,max=40"`
}

type LogCallRequest struct {
	Status string `json:"status" validate:"required,leadstatus"`
	Note   string `json:"note" validate:"omitempty,max=2000"`
}

type ListLeadsRequest struct {
	Status string `form:"status" validate:"omitempty,leadstatus"`
	Search string `form:"search" validate:"omitempty,max=100"`
	From   string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

type CreateProgramRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// Response DTOs
type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Source         string     `json:"source"`
	Program        string     `json:"program"`
	Status         string     `json:"status"`
	StatusLabel    string     `json:"statusLabel"`
	AssignedTo     *uuid.UUID `json:"assignedTo"`
	AssigneeName   string     `json:"assigneeName,omitempty"`
	Value          float64    `json:"value"`
	Notes          string     `json:"notes"`
	ReceivedDate   string     `json:"receivedDate"`
	Birthday       string     `json:"birthday,omitempty"`
	Address        string     `json:"address"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastUpdateDate time.Time  `json:"lastUpdateDate"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type BirthdaysResponse struct {
	Today     []LeadResponse `json:"today"`
	ThisMonth []LeadResponse `json:"thisMonth"`
}

type ProgramResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardResponse carries the role-specific headline numbers. Fields that
// do not apply to the caller's role are omitted.
type DashboardResponse struct {
	TotalLeads     int     `json:"totalLeads"`
	NewLeadsToday  *int    `json:"newLeadsToday,omitempty"`
	UncalledLeads  *int    `json:"uncalledLeads,omitempty"`
	WonValue       float64 `json:"wonValue"`
	TeamSize       *int    `json:"teamSize,omitempty"`
	ConversionRate int     `json:"conversionRate"`
}

type PerformanceResponse struct {
	StaffID        uuid.UUID `json:"staffId"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	TotalLeads     int       `json:"totalLeads"`
	Won            int       `json:"won"`
	Lost           int       `json:"lost"`
	Uncalled       int       `json:"uncalled"`
	TotalSales     float64   `json:"totalSales"`
	ConversionRate int       `json:"conversionRate"`
}

type ConversionResponse struct {
	Won        int `json:"won"`
	Lost       int `json:"lost"`
	InProgress int `json:"inProgress"`
}

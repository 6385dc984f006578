package followup

import (
	"net/http"
	"time"

	"leadflow_backend/internal/leads/transport"
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScheduleRequest books follow-ups for one lead.
type ScheduleRequest struct {
	StaffID     *uuid.UUID `json:"staffId"`
	ServiceDate string     `json:"serviceDate" validate:"required,max=40"`
}

// CalendarRequest selects a calendar window. Both bounds are dates in the
// business timezone; to is inclusive.
type CalendarRequest struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
	loc *time.Location
}

func NewHandler(svc *Service, val *validator.Validator, loc *time.Location) *Handler {
	return &Handler{svc: svc, val: val, loc: loc}
}

// RegisterLeadRoutes mounts /leads/:id/follow-ups.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/follow-ups", h.Schedule)
}

// RegisterCalendarRoutes mounts /calendar.
func (h *Handler) RegisterCalendarRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Calendar)
}

func actorFrom(c *gin.Context) (staffdomain.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return staffdomain.Actor{}, false
	}
	return staffdomain.Actor{ID: id.UserID(), Role: staffdomain.Role(id.Role())}, true
}

func (h *Handler) Schedule(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", validator.Details(err))
		return
	}
	serviceDate, err := transport.ParseDateTime(req.ServiceDate, h.loc)
	if err != nil {
		httpkit.Error(c, http.StatusUnprocessableEntity, "serviceDate must be a date or datetime", nil)
		return
	}

	result, err := h.svc.Schedule(c.Request.Context(), actor, leadID, req.StaffID, serviceDate)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) Calendar(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", validator.Details(err))
		return
	}
	from, _ := time.ParseInLocation(transport.DateLayout, req.From, h.loc)
	to, _ := time.ParseInLocation(transport.DateLayout, req.To, h.loc)

	items, err := h.svc.List(c.Request.Context(), actor, from, to.AddDate(0, 0, 1))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

package handler

import (
	"net/http"
	"time"

	"leadflow_backend/internal/leads/insights"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/programs"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	mgmt     *management.Service
	insights *insights.Service
	programs *programs.Service
	val      *validator.Validator
	loc      *time.Location
}

func New(mgmt *management.Service, ins *insights.Service, progs *programs.Service, val *validator.Validator, loc *time.Location) *Handler {
	return &Handler{mgmt: mgmt, insights: ins, programs: progs, val: val, loc: loc}
}

// RegisterRoutes mounts /leads routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/unread-count", h.UnreadCount)
	rg.GET("/birthdays", h.Birthdays)
	rg.GET("/stats", h.Stats)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", httpkit.RequireRole(string(staffdomain.RoleAdmin)), h.Delete)
	rg.POST("/:id/calls", h.LogCall)
	rg.GET("/:id/activities", h.Activities)
}

// RegisterProgramRoutes mounts /programs routes.
func (h *Handler) RegisterProgramRoutes(rg *gin.RouterGroup) {
	admin := httpkit.RequireRole(string(staffdomain.RoleAdmin))
	rg.GET("", h.ListPrograms)
	rg.POST("", admin, h.CreateProgram)
	rg.DELETE("/:id", admin, h.DeleteProgram)
}

// RegisterAdminRoutes mounts admin reporting routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/performance", h.TeamPerformance)
	rg.GET("/conversion", h.Conversion)
}

func actorFrom(c *gin.Context) (staffdomain.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return staffdomain.Actor{}, false
	}
	return staffdomain.Actor{ID: id.UserID(), Role: staffdomain.Role(id.Role())}, true
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return false
	}
	return true
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}

	result, err := h.mgmt.List(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.CreateLeadRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.mgmt.Create(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.mgmt.Get(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.mgmt.Update(c.Request.Context(), actor, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.mgmt.Delete(c.Request.Context(), actor, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) LogCall(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	var req transport.LogCallRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.mgmt.LogCall(c.Request.Context(), actor, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Activities(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	entries, err := h.mgmt.Activities(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": entries})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	n, err := h.mgmt.UnreadCount(c.Request.Context(), actor)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.UnreadCountResponse{Count: n})
}

func (h *Handler) Birthdays(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.mgmt.Birthdays(c.Request.Context(), actor, time.Now())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Stats(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	resp, err := h.insights.Dashboard(c.Request.Context(), actor, rng)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) TeamPerformance(c *gin.Context) {
	rows, err := h.insights.TeamPerformance(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": rows})
}

func (h *Handler) Conversion(c *gin.Context) {
	rng, ok := h.dateRange(c)
	if !ok {
		return
	}
	var staffID *uuid.UUID
	if raw := c.Query("staffId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		staffID = &id
	}
	resp, err := h.insights.Conversion(c.Request.Context(), staffID, rng)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListPrograms(c *gin.Context) {
	items, err := h.programs.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *Handler) CreateProgram(c *gin.Context) {
	var req transport.CreateProgramRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.programs.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, p)
}

func (h *Handler) DeleteProgram(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.programs.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) dateRange(c *gin.Context) (repository.DateRange, bool) {
	var rng repository.DateRange
	for key, target := range map[string]**time.Time{"from": &rng.From, "to": &rng.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		d, err := time.ParseInLocation(transport.DateLayout, raw, h.loc)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation(key+" must use YYYY-MM-DD"))
			return rng, false
		}
		*target = &d
	}
	return rng, true
}

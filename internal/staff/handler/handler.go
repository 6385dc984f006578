package handler

import (
	"net/http"

	"leadflow_backend/internal/staff/directory"
	"leadflow_backend/internal/staff/domain"
	"leadflow_backend/internal/staff/presence"
	"leadflow_backend/internal/staff/transport"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	tracker   *presence.Tracker
	directory *directory.Service
	val       *validator.Validator
	log       *logger.Logger
}

func New(tracker *presence.Tracker, dir *directory.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{tracker: tracker, directory: dir, val: val, log: log}
}

// RegisterPresenceRoutes mounts /presence routes.
func (h *Handler) RegisterPresenceRoutes(rg *gin.RouterGroup) {
	rg.POST("/heartbeat", h.Heartbeat)
	rg.PUT("", h.SetPresence)
	rg.POST("/logout", h.Logout)
}

// RegisterStaffRoutes mounts /staff routes.
func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}

// RegisterAdminRoutes mounts /admin/staff routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Heartbeat(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	if httpkit.HandleError(c, h.tracker.Heartbeat(c.Request.Context(), id.UserID())) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetPresence(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.SetPresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}

	state, err := h.tracker.SetPresence(c.Request.Context(), id.UserID(), domain.State(req.Status))
	if err != nil {
		// The body still carries the state the client should revert to.
		if state != "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence could not be updated", "status": state})
			return
		}
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.PresenceResponse{Status: string(state), Online: state == domain.StateOnline})
}

// Logout marks the caller offline. Best effort: the client is leaving anyway.
func (h *Handler) Logout(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	if _, err := h.tracker.SetPresence(c.Request.Context(), id.UserID(), domain.StateOffline); err != nil {
		h.log.Warn("logout presence update failed", "staffId", id.UserID(), "error", err)
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) List(c *gin.Context) {
	members, err := h.directory.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": members})
}

func (h *Handler) Get(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	member, err := h.directory.Get(c.Request.Context(), staffID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, member)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}

	member, err := h.directory.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, member)
}

func (h *Handler) Delete(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if httpkit.HandleError(c, h.directory.Delete(c.Request.Context(), id.UserID(), staffID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Update(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}

	member, err := h.directory.Update(c.Request.Context(), staffID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, member)
}

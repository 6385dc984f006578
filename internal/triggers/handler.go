package triggers

import (
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	runner *Runner
}

func NewHandler(runner *Runner) *Handler {
	return &Handler{runner: runner}
}

// RegisterRoutes mounts /admin/triggers routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/idle-leads", h.IdleLeads)
	rg.POST("/reassign-leads", h.ReassignLeads)
	rg.POST("/follow-ups", h.FollowUps)
	rg.POST("/birthdays", h.Birthdays)
	rg.POST("/test", h.Test)
}

func (h *Handler) IdleLeads(c *gin.Context) {
	report, err := h.runner.IdleCheck(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) ReassignLeads(c *gin.Context) {
	report, err := h.runner.ReassignCheck(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) FollowUps(c *gin.Context) {
	report, err := h.runner.FollowUpReminders(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) Birthdays(c *gin.Context) {
	report, err := h.runner.BirthdayReport(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) Test(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	report, err := h.runner.TestNotification(c.Request.Context(), staffdomain.Actor{ID: id.UserID(), Role: staffdomain.Role(id.Role())})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

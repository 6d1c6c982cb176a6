// Package handler exposes the chat API over Gin.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roofchat_backend/internal/chat/domain"
	"roofchat_backend/internal/chat/responder"
	"roofchat_backend/internal/chat/service"
	"roofchat_backend/internal/chat/transport"
	"roofchat_backend/internal/chat/uploads"
	"roofchat_backend/platform/apperr"
	"roofchat_backend/platform/httpkit"
	"roofchat_backend/platform/logger"
)

type Handler struct {
	service   *service.Service
	uploads   *uploads.Service
	ruleBased responder.Responder
	logger    *logger.Logger
}

func New(svc *service.Service, uploadSvc *uploads.Service, ruleBased responder.Responder, log *logger.Logger) *Handler {
	return &Handler{
		service:   svc,
		uploads:   uploadSvc,
		ruleBased: ruleBased,
		logger:    log,
	}
}

// SendMessage handles POST /chat/sessions/:sessionId/messages.
func (h *Handler) SendMessage(c *gin.Context) {
	var req transport.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reply, err := h.service.SendMessage(
		c.Request.Context(),
		c.Param("sessionId"),
		req.Message,
		domain.ContextUpdate{Page: req.Context.Page, Referrer: req.Context.Referrer},
		c.ClientIP(),
	)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, reply)
}

// Upload handles POST /chat/sessions/:sessionId/uploads.
func (h *Handler) Upload(c *gin.Context) {
	if h.uploads == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "file uploads are not available", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "a file form field is required", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.HandleError(c, apperr.Internal("failed to open upload"))
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(
		c.Request.Context(),
		c.Param("sessionId"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, result)
}

// GetConversation handles GET /chat/sessions/:sessionId.
func (h *Handler) GetConversation(c *gin.Context) {
	conv, err := h.service.GetConversation(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToConversationView(conv))
}

// TapQuickAction handles POST /chat/sessions/:sessionId/quick-actions. A tap
// becomes an ordinary user message and runs the full conversation turn.
func (h *Handler) TapQuickAction(c *gin.Context) {
	var req transport.QuickActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !domain.QuickActionKind(req.Action).Valid() {
		httpkit.HandleError(c, apperr.BadRequest("unknown quick action kind"))
		return
	}

	reply, err := h.service.SendMessage(
		c.Request.Context(),
		c.Param("sessionId"),
		req.Text(),
		domain.ContextUpdate{},
		c.ClientIP(),
	)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, reply)
}

// QuickActions handles GET /chat/quick-actions, the widget's initial set.
func (h *Handler) QuickActions(c *gin.Context) {
	httpkit.OK(c, gin.H{
		"quickActions": []domain.QuickAction{
			{ID: "qa-repair", Label: "I need a repair", Action: domain.ActionSendMessage, Value: "I need a roof repair"},
			{ID: "qa-replace", Label: "Roof replacement", Action: domain.ActionSendMessage, Value: "I'm interested in a roof replacement"},
			{ID: "qa-inspect", Label: "Schedule an inspection", Action: domain.ActionScheduleInspection},
			{ID: "qa-emergency", Label: "This is an emergency", Action: domain.ActionEmergencyContact, Value: "(512) 555-0199"},
		},
	})
}

// Respond handles POST /chat/respond, the built-in rule responder. Remote
// deployments can point their fallback at this endpoint.
func (h *Handler) Respond(c *gin.Context) {
	var req transport.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	reply, err := h.ruleBased.Respond(ctx, responder.Request{
		SessionID:   req.SessionID,
		Message:     req.Message,
		PageContext: req.Context.Page,
		UserInfo: domain.UserInfo{
			Name:         req.Context.Name,
			ProjectType:  domain.ProjectType(req.Context.ProjectType),
			UrgencyLevel: req.Context.Urgency,
		},
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		httpkit.HandleError(c, apperr.Internal("responder failed"))
		return
	}
	httpkit.OK(c, transport.RespondResponse{
		Response:     reply.Text,
		QuickActions: reply.QuickActions,
	})
}

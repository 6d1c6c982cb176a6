// Package chat is the conversation module: scoring, handoff and replies for
// the website widget.
package chat

import (
	"roofchat_backend/internal/chat/handler"
	apphttp "roofchat_backend/internal/http"
	"roofchat_backend/platform/httpkit"
)

// Module mounts the chat routes. All endpoints are anonymous; abuse control
// is per-IP rate limiting, with a stricter limiter on uploads.
type Module struct {
	handler       *handler.Handler
	uploadLimiter *httpkit.UploadRateLimiter
}

func NewModule(h *handler.Handler, uploadLimiter *httpkit.UploadRateLimiter) *Module {
	return &Module{handler: h, uploadLimiter: uploadLimiter}
}

func (m *Module) Name() string { return "chat" }

func (m *Module) RegisterRoutes(rc apphttp.RouterContext) {
	chat := rc.API.Group("/chat")

	chat.POST("/sessions/:sessionId/messages", m.handler.SendMessage)
	chat.POST("/sessions/:sessionId/quick-actions", m.handler.TapQuickAction)
	chat.GET("/sessions/:sessionId", m.handler.GetConversation)
	chat.GET("/quick-actions", m.handler.QuickActions)
	chat.POST("/respond", m.handler.Respond)

	chat.POST("/sessions/:sessionId/uploads",
		m.uploadLimiter.RateLimit(), m.handler.Upload)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/petmarket-trust/internal/interface/http/response"
)

type NotificationHandler struct {
	notifications NotificationService
}

func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List обслуживает GET /api/notifications?limit=&offset=&unread=true.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := principal(c).ID
	limit, err := intQuery(c, "limit", 20)
	if err != nil {
		response.Error(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := h.notifications.ListNotifications(c.Request.Context(), userID, limit, offset, c.Query("unread") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	unread, err := h.notifications.CountUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"items": items, "unread": unread})
}

// MarkAsRead обслуживает PUT /api/notifications/:id/read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "некорректный ID уведомления")
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), principal(c).ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "isRead": true})
}

package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/domain/notification"
)

type NotificationHandler struct {
	Notifications notification.Repository
	Logger        *slog.Logger
}

type notificationResponse struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId,omitempty"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns the caller's own notifications, newest first.
func (h NotificationHandler) List(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.Notifications.ListByRecipient(c.Request.Context(), actor.ID)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	result := make([]notificationResponse, 0, len(items))
	unread := 0
	for _, n := range items {
		if !n.IsRead {
			unread++
		}
		result = append(result, notificationResponse{
			ID:        string(n.ID),
			SenderID:  string(n.SenderID),
			Message:   n.Message,
			Type:      string(n.Type),
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	respondData(c, http.StatusOK, gin.H{"notifications": result, "unread": unread})
}

// MarkRead flips the read flag; only the recipient may do it.
func (h NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}
	id := notification.ID(strings.TrimSpace(c.Param("id")))
	n, err := h.Notifications.ByID(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	if err := n.MarkRead(actor.ID); err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	if err := h.Notifications.Save(c.Request.Context(), n); err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "notification marked as read", nil)
}

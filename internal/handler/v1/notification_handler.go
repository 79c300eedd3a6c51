package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careops/hms-api/internal/service"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List returns the authenticated user's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	claims := callerClaims(c)
	list, err := h.svc.ListForUser(c.Request.Context(), claims.UserID, claims)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type createNotificationRequest struct {
	UserID  uuid.UUID `json:"user_id" binding:"required"`
	Message string    `json:"message" binding:"required"`
}

// Create lets an administrator push a notification to any account.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.svc.Create(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	claims := callerClaims(c)
	if err := h.svc.MarkAllRead(c.Request.Context(), claims.UserID, claims); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

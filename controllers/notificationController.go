package controllers

import (
	"net/http"
	"strconv"

	"github.com/Kariqs/amexan-checkout/middlewares"
	"github.com/Kariqs/amexan-checkout/repositories"
	"github.com/gin-gonic/gin"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// ListNotifications returns the signed in admin's newest notifications and
// unread count.
func ListNotifications(notifications *repositories.NotificationRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		limit := defaultNotificationLimit
		if raw := ctx.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
				return
			}
			limit = min(n, maxNotificationLimit)
		}

		recipientID := middlewares.UserID(ctx)
		list, err := notifications.List(ctx.Request.Context(), recipientID, limit)
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		unread, err := notifications.Counter(ctx.Request.Context(), recipientID)
		if err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"notifications": list, "unread": unread})
	}
}

func MarkNotificationsRead(notifications *repositories.NotificationRepository) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := notifications.MarkAllRead(ctx.Request.Context(), middlewares.UserID(ctx)); err != nil {
			sendServiceError(ctx, err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgUpdated})
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell/internal/app/api/middleware"
	"github.com/inkwell-labs/inkwell/internal/app/service/notification"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

// @Summary      List notifications
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Param        unread query bool false "Unread only"
// @Param        limit  query int  false "Page size"
// @Param        offset query int  false "Page offset"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications [get]
func ApiListNotifications(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := notification.ListParams{
			UnreadOnly: c.Query("unread") == "true",
			Limit:      queryInt(c, "limit", 20),
			Offset:     queryInt(c, "offset", 0),
		}
		items, total, err := svc.List(c.Request.Context(), middleware.CurrentUser(c).ID, params)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"items": items, "total": total}))
	}
}

// @Summary      Unread count
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications/unread_count [get]
func ApiUnreadCount(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := svc.UnreadCount(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"count": count}))
	}
}

// @Summary      Mark notification read
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications/{id}/read [post]
func ApiMarkNotificationRead(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.MarkRead(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeNotFound, "notification not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Mark all notifications read
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications/read_all [post]
func ApiMarkAllNotificationsRead(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.MarkAllRead(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"updated": n}))
	}
}

// @Summary      Delete notification
// @Tags         Notification
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/notifications/{id} [delete]
func ApiDeleteNotification(svc *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeNotFound, "notification not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterNotificationRoutes(r gin.IRouter, svc *notification.Service) {
	r.GET("", ApiListNotifications(svc))
	r.GET("/unread_count", ApiUnreadCount(svc))
	r.POST("/read_all", ApiMarkAllNotificationsRead(svc))
	r.POST("/:id/read", ApiMarkNotificationRead(svc))
	r.DELETE("/:id", ApiDeleteNotification(svc))
}

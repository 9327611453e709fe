package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/internal/app/api/middleware"
	"github.com/inkwell-labs/inkwell/internal/app/service/quota"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

// @Summary      Today's usage
// @Description  Returns today's quota counters for the current user.
// @Tags         Quota
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/quota/usage [get]
func ApiQuotaUsage(svc *quota.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := svc.Usage(c.Request.Context(), middleware.CurrentUser(c))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(status))
	}
}

func RegisterQuotaRoutes(r gin.IRouter, svc *quota.Service) {
	r.GET("/usage", ApiQuotaUsage(svc))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell/internal/app/service/membership"
	"github.com/inkwell-labs/inkwell/internal/app/service/payment"
	"github.com/inkwell-labs/inkwell/internal/app/service/statistics"
	"github.com/inkwell-labs/inkwell/internal/app/service/sweeper"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

type grantPremiumRequest struct {
	DurationDays int `json:"duration_days" binding:"required,min=1"`
}

// @Summary      Grant premium
// @Description  Admin support action: activates premium without a payment.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Param        request body handlers.grantPremiumRequest true "Grant request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/users/{user_id}/premium [post]
func ApiGrantPremium(svc *membership.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req grantPremiumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		user, err := svc.AdminGrant(c.Request.Context(), c.Param("user_id"), req.DurationDays)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeNotFound, "user not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(user))
	}
}

// @Summary      Revoke premium
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/users/{user_id}/premium [delete]
func ApiRevokePremium(svc *membership.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.AdminRevoke(c.Request.Context(), c.Param("user_id"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeNotFound, "user not found"))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(user))
	}
}

// @Summary      Scan payments
// @Description  Paginated payment listing with arbitrary column filters.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body payment.ScanPaymentsRequest true "Scan request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/payments/scan [post]
func ApiScanPayments(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.ScanPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanPayments(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Dashboard statistics
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body statistics.StatisticRequest true "Statistics request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/statistics [post]
func ApiStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if len(req.DataItems) == 0 {
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeBadRequest, "no data items requested"))
			return
		}
		res, err := svc.GetStatistics(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Run expiry sweep
// @Description  Triggers one expiry sweep outside the schedule.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/sweeper/run [post]
func ApiRunSweep(s *sweeper.Sweeper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.RunOnce(c.Request.Context()); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminRoutes(r gin.IRouter, members *membership.Service, payments *payment.Service, stats *statistics.Service, sweep *sweeper.Sweeper) {
	r.POST("/users/:user_id/premium", ApiGrantPremium(members))
	r.DELETE("/users/:user_id/premium", ApiRevokePremium(members))
	r.POST("/payments/scan", ApiScanPayments(payments))
	r.POST("/statistics", ApiStatistics(stats))
	r.POST("/sweeper/run", ApiRunSweep(sweep))
}

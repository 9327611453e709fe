package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/internal/app/api/middleware"
	"github.com/inkwell-labs/inkwell/internal/app/service/membership"
	"github.com/inkwell-labs/inkwell/internal/app/service/payment"
	"github.com/inkwell-labs/inkwell/internal/platform/gateway"
	"github.com/inkwell-labs/inkwell/pkg/response"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

type checkoutRequest struct {
	Provider types.PaymentProvider `json:"provider" binding:"required"`
}

// @Summary      Start premium checkout
// @Description  Creates a payment link for the premium subscription. A still-live earlier checkout is returned instead of a new one.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.checkoutRequest true "Checkout request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/checkout [post]
func ApiCreateCheckout(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.CreateCheckout(c.Request.Context(), middleware.CurrentUser(c), req.Provider)
		switch {
		case errors.Is(err, payment.ErrUnsupportedProvider):
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
		case errors.Is(err, payment.ErrAlreadyPaid):
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeBadRequest,
				"your previous payment was already completed; premium is active"))
		case errors.Is(err, gateway.ErrUnavailable):
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeError,
				"payment gateway is temporarily unavailable, please retry"))
		case err != nil:
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
		default:
			c.JSON(http.StatusOK, response.OKT(gin.H{
				"payment": res.Payment,
				"reused":  res.Reused,
			}))
		}
	}
}

// @Summary      Current pending checkout
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/current [get]
func ApiCurrentPayment(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Current(c.Request.Context(), middleware.CurrentUser(c).ID)
		if errors.Is(err, payment.ErrNoPendingPayment) {
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeNotFound, err.Error()))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Cancel pending checkout
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/cancel [post]
func ApiCancelPayment(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.Cancel(c.Request.Context(), middleware.CurrentUser(c).ID)
		if errors.Is(err, payment.ErrNoPendingPayment) {
			c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeNotFound, err.Error()))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Payment history
// @Tags         Payment
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Page offset"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments [get]
func ApiPaymentHistory(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, total, err := svc.History(c.Request.Context(), middleware.CurrentUser(c).ID,
			queryInt(c, "limit", 20), queryInt(c, "offset", 0))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"items": items, "total": total}))
	}
}

// @Summary      Membership status
// @Tags         Membership
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/membership [get]
func ApiMembershipStatus(svc *membership.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(svc.Status(middleware.CurrentUser(c))))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, svc *payment.Service) {
	r.POST("/checkout", ApiCreateCheckout(svc))
	r.GET("/current", ApiCurrentPayment(svc))
	r.POST("/cancel", ApiCancelPayment(svc))
	r.GET("", ApiPaymentHistory(svc))
}

func RegisterMembershipRoutes(r gin.IRouter, svc *membership.Service) {
	r.GET("", ApiMembershipStatus(svc))
}

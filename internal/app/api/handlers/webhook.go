package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/inkwell-labs/inkwell/internal/app/service/payment"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/internal/platform/gateway"
	"github.com/inkwell-labs/inkwell/pkg/logctx"
	"github.com/inkwell-labs/inkwell/pkg/response"

	"go.uber.org/zap"
)

// @Summary      PayOS webhook
// @Description  Receives signed PayOS payment events. Always acknowledges verified events, including replays and unknown order codes.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /webhook/payos [post]
func ApiPayOSWebhook(svc *payment.Service, gw *gateway.PayOSClient, events *payment.EventLogger, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, "unreadable body"))
			return
		}

		ev, err := gw.ParseWebhook(body)
		if err != nil {
			// Unverifiable payloads are rejected so PayOS retries; nothing is
			// reconciled from an unsigned event.
			logctx.FromGin(c, log).Warnf("rejected payos webhook: %v", err)
			c.JSON(http.StatusBadRequest, response.ErrorMsg(response.APIResponseCodeBadRequest, "invalid signature"))
			return
		}

		entry := &models.PaymentEventLog{
			Provider:  ev.Provider,
			OrderCode: ev.OrderCode,
			TraceID:   c.GetString("traceID"),
			Data:      datatypes.JSON(ev.Raw),
		}
		outcome, err := svc.Reconcile(c.Request.Context(), ev)
		finishEventLog(c, events, entry, outcome, err)

		if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		// Unknown order codes are acknowledged: the event may belong to
		// another environment sharing the gateway account.
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// vnpayIPNResponse is the acknowledgement shape VNPay expects from an IPN
// endpoint. RspCode "00" confirms handling; anything else triggers a retry.
type vnpayIPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// @Summary      VNPay IPN
// @Description  Receives signed VNPay instant payment notifications via query parameters.
// @Tags         Webhook
// @Produce      json
// @Success      200  {object}  handlers.vnpayIPNResponse
// @Router       /webhook/vnpay [get]
func ApiVNPayIPN(svc *payment.Service, gw *gateway.VNPayClient, events *payment.EventLogger, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, err := gw.ParseIPN(c.Request.URL.Query())
		if err != nil {
			logctx.FromGin(c, log).Warnf("rejected vnpay ipn: %v", err)
			c.JSON(http.StatusOK, vnpayIPNResponse{RspCode: "97", Message: "Invalid signature"})
			return
		}

		entry := &models.PaymentEventLog{
			Provider:  ev.Provider,
			OrderCode: ev.OrderCode,
			TraceID:   c.GetString("traceID"),
			Data:      datatypes.JSON(ev.Raw),
		}
		outcome, err := svc.Reconcile(c.Request.Context(), ev)
		finishEventLog(c, events, entry, outcome, err)

		switch {
		case errors.Is(err, payment.ErrPaymentNotFound):
			c.JSON(http.StatusOK, vnpayIPNResponse{RspCode: "01", Message: "Order not found"})
		case err != nil:
			c.JSON(http.StatusOK, vnpayIPNResponse{RspCode: "99", Message: "Unknown error"})
		case outcome.Duplicate:
			c.JSON(http.StatusOK, vnpayIPNResponse{RspCode: "02", Message: "Order already confirmed"})
		default:
			c.JSON(http.StatusOK, vnpayIPNResponse{RspCode: "00", Message: "Confirm success"})
		}
	}
}

func finishEventLog(c *gin.Context, events *payment.EventLogger, entry *models.PaymentEventLog, outcome *payment.ReconcileOutcome, err error) {
	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
		// Benign: no local payment carries this order code.
		entry.Status = models.PaymentEventLogStatusHandled
		result := datatypes.JSON(`{"unknown_order":true}`)
		entry.Result = &result
	case err != nil:
		entry.Status = models.PaymentEventLogStatusHandleFailed
		result := datatypes.JSON(`{"error":` + jsonString(err.Error()) + `}`)
		entry.Result = &result
	case outcome != nil && outcome.Duplicate:
		entry.Status = models.PaymentEventLogStatusHandled
		result := datatypes.JSON(`{"duplicate":true}`)
		entry.Result = &result
	default:
		entry.Status = models.PaymentEventLogStatusHandled
		result := datatypes.JSON(`{"applied":true}`)
		entry.Result = &result
	}
	events.Save(c.Request.Context(), entry)
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func RegisterWebhookRoutes(r gin.IRouter, svc *payment.Service, payos *gateway.PayOSClient, vnpay *gateway.VNPayClient, events *payment.EventLogger, log *zap.SugaredLogger) {
	r.POST("/payos", ApiPayOSWebhook(svc, payos, events, log))
	r.GET("/vnpay", ApiVNPayIPN(svc, vnpay, events, log))
}

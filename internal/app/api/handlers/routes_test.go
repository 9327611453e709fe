package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeSet(r *gin.Engine) map[string]bool {
	set := map[string]bool{}
	for _, rt := range r.Routes() {
		set[rt.Method+" "+rt.Path] = true
	}
	return set
}

func TestRegisterJournalRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterJournalRoutes(r.Group("/api/v1/journals"), nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/journals"])
	require.True(t, routes["GET /api/v1/journals"])
	require.True(t, routes["GET /api/v1/journals/suggest"])
	require.True(t, routes["GET /api/v1/journals/:id"])
	require.True(t, routes["DELETE /api/v1/journals/:id"])
}

func TestRegisterPaymentRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1/payments"), nil)
	RegisterWebhookRoutes(r.Group("/webhook"), nil, nil, nil, nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/payments/checkout"])
	require.True(t, routes["GET /api/v1/payments/current"])
	require.True(t, routes["POST /api/v1/payments/cancel"])
	require.True(t, routes["GET /api/v1/payments"])
	require.True(t, routes["POST /webhook/payos"])
	require.True(t, routes["GET /webhook/vnpay"])
}

func TestRegisterAdminRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAdminRoutes(r.Group("/api/v1/admin"), nil, nil, nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/admin/users/:user_id/premium"])
	require.True(t, routes["DELETE /api/v1/admin/users/:user_id/premium"])
	require.True(t, routes["POST /api/v1/admin/payments/scan"])
	require.True(t, routes["POST /api/v1/admin/statistics"])
	require.True(t, routes["POST /api/v1/admin/sweeper/run"])
}

func TestRegisterNotificationRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterNotificationRoutes(r.Group("/api/v1/notifications"), nil)

	routes := routeSet(r)
	require.True(t, routes["GET /api/v1/notifications"])
	require.True(t, routes["GET /api/v1/notifications/unread_count"])
	require.True(t, routes["POST /api/v1/notifications/read_all"])
	require.True(t, routes["POST /api/v1/notifications/:id/read"])
	require.True(t, routes["DELETE /api/v1/notifications/:id"])
}

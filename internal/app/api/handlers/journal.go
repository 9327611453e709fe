package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/internal/app/api/middleware"
	"github.com/inkwell-labs/inkwell/internal/app/service/journal"
	"github.com/inkwell-labs/inkwell/internal/app/service/quota"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

// writeJournalError maps journal service errors to envelope codes. Quota
// denials use the forbidden code with the denial message intact so clients
// can show it verbatim.
func writeJournalError(c *gin.Context, err error) {
	var quotaErr *quota.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeForbidden, quotaErr.Error()))
	case errors.Is(err, journal.ErrEntryNotFound):
		c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, journal.ErrInvalidMood), errors.Is(err, journal.ErrEmptyContent):
		c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
	default:
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Create journal entry
// @Description  Writes a new entry; free plan allows 2 per day.
// @Tags         Journal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body journal.CreateRequest true "Journal entry"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/journals [post]
func ApiCreateJournal(svc *journal.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req journal.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		entry, err := svc.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
		if err != nil {
			writeJournalError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(entry))
	}
}

// @Summary      List journal entries
// @Tags         Journal
// @Produce      json
// @Security     BearerAuth
// @Param        mood   query  string false "Filter by mood"
// @Param        limit  query  int    false "Page size"
// @Param        offset query  int    false "Page offset"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/journals [get]
func ApiListJournals(svc *journal.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := journal.ListParams{
			Mood:   models.Mood(c.Query("mood")),
			Limit:  queryInt(c, "limit", 20),
			Offset: queryInt(c, "offset", 0),
		}
		items, total, err := svc.List(c.Request.Context(), middleware.CurrentUser(c).ID, params)
		if err != nil {
			writeJournalError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"items": items, "total": total}))
	}
}

// @Summary      Get journal entry
// @Tags         Journal
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/journals/{id} [get]
func ApiGetJournal(svc *journal.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := svc.Get(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
		if err != nil {
			writeJournalError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(entry))
	}
}

// @Summary      Delete journal entry
// @Tags         Journal
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Entry ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/journals/{id} [delete]
func ApiDeleteJournal(svc *journal.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
			writeJournalError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      AI writing prompt
// @Description  Generates a mood-based writing prompt; free plan allows 3 per day.
// @Tags         Journal
// @Produce      json
// @Security     BearerAuth
// @Param        mood query string false "Mood to write about"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/journals/suggest [get]
func ApiSuggestPrompt(svc *journal.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		prompt, err := svc.Suggest(c.Request.Context(), middleware.CurrentUser(c), models.Mood(c.Query("mood")))
		if err != nil {
			writeJournalError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"prompt": prompt}))
	}
}

func RegisterJournalRoutes(r gin.IRouter, svc *journal.Service) {
	r.POST("", ApiCreateJournal(svc))
	r.GET("", ApiListJournals(svc))
	r.GET("/suggest", ApiSuggestPrompt(svc))
	r.GET("/:id", ApiGetJournal(svc))
	r.DELETE("/:id", ApiDeleteJournal(svc))
}

func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

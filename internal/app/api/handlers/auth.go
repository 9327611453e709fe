package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/internal/app/api/middleware"
	"github.com/inkwell-labs/inkwell/internal/app/service/auth"
	"github.com/inkwell-labs/inkwell/pkg/response"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// @Summary      Register
// @Description  Creates a new account on the free plan.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body auth.RegisterRequest true "Registration request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/auth/register [post]
func ApiRegister(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		user, err := svc.Register(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(user))
	}
}

// @Summary      Login
// @Description  Exchanges credentials for a bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body handlers.loginRequest true "Login request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/auth/login [post]
func ApiLogin(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusOK, response.ErrorMsg(response.APIResponseCodeUnauthorized, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/auth/me [get]
func ApiMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(middleware.CurrentUser(c)))
	}
}

func RegisterAuthRoutes(r gin.IRouter, svc *auth.Service) {
	r.POST("/register", ApiRegister(svc))
	r.POST("/login", ApiLogin(svc))
}

func RegisterAuthProtectedRoutes(r gin.IRouter) {
	r.GET("/me", ApiMe())
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/service"
)

func authToResponse(res *service.AuthResult) AuthResponse {
	resp := AuthResponse{
		AccessToken:  res.Session.AccessToken,
		RefreshToken: res.Session.RefreshToken,
		TokenType:    res.Session.TokenType,
		ExpiresIn:    res.Session.ExpiresIn,
	}
	if res.User != nil {
		resp.User = profileToResponse(*res.User)
	}
	return resp
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.KindBadRequest, bindingError(err))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, authToResponse(res))
}

// login reports every failure, malformed bodies included, as unauthenticated.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.KindUnauthenticated, bindingError(err))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, domain.KindUnauthenticated, err)
		return
	}
	c.JSON(http.StatusOK, authToResponse(res))
}

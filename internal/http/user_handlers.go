package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"questionnaire-api/internal/domain"
)

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, profileToResponse(*user))
}

func (h *Handler) listTransactions(c *gin.Context) {
	txs, err := h.users.ListTransactions(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, transactionsToResponse(txs))
}

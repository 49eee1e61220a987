package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"questionnaire-api/internal/domain"
)

func (h *Handler) listLotteryEvents(c *gin.Context) {
	events, err := h.lottery.ListActive(c.Request.Context())
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}

	resp := make([]LotteryEventResponse, len(events))
	for i := range events {
		resp[i] = eventToResponse(events[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) enterLottery(c *gin.Context) {
	res, err := h.lottery.Enter(c.Request.Context(), c.Param("event_id"), CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, EnterLotteryResponse{
		EntryID:     res.EntryID,
		EventID:     res.EventID,
		PointsSpent: res.PointsSpent,
		Message:     res.Message,
	})
}

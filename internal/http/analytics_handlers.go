package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"questionnaire-api/internal/domain"
)

func (h *Handler) dashboard(c *gin.Context) {
	dash, err := h.analytics.Dashboard(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, DashboardResponse{
		Points:             dash.Points,
		SurveysCreated:     dash.SurveysCreated,
		ResponsesReceived:  dash.ResponsesReceived,
		ResponsesSubmitted: dash.ResponsesSubmitted,
		PointsEarned:       dash.PointsEarned,
		PointsSpent:        dash.PointsSpent,
		RecentTransactions: transactionsToResponse(dash.RecentTransactions),
	})
}

func (h *Handler) surveyVisualization(c *gin.Context) {
	vis, err := h.analytics.SurveyVisualization(c.Request.Context(), c.Param("survey_id"), CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, visualizationToResponse(*vis))
}

func (h *Handler) exportResponses(c *gin.Context) {
	export, err := h.analytics.ExportResponses(c.Request.Context(), c.Param("survey_id"), CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{
		Key:       export.Key,
		Location:  export.Location,
		URL:       export.URL,
		ExpiresAt: formatTime(export.ExpiresAt),
	})
}

func (h *Handler) listExports(c *gin.Context) {
	objects, err := h.analytics.ListExports(c.Request.Context(), c.Param("survey_id"), CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

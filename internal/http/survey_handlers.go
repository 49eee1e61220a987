package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"questionnaire-api/internal/domain"
	"questionnaire-api/internal/repository"
	"questionnaire-api/internal/service"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// parseSurveyFilter reads category_id, search, skip and limit from the query.
func parseSurveyFilter(c *gin.Context) (repository.SurveyFilter, error) {
	filter := repository.SurveyFilter{
		Search: c.Query("search"),
		Limit:  defaultLimit,
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid category_id %q", raw)
		}
		filter.CategoryID = &id
	}
	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid skip %q", raw)
		}
		if skip < 0 {
			return filter, errors.New("skip must not be negative")
		}
		filter.Skip = skip
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid limit %q", raw)
		}
		filter.Limit = min(max(limit, 1), maxLimit)
	}
	return filter, nil
}

func (h *Handler) listSurveys(c *gin.Context) {
	filter, err := parseSurveyFilter(c)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}

	surveys, err := h.surveys.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}

	resp := make([]SurveySummaryResponse, len(surveys))
	for i := range surveys {
		resp[i] = summaryToResponse(surveys[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.surveys.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}

	resp := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		resp[i] = CategoryResponse{
			ID:          cat.ID,
			Name:        cat.Name,
			Slug:        cat.Slug,
			Description: cat.Description,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createSurvey(c *gin.Context) {
	var req createSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.KindBadRequest, bindingError(err))
		return
	}

	in := service.CreateSurveyInput{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		RewardPoints:  req.RewardPoints,
		MaxResponses:  req.MaxResponses,
		IsDataForSale: req.IsDataForSale,
		DataPrice:     req.DataPrice,
		Questions:     make([]service.QuestionInput, len(req.Questions)),
	}
	for i, q := range req.Questions {
		in.Questions[i] = service.QuestionInput{
			Text:       q.Text,
			Type:       q.Type,
			Options:    q.Options,
			IsRequired: q.IsRequired,
		}
	}

	res, err := h.surveys.Create(c.Request.Context(), in, CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, CreateSurveyResponse{ID: res.ID, Message: res.Message})
}

// getSurvey reports every lookup failure as not found.
func (h *Handler) getSurvey(c *gin.Context) {
	survey, err := h.surveys.Get(c.Request.Context(), c.Param("survey_id"))
	if err != nil {
		h.fail(c, domain.KindNotFound, err)
		return
	}
	c.JSON(http.StatusOK, surveyToResponse(*survey))
}

func (h *Handler) submitResponse(c *gin.Context) {
	var req submitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.KindBadRequest, bindingError(err))
		return
	}

	res, err := h.surveys.SubmitResponse(c.Request.Context(), c.Param("survey_id"), req.Responses, CurrentUser(c).ID)
	if err != nil {
		h.fail(c, domain.KindBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, SubmitResponseResponse{
		ID:           res.ID,
		PointsEarned: res.PointsEarned,
		Message:      res.Message,
	})
}

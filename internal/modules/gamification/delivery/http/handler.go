package http

import (
	"strconv"

	"fitquest.app/backend/internal/entity"
	activityService "fitquest.app/backend/internal/modules/activity/service"
	"fitquest.app/backend/internal/modules/gamification/dto"
	gamificationService "fitquest.app/backend/internal/modules/gamification/service"
	pointsService "fitquest.app/backend/internal/modules/points/service"
	"fitquest.app/backend/pkg/apperror"
	"fitquest.app/backend/pkg/response"
	"fitquest.app/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type GamificationHandler struct {
	service gamificationService.GamificationService
	ledger  pointsService.LedgerService
}

func NewGamificationHandler(service gamificationService.GamificationService, ledger pointsService.LedgerService) *GamificationHandler {
	return &GamificationHandler{service: service, ledger: ledger}
}

func (h *GamificationHandler) RecordWorkout(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(0, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	snapshot, err := h.service.RecordWorkoutCompleted(c.Request.Context(), userID, activityService.WorkoutInput{
		WorkoutType:     req.WorkoutType,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, snapshot)
}

func (h *GamificationHandler) RecordWeight(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.WeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(0, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	snapshot, err := h.service.RecordWeightLogged(c.Request.Context(), userID, req.WeightKg)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, snapshot)
}

func (h *GamificationHandler) RecordChallengeProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.New(0, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	snapshot, err := h.service.RecordChallengeProgress(c.Request.Context(), userID, entity.ChallengeCategory(req.Type), req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, snapshot)
}

func (h *GamificationHandler) GetSummary(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	snapshot, err := h.service.Snapshot(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, snapshot)
}

func (h *GamificationHandler) GetTodayChallenge(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	snapshot, err := h.service.Snapshot(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if snapshot == nil {
		response.OK(c, nil)
		return
	}

	response.OK(c, snapshot.TodaysChallenge)
}

func (h *GamificationHandler) GetRecentAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	snapshot, err := h.service.Snapshot(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if snapshot == nil {
		response.OK(c, nil)
		return
	}

	response.OK(c, snapshot.RecentAchievements)
}

func (h *GamificationHandler) GetPointHistory(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := h.ledger.History(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, transactions)
}

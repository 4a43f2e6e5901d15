package handlers

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/internal/api/presenters"
	"Fideliza-Backend/pkg/reward"

	"github.com/gofiber/fiber/v2"
)

type (
	RewardHandler interface {
		GetBalance(c *fiber.Ctx) error
		GetHistory(c *fiber.Ctx) error
	}

	rewardHandler struct {
		rewardService reward.RewardService
	}
)

func NewRewardHandler(rewardService reward.RewardService) RewardHandler {
	return &rewardHandler{
		rewardService: rewardService,
	}
}

func (h *rewardHandler) GetBalance(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	balance, err := h.rewardService.GetBalance(c.Context(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetRewardBalance, err)
	}

	return presenters.SuccessResponse(c, balance, fiber.StatusOK, domain.MessageSuccessGetRewardBalance)
}

func (h *rewardHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	transactions, count, err := h.rewardService.GetHistory(c.Context(), userID, page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetRewardHistory, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"transactions": transactions,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetRewardHistory)
}

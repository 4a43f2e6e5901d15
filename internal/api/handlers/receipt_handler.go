package handlers

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/internal/api/presenters"
	"Fideliza-Backend/pkg/receipt"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	ReceiptHandler interface {
		UploadReceipt(c *fiber.Ctx) error
		DecideReceipt(c *fiber.Ctx) error
		GetReceipts(c *fiber.Ctx) error
		GetReceiptDetails(c *fiber.Ctx) error
		GetUnmatchedReceipts(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

func (h *receiptHandler) UploadReceipt(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UploadReceiptRequest)

	file, err := c.FormFile("document")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	req.Document = file
	req.UserID = userID
	req.StoreID = c.FormValue("store_id")
	req.PurchaseDate = c.FormValue("purchase_date")

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadReceipt, err)
	}

	res, err := h.receiptService.ProcessUpload(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, uploadStatusCode(err), domain.MessageFailedUploadReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessUploadReceipt)
}

func (h *receiptHandler) DecideReceipt(c *fiber.Ctx) error {
	actor := c.Locals("user_id").(string)
	if role, _ := c.Locals("role").(string); role != domain.RoleOperator {
		return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, domain.ErrUserNotAllowed)
	}
	receiptID := c.Params("id")
	req := new(domain.DecisionRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedInvalidDecision, err)
	}

	res, err := h.receiptService.Decide(c.Context(), receiptID, *req, actor)
	if err != nil {
		return presenters.ErrorResponse(c, decisionStatusCode(err), domain.MessageFailedDecisionReceipt, err)
	}

	message := domain.MessageSuccessApproveReceipt
	if req.Action == "reject" {
		message = domain.MessageSuccessRejectReceipt
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, message)
}

func (h *receiptHandler) GetReceipts(c *fiber.Ctx) error {
	filter := domain.ReceiptFilter{
		UserID:  c.Query("user_id"),
		StoreID: c.Query("store_id"),
		Status:  c.Query("status", "all"),
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 20),
	}

	if from := c.Query("date_from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = parsed
		}
	}
	if to := c.Query("date_to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = parsed
		}
	}

	receipts, count, err := h.receiptService.GetReceipts(c.Context(), filter)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetReceipts, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"receipts": receipts,
		"pagination": fiber.Map{
			"page":        filter.Page,
			"limit":       filter.Limit,
			"total":       count,
			"total_pages": (count + int64(filter.Limit) - 1) / int64(filter.Limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetReceipts)
}

func (h *receiptHandler) GetReceiptDetails(c *fiber.Ctx) error {
	receiptID := c.Params("id")

	res, err := h.receiptService.GetReceiptByID(c.Context(), receiptID)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReceipt)
}

func (h *receiptHandler) GetUnmatchedReceipts(c *fiber.Ctx) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	receipts, count, err := h.receiptService.GetUnmatchedReceipts(c.Context(), page, limit)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetUnmatched, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"receipts": receipts,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetUnmatched)
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key, strconv.Itoa(fallback)))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func uploadStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrFileValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrStoreNotFound):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrExtraction):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func decisionStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrReceiptNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidDecisionAction),
		errors.Is(err, domain.ErrRejectionReasonMissing),
		errors.Is(err, domain.ErrParseUUID):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadRequest
	}
}

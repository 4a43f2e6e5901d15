package handlers

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/entities"
	"Fideliza-Backend/internal/utils"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReceiptService struct{}

func (stubReceiptService) ProcessUpload(context.Context, domain.UploadReceiptRequest) (*domain.UploadReceiptResponse, error) {
	return &domain.UploadReceiptResponse{}, nil
}

func (stubReceiptService) Decide(_ context.Context, receiptID string, _ domain.DecisionRequest, _ string) (*domain.DecisionResponse, error) {
	return &domain.DecisionResponse{ReceiptID: receiptID, Status: entities.ReceiptStatusFinal}, nil
}

func (stubReceiptService) GetReceiptByID(context.Context, string) (*domain.ReceiptResponse, error) {
	return &domain.ReceiptResponse{}, nil
}

func (stubReceiptService) GetReceipts(context.Context, domain.ReceiptFilter) ([]*domain.ReceiptResponse, int64, error) {
	return nil, 0, nil
}

func (stubReceiptService) GetUnmatchedReceipts(context.Context, int, int) ([]*domain.ReceiptResponse, int64, error) {
	return nil, 0, nil
}

func decisionApp(role string) *fiber.App {
	utils.InitValidator()
	handler := NewReceiptHandler(stubReceiptService{}, utils.Validate)

	app := fiber.New()
	app.Post("/api/v1/receipts/:id/decision", func(c *fiber.Ctx) error {
		c.Locals("user_id", uuid.NewString())
		c.Locals("role", role)
		return handler.DecideReceipt(c)
	})
	return app
}

func postDecision(t *testing.T, app *fiber.App) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost,
		"/api/v1/receipts/"+uuid.NewString()+"/decision",
		strings.NewReader(`{"action":"approve"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestDecideReceipt_RequiresOperatorRole(t *testing.T) {
	assert.Equal(t, fiber.StatusForbidden, postDecision(t, decisionApp(domain.RoleUser)))
}

func TestDecideReceipt_OperatorAllowed(t *testing.T) {
	assert.Equal(t, fiber.StatusOK, postDecision(t, decisionApp(domain.RoleOperator)))
}

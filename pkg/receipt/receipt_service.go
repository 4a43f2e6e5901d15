package receipt

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/entities"
	"Fideliza-Backend/internal/utils/mailing"
	"Fideliza-Backend/internal/utils/storage"
	"Fideliza-Backend/pkg/audit"
	"Fideliza-Backend/pkg/extraction"
	"Fideliza-Backend/pkg/identity"
	"Fideliza-Backend/pkg/parser"
	"Fideliza-Backend/pkg/qrdecode"
	"Fideliza-Backend/pkg/reward"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	// CashbackRate is the fraction of the receipt amount returned as
	// cashback when a receipt is approved.
	CashbackRate float64
}

func DefaultConfig() Config {
	return Config{CashbackRate: 0.01}
}

type (
	ReceiptService interface {
		ProcessUpload(ctx context.Context, req domain.UploadReceiptRequest) (*domain.UploadReceiptResponse, error)
		Decide(ctx context.Context, receiptID string, req domain.DecisionRequest, actor string) (*domain.DecisionResponse, error)
		GetReceiptByID(ctx context.Context, id string) (*domain.ReceiptResponse, error)
		GetReceipts(ctx context.Context, filter domain.ReceiptFilter) ([]*domain.ReceiptResponse, int64, error)
		GetUnmatchedReceipts(ctx context.Context, page, limit int) ([]*domain.ReceiptResponse, int64, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		extractionService extraction.ExtractionService
		payloadDecoder    qrdecode.PayloadDecoder
		parserService     parser.ParserService
		identityService   identity.IdentityService
		rewardService     reward.RewardService
		auditService      audit.AuditService
		s3                storage.AwsS3
		config            Config
	}
)

func NewReceiptService(
	receiptRepository ReceiptRepository,
	extractionService extraction.ExtractionService,
	payloadDecoder qrdecode.PayloadDecoder,
	parserService parser.ParserService,
	identityService identity.IdentityService,
	rewardService reward.RewardService,
	auditService audit.AuditService,
	s3 storage.AwsS3,
	config Config,
) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		extractionService: extractionService,
		payloadDecoder:    payloadDecoder,
		parserService:     parserService,
		identityService:   identityService,
		rewardService:     rewardService,
		auditService:      auditService,
		s3:                s3,
		config:            config,
	}
}

// ProcessUpload runs the full intake pipeline on an uploaded document:
// extraction and code decoding in parallel, field parsing, the plausibility
// gate, identity resolution, and finally persistence of a provisional record.
func (s *receiptService) ProcessUpload(ctx context.Context, req domain.UploadReceiptRequest) (*domain.UploadReceiptResponse, error) {
	localPath, err := s.saveToTempFile(req.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFileValidation, err)
	}
	defer func() {
		if err := os.Remove(localPath); err != nil {
			log.Warnf("failed to remove temporary upload %s: %v", localPath, err)
		}
	}()

	if err := s.extractionService.ValidateFile(localPath); err != nil {
		return nil, err
	}

	var extracted domain.ExtractedText
	var payload domain.CodePayload

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		extracted, err = s.extractionService.ExtractText(gctx, localPath)
		return err
	})
	g.Go(func() error {
		payload = s.payloadDecoder.Decode(gctx, localPath)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fields := s.parserService.Parse(extracted.Text)
	if verr := s.parserService.CheckPlausibility(fields, extracted.Text); verr != nil {
		return nil, verr
	}

	warnings := make([]string, 0)
	if !payload.Success {
		warnings = append(warnings, "no machine-readable code found on the document")
	}

	amount := fields.Amount
	if amount <= 0 && payload.Amount > 0 {
		amount = payload.Amount
		warnings = append(warnings, "amount taken from the embedded code payload")
	}
	if amount <= 0 {
		return nil, &domain.ReceiptValidationError{
			Warnings: []string{"no positive amount could be extracted"},
			RawText:  extracted.Text,
		}
	}

	userID, userMethod, err := s.identityService.ResolveUser(ctx, payload, fields, req.UserID)
	if err != nil {
		return nil, err
	}
	storeID, storeMethod, err := s.identityService.ResolveStore(ctx, payload, fields, req.StoreID)
	if err != nil {
		return nil, err
	}

	purchaseDate, dateWarning := s.resolvePurchaseDate(fields, req.PurchaseDate)
	if dateWarning != "" {
		warnings = append(warnings, dateWarning)
	}

	objectKey, err := s.s3.UploadFile(uuid.NewString(), req.Document, "receipts", storage.AllowReceipt...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	record := &entities.Receipt{
		ID:                   uuid.New(),
		UserID:               userID,
		StoreID:              storeID,
		InvoiceNumber:        fields.InvoiceNumber,
		Amount:               amount,
		Liters:               fields.Liters,
		PurchaseDate:         purchaseDate,
		Status:               entities.ReceiptStatusProvisional,
		SourceFileURL:        s.s3.GetPublicLinkKey(objectKey),
		RawText:              extracted.Text,
		ExtractionConfidence: extracted.Confidence,
		ParsedFields:         marshalSnapshot(fields),
		CodePayload:          marshalSnapshot(payload),
	}

	if err := s.receiptRepository.CreateReceipt(ctx, record); err != nil {
		if derr := s.s3.DeleteFile(objectKey); derr != nil {
			log.Warnf("failed to delete orphaned upload %s: %v", objectKey, derr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	s.auditService.Record(ctx, userMethod+"/"+storeMethod, "receipt.uploaded", &record.ID,
		fmt.Sprintf("amount=%.2f confidence=%.2f", amount, fields.Confidence))

	return &domain.UploadReceiptResponse{
		ReceiptID:    record.ID.String(),
		Status:       record.Status,
		ParsedFields: fields,
		CodePayload:  payload,
		Warnings:     warnings,
	}, nil
}

// Decide applies a reconciliation decision to a provisional receipt. Approval
// finalizes the record and issues rewards exactly once; rejection requires a
// reason. Both transitions are terminal.
func (s *receiptService) Decide(ctx context.Context, receiptID string, req domain.DecisionRequest, actor string) (*domain.DecisionResponse, error) {
	if _, err := uuid.Parse(receiptID); err != nil {
		return nil, domain.ErrParseUUID
	}

	record, err := s.receiptRepository.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return nil, domain.ErrReceiptNotFound
	}

	now := time.Now()

	switch req.Action {
	case "approve":
		points := int(record.Amount / domain.PointsDivisor)
		cashback := record.Amount * s.config.CashbackRate

		update := ApprovalUpdate{
			MatchedAt:       now,
			MatchConfidence: req.MatchConfidence,
			PointsAwarded:   points,
			CashbackAwarded: cashback,
			ProcessedBy:     actor,
			ProcessedAt:     now,
		}
		if len(req.ExternalInvoiceIDs) > 0 {
			joined := strings.Join(req.ExternalInvoiceIDs, ",")
			update.MatchedInvoiceID = &joined
		}

		if err := s.receiptRepository.FinalizeReceipt(ctx, receiptID, update); err != nil {
			return nil, err
		}

		if err := s.rewardService.IssueRewards(ctx, record, points, cashback); err != nil &&
			!errors.Is(err, domain.ErrRewardAlreadyIssued) {
			return nil, err
		}

		s.auditService.Record(ctx, actor, "receipt.approved", &record.ID,
			fmt.Sprintf("points=%d cashback=%.2f", points, cashback))
		s.notifyDecision(record, entities.ReceiptStatusFinal, points, cashback)

		return &domain.DecisionResponse{
			ReceiptID:       receiptID,
			Status:          entities.ReceiptStatusFinal,
			PointsAwarded:   points,
			CashbackAwarded: cashback,
		}, nil

	case "reject":
		if strings.TrimSpace(req.Reason) == "" {
			return nil, domain.ErrRejectionReasonMissing
		}
		if err := s.receiptRepository.RejectReceipt(ctx, receiptID, req.Reason, actor, now); err != nil {
			return nil, err
		}

		s.auditService.Record(ctx, actor, "receipt.rejected", &record.ID, req.Reason)
		s.notifyDecision(record, entities.ReceiptStatusRejected, 0, 0)

		return &domain.DecisionResponse{
			ReceiptID: receiptID,
			Status:    entities.ReceiptStatusRejected,
		}, nil

	default:
		return nil, domain.ErrInvalidDecisionAction
	}
}

func (s *receiptService) GetReceiptByID(ctx context.Context, id string) (*domain.ReceiptResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrParseUUID
	}

	record, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		return nil, domain.ErrReceiptNotFound
	}
	return toReceiptResponse(record), nil
}

func (s *receiptService) GetReceipts(ctx context.Context, filter domain.ReceiptFilter) ([]*domain.ReceiptResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	records, count, err := s.receiptRepository.ListReceipts(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toReceiptResponses(records), count, nil
}

func (s *receiptService) GetUnmatchedReceipts(ctx context.Context, page, limit int) ([]*domain.ReceiptResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	records, count, err := s.receiptRepository.ListUnmatched(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	return toReceiptResponses(records), count, nil
}

func (s *receiptService) saveToTempFile(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "receipt-upload-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

// resolvePurchaseDate prefers the parsed date, then the client-supplied hint,
// then the upload time.
func (s *receiptService) resolvePurchaseDate(fields domain.ParsedReceiptFields, hint string) (time.Time, string) {
	if !fields.Date.IsZero() {
		return fields.Date, ""
	}
	if hint != "" {
		if parsed, err := time.Parse("2006-01-02", hint); err == nil {
			return parsed, "purchase date taken from the request, not the document"
		}
	}
	return time.Now(), "purchase date could not be extracted; defaulted to upload time"
}

func (s *receiptService) notifyDecision(record *entities.Receipt, status string, points int, cashback float64) {
	if record.User == nil || record.User.Email == "" {
		return
	}
	email := record.User.Email
	go func() {
		subject := "Your receipt was " + strings.ToLower(status)
		body := fmt.Sprintf("Receipt %s is now %s.", record.ID, status)
		if status == entities.ReceiptStatusFinal {
			body = fmt.Sprintf("Receipt %s was approved. You earned %d points and R$ %.2f cashback.",
				record.ID, points, cashback)
		}
		if err := mailing.SendMail(email, subject, body); err != nil {
			log.Warnf("failed to send decision notification to %s: %v", email, err)
		}
	}()
}

func marshalSnapshot(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func toReceiptResponse(record *entities.Receipt) *domain.ReceiptResponse {
	return &domain.ReceiptResponse{
		ID:               record.ID.String(),
		UserID:           record.UserID.String(),
		StoreID:          record.StoreID.String(),
		InvoiceNumber:    record.InvoiceNumber,
		Amount:           record.Amount,
		Liters:           record.Liters,
		PurchaseDate:     record.PurchaseDate,
		Status:           record.Status,
		SourceFileURL:    record.SourceFileURL,
		MatchedInvoiceID: record.MatchedInvoiceID,
		MatchedAt:        record.MatchedAt,
		MatchConfidence:  record.MatchConfidence,
		PointsAwarded:    record.PointsAwarded,
		CashbackAwarded:  record.CashbackAwarded,
		RejectionReason:  record.RejectionReason,
		ProcessedBy:      record.ProcessedBy,
		ProcessedAt:      record.ProcessedAt,
		CreatedAt:        record.CreatedAt,
	}
}

func toReceiptResponses(records []*entities.Receipt) []*domain.ReceiptResponse {
	responses := make([]*domain.ReceiptResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toReceiptResponse(record))
	}
	return responses
}

package audit

import (
	"Fideliza-Backend/entities"
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// AuditService records operator-visible events. Writes are best-effort:
	// a failed audit write never fails the caller's request.
	AuditService interface {
		Record(ctx context.Context, actor, action string, receiptID *uuid.UUID, details string)
	}

	AuditRepository interface {
		CreateAuditLog(ctx context.Context, entry *entities.AuditLog) error
	}

	auditRepository struct {
		db *gorm.DB
	}

	auditService struct {
		auditRepository AuditRepository
	}
)

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) CreateAuditLog(ctx context.Context, entry *entities.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func NewAuditService(auditRepository AuditRepository) AuditService {
	return &auditService{
		auditRepository: auditRepository,
	}
}

func (s *auditService) Record(ctx context.Context, actor, action string, receiptID *uuid.UUID, details string) {
	entry := &entities.AuditLog{
		ID:        uuid.New(),
		Actor:     actor,
		Action:    action,
		ReceiptID: receiptID,
		Details:   details,
		Timestamp: entities.Timestamp{CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}

	if err := s.auditRepository.CreateAuditLog(ctx, entry); err != nil {
		log.Warnf("audit: failed to record %s by %s: %v", action, actor, err)
	}
}

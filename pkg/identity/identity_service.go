package identity

import (
	"Fideliza-Backend/domain"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resolution methods, in cascade order.
const (
	MethodPayloadName        = "payload_customer_name"
	MethodParsedName         = "parsed_customer_name"
	MethodEmail              = "email"
	MethodPhone              = "phone"
	MethodCallerUserID       = "caller_user_id"
	MethodPayloadStoreNumber = "payload_store_number"
	MethodParsedStoreName    = "parsed_store_name"
	MethodCallerStoreID      = "caller_store_id"
)

// Config lists the sentinel values a caller-supplied identifier may carry
// when the client has no real identity to offer.
type Config struct {
	DefaultText    string
	PlaceholderIDs []string
}

func DefaultConfig() Config {
	return Config{
		DefaultText: "Not Found",
		PlaceholderIDs: []string{
			"anonymous",
			"unknown",
			"placeholder",
			"null",
			"undefined",
			"00000000-0000-0000-0000-000000000000",
		},
	}
}

type (
	IdentityService interface {
		ResolveUser(ctx context.Context, payload domain.CodePayload, fields domain.ParsedReceiptFields, callerUserID string) (uuid.UUID, string, error)
		ResolveStore(ctx context.Context, payload domain.CodePayload, fields domain.ParsedReceiptFields, callerStoreID string) (uuid.UUID, string, error)
	}

	identityService struct {
		identityRepository IdentityRepository
		config             Config
	}
)

func NewIdentityService(identityRepository IdentityRepository, config Config) IdentityService {
	return &identityService{
		identityRepository: identityRepository,
		config:             config,
	}
}

// ResolveUser walks the user cascade: payload name, parsed name, email,
// phone, then a caller-supplied identifier. First success wins.
func (s *identityService) ResolveUser(ctx context.Context, payload domain.CodePayload, fields domain.ParsedReceiptFields, callerUserID string) (uuid.UUID, string, error) {
	if name := s.usableName(payload.CustomerName); name != "" {
		if user, err := s.lookupUserByName(ctx, name); err == nil {
			return user, MethodPayloadName, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	if name := s.usableName(fields.CustomerName); name != "" {
		if user, err := s.lookupUserByName(ctx, name); err == nil {
			return user, MethodParsedName, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	if fields.Email != "" {
		user, err := s.identityRepository.GetUserByEmail(ctx, fields.Email)
		if err == nil {
			return user.ID, MethodEmail, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	if fields.PhoneNumber != "" {
		user, err := s.identityRepository.GetUserByPhone(ctx, fields.PhoneNumber)
		if err == nil {
			return user.ID, MethodPhone, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	if s.validIdentifier(callerUserID) {
		user, err := s.identityRepository.GetUserByID(ctx, callerUserID)
		if err == nil {
			return user.ID, MethodCallerUserID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	return uuid.Nil, "", &domain.IdentityResolutionError{
		Subject:      "user",
		CustomerName: firstNonEmpty(payload.CustomerName, fields.CustomerName),
		Email:        fields.Email,
		Phone:        fields.PhoneNumber,
	}
}

// ResolveStore walks the store cascade: payload store number, parsed store
// name, then a caller-supplied identifier.
func (s *identityService) ResolveStore(ctx context.Context, payload domain.CodePayload, fields domain.ParsedReceiptFields, callerStoreID string) (uuid.UUID, string, error) {
	if payload.StoreNumber != "" {
		store, err := s.identityRepository.GetStoreByNumber(ctx, payload.StoreNumber)
		if err == nil {
			return store.ID, MethodPayloadStoreNumber, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	if fields.StoreName != "" && !strings.EqualFold(fields.StoreName, s.config.DefaultText) {
		store, err := s.identityRepository.GetStoreByName(ctx, fields.StoreName)
		if err == nil {
			return store.ID, MethodParsedStoreName, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	if s.validIdentifier(callerStoreID) {
		store, err := s.identityRepository.GetStoreByID(ctx, callerStoreID)
		if err == nil {
			return store.ID, MethodCallerStoreID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", err
		}
	}

	return uuid.Nil, "", &domain.IdentityResolutionError{
		Subject:     "store",
		StoreName:   fields.StoreName,
		StoreNumber: payload.StoreNumber,
	}
}

func (s *identityService) usableName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, s.config.DefaultText) {
		return ""
	}
	return name
}

func (s *identityService) lookupUserByName(ctx context.Context, fullName string) (uuid.UUID, error) {
	parts := strings.Fields(fullName)
	firstName := parts[0]
	lastName := ""
	if len(parts) > 1 {
		lastName = parts[len(parts)-1]
	}

	user, err := s.identityRepository.GetUserByName(ctx, firstName, lastName)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// validIdentifier accepts caller identifiers only when syntactically valid
// and not a known placeholder sentinel.
func (s *identityService) validIdentifier(id string) bool {
	if id == "" {
		return false
	}
	for _, placeholder := range s.config.PlaceholderIDs {
		if strings.EqualFold(id, placeholder) {
			return false
		}
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed != uuid.Nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

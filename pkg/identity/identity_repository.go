package identity

import (
	"Fideliza-Backend/entities"
	"context"

	"gorm.io/gorm"
)

type (
	IdentityRepository interface {
		GetUserByName(ctx context.Context, firstName, lastName string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUserByPhone(ctx context.Context, phone string) (*entities.User, error)
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		GetStoreByNumber(ctx context.Context, number string) (*entities.Store, error)
		GetStoreByName(ctx context.Context, name string) (*entities.Store, error)
		GetStoreByID(ctx context.Context, id string) (*entities.Store, error)
	}

	identityRepository struct {
		db *gorm.DB
	}
)

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) GetUserByName(ctx context.Context, firstName, lastName string) (*entities.User, error) {
	var user entities.User
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("first_name ILIKE ?", firstName)
	if lastName != "" {
		query = query.Where("last_name ILIKE ?", lastName)
	}
	if err := query.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *identityRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND email = ?", true, email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *identityRepository) GetUserByPhone(ctx context.Context, phone string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND phone = ?", true, phone).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *identityRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *identityRepository) GetStoreByNumber(ctx context.Context, number string) (*entities.Store, error) {
	var store entities.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND store_number = ?", true, number).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *identityRepository) GetStoreByName(ctx context.Context, name string) (*entities.Store, error) {
	var store entities.Store
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("name ILIKE ?", name).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *identityRepository) GetStoreByID(ctx context.Context, id string) (*entities.Store, error) {
	var store entities.Store
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

package identity

import (
	"Fideliza-Backend/domain"
	"Fideliza-Backend/entities"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeIdentityRepository struct {
	usersByName   map[string]*entities.User
	usersByEmail  map[string]*entities.User
	usersByPhone  map[string]*entities.User
	usersByID     map[string]*entities.User
	storesByNum   map[string]*entities.Store
	storesByName  map[string]*entities.Store
	storesByID    map[string]*entities.Store
}

func newFakeIdentityRepository() *fakeIdentityRepository {
	return &fakeIdentityRepository{
		usersByName:  map[string]*entities.User{},
		usersByEmail: map[string]*entities.User{},
		usersByPhone: map[string]*entities.User{},
		usersByID:    map[string]*entities.User{},
		storesByNum:  map[string]*entities.Store{},
		storesByName: map[string]*entities.Store{},
		storesByID:   map[string]*entities.Store{},
	}
}

func (f *fakeIdentityRepository) GetUserByName(_ context.Context, firstName, lastName string) (*entities.User, error) {
	if user, ok := f.usersByName[strings.ToLower(firstName+" "+lastName)]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIdentityRepository) GetUserByEmail(_ context.Context, email string) (*entities.User, error) {
	if user, ok := f.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIdentityRepository) GetUserByPhone(_ context.Context, phone string) (*entities.User, error) {
	if user, ok := f.usersByPhone[phone]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIdentityRepository) GetUserByID(_ context.Context, id string) (*entities.User, error) {
	if user, ok := f.usersByID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIdentityRepository) GetStoreByNumber(_ context.Context, number string) (*entities.Store, error) {
	if store, ok := f.storesByNum[number]; ok {
		return store, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIdentityRepository) GetStoreByName(_ context.Context, name string) (*entities.Store, error) {
	if store, ok := f.storesByName[strings.ToLower(name)]; ok {
		return store, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIdentityRepository) GetStoreByID(_ context.Context, id string) (*entities.Store, error) {
	if store, ok := f.storesByID[id]; ok {
		return store, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestResolveUser_PayloadNameBeatsParsedName(t *testing.T) {
	repo := newFakeIdentityRepository()
	payloadUser := &entities.User{ID: uuid.New()}
	parsedUser := &entities.User{ID: uuid.New()}
	repo.usersByName["maria silva"] = payloadUser
	repo.usersByName["joao souza"] = parsedUser

	svc := NewIdentityService(repo, DefaultConfig())
	payload := domain.CodePayload{CustomerName: "Maria Silva", Success: true}
	fields := domain.ParsedReceiptFields{CustomerName: "Joao Souza"}

	id, method, err := svc.ResolveUser(context.Background(), payload, fields, "")
	require.NoError(t, err)
	assert.Equal(t, payloadUser.ID, id)
	assert.Equal(t, MethodPayloadName, method)
}

func TestResolveUser_FallsThroughCascade(t *testing.T) {
	repo := newFakeIdentityRepository()
	emailUser := &entities.User{ID: uuid.New()}
	repo.usersByEmail["maria@example.com"] = emailUser

	svc := NewIdentityService(repo, DefaultConfig())
	fields := domain.ParsedReceiptFields{
		CustomerName: "Not Found",
		Email:        "maria@example.com",
		PhoneNumber:  "11987654321",
	}

	id, method, err := svc.ResolveUser(context.Background(), domain.CodePayload{}, fields, "")
	require.NoError(t, err)
	assert.Equal(t, emailUser.ID, id)
	assert.Equal(t, MethodEmail, method)
}

func TestResolveUser_PhoneBeforeCallerID(t *testing.T) {
	repo := newFakeIdentityRepository()
	phoneUser := &entities.User{ID: uuid.New()}
	callerUser := &entities.User{ID: uuid.New()}
	repo.usersByPhone["11987654321"] = phoneUser
	repo.usersByID[callerUser.ID.String()] = callerUser

	svc := NewIdentityService(repo, DefaultConfig())
	fields := domain.ParsedReceiptFields{PhoneNumber: "11987654321"}

	id, method, err := svc.ResolveUser(context.Background(), domain.CodePayload{}, fields, callerUser.ID.String())
	require.NoError(t, err)
	assert.Equal(t, phoneUser.ID, id)
	assert.Equal(t, MethodPhone, method)
}

func TestResolveUser_CallerIDRejectsPlaceholders(t *testing.T) {
	repo := newFakeIdentityRepository()
	svc := NewIdentityService(repo, DefaultConfig())

	for _, placeholder := range []string{"anonymous", "00000000-0000-0000-0000-000000000000", "not-a-uuid", ""} {
		_, _, err := svc.ResolveUser(context.Background(), domain.CodePayload{}, domain.ParsedReceiptFields{}, placeholder)
		assert.ErrorIs(t, err, domain.ErrUserNotFound, "placeholder %q", placeholder)
	}
}

func TestResolveUser_FailureCarriesDiagnostics(t *testing.T) {
	svc := NewIdentityService(newFakeIdentityRepository(), DefaultConfig())
	payload := domain.CodePayload{CustomerName: "Maria Silva"}
	fields := domain.ParsedReceiptFields{Email: "maria@example.com", PhoneNumber: "11987654321"}

	_, _, err := svc.ResolveUser(context.Background(), payload, fields, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	var resErr *domain.IdentityResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "Maria Silva", resErr.CustomerName)
	assert.Equal(t, "maria@example.com", resErr.Email)
	assert.Equal(t, "11987654321", resErr.Phone)
}

func TestResolveStore_PayloadNumberFirst(t *testing.T) {
	repo := newFakeIdentityRepository()
	numberStore := &entities.Store{ID: uuid.New()}
	nameStore := &entities.Store{ID: uuid.New()}
	repo.storesByNum["017"] = numberStore
	repo.storesByName["posto sao jorge"] = nameStore

	svc := NewIdentityService(repo, DefaultConfig())
	payload := domain.CodePayload{StoreNumber: "017", Success: true}
	fields := domain.ParsedReceiptFields{StoreName: "Posto Sao Jorge"}

	id, method, err := svc.ResolveStore(context.Background(), payload, fields, "")
	require.NoError(t, err)
	assert.Equal(t, numberStore.ID, id)
	assert.Equal(t, MethodPayloadStoreNumber, method)
}

func TestResolveStore_FailureIsTerminal(t *testing.T) {
	svc := NewIdentityService(newFakeIdentityRepository(), DefaultConfig())
	fields := domain.ParsedReceiptFields{StoreName: "Posto Desconhecido"}

	_, _, err := svc.ResolveStore(context.Background(), domain.CodePayload{StoreNumber: "099"}, fields, "anonymous")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)

	var resErr *domain.IdentityResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "Posto Desconhecido", resErr.StoreName)
	assert.Equal(t, "099", resErr.StoreNumber)
}

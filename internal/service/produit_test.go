package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ny-kanto/mall-api/internal/domain"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/filter"
)

// --- Mock Repositories ---

type mockProduitRepository struct {
	mock.Mock
}

func (m *mockProduitRepository) Create(ctx context.Context, p *domain.Produit) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProduitRepository) GetByID(ctx context.Context, id string) (*domain.Produit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Produit), args.Error(1)
}

func (m *mockProduitRepository) Update(ctx context.Context, p *domain.Produit) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProduitRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProduitRepository) Count(ctx context.Context, where filter.Predicate) (int, error) {
	args := m.Called(ctx, where)
	return args.Int(0), args.Error(1)
}

func (m *mockProduitRepository) List(ctx context.Context, where filter.Predicate, order filter.Sort, limit, skip int) ([]domain.Produit, error) {
	args := m.Called(ctx, where, order, limit, skip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Produit), args.Error(1)
}

type mockCategorieRepository struct {
	mock.Mock
}

func (m *mockCategorieRepository) List(ctx context.Context) ([]domain.Categorie, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Categorie), args.Error(1)
}

func (m *mockCategorieRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Test Helpers ---

type produitMocks struct {
	produits   *mockProduitRepository
	boutiques  *mockBoutiqueRepository
	categories *mockCategorieRepository
	users      *mockUserRepository
}

func newTestProduitService() (*ProduitService, produitMocks) {
	m := produitMocks{
		produits:   new(mockProduitRepository),
		boutiques:  new(mockBoutiqueRepository),
		categories: new(mockCategorieRepository),
		users:      new(mockUserRepository),
	}
	svc := NewProduitService(m.produits, m.boutiques, m.categories, m.users, catalogBounds, newTestLogger())
	return svc, m
}

var (
	admin   = Caller{UserID: "admin-1", Role: domain.RoleAdmin}
	owner   = Caller{UserID: "owner-1", Role: domain.RoleBoutique}
	shopper = Caller{UserID: "buyer-1", Role: domain.RoleAcheteur}
)

func validProduitInput(boutiqueID string) *domain.ProduitInput {
	return &domain.ProduitInput{Nom: " Robe ", BoutiqueID: boutiqueID, Prix: 49.9}
}

// --- Tests ---

func TestCreateProduit_Admin(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.produits.On("Create", ctx, mock.AnythingOfType("*domain.Produit")).Return(nil)

	p, err := svc.Create(ctx, admin, validProduitInput("b-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Robe", p.Nom)
	assert.Equal(t, []domain.Image{}, p.Images)
	assert.Zero(t, p.NoteCompte)
	m.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCreateProduit_ShopOwner(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.users.On("GetByID", ctx, owner.UserID).Return(&domain.User{ID: owner.UserID, Role: domain.RoleBoutique, BoutiqueID: strPtr("b-1")}, nil)
	m.produits.On("Create", ctx, mock.AnythingOfType("*domain.Produit")).Return(nil)

	_, err := svc.Create(ctx, owner, validProduitInput("b-1"))
	require.NoError(t, err)
	m.produits.AssertExpectations(t)
}

func TestCreateProduit_Forbidden(t *testing.T) {
	tests := []struct {
		name   string
		caller Caller
		linked *string
	}{
		{"other shop", owner, strPtr("b-2")},
		{"unlinked owner", owner, nil},
		{"shopper", shopper, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestProduitService()
			ctx := context.Background()
			m.users.On("GetByID", ctx, tt.caller.UserID).Return(&domain.User{ID: tt.caller.UserID, BoutiqueID: tt.linked}, nil).Maybe()

			_, err := svc.Create(ctx, tt.caller, validProduitInput("b-1"))
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
			m.produits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateProduit_UnknownCategorie(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.categories.On("Exists", ctx, "c-x").Return(false, nil)

	input := validProduitInput("b-1")
	input.CategorieID = strPtr("c-x")
	_, err := svc.Create(ctx, admin, input)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateProduit_MoveRequiresBothShops(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.produits.On("GetByID", ctx, "p-1").Return(&domain.Produit{ID: "p-1", BoutiqueID: "b-1"}, nil)
	m.users.On("GetByID", ctx, owner.UserID).Return(&domain.User{ID: owner.UserID, BoutiqueID: strPtr("b-1")}, nil)

	_, err := svc.Update(ctx, owner, "p-1", validProduitInput("b-2"))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	m.produits.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProduit_KeepsAggregate(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.produits.On("GetByID", ctx, "p-1").Return(&domain.Produit{ID: "p-1", BoutiqueID: "b-1", NoteMoyenne: 4.5, NoteCompte: 2}, nil)
	m.produits.On("Update", ctx, mock.AnythingOfType("*domain.Produit")).Return(nil)

	p, err := svc.Update(ctx, admin, "p-1", validProduitInput("b-1"))
	require.NoError(t, err)
	assert.Equal(t, 4.5, p.NoteMoyenne)
	assert.Equal(t, 2, p.NoteCompte)
	assert.Equal(t, 49.9, p.Prix)
}

func TestDeleteProduit_NotFound(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.produits.On("GetByID", ctx, "p-9").Return(nil, apperrors.NotFound("produit", "p-9"))

	err := svc.Delete(ctx, admin, "p-9")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteProduit_Owner(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.produits.On("GetByID", ctx, "p-1").Return(&domain.Produit{ID: "p-1", BoutiqueID: "b-1"}, nil)
	m.users.On("GetByID", ctx, owner.UserID).Return(&domain.User{ID: owner.UserID, BoutiqueID: strPtr("b-1")}, nil)
	m.produits.On("Delete", ctx, "p-1").Return(nil)

	require.NoError(t, svc.Delete(ctx, owner, "p-1"))
	m.produits.AssertExpectations(t)
}

func TestListProduits_CompilesQuery(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	q := url.Values{
		"search":   {"robe"},
		"minPrice": {"10"},
		"maxPrice": {"abc"},
		"sortBy":   {"prix"},
		"order":    {"asc"},
		"page":     {"2"},
		"limit":    {"5"},
	}
	matchWhere := mock.MatchedBy(func(where filter.Predicate) bool {
		sql, args := where.SQL(0)
		return sql == "nom ~* $1 AND prix >= $2" && assert.ObjectsAreEqual([]any{"robe", 10.0}, args)
	})
	order := filter.Sort{{Column: "prix", Direction: filter.Asc}, {Column: "id", Direction: filter.Asc}}

	m.produits.On("Count", mock.Anything, matchWhere).Return(6, nil)
	m.produits.On("List", mock.Anything, matchWhere, order, 5, 5).Return([]domain.Produit{{ID: "p-6"}}, nil)

	res, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 6, res.TotalItems)
	assert.Equal(t, 2, res.TotalPages)
	assert.False(t, res.Meta().HasNextPage)
	assert.True(t, res.Meta().HasPrevPage)
	m.produits.AssertExpectations(t)
}

func TestListByBoutique_BaseFilterCannotBeWidened(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.boutiques.On("GetByID", ctx, "b-1").Return(&domain.Boutique{ID: "b-1"}, nil)
	matchWhere := mock.MatchedBy(func(where filter.Predicate) bool {
		sql, _ := where.SQL(0)
		return sql == "boutique_id = $1 AND boutique_id = $2"
	})
	m.produits.On("Count", mock.Anything, matchWhere).Return(0, nil)
	m.produits.On("List", mock.Anything, matchWhere, mock.Anything, 12, 0).Return([]domain.Produit{}, nil)

	other := "7f0c9a52-8d0e-4a3c-b7f4-3a1f1e2d4c5b"
	res, err := svc.ListByBoutique(ctx, "b-1", url.Values{"boutique": {other}})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	m.produits.AssertExpectations(t)
}

func TestListByBoutique_UnknownShop(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()

	m.boutiques.On("GetByID", ctx, "b-9").Return(nil, apperrors.NotFound("boutique", "b-9"))

	_, err := svc.ListByBoutique(ctx, "b-9", url.Values{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSearchProduits(t *testing.T) {
	svc, m := newTestProduitService()
	ctx := context.Background()
	maxPrice := 100.0

	matchWhere := mock.MatchedBy(func(where filter.Predicate) bool {
		sql, _ := where.SQL(0)
		return sql == "(nom ~* $1 OR description ~* $2) AND boutique_id = $3 AND prix <= $4"
	})
	order := filter.Sort{{Column: "created_at", Direction: filter.Desc}, {Column: "id", Direction: filter.Desc}}
	m.produits.On("List", ctx, matchWhere, order, 0, 0).Return([]domain.Produit{{ID: "p-1"}}, nil)

	res, err := svc.Search(ctx, &ProduitSearch{Text: "coton", Boutique: "b-1", MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Len(t, res, 1)
	m.produits.AssertExpectations(t)
}

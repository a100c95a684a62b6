package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/filter"
)

const otherBoutiqueID = "88888888-8888-4888-8888-888888888888"

func sampleProduit() *domain.Produit {
	now := time.Now().UTC()
	return &domain.Produit{
		ID:         testProduitID,
		Nom:        "Carnet A5",
		BoutiqueID: testBoutiqueID,
		Prix:       4.5,
		Images:     []domain.Image{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func produitBody(boutiqueID string) map[string]any {
	return map[string]any{
		"nom":      "Carnet A5",
		"boutique": boutiqueID,
		"prix":     4.5,
	}
}

func ownerOf(boutiqueID string) *domain.User {
	return &domain.User{ID: testOwnerID, Role: domain.RoleBoutique, BoutiqueID: &boutiqueID}
}

func TestListProduits_PriceRange(t *testing.T) {
	router, d := newTestRouter(t)

	d.produits.On("Count", mock.Anything, mock.MatchedBy(func(p filter.Predicate) bool {
		_, args := p.SQL(0)
		return len(args) == 2
	})).Return(0, nil)
	d.produits.On("List", mock.Anything, mock.Anything, mock.Anything, 12, 0).Return([]domain.Produit{}, nil)

	rec := doRequest(t, router, http.MethodGet, "/produits?minPrice=1&maxPrice=10", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	d.produits.AssertExpectations(t)
}

func TestSearchProduits_ReturnsEveryMatch(t *testing.T) {
	router, d := newTestRouter(t)

	found := make([]domain.Produit, 150)
	for i := range found {
		found[i] = domain.Produit{Nom: "Carnet", BoutiqueID: testBoutiqueID, Images: []domain.Image{}}
	}
	d.produits.On("List", mock.Anything, mock.Anything, mock.Anything, 0, 0).Return(found, nil)

	rec := doRequest(t, router, http.MethodPost, "/produits/search", map[string]any{"text": "carnet"}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Len(t, resp.Data, 150)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 150, *resp.Count)
	d.produits.AssertExpectations(t)
}

func TestSearchProduits_InvertedRange(t *testing.T) {
	router, d := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/produits/search", map[string]any{
		"minPrice": 10,
		"maxPrice": 1,
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	d.produits.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateProduit_Owner(t *testing.T) {
	router, d := newTestRouter(t)

	d.users.On("GetByID", mock.Anything, testOwnerID).Return(ownerOf(testBoutiqueID), nil)
	d.produits.On("Create", mock.Anything, mock.AnythingOfType("*domain.Produit")).Return(nil)

	rec := doRequest(t, router, http.MethodPost, "/produits", produitBody(testBoutiqueID), tokenFor(t, testOwnerID, domain.RoleBoutique))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, "Carnet A5", data["nom"])
}

func TestCreateProduit_OtherShopForbidden(t *testing.T) {
	router, d := newTestRouter(t)

	d.users.On("GetByID", mock.Anything, testOwnerID).Return(ownerOf(otherBoutiqueID), nil)

	rec := doRequest(t, router, http.MethodPost, "/produits", produitBody(testBoutiqueID), tokenFor(t, testOwnerID, domain.RoleBoutique))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	d.produits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduit_BuyerForbidden(t *testing.T) {
	router, d := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/produits", produitBody(testBoutiqueID), tokenFor(t, testUserID, domain.RoleAcheteur))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	d.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateProduit_Admin(t *testing.T) {
	router, d := newTestRouter(t)

	d.produits.On("GetByID", mock.Anything, testProduitID).Return(sampleProduit(), nil)
	d.produits.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Produit) bool {
		return p.Prix == 6 && p.BoutiqueID == testBoutiqueID
	})).Return(nil)

	body := produitBody(testBoutiqueID)
	body["prix"] = 6
	rec := doRequest(t, router, http.MethodPut, "/produits/"+testProduitID, body, tokenFor(t, testAdminID, domain.RoleAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
	d.produits.AssertExpectations(t)
}

func TestDeleteProduit_Owner(t *testing.T) {
	router, d := newTestRouter(t)

	d.produits.On("GetByID", mock.Anything, testProduitID).Return(sampleProduit(), nil)
	d.users.On("GetByID", mock.Anything, testOwnerID).Return(ownerOf(testBoutiqueID), nil)
	d.produits.On("Delete", mock.Anything, testProduitID).Return(nil)

	rec := doRequest(t, router, http.MethodDelete, "/produits/"+testProduitID, nil, tokenFor(t, testOwnerID, domain.RoleBoutique))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Produit supprimé", decodeResponse(t, rec).Message)
}

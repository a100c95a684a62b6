package domain

import "time"

// Produit is an item sold by a shop. NoteMoyenne and NoteCompte are
// maintained by the rating aggregator only.
type Produit struct {
	ID          string    `json:"id"`
	Nom         string    `json:"nom"`
	BoutiqueID  string    `json:"boutique"`
	CategorieID *string   `json:"categorie,omitempty"`
	Description string    `json:"description"`
	Prix        float64   `json:"prix"`
	Images      []Image   `json:"images"`
	NoteMoyenne float64   `json:"noteMoyenne"`
	NoteCompte  int       `json:"noteCompte"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProduitInput carries the writable fields of a product.
type ProduitInput struct {
	Nom         string  `json:"nom" validate:"required,max=200"`
	BoutiqueID  string  `json:"boutique" validate:"required,uuid"`
	CategorieID *string `json:"categorie" validate:"omitempty,uuid"`
	Description string  `json:"description" validate:"max=5000"`
	Prix        float64 `json:"prix" validate:"min=0"`
	Images      []Image `json:"images" validate:"max=10"`
}

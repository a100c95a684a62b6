package domain

// Favoris lists the caller's favorite shops and products.
type Favoris struct {
	Boutiques []FavoriBoutique `json:"boutiques"`
	Produits  []FavoriProduit  `json:"produits"`
}

// FavoriBoutique is the shop projection shown in favorites.
type FavoriBoutique struct {
	ID          string `json:"id"`
	Nom         string `json:"nom"`
	Image       *Image `json:"image,omitempty"`
	CategorieID string `json:"categorie"`
	Etage       int    `json:"etage"`
}

// FavoriProduit is the product projection shown in favorites.
type FavoriProduit struct {
	ID         string  `json:"id"`
	Nom        string  `json:"nom"`
	Prix       float64 `json:"prix"`
	Images     []Image `json:"images"`
	BoutiqueID string  `json:"boutique"`
}

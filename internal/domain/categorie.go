package domain

// Categorie groups shops and products.
type Categorie struct {
	ID  string `json:"id"`
	Nom string `json:"nom"`
}

package domain

// User roles.
const (
	RoleAcheteur = "acheteur"
	RoleBoutique = "boutique"
	RoleAdmin    = "admin"
)

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	switch role {
	case RoleAcheteur, RoleBoutique, RoleAdmin:
		return true
	}
	return false
}

// User is an account of the directory. Shop owners are linked to the shop
// they manage through BoutiqueID.
type User struct {
	ID         string  `json:"id"`
	Nom        string  `json:"nom"`
	Prenom     string  `json:"prenom"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	BoutiqueID *string `json:"boutique,omitempty"`
}

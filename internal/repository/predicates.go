package repository

import (
	"time"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/filter"
)

// Boutique columns usable in predicates and sorts.
const (
	ColBoutiqueNom       = "nom"
	ColBoutiqueCategorie = "categorie_id"
	ColBoutiqueEtage     = "etage"
	ColBoutiqueEmail     = "contact_email"
	ColNoteMoyenne       = "note_moyenne"
	ColCreatedAt         = "created_at"
)

// Produit columns usable in predicates and sorts.
const (
	ColProduitNom         = "nom"
	ColProduitDescription = "description"
	ColProduitPrix        = "prix"
	ColProduitBoutique    = "boutique_id"
	ColProduitCategorie   = "categorie_id"
)

// openAtSQL holds when the horaires entry of the day is open at the clock
// time. Both bounds are inclusive and compared bytewise, as "HH:MM" strings.
const openAtSQL = `COALESCE(
	NOT COALESCE((horaires -> ?::text ->> 'ferme')::boolean, false)
	AND (horaires -> ?::text ->> 'ouverture') COLLATE "C" <= ?
	AND (horaires -> ?::text ->> 'fermeture') COLLATE "C" >= ?, false)`

// OpenAt matches shops whose schedule is (open=true) or is not (open=false)
// open at t. t must already be in the mall's location.
func OpenAt(t time.Time, open bool) filter.Term {
	day := domain.Jours[t.Weekday()]
	clock := domain.ClockTime(t)
	expr := openAtSQL
	if !open {
		expr = "NOT " + expr
	}
	return filter.SQL(expr, day, day, clock, day, clock)
}

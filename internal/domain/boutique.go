package domain

import (
	"fmt"
	"time"
)

// Days of the week as used in opening hours, indexed by time.Weekday.
var Jours = [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

// Horaire holds a single day's opening hours as "HH:MM" strings.
type Horaire struct {
	Ouverture string `json:"ouverture,omitempty" validate:"omitempty,datetime=15:04"`
	Fermeture string `json:"fermeture,omitempty" validate:"omitempty,datetime=15:04"`
	Ferme     bool   `json:"ferme"`
}

// Horaires is the weekly schedule of a shop. A missing day means closed.
type Horaires struct {
	Lundi    *Horaire `json:"lundi,omitempty"`
	Mardi    *Horaire `json:"mardi,omitempty"`
	Mercredi *Horaire `json:"mercredi,omitempty"`
	Jeudi    *Horaire `json:"jeudi,omitempty"`
	Vendredi *Horaire `json:"vendredi,omitempty"`
	Samedi   *Horaire `json:"samedi,omitempty"`
	Dimanche *Horaire `json:"dimanche,omitempty"`
}

// Day returns the schedule for d, or nil.
func (h *Horaires) Day(d time.Weekday) *Horaire {
	if h == nil {
		return nil
	}
	switch d {
	case time.Monday:
		return h.Lundi
	case time.Tuesday:
		return h.Mardi
	case time.Wednesday:
		return h.Mercredi
	case time.Thursday:
		return h.Jeudi
	case time.Friday:
		return h.Vendredi
	case time.Saturday:
		return h.Samedi
	case time.Sunday:
		return h.Dimanche
	}
	return nil
}

// IsOpenAt reports whether the shop is open at t, compared in t's location.
// Both bounds are inclusive.
func (h *Horaires) IsOpenAt(t time.Time) bool {
	day := h.Day(t.Weekday())
	if day == nil || day.Ferme {
		return false
	}
	now := ClockTime(t)
	return day.Ouverture <= now && now <= day.Fermeture
}

// Normalize enforces that open days carry both bounds and clears the bounds
// of closed days.
func (h *Horaires) Normalize() error {
	if h == nil {
		return nil
	}
	for i, d := range []*Horaire{h.Lundi, h.Mardi, h.Mercredi, h.Jeudi, h.Vendredi, h.Samedi, h.Dimanche} {
		if d == nil {
			continue
		}
		if d.Ferme {
			d.Ouverture, d.Fermeture = "", ""
			continue
		}
		if d.Ouverture == "" || d.Fermeture == "" {
			return fmt.Errorf("horaires %s: ouverture and fermeture are required", Jours[(i+1)%7])
		}
	}
	return nil
}

// ClockTime formats t as "HH:MM".
func ClockTime(t time.Time) string {
	return t.Format("15:04")
}

// Contact holds a shop's contact details.
type Contact struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Tel   string `json:"tel,omitempty"`
}

// Image references an externally hosted picture.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// CategorieRef is the category embedded in listings.
type CategorieRef struct {
	ID  string `json:"id"`
	Nom string `json:"nom"`
}

// Boutique is a shop of the mall. NoteMoyenne and NoteCompte are maintained
// by the rating aggregator only.
type Boutique struct {
	ID               string        `json:"id"`
	Nom              string        `json:"nom"`
	CategorieID      string        `json:"-"`
	Categorie        *CategorieRef `json:"categorie,omitempty"`
	Etage            int           `json:"etage"`
	Contact          Contact       `json:"contact"`
	Horaires         Horaires      `json:"horaires"`
	Image            *Image        `json:"image,omitempty"`
	NoteMoyenne      float64       `json:"noteMoyenne"`
	NoteCompte       int           `json:"noteCompte"`
	OuvertMaintenant bool          `json:"ouvertMaintenant"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// BoutiqueInput carries the writable fields of a shop.
type BoutiqueInput struct {
	Nom         string   `json:"nom" validate:"required,max=200"`
	CategorieID string   `json:"categorie" validate:"required,uuid"`
	Etage       *int     `json:"etage" validate:"required,min=-5,max=50"`
	Contact     Contact  `json:"contact"`
	Horaires    Horaires `json:"horaires"`
	Image       *Image   `json:"image"`
}

// BoutiqueStatistics summarizes the directory.
type BoutiqueStatistics struct {
	Total        int              `json:"total"`
	Ouvertes     int              `json:"ouvertes"`
	Fermees      int              `json:"fermees"`
	ParCategorie []CategorieCount `json:"parCategorie"`
	ParEtage     []EtageCount     `json:"parEtage"`
}

// CategorieCount is the number of shops of one category.
type CategorieCount struct {
	CategorieID string `json:"id"`
	Categorie   string `json:"categorie"`
	Count       int    `json:"count"`
}

// EtageCount is the number of shops on one floor.
type EtageCount struct {
	Etage int `json:"etage"`
	Count int `json:"count"`
}

package domain

import (
	"math"
	"strings"
	"time"
)

// EntityKind discriminates what a review rates.
type EntityKind string

const (
	EntityBoutique EntityKind = "boutique"
	EntityProduit  EntityKind = "produit"
)

// ParseEntityKind accepts the stored names and their English aliases.
func ParseEntityKind(s string) (EntityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boutique", "shop":
		return EntityBoutique, true
	case "produit", "product":
		return EntityProduit, true
	}
	return "", false
}

// Score bounds for a review.
const (
	MinNote = 1
	MaxNote = 5
)

// ValidNote reports whether n lies in [MinNote, MaxNote].
func ValidNote(n float64) bool {
	return n >= MinNote && n <= MaxNote
}

// Review is one user's opinion of one shop or product. A user holds at most
// one review per entity.
type Review struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	EntityType  EntityKind `json:"entityType"`
	EntityID    string     `json:"entityId"`
	Note        float64    `json:"note"`
	Commentaire string     `json:"commentaire"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Reviewer    *Reviewer  `json:"user,omitempty"`
}

// Reviewer is the public identity attached to listed reviews.
type Reviewer struct {
	ID    string `json:"id"`
	Nom   string `json:"nom"`
	Email string `json:"email"`
}

// RatingSummary is the aggregate stored on a rated entity.
type RatingSummary struct {
	NoteMoyenne float64 `json:"noteMoyenne"`
	NoteCompte  int     `json:"noteCompte"`
}

// NewRatingSummary rounds avg to one decimal, half away from zero. An empty
// review set always yields a zero average.
func NewRatingSummary(avg float64, count int) RatingSummary {
	if count <= 0 {
		return RatingSummary{}
	}
	return RatingSummary{NoteMoyenne: math.Round(avg*10) / 10, NoteCompte: count}
}

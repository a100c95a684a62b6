package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekHours() Horaires {
	return Horaires{
		Lundi:    &Horaire{Ouverture: "09:00", Fermeture: "20:00"},
		Samedi:   &Horaire{Ouverture: "10:00", Fermeture: "22:30"},
		Dimanche: &Horaire{Ferme: true},
	}
}

func TestHoraires_IsOpenAt(t *testing.T) {
	h := weekHours()
	// 2026-10-12 is a Monday.
	monday := func(hh, mm int) time.Time { return time.Date(2026, 10, 12, hh, mm, 0, 0, time.UTC) }

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before opening", monday(8, 59), false},
		{"at opening", monday(9, 0), true},
		{"midday", monday(13, 30), true},
		{"at closing", monday(20, 0), true},
		{"after closing", monday(20, 1), false},
		{"day without hours", time.Date(2026, 10, 13, 12, 0, 0, 0, time.UTC), false},
		{"closed day", time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), false},
		{"saturday evening", time.Date(2026, 10, 17, 22, 15, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.IsOpenAt(tt.at))
		})
	}
}

func TestHoraires_IsOpenAt_UsesLocation(t *testing.T) {
	h := weekHours()
	loc := time.FixedZone("EAT", 3*60*60)
	// 06:30 UTC on Monday is 09:30 in UTC+3.
	at := time.Date(2026, 10, 12, 6, 30, 0, 0, time.UTC)

	assert.False(t, h.IsOpenAt(at))
	assert.True(t, h.IsOpenAt(at.In(loc)))
}

func TestHoraires_IsOpenAt_NilSchedule(t *testing.T) {
	var h *Horaires
	assert.False(t, h.IsOpenAt(time.Now()))
}

func TestHoraires_Normalize(t *testing.T) {
	h := Horaires{
		Lundi:    &Horaire{Ouverture: "09:00", Fermeture: "18:00"},
		Dimanche: &Horaire{Ouverture: "10:00", Fermeture: "12:00", Ferme: true},
	}
	require.NoError(t, h.Normalize())
	assert.Empty(t, h.Dimanche.Ouverture)
	assert.Empty(t, h.Dimanche.Fermeture)
	assert.Equal(t, "09:00", h.Lundi.Ouverture)
}

func TestHoraires_Normalize_OpenDayNeedsBothBounds(t *testing.T) {
	h := Horaires{Mardi: &Horaire{Ouverture: "09:00"}}
	err := h.Normalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mardi")
}

func TestZone_SetStatus(t *testing.T) {
	id := "b-1"
	z := Zone{ZoneID: "A1", BoutiqueID: &id}
	z.SetStatus()
	assert.Equal(t, ZoneOccupied, z.Status)

	z.BoutiqueID = nil
	z.SetStatus()
	assert.Equal(t, ZoneFree, z.Status)
}

func TestIsValidRole(t *testing.T) {
	for _, r := range []string{RoleAcheteur, RoleBoutique, RoleAdmin} {
		assert.True(t, IsValidRole(r))
	}
	assert.False(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole(""))
}

package domain

// Zone status values, derived from occupancy.
const (
	ZoneOccupied = "occupied"
	ZoneFree     = "free"
)

// Zone is a rentable location on a floor of the mall.
type Zone struct {
	ZoneID     string    `json:"zoneId"`
	Floor      int       `json:"floor"`
	BoutiqueID *string   `json:"-"`
	Boutique   *ZoneShop `json:"boutiqueId"`
	Status     string    `json:"status"`
}

// ZoneShop is the occupying shop as shown on the floor plan.
type ZoneShop struct {
	ID    string `json:"id"`
	Nom   string `json:"nom"`
	Etage int    `json:"etage"`
}

// SetStatus derives Status from occupancy.
func (z *Zone) SetStatus() {
	if z.BoutiqueID != nil && *z.BoutiqueID != "" {
		z.Status = ZoneOccupied
		return
	}
	z.Status = ZoneFree
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/database"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
)

// ZoneRepository implements repository.ZoneRepository using PostgreSQL.
type ZoneRepository struct {
	pool database.DBTX
}

// NewZoneRepository creates a new PostgreSQL-backed zone repository.
func NewZoneRepository(pool database.DBTX) *ZoneRepository {
	return &ZoneRepository{pool: pool}
}

// List returns every zone with its occupying shop, by floor then id.
func (r *ZoneRepository) List(ctx context.Context) ([]domain.Zone, error) {
	query := `
		SELECT z.zone_id, z.floor, z.boutique_id, b.nom, b.etage
		FROM zones z
		LEFT JOIN boutiques b ON b.id = z.boutique_id
		ORDER BY z.floor, z.zone_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	zones := []domain.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone row: %w", err)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zone rows: %w", err)
	}
	return zones, nil
}

// Assign sets the occupying shop of a zone, or frees it when boutiqueID is nil.
func (r *ZoneRepository) Assign(ctx context.Context, zoneID string, boutiqueID *string) (*domain.Zone, error) {
	query := `
		WITH z AS (
			UPDATE zones SET boutique_id = $2 WHERE zone_id = $1
			RETURNING zone_id, floor, boutique_id
		)
		SELECT z.zone_id, z.floor, z.boutique_id, b.nom, b.etage
		FROM z
		LEFT JOIN boutiques b ON b.id = z.boutique_id`

	z, err := scanZone(r.pool.QueryRow(ctx, query, zoneID, boutiqueID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("zone", zoneID)
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("boutique", *boutiqueID)
		}
		return nil, fmt.Errorf("assign zone: %w", err)
	}
	return z, nil
}

func scanZone(row pgx.Row) (*domain.Zone, error) {
	var (
		z     domain.Zone
		nom   *string
		etage *int
	)
	if err := row.Scan(&z.ZoneID, &z.Floor, &z.BoutiqueID, &nom, &etage); err != nil {
		return nil, err
	}
	if z.BoutiqueID != nil && nom != nil {
		shop := domain.ZoneShop{ID: *z.BoutiqueID, Nom: *nom}
		if etage != nil {
			shop.Etage = *etage
		}
		z.Boutique = &shop
	}
	z.SetStatus()
	return &z, nil
}

package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ny-kanto/mall-api/internal/domain"
	"github.com/ny-kanto/mall-api/pkg/database"
	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
)

func setupZoneRepo(t *testing.T) (*ZoneRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock := database.NewMockPool(t)
	return NewZoneRepository(mock), mock
}

func zoneRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"zone_id", "floor", "boutique_id", "nom", "etage"})
}

func TestZoneRepository_List_DerivesStatus(t *testing.T) {
	repo, mock := setupZoneRepo(t)
	defer mock.Close()

	shop, nom, etage := "b-1", "Zaraline", 1
	mock.ExpectQuery("FROM zones z\\s+LEFT JOIN boutiques b").
		WillReturnRows(zoneRows().
			AddRow("A1", 1, &shop, &nom, &etage).
			AddRow("A2", 1, (*string)(nil), (*string)(nil), (*int)(nil)))

	zones, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, domain.ZoneOccupied, zones[0].Status)
	require.NotNil(t, zones[0].Boutique)
	assert.Equal(t, "Zaraline", zones[0].Boutique.Nom)
	assert.Equal(t, domain.ZoneFree, zones[1].Status)
	assert.Nil(t, zones[1].Boutique)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestZoneRepository_Assign_Clear(t *testing.T) {
	repo, mock := setupZoneRepo(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE zones SET boutique_id = \\$2 WHERE zone_id = \\$1").
		WithArgs("A1", (*string)(nil)).
		WillReturnRows(zoneRows().AddRow("A1", 1, (*string)(nil), (*string)(nil), (*int)(nil)))

	z, err := repo.Assign(context.Background(), "A1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ZoneFree, z.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestZoneRepository_Assign_UnknownZone(t *testing.T) {
	repo, mock := setupZoneRepo(t)
	defer mock.Close()

	shop := "b-1"
	mock.ExpectQuery("UPDATE zones").
		WithArgs("Z9", &shop).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Assign(context.Background(), "Z9", &shop)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

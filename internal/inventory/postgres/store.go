package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryerrors "weekchain/internal/inventory/errors"
	"weekchain/pkg/calendar"
	pgdb "weekchain/pkg/db/postgres"
	"weekchain/pkg/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads inventory from the Postgres replica selected by STORE_DRIVER=postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgdb.WithTx(ctx, s.pool, fn)
}

func (s *Store) ListActiveUnits(ctx context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error) {
	query := `
SELECT id, asset_id, country, city, category, tier, max_occupancy, status, created_at
FROM units
WHERE status = $1 AND max_occupancy >= $2`
	args := []any{model.UnitStatusActive, filter.MinOccupancy}
	if filter.Tier != "" {
		query += ` AND tier = $3`
		args = append(args, string(filter.Tier))
	}
	query += ` ORDER BY id`

	rows, err := pgdb.Conn(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active units: %w", err)
	}
	defer rows.Close()

	units := []*model.InventoryUnit{}
	for rows.Next() {
		var u model.InventoryUnit
		var tier string
		if err := rows.Scan(&u.ID, &u.AssetID, &u.Country, &u.City, &u.Category, &tier, &u.MaxOccupancy, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u.Tier = model.Tier(tier)
		units = append(units, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.InventoryUnit, error) {
	const query = `
SELECT id, asset_id, country, city, category, tier, max_occupancy, status, created_at
FROM units
WHERE id = $1`

	var u model.InventoryUnit
	var tier string
	err := pgdb.Conn(ctx, s.pool).QueryRow(ctx, query, id).
		Scan(&u.ID, &u.AssetID, &u.Country, &u.City, &u.Category, &tier, &u.MaxOccupancy, &u.Status, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventoryerrors.ErrUnitNotFound
		}
		return nil, fmt.Errorf("find unit: %w", err)
	}
	u.Tier = model.Tier(tier)
	return &u, nil
}

func (s *Store) ListConfirmedReservations(ctx context.Context, unitID string) ([]model.DateRange, error) {
	const query = `
SELECT check_in, check_out
FROM reservations
WHERE unit_id = $1 AND status = $2
ORDER BY check_in`

	rows, err := pgdb.Conn(ctx, s.pool).Query(ctx, query, unitID, model.ReservationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("list reservations for unit %s: %w", unitID, err)
	}
	defer rows.Close()

	ranges := []model.DateRange{}
	for rows.Next() {
		var in, out time.Time
		if err := rows.Scan(&in, &out); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		ranges = append(ranges, model.NewDateRange(calendar.FromTime(in), calendar.FromTime(out)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return ranges, nil
}

func (s *Store) UpsertUnit(ctx context.Context, u *model.InventoryUnit) error {
	const query = `
INSERT INTO units (id, asset_id, country, city, category, tier, max_occupancy, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	asset_id = EXCLUDED.asset_id,
	country = EXCLUDED.country,
	city = EXCLUDED.city,
	category = EXCLUDED.category,
	tier = EXCLUDED.tier,
	max_occupancy = EXCLUDED.max_occupancy,
	status = EXCLUDED.status`

	_, err := pgdb.Conn(ctx, s.pool).Exec(ctx, query,
		u.ID, u.AssetID, u.Country, u.City, u.Category, string(u.Tier), u.MaxOccupancy, u.Status)
	if err != nil {
		return fmt.Errorf("upsert unit %s: %w", u.ID, err)
	}
	return nil
}

// UpsertReservation mirrors a reservation into the replica. Cancellation is terminal, so a
// late confirmed event never revives a cancelled row.
func (s *Store) UpsertReservation(ctx context.Context, r *model.Reservation) error {
	const query = `
INSERT INTO reservations (id, unit_id, check_in, check_out, party_size, holder_id, status, cancelled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	cancelled_at = EXCLUDED.cancelled_at
WHERE reservations.status <> 'cancelled'`

	_, err := pgdb.Conn(ctx, s.pool).Exec(ctx, query,
		r.ID, r.UnitID, r.CheckIn.Time(), r.CheckOut.Time(), r.PartySize, r.HolderID, r.Status, r.CancelledAt)
	if err != nil {
		if pgdb.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %s", inventoryerrors.ErrUnitNotFound, r.UnitID)
		}
		return fmt.Errorf("upsert reservation %s: %w", r.ID, err)
	}
	return nil
}

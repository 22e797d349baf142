package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aerostay/bookflow/internal/domain"
)

// LocationsRepo reads the outlet directory. The table doubles as the
// name-to-lot lookup the availability API needs.
type LocationsRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *LocationsRepo) With(db DB) *LocationsRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *LocationsRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// List returns every outlet ordered by ID.
func (r *LocationsRepo) List(ctx context.Context) ([]domain.Location, error) {
	const op = "postgres.LocationsRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, name, area, address, phone, lot_id, facilities
		 FROM locations
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Area, &l.Address, &l.Phone, &l.LotID, &l.Facilities); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Get retrieves one outlet by its ID.
//
// Returns repository.ErrNotFound when the outlet does not exist.
func (r *LocationsRepo) Get(ctx context.Context, id int64) (*domain.Location, error) {
	const op = "postgres.LocationsRepo.Get"

	db := r.handle()

	var l domain.Location
	err := db.QueryRow(ctx,
		`SELECT id, name, area, address, phone, lot_id, facilities
		 FROM locations WHERE id = $1`,
		id,
	).Scan(&l.ID, &l.Name, &l.Area, &l.Address, &l.Phone, &l.LotID, &l.Facilities)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &l, nil
}

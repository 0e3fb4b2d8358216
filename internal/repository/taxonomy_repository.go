package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/syndikat/teamliste/internal/model"
)

// TaxonomyRepo manages one of the two taxonomy tables. Ranks and
// Verwaltungen share a schema, so a single repository serves both; the
// table name comes from the constructors below, never from request input.
type TaxonomyRepo struct {
	DB    *sql.DB
	table string
}

// NewRankRepo returns a repository over the 'ranks' table.
func NewRankRepo(db *sql.DB) *TaxonomyRepo { return &TaxonomyRepo{DB: db, table: "ranks"} }

// NewVerwaltungRepo returns a repository over the 'verwaltungen' table.
func NewVerwaltungRepo(db *sql.DB) *TaxonomyRepo { return &TaxonomyRepo{DB: db, table: "verwaltungen"} }

const taxonomyColumns = "id,name,display_name,is_listed,sort_order,created_at,updated_at"

func scanEntry(rows *sql.Rows) (model.TaxonomyEntry, error) {
	var e model.TaxonomyEntry
	err := rows.Scan(&e.ID, &e.Name, &e.DisplayName, &e.IsListed, &e.SortOrder,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// List returns all entries ordered by sort order. When listedOnly is true,
// unlisted entries are filtered out (the roster UI only offers listed ones).
func (r *TaxonomyRepo) List(ctx context.Context, listedOnly bool) ([]model.TaxonomyEntry, error) {
	query := "SELECT " + taxonomyColumns + " FROM " + r.table
	if listedOnly {
		query += " WHERE is_listed=1"
	}
	query += " ORDER BY sort_order"

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.TaxonomyEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Create inserts an entry and returns its ID.
func (r *TaxonomyRepo) Create(ctx context.Context, name, displayName string, isListed bool, sortOrder int) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO "+r.table+" (name, display_name, is_listed, sort_order) VALUES (?,?,?,?)",
		name, displayName, isListed, sortOrder)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrNameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// EntryUpdate lists optional changes for Update; nil fields stay untouched.
type EntryUpdate struct {
	Name        *string
	DisplayName *string
	IsListed    *bool
	SortOrder   *int
}

// Update applies the given changes to an entry.
func (r *TaxonomyRepo) Update(ctx context.Context, id uint64, upd EntryUpdate) error {
	set := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if upd.Name != nil {
		set = append(set, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.DisplayName != nil {
		set = append(set, "display_name=?")
		args = append(args, *upd.DisplayName)
	}
	if upd.IsListed != nil {
		set = append(set, "is_listed=?")
		args = append(args, *upd.IsListed)
	}
	if upd.SortOrder != nil {
		set = append(set, "sort_order=?")
		args = append(args, *upd.SortOrder)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE "+r.table+" SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrNameExists
	}
	return err
}

// Delete removes an entry. Deleting an unknown id yields ErrEntryNotFound.
func (r *TaxonomyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM "+r.table+" WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Count returns the number of entries; the seeder uses it to skip tables
// that were already populated.
func (r *TaxonomyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.table).Scan(&n)
	return n, err
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"payments-register/internal/domain"
	"payments-register/internal/service"
)

// MirrorRepository appends records to a Postgres table laid out like the
// shared payments sheet: one text column per SheetColumns entry.
type MirrorRepository struct {
	db    *sql.DB
	table string
}

func NewMirrorRepository(db *sql.DB, table string) *MirrorRepository {
	if table == "" {
		table = "payment_register"
	}
	return &MirrorRepository{db: db, table: table}
}

// SQLColumn turns a sheet header into a column name, e.g. "RECEIPT FILE"
// becomes receipt_file.
func SQLColumn(header string) string {
	return strings.ToLower(strings.ReplaceAll(header, " ", "_"))
}

func (r *MirrorRepository) EnsureSchema(ctx context.Context) error {
	cols := make([]string, 0, len(SheetColumns)+1)
	cols = append(cols, "id BIGSERIAL PRIMARY KEY")
	for _, c := range SheetColumns {
		cols = append(cols, SQLColumn(c)+" TEXT NOT NULL DEFAULT ''")
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", r.table, strings.Join(cols, ", "))
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure mirror table %s: %w", r.table, err)
	}
	return nil
}

func (r *MirrorRepository) InsertQuery() string {
	names := make([]string, len(SheetColumns))
	params := make([]string, len(SheetColumns))
	for i, c := range SheetColumns {
		names[i] = SQLColumn(c)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.table, strings.Join(names, ", "), strings.Join(params, ", "))
}

// Append writes the record as one row. It is attempted once.
func (r *MirrorRepository) Append(ctx context.Context, rec domain.PaymentRecord) error {
	row := SheetRow(rec)
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	if _, err := r.db.ExecContext(ctx, r.InsertQuery(), args...); err != nil {
		return fmt.Errorf("append to %s: %w", r.table, err)
	}
	return nil
}

var _ service.Mirror = (*MirrorRepository)(nil)

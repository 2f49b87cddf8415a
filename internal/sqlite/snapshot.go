package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ganot/stocklog/internal/domain/snapshot"
	"github.com/ganot/stocklog/internal/repository"
)

var _ snapshot.Repository = (*SnapshotRepository)(nil)

const snapshotColumns = `
	id, item_id, member_name, time_local, time_utc,
	month_sales, sold_num, stocks, unit_sales, source
`

// SnapshotRepository implements snapshot.Repository for SQLite
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Latest returns the snapshot with the greatest server timestamp for a member
func (r *SnapshotRepository) Latest(ctx context.Context, itemID, member string) (*snapshot.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM snapshots
		WHERE item_id = ? AND member_name = ?
		ORDER BY time_utc DESC, rowid DESC
		LIMIT 1
	`

	snap, err := scanSnapshot(r.db.QueryRowContext(ctx, query, itemID, member))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return snap, nil
}

// CommitBatch applies all actions for an item in one transaction. The item
// and member index rows are upserted alongside the snapshot writes.
func (r *SnapshotRepository) CommitBatch(ctx context.Context, itemID string, actions []snapshot.WriteAction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsertItem := `
		INSERT INTO items (item_id) VALUES (?)
		ON CONFLICT(item_id) DO UPDATE SET updated_at = ` + nowExpr
	if _, err := tx.ExecContext(ctx, upsertItem, itemID); err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}

	upsertMember := `
		INSERT INTO members (item_id, member_name) VALUES (?, ?)
		ON CONFLICT(item_id, member_name) DO UPDATE SET updated_at = ` + nowExpr

	insertSnapshot := `
		INSERT INTO snapshots (
			id, item_id, member_name, time_local, time_utc,
			month_sales, sold_num, stocks, unit_sales, source
		) VALUES (?, ?, ?, ?, ` + nowExpr + `, ?, ?, ?, ?, ?)
	`

	amendSnapshot := `
		UPDATE snapshots
		SET time_local = ?, time_utc = ` + nowExpr + `, month_sales = ?, sold_num = ?
		WHERE id = ? AND item_id = ? AND member_name = ?
	`

	for _, action := range actions {
		snap := action.Snapshot
		if snap.ItemID != itemID || snap.Member == "" || snap.ID == "" {
			return fmt.Errorf("%w: action for %q does not belong to item %q", repository.ErrInvalidInput, snap.Path(), itemID)
		}

		if _, err := tx.ExecContext(ctx, upsertMember, itemID, snap.Member); err != nil {
			return fmt.Errorf("failed to upsert member: %w", err)
		}

		switch action.Kind {
		case snapshot.ActionAppend:
			_, err := tx.ExecContext(ctx, insertSnapshot,
				snap.ID,
				snap.ItemID,
				snap.Member,
				snap.Time,
				snap.MonthSales,
				snap.SoldNum,
				snap.Stocks,
				nullableInt64(snap.UnitSales),
				snap.Source,
			)
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate snapshot id %s", repository.ErrInvalidInput, snap.ID)
			}
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			if err != nil {
				return fmt.Errorf("failed to insert snapshot: %w", err)
			}
		case snapshot.ActionAmend:
			result, err := tx.ExecContext(ctx, amendSnapshot,
				snap.Time,
				snap.MonthSales,
				snap.SoldNum,
				snap.ID,
				snap.ItemID,
				snap.Member,
			)
			if err != nil {
				return fmt.Errorf("failed to amend snapshot: %w", err)
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("amend %s: %w", snap.Path(), repository.ErrNotFound)
			}
		default:
			return fmt.Errorf("%w: unknown action kind %q", repository.ErrInvalidInput, action.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListItems returns every indexed item with member and snapshot counts
func (r *SnapshotRepository) ListItems(ctx context.Context) ([]snapshot.ItemSummary, error) {
	query := `
		SELECT
			i.item_id,
			i.updated_at,
			(SELECT COUNT(*) FROM members m WHERE m.item_id = i.item_id) AS member_count,
			(SELECT COUNT(*) FROM snapshots s WHERE s.item_id = i.item_id) AS snapshot_count
		FROM items i
		ORDER BY i.item_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []snapshot.ItemSummary
	for rows.Next() {
		var item snapshot.ItemSummary
		var updatedAt string
		if err := rows.Scan(&item.ItemID, &updatedAt, &item.MemberCount, &item.SnapshotCount); err != nil {
			return nil, fmt.Errorf("failed to scan item summary: %w", err)
		}
		if item.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

// ListMembers returns the members of an item with their latest stock
func (r *SnapshotRepository) ListMembers(ctx context.Context, itemID string) ([]snapshot.MemberSummary, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM items WHERE item_id = ?`, itemID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	query := `
		SELECT
			m.item_id,
			m.member_name,
			m.updated_at,
			(SELECT COUNT(*) FROM snapshots s
				WHERE s.item_id = m.item_id AND s.member_name = m.member_name) AS snapshot_count,
			(SELECT s.stocks FROM snapshots s
				WHERE s.item_id = m.item_id AND s.member_name = m.member_name
				ORDER BY s.time_utc DESC, s.rowid DESC
				LIMIT 1) AS latest_stocks
		FROM members m
		WHERE m.item_id = ?
		ORDER BY m.member_name
	`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []snapshot.MemberSummary
	for rows.Next() {
		var member snapshot.MemberSummary
		var updatedAt string
		var latest sql.NullInt64
		if err := rows.Scan(&member.ItemID, &member.Member, &updatedAt, &member.SnapshotCount, &latest); err != nil {
			return nil, fmt.Errorf("failed to scan member summary: %w", err)
		}
		if member.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		if latest.Valid {
			member.LatestStocks = &latest.Int64
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

// History returns a member's snapshots, newest first
func (r *SnapshotRepository) History(ctx context.Context, itemID, member string, opts snapshot.HistoryOptions) ([]snapshot.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM snapshots
		WHERE item_id = ? AND member_name = ?
		ORDER BY time_utc DESC, rowid DESC
	`
	args := []any{itemID, member}

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []snapshot.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snaps, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var timeUTC string
	var unitSales sql.NullInt64
	err := row.Scan(
		&snap.ID,
		&snap.ItemID,
		&snap.Member,
		&snap.Time,
		&timeUTC,
		&snap.MonthSales,
		&snap.SoldNum,
		&snap.Stocks,
		&unitSales,
		&snap.Source,
	)
	if err != nil {
		return nil, err
	}

	if snap.TimeUTC, err = parseTimestamp(timeUTC); err != nil {
		return nil, err
	}
	if unitSales.Valid {
		snap.UnitSales = &unitSales.Int64
	}

	return &snap, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

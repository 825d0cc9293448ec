package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/veritick/veritick/internal/lockchain"
)

// ErrEntryNotFound is returned when no chain entry exists for a cycle.
var ErrEntryNotFound = errors.New("chain entry not found")

// AppendEntry persists one chain entry under its cycle index.
// Uses ON CONFLICT DO NOTHING for idempotency: re-committing the same cycle
// after a crash-replay is silently ignored, existing entries are never
// overwritten (append-only log).
func (s *Store) AppendEntry(ctx context.Context, cycle uint64, e lockchain.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chain_entries
		(cycle, lanes, span_id, result_hash, prior_hash, entry_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cycle) DO NOTHING
	`,
		int64(cycle),
		int64(e.Receipt.Lanes),
		hexWord(e.Receipt.SpanID),
		hexWord(e.Receipt.ResultHash),
		hexWord(e.PriorHash),
		hexWord(e.EntryHash),
	)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// ReadEntry fetches the chain entry for one cycle. O(1): cycle is the
// primary key.
func (s *Store) ReadEntry(ctx context.Context, cycle uint64) (lockchain.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT lanes, span_id, result_hash, prior_hash, entry_hash
		FROM chain_entries WHERE cycle = ?
	`, int64(cycle))

	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return lockchain.Entry{}, ErrEntryNotFound
	}
	if err != nil {
		return lockchain.Entry{}, fmt.Errorf("read entry: %w", err)
	}
	return e, nil
}

// LatestEntry returns the highest-cycle entry and its cycle index, or
// ErrEntryNotFound on an empty log. The engine calls this once at startup
// to resume the chain head.
func (s *Store) LatestEntry(ctx context.Context) (lockchain.Entry, uint64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT cycle, lanes, span_id, result_hash, prior_hash, entry_hash
		FROM chain_entries ORDER BY cycle DESC LIMIT 1
	`)

	var cycle int64
	e, err := scanEntry(func(dest ...any) error {
		return row.Scan(append([]any{&cycle}, dest...)...)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return lockchain.Entry{}, 0, ErrEntryNotFound
	}
	if err != nil {
		return lockchain.Entry{}, 0, fmt.Errorf("latest entry: %w", err)
	}
	return e, uint64(cycle), nil
}

// ChainRow pairs a persisted entry with its cycle index.
type ChainRow struct {
	Cycle uint64
	Entry lockchain.Entry
}

// ReadChain returns every chain entry in cycle order, ready for
// lockchain.Verify.
func (s *Store) ReadChain(ctx context.Context) ([]lockchain.Entry, error) {
	rows, err := s.ReadChainRows(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]lockchain.Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.Entry
	}
	return entries, nil
}

// ReadChainRows returns every chain entry with its cycle index, in cycle
// order.
func (s *Store) ReadChainRows(ctx context.Context) ([]ChainRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cycle, lanes, span_id, result_hash, prior_hash, entry_hash
		FROM chain_entries ORDER BY cycle ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read chain: %w", err)
	}
	defer rows.Close()

	var out []ChainRow
	for rows.Next() {
		var cycle int64
		e, err := scanEntry(func(dest ...any) error {
			return rows.Scan(append([]any{&cycle}, dest...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("read chain: %w", err)
		}
		out = append(out, ChainRow{Cycle: uint64(cycle), Entry: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read chain: %w", err)
	}
	return out, nil
}

// scanEntry decodes one row via the given scan function.
func scanEntry(scan func(dest ...any) error) (lockchain.Entry, error) {
	var (
		lanes                        int64
		span, result, prior, entryHx string
	)
	if err := scan(&lanes, &span, &result, &prior, &entryHx); err != nil {
		return lockchain.Entry{}, err
	}

	var e lockchain.Entry
	e.Receipt.Lanes = uint32(lanes)

	var err error
	if e.Receipt.SpanID, err = parseWord(span); err != nil {
		return lockchain.Entry{}, err
	}
	if e.Receipt.ResultHash, err = parseWord(result); err != nil {
		return lockchain.Entry{}, err
	}
	if e.PriorHash, err = parseWord(prior); err != nil {
		return lockchain.Entry{}, err
	}
	if e.EntryHash, err = parseWord(entryHx); err != nil {
		return lockchain.Entry{}, err
	}
	return e, nil
}

func hexWord(w uint64) string {
	return fmt.Sprintf("%016x", w)
}

func parseWord(s string) (uint64, error) {
	w, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed hash %q: %w", s, err)
	}
	return w, nil
}

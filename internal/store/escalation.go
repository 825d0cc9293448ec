package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Escalation is a batch demoted to the cold path, persisted so the cold
// executor can drain it out-of-band. The SoA columns are stored as JSON
// arrays of hex words.
type Escalation struct {
	Token      string
	Cycle      uint64
	Tick       uint64
	Shard      int
	Attempts   int
	Op         string
	Subjects   []uint64
	Predicates []uint64
	Objects    []uint64
}

// WriteEscalation appends one escalation record.
func (s *Store) WriteEscalation(ctx context.Context, esc Escalation) error {
	subs, err := marshalColumn(esc.Subjects)
	if err != nil {
		return fmt.Errorf("write escalation: %w", err)
	}
	preds, err := marshalColumn(esc.Predicates)
	if err != nil {
		return fmt.Errorf("write escalation: %w", err)
	}
	objs, err := marshalColumn(esc.Objects)
	if err != nil {
		return fmt.Errorf("write escalation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO escalations
		(token, cycle, tick, shard, attempts, op, subjects, predicates, objects)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		esc.Token, int64(esc.Cycle), int64(esc.Tick), esc.Shard,
		esc.Attempts, esc.Op, subs, preds, objs,
	)
	if err != nil {
		return fmt.Errorf("write escalation: %w", err)
	}
	return nil
}

// ReadEscalations returns all escalation records in insertion order.
func (s *Store) ReadEscalations(ctx context.Context) ([]Escalation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, cycle, tick, shard, attempts, op, subjects, predicates, objects
		FROM escalations ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read escalations: %w", err)
	}
	defer rows.Close()

	var escs []Escalation
	for rows.Next() {
		var (
			esc               Escalation
			cycle, tick       int64
			subs, preds, objs string
		)
		err := rows.Scan(&esc.Token, &cycle, &tick, &esc.Shard,
			&esc.Attempts, &esc.Op, &subs, &preds, &objs)
		if err != nil {
			return nil, fmt.Errorf("read escalations: %w", err)
		}
		esc.Cycle, esc.Tick = uint64(cycle), uint64(tick)
		if esc.Subjects, err = unmarshalColumn(subs); err != nil {
			return nil, fmt.Errorf("read escalations: %w", err)
		}
		if esc.Predicates, err = unmarshalColumn(preds); err != nil {
			return nil, fmt.Errorf("read escalations: %w", err)
		}
		if esc.Objects, err = unmarshalColumn(objs); err != nil {
			return nil, fmt.Errorf("read escalations: %w", err)
		}
		escs = append(escs, esc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read escalations: %w", err)
	}
	return escs, nil
}

func marshalColumn(words []uint64) (string, error) {
	hexes := make([]string, len(words))
	for i, w := range words {
		hexes[i] = hexWord(w)
	}
	data, err := json.Marshal(hexes)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalColumn(data string) ([]uint64, error) {
	var hexes []string
	if err := json.Unmarshal([]byte(data), &hexes); err != nil {
		return nil, err
	}
	words := make([]uint64, len(hexes))
	for i, h := range hexes {
		w, err := parseWord(h)
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return words, nil
}

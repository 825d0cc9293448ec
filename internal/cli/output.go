package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/veritick/veritick/internal/beat"
	"github.com/veritick/veritick/internal/store"
)

// chainRowView is the JSON shape for one committed cycle.
type chainRowView struct {
	Cycle      uint64 `json:"cycle"`
	Lanes      uint32 `json:"lanes"`
	SpanID     string `json:"span_id"`
	ResultHash string `json:"result_hash"`
	PriorHash  string `json:"prior_hash"`
	EntryHash  string `json:"entry_hash"`
}

func toView(r store.ChainRow) chainRowView {
	return chainRowView{
		Cycle:      r.Cycle,
		Lanes:      r.Entry.Receipt.Lanes,
		SpanID:     fmt.Sprintf("%016x", r.Entry.Receipt.SpanID),
		ResultHash: fmt.Sprintf("%016x", r.Entry.Receipt.ResultHash),
		PriorHash:  fmt.Sprintf("%016x", r.Entry.PriorHash),
		EntryHash:  fmt.Sprintf("%016x", r.Entry.EntryHash),
	}
}

func writeRows(w io.Writer, format string, rows []store.ChainRow) error {
	if format == "json" {
		views := make([]chainRowView, len(rows))
		for i, r := range rows {
			views[i] = toView(r)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	for _, r := range rows {
		v := toView(r)
		fmt.Fprintf(w, "cycle=%d lanes=%d span=%s result=%s prior=%s entry=%s\n",
			v.Cycle, v.Lanes, v.SpanID, v.ResultHash, v.PriorHash, v.EntryHash)
	}
	return nil
}

func writeRunReport(w io.Writer, format, name string, submitted int, c *beat.Cluster) error {
	entries := c.Chain().Entries()
	rows := make([]store.ChainRow, len(entries))
	for i, e := range entries {
		rows[i] = store.ChainRow{Cycle: uint64(i), Entry: e}
	}

	if format == "json" {
		views := make([]chainRowView, len(rows))
		for i, r := range rows {
			views[i] = toView(r)
		}
		report := struct {
			Workload  string         `json:"workload"`
			Submitted int            `json:"submitted"`
			Cycles    int            `json:"cycles"`
			Chain     []chainRowView `json:"chain"`
		}{name, submitted, len(rows), views}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "workload %s: %d runs submitted, %d cycles committed\n", name, submitted, len(rows))
	return writeRows(w, format, rows)
}

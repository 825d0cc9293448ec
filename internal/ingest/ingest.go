// Package ingest encodes raw string triples into the engine's SoA
// identifier form.
//
// Encoding is content-addressed: a term's identifier is the FNV-1a 64 hash
// of its NFC-normalized text under a domain prefix, so the same term
// always encodes to the same identifier across processes and replays, with
// no shared dictionary to coordinate. Object identifiers additionally
// carry a datatype tag in the top byte, derived from the literal's shape.
package ingest

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/veritick/veritick/internal/fact"
)

// RawTriple is one fact as the ingestion layer sees it.
type RawTriple struct {
	Subject   string
	Predicate string
	Object    string
}

// TermID computes the identifier for a subject or predicate IRI. The text
// is NFC-normalized first so visually identical terms intern to one
// identifier.
func TermID(term string) uint64 {
	return fact.HashTerm(fact.DomainTerm, norm.NFC.String(term))
}

// ObjectID computes the tagged identifier for an object term, classifying
// its datatype from the literal's shape.
func ObjectID(term string) uint64 {
	normalized := norm.NFC.String(term)
	return fact.Tagged(classify(normalized), fact.HashTerm(fact.DomainTerm, normalized))
}

// classify derives the datatype tag for an object literal.
func classify(term string) uint8 {
	if strings.Contains(term, "://") {
		return fact.TagIRI
	}
	if term == "true" || term == "false" {
		return fact.TagBool
	}
	if _, err := strconv.ParseInt(term, 10, 64); err == nil {
		return fact.TagInt
	}
	return fact.TagString
}

// EncodeBatch encodes raw triples into a SoA batch grouped into
// same-predicate runs.
//
// Triples are stably sorted by predicate identifier, preserving input
// order within each predicate, then contiguous predicate groups become
// runs. Run lengths are reported as found; enforcing the length guard is
// admission's job, not encoding's.
func EncodeBatch(triples []RawTriple) (*fact.Batch, []fact.Run) {
	sorted := make([]RawTriple, len(triples))
	copy(sorted, triples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return TermID(sorted[i].Predicate) < TermID(sorted[j].Predicate)
	})

	batch := fact.NewBatch(len(sorted))
	for _, t := range sorted {
		batch.Append(TermID(t.Subject), TermID(t.Predicate), ObjectID(t.Object))
	}

	var runs []fact.Run
	for off := 0; off < batch.Len(); {
		pred := batch.P[off]
		end := off
		for end < batch.Len() && batch.P[end] == pred {
			end++
		}
		runs = append(runs, fact.Run{
			Pred: pred,
			Off:  uint64(off),
			Len:  uint64(end - off),
		})
		off = end
	}
	return batch, runs
}

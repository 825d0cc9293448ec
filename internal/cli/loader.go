package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/veritick/veritick/internal/fact"
	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/ingest"
)

// WorkloadTriple is one raw fact in a workload file.
type WorkloadTriple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// WorkloadBatch is one submission: a triple batch plus the operation to
// run over it.
type WorkloadBatch struct {
	Shard     int              `json:"shard"`
	Operation string           `json:"operation"`
	Subject   string           `json:"subject"`
	Predicate string           `json:"predicate"`
	Object    string           `json:"object"`
	K         uint64           `json:"k"`
	Datatype  string           `json:"datatype"`
	Triples   []WorkloadTriple `json:"triples"`
}

// Workload is a CUE-defined batch sequence for the run and validate
// commands.
type Workload struct {
	Name    string          `json:"name"`
	Cycles  int             `json:"cycles"`
	Batches []WorkloadBatch `json:"batches"`
}

// LoadWorkload compiles and decodes one CUE workload file.
func LoadWorkload(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile workload %s: %w", path, err)
	}
	if err := v.Validate(cue.Final()); err != nil {
		return nil, fmt.Errorf("validate workload %s: %w", path, err)
	}

	var w Workload
	if err := v.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode workload %s: %w", path, err)
	}
	if w.Cycles < 1 {
		w.Cycles = 1
	}
	if len(w.Batches) == 0 {
		return nil, fmt.Errorf("workload %s has no batches", path)
	}
	return &w, nil
}

// Encoded is one workload batch in engine form: the SoA batch, its runs,
// and an instruction template the runs share.
type Encoded struct {
	Shard int
	Batch *fact.Batch
	Runs  []fact.Run
	Instr fiber.Instruction
}

// Encode lowers a workload batch to identifiers. Empty operand strings
// become the zero (wildcard) identifier.
func (b WorkloadBatch) Encode() (Encoded, error) {
	op, err := fiber.ParseOp(b.Operation)
	if err != nil {
		return Encoded{}, err
	}

	raw := make([]ingest.RawTriple, len(b.Triples))
	for i, t := range b.Triples {
		raw[i] = ingest.RawTriple{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
	}
	batch, runs := ingest.EncodeBatch(raw)

	instr := fiber.Instruction{Op: op, K: b.K}
	if b.Subject != "" {
		instr.S = ingest.TermID(b.Subject)
	}
	if b.Predicate != "" {
		instr.P = ingest.TermID(b.Predicate)
	}
	if b.Object != "" {
		instr.O = ingest.ObjectID(b.Object)
	}
	if b.Datatype != "" {
		tag, ok := fact.TagByName(b.Datatype)
		if !ok {
			return Encoded{}, fmt.Errorf("unknown datatype %q", b.Datatype)
		}
		instr.K = uint64(tag)
	}
	if op == fiber.OpSelectSPO || op == fiber.OpConstruct8 {
		instr.Out = fact.NewBatch(batch.Len())
	}

	return Encoded{Shard: b.Shard, Batch: batch, Runs: runs, Instr: instr}, nil
}

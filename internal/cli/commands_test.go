package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritick/veritick/internal/lockchain"
	"github.com/veritick/veritick/internal/receipt"
	"github.com/veritick/veritick/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedChain(t *testing.T, cycles int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prov.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	prior := uint64(0)
	for i := 0; i < cycles; i++ {
		e := lockchain.Append(receipt.Receipt{
			Lanes: uint32(i + 1), SpanID: uint64(i) + 0x10, ResultHash: uint64(i) + 0x20,
		}, prior)
		require.NoError(t, st.AppendEntry(context.Background(), uint64(i), e))
		prior = e.EntryHash
	}
	return path
}

func TestRunCommandEndToEnd(t *testing.T) {
	workload := writeWorkload(t, demoWorkload)
	db := filepath.Join(t.TempDir(), "prov.db")

	out, err := execute(t, "run", workload, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "workload demo")
	assert.Contains(t, out, "2 cycles committed")

	// The committed chain must verify from the persisted log.
	vout, err := execute(t, "verify", db)
	require.NoError(t, err)
	assert.Contains(t, vout, "chain valid: 2 entries")
}

func TestRunCommandJSONReport(t *testing.T) {
	workload := writeWorkload(t, demoWorkload)

	out, err := execute(t, "--format", "json", "run", workload)
	require.NoError(t, err)

	var report struct {
		Workload  string `json:"workload"`
		Submitted int    `json:"submitted"`
		Cycles    int    `json:"cycles"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "demo", report.Workload)
	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, 2, report.Cycles)
}

func TestValidateCommandAcceptsWorkload(t *testing.T) {
	workload := writeWorkload(t, demoWorkload)

	out, err := execute(t, "validate", workload)
	require.NoError(t, err)
	assert.Contains(t, out, "ASK_SP: ok")
}

func TestValidateCommandFlagsOverlongRun(t *testing.T) {
	body := `
name: "overlong"
batches: [
	{
		operation: "ASK_SP"
		triples: [
			{subject: "s", predicate: "p", object: "o1"},
			{subject: "s", predicate: "p", object: "o2"},
			{subject: "s", predicate: "p", object: "o3"},
			{subject: "s", predicate: "p", object: "o4"},
			{subject: "s", predicate: "p", object: "o5"},
			{subject: "s", predicate: "p", object: "o6"},
			{subject: "s", predicate: "p", object: "o7"},
			{subject: "s", predicate: "p", object: "o8"},
			{subject: "s", predicate: "p", object: "o9"},
		]
	},
]
`
	out, err := execute(t, "validate", writeWorkload(t, body))
	require.Error(t, err)
	assert.Contains(t, out, "RUN_TOO_LONG")
}

func TestVerifyCommandDetectsTampering(t *testing.T) {
	db := seedChain(t, 3)

	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE chain_entries SET lanes = 99 WHERE cycle = 1`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = execute(t, "verify", db)
	require.Error(t, err)
	assert.True(t, lockchain.IsVerificationError(err))
}

func TestVerifyCommandJSON(t *testing.T) {
	db := seedChain(t, 2)

	out, err := execute(t, "--format", "json", "verify", db)
	require.NoError(t, err)

	var result struct {
		Entries int  `json:"entries"`
		Valid   bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.Entries)
	assert.True(t, result.Valid)
}

func TestTraceCommand(t *testing.T) {
	db := seedChain(t, 5)

	out, err := execute(t, "trace", db)
	require.NoError(t, err)
	assert.Contains(t, out, "cycle=0")
	assert.Contains(t, out, "cycle=4")

	limited, err := execute(t, "trace", db, "--from", "2", "--limit", "2")
	require.NoError(t, err)
	assert.NotContains(t, limited, "cycle=1")
	assert.Contains(t, limited, "cycle=2")
	assert.Contains(t, limited, "cycle=3")
	assert.NotContains(t, limited, "cycle=4")
}

func TestRootRejectsBadFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "trace", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

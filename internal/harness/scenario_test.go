package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenarioDefaults(t *testing.T) {
	path := writeScenario(t, `
name: defaults
description: defaults are applied
batches:
  - operation: ASK_SP
    triples:
      - { subject: "urn:s", predicate: "urn:p", object: "urn:o" }
assertions:
  - { type: chain_valid }
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Shards)
	assert.Equal(t, 1, s.Cycles)
	assert.Equal(t, "defaults", s.TokenPrefix)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: assertion instead of assertions
batches:
  - operation: ASK_SP
    triples:
      - { subject: "urn:s", predicate: "urn:p", object: "urn:o" }
assertion:
  - { type: chain_valid }
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenarioValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing name",
			body: `
description: d
batches:
  - operation: ASK_SP
    triples: [{ subject: s, predicate: p, object: o }]
assertions: [{ type: chain_valid }]
`,
			want: "name is required",
		},
		{
			name: "no batches",
			body: `
name: n
description: d
batches: []
assertions: [{ type: chain_valid }]
`,
			want: "batches list is required",
		},
		{
			name: "missing operation",
			body: `
name: n
description: d
batches:
  - triples: [{ subject: s, predicate: p, object: o }]
assertions: [{ type: chain_valid }]
`,
			want: "operation is required",
		},
		{
			name: "shard out of range",
			body: `
name: n
description: d
shards: 2
batches:
  - shard: 2
    operation: ASK_SP
    triples: [{ subject: s, predicate: p, object: o }]
assertions: [{ type: chain_valid }]
`,
			want: "out of range",
		},
		{
			name: "unknown assertion type",
			body: `
name: n
description: d
batches:
  - operation: ASK_SP
    triples: [{ subject: s, predicate: p, object: o }]
assertions: [{ type: chain_longer_than }]
`,
			want: "unknown assertion type",
		},
		{
			name: "escalated_op without op",
			body: `
name: n
description: d
batches:
  - operation: ASK_SP
    triples: [{ subject: s, predicate: p, object: o }]
assertions: [{ type: escalated_op }]
`,
			want: "op is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

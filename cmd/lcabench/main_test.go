package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/lca/algorithm/lca"
	"github.com/wyfcoding/lca/bench"
)

func TestRunPrintsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lca.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "error"

[tree.generate]
max_depth = 5
max_children = 3
seed = 3

[bench]
query_counts = [50, 200]
seed = 5
verify = true
`), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", path}, &out))

	text := out.String()
	assert.Contains(t, text, "tree nodes:")
	for _, s := range lca.Strategies() {
		assert.Equal(t, 2, strings.Count(text, string(s)+" "), s)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"-config", filepath.Join(t.TempDir(), "missing.toml")}, &out))
}

func TestWriteTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeTable(&out, 7, []bench.Result{
		{Strategy: lca.StrategyEulerRMQ, Queries: 10, Preprocess: 1500 * time.Microsecond, Query: 2 * time.Millisecond},
	}))
	assert.Contains(t, out.String(), "tree nodes: 7")
	assert.Contains(t, out.String(), "1.500")
	assert.Contains(t, out.String(), "2.000")
}

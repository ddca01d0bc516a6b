package dimacs

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCNF = `c a three-variable, two-clause test instance
c comments may appear anywhere, including before the header
p cnf 3 2
1 -2 3 0
-1 2 0
`

func TestParse(t *testing.T) {
	cnf, err := Parse(strings.NewReader(testCNF))
	require.NoError(t, err)

	assert.Equal(t, 3, cnf.Variables)
	assert.Equal(t, [][]int32{{1, -2, 3}, {-1, 2}}, cnf.Clauses)
}

func TestParse_commentsInterleavedWithClauses(t *testing.T) {
	in := "p cnf 2 2\n1 2 0\nc a mid-file comment\n-1 -2 0\n"
	cnf, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 2}, {-1, -2}}, cnf.Clauses)
}

func TestParse_clauseSpanningMultipleLines(t *testing.T) {
	in := "p cnf 3 1\n1 2\n3 0\n"
	cnf, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 2, 3}}, cnf.Clauses)
}

func TestParse_clauseCountMismatchTolerated(t *testing.T) {
	// Header claims 5 clauses; only 1 is present. The mismatch must not
	// be treated as an error.
	in := "p cnf 3 5\n1 2 3 0\n"
	cnf, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, cnf.Clauses, 1)
}

func TestParse_missingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("1 2 0\n"))
	assert.Error(t, err)
}

func TestParse_emptyFormula(t *testing.T) {
	cnf, err := Parse(strings.NewReader("p cnf 0 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cnf.Variables)
	assert.Empty(t, cnf.Clauses)
}

func TestParseFile_plain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.cnf")
	require.NoError(t, os.WriteFile(path, []byte(testCNF), 0o644))

	cnf, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cnf.Variables)
	assert.Len(t, cnf.Clauses, 2)
}

func TestParseFile_gzipTransparentlyDetected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.cnf.gz")

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write([]byte(testCNF))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	cnf, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cnf.Variables)
	assert.Len(t, cnf.Clauses, 2)
}

func TestParseFile_missingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "does-not-exist.cnf"))
	assert.Error(t, err)
}

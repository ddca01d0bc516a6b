// Package dimacs parses DIMACS CNF files into a plain, solver-agnostic
// form. It is deliberately independent of the sat package: the core
// solver consumes a variable count and a slice of signed-integer
// clauses, never a file path or a reader, so this package owns every
// concern the spec calls out as an external collaborator (the format
// grammar, comment handling, and transparent gzip decompression).
//
// Grammar parsing itself is delegated to github.com/rhartert/dimacs, the
// same builder-style DIMACS reader the teacher's own CLI used; this
// package only adds the builder that assembles a CNF and the transparent
// gzip sniffing the spec asks for on top of it.
package dimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	rdimacs "github.com/rhartert/dimacs"
)

// gzipMagic is the two-byte gzip member header (RFC 1952 section 2.3.1).
var gzipMagic = [2]byte{0x1f, 0x8b}

// CNF is a parsed DIMACS CNF instance: a variable count and a list of
// clauses, each a sequence of non-zero signed DIMACS literals with the
// trailing 0 terminator already stripped.
type CNF struct {
	Variables int
	Clauses   [][]int32
}

// ParseFile opens filename and parses it as DIMACS CNF, transparently
// gunzipping the content first if its first two bytes are the gzip magic
// number — callers never need to know or guess whether an instance file
// is compressed.
func ParseFile(filename string) (*CNF, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "dimacs: opening %q", filename)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "dimacs: reading %q", filename)
	}

	var r io.Reader = br
	if len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrapf(err, "dimacs: opening gzip stream in %q", filename)
		}
		defer gz.Close()
		r = gz
	}

	return Parse(r)
}

// Parse reads a DIMACS CNF formula from r using rhartert/dimacs's
// line-oriented reader, which already tolerates comments interleaved
// with clauses and does not enforce the header's declared clause count
// against how many clauses actually follow.
func Parse(r io.Reader) (*CNF, error) {
	b := &cnfBuilder{}
	if err := rdimacs.ReadBuilder(r, b); err != nil {
		return nil, errors.Wrap(err, "dimacs: parsing CNF")
	}
	if !b.sawHeader {
		return nil, fmt.Errorf("dimacs: missing %q header line", "p cnf <vars> <clauses>")
	}
	return &b.cnf, nil
}

// cnfBuilder implements rhartert/dimacs's Builder interface, translating
// its callbacks directly into a CNF.
type cnfBuilder struct {
	cnf       CNF
	sawHeader bool
}

func (b *cnfBuilder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("dimacs: unsupported problem type %q", problem)
	}
	b.cnf.Variables = nVars
	b.cnf.Clauses = make([][]int32, 0, nClauses)
	b.sawHeader = true
	return nil
}

func (b *cnfBuilder) Clause(tmpClause []int) error {
	lits := make([]int32, len(tmpClause))
	for i, l := range tmpClause {
		lits[i] = int32(l)
	}
	b.cnf.Clauses = append(b.cnf.Clauses, lits)
	return nil
}

func (b *cnfBuilder) Comment(string) error {
	return nil
}

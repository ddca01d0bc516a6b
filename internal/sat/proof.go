package sat

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ProofSink receives the events needed to reconstruct a DRUP (Delete
// Reverse Unit Propagation) certificate of unsatisfiability. Additions of
// the original input clauses are deliberately not reported: a DRUP
// checker is handed the original CNF alongside the proof and does not
// need them repeated, per the standard DRUP convention. Every clause
// learnt during search, every resolvent asserted by variable
// elimination, and every deletion (of either kind of clause) is
// reported.
type ProofSink interface {
	// AddClause records that lits was derived and added to the database.
	AddClause(lits []Literal) error
	// DeleteClause records that lits is no longer needed by the checker
	// (it may still be implied, but replaying it is no longer required).
	DeleteClause(lits []Literal) error
	// Close flushes any buffered output and releases underlying
	// resources. It is safe to call Close more than once.
	Close() error
}

// NopSink discards every event. It is the default ProofSink when no
// proof output was requested.
type NopSink struct{}

func (NopSink) AddClause([]Literal) error    { return nil }
func (NopSink) DeleteClause([]Literal) error { return nil }
func (NopSink) Close() error                 { return nil }

// DRUPSink writes a textual DRUP proof: one line per event, clauses given
// as space-separated signed DIMACS integers terminated by 0, deletions
// prefixed with "d ".
type DRUPSink struct {
	w      *bufio.Writer
	closer io.Closer
}

// NewDRUPSink wraps w (and, if it also implements io.Closer, arranges for
// Close to close it) into a buffered DRUP text writer.
func NewDRUPSink(w io.Writer) *DRUPSink {
	sink := &DRUPSink{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		sink.closer = c
	}
	return sink
}

func (d *DRUPSink) AddClause(lits []Literal) error {
	return d.writeLine("", lits)
}

func (d *DRUPSink) DeleteClause(lits []Literal) error {
	return d.writeLine("d ", lits)
}

func (d *DRUPSink) writeLine(prefix string, lits []Literal) error {
	if prefix != "" {
		if _, err := d.w.WriteString(prefix); err != nil {
			return errors.Wrap(err, "sat: writing DRUP proof line")
		}
	}
	for _, l := range lits {
		if _, err := fmt.Fprintf(d.w, "%d ", l.DIMACS()); err != nil {
			return errors.Wrap(err, "sat: writing DRUP proof literal")
		}
	}
	if _, err := d.w.WriteString("0\n"); err != nil {
		return errors.Wrap(err, "sat: writing DRUP proof terminator")
	}
	return nil
}

func (d *DRUPSink) Close() error {
	if err := d.w.Flush(); err != nil {
		return errors.Wrap(err, "sat: flushing DRUP proof")
	}
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

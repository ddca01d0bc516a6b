package sat

import "strings"

// ClauseRef is a stable, opaque handle to a clause stored in a ClauseDB's
// arena. It remains valid across propagation and analysis; it is only
// invalidated by an explicit call to ClauseDB.Compact, at which point every
// watch list and trail reason holding it is rewritten.
type ClauseRef int32

// NilClauseRef is returned for decisions and axioms that have no reason
// clause.
const NilClauseRef ClauseRef = -1

// clauseFlags packs the small set of boolean clause properties into a
// single byte, matching the bit-flag style used by the rest of the
// retrieval pack's clause-heavy code.
type clauseFlags uint8

const (
	flagLearnt clauseFlags = 1 << iota
	flagDeleted
	flagProtected
)

// Clause is an ordered, deduplicated sequence of at least two literals.
// Positions 0 and 1 are always the watched literals: this is a structural
// invariant maintained by Propagate, not incidental bookkeeping.
type Clause struct {
	literals []Literal
	activity float64
	lbd      uint32
	flags    clauseFlags

	// prevPos caches where, within literals[2:], the last rescan found a
	// new watch. Starting the next scan there instead of at position 2
	// avoids quadratic rescanning of long, mostly-false clauses.
	prevPos int
}

func (c *Clause) isLearnt() bool    { return c.flags&flagLearnt != 0 }
func (c *Clause) isDeleted() bool   { return c.flags&flagDeleted != 0 }
func (c *Clause) isProtected() bool { return c.flags&flagProtected != 0 }

func (c *Clause) setProtected(p bool) {
	if p {
		c.flags |= flagProtected
	} else {
		c.flags &^= flagProtected
	}
}

// Len returns the number of literals currently in the clause.
func (c *Clause) Len() int { return len(c.literals) }

// Literals returns the clause's literals. The slice must not be retained
// past the next mutating call into the owning ClauseDB.
func (c *Clause) Literals() []Literal { return c.literals }

// LBD returns the clause's literal block distance, valid for learnt
// clauses; it is 0 for original clauses.
func (c *Clause) LBD() uint32 { return c.lbd }

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

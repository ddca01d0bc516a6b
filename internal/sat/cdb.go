package sat

import (
	"log"
	"math/bits"
	"sync"
)

// Number of size-tiered literal-slice pools. A capacity c maps to pool
// floor(log2(c)), so pool i serves capacities in [2^i, 2^(i+1)-1] and
// creates new slices with capacity 2^(i+1); the last pool serves every
// capacity of 2^(nLiteralPools-1) or more.
const nLiteralPools = 6

var literalPools [nLiteralPools]sync.Pool

func init() {
	for i := 0; i < nLiteralPools; i++ {
		capa := 1 << (i + 1)
		literalPools[i].New = func() any {
			s := make([]Literal, 0, capa)
			return &s
		}
	}
}

func literalPoolID(capa int) int {
	if capa >= 1<<nLiteralPools {
		return nLiteralPools - 1
	}
	id := bits.Len(uint(capa)) - 1
	if capa < (1 << id) {
		id--
	}
	if id < 0 {
		id = 0
	}
	return id
}

// allocLiterals returns an empty slice with at least the requested
// capacity, drawn from a size-tiered pool to avoid an allocation per
// learnt clause.
func allocLiterals(capa int) []Literal {
	ref := literalPools[literalPoolID(capa)].Get().(*[]Literal)
	s := *ref
	if cap(s) < capa {
		s = make([]Literal, 0, capa)
	}
	return s[:0]
}

// freeLiterals returns a literal slice to its pool. The clause must no
// longer reference it.
func freeLiterals(s []Literal) {
	s = s[:0]
	literalPools[literalPoolID(cap(s))].Put(&s)
}

// ClauseDB owns every clause's storage: the original problem clauses and
// all learnt clauses, indexed by stable ClauseRef handles. Allocation is
// O(1) amortized; deletion tombstones a slot until Compact rewrites every
// outstanding ClauseRef.
type ClauseDB struct {
	arena       []*Clause
	constraints []ClauseRef
	learnts     []ClauseRef
	proof       ProofSink
	proofErr    error
}

// recordProofErr remembers the first error reported by the proof sink.
// Later errors are dropped: the first failure is the one worth diagnosing,
// and the driver surfaces it once search finishes (§4.9).
func (db *ClauseDB) recordProofErr(err error) {
	if err != nil && db.proofErr == nil {
		db.proofErr = err
	}
}

// NewClauseDB returns an empty clause database that reports every learnt
// addition and every deletion to proof.
func NewClauseDB(proof ProofSink) *ClauseDB {
	if proof == nil {
		proof = NopSink{}
	}
	return &ClauseDB{proof: proof}
}

// Clause returns the clause stored at ref.
func (db *ClauseDB) Clause(ref ClauseRef) *Clause {
	return db.arena[ref]
}

// NumConstraints returns the number of original (non-learnt) clauses still
// active.
func (db *ClauseDB) NumConstraints() int { return len(db.constraints) }

// NumLearnts returns the number of learnt clauses still active.
func (db *ClauseDB) NumLearnts() int { return len(db.learnts) }

// addResult distinguishes the outcomes of inserting a clause.
type addResult int

const (
	addStored  addResult = iota // clause was stored, ref is valid
	addUnit                     // clause collapsed to a unit fact, already enqueued (or conflicting)
	addTrivial                  // clause is a tautology or already satisfied: nothing to store
	addEmpty                   // clause is empty (or falsified): formula is UNSAT
)

// addClause inserts lits into the database. For original (non-learnt)
// clauses, it first deduplicates literals, drops the clause if it is a
// tautology or already satisfied at the root level, and shrinks it by
// dropping literals already false at level 0. Learnt clauses are assumed
// to already be minimal and are stored as-is; the literal at index 1 is
// swapped to be the one assigned at the highest decision level, so that
// backjumping re-triggers propagation through the correct watch.
//
// Returns the stable reference to the stored clause (if any), the
// classification of the insertion, and ok, which is false for addEmpty and
// for an addUnit whose literal conflicts with the current assignment, and
// true otherwise.
func (s *Solver) addClause(lits []Literal, learnt bool) (ClauseRef, addResult, bool) {
	db := s.cdb

	if !learnt {
		lits = dedupAndSimplify(s, lits)
		if lits == nil {
			return NilClauseRef, addTrivial, true
		}
	}

	switch len(lits) {
	case 0:
		return NilClauseRef, addEmpty, false
	case 1:
		if learnt {
			db.recordProofErr(db.proof.AddClause(lits))
		}
		ok := s.enqueue(lits[0], NilClauseRef)
		return NilClauseRef, addUnit, ok
	}

	c := &Clause{
		literals: allocLiterals(len(lits)),
		prevPos:  2,
	}
	c.literals = append(c.literals, lits...)
	if learnt {
		c.flags |= flagLearnt

		maxLevel := -1
		wl := -1
		for i, lit := range c.literals {
			if lvl := s.level[lit.VarID()]; lvl > maxLevel {
				maxLevel = lvl
				wl = i
			}
		}
		c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
	}

	ref := ClauseRef(len(db.arena))
	db.arena = append(db.arena, c)
	if learnt {
		db.learnts = append(db.learnts, ref)
		db.recordProofErr(db.proof.AddClause(c.literals))
	} else {
		db.constraints = append(db.constraints, ref)
	}

	s.Watch(ref, c.literals[0].Opposite(), c.literals[1])
	s.Watch(ref, c.literals[1].Opposite(), c.literals[0])

	return ref, addStored, true
}

// dedupAndSimplify removes duplicate literals and literals already false
// at the root level, detects tautologies and clauses already satisfied at
// the root level (returning nil for both, meaning "nothing to store"), and
// otherwise returns the shrunk literal slice in place.
func dedupAndSimplify(s *Solver, lits []Literal) []Literal {
	seen := make(map[Literal]struct{}, len(lits))
	size := len(lits)

	for i := size - 1; i >= 0; i-- {
		if _, ok := seen[lits[i].Opposite()]; ok {
			return nil // tautology
		}
		if _, ok := seen[lits[i]]; ok {
			size--
			lits[i], lits[size] = lits[size], lits[i]
			continue
		}
		seen[lits[i]] = struct{}{}

		switch s.LitValue(lits[i]) {
		case True:
			return nil // already satisfied
		case False:
			size--
			lits[i], lits[size] = lits[size], lits[i]
		}
	}

	return lits[:size]
}

// deleteClause tombstones ref: it is unwatched, reported to the proof sink,
// and its literal storage is returned to the pool. The slot in the arena
// is not reused until Compact runs.
func (s *Solver) deleteClause(ref ClauseRef) {
	c := s.cdb.arena[ref]
	s.cdb.recordProofErr(s.cdb.proof.DeleteClause(c.literals))

	s.Unwatch(ref, c.literals[0].Opposite())
	s.Unwatch(ref, c.literals[1].Opposite())

	freeLiterals(c.literals)
	c.literals = nil
	c.flags |= flagDeleted
}

// Compact drops every deleted clause from the arena and rewrites every
// ClauseRef held by watch lists and trail reasons to match. It must only
// be called at decision level 0 with an empty propagation queue.
func (db *ClauseDB) Compact(s *Solver) {
	remap := make([]ClauseRef, len(db.arena))
	newArena := make([]*Clause, 0, len(db.arena))

	for i, c := range db.arena {
		if c == nil || c.isDeleted() {
			remap[i] = NilClauseRef
			continue
		}
		remap[i] = ClauseRef(len(newArena))
		newArena = append(newArena, c)
	}
	db.arena = newArena
	db.constraints = remapRefs(db.constraints, remap)
	db.learnts = remapRefs(db.learnts, remap)

	for lit := range s.watchers {
		ws := s.watchers[lit]
		k := 0
		for _, w := range ws {
			nr := remap[w.ref]
			if nr == NilClauseRef {
				continue
			}
			ws[k] = watcher{ref: nr, blocker: w.blocker}
			k++
		}
		s.watchers[lit] = ws[:k]
	}

	for v := range s.reason {
		if s.reason[v] != NilClauseRef {
			s.reason[v] = remap[s.reason[v]]
		}
	}
}

func remapRefs(refs []ClauseRef, remap []ClauseRef) []ClauseRef {
	k := 0
	for _, r := range refs {
		nr := remap[r]
		if nr == NilClauseRef {
			continue
		}
		refs[k] = nr
		k++
	}
	return refs[:k]
}

// locked reports whether ref is currently the reason for its first
// literal's assignment: such clauses cannot be deleted without corrupting
// the trail.
func (db *ClauseDB) locked(s *Solver, ref ClauseRef) bool {
	c := db.arena[ref]
	return s.reason[c.literals[0].VarID()] == ref
}

// simplifyAt drops clauses already satisfied at the root level and shrinks
// the rest by removing literals falsified at the root level. It is called
// by the Search Driver whenever search returns to decision level 0.
func (db *ClauseDB) simplifyAt(s *Solver) {
	db.constraints = simplifyRefs(s, db, db.constraints)
	db.learnts = simplifyRefs(s, db, db.learnts)
}

func simplifyRefs(s *Solver, db *ClauseDB, refs []ClauseRef) []ClauseRef {
	k := 0
	for _, ref := range refs {
		c := db.arena[ref]
		if c.isDeleted() {
			continue // already tombstoned (e.g. by BVE): drop the stale ref
		}
		if clauseSatisfiedOrShrink(s, c) {
			s.deleteClause(ref)
			continue
		}
		refs[k] = ref
		k++
	}
	return refs[:k]
}

// clauseSatisfiedOrShrink reports whether c is satisfied by the current
// (root-level) assignment; if not, it compacts away any falsified
// literals in place. Root-level simplification only ever runs with the
// two-watched-literal invariant intact, so a clause reaching here should
// never shrink below a unit; if it does, the watch scheme has let a
// falsified literal slip through unpropagated and continuing would corrupt
// the trail, so this is an invariant violation worth a hard abort rather
// than a silent miscompile of the clause database.
func clauseSatisfiedOrShrink(s *Solver, c *Clause) bool {
	k := 0
	for _, lit := range c.literals {
		switch s.LitValue(lit) {
		case True:
			return true
		case False:
			// drop
		default:
			c.literals[k] = lit
			k++
		}
	}
	if k < 2 {
		log.Fatalf("sat: clause shrank to %d literal(s) at root level: invariant violation", k)
	}
	c.literals = c.literals[:k]
	return false
}

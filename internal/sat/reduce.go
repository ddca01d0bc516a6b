package sat

import "sort"

// ReductionManager decides when to discard a subset of learnt clauses and
// picks which ones to keep. It is scheduled in conflicts: the first
// reduction happens after FirstLimit conflicts, and each later interval
// between reductions is Increment conflicts longer than the previous one
// (FirstLimit + k*Increment after k reductions), the schedule MiniSat and its
// descendants use to keep the learnt database from growing without
// bound while giving each new generation of learnt clauses a chance to
// prove itself before being judged.
type ReductionManager struct {
	FirstLimit int
	Increment  int

	limit    int
	interval int
}

func NewReductionManager(firstLimit, increment int) *ReductionManager {
	return &ReductionManager{
		FirstLimit: firstLimit,
		Increment:  increment,
		limit:      firstLimit,
		interval:   firstLimit,
	}
}

// bumpClauseActivity rewards ref for having been used as an explanation
// during conflict analysis, and rescales every learnt clause's activity
// if the increment has grown large enough to risk float overflow.
func (s *Solver) bumpClauseActivity(ref ClauseRef) {
	c := s.cdb.arena[ref]
	c.activity += s.clauseActInc
	if c.activity > 1e100 {
		s.clauseActInc *= 1e-100
		for _, r := range s.cdb.learnts {
			s.cdb.arena[r].activity *= 1e-100
		}
	}
}

// decayClauseActivity ages previously bumped clause activity relative to
// future bumps. It is called once per conflict.
func (s *Solver) decayClauseActivity() {
	s.clauseActInc /= s.clauseActDecay
}

// ShouldReduce reports whether a reduction pass should run now, given the
// total number of conflicts seen so far.
func (rm *ReductionManager) ShouldReduce(conflicts int64) bool {
	return conflicts >= int64(rm.limit)
}

func (rm *ReductionManager) onReduced() {
	rm.interval += rm.Increment
	rm.limit += rm.interval
}

// Reduce sorts the clause database's learnt clauses by LBD (breaking ties
// by activity, higher first) and deletes the worse half, skipping any
// clause currently locked as a propagation reason or explicitly marked
// protected. Binary clauses are never discarded: they are nearly free to
// keep and disproportionately useful to propagation.
func (s *Solver) Reduce() {
	if !s.reductionManager.ShouldReduce(s.stats.Conflicts) {
		return
	}
	defer s.reductionManager.onReduced()

	s.stats.Reductions++
	learnts := s.cdb.learnts
	sort.Slice(learnts, func(i, j int) bool {
		ci, cj := s.cdb.arena[learnts[i]], s.cdb.arena[learnts[j]]
		if ci.lbd != cj.lbd {
			return ci.lbd < cj.lbd
		}
		return ci.activity > cj.activity
	})

	half := len(learnts) / 2
	kept := learnts[:0]
	for i, ref := range learnts {
		c := s.cdb.arena[ref]
		keep := i < half || c.Len() <= 2 || c.lbd <= 2 || c.isProtected() || s.cdb.locked(s, ref)
		if keep {
			kept = append(kept, ref)
			c.setProtected(false)
		} else {
			s.deleteClause(ref)
		}
	}
	s.cdb.learnts = kept
}

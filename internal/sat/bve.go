package sat

// BVEConfig bounds how aggressively bounded variable elimination runs: it
// exists to keep a single inprocessing pass from spending more work than
// it saves.
type BVEConfig struct {
	MaxProduct      int // skip a candidate before computing resolvents if |P|*|N| exceeds this
	MaxResolventLen int // leave a candidate in place if any of its resolvents is longer than this
	GrowthSlack     int // eliminate only if |R| <= |P|+|N|+GrowthSlack
}

func DefaultBVEConfig() BVEConfig {
	return BVEConfig{MaxProduct: 10000, MaxResolventLen: 12, GrowthSlack: 0}
}

// eliminationRecord is the trace entry BVE leaves behind so a satisfying
// assignment of the reduced formula can be extended back to v. negRest
// holds, for every clause that contained ¬v, the clause's other literals
// (v's own literal stripped out): v only needs to be forced back to
// False if leaving it True would falsify one of those clauses.
type eliminationRecord struct {
	v       int
	negRest [][]Literal
}

// Eliminate runs one bounded variable elimination pass over every
// currently unassigned, non-eliminated variable at the root decision
// level, removing variables whose positive and negative occurrences can
// be replaced by a bounded number of resolvents (or, for pure literals,
// by nothing at all). It returns the number of variables eliminated.
//
// Eliminate must only be called at decision level 0: it mutates the
// clause database directly rather than going through the trail.
func (s *Solver) Eliminate(cfg BVEConfig) int {
	eliminated := 0
	for v := 0; v < s.NumVariables(); v++ {
		if s.eliminatedVar[v] || s.VarValue(v) != Unknown {
			continue
		}
		if s.eliminateVariable(v, cfg) {
			eliminated++
		}
	}
	return eliminated
}

func (s *Solver) eliminateVariable(v int, cfg BVEConfig) bool {
	pos, neg := s.occurrences(v)

	if len(pos) == 0 && len(neg) == 0 {
		return false
	}
	if len(pos) == 0 || len(neg) == 0 {
		s.eliminatePureVariable(v, pos, neg)
		return true
	}

	if len(pos)*len(neg) > cfg.MaxProduct {
		return false
	}

	resolvents, ok := s.generateResolvents(v, pos, neg, cfg)
	if !ok {
		return false
	}
	if len(resolvents) > len(pos)+len(neg)+cfg.GrowthSlack {
		return false
	}
	resolvents = filterSubsumedResolvents(resolvents)

	rec := eliminationRecord{v: v, negRest: negRestOf(s, neg, v)}
	s.eliminationTrace = append(s.eliminationTrace, rec)

	// Resolvents are reported to the proof before their antecedents are
	// deleted, so each one is still RUP when a checker replays it.
	for _, lits := range resolvents {
		s.cdb.recordProofErr(s.cdb.proof.AddClause(lits))
	}
	for _, ref := range pos {
		s.deleteClause(ref)
	}
	for _, ref := range neg {
		s.deleteClause(ref)
	}
	for _, lits := range resolvents {
		if _, res, ok := s.addClause(lits, false); res == addEmpty || !ok {
			s.unsat = true
		}
	}

	s.eliminatedVar[v] = true
	s.heuristic.SetEliminated(v, true)
	return true
}

// occurrences returns the ClauseRefs of every active (non-deleted)
// original or learnt clause containing v positively or negatively.
// BVE only ever runs at decision level 0, so every undeleted clause with
// a literal on v is still a live constraint on v's value.
func (s *Solver) occurrences(v int) (pos, neg []ClauseRef) {
	visit := func(refs []ClauseRef) {
		for _, ref := range refs {
			c := s.cdb.arena[ref]
			if c.isDeleted() {
				continue
			}
			for _, l := range c.literals {
				if l.VarID() != v {
					continue
				}
				if l.IsPositive() {
					pos = append(pos, ref)
				} else {
					neg = append(neg, ref)
				}
				break
			}
		}
	}
	visit(s.cdb.constraints)
	visit(s.cdb.learnts)
	return pos, neg
}

// eliminatePureVariable handles the case where v occurs with only one
// polarity: there is nothing to resolve against (R is empty), so its
// clauses are simply dropped. A pure-positive v (neg empty) trivially
// satisfies all of its own clauses by being set True, which is exactly
// what ReconstructEliminated's default does with an empty negRest. A
// pure-negative v (pos empty) needs the opposite: negRest must still be
// recorded from its (only) occurrences so reconstruction can detect that
// every one of v's clauses needs ¬v, not default it to True and falsify
// them all.
func (s *Solver) eliminatePureVariable(v int, pos, neg []ClauseRef) {
	rec := eliminationRecord{v: v, negRest: negRestOf(s, neg, v)}
	for _, ref := range pos {
		s.deleteClause(ref)
	}
	for _, ref := range neg {
		s.deleteClause(ref)
	}
	s.eliminationTrace = append(s.eliminationTrace, rec)
	s.eliminatedVar[v] = true
	s.heuristic.SetEliminated(v, true)
}

// negRestOf returns, for every clause ref in neg, its literals with v's
// own (negative) occurrence stripped out.
func negRestOf(s *Solver, neg []ClauseRef, v int) [][]Literal {
	if len(neg) == 0 {
		return nil
	}
	negRest := make([][]Literal, 0, len(neg))
	for _, ref := range neg {
		negRest = append(negRest, append([]Literal{}, literalsExcluding(s.cdb.arena[ref].literals, v)...))
	}
	return negRest
}

// generateResolvents computes the resolvent of every positive/negative
// occurrence pair on v, dropping tautologies and failing outright on an
// oversized result. It fails (ok == false) if any individual resolvent
// exceeds the configured length bound, signalling the caller should leave
// v in place. The returned slice is R as §4.8 defines it (every
// non-tautological resolvent); subsumption filtering, if any, is the
// caller's job once R has passed the |R| <= |P|+|N|+slack growth check.
func (s *Solver) generateResolvents(v int, pos, neg []ClauseRef, cfg BVEConfig) ([][]Literal, bool) {
	var resolvents [][]Literal
	for _, pref := range pos {
		for _, nref := range neg {
			lits, tautology := resolveOn(v, s.cdb.arena[pref].literals, s.cdb.arena[nref].literals)
			if tautology {
				continue
			}
			if len(lits) > cfg.MaxResolventLen {
				return nil, false
			}
			resolvents = append(resolvents, lits)
		}
	}
	return resolvents, true
}

// resolveOn computes the resolvent of posLits and negLits on variable v
// (posLits contains v positively, negLits contains it negatively),
// deduplicating and detecting the tautology case where some other
// variable appears with both polarities across the two clauses.
func resolveOn(v int, posLits, negLits []Literal) ([]Literal, bool) {
	out := literalsExcluding(posLits, v)
	seen := make(map[Literal]bool, len(out))
	for _, l := range out {
		seen[l] = true
	}
	for _, l := range negLits {
		if l.VarID() == v {
			continue
		}
		if seen[l.Opposite()] {
			return nil, true
		}
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out, false
}

func literalsExcluding(lits []Literal, v int) []Literal {
	out := make([]Literal, 0, len(lits)-1)
	for _, l := range lits {
		if l.VarID() != v {
			out = append(out, l)
		}
	}
	return out
}

// filterSubsumedResolvents drops any resolvent that is a superset of
// another resolvent in the same batch: the shorter clause subsumes the
// longer one, making the longer one redundant.
func filterSubsumedResolvents(resolvents [][]Literal) [][]Literal {
	redundant := make([]bool, len(resolvents))
	for i, a := range resolvents {
		if redundant[i] {
			continue
		}
		for j, b := range resolvents {
			if i == j || redundant[j] || len(a) > len(b) {
				continue
			}
			if literalSetSubsumes(a, b) {
				redundant[j] = true
			}
		}
	}

	kept := make([][]Literal, 0, len(resolvents))
	for i, lits := range resolvents {
		if !redundant[i] {
			kept = append(kept, lits)
		}
	}
	return kept
}

func literalSetSubsumes(a, b []Literal) bool {
	if len(a) > len(b) {
		return false
	}
	for _, l := range a {
		found := false
		for _, m := range b {
			if l == m {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ReconstructEliminated extends model (indexed by variable) with values
// for every variable BVE eliminated, processing eliminations in reverse
// order so that every other variable a record refers to has already
// been fixed.
func (s *Solver) ReconstructEliminated(model []LBool) {
	for i := len(s.eliminationTrace) - 1; i >= 0; i-- {
		rec := s.eliminationTrace[i]
		model[rec.v] = True
		for _, rest := range rec.negRest {
			if !clauseSatisfiedByModel(rest, model) {
				model[rec.v] = False
				break
			}
		}
	}
}

func clauseSatisfiedByModel(lits []Literal, model []LBool) bool {
	for _, l := range lits {
		v := model[l.VarID()]
		if (l.IsPositive() && v == True) || (!l.IsPositive() && v == False) {
			return true
		}
	}
	return false
}

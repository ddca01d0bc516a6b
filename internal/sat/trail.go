package sat

// decisionLevel returns the current decision level: 0 at the root, before
// any decision has been made.
func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// NumAssigns returns the number of variables currently assigned.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

// VarValue returns the current value of variable x.
func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// enqueue records that l has become true, with the given reason (or
// NilClauseRef for a decision or a root-level unit axiom). It returns
// false if l was already false under the current assignment (a conflict),
// true otherwise (including when l was already true).
func (s *Solver) enqueue(l Literal, from ClauseRef) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		v := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[v] = s.decisionLevel()
		s.reason[v] = from
		s.trail = append(s.trail, l)
		s.propQueue.Push(l)
		return true
	}
}

// assume pushes a new decision level and assigns decision literal l as a
// decision (no reason).
func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, NilClauseRef)
}

// undoOne pops the most recent trail entry, restoring the variable to
// Unknown and notifying the branching heuristic so it can save the phase
// and make the variable selectable again.
func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = NilClauseRef
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
	s.heuristic.OnUnassign(v, l)
}

// cancel undoes every assignment made at the current decision level and
// pops the level.
func (s *Solver) cancel() {
	n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; n != 0; n-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// backjumpTo pops decision levels until the current level equals level.
// Any literal still queued for propagation belongs to a popped level, so
// the propagation queue is emptied as well.
func (s *Solver) backjumpTo(level int) {
	if s.decisionLevel() > level {
		s.propQueue.Clear()
	}
	for s.decisionLevel() > level {
		s.cancel()
	}
}

package sat

// Propagate runs Boolean constraint propagation to a fixed point, starting
// from whatever literals are already queued. It returns the conflicting
// clause if propagation derives a falsified clause, or NilClauseRef once
// the queue is drained without conflict.
//
// For each newly assigned literal l, the watch list stored under l (the
// clauses watching ¬l) is not rewritten with a two-pointer pass over
// itself: it is first copied into the reusable tmpWatchers buffer and then
// rebuilt by appending into its own backing array. Entries whose clause is
// still watching ¬l are appended back; entries whose clause picked up a new
// watch elsewhere are appended to that literal's list instead (see
// clausePropagate).
func (s *Solver) Propagate() ClauseRef {
	for s.propQueue.Size() > 0 {
		l := s.propQueue.Pop()

		ws := s.watchers[l]
		s.tmpWatchers = append(s.tmpWatchers[:0], ws...)
		s.watchers[l] = ws[:0]

		for i, w := range s.tmpWatchers {
			// The guard short-circuits clause inspection: if it is already
			// true, the clause is satisfied and needs no attention, which
			// saves loading the clause body from the arena.
			if s.LitValue(w.blocker) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}

			if s.clausePropagate(w.ref, l) {
				continue
			}

			// Conflict: restore the untouched remainder of this literal's
			// watch list and report the falsified clause.
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQueue.Clear()
			return w.ref
		}
	}

	return NilClauseRef
}

// clausePropagate inspects the clause at ref after literal l (one of its
// watched literals' negation) was just assigned true. It returns true if
// the clause remains satisfiable without further action (already
// satisfied, a new watch was found, or a new fact was successfully
// enqueued), and false if the clause is now falsified.
func (s *Solver) clausePropagate(ref ClauseRef, l Literal) bool {
	c := s.cdb.arena[ref]

	// Normalize so literals[1] is the watch that triggered this call;
	// literals[0] is then always the literal to potentially enqueue.
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], c.literals[0]
	}

	if s.LitValue(c.literals[0]) == True {
		s.Watch(ref, l, c.literals[0])
		return true
	}

	// Resume scanning literals[2:] from where the last rescan left off.
	if c.prevPos >= len(c.literals) {
		c.prevPos = 2
	}
	for i := c.prevPos; i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			c.prevPos = i + 1
			s.Watch(ref, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}
	for i := 2; i < c.prevPos && i < len(c.literals); i++ {
		if s.LitValue(c.literals[i]) != False {
			c.literals[1], c.literals[i] = c.literals[i], c.literals[1]
			c.prevPos = i + 1
			s.Watch(ref, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	// Every literal but literals[0] is false: the clause is unit (enqueue
	// literals[0]) or falsified (literals[0] is also false).
	s.Watch(ref, l, c.literals[0])
	return s.enqueue(c.literals[0], ref)
}

package sat

// watcher is one entry in a literal's watch list: the clause to inspect
// when the watched literal is falsified, plus a blocker literal (some
// other literal of the clause) that short-circuits the inspection when it
// is already true.
type watcher struct {
	ref     ClauseRef
	blocker Literal
}

// Watch registers ref to be woken up when watch is assigned true (i.e.
// watch.Opposite() being falsified triggers inspection).
func (s *Solver) Watch(ref ClauseRef, watch Literal, blocker Literal) {
	s.watchers[watch] = append(s.watchers[watch], watcher{ref: ref, blocker: blocker})
}

// Unwatch removes ref from watch's watch list.
func (s *Solver) Unwatch(ref ClauseRef, watch Literal) {
	ws := s.watchers[watch]
	k := 0
	for i := range ws {
		if ws[i].ref != ref {
			ws[k] = ws[i]
			k++
		}
	}
	s.watchers[watch] = ws[:k]
}

package sat

import (
	"github.com/rhartert/yagh"
)

// Heuristic decides which literal to branch on next and reacts to the
// search events that should influence future decisions.
type Heuristic interface {
	// AddVar grows the heuristic's per-variable state for one more
	// variable (variables are always appended, never removed).
	AddVar()
	// Pick returns the next decision literal, or NilLiteral if every
	// non-eliminated variable is already assigned.
	Pick(s *Solver) Literal
	// OnConflict is called once per conflict with every variable that
	// participated in the conflict's resolution (the seenVar set built by
	// Analyze), so activity-based heuristics can bump them.
	OnConflict(vars []int)
	// OnUnassign is called by backjumping for every variable it frees,
	// most-recently-assigned first, with the literal it had been bound
	// to (for phase saving).
	OnUnassign(v int, lastLit Literal)
	// OnNewClause is called whenever an original clause is added through
	// AddClause, before any propagation happens on it. Learnt clauses and
	// BVE resolvents are not reported.
	OnNewClause(lits []Literal)
	// Decay is called once per conflict, independently of OnConflict, to
	// age previously bumped activity relative to new bumps.
	Decay()
	// SetEliminated excludes (or re-admits) a variable from selection.
	// BVE calls this before search resumes after eliminating a variable.
	SetEliminated(v int, eliminated bool)
}

// ---------------------------------------------------------------------
// First-unassigned: the simplest possible policy, a fixed scan order.
// ---------------------------------------------------------------------

type firstUnassignedHeuristic struct {
	eliminated  []bool
	phases      []LBool
	defaultTrue bool
	phaseSaving bool
	next        int // resume scanning here; only ever an optimization hint
}

func newFirstUnassignedHeuristic(defaultTrue, phaseSaving bool) *firstUnassignedHeuristic {
	return &firstUnassignedHeuristic{defaultTrue: defaultTrue, phaseSaving: phaseSaving}
}

func (h *firstUnassignedHeuristic) AddVar() {
	h.eliminated = append(h.eliminated, false)
	h.phases = append(h.phases, Lift(h.defaultTrue))
}

func (h *firstUnassignedHeuristic) Pick(s *Solver) Literal {
	n := len(h.eliminated)
	for i := 0; i < n; i++ {
		v := (h.next + i) % n
		if h.eliminated[v] || s.VarValue(v) != Unknown {
			continue
		}
		h.next = v + 1
		return literalForPhase(v, h.phases[v])
	}
	return NilLiteral
}

func (h *firstUnassignedHeuristic) OnConflict([]int)         {}
func (h *firstUnassignedHeuristic) OnNewClause([]Literal)    {}
func (h *firstUnassignedHeuristic) Decay()                  {}
func (h *firstUnassignedHeuristic) SetEliminated(v int, e bool) {
	h.eliminated[v] = e
}
func (h *firstUnassignedHeuristic) OnUnassign(v int, lastLit Literal) {
	if h.phaseSaving {
		h.phases[v] = Lift(lastLit.IsPositive())
	}
	if v < h.next {
		h.next = v
	}
}

func literalForPhase(v int, phase LBool) Literal {
	if phase == False {
		return NegativeLiteral(v)
	}
	return PositiveLiteral(v)
}

// ---------------------------------------------------------------------
// Decay-unassignment: a FIFO of recently freed variables, falling back to
// a first-unassigned scan once the FIFO runs dry.
// ---------------------------------------------------------------------

type decayHeuristic struct {
	fallback *firstUnassignedHeuristic
	recent   *Queue[int]
	queued   []bool
}

func newDecayHeuristic(defaultTrue, phaseSaving bool) *decayHeuristic {
	return &decayHeuristic{
		fallback: newFirstUnassignedHeuristic(defaultTrue, phaseSaving),
		recent:   NewQueue[int](128),
	}
}

func (h *decayHeuristic) AddVar() {
	h.fallback.AddVar()
	h.queued = append(h.queued, false)
}

func (h *decayHeuristic) Pick(s *Solver) Literal {
	for h.recent.Size() > 0 {
		v := h.recent.Pop()
		h.queued[v] = false
		if h.fallback.eliminated[v] || s.VarValue(v) != Unknown {
			continue
		}
		return literalForPhase(v, h.fallback.phases[v])
	}
	return h.fallback.Pick(s)
}

func (h *decayHeuristic) OnConflict([]int)      {}
func (h *decayHeuristic) OnNewClause([]Literal) {}
func (h *decayHeuristic) Decay()                {}

func (h *decayHeuristic) SetEliminated(v int, e bool) {
	h.fallback.SetEliminated(v, e)
}

func (h *decayHeuristic) OnUnassign(v int, lastLit Literal) {
	h.fallback.OnUnassign(v, lastLit)
	if !h.queued[v] {
		h.queued[v] = true
		h.recent.Push(v)
	}
}

// ---------------------------------------------------------------------
// VMTF: a doubly-linked list of variables ordered by recency of conflict
// involvement. On conflict, touched variables move to the head; Pick
// walks forward from a search pointer that never revisits an already
// skipped, still-assigned variable on its own (it is reset to the head
// whenever the list order changes ahead of it).
// ---------------------------------------------------------------------

type vmtfHeuristic struct {
	next, prev []int // linked-list pointers, indexed by var
	eliminated []bool
	phases     []LBool
	defaultOn  bool
	phaseSaving bool
	head       int
	search     int
}

const vmtfNil = -1

func newVMTFHeuristic(defaultTrue, phaseSaving bool) *vmtfHeuristic {
	return &vmtfHeuristic{head: vmtfNil, search: vmtfNil, defaultOn: defaultTrue, phaseSaving: phaseSaving}
}

func (h *vmtfHeuristic) AddVar() {
	v := len(h.next)
	h.next = append(h.next, vmtfNil)
	h.prev = append(h.prev, vmtfNil)
	h.eliminated = append(h.eliminated, false)
	h.phases = append(h.phases, Lift(h.defaultOn))

	if h.head == vmtfNil {
		h.head = v
		h.search = v
		return
	}
	h.next[v] = h.head
	h.prev[h.head] = v
	h.head = v
	h.search = v
}

func (h *vmtfHeuristic) unlink(v int) {
	if h.prev[v] != vmtfNil {
		h.next[h.prev[v]] = h.next[v]
	} else {
		h.head = h.next[v]
	}
	if h.next[v] != vmtfNil {
		h.prev[h.next[v]] = h.prev[v]
	}
	h.next[v] = vmtfNil
	h.prev[v] = vmtfNil
}

func (h *vmtfHeuristic) pushFront(v int) {
	h.next[v] = h.head
	h.prev[v] = vmtfNil
	if h.head != vmtfNil {
		h.prev[h.head] = v
	}
	h.head = v
}

func (h *vmtfHeuristic) Pick(s *Solver) Literal {
	v := h.search
	for v != vmtfNil {
		if !h.eliminated[v] && s.VarValue(v) == Unknown {
			h.search = v
			return literalForPhase(v, h.phases[v])
		}
		v = h.next[v]
	}
	return NilLiteral
}

func (h *vmtfHeuristic) OnConflict(vars []int) {
	for _, v := range vars {
		h.unlink(v)
		h.pushFront(v)
	}
	h.search = h.head
}

func (h *vmtfHeuristic) OnNewClause([]Literal) {}
func (h *vmtfHeuristic) Decay()                {}

func (h *vmtfHeuristic) SetEliminated(v int, e bool) {
	h.eliminated[v] = e
}

func (h *vmtfHeuristic) OnUnassign(v int, lastLit Literal) {
	if h.phaseSaving {
		h.phases[v] = Lift(lastLit.IsPositive())
	}
	h.search = h.head
}

// ---------------------------------------------------------------------
// EVSIDS with a lazy binary heap: exponential variable state independent
// decaying sum, adapted directly from the teacher's VarOrder.
// ---------------------------------------------------------------------

type evsidsHeuristic struct {
	order       *yagh.IntMap[float64]
	scores      []float64
	scoreInc    float64
	scoreDecay  float64
	phases      []LBool
	eliminated  []bool
	defaultOn   bool
	phaseSaving bool
}

func newEVSIDSHeuristic(decay float64, defaultTrue, phaseSaving bool) *evsidsHeuristic {
	return &evsidsHeuristic{
		order:       yagh.New[float64](0),
		scoreInc:    1,
		scoreDecay:  decay,
		defaultOn:   defaultTrue,
		phaseSaving: phaseSaving,
	}
}

func (h *evsidsHeuristic) AddVar() {
	v := len(h.scores)
	h.scores = append(h.scores, 0)
	h.phases = append(h.phases, Lift(h.defaultOn))
	h.eliminated = append(h.eliminated, false)
	h.order.GrowBy(1)
	h.order.Put(v, 0)
}

func (h *evsidsHeuristic) Pick(s *Solver) Literal {
	for {
		next, ok := h.order.Pop()
		if !ok {
			return NilLiteral
		}
		v := next.Elem
		if h.eliminated[v] || s.VarValue(v) != Unknown {
			continue
		}
		return literalForPhase(v, h.phases[v])
	}
}

func (h *evsidsHeuristic) OnConflict(vars []int) {
	for _, v := range vars {
		h.bump(v)
	}
}

func (h *evsidsHeuristic) bump(v int) {
	newScore := h.scores[v] + h.scoreInc
	h.scores[v] = newScore
	if h.order.Contains(v) {
		h.order.Put(v, -newScore)
	}
	if newScore > 1e100 {
		h.rescale()
	}
}

func (h *evsidsHeuristic) rescale() {
	h.scoreInc *= 1e-100
	for v, sc := range h.scores {
		newScore := sc * 1e-100
		h.scores[v] = newScore
		if h.order.Contains(v) {
			h.order.Put(v, -newScore)
		}
	}
}

func (h *evsidsHeuristic) Decay() {
	h.scoreInc /= h.scoreDecay
	if h.scoreInc > 1e100 {
		h.rescale()
	}
}

func (h *evsidsHeuristic) OnNewClause([]Literal) {}

func (h *evsidsHeuristic) SetEliminated(v int, e bool) {
	h.eliminated[v] = e
}

func (h *evsidsHeuristic) OnUnassign(v int, lastLit Literal) {
	if h.phaseSaving {
		h.phases[v] = Lift(lastLit.IsPositive())
	}
	h.order.Put(v, -h.scores[v])
}

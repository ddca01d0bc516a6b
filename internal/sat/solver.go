package sat

import (
	"context"
	"log"
	"time"
)

// Solver is a single, self-contained CDCL instance: clause database,
// trail, watch lists, and the pluggable heuristic/restart/reduction
// components wired together by Solve's Search Driver loop. A Solver owns
// no global state; a host may construct as many independent Solvers as
// it likes.
type Solver struct {
	cdb              *ClauseDB
	heuristic        Heuristic
	restart          RestartController
	reductionManager *ReductionManager
	options          Options
	stats            Stats

	assigns  []LBool
	trail    []Literal
	trailLim []int
	reason   []ClauseRef
	level    []int

	watchers  [][]watcher
	propQueue *Queue[Literal]

	tmpWatchers []watcher
	tmpLearnts  []Literal
	tmpReason   []Literal
	tmpBumpVars []int

	seenVar        *ResetSet
	minimizeStack  []int
	minimizeMarked []int
	levelStamp     []uint32
	levelStampGen  uint32

	clauseActInc   float64
	clauseActDecay float64

	eliminatedVar    []bool
	eliminationTrace []eliminationRecord

	unsat bool
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NewSolver returns an empty Solver (zero variables, zero clauses)
// configured per ops.
func NewSolver(ops Options) *Solver {
	if ops.Proof == nil {
		ops.Proof = NopSink{}
	}
	s := &Solver{
		cdb:              NewClauseDB(ops.Proof),
		heuristic:        newHeuristic(ops),
		restart:          newRestartController(ops),
		reductionManager: NewReductionManager(ops.ReduceFirstLimit, ops.ReduceIncrement),
		options:          ops,
		propQueue:        NewQueue[Literal](128),
		seenVar:          &ResetSet{},
		clauseActInc:     1,
		clauseActDecay:   ops.ClauseDecay,
	}
	return s
}

// NumVariables returns the number of variables declared so far.
func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

// NumConstraints returns the number of active original clauses.
func (s *Solver) NumConstraints() int {
	return s.cdb.NumConstraints()
}

// NumLearnts returns the number of active learnt clauses.
func (s *Solver) NumLearnts() int {
	return s.cdb.NumLearnts()
}

// IsUnsat reports whether the solver has already derived the empty
// clause, either from input clauses or during search.
func (s *Solver) IsUnsat() bool {
	return s.unsat
}

// AddVariable declares one more variable and returns its 0-indexed ID.
func (s *Solver) AddVariable() int {
	v := s.NumVariables()

	s.watchers = append(s.watchers, nil, nil)
	s.reason = append(s.reason, NilClauseRef)
	s.level = append(s.level, -1)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.seenVar.Expand()
	s.eliminatedVar = append(s.eliminatedVar, false)
	s.levelStamp = append(s.levelStamp, 0)

	s.heuristic.AddVar()
	return v
}

// AddClause adds an original clause, given as a slice of Literals. It
// must only be called at decision level 0. An empty or immediately
// falsified clause marks the solver permanently unsat; the caller should
// check IsUnsat afterward rather than treating this as an error, since
// an unsatisfiable formula is a valid (if uninteresting) input.
func (s *Solver) AddClause(lits []Literal) {
	if s.decisionLevel() != 0 {
		log.Fatalf("sat: AddClause called at decision level %d, must be 0", s.decisionLevel())
	}
	if s.unsat {
		return
	}
	s.heuristic.OnNewClause(lits)

	_, result, ok := s.addClause(lits, false)
	switch {
	case result == addEmpty:
		s.unsat = true
	case !ok:
		s.unsat = true
	}
}

// Model is a total assignment to every declared variable, valid only
// after Solve has returned True.
type Model []bool

// Solve runs the Search Driver to completion, cancellation, or deadline.
// It returns True with a model, False, or Unknown (cancelled or resource
// bound exhausted). Unknown never corrupts the proof stream: any
// buffered proof records are flushed before returning.
func (s *Solver) Solve(ctx context.Context) (LBool, Model) {
	if s.unsat {
		s.finishProof(true)
		return False, nil
	}

	s.stats.StartTime = time.Now()
	s.printSeparator()
	s.printSearchHeader()
	s.printSeparator()

	for {
		if ctx.Err() != nil || s.shouldStop() {
			s.finishProof(false)
			return Unknown, nil
		}

		s.stats.Iterations++
		if s.stats.Iterations%10000 == 0 {
			s.printSearchStats()
		}

		if conflict := s.Propagate(); conflict != NilClauseRef {
			s.stats.Conflicts++

			if s.decisionLevel() == 0 {
				s.unsat = true
				s.finishProof(true)
				return False, nil
			}

			learnt, backtrackLevel, lbd, bumpVars := s.analyze(conflict)
			s.backjumpTo(backtrackLevel)

			ref, _, ok := s.addClause(learnt, true)
			if !ok {
				s.unsat = true
				s.finishProof(true)
				return False, nil
			}
			if ref != NilClauseRef {
				s.cdb.arena[ref].lbd = uint32(lbd)
			}
			s.enqueue(learnt[0], ref)

			s.heuristic.OnConflict(bumpVars)
			s.heuristic.Decay()
			s.decayClauseActivity()

			if s.restart.OnConflict(lbd, s.NumAssigns()) {
				s.backjumpTo(0)
				s.restart.OnRestart()
				s.stats.Restarts++
			}

			continue
		}

		if s.decisionLevel() == 0 {
			s.cdb.simplifyAt(s)

			if s.options.Inprocessing {
				eliminated := s.Eliminate(s.options.BVE)
				if s.unsat {
					s.finishProof(true)
					return False, nil
				}
				if eliminated > 0 {
					s.stats.Eliminated += int64(eliminated)
					s.printInprocessingStats(eliminated)
					// Resolvents may have enqueued units: propagate them
					// before the next decision or model check.
					continue
				}
			}
		}

		s.Reduce()

		if s.NumAssigns() == s.NumVariables()-countTrue(s.eliminatedVar) {
			model := s.extractModel()
			s.finishProof(false)
			return True, model
		}

		l := s.heuristic.Pick(s)
		if l == NilLiteral {
			model := s.extractModel()
			s.finishProof(false)
			return True, model
		}
		s.stats.Decisions++
		s.assume(l)
	}
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func (s *Solver) shouldStop() bool {
	if s.options.MaxConflicts >= 0 && s.stats.Conflicts >= s.options.MaxConflicts {
		return true
	}
	if s.options.Timeout >= 0 && time.Since(s.stats.StartTime) >= s.options.Timeout {
		return true
	}
	return false
}

// extractModel reads off every non-eliminated variable's value from the
// trail, then reconstructs every eliminated variable's value.
func (s *Solver) extractModel() Model {
	model := make([]LBool, s.NumVariables())
	for v := 0; v < s.NumVariables(); v++ {
		if !s.eliminatedVar[v] {
			model[v] = s.VarValue(v)
		}
	}
	s.ReconstructEliminated(model)

	out := make(Model, len(model))
	for v, lb := range model {
		out[v] = lb == True
	}
	return out
}

// NextModel asks for another satisfying assignment distinct from model, by
// asserting a blocking clause over model's non-eliminated variables (at
// least one of them must flip) and re-running Solve. It must only be
// called after Solve has returned True. Eliminated variables are excluded
// from the blocking clause: their values are a deterministic function of
// the reconstruction trace, not an independent search choice, so blocking
// on them would forbid models that are otherwise genuinely new.
func (s *Solver) NextModel(ctx context.Context, model Model) (LBool, Model) {
	blocking := make([]Literal, 0, len(model))
	for v, val := range model {
		if s.eliminatedVar[v] {
			continue
		}
		if val {
			blocking = append(blocking, NegativeLiteral(v))
		} else {
			blocking = append(blocking, PositiveLiteral(v))
		}
	}
	if len(blocking) == 0 {
		s.unsat = true
		return False, nil
	}
	s.backjumpTo(0)
	s.AddClause(blocking)
	return s.Solve(ctx)
}

// finishProof flushes the proof sink, first writing the terminal empty
// clause line when emptyClause is true (the solver derived UNSAT). Any
// sink error is recorded rather than logged here: search has already
// finished by the time finishProof runs, so the driver is responsible for
// surfacing it via ProofError once Solve returns (§4.9).
func (s *Solver) finishProof(emptyClause bool) {
	if emptyClause {
		s.cdb.recordProofErr(s.cdb.proof.AddClause(nil))
	}
	s.cdb.recordProofErr(s.cdb.proof.Close())
}

// ProofError returns the first error reported by the proof sink during
// this solve, or nil if the sink never failed. Callers should check it
// after Solve returns regardless of verdict: a proof-sink I/O failure
// does not change SAT/UNSAT/Unknown, but it does mean any proof emitted
// may be incomplete.
func (s *Solver) ProofError() error {
	return s.cdb.proofErr
}

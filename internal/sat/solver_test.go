package sat

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnfsolvers/cdcl/internal/verify"
)

// litFromInt converts a signed, 1-indexed DIMACS-style integer into the
// solver's Literal encoding, matching the convention used by the CLI's
// DIMACS loader.
func litFromInt(n int) Literal {
	if n > 0 {
		return PositiveLiteral(n - 1)
	}
	return NegativeLiteral(-n - 1)
}

// buildSolver declares numVars variables and adds every clause (each
// given as signed 1-indexed ints) to a solver configured with ops.
func buildSolver(ops Options, numVars int, clauses [][]int) *Solver {
	s := NewSolver(ops)
	for i := 0; i < numVars; i++ {
		s.AddVariable()
	}
	for _, cl := range clauses {
		lits := make([]Literal, len(cl))
		for i, n := range cl {
			lits[i] = litFromInt(n)
		}
		s.AddClause(lits)
	}
	return s
}

func modelSatisfies(model Model, clauses [][]int) bool {
	for _, cl := range clauses {
		ok := false
		for _, n := range cl {
			idx := n - 1
			if n < 0 {
				idx = -n - 1
			}
			if model[idx] == (n > 0) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// pigeonhole returns the clauses of PHP(pigeons, holes): no injective
// mapping exists once pigeons > holes, making the formula UNSAT.
func pigeonhole(pigeons, holes int) (numVars int, clauses [][]int) {
	v := func(p, h int) int { return p*holes + h + 1 }
	numVars = pigeons * holes

	for p := 0; p < pigeons; p++ {
		cl := make([]int, holes)
		for h := 0; h < holes; h++ {
			cl[h] = v(p, h)
		}
		clauses = append(clauses, cl)
	}
	for h := 0; h < holes; h++ {
		for p1 := 0; p1 < pigeons; p1++ {
			for p2 := p1 + 1; p2 < pigeons; p2++ {
				clauses = append(clauses, []int{-v(p1, h), -v(p2, h)})
			}
		}
	}
	return numVars, clauses
}

func TestSolve_emptyFormula(t *testing.T) {
	s := NewDefaultSolver()
	verdict, model := s.Solve(context.Background())
	require.Equal(t, True, verdict)
	assert.Empty(t, model)
}

func TestSolve_immediateUnsat(t *testing.T) {
	s := buildSolver(DefaultOptions, 1, [][]int{{1}, {-1}})
	verdict, _ := s.Solve(context.Background())
	assert.Equal(t, False, verdict)
	assert.True(t, s.IsUnsat())
}

func TestSolve_unitChain(t *testing.T) {
	clauses := [][]int{{1}, {-1, 2}, {-2, 3}, {-3, 4}}
	s := buildSolver(DefaultOptions, 4, clauses)
	verdict, model := s.Solve(context.Background())
	require.Equal(t, True, verdict)
	if diff := cmp.Diff(Model{true, true, true, true}, model); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestSolve_pigeonholeUnsatisfiable(t *testing.T) {
	numVars, clauses := pigeonhole(3, 2)
	s := buildSolver(DefaultOptions, numVars, clauses)
	verdict, _ := s.Solve(context.Background())
	assert.Equal(t, False, verdict)
}

// TestSolve_pigeonholeProofVerifies checks the soundness-of-UNSAT law:
// the DRUP proof the core emits for an UNSAT instance must independently
// verify against the original clauses.
func TestSolve_pigeonholeProofVerifies(t *testing.T) {
	numVars, clauses := pigeonhole(3, 2)

	var buf bytes.Buffer
	ops := DefaultOptions
	ops.Proof = NewDRUPSink(&buf)
	s := buildSolver(ops, numVars, clauses)

	verdict, _ := s.Solve(context.Background())
	require.Equal(t, False, verdict)

	original := make([][]int32, len(clauses))
	for i, cl := range clauses {
		lits := make([]int32, len(cl))
		for j, n := range cl {
			lits[j] = int32(n)
		}
		original[i] = lits
	}

	ok, reason, err := verify.CheckRUP(numVars, original, &buf)
	require.NoError(t, err)
	assert.True(t, ok, "proof rejected: %s", reason)
}

// TestSolve_pureLiteralEliminatedByBVE exercises variable elimination's
// pure-literal special case (§8, scenario 5): a variable appearing only
// positively has nothing to resolve against, so BVE deletes its clauses
// outright and reconstruction must assign it True.
func TestSolve_pureLiteralEliminatedByBVE(t *testing.T) {
	clauses := [][]int{{1, 2}, {1, -2}, {2, 3}}
	ops := DefaultOptions
	ops.Inprocessing = true
	s := buildSolver(ops, 3, clauses)

	verdict, model := s.Solve(context.Background())
	require.Equal(t, True, verdict)
	assert.True(t, modelSatisfies(model, clauses))
}

// TestSolve_pureNegativeLiteralEliminatedByBVE is the dual of
// TestSolve_pureLiteralEliminatedByBVE: a variable appearing only
// negatively must be reconstructed to satisfy its own clauses via its
// negative occurrence, not defaulted to True the way a pure-positive
// variable is.
func TestSolve_pureNegativeLiteralEliminatedByBVE(t *testing.T) {
	clauses := [][]int{{-1, 2}}
	ops := DefaultOptions
	ops.Inprocessing = true
	s := buildSolver(ops, 2, clauses)

	verdict, model := s.Solve(context.Background())
	require.Equal(t, True, verdict)
	assert.True(t, modelSatisfies(model, clauses))
}

// TestSolve_heuristicRestartIndependence is the heuristic-independence
// law: every heuristic/restart combination must agree on SAT/UNSAT for
// the same formula.
func TestSolve_heuristicRestartIndependence(t *testing.T) {
	numVars, clauses := pigeonhole(4, 3)

	heuristics := []HeuristicKind{FirstUnassigned, Decay, VMTF, VSIDS}
	restarts := []RestartKind{NoRestartKind, Fixed, Geometric, Luby, GlucoseEMA}

	for _, h := range heuristics {
		for _, r := range restarts {
			ops := DefaultOptions
			ops.Heuristic = h
			ops.RestartPolicy = r
			s := buildSolver(ops, numVars, clauses)
			verdict, _ := s.Solve(context.Background())
			assert.Equalf(t, False, verdict, "heuristic=%s restart=%s", h, r)
		}
	}
}

func TestSolve_satisfiableModelSatisfiesEveryClause(t *testing.T) {
	clauses := [][]int{
		{1, 2, 3}, {-1, 2}, {-2, 3}, {1, -3},
	}
	s := buildSolver(DefaultOptions, 3, clauses)
	verdict, model := s.Solve(context.Background())
	require.Equal(t, True, verdict)
	assert.True(t, modelSatisfies(model, clauses))
}

// TestSolve_nextModelEnumeratesDistinctModels exercises the BVE
// reconstruction law with more than one witness (§8): a formula with an
// eliminated pure variable and more than one satisfying assignment over
// the remaining variables must yield distinct models from successive
// NextModel calls, each satisfying the original clauses.
func TestSolve_nextModelEnumeratesDistinctModels(t *testing.T) {
	clauses := [][]int{{1, 2}, {1, -2}}
	ops := DefaultOptions
	ops.Inprocessing = true
	s := buildSolver(ops, 2, clauses)

	verdict, model1 := s.Solve(context.Background())
	require.Equal(t, True, verdict)
	assert.True(t, modelSatisfies(model1, clauses))

	verdict, model2 := s.NextModel(context.Background(), model1)
	require.Equal(t, True, verdict)
	assert.True(t, modelSatisfies(model2, clauses))
	assert.NotEqual(t, model1, model2)

	verdict, _ = s.NextModel(context.Background(), model2)
	assert.Equal(t, False, verdict)
}

func TestSolve_cancellationReturnsUnknown(t *testing.T) {
	numVars, clauses := pigeonhole(6, 5)
	ops := DefaultOptions
	s := buildSolver(ops, numVars, clauses)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdict, model := s.Solve(ctx)
	assert.Equal(t, Unknown, verdict)
	assert.Nil(t, model)
}

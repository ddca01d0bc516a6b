package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cnfsolvers/cdcl/internal/dimacs"
	"github.com/cnfsolvers/cdcl/internal/sat"
	"github.com/cnfsolvers/cdcl/internal/verify"
)

// exitSatisfiable, exitUnsatisfiable, and exitUnknown follow the DIMACS
// convention used by most SAT competitions: 10 for SAT, 20 for UNSAT, and
// a non-error 0 for UNKNOWN (cancellation or a resource bound).
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
	exitUnknown       = 0
	exitProofError    = 1
)

func main() {
	log := logrus.New()
	root := newRootCommand(log)
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func newRootCommand(log *logrus.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "cdcl",
		Short:         "A conflict-driven clause learning SAT solver",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCommand(log))
	root.AddCommand(newVerifyProofCommand(log))
	return root
}

type solveFlags struct {
	heuristic    string
	restart      string
	inprocessing bool
	proofPath    string
	progress     string
	maxConflicts int64
	timeout      time.Duration
	cpuProfile   string
	memProfile   string
}

func newSolveCommand(log *logrus.Logger) *cobra.Command {
	f := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve <instance.cnf>",
		Short: "Decide satisfiability of a DIMACS CNF instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runSolve(cmd.Context(), log, args[0], f)
			if err != nil {
				return err
			}
			os.Exit(code)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.heuristic, "heuristic", "vsids", "branching heuristic: first_unassigned|decay|vmtf|vsids")
	flags.StringVar(&f.restart, "restart", "glucose_ema", "restart policy: none|fixed|geometric|luby|glucose_ema")
	flags.BoolVar(&f.inprocessing, "inprocessing", true, "enable bounded variable elimination between search epochs")
	flags.StringVar(&f.proofPath, "proof", "", "write a DRUP proof to this path (UNSAT only)")
	flags.StringVar(&f.progress, "progress", "medium", "progress verbosity: off|short|medium|long")
	flags.Int64Var(&f.maxConflicts, "max-conflicts", -1, "abort after this many conflicts (<0 disables)")
	flags.DurationVar(&f.timeout, "timeout", -1, "abort after this wall-clock duration (<0 disables)")
	flags.StringVar(&f.cpuProfile, "cpu-profile", "", "write a pprof CPU profile to this path")
	flags.StringVar(&f.memProfile, "mem-profile", "", "write a pprof heap profile to this path")

	return cmd
}

func newVerifyProofCommand(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-proof <instance.cnf> <proof.drup>",
		Short: "Check a DRUP proof of unsatisfiability against its instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := runVerifyProof(log, args[0], args[1])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("s INVALID")
				os.Exit(1)
			}
			fmt.Println("s VERIFIED")
			return nil
		},
	}
	return cmd
}

func parseHeuristic(s string) (sat.HeuristicKind, error) {
	switch s {
	case "first_unassigned":
		return sat.FirstUnassigned, nil
	case "decay":
		return sat.Decay, nil
	case "vmtf":
		return sat.VMTF, nil
	case "vsids":
		return sat.VSIDS, nil
	default:
		return 0, fmt.Errorf("unknown heuristic %q", s)
	}
}

func parseRestart(s string) (sat.RestartKind, error) {
	switch s {
	case "none":
		return sat.NoRestartKind, nil
	case "fixed":
		return sat.Fixed, nil
	case "geometric":
		return sat.Geometric, nil
	case "luby":
		return sat.Luby, nil
	case "glucose_ema":
		return sat.GlucoseEMA, nil
	default:
		return 0, fmt.Errorf("unknown restart policy %q", s)
	}
}

func parseProgress(s string) (sat.ProgressLevel, error) {
	switch s {
	case "off":
		return sat.ProgressOff, nil
	case "short":
		return sat.ProgressShort, nil
	case "medium":
		return sat.ProgressMedium, nil
	case "long":
		return sat.ProgressLong, nil
	default:
		return 0, fmt.Errorf("unknown progress level %q", s)
	}
}

// buildOptions translates CLI flags into a sat.Options, starting from
// sat.DefaultOptions so any field the CLI doesn't expose keeps its
// documented default.
func buildOptions(f *solveFlags, proof sat.ProofSink) (sat.Options, error) {
	ops := sat.DefaultOptions

	heuristic, err := parseHeuristic(f.heuristic)
	if err != nil {
		return ops, err
	}
	restart, err := parseRestart(f.restart)
	if err != nil {
		return ops, err
	}
	progress, err := parseProgress(f.progress)
	if err != nil {
		return ops, err
	}

	ops.Heuristic = heuristic
	ops.RestartPolicy = restart
	ops.Progress = progress
	ops.Inprocessing = f.inprocessing
	ops.MaxConflicts = f.maxConflicts
	ops.Timeout = f.timeout
	ops.Proof = proof

	return ops, nil
}

func runSolve(ctx context.Context, log *logrus.Logger, path string, f *solveFlags) (int, error) {
	if f.cpuProfile != "" {
		pf, err := os.Create(f.cpuProfile)
		if err != nil {
			return 0, fmt.Errorf("creating cpu profile: %w", err)
		}
		defer pf.Close()
		if err := pprof.StartCPUProfile(pf); err != nil {
			return 0, fmt.Errorf("starting cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	cnf, err := dimacs.ParseFile(path)
	if err != nil {
		return 0, fmt.Errorf("parsing instance: %w", err)
	}

	var proof sat.ProofSink
	if f.proofPath != "" {
		pf, err := os.Create(f.proofPath)
		if err != nil {
			return 0, fmt.Errorf("creating proof file: %w", err)
		}
		defer pf.Close()
		proof = sat.NewDRUPSink(pf)
	}

	ops, err := buildOptions(f, proof)
	if err != nil {
		return 0, err
	}

	s := sat.NewSolver(ops)
	loadInstance(s, cnf)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("c variables: %d\n", cnf.Variables)
	fmt.Printf("c clauses:   %d\n", len(cnf.Clauses))

	start := time.Now()
	verdict, model := s.Solve(ctx)
	elapsed := time.Since(start)
	log.WithField("elapsed", elapsed).Debug("search finished")

	if f.memProfile != "" {
		pf, err := os.Create(f.memProfile)
		if err != nil {
			return 0, fmt.Errorf("creating mem profile: %w", err)
		}
		defer pf.Close()
		if err := pprof.WriteHeapProfile(pf); err != nil {
			return 0, fmt.Errorf("writing mem profile: %w", err)
		}
	}

	code := exitUnknown
	switch verdict {
	case sat.True:
		printModel(model)
		code = exitSatisfiable
	case sat.False:
		fmt.Println("s UNSATISFIABLE")
		code = exitUnsatisfiable
	default:
		fmt.Println("s UNKNOWN")
	}

	// A proof-sink I/O failure doesn't change the verdict search already
	// reached, but it does mean any proof written for it may be
	// incomplete, so it still needs to reach the caller as a diagnostic.
	if perr := s.ProofError(); perr != nil {
		log.WithError(perr).Error("proof sink reported an error")
		return exitProofError, nil
	}

	return code, nil
}

// loadInstance declares every variable and adds every clause from cnf to
// s, translating DIMACS's signed 1-indexed literals into the solver's
// 0-indexed sat.Literal encoding.
func loadInstance(s *sat.Solver, cnf *dimacs.CNF) {
	for i := 0; i < cnf.Variables; i++ {
		s.AddVariable()
	}
	for _, clause := range cnf.Clauses {
		lits := make([]sat.Literal, len(clause))
		for i, l := range clause {
			if l > 0 {
				lits[i] = sat.PositiveLiteral(int(l) - 1)
			} else {
				lits[i] = sat.NegativeLiteral(int(-l) - 1)
			}
		}
		s.AddClause(lits)
	}
}

func printModel(model sat.Model) {
	fmt.Println("s SATISFIABLE")
	const perLine = 16
	fmt.Print("v")
	for i, b := range model {
		if i%perLine == 0 && i != 0 {
			fmt.Print("\nv")
		}
		if b {
			fmt.Printf(" %d", i+1)
		} else {
			fmt.Printf(" -%d", i+1)
		}
	}
	fmt.Println(" 0")
}

func runVerifyProof(log *logrus.Logger, cnfPath, proofPath string) (bool, error) {
	cnf, err := dimacs.ParseFile(cnfPath)
	if err != nil {
		return false, fmt.Errorf("parsing instance: %w", err)
	}
	pf, err := os.Open(proofPath)
	if err != nil {
		return false, fmt.Errorf("opening proof: %w", err)
	}
	defer pf.Close()

	ok, reason, err := verify.CheckRUP(cnf.Variables, cnf.Clauses, pf)
	if err != nil {
		return false, fmt.Errorf("checking proof: %w", err)
	}
	if !ok {
		log.WithField("reason", reason).Warn("proof rejected")
	}
	return ok, nil
}

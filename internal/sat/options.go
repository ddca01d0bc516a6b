package sat

import "time"

// HeuristicKind selects which branching Heuristic implementation a
// Solver is built with.
type HeuristicKind int

const (
	FirstUnassigned HeuristicKind = iota
	Decay
	VMTF
	VSIDS
)

func (k HeuristicKind) String() string {
	switch k {
	case FirstUnassigned:
		return "first_unassigned"
	case Decay:
		return "decay"
	case VMTF:
		return "vmtf"
	case VSIDS:
		return "vsids"
	default:
		return "unknown"
	}
}

// RestartKind selects which RestartController implementation a Solver is
// built with.
type RestartKind int

const (
	NoRestartKind RestartKind = iota
	Fixed
	Geometric
	Luby
	GlucoseEMA
)

func (k RestartKind) String() string {
	switch k {
	case NoRestartKind:
		return "none"
	case Fixed:
		return "fixed"
	case Geometric:
		return "geometric"
	case Luby:
		return "luby"
	case GlucoseEMA:
		return "glucose_ema"
	default:
		return "unknown"
	}
}

// ProgressLevel controls how much "c " commentary the Search Driver
// prints during search.
type ProgressLevel int

const (
	ProgressOff ProgressLevel = iota
	ProgressShort
	ProgressMedium
	ProgressLong
)

// Options configures a Solver. The zero value is not usable directly;
// start from DefaultOptions.
type Options struct {
	Heuristic     HeuristicKind
	RestartPolicy RestartKind
	Inprocessing  bool
	Progress      ProgressLevel

	ClauseDecay   float64
	VariableDecay float64
	PhaseSaving   bool
	DefaultPhase  bool // initial polarity when no phase has been saved yet

	MaxConflicts int64 // <0 disables
	Timeout      time.Duration // <0 disables

	ReduceFirstLimit int
	ReduceIncrement  int

	FixedRestartPeriod     int
	GeometricRestartBase   int
	GeometricRestartFactor float64
	LubyRestartUnit        int
	GlucoseMinConflicts    int
	GlucoseMarginLBD       float64
	GlucoseMarginTrail     float64

	BVE BVEConfig

	// Proof receives DRUP add/delete events. Defaults to NopSink, which
	// discards them. Opening the underlying file (and honoring
	// proof_path from a configuration record) is a CLI concern.
	Proof ProofSink
}

// DefaultOptions mirrors the configuration record's documented defaults:
// VSIDS branching, Glucose-EMA restarts, inprocessing on, medium
// progress, no proof output.
var DefaultOptions = Options{
	Heuristic:     VSIDS,
	RestartPolicy: GlucoseEMA,
	Inprocessing:  true,
	Progress:      ProgressMedium,

	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	PhaseSaving:   true,
	DefaultPhase:  false,

	MaxConflicts: -1,
	Timeout:      -1,

	ReduceFirstLimit: 2000,
	ReduceIncrement:  300,

	FixedRestartPeriod:     700,
	GeometricRestartBase:   100,
	GeometricRestartFactor: 1.5,
	LubyRestartUnit:        32,
	GlucoseMinConflicts:    50,
	GlucoseMarginLBD:       1.25,
	GlucoseMarginTrail:     1.4,

	BVE: DefaultBVEConfig(),
}

func newHeuristic(ops Options) Heuristic {
	switch ops.Heuristic {
	case FirstUnassigned:
		return newFirstUnassignedHeuristic(ops.DefaultPhase, ops.PhaseSaving)
	case Decay:
		return newDecayHeuristic(ops.DefaultPhase, ops.PhaseSaving)
	case VMTF:
		return newVMTFHeuristic(ops.DefaultPhase, ops.PhaseSaving)
	default:
		return newEVSIDSHeuristic(ops.VariableDecay, ops.DefaultPhase, ops.PhaseSaving)
	}
}

func newRestartController(ops Options) RestartController {
	switch ops.RestartPolicy {
	case Fixed:
		return NewFixedRestart(ops.FixedRestartPeriod)
	case Geometric:
		return NewGeometricRestart(ops.GeometricRestartBase, ops.GeometricRestartFactor)
	case Luby:
		return NewLubyRestart(ops.LubyRestartUnit)
	case GlucoseEMA:
		return NewGlucoseEMARestart(ops.GlucoseMinConflicts, ops.GlucoseMarginLBD, ops.GlucoseMarginTrail)
	default:
		return NoRestart{}
	}
}

package sat

import (
	"fmt"
	"time"
)

// Stats accumulates the search counters the Search Driver reports both
// as progress commentary and to callers inspecting a finished run.
type Stats struct {
	Conflicts  int64
	Restarts   int64
	Decisions  int64
	Iterations int64
	Reductions int64
	Eliminated int64
	StartTime  time.Time
}

func (s *Solver) printSeparator() {
	if s.options.Progress == ProgressOff {
		return
	}
	fmt.Println("c ---------------------------------------------------------------------------")
}

func (s *Solver) printSearchHeader() {
	if s.options.Progress < ProgressMedium {
		return
	}
	fmt.Println("c            time     iterations      conflicts       restarts        learnts")
}

func (s *Solver) printSearchStats() {
	switch s.options.Progress {
	case ProgressOff:
		return
	case ProgressShort:
		fmt.Printf("c conflicts=%d restarts=%d learnts=%d\n",
			s.stats.Conflicts, s.stats.Restarts, s.cdb.NumLearnts())
	default:
		fmt.Printf(
			"c %14.3fs %14d %14d %14d %14d\n",
			time.Since(s.stats.StartTime).Seconds(),
			s.stats.Iterations,
			s.stats.Conflicts,
			s.stats.Restarts,
			s.cdb.NumLearnts())
	}
}

func (s *Solver) printInprocessingStats(eliminated int) {
	if s.options.Progress < ProgressLong {
		return
	}
	fmt.Printf("c inprocessing: eliminated %d variables (total %d)\n", eliminated, s.stats.Eliminated)
}

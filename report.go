package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/muesli/termenv"
	"github.com/oklog/ulid/v2"
)

// BuildReport summarizes one build.
type BuildReport struct {
	RunID     ulid.ULID     `json:"run"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Units     []UnitResult  `json:"units"`
}

func NewBuildReport(runID ulid.ULID) *BuildReport {
	return &BuildReport{RunID: runID, Started: time.Now()}
}

func (r *BuildReport) Finish(units []UnitResult) {
	r.Duration = time.Since(r.Started)
	r.Units = units
	r.Succeeded, r.Failed = 0, 0
	for _, unit := range units {
		if unit.Failed() {
			r.Failed++
		} else {
			r.Succeeded++
		}
	}
}

func (r *BuildReport) OK() bool {
	return r.Failed == 0
}

func (r *BuildReport) WriteJSON(path string) error {
	content, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode build report: %w", err)
	}
	if err := os.WriteFile(path, append(content, '\n'), 0o644); err != nil {
		return fmt.Errorf("could not write build report %q: %w", path, err)
	}
	return nil
}

// PrintSummary writes one status line per unit and a total line.
func (r *BuildReport) PrintSummary(w io.Writer) {
	out := termenv.NewOutput(w)
	ok := out.String("ok").Foreground(out.Color("2"))
	fail := out.String("FAIL").Foreground(out.Color("1")).Bold()

	for _, unit := range r.Units {
		switch {
		case unit.Failed():
			fmt.Fprintf(w, "%s\t%s\n\t%s\n", fail, unit.Path, unit.Error)
		case unit.OutputPath != "":
			fmt.Fprintf(w, "%s\t%s -> %s\n", ok, unit.Path, unit.OutputPath)
		default:
			fmt.Fprintf(w, "%s\t%s\n", ok, unit.Path)
		}
	}
	fmt.Fprintf(w, "%d compiled, %d failed in %s\n", r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond))
}

// Command threatengine is the batch CLI entry point: it reads one
// encounter's engine input as JSON, runs the two-pass threat pipeline, and
// writes the augmented output as JSON (SPEC_FULL.md §C.1), optionally
// appending an ability-breakdown export for a selected target
// (SPEC_FULL.md §C.4).
//
// Grounded on the teacher's cmd/server/main.go wiring order: parse flags,
// load config, build the logger, then construct and run the engine.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/tstirrat/wow-threat-sub000/internal/aggregate"
	"github.com/tstirrat/wow-threat-sub000/internal/engine"
	"github.com/tstirrat/wow-threat-sub000/internal/obslog"
	"github.com/tstirrat/wow-threat-sub000/internal/runconfig"
	"github.com/tstirrat/wow-threat-sub000/internal/threatconfig"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "threatengine: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := pflag.NewFlagSet("threatengine", pflag.ContinueOnError)
	runconfig.Flags(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	configPath, _ := fs.GetString("config")
	cfg, err := runconfig.Load(configPath, fs)
	if err != nil {
		return fmt.Errorf("loading run config: %w", err)
	}

	logger, err := obslog.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	in, err := readInput(cfg.InputPath, stdin)
	if err != nil {
		return fmt.Errorf("reading engine input: %w", err)
	}
	if cfg.InferThreatReduction {
		in.InferThreatReduction = true
	}
	if in.Config == nil {
		// The threat config carries Go formula funcs and cannot travel over
		// the EngineInput JSON document, so a caller that omits it falls back
		// to the built-in classic-WoW-shaped default rather than leaving the
		// calculator a nil *Config to dereference.
		in.Config = threatconfig.Builtin()
	}

	logger.Info("running threat engine",
		zap.Int("event_count", len(in.RawEvents)),
		zap.Bool("infer_threat_reduction", in.InferThreatReduction),
	)

	out := engine.Run(logger, in)

	logger.Info("engine run complete",
		zap.Int("augmented_event_count", len(out.AugmentedEvents)),
	)

	if err := writeOutput(cfg.OutputPath, stdout, out); err != nil {
		return fmt.Errorf("writing engine output: %w", err)
	}

	if cfg.Target == "" {
		return nil
	}
	return writeAbilityBreakdown(stdout, in, out, cfg)
}

func readInput(path string, stdin io.Reader) (engine.Input, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return engine.Input{}, err
		}
		defer f.Close()
		r = f
	}

	var in engine.Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return engine.Input{}, fmt.Errorf("decoding JSON: %w", err)
	}
	return in, nil
}

func writeOutput(path string, stdout io.Writer, out engine.Output) error {
	w := stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeAbilityBreakdown resolves cfg.Target against the augmented events
// and writes its per-ability rows in cfg.Format (SPEC_FULL.md §C.4).
func writeAbilityBreakdown(stdout io.Writer, in engine.Input, out engine.Output, cfg runconfig.RunConfig) error {
	actorID, err := strconv.ParseInt(cfg.Target, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing --target %q: %w", cfg.Target, err)
	}

	var fightStartMs int64
	if len(out.AugmentedEvents) > 0 {
		fightStartMs = out.AugmentedEvents[0].Event.Timestamp
	}

	abilityNames := make(map[int64]string)
	windowEnd := int64(0)
	for _, ae := range out.AugmentedEvents {
		if ae.Event.HasAbilityGameID {
			if _, ok := abilityNames[ae.Event.AbilityGameID]; !ok {
				abilityNames[ae.Event.AbilityGameID] = ""
			}
		}
		if t := ae.Event.Timestamp - fightStartMs; t > windowEnd {
			windowEnd = t
		}
	}

	rows := aggregate.BuildAbilityRows(out.AugmentedEvents, actorID, abilityNames, fightStartMs, 0, windowEnd)

	if cfg.Format == "csv" {
		return aggregate.WriteAbilityRowsCSV(stdout, rows)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/parley/handle"
	"github.com/Paintersrp/parley/internal/cliutil"
	"github.com/Paintersrp/parley/internal/config"
	"github.com/Paintersrp/parley/worker"
)

func newRunCmd(ctx *context) *cobra.Command {
	var jsonLogs bool

	cmd := &cobra.Command{
		Use:   "run [job...]",
		Short: "Run manifest jobs under scoped process handles",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(*ctx.manifestFile)
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = config.JobNames(doc)
			}

			emit := newEmitter(cmd.OutOrStdout(), jsonLogs)

			failed := 0
			for _, name := range names {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				spec, ok := doc.Jobs[name]
				if !ok {
					return fmt.Errorf("job %s not defined in %s", name, *ctx.manifestFile)
				}
				if err := runJob(name, spec, emit); err != nil {
					emit(cliutil.Event{Job: name, Worker: spec.Worker, Level: "error", Message: err.Error()})
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(names))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonLogs, "json", false, "Force JSON log records even on a terminal")

	return cmd
}

func runJob(name string, spec *config.JobSpec, emit func(cliutil.Event)) error {
	reg, err := worker.ResolveName(spec.Worker)
	if err != nil {
		return err
	}
	if reg.Generator {
		return fmt.Errorf("job %s: worker %q is conversational and cannot run from a manifest", name, spec.Worker)
	}

	h, err := handle.NewNamed(spec.Worker, handle.Options{
		Args:             spec.Args,
		Timeout:          spec.Timeout.Duration,
		Terminate:        spec.Terminate,
		Reraise:          spec.Reraise,
		KillAtParentExit: spec.KillAtParentExit,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	err = h.Do(func(h *handle.Handle) error {
		emit(cliutil.Event{Job: name, Worker: spec.Worker, Message: fmt.Sprintf("started pid %d", h.PID())})
		return nil
	})
	if err != nil {
		return err
	}
	if cerr := h.Err(); cerr != nil {
		// Without reraise a captured child failure does not fail the job;
		// it is still worth a line.
		emit(cliutil.Event{Job: name, Worker: spec.Worker, Level: "warn", Message: fmt.Sprintf("worker failed (captured): %v", cerr)})
	}

	msg := fmt.Sprintf("done in %s", time.Since(started).Round(time.Millisecond))
	if result := h.Result(); result != nil {
		msg = fmt.Sprintf("%s: %v", msg, result)
	}
	emit(cliutil.Event{Job: name, Worker: spec.Worker, Message: msg})
	return nil
}

func newEmitter(out io.Writer, forceJSON bool) func(cliutil.Event) {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	if tty && !forceJSON {
		return func(ev cliutil.Event) {
			cliutil.WriteHumanEvent(out, ev)
		}
	}
	enc := json.NewEncoder(out)
	return func(ev cliutil.Event) {
		cliutil.EncodeLogEvent(enc, os.Stderr, ev)
	}
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/term"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/signalsfoundry/mission-control/command"
	"github.com/signalsfoundry/mission-control/internal/rpc"
	"github.com/signalsfoundry/mission-control/internal/tui"
	"github.com/signalsfoundry/mission-control/model"
)

func newConsoleCmd(a *app) *cobra.Command {
	var addr string
	var lineMode bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the operator command console",
		Long: `console runs operator commands against a local simulated fleet, or
against a running 'serve' instance when --addr is given. It opens a
full-screen UI when stdin is a terminal and reads one command per line
otherwise.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			runner, closeRunner, err := a.consoleRunner(ctx, addr)
			if err != nil {
				return err
			}
			defer closeRunner()

			if !lineMode && isTerminal(cmd.InOrStdin()) {
				_, err := tea.NewProgram(tui.New(ctx, runner), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return err
			}
			return runLines(ctx, runner, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", "", "gRPC address of a running server; empty runs a local simulation")
	f.BoolVar(&lineMode, "lines", false, "force line mode even on a terminal")
	f.Duration("tick", time.Second, "simulation tick interval for the local simulation")
	f.Uint64("seed", 0, "seed for local simulation randomness (0 seeds from the clock)")
	return cmd
}

// consoleRunner returns a runner for addr, or a local simulation when addr
// is empty, plus a release function.
func (a *app) consoleRunner(ctx context.Context, addr string) (tui.Runner, func(), error) {
	if addr != "" {
		conn, err := grpc.NewClient(addr,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return remoteRunner{client: rpc.NewConsoleClient(conn)}, func() { _ = conn.Close() }, nil
	}

	sim, err := newSimulation(a.cfg, a.log, simOptions{})
	if err != nil {
		return nil, nil, err
	}
	simCtx, cancel := context.WithCancel(ctx)
	done := sim.start(simCtx)
	return localRunner{interp: sim.interp, target: sim.store}, func() {
		cancel()
		<-done
	}, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// runLines executes one command per input line and prints each terminal
// record. It stops at EOF, on "exit" or "quit", or when ctx is done.
func runLines(ctx context.Context, runner tui.Runner, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		rec, err := runner.Run(ctx, line)
		if err != nil && rec.Status == "" {
			rec = model.CommandRecord{Command: line, Status: model.CommandError, Result: err.Error()}
		}
		fmt.Fprintf(out, "> %s\n[%s] %s\n", line, rec.Status, rec.Result)
	}
	return scanner.Err()
}

// localRunner drives an in-process interpreter.
type localRunner struct {
	interp *command.Interpreter
	target command.Target
}

func (r localRunner) Run(ctx context.Context, line string) (model.CommandRecord, error) {
	rec, _ := r.interp.Execute(ctx, line, r.target)
	return rec, nil
}

func (r localRunner) Suggest(_ context.Context, partial string) ([]command.Suggestion, error) {
	return r.interp.Suggest(partial), nil
}

// remoteRunner drives the Console service of a running server.
type remoteRunner struct {
	client *rpc.ConsoleClient
}

func (r remoteRunner) Run(ctx context.Context, line string) (model.CommandRecord, error) {
	out, err := r.client.Execute(ctx, wrapperspb.String(line))
	if err != nil {
		return model.CommandRecord{}, err
	}
	return rpc.RecordFromStruct(out)
}

func (r remoteRunner) Suggest(ctx context.Context, partial string) ([]command.Suggestion, error) {
	list, err := r.client.Suggest(ctx, wrapperspb.String(partial))
	if err != nil {
		return nil, err
	}
	return rpc.SuggestionsFromList(list), nil
}

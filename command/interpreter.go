package command

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

const tracerName = "github.com/signalsfoundry/mission-control/command"

// unknownKeyword labels metrics for lines that matched no command.
const unknownKeyword = "unknown"

// Recorder receives per-command metrics.
type Recorder interface {
	CommandStarted(keyword string)
	CommandFinished(keyword string, status model.CommandStatus, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) CommandStarted(string)                                     {}
func (noopRecorder) CommandFinished(string, model.CommandStatus, time.Duration) {}

// Interpreter parses operator command lines, dispatches them through a
// Registry and keeps the audit history. It holds no fleet state; every call
// is evaluated against the Target passed in.
type Interpreter struct {
	registry *Registry
	history  *History

	log      logging.Logger
	now      func() time.Time
	rand     core.RandSource
	recorder Recorder
	tracer   trace.Tracer

	latency  map[string]time.Duration
	inflight atomic.Int64

	mu        sync.RWMutex
	observers []func(model.CommandRecord)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRegistry replaces the built-in vocabulary.
func WithRegistry(r *Registry) Option {
	return func(in *Interpreter) {
		if r != nil {
			in.registry = r
		}
	}
}

// WithLogger sets the base logger. Per-request loggers on the context take
// precedence.
func WithLogger(l logging.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) {
		if now != nil {
			in.now = now
		}
	}
}

// WithRand pins the randomness used by getData and getPowerStatus.
func WithRand(r core.RandSource) Option {
	return func(in *Interpreter) {
		if r != nil {
			in.rand = r
		}
	}
}

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(in *Interpreter) {
		if r != nil {
			in.recorder = r
		}
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(in *Interpreter) {
		if t != nil {
			in.tracer = t
		}
	}
}

// WithLatency overrides the simulated latency of one command. Zero disables
// the wait.
func WithLatency(keyword string, d time.Duration) Option {
	return func(in *Interpreter) {
		in.latency[keyword] = d
	}
}

// NewInterpreter builds an interpreter over DefaultRegistry unless
// WithRegistry is given.
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{
		registry: DefaultRegistry(),
		history:  NewHistory(),
		log:      logging.Noop(),
		now:      time.Now,
		rand:     core.DefaultRand,
		recorder: noopRecorder{},
		tracer:   otel.Tracer(tracerName),
		latency:  make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// OnRecord registers fn to receive every record when it reaches a terminal
// status. Observers run on the goroutine that completed the command.
func (in *Interpreter) OnRecord(fn func(model.CommandRecord)) {
	if fn == nil {
		return
	}
	in.mu.Lock()
	in.observers = append(in.observers, fn)
	in.mu.Unlock()
}

// Execute runs line to completion and returns its terminal record. The
// returned error is the handler failure, if any; the same message is stored
// in the record.
func (in *Interpreter) Execute(ctx context.Context, line string, target Target) (model.CommandRecord, error) {
	rec := in.history.begin(line, in.now())
	return in.run(ctx, rec, target)
}

// Submit records line immediately and runs it in the background. The
// channel receives the terminal record and is then closed. Submissions may
// complete in any order.
func (in *Interpreter) Submit(ctx context.Context, line string, target Target) <-chan model.CommandRecord {
	rec := in.history.begin(line, in.now())
	done := make(chan model.CommandRecord, 1)
	go func() {
		defer close(done)
		final, _ := in.run(ctx, rec, target)
		done <- final
	}()
	return done
}

func (in *Interpreter) run(ctx context.Context, rec model.CommandRecord, target Target) (final model.CommandRecord, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.FromContext(ctx, in.log).With(logging.Uint64("record_id", rec.ID))

	keyword, args := parse(rec.Command)
	cmd, known := in.registry.Lookup(keyword)
	label := keyword
	if !known {
		label = unknownKeyword
	}

	ctx, span := in.tracer.Start(ctx, "command."+label, trace.WithAttributes(
		attribute.String("command.keyword", label),
		attribute.Int64("command.record_id", int64(rec.ID)),
	))
	defer span.End()

	in.inflight.Add(1)
	in.recorder.CommandStarted(label)
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %q panicked: %v", label, r)
		}
		in.inflight.Add(-1)

		st, result := model.CommandSuccess, final.Result
		if err != nil {
			st, result = model.CommandError, err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
			log.Warn(ctx, "command failed", logging.String("command", label), logging.Err(err))
		}
		in.recorder.CommandFinished(label, st, time.Since(started))

		done, ok := in.history.finish(rec.ID, st, result)
		if !ok {
			done = rec
			done.Status, done.Result = st, result
		}
		final = done
		in.notify(done)
	}()

	log.Debug(ctx, "dispatching command", logging.String("command", label), logging.Int("args", len(args)))

	if !known {
		final.Result = ""
		return final, errorf(ErrUnknownCommand, "Unknown command: %s. Type 'help' for available commands.", keyword)
	}

	latency := cmd.Latency
	if d, ok := in.latency[cmd.Keyword]; ok {
		latency = d
	}
	call := &Call{
		Keyword:  cmd.Keyword,
		Args:     args,
		Target:   target,
		Registry: in.registry,
		Now:      in.now(),
		Rand:     in.rand,
		Latency:  latency,
	}
	out, err := cmd.Execute(ctx, call)
	final.Result = out
	return final, err
}

func (in *Interpreter) notify(rec model.CommandRecord) {
	in.mu.RLock()
	observers := append([]func(model.CommandRecord){}, in.observers...)
	in.mu.RUnlock()
	for _, fn := range observers {
		fn(rec)
	}
}

// History returns all records in submission order.
func (in *Interpreter) History() []model.CommandRecord {
	return in.history.Records()
}

// Record returns one history entry by ID.
func (in *Interpreter) Record(id uint64) (model.CommandRecord, bool) {
	return in.history.Get(id)
}

// Clear empties the history.
func (in *Interpreter) Clear() {
	in.history.Clear()
}

// InFlight reports how many commands are currently executing.
func (in *Interpreter) InFlight() int {
	return int(in.inflight.Load())
}

// Processing reports whether any command is executing.
func (in *Interpreter) Processing() bool {
	return in.InFlight() > 0
}

// Commands returns the available keywords in registry order.
func (in *Interpreter) Commands() []string {
	return in.registry.Keywords()
}

// Suggest returns commands matching a partial input.
func (in *Interpreter) Suggest(input string) []Suggestion {
	return in.registry.Suggest(strings.TrimSpace(input))
}

// Registry exposes the interpreter's command table.
func (in *Interpreter) Registry() *Registry {
	return in.registry
}

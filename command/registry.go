package command

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/signalsfoundry/mission-control/core"
	"github.com/signalsfoundry/mission-control/model"
)

// Target is the state container commands read and mutate. Callers are
// responsible for serialising mutations; fleet.Store does so internally.
type Target interface {
	Satellites() []model.Satellite
	Missions() []model.Mission
	SelectSatellite(id string) error
	AddMission(m model.Mission) error
	SetAnalytics(a model.Analytics)
}

// CameraFocuser is implemented by targets that can steer an Earth viewer.
type CameraFocuser interface {
	FocusOn(sat model.Satellite)
}

// Call carries everything a handler needs for one invocation.
type Call struct {
	Keyword  string
	Args     []string
	Target   Target
	Registry *Registry
	Now      time.Time
	Rand     core.RandSource

	// Latency is the simulated I/O delay applied by Wait.
	Latency time.Duration
}

// Wait blocks for the call's simulated latency or until ctx is done.
func (c *Call) Wait(ctx context.Context) error {
	if c.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler executes a command and returns the human-readable result.
type Handler func(ctx context.Context, c *Call) (string, error)

// Command is one registry entry.
type Command struct {
	Keyword     string
	Syntax      string
	Description string
	// Latency is the default simulated delay; interpreters may override it.
	Latency time.Duration
	Execute Handler
}

// Example renders Syntax with sample values substituted for placeholders.
func (c Command) Example() string {
	return renderExample(c.Syntax)
}

// Registry maps keywords to commands and remembers registration order.
type Registry struct {
	order    []string
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd. Keywords are case-sensitive and must be unique.
func (r *Registry) Register(cmd Command) error {
	if cmd.Keyword == "" || cmd.Execute == nil {
		return fmt.Errorf("command %q: keyword and handler are required", cmd.Keyword)
	}
	if _, exists := r.commands[cmd.Keyword]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, cmd.Keyword)
	}
	r.commands[cmd.Keyword] = cmd
	r.order = append(r.order, cmd.Keyword)
	return nil
}

// Lookup finds the command registered under keyword.
func (r *Registry) Lookup(keyword string) (Command, bool) {
	cmd, ok := r.commands[keyword]
	return cmd, ok
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.commands[k])
	}
	return out
}

// Keywords returns the registered keywords in registration order.
func (r *Registry) Keywords() []string {
	return append([]string(nil), r.order...)
}

// Suggestion is a registry entry matched by a partial input.
type Suggestion struct {
	Command     string `json:"command"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// Suggest returns the commands whose keyword or description contains
// input, ignoring case.
func (r *Registry) Suggest(input string) []Suggestion {
	needle := strings.ToLower(input)
	var out []Suggestion
	for _, cmd := range r.Commands() {
		if strings.Contains(strings.ToLower(cmd.Keyword), needle) ||
			strings.Contains(strings.ToLower(cmd.Description), needle) {
			out = append(out, Suggestion{
				Command:     cmd.Syntax,
				Description: cmd.Description,
				Example:     cmd.Example(),
			})
		}
	}
	return out
}

var placeholderRe = regexp.MustCompile(`<(\w+)>`)

// Sample values used when rendering examples.
const (
	exampleSatellite = "ISS"
	exampleTarget    = "amazon_forest"
)

func renderExample(syntax string) string {
	return placeholderRe.ReplaceAllStringFunc(syntax, func(m string) string {
		switch param := m[1 : len(m)-1]; param {
		case "satellite":
			return exampleSatellite
		case "target":
			return exampleTarget
		default:
			return param
		}
	})
}

// parse splits a raw line into keyword and arguments on runs of
// whitespace.
func parse(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

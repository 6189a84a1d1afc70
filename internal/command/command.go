// Package command turns user input lines into address book operations.
//
// A Dispatcher matches the leading keyword of a line against its command
// table, runs the handler with the remaining whitespace-separated arguments,
// and renders the outcome, including failures, as a one-line message. It
// never reads input or writes to a terminal itself.
package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/smileynet/phonebook/internal/book"
)

// ExitWords end a session.
var ExitWords = []string{"good bye", "close", "exit", "stop"}

// Farewell is the output of an exit command.
const Farewell = "Good bye!"

// MissingArgumentError indicates a command was called with too few arguments.
type MissingArgumentError struct {
	Expected []string
}

func (e *MissingArgumentError) Error() string {
	return "Please enter " + strings.Join(e.Expected, " and ")
}

// Result is the outcome of one input line.
type Result struct {
	Command string // Matched keyword, empty for unknown input.
	Output  string
	Err     error // Handler failure already rendered into Output.
	Exit    bool  // The session should end.
}

// handler runs one command. args excludes the keyword.
type handler func(d *Dispatcher, args []string) (string, error)

type entry struct {
	keyword string
	run     handler
}

// Dispatcher runs commands against an address book.
type Dispatcher struct {
	book     *book.AddressBook
	clock    clock.Clock
	help     string
	pageSize int
	log      *zap.Logger
	title    cases.Caser
	table    []entry
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the clock used for birthday countdowns.
func WithClock(c clock.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithHelp sets the text returned by the help command.
func WithHelp(text string) Option {
	return func(d *Dispatcher) { d.help = text }
}

// WithPageSize sets the default page size of "show all".
func WithPageSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.pageSize = n
		}
	}
}

// WithLogger sets the logger for command outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates a Dispatcher over b.
func New(b *book.AddressBook, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		book:     b,
		clock:    clock.New(),
		help:     "No help available.",
		pageSize: book.DefaultPageSize,
		log:      zap.NewNop(),
		title:    cases.Title(language.Und),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.table = []entry{
		{"hello", (*Dispatcher).hello},
		{"help", (*Dispatcher).showHelp},
		{"add", (*Dispatcher).add},
		{"change", (*Dispatcher).change},
		{"phone", (*Dispatcher).phone},
		{"remove", (*Dispatcher).remove},
		{"delete", (*Dispatcher).deleteContact},
		{"birthday", (*Dispatcher).birthday},
		{"days", (*Dispatcher).days},
		{"search", (*Dispatcher).search},
		{"show all", (*Dispatcher).showAll},
	}
	return d
}

// Keywords returns the command keywords in table order.
func (d *Dispatcher) Keywords() []string {
	out := make([]string, len(d.table))
	for i, e := range d.table {
		out[i] = e.keyword
	}
	return out
}

// Parse splits line into a known keyword and its arguments.
// It returns an empty keyword when nothing matches.
func (d *Dispatcher) Parse(line string) (string, []string) {
	text := strings.TrimSpace(line)
	lower := strings.ToLower(text)
	for _, e := range d.table {
		if lower == e.keyword || strings.HasPrefix(lower, e.keyword+" ") {
			return e.keyword, strings.Fields(text[len(e.keyword):])
		}
	}
	return "", strings.Fields(text)
}

// IsExit reports whether line is one of ExitWords.
func IsExit(line string) bool {
	text := strings.Join(strings.Fields(strings.ToLower(line)), " ")
	return slices.Contains(ExitWords, text)
}

// Execute parses and runs one input line.
func (d *Dispatcher) Execute(line string) Result {
	if IsExit(line) {
		d.log.Info("session exit requested")
		return Result{Output: Farewell, Exit: true}
	}
	keyword, args := d.Parse(line)
	if keyword == "" {
		d.log.Debug("unknown command")
		return Result{Output: "Unknown command. Use help: \n" + d.help}
	}
	return d.Run(keyword, args)
}

// Run executes the command named keyword with args.
func (d *Dispatcher) Run(keyword string, args []string) Result {
	for _, e := range d.table {
		if e.keyword != keyword {
			continue
		}
		out, err := e.run(d, args)
		if err != nil {
			d.log.Warn("command failed", zap.String("command", keyword), zap.Error(err))
			return Result{Command: keyword, Output: Message(err), Err: err}
		}
		d.log.Info("command done", zap.String("command", keyword), zap.Int("args", len(args)))
		return Result{Command: keyword, Output: out}
	}
	return Result{Output: fmt.Sprintf("Unknown command %q. Use help.", keyword)}
}

// displayName title-cases a name the way records are created.
func (d *Dispatcher) displayName(raw string) string {
	return d.title.String(raw)
}

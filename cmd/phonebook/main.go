package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/smileynet/phonebook"
	"github.com/smileynet/phonebook/internal/book"
	"github.com/smileynet/phonebook/internal/command"
	"github.com/smileynet/phonebook/internal/config"
	"github.com/smileynet/phonebook/internal/console"
	"github.com/smileynet/phonebook/internal/logging"
	"github.com/smileynet/phonebook/internal/store"
	"github.com/smileynet/phonebook/internal/store/sqlite"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// localDir holds the project config and local resource overrides.
const localDir = ".phonebook"

// Globals are flags shared by every command.
type Globals struct {
	Book   string `help:"Address book file (overrides config)." placeholder:"PATH"`
	Format string `help:"Book format: auto, json, yaml or sqlite (overrides config)." placeholder:"FORMAT"`
	Config string `help:"Extra config file layered over user and project config." placeholder:"PATH"`
}

// CLI is the top-level command structure for phonebook.
type CLI struct {
	Globals

	Version  kong.VersionFlag `help:"Show version." short:"V"`
	Repl     ReplCmd          `cmd:"" default:"withargs" help:"Start the interactive console (default)."`
	Add      AddCmd           `cmd:"" help:"Add a contact, or a phone to an existing contact."`
	Change   ChangeCmd        `cmd:"" help:"Replace one of a contact's phones."`
	Phone    PhoneCmd         `cmd:"" help:"Show a contact's phones."`
	Remove   RemoveCmd        `cmd:"" help:"Remove a phone from a contact."`
	Delete   DeleteCmd        `cmd:"" help:"Delete a contact."`
	Birthday BirthdayCmd      `cmd:"" help:"Set a contact's birthday (DD-MM-YYYY, DD.MM.YYYY or DD/MM/YYYY)."`
	Days     DaysCmd          `cmd:"" help:"Show days until a contact's next birthday."`
	Search   SearchCmd        `cmd:"" help:"Find contacts by name or phone fragment."`
	Show     ShowCmd          `cmd:"" help:"List all contacts page by page."`
}

// ReplCmd runs the interactive console.
type ReplCmd struct {
	NoTUI bool `help:"Force the plain line console even if stdout is a TTY." default:"false"`
}

// Run executes the repl command.
func (r *ReplCmd) Run(g *Globals) error {
	a, err := newApp(g)
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return a.session(ctx, func(d *command.Dispatcher) error {
		c := console.NewConsole(console.Options{
			NoTUI:    r.NoTUI || a.cfg.Display.NoTUI,
			Executor: d,
			Keywords: d.Keywords(),
			Logger:   a.log,
		})
		return c.Run(ctx)
	})
}

// AddCmd adds a contact or a phone.
type AddCmd struct {
	Name  string `arg:"" help:"Contact name."`
	Phone string `arg:"" optional:"" help:"Phone number (10 digits; + ( ) - allowed)."`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "add", c.Name, c.Phone)
}

// ChangeCmd replaces a phone.
type ChangeCmd struct {
	Name string `arg:"" help:"Contact name."`
	Old  string `arg:"" help:"Phone to replace."`
	New  string `arg:"" help:"Replacement phone."`
}

// Run executes the change command.
func (c *ChangeCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "change", c.Name, c.Old, c.New)
}

// PhoneCmd shows phones.
type PhoneCmd struct {
	Name string `arg:"" help:"Contact name."`
}

// Run executes the phone command.
func (c *PhoneCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "phone", c.Name)
}

// RemoveCmd removes a phone.
type RemoveCmd struct {
	Name  string `arg:"" help:"Contact name."`
	Phone string `arg:"" help:"Phone to remove."`
}

// Run executes the remove command.
func (c *RemoveCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "remove", c.Name, c.Phone)
}

// DeleteCmd deletes a contact.
type DeleteCmd struct {
	Name string `arg:"" help:"Contact name."`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "delete", c.Name)
}

// BirthdayCmd sets a birthday.
type BirthdayCmd struct {
	Name string `arg:"" help:"Contact name."`
	Date string `arg:"" help:"Birthday date."`
}

// Run executes the birthday command.
func (c *BirthdayCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "birthday", c.Name, c.Date)
}

// DaysCmd shows the birthday countdown.
type DaysCmd struct {
	Name string `arg:"" help:"Contact name."`
}

// Run executes the days command.
func (c *DaysCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "days", c.Name)
}

// SearchCmd finds contacts.
type SearchCmd struct {
	Term []string `arg:"" help:"Name or phone fragment."`
}

// Run executes the search command.
func (c *SearchCmd) Run(g *Globals) error {
	return runCommand(os.Stdout, g, "search", strings.Join(c.Term, " "))
}

// ShowCmd lists contacts.
type ShowCmd struct {
	PageSize int `arg:"" optional:"" help:"Contacts per page (default from config)."`
}

// Run executes the show command.
func (c *ShowCmd) Run(g *Globals) error {
	size := ""
	if c.PageSize != 0 {
		size = strconv.Itoa(c.PageSize)
	}
	return runCommand(os.Stdout, g, "show all", size)
}

// commandError marks a failure already reported to the user.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// runCommand runs one dispatcher command inside a book session and prints its output.
// Empty trailing args are dropped so optional arguments stay optional.
func runCommand(w io.Writer, g *Globals, keyword string, args ...string) error {
	a, err := newApp(g)
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	defer a.close()

	for len(args) > 0 && args[len(args)-1] == "" {
		args = args[:len(args)-1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return a.session(ctx, func(d *command.Dispatcher) error {
		res := d.Run(keyword, args)
		_, _ = fmt.Fprintln(w, res.Output)
		if res.Err != nil {
			return &commandError{err: res.Err}
		}
		return nil
	})
}

// app holds the wiring shared by every command.
type app struct {
	cfg     *config.Config
	store   book.Store
	log     *zap.Logger
	help    string
	closers []func() error
}

// newApp loads config and opens the logger and the book store.
func newApp(g *Globals) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, closers: []func() error{closeLog}}

	st, closeStore, err := openStore(cfg.Book, log)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.store = st
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	a.help, err = phonebook.HelpText(localDir)
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("loading help: %w", err)
	}
	return a, nil
}

// session runs fn against a dispatcher over the loaded book; the book is
// saved when fn returns.
func (a *app) session(ctx context.Context, fn func(*command.Dispatcher) error) error {
	return book.Session(ctx, a.store, func(b *book.AddressBook) error {
		d := command.New(b,
			command.WithHelp(a.help),
			command.WithPageSize(a.cfg.Display.PageSize),
			command.WithLogger(a.log),
		)
		return fn(d)
	}, book.WithLogger(a.log))
}

// close releases the store and then the logger.
func (a *app) close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	return err
}

// loadConfig loads layered config from user, project and --config paths,
// then applies env and flag overrides.
func loadConfig(g *Globals) (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/phonebook/config.yaml"),
		filepath.Join(localDir, "config.yaml"),
	}
	if g.Config != "" {
		paths = append(paths, g.Config)
	}
	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.Book != "" {
		cfg.Book.Path = g.Book
	}
	if g.Format != "" {
		cfg.Book.Format = g.Format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore opens the store for cfg.Format. The returned close func may be nil.
func openStore(cfg config.Book, log *zap.Logger) (book.Store, func() error, error) {
	if cfg.Format == "sqlite" {
		s, err := sqlite.Open(cfg.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	s, err := store.NewFileStore(cfg.Path, store.Format(cfg.Format), log)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitCommand = 1
	exitSetup   = 2
	exitSave    = 3
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *book.SaveError
	if errors.As(err, &se) {
		return exitSave
	}
	var ce *commandError
	if errors.As(err, &ce) {
		return exitCommand
	}
	return exitSetup
}

// shouldReport reports whether err still needs printing to stderr.
// Command failures were already shown as part of the command output.
func shouldReport(err error) bool {
	for _, e := range multierr.Errors(err) {
		var ce *commandError
		if !errors.As(e, &ce) {
			return true
		}
	}
	return false
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("phonebook"),
		kong.Description("A personal contact directory."),
		kong.Vars{"version": version + " " + commit + " " + date},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	if err != nil {
		if shouldReport(err) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(exitCode(err))
	}
}

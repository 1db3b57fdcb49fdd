package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/steveyegge/toolkit/internal/format"
	"github.com/steveyegge/toolkit/internal/storage"
	"github.com/steveyegge/toolkit/internal/types"
	"go.uber.org/zap"
)

// sessionKey is the converter state slot the shell resumes from
const sessionKey = "repl-session"

// REPL is an interactive shell around the format converter
type REPL struct {
	store        storage.Storage
	logger       *zap.Logger
	rl           *readline.Instance
	ctx          context.Context
	out          io.Writer
	readLine     func() (string, error)
	commands     map[string]CommandHandler
	historyLimit int
	historyFile  string

	session session
	output  string
}

// session is the part of the shell that survives restarts
type session struct {
	Content string         `json:"content"`
	Source  string         `json:"source"`
	From    format.Format  `json:"from"`
	Options format.Options `json:"options"`
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	// Store keeps conversion history and the resumable session. Optional.
	Store  storage.Storage
	Logger *zap.Logger

	// Options are the starting converter options
	Options format.Options

	// HistoryLimit caps stored conversion records; 0 keeps everything
	HistoryLimit int

	// HistoryFile persists line history between runs when set
	HistoryFile string

	// Out receives all output. Default: os.Stdout
	Out io.Writer
}

// New creates a new REPL instance
func New(cfg *Config) (*REPL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	opts := cfg.Options
	if opts.RootElement == "" && opts.Indent == 0 {
		opts = format.DefaultOptions()
	}

	r := &REPL{
		store:        cfg.Store,
		logger:       logger,
		ctx:          context.Background(),
		out:          out,
		commands:     make(map[string]CommandHandler),
		historyLimit: cfg.HistoryLimit,
		historyFile:  cfg.HistoryFile,
		session: session{
			From:    format.FormatUnknown,
			Options: opts,
		},
	}

	r.registerCommands()

	return r, nil
}

// Run starts the REPL loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("tk> "),
		HistoryFile:       r.historyFile,
		AutoComplete:      r.completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdout:            r.out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	r.rl = rl
	r.readLine = rl.Readline

	r.restoreSession()
	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				r.saveSession()
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// processInput processes a single line of input
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(r.out, "%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), command)
	return nil
}

// registerCommands registers all built-in commands
func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit

	r.commands["load"] = r.cmdLoad
	r.commands["paste"] = r.cmdPaste
	r.commands["show"] = r.cmdShow
	r.commands["clear"] = r.cmdClear
	r.commands["detect"] = r.cmdDetect
	r.commands["from"] = r.cmdFrom
	r.commands["convert"] = r.cmdConvert
	r.commands["validate"] = r.cmdValidate
	r.commands["fmt"] = r.cmdFmt
	r.commands["select"] = r.cmdSelect
	r.commands["set"] = r.cmdSet
	r.commands["use"] = r.cmdUse
	r.commands["write"] = r.cmdWrite
	r.commands["history"] = r.cmdHistory
}

// printWelcome prints the welcome message
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n", cyan("tk format converter"))
	fmt.Fprintln(r.out, "JSON, YAML, XML, CSV and TOML")
	fmt.Fprintln(r.out)
	if r.session.Content != "" {
		fmt.Fprintf(r.out, "Resumed %s (%d bytes)\n", r.sourceName(), len(r.session.Content))
	}
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'exit' to quit")
	fmt.Fprintln(r.out)
}

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"load FILE", "Read a file into the buffer"},
		{"paste", "Type or paste input, end with a line containing only '.'"},
		{"show [output]", "Print the buffer or the last output"},
		{"clear", "Empty the buffer"},
		{"detect", "Detect the buffer's format"},
		{"from FORMAT|auto", "Set the buffer's format"},
		{"convert FORMAT [FILE]", "Convert the buffer, optionally writing FILE"},
		{"validate", "Check that the buffer parses"},
		{"fmt [minify]", "Pretty-print or minify in the same format"},
		{"select [PATH]", "Extract a sub-document before converting (users.0.name)"},
		{"set KEY VALUE", "indent N, delimiter C, root NAME, sort on|off, minify on|off"},
		{"use", "Replace the buffer with the last output"},
		{"write FILE", "Save the last output"},
		{"history [N]", "Show recent conversions"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the REPL"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(r.out, "  %-24s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(r.out)
	return nil
}

// cmdExit exits the REPL
func (r *REPL) cmdExit(args []string) error {
	r.saveSession()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "\n%s Goodbye!\n", green("✓"))
	if r.rl != nil {
		r.rl.Close()
	}
	return io.EOF
}

// restoreSession reloads the buffer left by the previous run
func (r *REPL) restoreSession() {
	if r.store == nil {
		return
	}
	var s session
	err := r.store.LoadState(r.ctx, types.ToolConverter, sessionKey, &s)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("failed to restore session", zap.Error(err))
		}
		return
	}
	if s.From == "" {
		s.From = format.FormatUnknown
	}
	r.session = s
}

// saveSession stores the buffer and options for the next run
func (r *REPL) saveSession() {
	if r.store == nil {
		return
	}
	if err := r.store.SaveState(r.ctx, types.ToolConverter, sessionKey, r.session); err != nil {
		r.logger.Warn("failed to save session", zap.Error(err))
	}
}

// Package repl implements the interactive pivot shell.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/sergev/pivot/ast"
	"github.com/sergev/pivot/config"
	"github.com/sergev/pivot/frontend"
	"github.com/sergev/pivot/interp"
	"github.com/sergev/pivot/logging"
	"github.com/sergev/pivot/tree"
)

// Options configures a shell session.
type Options struct {
	Prompt       string
	Continuation string
	HistoryPath  string
	Mode         string // config.ModeEval, config.ModeAST or config.ModeTree
	Strategy     frontend.Strategy
	Logger       *slog.Logger
	Out          io.Writer
	Err          io.Writer
}

// OptionsFromConfig fills Options from the [repl] and [parser] sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Prompt:       cfg.REPL.Prompt,
		Continuation: cfg.REPL.Continuation,
		HistoryPath:  cfg.REPL.HistoryFile,
		Mode:         cfg.REPL.Mode,
		Strategy:     cfg.Strategy(),
	}
}

type styles struct {
	result lipgloss.Style
	err    lipgloss.Style
}

// Session holds the interpreter state shared by successive inputs.
type Session struct {
	opts   Options
	out    *lineWriter
	errOut io.Writer
	eval   *interp.Interpreter
	log    *slog.Logger
	styles styles
}

// New creates a session. Unset options take the configuration defaults.
func New(opts Options) *Session {
	def := config.Default()
	if opts.Prompt == "" {
		opts.Prompt = def.REPL.Prompt
	}
	if opts.Continuation == "" {
		opts.Continuation = def.REPL.Continuation
	}
	if opts.Mode == "" {
		opts.Mode = config.ModeEval
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	out := &lineWriter{w: opts.Out}
	outRenderer := lipgloss.NewRenderer(opts.Out)
	errRenderer := lipgloss.NewRenderer(opts.Err)
	return &Session{
		opts:   opts,
		out:    out,
		errOut: opts.Err,
		eval:   interp.New(out),
		log:    opts.Logger,
		styles: styles{
			result: outRenderer.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
			err:    errRenderer.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		},
	}
}

// Run starts an interactive session when in is a terminal and a buffered
// one otherwise.
func (s *Session) Run(in io.Reader) error {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return s.RunInteractive()
	}
	return s.RunBuffered(in)
}

// RunBuffered reads input line by line from r without line editing.
func (s *Session) RunBuffered(r io.Reader) error {
	reader := bufio.NewReader(r)
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		atEOF := errors.Is(err, io.EOF)
		if err != nil && !atEOF {
			return fmt.Errorf("read error: %w", err)
		}
		if buffer.Len() == 0 {
			switch strings.TrimSpace(line) {
			case "exit":
				return nil
			case "clear":
				s.clearScreen()
				if atEOF {
					return nil
				}
				continue
			}
		}
		buffer.WriteString(line)
		if s.process(buffer.String(), atEOF) {
			continue
		}
		buffer.Reset()
		if atEOF {
			return nil
		}
	}
}

// RunInteractive runs the line-editing shell with persistent history.
func (s *Session) RunInteractive() error {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	if s.opts.HistoryPath != "" {
		if f, err := os.Open(s.opts.HistoryPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(s.opts.HistoryPath); err == nil {
				state.WriteHistory(f)
				f.Close()
			} else {
				s.log.Warn("cannot save history", "path", s.opts.HistoryPath, "error", err)
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := s.opts.Prompt
		if buffer.Len() > 0 {
			prompt = s.opts.Continuation
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(s.out)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(s.out)
				return nil
			default:
				return fmt.Errorf("read error: %w", err)
			}
		}
		if buffer.Len() == 0 {
			switch strings.TrimSpace(input) {
			case "exit":
				return nil
			case "clear":
				s.clearScreen()
				continue
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		if s.process(src, false) {
			continue
		}
		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
	}
}

// process handles one complete or partial input and reports whether more
// lines are needed.
func (s *Session) process(src string, atEOF bool) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}

	if s.opts.Mode == config.ModeTree {
		nodes, err := tree.Parse(src)
		if err != nil {
			if tree.IsIncomplete(err) && !atEOF {
				return true
			}
			s.report("parse error", err)
			return false
		}
		parts := make([]string, len(nodes))
		for i, n := range nodes {
			parts[i] = n.String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, " "))
		return false
	}

	prog, err := frontend.Parse(src, s.opts.Strategy)
	if err != nil {
		if frontend.IsIncomplete(err) && !atEOF {
			return true
		}
		s.report("parse error", err)
		return false
	}
	s.log.Debug("parsed input", "strategy", s.opts.Strategy, "statements", len(prog.Stmts))

	if s.opts.Mode == config.ModeAST {
		for _, stmt := range prog.Stmts {
			fmt.Fprintln(s.out, ast.Sprint(stmt))
		}
		return false
	}

	val, err := s.eval.Run(prog)
	s.out.finishLine()
	if err != nil {
		s.report("error", err)
		return false
	}
	if val.Type != interp.TypeNil {
		fmt.Fprintln(s.out, s.styles.result.Render(val.String()))
	}
	return false
}

func (s *Session) report(prefix string, err error) {
	fmt.Fprintln(s.errOut, s.styles.err.Render(fmt.Sprintf("%s: %v", prefix, err)))
}

func (s *Session) clearScreen() {
	io.WriteString(s.opts.Out, "\033[H\033[2J")
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// lineWriter remembers whether the last byte written ended a line, so that
// assert marks are followed by a newline before the next prompt.
type lineWriter struct {
	w    io.Writer
	open bool
}

func (l *lineWriter) Write(p []byte) (int, error) {
	n, err := l.w.Write(p)
	if n > 0 {
		l.open = p[n-1] != '\n'
	}
	return n, err
}

func (l *lineWriter) finishLine() {
	if l.open {
		l.Write([]byte{'\n'})
	}
}

// Package core implements the interactive shell: the read-eval loop, prompt
// rendering and the wiring between line input, the interpreter and the
// audit log.
package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/josephlewis42/gosh/core/config"
	"github.com/josephlewis42/gosh/core/interp"
	"github.com/josephlewis42/gosh/core/logger"
)

const (
	EnvHome = "HOME"
	EnvPath = "PATH"
	EnvUser = "USER"

	// DefaultPrompt is used when the configuration doesn't set one.
	DefaultPrompt = `[\u@\h \W] GOSH$ `

	// FallbackPrompt is shown when the user, host or working directory
	// can't be resolved.
	FallbackPrompt = "SHELL$ "
)

// Shell is one interactive session on the controlling terminal.
type Shell struct {
	config  *config.Configuration
	rl      *readline.Instance
	interp  *interp.Interpreter
	audit   *logger.SessionLogger
	log     logrus.FieldLogger
	toClose listCloser

	getenv   func(string) string
	hostname func() (string, error)
	getwd    func() (string, error)
	geteuid  func() int
}

// NewShell builds a session reading from the process's standard streams.
func NewShell(configuration *config.Configuration, log logrus.FieldLogger) (*Shell, error) {
	var toClose listCloser

	auditFd, err := configuration.OpenAuditLog()
	if err != nil {
		return nil, err
	}
	toClose = append(toClose, auditFd)
	audit := logger.NewJSONLinesRecorder(auditFd).NewSession()

	cfg := &readline.Config{
		Stdin:       readline.NewCancelableStdin(os.Stdin),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		HistoryFile: configuration.HistoryPath(),
	}
	if err := cfg.Init(); err != nil {
		toClose.Close()
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		toClose.Close()
		return nil, err
	}
	toClose = append(toClose, rl)

	shell := &Shell{
		config: configuration,
		rl:     rl,
		audit:  audit,
		log:    log,
		interp: interp.New(interp.Options{
			Limits: interp.Limits{
				MaxArgs:       configuration.MaxArgs,
				MaxLineLength: configuration.MaxLineLength,
			},
			Fs:     afero.NewOsFs(),
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
			Log:    log,
			Audit:  audit,
		}),
		toClose:  toClose,
		getenv:   os.Getenv,
		hostname: os.Hostname,
		getwd:    os.Getwd,
		geteuid:  os.Geteuid,
	}

	return shell, nil
}

// Prompt renders the configured prompt template. \u expands to the user,
// \h the hostname, \w the working directory, \W its basename and \$ to "$"
// ("#" for root).
func (s *Shell) Prompt() string {
	prompt := s.config.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	user := s.getenv(EnvUser)
	host, hostErr := s.hostname()
	wd, wdErr := s.getwd()
	if user == "" || hostErr != nil || wdErr != nil {
		return FallbackPrompt
	}

	if home := s.getenv(EnvHome); home != "" && strings.HasPrefix(wd, home) {
		wd = "~" + strings.TrimPrefix(wd, home)
	}

	dollar := "$"
	if s.geteuid() == 0 {
		dollar = "#"
	}

	prompt = strings.ReplaceAll(prompt, `\u`, user)
	prompt = strings.ReplaceAll(prompt, `\h`, host)
	prompt = strings.ReplaceAll(prompt, `\W`, filepath.Base(wd))
	prompt = strings.ReplaceAll(prompt, `\w`, wd)
	prompt = strings.ReplaceAll(prompt, `\$`, dollar)

	return prompt
}

// Run executes the read-eval loop until an exit request or end of input.
func (s *Shell) Run() error {
	s.printBanner()

	for {
		s.rl.SetPrompt(s.Prompt())
		line, err := s.rl.Readline()

		switch {
		case err == io.EOF:
			// Ctrl-D or closed input.
			s.printExitBanner()
			return nil

		case err == readline.ErrInterrupt:
			continue // Ctrl-C discards the line.

		case err != nil:
			s.log.WithError(err).Error("readline failed")
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			s.printExitBanner()
			return nil
		}

		if err := s.audit.RecordLine(line); err != nil {
			s.log.WithError(err).Warn("audit log write failed")
		}

		// Parse and system errors are already reported to stderr and
		// never end the session.
		_ = s.interp.Execute(line)
	}
}

func (s *Shell) printBanner() {
	if s.config.Motd == "" {
		return
	}
	color.New(color.FgCyan).Fprintln(s.rl, s.config.Motd)
}

func (s *Shell) printExitBanner() {
	fmt.Fprintln(s.rl)
	fmt.Fprintln(s.rl, "...exiting gosh")
}

func (s *Shell) Close() error {
	return s.toClose.Close()
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

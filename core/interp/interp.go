// Package interp parses a line of shell input into pipeline stages and
// redirections and runs the programs it names as child processes.
//
// The scanner is single-pass: stages are launched as their closing operator
// is consumed, not collected into a plan first. Descriptor ownership rules
// live in the launcher; the scanner itself is a pure state machine.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/josephlewis42/gosh/core/logger"
)

// Options configure an Interpreter.
type Options struct {
	// Limits bound one line of input. Zero fields take defaults.
	Limits Limits

	// Fs is used for redirection targets and PATH lookups.
	// Defaults to the host filesystem.
	Fs afero.Fs

	// Stdin, Stdout and Stderr are the standard streams children inherit
	// when no redirection or pipe replaces them.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Log receives diagnostics. Defaults to a discarding logger.
	Log logrus.FieldLogger

	// Audit optionally records spawned stages.
	Audit *logger.SessionLogger

	// Getenv resolves environment variables for PATH search.
	// Defaults to os.Getenv.
	Getenv func(string) string
}

// Interpreter scans lines of input and executes the processes they describe.
// It is not safe for concurrent use; the shell drives it one line at a time.
type Interpreter struct {
	limits Limits
	spawn  launcher
	stderr io.Writer
}

// New creates an Interpreter that spawns real processes.
func New(opts Options) *Interpreter {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		opts.Log = discard
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	return newInterpreter(&procLauncher{
		fs:     opts.Fs,
		stdin:  opts.Stdin,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		log:    opts.Log,
		audit:  opts.Audit,
		getenv: opts.Getenv,
	}, opts.Limits, opts.Stderr)
}

func newInterpreter(spawn launcher, limits Limits, stderr io.Writer) *Interpreter {
	return &Interpreter{
		limits: limits.withDefaults(),
		spawn:  spawn,
		stderr: stderr,
	}
}

// Execute scans one line and runs the processes it describes. Parse errors
// are reported to stderr and returned; the caller decides whether the
// session continues (the interactive loop always does). Stages launched
// before an error on the same line have already run and are not undone.
func (in *Interpreter) Execute(line string) (err error) {
	if len(line) > in.limits.MaxLineLength {
		return in.reportParse(ErrLineTooLong)
	}

	// Pipeline stages launched mid-scan must be waited on and their
	// descriptors released even when the scan aborts partway through.
	defer func() {
		if ferr := in.spawn.Finish(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	st := scanState{}
	for _, tok := range tokenize(line) {
		next, act, serr := step(st, tok, in.limits)
		if serr != nil {
			return in.reportParse(serr)
		}
		if derr := in.dispatch(act); derr != nil {
			return derr
		}
		st = next
	}

	act, serr := finish(st)
	if serr != nil {
		return in.reportParse(serr)
	}
	return in.dispatch(act)
}

func (in *Interpreter) reportParse(err error) error {
	fmt.Fprintf(in.stderr, "gosh: %v\n", err)
	return err
}

func (in *Interpreter) dispatch(act action) error {
	switch act.kind {
	case actNone:
		return nil
	case actSingle:
		return in.spawn.Single(act.argv, act.input, act.output, act.appendOut)
	case actDual:
		return in.spawn.Dual(act.argv, act.input, act.output, act.appendOut)
	case actFirst:
		return in.spawn.First(act.argv, act.input)
	case actInterior:
		return in.spawn.Interior(act.argv)
	case actFinal:
		return in.spawn.Final(act.argv, act.output, act.appendOut)
	case actTouch:
		return in.spawn.Touch(act.output, act.appendOut)
	default:
		return fmt.Errorf("unhandled action kind %d", act.kind)
	}
}

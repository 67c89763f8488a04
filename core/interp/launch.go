package interp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/josephlewis42/gosh/core/logger"
)

// launcher turns launch actions into child processes. The production
// implementation is procLauncher; tests substitute a recording fake.
type launcher interface {
	Single(argv []string, input, output string, appendOut bool) error
	Dual(argv []string, input, output string, appendOut bool) error
	First(argv []string, input string) error
	Interior(argv []string) error
	Final(argv []string, output string, appendOut bool) error
	Touch(output string, appendOut bool) error
	Finish() error
}

// procLauncher spawns real child processes wired per stage position.
//
// Pipeline stages are started as the scanner reaches them but waited on
// together in Finish, so an upstream stage that outgrows the pipe buffer
// cannot deadlock against a reader that doesn't exist yet. Non-pipeline
// commands are waited on immediately.
type procLauncher struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    logrus.FieldLogger
	audit  *logger.SessionLogger
	getenv func(string) string

	// prev holds the read end feeding the next stage. Its write end is
	// closed in the parent as soon as the producing child is started.
	prev    *pipePair
	running []*exec.Cmd
}

// command resolves argv[0] and builds the child process. A command that
// cannot be resolved is reported and yields a nil child; the caller still
// wires descriptors so downstream stages see end-of-file, matching what a
// failed exec in the child would produce.
func (l *procLauncher) command(argv []string) *exec.Cmd {
	path, err := LookPath(l.fs, l.getenv("PATH"), argv[0])
	switch {
	case errors.Is(err, ErrNotFound):
		fmt.Fprintf(l.stderr, "%s: command not found\n", argv[0])
		return nil
	case errors.Is(err, fs.ErrPermission) || err != nil:
		fmt.Fprintf(l.stderr, "%s: permission denied\n", argv[0])
		return nil
	}

	return &exec.Cmd{
		Path:   path,
		Args:   argv,
		Stdin:  l.stdin,
		Stdout: l.stdout,
		Stderr: l.stderr,
	}
}

// start launches the child, reporting failure with the program name. A nil
// child is accepted and ignored so callers can thread lookup failures
// through unconditionally.
func (l *procLauncher) start(cmd *exec.Cmd) *exec.Cmd {
	if cmd == nil {
		return nil
	}
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(l.stderr, "%s: %v\n", cmd.Args[0], err)
		return nil
	}
	if err := l.audit.RecordStage(cmd.Path, cmd.Args); err != nil {
		l.log.WithError(err).Warn("audit log write failed")
	}
	l.log.WithFields(logrus.Fields{"path": cmd.Path, "pid": cmd.Process.Pid}).Debug("stage started")
	return cmd
}

// wait blocks until the child exits. Exit statuses are logged but never
// propagated; a failing program doesn't fail the shell.
func (l *procLauncher) wait(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	err := cmd.Wait()
	entry := l.log.WithField("path", cmd.Path)
	if cmd.ProcessState != nil {
		entry = entry.WithField("code", cmd.ProcessState.ExitCode())
	}
	if err != nil {
		entry.WithError(err).Debug("stage exited")
		return
	}
	entry.Debug("stage exited")
}

func (l *procLauncher) openInput(path string) (afero.File, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		fmt.Fprintf(l.stderr, "gosh: %v\n", err)
		return nil, err
	}
	return f, nil
}

func (l *procLauncher) openOutput(path string, appendOut bool) (afero.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if appendOut {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := l.fs.OpenFile(path, flags, 0666)
	if err != nil {
		fmt.Fprintf(l.stderr, "gosh: %v\n", err)
		return nil, err
	}
	return f, nil
}

// Single runs one command with at most one redirected standard stream and
// waits for it.
func (l *procLauncher) Single(argv []string, input, output string, appendOut bool) error {
	return l.runOnce(argv, input, output, appendOut)
}

// Dual runs one command with stdin and stdout both redirected and waits
// for it.
func (l *procLauncher) Dual(argv []string, input, output string, appendOut bool) error {
	return l.runOnce(argv, input, output, appendOut)
}

func (l *procLauncher) runOnce(argv []string, input, output string, appendOut bool) error {
	cmd := l.command(argv)
	if cmd == nil {
		return nil
	}

	if input != "" {
		f, err := l.openInput(input)
		if err != nil {
			return err
		}
		defer f.Close()
		cmd.Stdin = f
	}
	if output != "" {
		f, err := l.openOutput(output, appendOut)
		if err != nil {
			return err
		}
		defer f.Close()
		cmd.Stdout = f
	}

	l.wait(l.start(cmd))
	return nil
}

// First starts the first pipeline stage. The new pipe's read end stays live
// in the parent for the stage that follows.
func (l *procLauncher) First(argv []string, input string) error {
	pair, err := newPipePair()
	if err != nil {
		fmt.Fprintf(l.stderr, "gosh: %v\n", err)
		return err
	}

	cmd := l.command(argv)
	var in afero.File
	if cmd != nil && input != "" {
		if in, err = l.openInput(input); err != nil {
			cmd = nil // stage dies; downstream reads end-of-file
		} else {
			cmd.Stdin = in
		}
	}
	if cmd != nil {
		cmd.Stdout = pair.w
	}

	if started := l.start(cmd); started != nil {
		l.running = append(l.running, started)
	}
	pair.closeWrite()
	if in != nil {
		in.Close()
	}
	l.prev = pair
	return nil
}

// Interior starts a middle pipeline stage, consuming the previous pipe and
// leaving a new one live.
func (l *procLauncher) Interior(argv []string) error {
	if l.prev == nil {
		return errors.New("interior stage without a live pipe")
	}

	next, err := newPipePair()
	if err != nil {
		fmt.Fprintf(l.stderr, "gosh: %v\n", err)
		return err
	}

	cmd := l.command(argv)
	if cmd != nil {
		cmd.Stdin = l.prev.r
		cmd.Stdout = next.w
	}

	if started := l.start(cmd); started != nil {
		l.running = append(l.running, started)
	}
	l.prev.closeRead()
	next.closeWrite()
	l.prev = next
	return nil
}

// Final starts the last pipeline stage, consuming the previous pipe.
func (l *procLauncher) Final(argv []string, output string, appendOut bool) error {
	if l.prev == nil {
		return errors.New("final stage without a live pipe")
	}

	cmd := l.command(argv)
	var out afero.File
	if cmd != nil && output != "" {
		var err error
		if out, err = l.openOutput(output, appendOut); err != nil {
			cmd = nil
		} else {
			cmd.Stdout = out
		}
	}
	if cmd != nil {
		cmd.Stdin = l.prev.r
	}

	if started := l.start(cmd); started != nil {
		l.running = append(l.running, started)
	}
	l.prev.closeRead()
	l.prev = nil
	if out != nil {
		out.Close()
	}
	return nil
}

// Touch opens and immediately closes a superseded output target, preserving
// the create/truncate/append side effect of redirections that lost to a
// later one.
func (l *procLauncher) Touch(output string, appendOut bool) error {
	f, err := l.openOutput(output, appendOut)
	if err != nil {
		// Last redirection wins; a failed superseded target doesn't
		// abort the line.
		return nil
	}
	f.Close()
	return nil
}

// Finish waits for every pipeline stage started on this line and releases
// any descriptor still held by the parent, including after aborted scans.
func (l *procLauncher) Finish() error {
	if l.prev != nil {
		l.prev.closeBoth()
		l.prev = nil
	}
	for _, cmd := range l.running {
		l.wait(cmd)
	}
	l.running = nil
	return nil
}

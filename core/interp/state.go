package interp

import "errors"

// Parse errors abort the current line without spawning further processes.
var (
	ErrLineTooLong       = errors.New("line too long")
	ErrTooManyArgs       = errors.New("too many arguments")
	ErrInputAfterOther   = errors.New("input must be redirected before any other operator")
	ErrMissingInputFile  = errors.New("no file for input redirection")
	ErrMissingOutputFile = errors.New("no file for output redirection")
	ErrMissingIOFile     = errors.New("no file for i/o redirection")
	ErrMissingProgram    = errors.New("missing program")
	ErrMissingPipeTo     = errors.New("missing program to pipe to")
	ErrOutputBeforePipe  = errors.New("cannot redirect output before piping")
)

// mode records how the scanner interprets upcoming plain tokens: as command
// arguments, as a file name for a redirection, or as the next pipeline stage.
type mode int

const (
	modeNone mode = iota
	modeInput
	modeOutputTrunc
	modeOutputAppend
	modePiping
)

func (m mode) output() bool {
	return m == modeOutputTrunc || m == modeOutputAppend
}

func (m mode) appendOut() bool {
	return m == modeOutputAppend
}

type actionKind int

const (
	actNone actionKind = iota

	// actSingle runs one command with at most one redirected stream and
	// waits for it.
	actSingle

	// actDual runs one command with both stdin and stdout redirected.
	actDual

	// actFirst starts the first pipeline stage: stdout into a fresh pipe,
	// stdin inherited or redirected from a file.
	actFirst

	// actInterior starts a middle pipeline stage: stdin from the previous
	// pipe, stdout into a new one.
	actInterior

	// actFinal starts the last pipeline stage: stdin from the previous
	// pipe, stdout inherited or redirected to a file.
	actFinal

	// actTouch opens and immediately closes a superseded output target so
	// "cmd > a > b" still creates and truncates a.
	actTouch
)

// action is the zero-or-one launch produced by a scanner transition.
type action struct {
	kind      actionKind
	argv      []string
	input     string
	output    string
	appendOut bool
}

// scanState is the scanner's progress through one line.
//
// pending holds an argument vector set aside when an operator changed what
// upcoming tokens mean; it is consumed exactly once by a later launch.
// outBeforePipe records an output redirection seen while piping, which must
// be deferred and applied to the pipeline's final stage.
type scanState struct {
	mode          mode
	argv          []string
	pending       []string
	inputFile     string
	outBeforePipe bool
}

// step is the scanner's transition function. It consumes one token and
// returns the successor state and at most one launch action. It never
// mutates state shared with previous steps.
func step(st scanState, tok string, lim Limits) (scanState, action, error) {
	switch tok {
	case opInput:
		// Input redirection is only legal before any other operator and
		// at most once per line.
		if st.mode != modeNone {
			return st, action{}, ErrInputAfterOther
		}
		st.pending = st.argv
		st.argv = nil
		st.mode = modeInput
		return st, action{}, nil

	case opOutput, opOutputAppend:
		next := modeOutputTrunc
		if tok == opOutputAppend {
			next = modeOutputAppend
		}

		var act action
		switch {
		case st.mode == modeInput:
			if len(st.argv) == 0 {
				return st, action{}, ErrMissingInputFile
			}
			st.inputFile = st.argv[0]

		case st.mode.output():
			if len(st.argv) == 0 {
				return st, action{}, ErrMissingOutputFile
			}
			// Last redirection wins, but the superseded target is
			// still created with the mode that introduced it.
			act = action{kind: actTouch, output: st.argv[0], appendOut: st.mode.appendOut()}

		case st.mode == modePiping:
			if len(st.argv) == 0 {
				return st, action{}, ErrMissingPipeTo
			}
			st.outBeforePipe = true
			st.pending = st.argv

		default: // modeNone
			st.pending = st.argv
		}

		st.argv = nil
		st.mode = next
		return st, act, nil

	case opPipe:
		if st.mode.output() {
			return st, action{}, ErrOutputBeforePipe
		}

		var act action
		switch st.mode {
		case modePiping:
			if len(st.argv) == 0 {
				return st, action{}, ErrMissingPipeTo
			}
			act = action{kind: actInterior, argv: st.argv}

		case modeInput:
			if len(st.pending) == 0 {
				return st, action{}, ErrMissingProgram
			}
			if len(st.argv) == 0 {
				return st, action{}, ErrMissingInputFile
			}
			act = action{kind: actFirst, argv: st.pending, input: st.argv[0]}
			st.pending = nil

		default: // modeNone
			if len(st.argv) == 0 {
				return st, action{}, ErrMissingProgram
			}
			act = action{kind: actFirst, argv: st.argv}
		}

		st.argv = nil
		st.mode = modePiping
		return st, act, nil

	default:
		if len(st.argv) >= lim.MaxArgs {
			return st, action{}, ErrTooManyArgs
		}
		st.argv = append(st.argv, tok)
		return st, action{}, nil
	}
}

// finish resolves the scanner's state at end of line into the closing launch
// action. The active mode decides which executor runs.
func finish(st scanState) (action, error) {
	switch {
	case st.mode == modeNone:
		if len(st.argv) == 0 {
			return action{}, nil // blank line
		}
		return action{kind: actSingle, argv: st.argv}, nil

	case st.mode == modeInput:
		if len(st.pending) == 0 {
			return action{}, ErrMissingProgram
		}
		if len(st.argv) == 0 {
			return action{}, ErrMissingIOFile
		}
		return action{kind: actSingle, argv: st.pending, input: st.argv[0]}, nil

	case st.mode.output():
		if len(st.argv) == 0 {
			return action{}, ErrMissingIOFile
		}
		out := st.argv[0]
		app := st.mode.appendOut()

		switch {
		case st.inputFile != "":
			if len(st.pending) == 0 {
				return action{}, ErrMissingProgram
			}
			return action{kind: actDual, argv: st.pending, input: st.inputFile, output: out, appendOut: app}, nil

		case st.outBeforePipe:
			// The redirection preceded a pipe operator, so it applies
			// to the pipeline's final stage.
			return action{kind: actFinal, argv: st.pending, output: out, appendOut: app}, nil

		default:
			if len(st.pending) == 0 {
				return action{}, ErrMissingProgram
			}
			return action{kind: actSingle, argv: st.pending, output: out, appendOut: app}, nil
		}

	default: // modePiping
		if len(st.argv) == 0 {
			return action{}, ErrMissingPipeTo
		}
		return action{kind: actFinal, argv: st.argv}, nil
	}
}

package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scan runs a whole line through the transition function and end-of-line
// resolution, collecting the launch actions in order.
func scan(line string, lim Limits) ([]action, error) {
	lim = lim.withDefaults()

	var acts []action
	st := scanState{}
	for _, tok := range tokenize(line) {
		var act action
		var err error
		st, act, err = step(st, tok, lim)
		if err != nil {
			return acts, err
		}
		if act.kind != actNone {
			acts = append(acts, act)
		}
	}

	act, err := finish(st)
	if err != nil {
		return acts, err
	}
	if act.kind != actNone {
		acts = append(acts, act)
	}
	return acts, nil
}

func TestScanLaunches(t *testing.T) {
	cases := map[string]struct {
		line string
		want []action
	}{
		"plain command": {
			line: "ls -l /tmp",
			want: []action{
				{kind: actSingle, argv: []string{"ls", "-l", "/tmp"}},
			},
		},
		"blank line": {
			line: "   ",
			want: nil,
		},
		"input redirection": {
			line: "wc -l < notes.txt",
			want: []action{
				{kind: actSingle, argv: []string{"wc", "-l"}, input: "notes.txt"},
			},
		},
		"output truncate": {
			line: "ls > out.txt",
			want: []action{
				{kind: actSingle, argv: []string{"ls"}, output: "out.txt"},
			},
		},
		"output append": {
			line: "ls >> out.txt",
			want: []action{
				{kind: actSingle, argv: []string{"ls"}, output: "out.txt", appendOut: true},
			},
		},
		"dual redirection": {
			line: "sort < in.txt > out.txt",
			want: []action{
				{kind: actDual, argv: []string{"sort"}, input: "in.txt", output: "out.txt"},
			},
		},
		"dual redirection append": {
			line: "sort < in.txt >> out.txt",
			want: []action{
				{kind: actDual, argv: []string{"sort"}, input: "in.txt", output: "out.txt", appendOut: true},
			},
		},
		"three stage pipeline": {
			line: "a -1 | b | c",
			want: []action{
				{kind: actFirst, argv: []string{"a", "-1"}},
				{kind: actInterior, argv: []string{"b"}},
				{kind: actFinal, argv: []string{"c"}},
			},
		},
		"input redirection into pipeline": {
			line: "a < in.txt | b",
			want: []action{
				{kind: actFirst, argv: []string{"a"}, input: "in.txt"},
				{kind: actFinal, argv: []string{"b"}},
			},
		},
		"pipeline into output redirection": {
			line: "a | b > out.txt",
			want: []action{
				{kind: actFirst, argv: []string{"a"}},
				{kind: actFinal, argv: []string{"b"}, output: "out.txt"},
			},
		},
		"pipeline into append redirection": {
			line: "a | b >> out.txt",
			want: []action{
				{kind: actFirst, argv: []string{"a"}},
				{kind: actFinal, argv: []string{"b"}, output: "out.txt", appendOut: true},
			},
		},
		"last output redirection wins": {
			line: "echo hi > a.txt >> b.txt > c.txt",
			want: []action{
				{kind: actTouch, output: "a.txt"},
				{kind: actTouch, output: "b.txt", appendOut: true},
				{kind: actSingle, argv: []string{"echo", "hi"}, output: "c.txt"},
			},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := scan(tc.line, Limits{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScanErrors(t *testing.T) {
	cases := map[string]struct {
		line string
		err  error
		// launched counts the actions dispatched before the error token.
		launched int
	}{
		"pipe without program":            {line: "| b", err: ErrMissingProgram},
		"pipe without second program":     {line: "a |", err: ErrMissingPipeTo, launched: 1},
		"double pipe":                     {line: "a | | b", err: ErrMissingPipeTo, launched: 1},
		"redirect without file":           {line: "a >", err: ErrMissingIOFile},
		"input without file":              {line: "a <", err: ErrMissingIOFile},
		"input without program":           {line: "< f.txt", err: ErrMissingProgram},
		"output without program":          {line: "> f.txt", err: ErrMissingProgram},
		"output before pipe":              {line: "a > f.txt | b", err: ErrOutputBeforePipe},
		"second input redirection":        {line: "a < f.txt < g.txt", err: ErrInputAfterOther},
		"input after pipe":                {line: "a | b < f.txt", err: ErrInputAfterOther, launched: 1},
		"input then output without file":  {line: "a < > f.txt", err: ErrMissingInputFile},
		"chained output without file":     {line: "a > f.txt > > g.txt", err: ErrMissingOutputFile, launched: 1},
		"redirect after pipe then stop":   {line: "a | b | > f.txt", err: ErrMissingPipeTo, launched: 2},
		"pipe into redirect without prog": {line: "a | > f.txt", err: ErrMissingPipeTo, launched: 1},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			got, err := scan(tc.line, Limits{})
			require.ErrorIs(t, err, tc.err)
			assert.Len(t, got, tc.launched)
		})
	}
}

func TestScanTooManyArgs(t *testing.T) {
	_, err := scan("p 1 2 3", Limits{MaxArgs: 3})
	require.ErrorIs(t, err, ErrTooManyArgs)

	// The limit counts the program name.
	_, err = scan("p 1 2", Limits{MaxArgs: 3})
	require.NoError(t, err)

	// Each pipeline stage gets its own budget.
	_, err = scan("p 1 2 | q 1 2", Limits{MaxArgs: 3})
	require.NoError(t, err)
}

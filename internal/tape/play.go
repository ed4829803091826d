package tape

import (
	"fmt"
	"reflect"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Play runs t to completion against the given inputs and returns the
// resolved value of t.Result, using DefaultOptions.
func Play(t *Tape, inputs ...any) (any, error) {
	return PlayWith(t, DefaultOptions(), inputs...)
}

// PlayWith runs t to completion against the given inputs under opts.
func PlayWith(t *Tape, opts Options, inputs ...any) (any, error) {
	if len(inputs) > 0 {
		if err := t.SetInputs(inputs...); err != nil {
			return nil, err
		}
	}
	if err := play(t, opts, false); err != nil {
		return nil, err
	}
	if t.Result.IsZero() {
		return nil, nil
	}
	return t.resolveAny(t.Result), nil
}

// PlayDebug runs t like Play, printing each executed Call (those inside a
// Loop's sub-tape included) and its resulting value to stderr in color as it
// goes — the tape analogue of a
// step debugger.
func PlayDebug(t *Tape, inputs ...any) (any, error) {
	if len(inputs) > 0 {
		if err := t.SetInputs(inputs...); err != nil {
			return nil, err
		}
	}
	opts := DefaultOptions()
	if err := play(t, opts, true); err != nil {
		return nil, err
	}
	if t.Result.IsZero() {
		return nil, nil
	}
	return t.resolveAny(t.Result), nil
}

// play executes every operation on t in tape order, unconditionally
// re-running Call and Loop regardless of any value cached from a prior
// play or from mkcall's eager evaluation — this is what makes a tape a
// reusable closure over its Input slots rather than a one-shot recording.
// Input and Constant values are left untouched.
func play(t *Tape, opts Options, debug bool) error {
	for _, op := range t.ops {
		if err := execOp(t, op, opts, debug); err != nil {
			if opts.PanicOnError {
				return err
			}
			op.SetValue(err)
			continue
		}
	}
	return nil
}

func execOp(t *Tape, op Operation, opts Options, debug bool) error {
	switch o := op.(type) {
	case *Call:
		return execCall(t, o, opts, debug)
	case *Loop:
		return execLoop(t, o, opts, debug)
	default:
		return nil
	}
}

func execCall(t *Tape, c *Call, opts Options, debug bool) error {
	fn := t.resolveAny(c.Fn)
	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		args[i] = t.resolveAny(a)
	}
	result, err := callFn(fn, args...)
	if err != nil {
		return errors.Wrapf(err, "play: %s", c.String())
	}
	if opts.AssertBranches && c.BranchCond {
		if prev := c.Value(); prev != Unknown && !reflect.DeepEqual(prev, result) {
			return fmt.Errorf("play: branch condition at %%%d changed: traced %v, now %v", c.ID(), prev, result)
		}
	}
	c.SetValue(result)
	if debug {
		fmt.Fprintln(color.Error, color.CyanString(c.String()))
	}
	return nil
}

package driver

import (
	"context"
	"errors"
	"fmt"

	"dbc/internal/contract"
	"dbc/internal/project"
	"dbc/internal/trace"
	"dbc/internal/vm"
)

// Exit codes of dbc run.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitViolation = 3
	ExitInternal  = 4
)

// ErrNotRunnable is returned by Run for a result with errors.
var ErrNotRunnable = errors.New("program has errors and cannot run")

// Run executes the static zero-argument method entry ("Class.method") of
// the instrumented program. Violations, internal errors and uncaught
// exceptions come back as the error; see ExitCode.
func Run(ctx context.Context, res *Result, entry string, opts vm.Options) (vm.Value, error) {
	if !res.Runnable() {
		return vm.Value{}, ErrNotRunnable
	}
	class, method, err := project.SplitEntry(entry)
	if err != nil {
		return vm.Value{}, err
	}
	ctx, span := trace.Enter(ctx, trace.ScopeDriver, "run")
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}

	rt, err := vm.NewRuntime(ctx, res.Instrumented.Program, res.Instrumented.Table, opts)
	var v vm.Value
	if err == nil {
		v, err = rt.NewVM().Call(ctx, class, method)
	}
	detail := "ok"
	if err != nil {
		detail = err.Error()
	}
	span.End(detail)
	if err != nil {
		return vm.Value{}, fmt.Errorf("%s: %w", entry, err)
	}
	return v, nil
}

// ExitCode maps the error of Run to the process exit code.
func ExitCode(err error) int {
	var (
		violation *contract.ConditionViolation
		internal  *contract.InternalError
		engine    *vm.VMError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &violation):
		return ExitViolation
	case errors.As(err, &internal), errors.As(err, &engine):
		return ExitInternal
	}
	return ExitFailure
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dbc/internal/diag"
	"dbc/internal/instrument"
	"dbc/internal/ir"
	"dbc/internal/observ"
	"dbc/internal/prelude"
	"dbc/internal/source"
	"dbc/internal/symbols"
	"dbc/internal/trace"
)

// ErrNoSources is returned when the given paths hold no .dbc file.
var ErrNoSources = errors.New("no " + SourceExt + " sources found")

// Options configure one check.
type Options struct {
	MaxDiagnostics int
	Jobs           int
	Notes          bool
	// Cache, when set, is consulted before linking; a hit restores the
	// diagnostics and method summaries but no program.
	Cache    *DiskCache
	Timings  bool
	Progress ProgressSink
}

// MethodSummary is what the pass decided for one method, in a form that
// survives the disk cache.
type MethodSummary struct {
	Name   string
	State  string
	Reason string
	Pre    int
	Post   int
	Inv    int
}

// Result is the outcome of a check.
type Result struct {
	FileSet *source.FileSet
	Files   []source.FileID // user files, prelude excluded
	Paths   []string
	Bag     *diag.Bag
	// Source is the linked program before instrumentation.
	Source       *ir.Program
	Instrumented *instrument.Result
	Methods      []MethodSummary
	Classes      int
	Cached       bool
	Timing       *observ.Report
}

// OK reports whether the check produced no errors.
func (r *Result) OK() bool { return r != nil && !r.Bag.HasErrors() }

// Runnable reports whether the instrumented program is available.
func (r *Result) Runnable() bool { return r.OK() && r.Instrumented != nil }

// Count returns how many methods ended in state (by name).
func (r *Result) Count(state instrument.State) int {
	n := 0
	for _, m := range r.Methods {
		if m.State == state.String() {
			n++
		}
	}
	return n
}

// Check loads, parses, links and instruments every source under paths.
// Defects in the sources are diagnostics in Result.Bag; the error return
// is reserved for I/O setup failures, cancellation and broken internal
// invariants.
func Check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	ctx, span := trace.Enter(ctx, trace.ScopeDriver, "check")
	res, err := check(ctx, paths, opts)
	detail := "ok"
	switch {
	case err != nil:
		detail = err.Error()
	case !res.OK():
		detail = "diagnostics=" + strconv.Itoa(res.Bag.Len())
	}
	span.End(detail)
	return res, err
}

func check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	files, err := ListSources(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoSources, paths)
	}

	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer()
	}
	sink := opts.Progress
	emitQueued(sink, files)

	fset := source.NewFileSet()
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}
	res := &Result{FileSet: fset, Bag: bag}
	defer func() {
		if timer != nil {
			r := timer.Report()
			res.Timing = &r
		}
	}()

	// load
	endLoad := timer.Track(string(StageLoad))
	stageCtx, stage := trace.Enter(ctx, trace.ScopePass, string(StageLoad))
	loaded, err := readFiles(stageCtx, files, opts.Jobs, sink)
	if err != nil {
		stage.End(err.Error())
		return nil, err
	}
	pre := prelude.Load(fset, reporter)
	var names []string
	for _, lf := range loaded {
		if lf.err != nil {
			bag.Add(diag.NewError(diag.IOLoadFile, source.Span{}, lf.path, lf.err.Error()))
			continue
		}
		// FileSet.Add is not safe for concurrent use; reading was the slow part
		res.Files = append(res.Files, fset.Add(lf.path, lf.content, lf.flags))
		names = append(names, lf.path)
	}
	res.Paths = names
	stage.End("files=" + strconv.Itoa(len(names)))
	endLoad("files=" + strconv.Itoa(len(names)))

	// parse
	endParse := timer.Track(string(StageParse))
	stageCtx, stage = trace.Enter(ctx, trace.ScopePass, string(StageParse))
	parsed, err := parseFiles(stageCtx, fset, res.Files, names, opts.MaxDiagnostics, opts.Jobs, sink)
	if err != nil {
		stage.End(err.Error())
		return nil, err
	}
	var classes []*ir.Class
	for _, pf := range parsed {
		bag.Merge(pf.bag)
		classes = append(classes, pf.classes...)
	}
	stage.End("classes=" + strconv.Itoa(len(classes)))
	endParse("classes=" + strconv.Itoa(len(classes)))

	// store writes the finished result back
	store := func() {}
	if opts.Cache != nil {
		var payload DiskPayload
		key := cacheKey(fset, res.Files, opts)
		hit, cerr := opts.Cache.Get(key, &payload)
		if cerr != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopePass, "cache", "unreadable entry: "+cerr.Error(), trace.ParentID(ctx))
		}
		if hit {
			cached := diag.NewBag(opts.MaxDiagnostics)
			if err := fromPayload(fset, &payload, cached); err == nil {
				res.Bag = cached
				res.Methods = payload.Methods
				res.Classes = payload.Classes
				res.Cached = true
				trace.Point(trace.FromContext(ctx), trace.ScopePass, "cache", "hit", trace.ParentID(ctx))
				emitStage(sink, names, StageInstrument, finalStatus(res), nil, 0)
				return res, nil
			}
		}
		store = func() {
			if perr := opts.Cache.Put(key, toPayload(fset, res)); perr != nil {
				trace.Point(trace.FromContext(ctx), trace.ScopePass, "cache", "write failed: "+perr.Error(), trace.ParentID(ctx))
			}
		}
	}

	// link
	endLink := timer.Track(string(StageLink))
	start := time.Now()
	_, stage = trace.Enter(ctx, trace.ScopePass, string(StageLink))
	emitStage(sink, nil, StageLink, StatusWorking, nil, 0)
	prog := symbols.Link(pre, classes, reporter)
	if err := symbols.Validate(prog); err != nil {
		stage.End(err.Error())
		return nil, fmt.Errorf("linked program is inconsistent: %w", err)
	}
	res.Source = prog
	stage.End("types=" + strconv.Itoa(len(prog.Classes)))
	endLink("")
	emitStage(sink, nil, StageLink, StatusDone, nil, time.Since(start))

	if bag.HasErrors() {
		emitStage(sink, names, StageInstrument, StatusError, nil, 0)
		store()
		return res, nil
	}

	// instrument
	endInstr := timer.Track(string(StageInstrument))
	start = time.Now()
	emitStage(sink, nil, StageInstrument, StatusWorking, nil, 0)
	out, err := instrument.Run(ctx, prog, nil, reporter, instrument.Options{Notes: opts.Notes})
	if err != nil {
		emitStage(sink, nil, StageInstrument, StatusError, err, time.Since(start))
		return nil, err
	}
	res.Instrumented = out
	res.Classes = out.Classes
	res.Methods = summarize(out)
	endInstr(fmt.Sprintf("instrumented=%d", out.Count(instrument.Instrumented)))
	emitStage(sink, names, StageInstrument, finalStatus(res), nil, time.Since(start))
	store()
	return res, nil
}

func finalStatus(res *Result) Status {
	if res.OK() {
		return StatusDone
	}
	return StatusError
}

func summarize(r *instrument.Result) []MethodSummary {
	out := make([]MethodSummary, 0, len(r.Records))
	for _, rec := range r.Records {
		s := MethodSummary{
			Name:  rec.Name(),
			State: rec.State.String(),
			Pre:   rec.Pre,
			Post:  rec.Post,
			Inv:   rec.Inv,
		}
		if rec.Reason != instrument.NotSkipped {
			s.Reason = rec.Reason.String()
		}
		out = append(out, s)
	}
	return out
}

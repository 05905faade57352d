// Package driver resolves the call sites of world files in batches.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"tower/internal/diag"
	"tower/internal/observ"
	"tower/internal/project"
	"tower/internal/source"
	"tower/internal/stages"
	"tower/internal/tower"
	"tower/internal/trace"
	"tower/internal/world"
)

// Options control a resolution batch.
type Options struct {
	// Jobs bounds the number of worker goroutines; <= 0 means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// HidesMembers overrides tower.DefaultHidesMembers when non-nil.
	HidesMembers []string
	Cache        *DiskCache
	// Timings appends a timing report diagnostic to every world.
	Timings  bool
	Progress ProgressSink
	Phases   PhaseObserver
}

func (o Options) jobs() int {
	if o.Jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Jobs
}

func (o Options) towerOptions() tower.Options {
	opts := tower.DefaultOptions()
	if o.HidesMembers != nil {
		opts.HidesMembers = o.HidesMembers
	}
	return opts
}

// WorldResult is the outcome of one world file.
type WorldResult struct {
	Path   string
	FileID source.FileID
	// World is nil when loading failed or the result came from the cache.
	World  *world.World
	Calls  []CallResult
	Bag    *diag.Bag
	Cached bool
	Timing *observ.Report
}

// Mismatches counts calls that differ from their expectation.
func (r *WorldResult) Mismatches() int {
	n := 0
	for i := range r.Calls {
		if len(r.Calls[i].Mismatch) > 0 {
			n++
		}
	}
	return n
}

// Failed reports whether the world could not be loaded or any call failed.
func (r *WorldResult) Failed() bool {
	return r.Bag.HasErrors()
}

// ResolveWorld resolves every call of w. Calls are spread over a bounded
// worker pool; each worker owns its resolvers and reuses them through
// Reset. Results are in call order.
func ResolveWorld(ctx context.Context, w *world.World, opts Options) ([]CallResult, error) {
	results := make([]CallResult, len(w.Calls))
	if len(w.Calls) == 0 {
		return results, nil
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "resolve-world", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	workers := min(opts.jobs(), len(w.Calls))
	towerOpts := opts.towerOptions()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Индексы уникальны для каждой итерации, мьютекс не нужен
	var next atomic.Int64
	for range workers {
		g.Go(func() error {
			cr := newCallResolver(w, towerOpts)
			for {
				i := int(next.Add(1) - 1)
				if i >= len(w.Calls) {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = cr.resolve(gctx, w.Calls[i])
			}
		})
	}
	err := g.Wait()
	span.WithExtra("calls", fmt.Sprint(len(w.Calls))).
		WithExtra("workers", fmt.Sprint(workers)).
		End(w.Path)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ResolveCall resolves a single call of w on the calling goroutine. The
// expectation of the call is checked as in ResolveWorld.
func ResolveCall(ctx context.Context, w *world.World, call *world.Call, opts Options) CallResult {
	return newCallResolver(w, opts.towerOptions()).resolve(ctx, call)
}

// callResolver keeps one tower resolver per context of a world.
type callResolver struct {
	w         *world.World
	stages    *stages.Runner
	opts      tower.Options
	byContext map[*world.Context]*tower.Resolver
}

func newCallResolver(w *world.World, opts tower.Options) *callResolver {
	return &callResolver{
		w:         w,
		stages:    stages.New(w.Table),
		opts:      opts,
		byContext: make(map[*world.Context]*tower.Resolver, len(w.Contexts)),
	}
}

func (c *callResolver) resolve(ctx context.Context, call *world.Call) CallResult {
	r, ok := c.byContext[call.Context]
	if ok {
		r.Reset()
	} else {
		r = tower.NewResolver(c.w.Environment(call.Context, c.stages), c.opts)
		c.byContext[call.Context] = r
	}
	collector := r.Run(ctx, call.Context.Receivers, call.Info)
	return summarize(c.w, call, collector)
}

// ResolvePaths resolves every world file named by paths. Directories are
// searched recursively for *.toml files. World files are processed in
// parallel; a single file spreads its calls over the workers instead.
func ResolvePaths(ctx context.Context, paths []string, opts Options) (*source.FileSet, []WorldResult, error) {
	files, err := ListWorldFiles(paths...)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "resolve-paths", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	// Предзагружаем все файлы: FileSet не потокобезопасен
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error, len(files))
	for i, path := range files {
		opts.Progress.emit(Event{Path: path, Status: StatusQueued})
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
	}

	jobs := opts.jobs()
	perFile := opts
	perFile.Jobs = 1
	if len(files) == 1 {
		perFile.Jobs = jobs
	}

	results := make([]WorldResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErr, failed := loadErrors[i]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()).Emit()
				results[i] = WorldResult{Path: path, Bag: bag}
				opts.Progress.emit(Event{Path: path, Status: StatusFailed})
				return nil
			}
			res, err := ResolveFile(gctx, fileSet, fileIDs[i], perFile)
			if err != nil {
				return err
			}
			res.Path = path
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, nil, err
	}
	return fileSet, results, nil
}

// ResolveFile loads the world file id of fs and resolves its calls. The
// returned error is only set when ctx was cancelled; problems with the
// file are reported in the result's Bag.
func ResolveFile(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (WorldResult, error) {
	file := fs.Get(id)
	if file == nil {
		return WorldResult{}, fmt.Errorf("driver: unknown file %d", id)
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}
	res := WorldResult{Path: file.Path, FileID: id, Bag: bag}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "world:"+file.Path, trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	timer := observ.NewTimer()
	phases := newPhaseTimer(file.Path, timer, opts.Phases)
	finish := func(status Status) (WorldResult, error) {
		if opts.Timings {
			report := timer.Report()
			res.Timing = &report
			appendTimingDiagnostic(bag, timingPayload{Path: file.Path, Cached: res.Cached, TotalMS: report.TotalMS, Phases: report.Phases})
		}
		opts.Progress.emit(Event{Path: file.Path, Status: status, Calls: len(res.Calls), Mismatches: res.Mismatches(), Cached: res.Cached})
		span.WithExtra("cached", fmt.Sprint(res.Cached)).End(status.String())
		return res, nil
	}

	key := cacheKey(project.Digest(file.Hash), opts.towerOptions().HidesMembers)
	if opts.Cache != nil {
		idx, name := phases.begin("cache")
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			diag.ReportWarning(reporter, diag.ProjectCacheError, source.Span{},
				fmt.Sprintf("ignoring unreadable cache entry: %v", err)).Emit()
		}
		if hit && payload.ContentHash == project.Digest(file.Hash) {
			phases.end(idx, name, "hit")
			res.Calls = payload.Calls
			res.Cached = true
			restoreDiagnostics(reporter, id, payload.Diagnostics)
			return finish(statusOf(bag))
		}
		phases.end(idx, name, "miss")
	}

	opts.Progress.emit(Event{Path: file.Path, Status: StatusLoading})
	idx, name := phases.begin("load")
	w, err := world.LoadFile(fs, id, reporter)
	phases.end(idx, name, "")
	if err != nil {
		if !errors.Is(err, world.ErrInvalid) {
			diag.ReportError(reporter, diag.IOLoadFileError, source.Span{File: id}, err.Error()).Emit()
		}
		return finish(StatusFailed)
	}
	res.World = w

	opts.Progress.emit(Event{Path: file.Path, Status: StatusResolving, Calls: len(w.Calls)})
	idx, name = phases.begin("resolve")
	calls, err := ResolveWorld(ctx, w, opts)
	phases.end(idx, name, fmt.Sprintf("%d calls", len(w.Calls)))
	if err != nil {
		span.End("cancelled")
		return res, err
	}
	res.Calls = calls

	idx, name = phases.begin("report")
	for i := range calls {
		reportCall(reporter, id, &calls[i])
	}
	phases.end(idx, name, fmt.Sprintf("%d diagnostics", bag.Len()))

	if opts.Cache != nil {
		payload := &DiskPayload{
			Schema:      diskCacheSchemaVersion,
			Path:        file.Path,
			ContentHash: project.Digest(file.Hash),
			Calls:       calls,
			Diagnostics: toCachedDiagnostics(bag.Items()),
		}
		if err := opts.Cache.Put(key, payload); err != nil {
			diag.ReportWarning(reporter, diag.ProjectCacheError, source.Span{},
				fmt.Sprintf("cannot store result in cache: %v", err)).Emit()
		}
	}
	return finish(statusOf(bag))
}

func statusOf(bag *diag.Bag) Status {
	if bag.HasErrors() {
		return StatusFailed
	}
	return StatusDone
}

package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"dbc/internal/diag"
	"dbc/internal/ir"
	"dbc/internal/parser"
	"dbc/internal/source"
)

// SourceExt is the extension of contract source files.
const SourceExt = ".dbc"

// ListSources expands files and directories into a sorted, duplicate-free
// list of .dbc files. Directories are walked recursively; a file named
// explicitly is taken whatever its extension.
func ListSources(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
				add(filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

type loadedFile struct {
	path    string
	content []byte
	flags   source.FileFlags
	err     error
}

// readFiles reads every file concurrently. A file that cannot be read is
// kept with its error; it becomes an io.load.file diagnostic, not a
// pipeline failure.
func readFiles(ctx context.Context, files []string, jobs int, sink ProgressSink) ([]loadedFile, error) {
	out := make([]loadedFile, len(files))
	if len(files) == 0 {
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobsOrDefault(jobs), len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
			// #nosec G304 -- paths come from the command line or the manifest
			content, err := os.ReadFile(path)
			if err != nil {
				out[i] = loadedFile{path: path, err: err}
				emit(sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
				return nil
			}
			content, flags := source.Normalize(content)
			out[i] = loadedFile{path: path, content: content, flags: flags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type parsedFile struct {
	id      source.FileID
	path    string
	classes []*ir.Class
	bag     *diag.Bag
}

// parseFiles parses the already registered files concurrently, one bag
// per file so the results merge in a stable order.
func parseFiles(ctx context.Context, fset *source.FileSet, ids []source.FileID, names []string, maxDiagnostics, jobs int, sink ProgressSink) ([]parsedFile, error) {
	out := make([]parsedFile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	maxErrors, err := safecast.Conv[uint](maxDiagnostics)
	if err != nil {
		return nil, fmt.Errorf("max diagnostics: %w", err)
	}
	// Get returns pointers into the set; nothing is added while workers run.
	files := make([]*source.File, len(ids))
	for i, id := range ids {
		files[i] = fset.Get(id)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobsOrDefault(jobs), len(ids)))
	for i, file := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			emit(sink, Event{File: names[i], Stage: StageParse, Status: StatusWorking})
			bag := diag.NewBag(maxDiagnostics)
			res := parser.ParseFile(file, parser.Options{
				Reporter:  diag.BagReporter{Bag: bag},
				MaxErrors: maxErrors,
			})
			out[i] = parsedFile{id: file.ID, path: names[i], classes: res.Classes, bag: bag}
			status := StatusDone
			if bag.HasErrors() {
				status = StatusError
			}
			emit(sink, Event{File: names[i], Stage: StageParse, Status: status})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func jobsOrDefault(jobs int) int {
	if jobs <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return jobs
}

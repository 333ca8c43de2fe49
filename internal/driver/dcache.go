package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"dbc/internal/diag"
	"dbc/internal/project"
	"dbc/internal/source"
	"dbc/internal/version"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты проверки по хешу всех исходников на диске.
// A hit lets check skip linking and instrumentation entirely.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached outcome of one check over a set of sources.
type DiskPayload struct {
	Schema uint16

	FilePaths []string
	Diags     []CachedDiag
	Methods   []MethodSummary
	Classes   int
}

// CachedDiag is a diagnostic with spans stored by file path, since file
// ids are only stable within one FileSet.
type CachedDiag struct {
	Severity uint8
	Code     string
	Message  string
	Args     []string
	Span     CachedSpan
	Notes    []CachedNote
}

type CachedSpan struct {
	Path  string
	Start uint32
	End   uint32
}

type CachedNote struct {
	Span CachedSpan
	Msg  string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	// Для удобства читаемости/очистки: подкаталог "checks".
	return filepath.Join(c.dir, "checks", fmt.Sprintf("%x.mp", key[:]))
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// after a successful rename the temp name no longer exists
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads and deserializes a payload. A payload written by another
// schema is reported as a miss.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey covers the sources, the tool version and every option that
// changes the outcome.
func cacheKey(fset *source.FileSet, ids []source.FileID, opts Options) project.Digest {
	files := make(map[string]project.Digest, len(ids))
	for _, id := range ids {
		f := fset.Get(id)
		files[f.Path] = project.Digest(f.Hash)
	}
	salt := fmt.Sprintf("dbc|%s|schema=%d|notes=%t|max=%d",
		version.Version, diskCacheSchemaVersion, opts.Notes, opts.MaxDiagnostics)
	return project.Combine(project.StringDigest(salt), project.SourcesDigest(files))
}

func cacheSpan(fset *source.FileSet, sp source.Span) CachedSpan {
	path := ""
	if f := fset.Get(sp.File); f != nil {
		path = f.Path
	}
	return CachedSpan{Path: path, Start: sp.Start, End: sp.End}
}

func restoreSpan(fset *source.FileSet, cs CachedSpan) source.Span {
	id, ok := fset.GetLatest(cs.Path)
	if !ok {
		return source.Span{}
	}
	return source.Span{File: id, Start: cs.Start, End: cs.End}
}

func toPayload(fset *source.FileSet, res *Result) *DiskPayload {
	p := &DiskPayload{
		Schema:  diskCacheSchemaVersion,
		Methods: res.Methods,
		Classes: res.Classes,
	}
	for _, id := range res.Files {
		p.FilePaths = append(p.FilePaths, fset.Get(id).Path)
	}
	for _, d := range res.Bag.Items() {
		cd := CachedDiag{
			Severity: uint8(d.Severity),
			Code:     string(d.Code),
			Message:  d.Message,
			Args:     d.Args,
			Span:     cacheSpan(fset, d.Primary),
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Span: cacheSpan(fset, n.Span), Msg: n.Msg})
		}
		p.Diags = append(p.Diags, cd)
	}
	return p
}

func fromPayload(fset *source.FileSet, p *DiskPayload, bag *diag.Bag) error {
	for _, cd := range p.Diags {
		if cd.Severity > uint8(diag.SevError) {
			return fmt.Errorf("cached diagnostic has severity %s", strconv.Itoa(int(cd.Severity)))
		}
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Args:     cd.Args,
			Primary:  restoreSpan(fset, cd.Span),
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: restoreSpan(fset, n.Span), Msg: n.Msg})
		}
		bag.Add(d)
	}
	return nil
}

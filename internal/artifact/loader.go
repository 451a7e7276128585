// Package artifact reads a store of artifact definitions from a directory
// tree or a zip pack. Files that cannot be used are recorded as skipped and
// never abort the load.
package artifact

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Velocidex/zip"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gzhole/toolscout/internal/redact"
)

// DefaultWorkers is the parse concurrency used when Options.Workers is unset.
const DefaultWorkers = 4

// Options controls Load.
type Options struct {
	// Workers bounds how many files are parsed at once.
	Workers int
	// Exclude holds doublestar patterns matched against slash paths relative
	// to the store root (or member names inside a zip pack).
	Exclude []string
	// Strict rejects documents with unknown top-level keys.
	Strict bool
	Logger *zap.Logger
}

// Store is the result of loading an artifact store.
type Store struct {
	Root      string
	Artifacts []*Definition // sorted by name
	Skipped   []Skipped     // sorted by path
	FilesSeen int
}

// Lookup returns the artifact with the given name.
func (s *Store) Lookup(name string) (*Definition, bool) {
	i := sort.Search(len(s.Artifacts), func(i int) bool {
		return s.Artifacts[i].Name >= name
	})
	if i < len(s.Artifacts) && s.Artifacts[i].Name == name {
		return s.Artifacts[i], true
	}
	return nil, false
}

// Warnings returns every artifact warning prefixed with the artifact name.
func (s *Store) Warnings() []string {
	var out []string
	for _, def := range s.Artifacts {
		for _, w := range def.Warnings {
			out = append(out, def.Name+": "+w)
		}
	}
	return out
}

type candidate struct {
	path string
	read func() ([]byte, error)
}

type outcome struct {
	def    *Definition
	reason string
}

// Load reads every YAML definition under root. root may be a directory, a
// .zip artifact pack or a single YAML file. A missing root yields a
// *StoreNotFoundError; per-file problems only produce Skipped entries.
func Load(ctx context.Context, root string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StoreNotFoundError{Path: root}
		}
		return nil, errors.Wrapf(err, "stat %s", root)
	}

	var (
		candidates []candidate
		skipped    []Skipped
	)
	switch {
	case info.IsDir():
		candidates, skipped, err = walkDir(root, opts.Exclude)
	case isZipFile(root):
		candidates, skipped, err = readZip(root, opts.Exclude)
	case isYAMLFile(root):
		path := root
		candidates = []candidate{{
			path: filepath.Base(root),
			read: func() ([]byte, error) { return os.ReadFile(path) },
		}}
	default:
		return nil, errors.Errorf("%s is not a directory, zip pack or YAML file", root)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].path < candidates[j].path
	})

	outcomes := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = parseCandidate(c, opts.Strict)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "loading artifacts")
	}

	store := &Store{
		Root:      root,
		FilesSeen: len(candidates) + len(skipped),
		Skipped:   skipped,
	}
	firstSeen := make(map[string]string)
	for i, c := range candidates {
		o := outcomes[i]
		if o.reason != "" {
			store.Skipped = append(store.Skipped, Skipped{Path: c.path, Reason: o.reason})
			continue
		}
		if first, dup := firstSeen[o.def.Name]; dup {
			store.Skipped = append(store.Skipped, Skipped{Path: c.path, Reason: duplicateName(o.def.Name, first)})
			continue
		}
		firstSeen[o.def.Name] = c.path
		o.def.Path = c.path
		store.Artifacts = append(store.Artifacts, o.def)
	}

	sort.Slice(store.Artifacts, func(i, j int) bool {
		return store.Artifacts[i].Name < store.Artifacts[j].Name
	})
	sort.SliceStable(store.Skipped, func(i, j int) bool {
		return store.Skipped[i].Path < store.Skipped[j].Path
	})
	for i := range store.Skipped {
		s := &store.Skipped[i]
		masked := redact.Changed(s.Reason)
		if masked {
			s.Reason = redact.Redact(s.Reason)
		}
		log.Warn("artifact skipped",
			zap.String("path", s.Path),
			zap.String("reason", s.Reason),
			zap.Bool("redacted", masked))
	}
	for _, def := range store.Artifacts {
		for _, w := range def.Warnings {
			log.Warn("hidden characters removed",
				zap.String("artifact", def.Name),
				zap.String("path", def.Path),
				zap.String("detail", w))
		}
	}
	log.Debug("artifact store loaded",
		zap.String("root", root),
		zap.Int("files", store.FilesSeen),
		zap.Int("artifacts", len(store.Artifacts)),
		zap.Int("skipped", len(store.Skipped)),
		zap.Int("workers", workers))
	return store, nil
}

func parseCandidate(c candidate, strict bool) outcome {
	data, err := c.read()
	if err != nil {
		return outcome{reason: readError(err)}
	}
	def, reason := parseDefinition(data, strict)
	return outcome{def: def, reason: reason}
}

func walkDir(root string, exclude []string) ([]candidate, []Skipped, error) {
	var (
		candidates []candidate
		skipped    []Skipped
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if path == root {
			return err
		}
		rel := relPath(root, path)
		if err != nil {
			skipped = append(skipped, Skipped{Path: rel, Reason: readError(err)})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if excluded(rel, exclude) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isYAMLFile(path) {
			return nil
		}
		candidates = append(candidates, candidate{
			path: rel,
			read: func() ([]byte, error) { return os.ReadFile(path) },
		})
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "walking %s", root)
	}
	return candidates, skipped, nil
}

// readZip reads every YAML member of a zip pack up front so the parse
// workers never share the archive handle.
func readZip(path string, exclude []string) ([]candidate, []Skipped, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	defer fd.Close()

	stat, err := fd.Stat()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	reader, err := zip.NewReader(fd, stat.Size())
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening zip pack %s", path)
	}

	var (
		candidates []candidate
		skipped    []Skipped
		pack       = filepath.Base(path)
	)
	for _, member := range reader.File {
		name := strings.TrimPrefix(filepath.ToSlash(member.Name), "/")
		if member.FileInfo().IsDir() || !isYAMLFile(name) || excluded(name, exclude) {
			continue
		}
		display := pack + "!" + name
		data, err := readMember(member)
		if err != nil {
			skipped = append(skipped, Skipped{Path: display, Reason: readError(err)})
			continue
		}
		candidates = append(candidates, candidate{
			path: display,
			read: func() ([]byte, error) { return data, nil },
		})
	}
	return candidates, skipped, nil
}

func readMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func isZipFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

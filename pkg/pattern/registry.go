package pattern

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/kanun/pkg/lang"
)

//go:embed patterns/*.yaml
var builtinFS embed.FS

// BuiltinSource is the source name recorded for embedded tables.
const BuiltinSource = "builtin"

// Source provides the pattern table for a language.
type Source interface {
	Get(language lang.Language) (*LanguagePattern, bool)
}

// Tables is a fixed set of tables keyed by language.
type Tables map[lang.Language]*LanguagePattern

// Get returns the table for a language.
func (t Tables) Get(language lang.Language) (*LanguagePattern, bool) {
	pattern, ok := t[language]
	return pattern, ok
}

// Snapshot pins the tables source currently serves, so that a run over many
// lines sees one consistent set even if the source is reloaded meanwhile.
func Snapshot(source Source) Tables {
	if s, ok := source.(interface{ Snapshot() Tables }); ok {
		return s.Snapshot()
	}
	tables := make(Tables, len(lang.All))
	for _, language := range lang.All {
		if pattern, ok := source.Get(language); ok {
			tables[language] = pattern
		}
	}
	return tables
}

// Registry manages the pattern tables, one per language.
type Registry interface {
	Source

	// Register adds a table to the registry
	Register(pattern *LanguagePattern) error

	// Unregister removes the table for a language
	Unregister(language lang.Language) error

	// List returns all registered tables
	List() []*LanguagePattern

	// Reload reloads the built-in tables and the configured directory
	Reload() error

	// Watch starts watching the pattern directory for changes
	Watch() error

	// StopWatch stops watching the pattern directory
	StopWatch()

	// LoadDirectory loads all tables from a directory
	LoadDirectory(dir string) error

	// LoadFile loads a single table file
	LoadFile(path string) error
}

// DefaultRegistry is the default implementation of the pattern Registry.
// Tables are immutable once registered; reloading swaps them wholesale.
type DefaultRegistry struct {
	mu       sync.RWMutex
	patterns map[lang.Language]*LanguagePattern
	sources  map[lang.Language]string
	builtin  bool
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, pattern *LanguagePattern)
	logger   *slog.Logger
}

// NewRegistry creates an empty pattern registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		patterns: make(map[lang.Language]*LanguagePattern),
		sources:  make(map[lang.Language]string),
		logger:   slog.Default(),
	}
}

// NewDefaultRegistry creates a registry holding the built-in Nepali and
// English tables.
func NewDefaultRegistry() (*DefaultRegistry, error) {
	r := NewRegistry()
	if err := r.LoadBuiltin(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistryWithDirectory creates a registry with the built-in tables, then
// loads override tables from dir.
func NewRegistryWithDirectory(dir string) (*DefaultRegistry, error) {
	r, err := NewDefaultRegistry()
	if err != nil {
		return nil, err
	}
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

var (
	builtinOnce     sync.Once
	builtinRegistry *DefaultRegistry
)

// Builtin returns a shared read-only view of the built-in tables. The
// embedded tables are covered by tests, so failing to load them is a
// programming error.
func Builtin() Source {
	builtinOnce.Do(func() {
		r, err := NewDefaultRegistry()
		if err != nil {
			panic(fmt.Sprintf("pattern: loading built-in tables: %v", err))
		}
		builtinRegistry = r
	})
	return builtinRegistry
}

// SetLogger sets the logger used by the watch loop.
func (r *DefaultRegistry) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.logger = logger
}

// LoadBuiltin registers the embedded tables, replacing any table already
// registered for the same language.
func (r *DefaultRegistry) LoadBuiltin() error {
	tables := newTableSet()
	if err := tables.loadBuiltin(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tables.mergeInto(r.patterns, r.sources)
	r.builtin = true
	return nil
}

// tableSet collects parsed tables before they are published to a registry.
type tableSet struct {
	patterns map[lang.Language]*LanguagePattern
	sources  map[lang.Language]string
}

func newTableSet() *tableSet {
	return &tableSet{
		patterns: make(map[lang.Language]*LanguagePattern),
		sources:  make(map[lang.Language]string),
	}
}

func (t *tableSet) put(pattern *LanguagePattern, source string) {
	t.patterns[pattern.Language] = pattern
	t.sources[pattern.Language] = source
}

func (t *tableSet) mergeInto(patterns map[lang.Language]*LanguagePattern, sources map[lang.Language]string) {
	for language, pattern := range t.patterns {
		patterns[language] = pattern
		sources[language] = t.sources[language]
	}
}

func (t *tableSet) loadBuiltin() error {
	entries, err := builtinFS.ReadDir("patterns")
	if err != nil {
		return fmt.Errorf("reading built-in patterns: %w", err)
	}

	for _, entry := range entries {
		data, err := builtinFS.ReadFile("patterns/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading built-in pattern %s: %w", entry.Name(), err)
		}
		pattern, err := Parse(data)
		if err != nil {
			return fmt.Errorf("built-in pattern %s: %w", entry.Name(), err)
		}
		t.put(pattern, BuiltinSource)
	}
	return nil
}

// loadErrors lists the files of a directory that failed to load. The files
// that did load are still usable.
type loadErrors []string

func (e loadErrors) Error() string {
	return fmt.Sprintf("errors loading patterns: %s", strings.Join(e, "; "))
}

// loadDirectory parses every YAML file in dir. A missing directory is not an
// error.
func (t *tableSet) loadDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var failed loadErrors
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		pattern, err := parseFile(path)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		t.put(pattern, path)
	}

	if len(failed) > 0 {
		return failed
	}
	return nil
}

func parseFile(path string) (*LanguagePattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and compiles a YAML table.
func Parse(data []byte) (*LanguagePattern, error) {
	var pattern LanguagePattern
	if err := yaml.Unmarshal(data, &pattern); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := pattern.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	if err := pattern.Compile(); err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern.Name, err)
	}
	return &pattern, nil
}

// WriteYAML encodes a table as YAML.
func WriteYAML(w io.Writer, pattern *LanguagePattern) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(pattern); err != nil {
		return fmt.Errorf("encoding pattern: %w", err)
	}
	return enc.Close()
}

// Register adds a table to the registry. A table for the same language and
// version that did not come from the built-ins is rejected as a duplicate.
func (r *DefaultRegistry) Register(pattern *LanguagePattern) error {
	if pattern == nil {
		return fmt.Errorf("pattern cannot be nil")
	}

	if err := pattern.Validate(); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	if !pattern.IsCompiled() {
		if err := pattern.Compile(); err != nil {
			return fmt.Errorf("compiling pattern %q: %w", pattern.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.patterns[pattern.Language]; ok {
		if existing.Version == pattern.Version && r.sources[pattern.Language] != BuiltinSource {
			return fmt.Errorf("pattern for %s version %s already registered", pattern.Language, pattern.Version)
		}
	}

	r.patterns[pattern.Language] = pattern
	r.sources[pattern.Language] = "registered"
	return nil
}

func (r *DefaultRegistry) put(pattern *LanguagePattern, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[pattern.Language] = pattern
	r.sources[pattern.Language] = source
}

// Unregister removes the table for a language.
func (r *DefaultRegistry) Unregister(language lang.Language) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patterns[language]; !ok {
		return fmt.Errorf("pattern for %s not found", language)
	}

	delete(r.patterns, language)
	delete(r.sources, language)
	return nil
}

// Get returns the table for a language.
func (r *DefaultRegistry) Get(language lang.Language) (*LanguagePattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern, ok := r.patterns[language]
	return pattern, ok
}

// SourceOf returns where the table for a language was loaded from: a file
// path, BuiltinSource, or "registered".
func (r *DefaultRegistry) SourceOf(language lang.Language) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[language]
}

// List returns all registered tables ordered by language.
func (r *DefaultRegistry) List() []*LanguagePattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]*LanguagePattern, 0, len(r.patterns))
	for _, p := range r.patterns {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].Language < patterns[j].Language
	})
	return patterns
}

// Count returns the number of registered tables.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// Dir returns the configured override directory.
func (r *DefaultRegistry) Dir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dir
}

// LoadDirectory loads all YAML table files from a directory. A missing
// directory is not an error. Files that fail to parse are reported together;
// the others are still registered.
func (r *DefaultRegistry) LoadDirectory(dir string) error {
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()

	tables := newTableSet()
	err := tables.loadDirectory(dir)

	r.mu.Lock()
	tables.mergeInto(r.patterns, r.sources)
	r.mu.Unlock()
	return err
}

// LoadFile loads a single table file. The table replaces whatever is
// registered for its language.
func (r *DefaultRegistry) LoadFile(path string) error {
	pattern, err := parseFile(path)
	if err != nil {
		return err
	}
	r.put(pattern, path)
	return nil
}

// Reload rebuilds the built-in tables (when the registry was seeded with
// them) and the configured directory, then swaps the result in at once.
// Readers see either the old tables or the new ones, never an empty
// registry. If the directory cannot be read the current tables are kept.
func (r *DefaultRegistry) Reload() error {
	r.mu.RLock()
	dir, builtin := r.dir, r.builtin
	r.mu.RUnlock()

	tables := newTableSet()
	if builtin {
		if err := tables.loadBuiltin(); err != nil {
			return err
		}
	}

	var failed error
	if dir != "" {
		if err := tables.loadDirectory(dir); err != nil {
			var partial loadErrors
			if !errors.As(err, &partial) {
				return err
			}
			failed = err
		}
	}

	r.mu.Lock()
	r.patterns = tables.patterns
	r.sources = tables.sources
	r.mu.Unlock()
	return failed
}

// Snapshot returns the tables registered right now, taken under a single
// lock.
func (r *DefaultRegistry) Snapshot() Tables {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make(Tables, len(r.patterns))
	for language, pattern := range r.patterns {
		tables[language] = pattern
	}
	return tables
}

// SetOnChange sets a callback function that is called when tables change.
func (r *DefaultRegistry) SetOnChange(fn func(event string, pattern *LanguagePattern)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Watch starts watching the pattern directory for changes.
func (r *DefaultRegistry) Watch() error {
	dir := r.Dir()
	if dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan)

	r.logger.Info("watching pattern directory", "dir", dir)
	return nil
}

// watchLoop handles file system events.
func (r *DefaultRegistry) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")

			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")

			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("pattern watcher error", "err", err)
		}
	}
}

// handleFileChange handles file creation or modification. A broken edit
// keeps the previous table in place.
func (r *DefaultRegistry) handleFileChange(path string, eventType string) {
	if err := r.LoadFile(path); err != nil {
		r.logger.Warn("pattern file rejected", "path", path, "event", eventType, "err", err)
		return
	}
	r.logger.Info("pattern file loaded", "path", path, "event", eventType)

	r.mu.RLock()
	onChange := r.onChange
	r.mu.RUnlock()
	if onChange != nil {
		if pattern, ok := r.patternByFile(path); ok {
			onChange(eventType, pattern)
		}
	}
}

// handleFileRemove falls back to a full reload, which restores the built-in
// table for a language whose override was removed.
func (r *DefaultRegistry) handleFileRemove(path string) {
	if err := r.Reload(); err != nil {
		r.logger.Warn("pattern reload failed", "path", path, "err", err)
	} else {
		r.logger.Info("pattern file removed", "path", path)
	}

	r.mu.RLock()
	onChange := r.onChange
	r.mu.RUnlock()
	if onChange != nil {
		onChange("remove", nil)
	}
}

// patternByFile finds the table that was loaded from the given file.
func (r *DefaultRegistry) patternByFile(path string) (*LanguagePattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for language, source := range r.sources {
		if source == path {
			return r.patterns[language], true
		}
	}
	return nil, false
}

// StopWatch stops watching the pattern directory.
func (r *DefaultRegistry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

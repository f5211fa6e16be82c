// Package manager implements the duckpond session manager: a persistent
// façade that translates a MySQL-like command surface onto an embedded
// DuckDB engine, tracks multiple attached database files under sanitized
// aliases, and persists the attachment topology across process restarts.
package manager

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/duckpond/internal/command"
	"github.com/mesh-intelligence/duckpond/internal/dialect"
	"github.com/mesh-intelligence/duckpond/internal/engine"
	"github.com/mesh-intelligence/duckpond/internal/ident"
	"github.com/mesh-intelligence/duckpond/internal/lockfile"
	"github.com/mesh-intelligence/duckpond/internal/paths"
	"github.com/mesh-intelligence/duckpond/pkg/types"
)

// attachment records one attached database: the sanitized catalog name
// registered with the engine and the absolute path of the backing file.
type attachment struct {
	Catalog string
	Path    string
}

// Manager owns the attachment registry and the primary engine connection.
// It is not safe for concurrent use from multiple goroutines without the
// internal mutex; all public methods serialize on it.
type Manager struct {
	mu  sync.Mutex
	log *zap.Logger

	sessionID  string
	eng        engine.Engine
	translator dialect.Translator

	dataDir   string
	statePath string

	primaryURL      string
	primaryPath     string // absolute backing file, empty when in-memory
	primaryInMemory bool
	primaryAlias    string // "memory" when in-memory, "main" otherwise
	primaryInternal string // the engine's own name for the primary catalog

	attachments map[string]attachment
	current     string
}

// New constructs a Manager against a real DuckDB engine. The data directory
// is created if missing. For a file-backed primary database, a stale lock
// left by a crashed process is probed and cleared before the connection is
// opened.
func New(cfg types.Config) (*Manager, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	url := cfg.MainURL
	if url != types.InMemoryURL {
		resolved, err := paths.Resolve(cfg.DataDir, url, true)
		if err != nil {
			return nil, fmt.Errorf("resolve primary database path: %w", err)
		}
		url = resolved

		if _, statErr := os.Stat(url); statErr == nil {
			if _, probeErr := lockfile.ProbeAndClearStaleLock(url, cfg.Logger); probeErr != nil {
				return nil, fmt.Errorf("probe primary database: %w", probeErr)
			}
		}
	}

	eng, err := engine.Open(url)
	if err != nil {
		return nil, err
	}

	m, err := newWithEngine(cfg, eng, dialect.NewRuleTranslator())
	if err != nil {
		eng.Close()
		return nil, err
	}
	return m, nil
}

// newWithEngine wires a Manager onto an already-open engine. Tests use it to
// substitute a fake engine.
func newWithEngine(cfg types.Config, eng engine.Engine, tr dialect.Translator) (*Manager, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	internal, err := eng.CurrentCatalog()
	if err != nil {
		return nil, fmt.Errorf("read primary catalog name: %w", err)
	}

	inMemory := cfg.MainURL == types.InMemoryURL
	alias := "main"
	if inMemory {
		alias = "memory"
	}

	primaryPath := ""
	if !inMemory {
		primaryPath, err = paths.Resolve(cfg.DataDir, cfg.MainURL, false)
		if err != nil {
			return nil, fmt.Errorf("resolve primary database path: %w", err)
		}
	}

	m := &Manager{
		log:             cfg.Logger,
		sessionID:       uuid.NewString(),
		eng:             eng,
		translator:      tr,
		dataDir:         cfg.DataDir,
		statePath:       cfg.StatePath,
		primaryURL:      cfg.MainURL,
		primaryPath:     primaryPath,
		primaryInMemory: inMemory,
		primaryAlias:    alias,
		primaryInternal: internal,
		attachments:     make(map[string]attachment),
		current:         alias,
	}
	m.log = m.log.With(zap.String("session_id", m.sessionID))

	if m.statePath != "" {
		if !m.loadStateLocked() {
			m.autoDiscoverLocked()
		}
	}
	return m, nil
}

// withDefaults fills in the defaulted Config fields.
func withDefaults(cfg types.Config) types.Config {
	if cfg.MainURL == "" {
		cfg.MainURL = types.InMemoryURL
	}
	if cfg.DataDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DataDir = cwd
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

// SessionID returns the unique identifier of this manager instance.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// ExecuteQuery classifies and executes one statement: management commands
// mutate the attachment registry directly, everything else is translated
// from the MySQL surface dialect and handed to the engine.
func (m *Manager) ExecuteQuery(sql string) (*types.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng == nil {
		return nil, types.ErrManagerClosed
	}

	st := command.Classify(sql)
	switch st.Kind {
	case command.Attach:
		return m.executeAttach(st)
	case command.Detach:
		return m.executeDetach(st)
	case command.CreateDatabase:
		return m.executeCreate(st)
	case command.DropDatabase:
		return m.executeDrop(st)
	case command.Use:
		return m.executeUse(st)
	default:
		return m.executePassthrough(st)
	}
}

func (m *Manager) executeAttach(st command.Statement) (*types.Result, error) {
	alias := ident.Unquote(st.Name)
	catalog, err := ident.Sanitize(alias)
	if err != nil {
		return nil, err
	}

	path, err := paths.Resolve(m.dataDir, st.Path, true)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	// Re-attach replaces: any existing attachment under this sanitized
	// name is detached first so the second attach never duplicates.
	for existing, att := range m.attachments {
		if att.Catalog != catalog {
			continue
		}
		if m.current == existing {
			if serr := m.switchToPrimaryLocked(); serr != nil {
				return nil, serr
			}
		}
		if derr := m.eng.Detach(att.Catalog); derr != nil {
			m.log.Warn("detach before re-attach failed",
				zap.String("alias", existing), zap.Error(derr))
		}
		delete(m.attachments, existing)
	}

	if path != types.InMemoryURL {
		if err := removeEmptyFile(path); err != nil {
			return nil, fmt.Errorf("prepare database file: %w", err)
		}
	}

	if err := m.eng.Attach(path, catalog); err != nil {
		return nil, fmt.Errorf("attach database: %w", err)
	}
	m.attachments[alias] = attachment{Catalog: catalog, Path: path}
	m.persistLocked()

	return &types.Result{IsDDL: true, Command: st.Kind.String()}, nil
}

func (m *Manager) executeDetach(st command.Statement) (*types.Result, error) {
	alias := ident.Unquote(st.Name)
	if m.isPrimaryAlias(alias) {
		return nil, types.NewPrimaryUndetachable(alias)
	}

	att, ok := m.attachments[alias]
	if !ok {
		return nil, types.NewUnknownDatabase(alias)
	}

	if m.current == alias {
		if err := m.switchToPrimaryLocked(); err != nil {
			return nil, err
		}
	}
	if err := m.eng.Detach(att.Catalog); err != nil {
		return nil, fmt.Errorf("detach database: %w", err)
	}
	delete(m.attachments, alias)
	m.persistLocked()

	return &types.Result{IsDDL: true, Command: st.Kind.String()}, nil
}

func (m *Manager) executeCreate(st command.Statement) (*types.Result, error) {
	name := ident.Unquote(st.Name)
	if !ident.ValidDatabaseName(name) {
		return nil, &types.NamingError{Name: name, Reason: "must contain only letters, digits, underscore, or hyphen"}
	}
	catalog, err := ident.Sanitize(name)
	if err != nil {
		return nil, err
	}

	path, err := paths.Resolve(m.dataDir, name, false)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	exists := false
	if _, ok := m.attachments[name]; ok {
		exists = true
	}
	if !exists {
		for _, att := range m.attachments {
			if att.Catalog == catalog {
				exists = true
				break
			}
		}
	}
	if !exists && fileExists(path) {
		exists = true
	}

	if exists {
		if st.IfNotExists {
			return &types.Result{IsDDL: true, Command: st.Kind.String()}, nil
		}
		return nil, types.NewDatabaseExists(name)
	}

	if _, err := paths.Resolve(m.dataDir, name, true); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	// The engine materializes the file itself. A failed create must not
	// leave a partial file behind.
	if err := m.eng.Attach(path, catalog); err != nil {
		if fileExists(path) {
			os.Remove(path)
		}
		return nil, fmt.Errorf("create database: %w", err)
	}
	m.attachments[name] = attachment{Catalog: catalog, Path: path}
	m.persistLocked()

	return &types.Result{AffectedRows: 1, IsDDL: true, Command: st.Kind.String()}, nil
}

func (m *Manager) executeDrop(st command.Statement) (*types.Result, error) {
	name := ident.Unquote(st.Name)

	// Sanitization is speculative here: a name that cannot sanitize (for
	// example a reserved word) is simply never attached, so the drop
	// falls through to the not-found handling.
	attachedAlias := ""
	attached := false
	if catalog, serr := ident.Sanitize(name); serr == nil {
		if _, ok := m.attachments[name]; ok {
			attachedAlias, attached = name, true
		} else {
			for a, att := range m.attachments {
				if att.Catalog == catalog {
					attachedAlias, attached = a, true
					break
				}
			}
		}
	}

	path, perr := paths.Resolve(m.dataDir, name, false)
	fileOnDisk := perr == nil && fileExists(path)
	if attached {
		if p := m.attachments[attachedAlias].Path; p != "" && p != types.InMemoryURL {
			path = p
			fileOnDisk = fileExists(p)
		}
	}

	if !attached && !fileOnDisk {
		if st.IfExists {
			return &types.Result{IsDDL: true, Command: st.Kind.String()}, nil
		}
		return nil, types.NewDatabaseMissing(name)
	}

	if attached {
		if m.current == attachedAlias {
			if err := m.switchToPrimaryLocked(); err != nil {
				return nil, err
			}
		}
		if err := m.eng.Detach(m.attachments[attachedAlias].Catalog); err != nil {
			return nil, fmt.Errorf("drop database: %w", err)
		}
		delete(m.attachments, attachedAlias)
	}

	if fileOnDisk {
		// Best effort: the catalog-side detach already made the
		// database unusable, a locked file is not a hard failure.
		if rerr := os.Remove(path); rerr != nil {
			m.log.Warn("could not remove dropped database file",
				zap.String("path", path), zap.Error(rerr))
		}
	}
	m.persistLocked()

	return &types.Result{IsDDL: true, Command: st.Kind.String()}, nil
}

func (m *Manager) executeUse(st command.Statement) (*types.Result, error) {
	name := ident.Unquote(st.Name)

	if m.isPrimaryAlias(name) {
		if err := m.switchToPrimaryLocked(); err != nil {
			return nil, err
		}
		m.persistLocked()
		return &types.Result{IsDDL: true, Command: st.Kind.String()}, nil
	}

	att, ok := m.attachments[name]
	if !ok {
		return nil, types.NewUnknownDatabase(name)
	}
	if err := m.eng.Use(att.Catalog, !ident.Reserved(att.Catalog)); err != nil {
		return nil, fmt.Errorf("use database: %w", err)
	}
	m.current = name
	m.persistLocked()

	return &types.Result{IsDDL: true, Command: st.Kind.String()}, nil
}

func (m *Manager) executePassthrough(st command.Statement) (*types.Result, error) {
	translated, err := m.translator.Translate(st.Raw, dialect.MySQL, dialect.DuckDB)
	if err != nil {
		return nil, err
	}

	res := &types.Result{Command: command.LeadingKeyword(st.Raw)}

	if command.ProducesRows(translated) {
		cols, rows, qerr := m.eng.Query(translated)
		if qerr != nil {
			return nil, qerr
		}
		data := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			rec := make(map[string]any, len(cols))
			for i, c := range cols {
				rec[c] = row[i]
			}
			data = append(data, rec)
		}
		if mentionsCatalogListing(st.Raw) || mentionsCatalogListing(translated) {
			m.maskPrimaryCatalog(data)
		}
		res.Data = data
		return res, nil
	}

	n, xerr := m.eng.Exec(translated)
	if xerr != nil {
		return nil, xerr
	}
	res.AffectedRows = n
	res.IsDDL = isDDLKeyword(res.Command)
	return res, nil
}

// maskPrimaryCatalog rewrites catalog-listing rows so the engine's internal
// name for the primary database never leaks; callers only ever see the
// user-facing alias.
func (m *Manager) maskPrimaryCatalog(data []map[string]any) {
	for _, row := range data {
		for _, col := range []string{"database_name", "name"} {
			if v, ok := row[col]; ok {
				if s, isStr := v.(string); isStr && s == m.primaryInternal {
					row[col] = m.primaryAlias
				}
			}
		}
	}
}

// switchToPrimaryLocked points the session back at the primary database.
// The engine is addressed by its internal catalog name; the user-visible
// current alias falls back to the primary alias when that internal name is
// reserved.
func (m *Manager) switchToPrimaryLocked() error {
	name := m.primaryInternal
	if name == "" {
		name = m.primaryAlias
	}
	if err := m.eng.Use(name, !ident.Reserved(name)); err != nil {
		return fmt.Errorf("use primary database: %w", err)
	}
	if ident.Reserved(name) {
		m.current = m.primaryAlias
	} else {
		m.current = name
	}
	return nil
}

// isPrimaryAlias reports whether name addresses the primary database, by
// either its user-facing alias or the engine's internal catalog name.
func (m *Manager) isPrimaryAlias(name string) bool {
	return name == m.primaryAlias || (m.primaryInternal != "" && name == m.primaryInternal)
}

// DatabaseNames returns every known alias: the attachments plus the primary
// database, sorted.
func (m *Manager) DatabaseNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.attachments)+1)
	names = append(names, m.primaryAlias)
	for alias := range m.attachments {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// CurrentAlias returns the alias active for unqualified statements.
func (m *Manager) CurrentAlias() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SaveState writes the attachment topology snapshot. No-op when persistence
// is disabled.
func (m *Manager) SaveState() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveStateLocked()
}

// CloseMainConnection persists state, closes the engine connection, and
// resets the session pointers to an inert in-memory default. The attachment
// map is left untouched.
func (m *Manager) CloseMainConnection() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng == nil {
		return nil
	}
	if err := m.saveStateLocked(); err != nil {
		m.log.Warn("could not persist state on close", zap.Error(err))
	}

	err := m.eng.Close()
	m.eng = nil
	m.primaryURL = types.InMemoryURL
	m.primaryPath = ""
	m.primaryInMemory = true
	m.primaryAlias = "memory"
	m.primaryInternal = "memory"
	m.current = "memory"
	return err
}

// Close is an alias for CloseMainConnection.
func (m *Manager) Close() error {
	return m.CloseMainConnection()
}

// persistLocked snapshots state after a successful management command.
// Persistence failures are logged, not escalated: the command itself
// succeeded.
func (m *Manager) persistLocked() {
	if err := m.saveStateLocked(); err != nil {
		m.log.Warn("could not persist state snapshot", zap.Error(err))
	}
}

// removeEmptyFile clears a zero-length file at path. The engine initializes
// a missing file on attach but refuses one that exists and is empty, so an
// empty leftover is deleted out of the way first.
func removeEmptyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() || info.Size() > 0 {
		return nil
	}
	return os.Remove(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// mentionsCatalogListing reports whether the statement touches the engine's
// database-listing view, which is the trigger for alias masking.
func mentionsCatalogListing(sql string) bool {
	return strings.Contains(strings.ToLower(sql), "duckdb_databases")
}

func isDDLKeyword(keyword string) bool {
	switch keyword {
	case "CREATE", "DROP", "ALTER", "ATTACH", "DETACH", "TRUNCATE", "COMMENT":
		return true
	default:
		return false
	}
}

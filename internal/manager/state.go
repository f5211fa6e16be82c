package manager

// State snapshot persistence: serializes the attachment registry to a JSON
// file after every management command and rehydrates it on startup, falling
// back to filesystem auto-discovery when no usable snapshot exists.

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/duckpond/internal/ident"
	"github.com/mesh-intelligence/duckpond/internal/paths"
)

// snapshotEntry records one attached database in the snapshot file. Path is
// relative to the data directory when possible.
type snapshotEntry struct {
	Sanitized string `json:"sanitized"`
	Path      string `json:"path"`
}

// snapshot is the on-disk JSON state format.
type snapshot struct {
	Attached            map[string]snapshotEntry `json:"attached"`
	Current             string                   `json:"current"`
	PrimaryInternalName string                   `json:"primary_internal_name"`
}

// saveStateLocked writes the snapshot using the temp-file-then-rename
// pattern. No-op when persistence is disabled. The caller holds m.mu.
func (m *Manager) saveStateLocked() error {
	if m.statePath == "" {
		return nil
	}

	snap := snapshot{
		Attached:            make(map[string]snapshotEntry, len(m.attachments)+1),
		Current:             m.current,
		PrimaryInternalName: m.primaryInternal,
	}
	for alias, att := range m.attachments {
		snap.Attached[alias] = snapshotEntry{Sanitized: att.Catalog, Path: m.relPath(att.Path)}
	}
	if !m.primaryInMemory && m.primaryPath != "" {
		base := strings.TrimSuffix(filepath.Base(m.primaryPath), filepath.Ext(m.primaryPath))
		snap.Attached[base] = snapshotEntry{Sanitized: m.primaryInternal, Path: m.relPath(m.primaryPath)}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.statePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, m.statePath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// loadStateLocked replays a saved snapshot into the registry. Any failure,
// from a missing file to a corrupt snapshot to an attach error mid-replay,
// is treated as "no saved state": the session starts fresh rather than
// crashing on stale topology. Returns whether the snapshot was applied.
func (m *Manager) loadStateLocked() bool {
	if m.statePath == "" {
		return false
	}

	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("could not read state snapshot", zap.Error(err))
		}
		return false
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		m.log.Warn("state snapshot unreadable, starting fresh", zap.Error(err))
		return false
	}

	for alias, entry := range snap.Attached {
		p := entry.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.dataDir, p)
		}
		abs, aerr := filepath.Abs(p)
		if aerr != nil {
			m.log.Warn("state snapshot replay failed, starting fresh", zap.Error(aerr))
			return false
		}
		if !m.primaryInMemory && abs == m.primaryPath {
			// The primary database is recorded for bookkeeping but
			// is already open, never re-attached.
			continue
		}
		if err := m.eng.Attach(abs, entry.Sanitized); err != nil {
			m.log.Warn("state snapshot replay failed, starting fresh",
				zap.String("alias", alias), zap.Error(err))
			return false
		}
		m.attachments[alias] = attachment{Catalog: entry.Sanitized, Path: abs}
	}

	if snap.PrimaryInternalName != "" {
		m.primaryInternal = snap.PrimaryInternalName
	}

	// Restore the active database only if it is still a valid target.
	if snap.Current != "" {
		switch {
		case m.isPrimaryAlias(snap.Current):
			if err := m.switchToPrimaryLocked(); err != nil {
				m.log.Warn("could not restore current database", zap.Error(err))
			}
		default:
			if att, ok := m.attachments[snap.Current]; ok {
				if err := m.eng.Use(att.Catalog, !ident.Reserved(att.Catalog)); err != nil {
					m.log.Warn("could not restore current database", zap.Error(err))
				} else {
					m.current = snap.Current
				}
			}
		}
	}
	return true
}

// autoDiscoverLocked scans the data directory for database files and
// attaches each viable candidate under its base name. Invoked only when no
// snapshot could be applied. Files that fail to attach are skipped
// silently; the scan concludes by writing a fresh snapshot.
func (m *Manager) autoDiscoverLocked() {
	_ = filepath.WalkDir(m.dataDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), paths.DefaultSuffix) {
			return nil
		}
		abs, aerr := filepath.Abs(p)
		if aerr != nil {
			return nil
		}
		if !m.primaryInMemory && abs == m.primaryPath {
			return nil
		}

		base := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if !ident.ValidDatabaseName(base) {
			return nil
		}
		if _, taken := m.attachments[base]; taken {
			return nil
		}
		catalog, serr := ident.Sanitize(base)
		if serr != nil {
			return nil
		}

		if err := m.eng.Attach(abs, catalog); err != nil {
			m.log.Debug("skipping database file that failed to attach",
				zap.String("path", abs), zap.Error(err))
			return nil
		}
		m.attachments[base] = attachment{Catalog: catalog, Path: abs}
		return nil
	})

	if err := m.saveStateLocked(); err != nil {
		m.log.Warn("could not persist discovered state", zap.Error(err))
	}
}

// relPath renders p relative to the data directory when possible, keeping
// absolute paths that escape it.
func (m *Manager) relPath(p string) string {
	rel, err := filepath.Rel(m.dataDir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

// Package ident converts user-supplied database names into identifiers that
// are safe for filesystem and catalog use, and validates names against the
// MySQL-style naming rules of the public command surface.
package ident

import (
	"regexp"
	"strings"

	"github.com/mesh-intelligence/duckpond/pkg/types"
)

// reserved catalog names that can never be produced by sanitization. They
// collide with the engine's internal catalogs or with path components.
var reserved = map[string]struct{}{
	"main":   {},
	"memory": {},
	"temp":   {},
	"system": {},
	".":      {},
	"..":     {},
}

var (
	nonWord   = regexp.MustCompile(`[^\w.]`)
	mysqlName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Reserved reports whether name case-insensitively matches a reserved
// catalog name.
func Reserved(name string) bool {
	_, ok := reserved[strings.ToLower(name)]
	return ok
}

// Unquote strips one layer of surrounding backticks, single quotes, or
// double quotes from name.
func Unquote(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 {
		first, last := name[0], name[len(name)-1]
		if first == last && (first == '`' || first == '\'' || first == '"') {
			return name[1 : len(name)-1]
		}
	}
	return name
}

// Sanitize maps a user-facing database name to a catalog-safe identifier.
// Every character outside [0-9A-Za-z_.] becomes an underscore, leading and
// trailing dots and underscores are trimmed, and a name whose first rune is
// not a letter or underscore is prefixed with an underscore.
//
// Sanitize is deterministic and idempotent. It fails with a NamingError when
// the result is empty, a lone underscore, or a reserved catalog name.
func Sanitize(name string) (string, error) {
	if Reserved(strings.TrimSpace(name)) {
		return "", &types.NamingError{Name: name, Reason: "reserved name"}
	}

	s := Unquote(name)
	s = nonWord.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")

	if s == "" || s == "_" {
		return "", &types.NamingError{Name: name, Reason: "sanitizes to an empty identifier"}
	}
	if Reserved(s) {
		return "", &types.NamingError{Name: name, Reason: "reserved name"}
	}
	if first := s[0]; !(first == '_' || ('a' <= first && first <= 'z') || ('A' <= first && first <= 'Z')) {
		s = "_" + s
	}
	return s, nil
}

// ValidDatabaseName reports whether name satisfies the MySQL-style rules of
// the command surface: non-empty, letters, digits, underscore, or hyphen
// only, and not "." or "..".
func ValidDatabaseName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return mysqlName.MatchString(name)
}

// Package command classifies incoming SQL-like statements into the tagged
// management variants handled by the manager, falling through to Passthrough
// for everything else. Classification happens exactly once per statement;
// the general-purpose dialect translator never sees management commands.
package command

import (
	"regexp"
	"strings"
)

// Kind identifies the management variant of a statement.
type Kind int

const (
	Passthrough Kind = iota
	Attach
	Detach
	CreateDatabase
	DropDatabase
	Use
)

// String returns the command keyword for the kind.
func (k Kind) String() string {
	switch k {
	case Attach:
		return "ATTACH"
	case Detach:
		return "DETACH"
	case CreateDatabase:
		return "CREATE DATABASE"
	case DropDatabase:
		return "DROP DATABASE"
	case Use:
		return "USE"
	default:
		return ""
	}
}

// Statement is the classified form of one incoming statement.
type Statement struct {
	Kind Kind

	// Raw is the original statement text, kept for Passthrough execution.
	Raw string

	// Path is the quoted file path of an Attach statement.
	Path string

	// Name is the database alias or name for every management variant.
	Name string

	// IfNotExists is set for CREATE DATABASE IF NOT EXISTS.
	IfNotExists bool

	// IfExists is set for DROP DATABASE IF EXISTS.
	IfExists bool
}

// Case-insensitive fast-path patterns for the management surface. Aliases
// and names may be bare or backtick-quoted; quote stripping is left to the
// sanitizer.
var (
	attachRe = regexp.MustCompile(`(?is)^\s*ATTACH\s+(?:DATABASE\s+)?'([^']+)'\s+AS\s+(\S+?)\s*;?\s*$`)
	detachRe = regexp.MustCompile(`(?is)^\s*DETACH\s+(?:DATABASE\s+)?(\S+?)\s*;?\s*$`)
	createRe = regexp.MustCompile(`(?is)^\s*CREATE\s+DATABASE\s+(?:(IF\s+NOT\s+EXISTS)\s+)?(\S+?)\s*;?\s*$`)
	dropRe   = regexp.MustCompile(`(?is)^\s*DROP\s+DATABASE\s+(?:(IF\s+EXISTS)\s+)?(\S+?)\s*;?\s*$`)
	useRe    = regexp.MustCompile(`(?is)^\s*USE\s+(\S+?)\s*;?\s*$`)
)

// Classify parses sql into a Statement. Unrecognized statements come back as
// Passthrough with Raw preserved.
func Classify(sql string) Statement {
	if m := attachRe.FindStringSubmatch(sql); m != nil {
		return Statement{Kind: Attach, Raw: sql, Path: m[1], Name: m[2]}
	}
	if m := detachRe.FindStringSubmatch(sql); m != nil {
		return Statement{Kind: Detach, Raw: sql, Name: m[1]}
	}
	if m := createRe.FindStringSubmatch(sql); m != nil {
		return Statement{Kind: CreateDatabase, Raw: sql, Name: m[2], IfNotExists: m[1] != ""}
	}
	if m := dropRe.FindStringSubmatch(sql); m != nil {
		return Statement{Kind: DropDatabase, Raw: sql, Name: m[2], IfExists: m[1] != ""}
	}
	if m := useRe.FindStringSubmatch(sql); m != nil {
		return Statement{Kind: Use, Raw: sql, Name: m[1]}
	}
	return Statement{Kind: Passthrough, Raw: sql}
}

// LeadingKeyword returns the upper-cased first keyword of sql, such as
// "SELECT" or "INSERT". Used to populate the Command field of results.
func LeadingKeyword(sql string) string {
	fields := strings.Fields(strings.TrimSpace(sql))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimRight(fields[0], ";"))
}

// ProducesRows reports whether the statement is expected to return a row
// set rather than an affected-row count.
func ProducesRows(sql string) bool {
	switch LeadingKeyword(sql) {
	case "SELECT", "WITH", "SHOW", "DESCRIBE", "DESC", "PRAGMA", "EXPLAIN", "VALUES", "FROM", "TABLE", "CALL":
		return true
	default:
		return false
	}
}

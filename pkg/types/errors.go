package types

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the session manager.
var (
	// ErrManagerClosed is returned by every operation after the main
	// connection has been closed.
	ErrManagerClosed = errors.New("manager is closed")
)

// NamingError reports a database name that cannot be used, either because it
// fails MySQL-style validation or because it sanitizes to a reserved or empty
// catalog identifier. It is raised before any engine interaction.
type NamingError struct {
	Name   string
	Reason string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("invalid database name %q: %s", e.Name, e.Reason)
}

// CatalogError reports DDL that is logically invalid against the current
// catalog: creating a database that exists, dropping one that does not,
// switching to an unknown database, or detaching the primary database.
type CatalogError struct {
	Message string
}

func (e *CatalogError) Error() string {
	return e.Message
}

// NewDatabaseExists builds the CatalogError for CREATE DATABASE on an
// existing name without IF NOT EXISTS.
func NewDatabaseExists(name string) *CatalogError {
	return &CatalogError{Message: fmt.Sprintf("can't create database %q; database exists", name)}
}

// NewDatabaseMissing builds the CatalogError for DROP DATABASE on a missing
// name without IF EXISTS.
func NewDatabaseMissing(name string) *CatalogError {
	return &CatalogError{Message: fmt.Sprintf("can't drop database %q; database doesn't exist", name)}
}

// NewUnknownDatabase builds the CatalogError for USE of an unknown name.
func NewUnknownDatabase(name string) *CatalogError {
	return &CatalogError{Message: fmt.Sprintf("unknown database %q", name)}
}

// NewPrimaryUndetachable builds the CatalogError for DETACH of the primary
// database, which can never be detached.
func NewPrimaryUndetachable(name string) *CatalogError {
	return &CatalogError{Message: fmt.Sprintf("cannot detach database %q: it is the primary database", name)}
}

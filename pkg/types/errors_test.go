package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingError(t *testing.T) {
	err := &NamingError{Name: "main", Reason: "name is reserved"}
	assert.Equal(t, `invalid database name "main": name is reserved`, err.Error())

	wrapped := fmt.Errorf("execute: %w", err)
	var namingErr *NamingError
	assert.True(t, errors.As(wrapped, &namingErr))
	assert.Equal(t, "main", namingErr.Name)
}

func TestCatalogErrorConstructors(t *testing.T) {
	assert.Equal(t, `can't create database "sales"; database exists`, NewDatabaseExists("sales").Error())
	assert.Equal(t, `can't drop database "sales"; database doesn't exist`, NewDatabaseMissing("sales").Error())
	assert.Equal(t, `unknown database "sales"`, NewUnknownDatabase("sales").Error())
	assert.Equal(t, `cannot detach database "memory": it is the primary database`, NewPrimaryUndetachable("memory").Error())

	wrapped := fmt.Errorf("execute: %w", NewDatabaseExists("sales"))
	var catalogErr *CatalogError
	assert.True(t, errors.As(wrapped, &catalogErr))
}

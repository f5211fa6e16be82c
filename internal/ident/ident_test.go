package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/duckpond/pkg/types"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "sales", "sales"},
		{"backtick quoted", "`sales`", "sales"},
		{"single quoted", "'sales'", "sales"},
		{"hyphen becomes underscore", "my-db", "my_db"},
		{"space becomes underscore", "my db", "my_db"},
		{"leading digit gets prefix", "2024data", "_2024data"},
		{"leading dot trimmed", ".hidden", "hidden"},
		{"trailing underscore trimmed", "name_", "name"},
		{"inner dot kept", "a.b", "a.b"},
		{"mixed garbage", "a/b\\c", "a_b_c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{"sales", "my-db", "2024data", "a b c", "`quoted`", "x.y"}
	for _, in := range inputs {
		first, err := Sanitize(in)
		require.NoError(t, err)
		second, err := Sanitize(first)
		require.NoError(t, err)
		assert.Equal(t, first, second, "Sanitize not idempotent for %q", in)
	}
}

func TestSanitize_Rejected(t *testing.T) {
	rejected := []string{
		"main", "Memory", "TEMP", "system", ".", "..",
		"!!!", "...", "", "_", "___", "`main`",
	}
	for _, in := range rejected {
		t.Run(in, func(t *testing.T) {
			_, err := Sanitize(in)
			require.Error(t, err)

			var namingErr *types.NamingError
			assert.ErrorAs(t, err, &namingErr)
		})
	}
}

func TestValidDatabaseName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"sales", true},
		{"sales_2024", true},
		{"my-db", true},
		{"UPPER", true},
		{"", false},
		{".", false},
		{"..", false},
		{"a.b", false},
		{"a b", false},
		{"a/b", false},
		{"a;b", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidDatabaseName(tt.in), "ValidDatabaseName(%q)", tt.in)
	}
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "x", Unquote("`x`"))
	assert.Equal(t, "x", Unquote(`"x"`))
	assert.Equal(t, "x", Unquote("'x'"))
	assert.Equal(t, "x", Unquote("  x  "))
	assert.Equal(t, "`x", Unquote("`x"))
}

func TestReserved(t *testing.T) {
	for _, name := range []string{"main", "MAIN", "memory", "temp", "system", ".", ".."} {
		assert.True(t, Reserved(name), "Reserved(%q)", name)
	}
	assert.False(t, Reserved("sales"))
}

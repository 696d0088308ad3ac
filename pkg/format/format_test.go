package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIRI(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "https url", value: "https://example.org/badges/1", want: true},
		{name: "urn uuid", value: "urn:uuid:91537dba-56cb-11ec-bf63-0242ac130002", want: true},
		{name: "did", value: "did:example:ebfeb1f712ebc6f1c276e12ec21", want: true},
		{name: "mailto", value: "mailto:alice@example.org", want: true},
		{name: "relative path", value: "/badges/1", want: false},
		{name: "no scheme", value: "not-a-valid-iri", want: false},
		{name: "empty", value: "", want: false},
		{name: "whitespace", value: "https://example.org/a b", want: false},
		{name: "scheme only", value: "https:", want: false},
		{name: "not a string", value: 42, want: false},
		{name: "nil", value: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIRI(tt.value))
		})
	}
}

func TestIsDateTime(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "utc", value: "2023-01-01T00:00:00Z", want: true},
		{name: "fraction", value: "2023-01-01T00:00:00.123Z", want: true},
		{name: "offset", value: "2016-12-31T23:59:59+00:00", want: true},
		{name: "negative offset", value: "2016-12-31T23:59:59-05:30", want: true},
		{name: "date only", value: "2023-01-01", want: false},
		{name: "time only", value: "12:00:00Z", want: false},
		{name: "no zone", value: "2023-01-01T00:00:00", want: false},
		{name: "space separator", value: "2023-01-01 00:00:00Z", want: false},
		{name: "compact offset", value: "2023-01-01T00:00:00+0000", want: false},
		{name: "not a string", value: 20230101, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDateTime(tt.value))
		})
	}
}

func TestParseDateTime(t *testing.T) {
	got, ok := ParseDateTime("2016-12-31T23:59:59+01:00")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2016, 12, 31, 22, 59, 59, 0, time.UTC)))

	_, ok = ParseDateTime("2023-02-30T00:00:00Z")
	assert.False(t, ok, "impossible day must not parse")

	_, ok = ParseDateTime("2023-01-01")
	assert.False(t, ok)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("contact@example.org"))
	assert.False(t, IsEmail("Contact <contact@example.org>"))
	assert.False(t, IsEmail("example.org"))
	assert.False(t, IsEmail(""))
	assert.False(t, IsEmail(nil))
}

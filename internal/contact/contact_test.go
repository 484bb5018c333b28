package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	got, ok := NormalizeEmail("Contact me at jane.doe@example.com please")
	require.True(t, ok)
	assert.Equal(t, "jane.doe@example.com", got)

	_, ok = NormalizeEmail("no address here")
	assert.False(t, ok)

	_, ok = NormalizeEmail("user@localhost")
	assert.False(t, ok, "top-level label needs two letters")

	got, _ = NormalizeEmail("a@b.io and c@d.org")
	assert.Equal(t, "a@b.io", got)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Phone: +1 555-123-4567", "+1 555-123-4567", true},
		{"call 13800138000 now", "13800138000", true},
		{"tel 555-1234", "555-1234", false},
		{"Year 2021", "", false},
		{"no digits", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhone(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	got, ok := NormalizeName("Jane Marie Doe\nSoftware Engineer")
	require.True(t, ok)
	assert.Equal(t, "Jane Marie Doe", got)

	got, ok = NormalizeName("\n\n   Jane Doe  \nEngineer")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", got)

	_, ok = NormalizeName("one two three four five six seven eight nine ten\nJane Doe")
	assert.False(t, ok)

	_, ok = NormalizeName("Jane\nDoe Smith")
	assert.False(t, ok, "only the first non-blank line is considered")

	_, ok = NormalizeName("   \n  ")
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	c := Extract("Jane Doe\njane@example.com | +44 20 7946 0958")
	require.NotNil(t, c.Name)
	require.NotNil(t, c.Email)
	require.NotNil(t, c.Phone)
	assert.Equal(t, "Jane Doe", *c.Name)
	assert.Equal(t, "jane@example.com", *c.Email)
	assert.Equal(t, "+44 20 7946 0958", *c.Phone)

	empty := Extract("")
	assert.Nil(t, empty.Name)
	assert.Nil(t, empty.Email)
	assert.Nil(t, empty.Phone)
}

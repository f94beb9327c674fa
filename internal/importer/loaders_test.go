package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want string
	}{
		{"24-Sep-24", true, "2024-09-24"},
		{"2024-09-24", true, "2024-09-24"},
		{"09/24/2024", true, "2024-09-24"},
		{"9/4/2024", true, "2024-09-04"},
		{"not a date", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		got, ok := parseDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got.Format("2006-01-02"), tt.in)
		}
	}
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Mike Lieberman")
	assert.Equal(t, "Mike", first)
	assert.Equal(t, "Lieberman", last)

	first, last = splitName("Mary Jo Van Dyke")
	assert.Equal(t, "Mary", first)
	assert.Equal(t, "Jo Van Dyke", last)

	first, last = splitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)

	first, last = splitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}

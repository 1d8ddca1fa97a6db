package validate

import (
	"testing"

	"github.com/avirbig/cohen-services-hub/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "mobile with hyphen", input: "050-1234567", want: true},
		{name: "mobile plain", input: "0501234567", want: true},
		{name: "mobile country code", input: "+972-50-1234567", want: true},
		{name: "mobile country code without plus", input: "972501234567", want: true},
		{name: "mobile with spaces and parens", input: "(050) 123 4567", want: true},
		{name: "jerusalem landline", input: "02-6234567", want: true},
		{name: "tel aviv landline", input: "03 5123456", want: true},
		{name: "landline country code", input: "+972 3 5123456", want: true},
		{name: "voip nine digit area", input: "077-1234567", want: true},
		{name: "too short", input: "123456", want: false},
		{name: "leading one", input: "0101234567", want: false},
		{name: "too many digits", input: "05012345678", want: false},
		{name: "letters", input: "050-12345ab", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPhone(tt.input))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.co"))
	assert.True(t, IsValidEmail("dana.cohen+quote@example.co.il"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("no-at-sign.com"))
	assert.False(t, IsValidEmail("two words@example.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsPresent(t *testing.T) {
	assert.True(t, IsPresent("x"))
	assert.False(t, IsPresent("   \t"))
	assert.False(t, IsPresent(""))
}

func TestIsAcceptedFileType(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want bool
	}{
		{name: "jpeg", typ: "image/jpeg", want: true},
		{name: "upper case", typ: "IMAGE/PNG", want: true},
		{name: "with parameters", typ: "image/heic; charset=binary", want: true},
		{name: "pdf", typ: "application/pdf", want: false},
		{name: "empty", typ: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := model.RawFile{Name: "f", Type: tt.typ}
			assert.Equal(t, tt.want, IsAcceptedFileType(f, DefaultAllowedTypes))
		})
	}
}

func TestIsWithinSizeLimit(t *testing.T) {
	limit := MaxBytesFromMB(5)
	assert.Equal(t, int64(5*1024*1024), limit)

	assert.True(t, IsWithinSizeLimit(model.RawFile{Size: 0}, limit))
	assert.True(t, IsWithinSizeLimit(model.RawFile{Size: limit}, limit))
	assert.False(t, IsWithinSizeLimit(model.RawFile{Size: limit + 1}, limit))
	assert.False(t, IsWithinSizeLimit(model.RawFile{Size: -1}, limit))
}

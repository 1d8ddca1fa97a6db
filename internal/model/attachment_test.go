package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollection_Lookup(t *testing.T) {
	c := Collection{{ID: "a", Name: "one.jpg"}, {ID: "b", Name: "two.png"}}

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.IndexOf("b"))
	assert.Equal(t, -1, c.IndexOf("missing"))
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has(""))
	assert.Equal(t, []string{"a", "b"}, c.IDs())
	assert.Equal(t, []string{"one.jpg", "two.png"}, c.Names())
}

func TestOutcome(t *testing.T) {
	assert.False(t, Pending().IsSettled())
	assert.True(t, Success("ok").IsSettled())
	assert.True(t, Failure("nope").IsSettled())
	assert.Equal(t, "failure", Failure("x").String())
}

package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Sortable(t *testing.T) {
	a := New()
	b := New()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestNewUUID(t *testing.T) {
	u := NewUUID()
	assert.True(t, IsUUID(u))
	assert.False(t, IsUUID("not-a-uuid"))
}

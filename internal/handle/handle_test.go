package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNode_String(t *testing.T) {
	testCases := []struct {
		name     string
		h        Node
		expected string
	}{
		{name: "zero handle", h: Node{}, expected: "node#nil"},
		{name: "issued handle", h: NewNode(3, 1), expected: "node#3/1"},
		{name: "reused slot", h: NewNode(3, 7), expected: "node#3/7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.h.String())
		})
	}
}

func TestParam_String(t *testing.T) {
	assert.Equal(t, "param#nil", Param{}.String())
	assert.Equal(t, "param#0/2", NewParam(0, 2).String())
}

func TestHandles_Comparable(t *testing.T) {
	a := NewNode(1, 1)
	b := NewNode(1, 1)
	stale := NewNode(1, 2)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, stale)
	assert.True(t, Node{}.IsZero())
	assert.False(t, a.IsZero())

	seen := map[Node]bool{a: true}
	assert.True(t, seen[b])
	assert.False(t, seen[stale])
}

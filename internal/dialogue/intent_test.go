package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDisclosureTree() (*Intent, *Intent, *Intent) {
	root := NewIntent("DISCLOSE")
	expand := NewSubIntent("DISCLOSE.EXPAND", root)
	refine := NewSubIntent("DISCLOSE.REFINE", root)
	return root, expand, refine
}

func TestSubIntentRegistersWithParentOnce(t *testing.T) {
	root, expand, refine := buildDisclosureTree()

	require.Len(t, root.Children(), 2)
	assert.Same(t, root, expand.Parent())
	assert.Same(t, root, refine.Parent())
	assert.True(t, root.IsRoot())
	assert.False(t, root.IsLeaf())
	assert.True(t, expand.IsLeaf())
	assert.Same(t, root, expand.Root())
}

func TestIntentEqualIgnoresChildOrder(t *testing.T) {
	a := NewIntent("DISCLOSE")
	NewSubIntent("EXPAND", a)
	NewSubIntent("REFINE", a)

	b := NewIntent("DISCLOSE")
	NewSubIntent("REFINE", b)
	NewSubIntent("EXPAND", b)

	assert.True(t, a.Equal(b))
}

func TestIntentEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Intent
		want bool
	}{
		{"same label roots", NewIntent("GREET"), NewIntent("GREET"), true},
		{"different labels", NewIntent("GREET"), NewIntent("EXIT"), false},
		{"nil vs intent", nil, NewIntent("GREET"), false},
		{"both nil", nil, nil, true},
		{
			"root vs child with same label",
			NewIntent("EXPAND"),
			NewSubIntent("EXPAND", NewIntent("DISCLOSE")),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestIntentEqualDiffersOnChildren(t *testing.T) {
	a := NewIntent("DISCLOSE")
	NewSubIntent("EXPAND", a)

	b := NewIntent("DISCLOSE")
	NewSubIntent("EXPAND", b)
	NewSubIntent("REFINE", b)

	assert.False(t, a.Equal(b))
}

package wirename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	base := New("a", "b")
	child := base.Append(Component("c"))

	assert.Equal(t, 2, base.Size())
	assert.Equal(t, 3, child.Size())
	assert.True(t, base.IsPrefixOf(child))
}

func TestPrefixAndSubname(t *testing.T) {
	n := New("sync", "topicA", "1234")

	assert.True(t, n.Prefix(1).Equal(New("sync")))
	assert.True(t, n.Prefix(2).Equal(New("sync", "topicA")))
	assert.True(t, n.Subname(1, 2).Equal(New("topicA", "1234")))
}

func TestAtNegativeIndex(t *testing.T) {
	n := New("sync", "topicA", "1234")
	assert.Equal(t, Component("1234"), n.At(-1))
	assert.Equal(t, Component("topicA"), n.At(-2))
}

func TestIsPrefixOf(t *testing.T) {
	sync := New("sync")
	full := New("sync", "topicA", "1234")
	other := New("other", "topicA")

	assert.True(t, sync.IsPrefixOf(full))
	assert.True(t, full.IsPrefixOf(full))
	assert.False(t, full.IsPrefixOf(sync))
	assert.False(t, sync.IsPrefixOf(other))
}

func TestEqual(t *testing.T) {
	a := New("sync", "topicA")
	b := New("sync", "topicA")
	c := New("sync", "topicB")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestCloneIsIndependent(t *testing.T) {
	a := New("sync", "topicA")
	b := a.Clone()
	b[0][0] = 'X'

	assert.NotEqual(t, a[0][0], b[0][0])
}

func TestStringNonPrintableComponent(t *testing.T) {
	n := Name{Component{0x00, 0xff}}
	assert.Equal(t, "/00ff", n.String())
}

func TestStringEmptyName(t *testing.T) {
	var n Name
	assert.Equal(t, "/", n.String())
}

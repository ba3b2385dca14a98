package ringchan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int](0) })
}

func TestSend_DropsOldestWhenFull(t *testing.T) {
	rc := New[int](3)
	for i := 1; i <= 5; i++ {
		rc.Send(i)
	}

	// only the last three survive
	var got []int
	for rc.Len() > 0 {
		v, ok := rc.TryReceive()
		require.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, []int{3, 4, 5}, got)

	m := rc.GetMetrics()
	assert.EqualValues(t, 5, m.Written)
	assert.EqualValues(t, 2, m.Overwritten)
	assert.EqualValues(t, 3, m.Processed)
}

func TestTrySend_FailsWhenFull(t *testing.T) {
	rc := New[string](1)
	assert.True(t, rc.TrySend("a"))
	assert.False(t, rc.TrySend("b"))

	v, ok := rc.Receive()
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestForceSend_ReportsDrop(t *testing.T) {
	rc := New[int](1)
	assert.False(t, rc.ForceSend(1))
	assert.True(t, rc.ForceSend(2))

	v, ok := rc.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestClose_EndsRange(t *testing.T) {
	rc := New[int](4)
	rc.Send(1)
	rc.Send(2)
	rc.Close()

	var got []int
	for v := range rc.C() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)

	_, ok := rc.Receive()
	assert.False(t, ok)
}

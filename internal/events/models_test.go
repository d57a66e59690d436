package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWaitlistValueNilStoresEmptyArray(t *testing.T) {
	var w Waitlist
	val, err := w.Value()
	require.NoError(t, err)
	require.Equal(t, "[]", val)
}

func TestWaitlistScanRoundTrip(t *testing.T) {
	var w Waitlist
	require.NoError(t, w.Scan([]byte(`["alice","bob"]`)))
	require.Equal(t, Waitlist{"alice", "bob"}, w)

	require.NoError(t, w.Scan(nil))
	require.Empty(t, w)

	require.Error(t, w.Scan(42))
}

func TestWaitlistRemovePreservesOrder(t *testing.T) {
	w := Waitlist{"alice", "bob", "carol"}

	require.Equal(t, Waitlist{"alice", "carol"}, w.Remove("bob"))
	require.Equal(t, Waitlist{"alice", "bob", "carol"}, w.Remove("ghost"))
	require.Equal(t, Waitlist{"alice", "bob", "carol"}, w, "receiver must not change")
}

func TestWaitlistContains(t *testing.T) {
	w := Waitlist{"alice", "bob"}
	require.True(t, w.Contains("alice"))
	require.False(t, w.Contains("carol"))
}

func TestToResponseFloorsAvailableSpots(t *testing.T) {
	e := Event{Capacity: 5, RegisteredCount: 7}
	resp := e.ToResponse()
	require.Equal(t, 0, resp.AvailableSpots)
	require.NotNil(t, resp.Waitlist)
}

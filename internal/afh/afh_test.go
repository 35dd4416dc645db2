package afh

import (
	"testing"

	"github.com/btces/btces/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channelSet(bits ...int) uint16 {
	var b uint16
	for _, k := range bits {
		b |= 1 << uint(k-1)
	}
	return b
}

func TestCompute_NoChannelsAllowsEverything(t *testing.T) {
	c := New(11, nil)
	mask, ok := c.Compute(0)
	require.True(t, ok)
	for i := 0; i < NumBTChannels; i++ {
		assert.Truef(t, mask[i/8]&(1<<uint(i%8)) != 0, "BT channel %d should be usable with no WLAN activity", i)
	}
}

func TestCompute_RejectsReservedBits(t *testing.T) {
	c := New(11, nil)
	_, ok := c.Compute(1 << 14)
	assert.False(t, ok)
}

func TestCompute_ExcludesChannelsNearWlanCenter(t *testing.T) {
	c := New(5, nil)
	mask, ok := c.Compute(channelSet(1)) // WLAN ch1 center 2412MHz -> BT channel 10
	require.True(t, ok)
	assert.False(t, mask[10/8]&(1<<uint(10%8)) != 0, "BT channel at the WLAN center frequency must be excluded")
	assert.True(t, mask[78/8]&(1<<uint(78%8)) != 0, "a BT channel far from the WLAN center must stay usable")
}

func TestCoupler_LeaveAloneNeverWrites(t *testing.T) {
	c := NewCoupler(model.CALeaveAlone)
	wrote := false
	c.OnWlanBecameActive(func() model.AFHMode { return model.AFHOn }, func(model.AFHMode) { wrote = true })
	c.OnWlanBecameIdle(func(model.AFHMode) { wrote = true })
	assert.False(t, wrote)
}

func TestCoupler_AssumeInitiallyOn_TurnsOffThenRestores(t *testing.T) {
	c := NewCoupler(model.CAAssumeInitiallyOn)
	var written []model.AFHMode
	write := func(m model.AFHMode) { written = append(written, m) }

	c.OnWlanBecameActive(nil, write)
	require.Len(t, written, 1)
	assert.Equal(t, model.AFHOff, written[0])

	c.OnWlanBecameIdle(write)
	require.Len(t, written, 2)
	assert.Equal(t, model.AFHOn, written[1])
}

func TestCoupler_ReadFromController_OnlyTurnsOffIfControllerHadItOn(t *testing.T) {
	c := NewCoupler(model.CAReadFromController)
	wrote := false
	c.OnWlanBecameActive(func() model.AFHMode { return model.AFHOff }, func(model.AFHMode) { wrote = true })
	assert.False(t, wrote, "must not flip a controller that already reports AFH off")

	c.OnWlanBecameIdle(func(model.AFHMode) { wrote = true })
	assert.False(t, wrote)
}

package hcidecode

import (
	"testing"

	"github.com/btces/btces/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evtFrame(code eventCode, params ...byte) []byte {
	return append([]byte{byte(code), byte(len(params))}, params...)
}

func TestDecodeEvent_ConnectionComplete(t *testing.T) {
	b := evtFrame(evConnectionComplete, 0x00, 0x10, 0x00, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x01)
	ev := DecodeEvent(b)
	require.Equal(t, EvtConnectionComplete, ev.Kind)
	assert.EqualValues(t, 0x0010, ev.Handle)
	assert.Equal(t, model.Addr{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, ev.Addr)
	assert.Equal(t, model.LinkACL, ev.LinkType)
}

func TestDecodeEvent_CommandComplete_ReadPageTimeout(t *testing.T) {
	op := opReadPageTimeout
	b := evtFrame(evCommandComplete, 0x01, byte(op), byte(op>>8), 0x00, 0x00, 0x20)
	ev := DecodeEvent(b)
	require.Equal(t, EvtCommandCompleteReadPageTimeout, ev.Kind)
	assert.EqualValues(t, 0x2000, ev.PageTimeout)
}

func TestDecodeEvent_CommandComplete_OtherOpcodeIgnored(t *testing.T) {
	op := opReset
	b := evtFrame(evCommandComplete, 0x01, byte(op), byte(op>>8), 0x00)
	ev := DecodeEvent(b)
	assert.Equal(t, EvtIgnore, ev.Kind)
}

func TestDecodeEvent_DisconnectionComplete(t *testing.T) {
	b := evtFrame(evDisconnectionComplete, 0x00, 0x20, 0x00)
	ev := DecodeEvent(b)
	require.Equal(t, EvtDisconnectionComplete, ev.Kind)
	assert.EqualValues(t, 0x0020, ev.Handle)
}

func TestDecodeEvent_TruncatedFrameIsIgnored(t *testing.T) {
	assert.Equal(t, EvtIgnore, DecodeEvent(nil).Kind)
	assert.Equal(t, EvtIgnore, DecodeEvent([]byte{byte(evConnectionComplete)}).Kind)

	short := evtFrame(evConnectionComplete, 0x00, 0x10)
	assert.Equal(t, EvtIgnore, DecodeEvent(short).Kind)
}

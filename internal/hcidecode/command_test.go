package hcidecode

import (
	"testing"

	"github.com/btces/btces/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(ogf, ocf uint16, params ...byte) []byte {
	op := opcode(ogf, ocf)
	b := []byte{byte(op), byte(op >> 8), byte(len(params))}
	return append(b, params...)
}

func TestDecodeCommand_Inquiry(t *testing.T) {
	b := frame(0x01, 0x01, 0x33, 0x8B, 0x9E, 0x08, 0x00)
	cmd := DecodeCommand(b)
	require.Equal(t, CmdInquiry, cmd.Kind)
}

func TestDecodeCommand_CreateConnection(t *testing.T) {
	// wire BD_ADDR is little-endian; Addr is stored big-endian.
	b := frame(0x01, 0x05, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x18, 0x00, 0x00, 0x01)
	cmd := DecodeCommand(b)
	require.Equal(t, CmdCreateConnection, cmd.Kind)
	assert.Equal(t, model.Addr{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, cmd.Addr)
}

func TestDecodeCommand_PeriodicInquiry(t *testing.T) {
	// Max_Period=9, Min_Period=5, LAP=9E8B33, Inquiry_Length=3, Num_Responses=0
	b := frame(0x01, 0x03, 0x09, 0x00, 0x05, 0x00, 0x33, 0x8B, 0x9E, 0x03, 0x00)
	cmd := DecodeCommand(b)
	require.Equal(t, CmdPeriodicInquiry, cmd.Kind)
	assert.EqualValues(t, 5, cmd.MinPeriodSlots)
	assert.EqualValues(t, 3, cmd.InquiryLenSlots)
}

func TestDecodeCommand_WritePageTimeout(t *testing.T) {
	b := frame(0x03, 0x18, 0x00, 0x20)
	cmd := DecodeCommand(b)
	require.Equal(t, CmdWritePageTimeout, cmd.Kind)
	assert.EqualValues(t, 0x2000, cmd.PageTimeoutSlots)
}

func TestDecodeCommand_TruncatedFrameIsIgnored(t *testing.T) {
	assert.Equal(t, CmdIgnore, DecodeCommand(nil).Kind)
	assert.Equal(t, CmdIgnore, DecodeCommand([]byte{0x01}).Kind)

	// opcode present, but body shorter than Create_Connection needs.
	b := frame(0x01, 0x05, 0x01, 0x02, 0x03)
	assert.Equal(t, CmdIgnore, DecodeCommand(b).Kind)
}

func TestDecodeCommand_UnknownOpcodeIsIgnored(t *testing.T) {
	b := frame(0x3F, 0x001)
	assert.Equal(t, CmdIgnore, DecodeCommand(b).Kind)
}

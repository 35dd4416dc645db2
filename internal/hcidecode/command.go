package hcidecode

import "github.com/btces/btces/internal/model"

// Opcode is the 16-bit OGF|OCF HCI command opcode, assembled per the
// Bluetooth HCI layout: opcode = OGF<<10 | OCF.
type Opcode uint16

func opcode(ogf, ocf uint16) Opcode { return Opcode(ogf<<10 | ocf) }

const (
	opInquiry                   = Opcode(0x0401)
	opInquiryCancel             = Opcode(0x0402)
	opPeriodicInquiryMode       = Opcode(0x0403)
	opExitPeriodicInquiryMode   = Opcode(0x0404)
	opCreateConnection          = Opcode(0x0405)
	opAddScoConnection          = Opcode(0x0407)
	opRemoteNameRequest         = Opcode(0x0419)
	opSetupSynchronousConn      = Opcode(0x0428)
	opReset                     = Opcode(0x0C03)
	opReadPageTimeout           = Opcode(0x0C17)
	opWritePageTimeout          = Opcode(0x0C18)
)

// CommandKind tags the variant of a decoded Command.
type CommandKind int

const (
	CmdIgnore CommandKind = iota
	CmdInquiry
	CmdInquiryCancel
	CmdExitPeriodicInquiry
	CmdReset
	CmdPeriodicInquiry
	CmdCreateConnection
	CmdAddScoConnection
	CmdRemoteNameRequest
	CmdWritePageTimeout
	CmdReadPageTimeout
	CmdSetupSynchronousConnection
)

// Command is the decoded form of one outbound HCI command frame. Only
// the fields relevant to Kind are populated.
type Command struct {
	Kind             CommandKind
	Addr             model.Addr
	AclHandle        uint16
	Handle           uint16
	MinPeriodSlots   uint16
	InquiryLenSlots  uint16
	PageTimeoutSlots uint16
}

// DecodeCommand parses one HCI command frame: a 2-byte little-endian
// opcode, a 1-byte parameter length, and the parameters. Frames too
// short for the opcode/length fields, or too short for the parameters
// the core actually consumes, decode to CmdIgnore rather than erroring:
// the decoder never panics and never partially applies a frame.
func DecodeCommand(b []byte) Command {
	if len(b) < 3 {
		return Command{Kind: CmdIgnore}
	}
	op := Opcode(o.uint16(b[0:2]))
	params := b[3:]
	if declared := int(b[2]); declared < len(params) {
		params = params[:declared]
	}

	switch op {
	case opInquiry:
		if len(params) < 5 {
			return Command{Kind: CmdIgnore}
		}
		return Command{Kind: CmdInquiry}
	case opInquiryCancel:
		return Command{Kind: CmdInquiryCancel}
	case opExitPeriodicInquiryMode:
		return Command{Kind: CmdExitPeriodicInquiry}
	case opReset:
		return Command{Kind: CmdReset}
	case opPeriodicInquiryMode:
		// Max_Period(2) Min_Period(2) LAP(3) Inquiry_Length(1) Num_Responses(1)
		if len(params) < 8 {
			return Command{Kind: CmdIgnore}
		}
		return Command{
			Kind:            CmdPeriodicInquiry,
			MinPeriodSlots:  o.uint16(params[2:4]),
			InquiryLenSlots: uint16(params[7]),
		}
	case opCreateConnection:
		if len(params) < 6 {
			return Command{Kind: CmdIgnore}
		}
		return Command{Kind: CmdCreateConnection, Addr: o.addr(params[0:6])}
	case opAddScoConnection:
		if len(params) < 2 {
			return Command{Kind: CmdIgnore}
		}
		return Command{Kind: CmdAddScoConnection, AclHandle: o.uint16(params[0:2])}
	case opRemoteNameRequest:
		if len(params) < 6 {
			return Command{Kind: CmdIgnore}
		}
		return Command{Kind: CmdRemoteNameRequest, Addr: o.addr(params[0:6])}
	case opWritePageTimeout:
		if len(params) < 2 {
			return Command{Kind: CmdIgnore}
		}
		return Command{Kind: CmdWritePageTimeout, PageTimeoutSlots: o.uint16(params[0:2])}
	case opReadPageTimeout:
		return Command{Kind: CmdReadPageTimeout}
	case opSetupSynchronousConn:
		if len(params) < 2 {
			return Command{Kind: CmdIgnore}
		}
		return Command{Kind: CmdSetupSynchronousConnection, Handle: o.uint16(params[0:2])}
	default:
		return Command{Kind: CmdIgnore}
	}
}

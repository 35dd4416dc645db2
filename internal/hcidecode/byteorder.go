package hcidecode

import "github.com/btces/btces/internal/model"

// order centralizes the HCI wire byte-order conventions: 16-bit fields
// are little-endian, and Bluetooth addresses on the wire are
// little-endian but are reversed into the big-endian internal
// representation used everywhere above the decoder.
type order struct{}

var o order

func (order) uint8(b []byte) uint8 { return b[0] }

func (order) uint16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

// addr reverses a little-endian wire BD_ADDR into the big-endian Addr
// representation: addr[0] becomes the most significant octet.
func (order) addr(b []byte) model.Addr {
	var a model.Addr
	a[0], a[1], a[2], a[3], a[4], a[5] = b[5], b[4], b[3], b[2], b[1], b[0]
	return a
}

package btces

import "github.com/btces/btces/internal/model"

// Addr is a Bluetooth device address, stored big-endian (addr[0] holds
// bits 47-40): HCI wire bytes are little-endian and are reversed on the
// way in by internal/hcidecode. It is an alias of internal/model.Addr so
// values decoded deep in the core cross the package boundary with no
// conversion.
type Addr = model.Addr

// ZeroAddr is the reserved all-zeros address used to represent the
// inquiry pseudo-connection in the connection table.
var ZeroAddr = model.ZeroAddr

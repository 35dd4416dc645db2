// Package conntable is the bounded connection/activity table: up to
// Capacity simultaneous records (seven ACL links plus one pseudo-record
// for an in-flight inquiry or name request), plus the serial activity
// queue that orders pending pages, name requests, and inquiries.
//
// The table is a fixed array of optional value-type records addressed
// by index, so "destruction" is just emptying a slot rather than
// managing record lifetimes.
package conntable

import "github.com/btces/btces/internal/model"

// Capacity is the maximum number of simultaneous connection/activity
// records: seven ACL links plus one inquiry/name-request pseudo-record.
const Capacity = 8

// Record is one connection or queued activity.
type Record struct {
	Addr          model.Addr
	AclState      model.AclState
	ScoState      model.ScoState
	AclHandle     uint16
	ScoHandle     uint16
	AclMode       model.AclMode
	ScoInterval   uint8
	ScoWindow     uint8
	RetransWindow uint8
	QueuePosition int // 0 = active; >=1 = FIFO slot
}

func newRecord(addr model.Addr) *Record {
	return &Record{
		Addr:      addr,
		AclHandle: model.InvalidHandle,
		ScoHandle: model.InvalidHandle,
	}
}

// HandleKind selects which handle space FindByHandle searches.
type HandleKind int

const (
	AclHandleKind HandleKind = iota
	ScoHandleKind
)

// Table is the fixed-capacity connection table.
type Table struct {
	slots [Capacity]*Record
}

// New returns an empty table.
func New() *Table { return &Table{} }

// FindByAddr returns the record for addr, if any.
func (t *Table) FindByAddr(addr model.Addr) (int, *Record) {
	for i, r := range t.slots {
		if r != nil && r.Addr == addr {
			return i, r
		}
	}
	return -1, nil
}

// FindByHandle returns the record whose ACL (or SCO) handle matches h,
// restricted to records actually holding a live link of that kind: ACL
// matches only Connected/Streaming records, SCO matches only Sco/Esco
// records. A record mid-setup never matches, by design: setup failures
// are resolved by address or by queue position, not by handle.
func (t *Table) FindByHandle(h uint16, kind HandleKind) (int, *Record) {
	for i, r := range t.slots {
		if r == nil {
			continue
		}
		switch kind {
		case AclHandleKind:
			if (r.AclState == model.AclConnected || r.AclState == model.AclStreaming) && r.AclHandle == h {
				return i, r
			}
		case ScoHandleKind:
			if (r.ScoState == model.ScoSco || r.ScoState == model.ScoEsco) && r.ScoHandle == h {
				return i, r
			}
		}
	}
	return -1, nil
}

// Alloc creates a new record owning addr, with both handles set to
// model.InvalidHandle and every other field zero. It fails if the table
// is full or addr already has a record.
func (t *Table) Alloc(addr model.Addr) (int, *Record, bool) {
	if _, existing := t.FindByAddr(addr); existing != nil {
		return -1, nil, false
	}
	for i, r := range t.slots {
		if r == nil {
			rec := newRecord(addr)
			t.slots[i] = rec
			return i, rec, true
		}
	}
	return -1, nil, false
}

// Free empties slot i, first removing it from the activity queue so
// queue positions of the remaining records stay contiguous.
func (t *Table) Free(i int) {
	if i < 0 || i >= Capacity || t.slots[i] == nil {
		return
	}
	t.RemoveFromQueue(i)
	t.slots[i] = nil
}

// At returns the record at index i, or nil if the slot is empty.
func (t *Table) At(i int) *Record {
	if i < 0 || i >= Capacity {
		return nil
	}
	return t.slots[i]
}

// Each calls f with the index and record of every occupied slot, in slot
// order. f must not allocate or free slots.
func (t *Table) Each(f func(i int, r *Record)) {
	for i, r := range t.slots {
		if r != nil {
			f(i, r)
		}
	}
}

// Len reports the number of occupied slots.
func (t *Table) Len() int {
	n := 0
	for _, r := range t.slots {
		if r != nil {
			n++
		}
	}
	return n
}

// Clear empties every slot, used when BT powers off or resets.
func (t *Table) Clear() {
	for i := range t.slots {
		t.slots[i] = nil
	}
}

// NextQPos returns the queue position a newly-enqueued activity should
// take: one past the current maximum.
func (t *Table) NextQPos() int {
	max := 0
	for _, r := range t.slots {
		if r != nil && r.QueuePosition > max {
			max = r.QueuePosition
		}
	}
	return max + 1
}

// Dequeue advances the activity queue: every non-zero queue position
// moves down by one, and the record that reaches position 0 (the new
// active activity) is returned. Returns -1, nil if the queue was empty
// or only the active slot was occupied.
func (t *Table) Dequeue() (int, *Record) {
	activated := -1
	for i, r := range t.slots {
		if r == nil || r.QueuePosition == 0 {
			continue
		}
		r.QueuePosition--
		if r.QueuePosition == 0 {
			activated = i
		}
	}
	if activated == -1 {
		return -1, nil
	}
	return activated, t.slots[activated]
}

// RemoveFromQueue pulls record i out of the activity queue: its
// position is cleared, and every record queued behind it shifts down by
// one to keep positions contiguous.
func (t *Table) RemoveFromQueue(i int) {
	r := t.At(i)
	if r == nil || r.QueuePosition == 0 {
		return
	}
	removed := r.QueuePosition
	r.QueuePosition = 0
	for _, other := range t.slots {
		if other != nil && other.QueuePosition > removed {
			other.QueuePosition--
		}
	}
}

package activity

import (
	"testing"
	"time"

	"github.com/btces/btces/internal/clock"
	"github.com/btces/btces/internal/hcidecode"
	"github.com/btces/btces/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimer never actually schedules anything; it just remembers the most
// recent fire callback so a test can invoke it deterministically in place
// of waiting out a real duration.
type testTimer struct {
	fires map[int]func()
	next  int
}

func newTestTimer() *testTimer { return &testTimer{fires: map[int]func(){}} }

func (t *testTimer) Start(d time.Duration, fire func()) clock.Handle {
	t.next++
	t.fires[t.next] = fire
	return t.next
}

func (t *testTimer) Stop(h clock.Handle) { delete(t.fires, h.(int)) }

func (t *testTimer) fire(h clock.Handle) {
	if f, ok := t.fires[h.(int)]; ok {
		f()
	}
}

// recorder accumulates the events a Machine emits, for assertion.
type recorder struct {
	events []model.Event
}

func (r *recorder) onEvent(ev model.Event) { r.events = append(r.events, ev) }

func (r *recorder) codes() []model.EventCode {
	out := make([]model.EventCode, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Code
	}
	return out
}

func newTestMachine(t *testing.T) (*Machine, *recorder) {
	t.Helper()
	m := New(newTestTimer(), nil, nil, nil)
	rec := &recorder{}
	require.True(t, m.Register(rec.onEvent, nil))
	return m, rec
}

func resetCmd() hcidecode.Command { return hcidecode.Command{Kind: hcidecode.CmdReset} }

func TestImplicitPowerOn_OnFirstCommand(t *testing.T) {
	m, rec := newTestMachine(t)
	require.False(t, m.BTOn())

	m.OnCommand(nil) // decodes to CmdIgnore, but still powers on
	assert.True(t, m.BTOn())
	assert.Contains(t, rec.codes(), model.EventBtPowerOn)
}

func TestDeviceSwitchedOff_DoesNotImplicitlyPowerOn(t *testing.T) {
	m, rec := newTestMachine(t)
	m.OnNative(model.Native{Kind: model.DeviceSwitchedOff})
	assert.False(t, m.BTOn())
	assert.NotContains(t, rec.codes(), model.EventBtPowerOn)
}

func TestInquiry_StartAndComplete(t *testing.T) {
	m, rec := newTestMachine(t)
	m.handleCommand(hcidecode.Command{Kind: hcidecode.CmdInquiry})
	assert.True(t, m.inquiryActive)
	assert.Contains(t, rec.codes(), model.EventInquiryStarted)

	m.handleEvent(hcidecode.Event{Kind: hcidecode.EvtInquiryComplete})
	assert.False(t, m.inquiryActive)
	assert.Equal(t, model.EventInquiryStopped, rec.events[len(rec.events)-1].Code)
}

func TestCreateConnection_SuccessPath(t *testing.T) {
	m, rec := newTestMachine(t)
	addr := model.Addr{1, 2, 3, 4, 5, 6}

	m.handleCommand(hcidecode.Command{Kind: hcidecode.CmdCreateConnection, Addr: addr})
	assert.True(t, m.paging)
	assert.Contains(t, rec.codes(), model.EventCreateAclConnection)
	assert.Contains(t, rec.codes(), model.EventPageStarted)

	m.handleEvent(hcidecode.Event{Kind: hcidecode.EvtConnectionComplete, Addr: addr, Handle: 0x10, Status: 0, LinkType: model.LinkACL})
	assert.False(t, m.paging)
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, model.EventAclConnectionComplete, last.Code)
	assert.True(t, last.Success)
	assert.EqualValues(t, 0x10, last.Handle)

	_, rec2 := m.tbl.FindByAddr(addr)
	require.NotNil(t, rec2)
	assert.Equal(t, model.AclConnected, rec2.AclState)
}

func TestCreateConnection_PageTimeoutDropsPendingConnection(t *testing.T) {
	tm := newTestTimer()
	m := New(tm, nil, nil, nil)
	rec := &recorder{}
	require.True(t, m.Register(rec.onEvent, nil))

	addr := model.Addr{9, 9, 9, 9, 9, 9}
	m.handleCommand(hcidecode.Command{Kind: hcidecode.CmdCreateConnection, Addr: addr})
	require.True(t, m.paging)

	// fire the most recently armed timer (the page timer)
	tm.fire(tm.next)

	assert.False(t, m.paging)
	assert.False(t, m.connecting)
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, model.EventPageStopped, last.Code)
	assert.NotContains(t, rec.codes(), model.EventAclConnectionComplete,
		"a page timeout ends paging without reporting a failed connection")
	_, found := m.tbl.FindByAddr(addr)
	assert.Nil(t, found, "the abandoned record must be dropped so a retry pages afresh")
}

func TestCreateConnection_RetryAfterPageTimeoutPagesAgain(t *testing.T) {
	tm := newTestTimer()
	m := New(tm, nil, nil, nil)
	rec := &recorder{}
	require.True(t, m.Register(rec.onEvent, nil))

	addr := model.Addr{9, 9, 9, 9, 9, 9}
	m.handleCommand(hcidecode.Command{Kind: hcidecode.CmdCreateConnection, Addr: addr})
	tm.fire(tm.next)
	m.handleCommand(hcidecode.Command{Kind: hcidecode.CmdCreateConnection, Addr: addr})
	m.handleEvent(hcidecode.Event{Kind: hcidecode.EvtConnectionComplete, Addr: addr, Handle: 0x2A, Status: 0, LinkType: model.LinkACL})

	want := []model.EventCode{
		model.EventBtPowerOff, // registration snapshot of the not-yet-powered machine
		model.EventCreateAclConnection, model.EventPageStarted,
		model.EventPageStopped,
		model.EventCreateAclConnection, model.EventPageStarted,
		model.EventPageStopped, model.EventAclConnectionComplete,
	}
	assert.Equal(t, want, rec.codes())
}

func TestDeviceSwitchedOff_ClosesOutStreamingRecord(t *testing.T) {
	m, rec := newTestMachine(t)
	addr := model.Addr{1, 1, 1, 1, 1, 1}
	_, r, ok := m.tbl.Alloc(addr)
	require.True(t, ok)
	r.AclState = model.AclStreaming
	r.AclHandle = 0x20
	m.btOn = true

	m.OnNative(model.Native{Kind: model.DeviceSwitchedOff})

	codes := rec.codes()
	assert.Contains(t, codes, model.EventA2DPStreamStop)
	assert.Contains(t, codes, model.EventDisconnectionComplete)
	assert.Contains(t, codes, model.EventBtPowerOff)
	assert.False(t, m.BTOn())
	assert.Equal(t, 0, m.tbl.Len())
}

func TestHCIReset_ClearsStateButLeavesPowerOn(t *testing.T) {
	m, rec := newTestMachine(t)
	m.btOn = true
	m.handleCommand(hcidecode.Command{Kind: hcidecode.CmdInquiry})
	require.True(t, m.inquiryActive)

	m.handleCommand(resetCmd())

	assert.True(t, m.BTOn())
	assert.False(t, m.inquiryActive)
	assert.Equal(t, DefaultPageTimeout, m.pageTimeout)
	assert.NotContains(t, rec.codes(), model.EventBtPowerOff)
}

func TestRegister_RejectsSecondSubscriber(t *testing.T) {
	m, _ := newTestMachine(t)
	ok := m.Register(func(model.Event) {}, nil)
	assert.False(t, ok)
}

func TestStateReport_ReplaysConnectedLinkWithNonActiveMode(t *testing.T) {
	m, _ := newTestMachine(t)
	addr := model.Addr{2, 2, 2, 2, 2, 2}
	_, r, ok := m.tbl.Alloc(addr)
	require.True(t, ok)
	r.AclState = model.AclConnected
	r.AclHandle = 0x30
	r.AclMode = model.ModeSniff
	m.btOn = true

	rec2 := &recorder{}
	_, _ = m.Deregister()
	require.True(t, m.Register(rec2.onEvent, nil))

	codes := rec2.codes()
	assert.Contains(t, codes, model.EventCreateAclConnection)
	assert.Contains(t, codes, model.EventAclConnectionComplete)
	assert.Contains(t, codes, model.EventModeChanged)
}

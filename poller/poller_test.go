package poller

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/vishvananda/netlink/nl"

	"github.com/grgbr/nlink/ifcache"
	"github.com/grgbr/nlink/nlmsg"
)

var endian = nl.NativeEndian()

func linkPayload(index int32, name string) []byte {
	info := make([]byte, 16)
	info[0] = unix.AF_UNSPEC
	endian.PutUint16(info[2:4], 1) // ARPHRD_ETHER
	endian.PutUint32(info[4:8], uint32(index))

	nameAttr := append([]byte(name), 0)
	hdr := make([]byte, 4)
	endian.PutUint16(hdr[0:2], uint16(4+len(nameAttr)))
	endian.PutUint16(hdr[2:4], 3) // IFLA_IFNAME
	attr := append(hdr, nameAttr...)
	for len(attr)%4 != 0 {
		attr = append(attr, 0)
	}

	return append(info, attr...)
}

func TestHandleMsgAppliesPayloadToCache(t *testing.T) {
	state := &pollState{cache: ifcache.New()}
	msg := nlmsg.Message{Type: unix.RTM_NEWLINK, Payload: linkPayload(3, "eth0")}

	if err := handleMsg(nlmsg.Payload, msg, state); err != nil {
		t.Fatalf("handleMsg() = %v", err)
	}

	deltas := state.cache.EndCycle()
	if len(deltas) != 1 || deltas[0].Change != ifcache.Added || deltas[0].Index != 3 {
		t.Fatalf("deltas = %+v, want one Added for index 3", deltas)
	}
}

func TestHandleMsgPropagatesParseFailure(t *testing.T) {
	state := &pollState{cache: ifcache.New()}
	msg := nlmsg.Message{Type: unix.RTM_NEWLINK, Payload: []byte{1, 2, 3}}

	if err := handleMsg(nlmsg.Payload, msg, state); err != unix.EBADMSG {
		t.Fatalf("expected EBADMSG, got %v", err)
	}
}

func TestHandleMsgEndOfSequenceIsNoop(t *testing.T) {
	state := &pollState{cache: ifcache.New()}
	if err := handleMsg(nlmsg.EndOfSequence, nlmsg.Message{}, state); err != nil {
		t.Fatalf("handleMsg() = %v", err)
	}
}

func TestHandleMsgOverrunPropagatesError(t *testing.T) {
	state := &pollState{cache: ifcache.New()}
	err := handleMsg(nlmsg.Overrun, nlmsg.Message{Type: unix.NLMSG_OVERRUN}, state)
	if err != unix.EOVERFLOW {
		t.Fatalf("expected EOVERFLOW, got %v", err)
	}
}

func TestNewRegistersFullWindow(t *testing.T) {
	p := New(nil)
	if p.win.Cap() != windowCap {
		t.Fatalf("Cap() = %d, want %d", p.win.Cap(), windowCap)
	}
	if p.win.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", p.win.Count())
	}
	for i := 0; i < windowCap; i++ {
		if w := p.win.Acquire(); w == nil {
			t.Fatalf("Acquire() #%d returned nil, window should be fully stocked", i)
		}
	}
	if w := p.win.Acquire(); w != nil {
		t.Fatal("Acquire() should return nil once all descriptors are taken")
	}
}

func TestHandleMsgIgnoresForeignSeqno(t *testing.T) {
	state := &pollState{cache: ifcache.New(), seqno: 42}
	msg := nlmsg.Message{Type: unix.RTM_NEWLINK, Seq: 7, Payload: linkPayload(3, "eth0")}

	if err := handleMsg(nlmsg.Payload, msg, state); err != nil {
		t.Fatalf("handleMsg() = %v", err)
	}
	if deltas := state.cache.EndCycle(); len(deltas) != 0 {
		t.Fatalf("deltas = %+v, want none for a foreign seqno", deltas)
	}
}

func TestOutcomeLabel(t *testing.T) {
	cases := map[nlmsg.Outcome]string{
		nlmsg.ErrorCode:   "errorcode",
		nlmsg.Overrun:     "overrun",
		nlmsg.Malformed:   "malformed",
		nlmsg.Interrupted: "interrupted",
	}
	for outcome, want := range cases {
		if got := outcomeLabel(outcome); got != want {
			t.Errorf("outcomeLabel(%v) = %q, want %q", outcome, got, want)
		}
	}
}

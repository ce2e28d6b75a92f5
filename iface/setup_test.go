package iface_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/go-test/deep"
	"github.com/m-lab/go/rtx"

	"github.com/grgbr/nlink/iface"
	"github.com/grgbr/nlink/nlmsg"
)

func TestComposeDumpLinkStampsHeader(t *testing.T) {
	buf := make([]byte, 0, 64)
	out := iface.ComposeDumpLink(buf, 7, 1234)

	msg, n, err := nlmsg.Parse(out)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if n != len(out) {
		t.Fatalf("Parse() consumed %d, want %d", n, len(out))
	}
	if msg.Type != unix.RTM_GETLINK {
		t.Fatalf("Type = %d, want RTM_GETLINK", msg.Type)
	}
	if msg.Flags&(unix.NLM_F_REQUEST|unix.NLM_F_DUMP) == 0 {
		t.Fatalf("Flags = %#x, missing REQUEST|DUMP", msg.Flags)
	}
	if msg.Seq != 7 || msg.Pid != 1234 {
		t.Fatalf("Seq/Pid = %d/%d, want 7/1234", msg.Seq, msg.Pid)
	}
}

func TestComposeNewLinkRejectsVoidType(t *testing.T) {
	buf := make([]byte, 0, 64)
	if _, err := iface.ComposeNewLink(buf, 1, 1, iface.ArphrdVoid, 2); err != unix.EINVAL {
		t.Fatalf("expected EINVAL, got %v", err)
	}
}

func TestComposeNewLinkRejectsNonPositiveIndex(t *testing.T) {
	buf := make([]byte, 0, 64)
	if _, err := iface.ComposeNewLink(buf, 1, 1, 1, 0); err != unix.EINVAL {
		t.Fatalf("expected EINVAL, got %v", err)
	}
}

// Round-trip: composing a RTM_NEWLINK request and setting name/mtu/
// operstate, then parsing it back, yields the same field values.
func TestComposeParseRoundTrip(t *testing.T) {
	buf := make([]byte, 0, iface.IfnamSiz+64)
	msg, err := iface.ComposeNewLink(buf, 1, 1, 1 /* ARPHRD_ETHER */, 3)
	rtx.Must(err, "ComposeNewLink failed")

	const capLimit = 256
	msg, err = iface.SetName(msg, capLimit, "eth0")
	rtx.Must(err, "SetName failed")
	msg, err = iface.SetMTU(msg, capLimit, 1500)
	rtx.Must(err, "SetMTU failed")
	msg, err = iface.SetOperState(msg, capLimit, iface.OperUp)
	rtx.Must(err, "SetOperState failed")

	parsedMsg, n, err := nlmsg.Parse(msg)
	rtx.Must(err, "Parse failed")
	if n != len(msg) {
		t.Fatalf("Parse() consumed %d, want %d", n, len(msg))
	}
	if parsedMsg.Type != unix.RTM_NEWLINK {
		t.Fatalf("Type = %d, want RTM_NEWLINK", parsedMsg.Type)
	}

	got, err := iface.ParseMsg(parsedMsg)
	rtx.Must(err, "ParseMsg failed")

	want := iface.Iface{
		Type:      1,
		Index:     3,
		Name:      "eth0",
		NameLen:   len("eth0"),
		MTU:       1500,
		OperState: iface.OperUp,
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("round-tripped Iface differs: %v", diff)
	}
}

func TestSetNameRejectsEmptyAndOversize(t *testing.T) {
	buf := make([]byte, 0, 64)
	if _, err := iface.SetName(buf, 64, ""); err != unix.EINVAL {
		t.Fatalf("expected EINVAL for empty name, got %v", err)
	}
	oversize := make([]byte, iface.IfnamSiz)
	for i := range oversize {
		oversize[i] = 'a'
	}
	if _, err := iface.SetName(buf, 64, string(oversize)); err != unix.EINVAL {
		t.Fatalf("expected EINVAL for oversize name, got %v", err)
	}
}

func TestSetMTURejectsZeroAndOverflow(t *testing.T) {
	buf := make([]byte, 0, 64)
	if _, err := iface.SetMTU(buf, 64, 0); err != unix.EINVAL {
		t.Fatalf("expected EINVAL for zero mtu, got %v", err)
	}
	if _, err := iface.SetMTU(buf, 64, 1<<20); err != unix.EINVAL {
		t.Fatalf("expected EINVAL for oversize mtu, got %v", err)
	}
}

func TestSetOperStateRejectsOtherTransitions(t *testing.T) {
	buf := make([]byte, 0, 64)
	if _, err := iface.SetOperState(buf, 64, iface.OperDormant); err != unix.EINVAL {
		t.Fatalf("expected EINVAL, got %v", err)
	}
}

func TestAppendAttrRejectsOversizedMessage(t *testing.T) {
	buf := make([]byte, 0, 64)
	msg, err := iface.ComposeNewLink(buf, 1, 1, 1, 3)
	if err != nil {
		t.Fatalf("ComposeNewLink() = %v", err)
	}

	capLimit := len(msg) + 4 // leaves no room for a full TLV
	if _, err := iface.SetName(msg, capLimit, "eth0"); err != unix.EMSGSIZE {
		t.Fatalf("expected EMSGSIZE, got %v", err)
	}
}

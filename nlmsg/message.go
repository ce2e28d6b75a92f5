// Package nlmsg classifies individual netlink messages within a
// datagram and walks a buffer of concatenated messages, invoking a
// per-message handler with well-defined termination and continuation
// semantics across datagram boundaries.
package nlmsg

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/vishvananda/netlink/nl"
)

// headerLen is the size of a netlink message header (length, type,
// flags, seq, pid).
const headerLen = 16

// errHeaderLen is the size of the classic (non-extended) netlink error
// header: an errno followed by the offending request's header.
const errHeaderLen = 4 + headerLen

// Message is a single netlink message: its header fields plus the
// bytes following the header, still backed by the datagram buffer it
// was carved from.
type Message struct {
	Len     uint32
	Type    uint16
	Flags   uint16
	Seq     uint32
	Pid     uint32
	Payload []byte
}

// String renders the message header for logging in a fixed-width,
// scriptable format.
func (m Message) String() string {
	return fmt.Sprintf(
		"pid:%010d | seqno:%010d | type:%05d | flags:%c%c%c%c | length:%010d",
		m.Pid, m.Seq, m.Type,
		flag(m.Flags, unix.NLM_F_REQUEST, 'R'),
		flag(m.Flags, unix.NLM_F_MULTI, 'M'),
		flag(m.Flags, unix.NLM_F_ACK, 'A'),
		flag(m.Flags, unix.NLM_F_ECHO, 'E'),
		m.Len,
	)
}

func flag(flags uint16, bit uint16, ch byte) byte {
	if flags&bit != 0 {
		return ch
	}
	return '-'
}

// Outcome classifies a Message for the purposes of driving a Walk.
type Outcome int

const (
	// Payload means the message carries attribute data the caller must
	// parse (type >= NLMSG_MIN_TYPE).
	Payload Outcome = iota
	// Empty means the message is a no-op and should be skipped.
	Empty
	// Interrupted means the dump was interrupted by the kernel.
	Interrupted
	// EndOfSequence means the logical stream is complete: either an
	// NLMSG_DONE, or an error message carrying a zero (ACK) code.
	EndOfSequence
	// ErrorCode means an error message carrying a nonzero code arrived;
	// Classify returns the code as its error.
	ErrorCode
	// Overrun means the kernel reported data loss; the remainder of the
	// datagram must be discarded.
	Overrun
	// Malformed means the message failed a structural check.
	Malformed
)

// Classify inspects msg's header and reports how the caller should
// treat it. Any message with the dump-interrupt flag set is always
// reported as Interrupted, regardless of its type.
func Classify(msg Message) (Outcome, error) {
	if msg.Flags&unix.NLM_F_DUMP_INTR != 0 {
		return Interrupted, unix.EINTR
	}

	if msg.Type >= unix.NLMSG_MIN_TYPE {
		return Payload, nil
	}

	switch msg.Type {
	case unix.NLMSG_NOOP:
		return Empty, nil

	case unix.NLMSG_ERROR:
		return classifyError(msg)

	case unix.NLMSG_DONE:
		return EndOfSequence, unix.ENODATA

	case unix.NLMSG_OVERRUN:
		return Overrun, unix.EOVERFLOW

	default:
		return Malformed, unix.EBADMSG
	}
}

// classifyError normalizes the error code carried by an NLMSG_ERROR
// message to a unix.Errno of its magnitude, whichever sign it was
// delivered with on the wire.
func classifyError(msg Message) (Outcome, error) {
	if len(msg.Payload) < errHeaderLen {
		return Malformed, unix.EBADMSG
	}

	raw := int32(nl.NativeEndian().Uint32(msg.Payload[0:4]))
	switch {
	case raw == 0:
		// ACK.
		return EndOfSequence, unix.ENODATA
	case raw < 0:
		return ErrorCode, unix.Errno(-raw)
	default:
		return ErrorCode, unix.Errno(raw)
	}
}

// Parse carves the next Message out of a netlink datagram buffer,
// returning it together with the number of bytes it (and its padding)
// occupied. It fails with unix.EBADMSG if the buffer does not hold a
// complete, well-formed message.
func Parse(buf []byte) (Message, int, error) {
	if len(buf) < headerLen {
		return Message{}, 0, unix.EBADMSG
	}

	e := nl.NativeEndian()
	length := e.Uint32(buf[0:4])
	if length < headerLen || int(length) > len(buf) {
		return Message{}, 0, unix.EBADMSG
	}

	msg := Message{
		Len:     length,
		Type:    e.Uint16(buf[4:6]),
		Flags:   e.Uint16(buf[6:8]),
		Seq:     e.Uint32(buf[8:12]),
		Pid:     e.Uint32(buf[12:16]),
		Payload: buf[headerLen:length],
	}

	n := alignTo(int(length))
	if n > len(buf) {
		// The last message in a datagram need not carry trailing
		// padding; don't advance past what's actually there.
		n = len(buf)
	}
	return msg, n, nil
}

func alignTo(n int) int {
	return (n + 3) &^ 3
}

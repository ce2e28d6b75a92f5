// Package nlattr validates and extracts typed values out of a single
// netlink TLV attribute. Accessors that return a byte slice alias into
// the buffer the attribute was carved from; String returns a copy.
package nlattr

import (
	"golang.org/x/sys/unix"

	"github.com/vishvananda/netlink/nl"
)

// Attr is a single parsed TLV: a type id and the payload bytes that
// follow the 4-byte rtattr header, still backed by the original
// datagram buffer.
type Attr struct {
	Type    uint16
	Payload []byte
}

// Uint8 returns the attribute's value as a uint8. It fails with
// unix.EBADMSG if the payload isn't exactly one byte wide.
func (a Attr) Uint8() (uint8, error) {
	if len(a.Payload) != 1 {
		return 0, unix.EBADMSG
	}
	return a.Payload[0], nil
}

// Uint16 returns the attribute's value as a uint16 in host byte order.
func (a Attr) Uint16() (uint16, error) {
	if len(a.Payload) != 2 {
		return 0, unix.EBADMSG
	}
	return nl.NativeEndian().Uint16(a.Payload), nil
}

// Uint32 returns the attribute's value as a uint32 in host byte order.
func (a Attr) Uint32() (uint32, error) {
	if len(a.Payload) != 4 {
		return 0, unix.EBADMSG
	}
	return nl.NativeEndian().Uint32(a.Payload), nil
}

// Uint64 returns the attribute's value as a uint64 in host byte order.
func (a Attr) Uint64() (uint64, error) {
	if len(a.Payload) != 8 {
		return 0, unix.EBADMSG
	}
	return nl.NativeEndian().Uint64(a.Payload), nil
}

// String returns the attribute's NUL-terminated value as a Go string,
// copied out of the backing buffer without its terminator. max is the
// largest payload length accepted, terminator included (e.g. IFNAMSIZ).
func (a Attr) String(max int) (string, error) {
	n := len(a.Payload)
	if n == 0 || n > max {
		return "", unix.ERANGE
	}
	if a.Payload[n-1] != 0 {
		return "", unix.EBADMSG
	}
	return string(a.Payload[:n-1]), nil
}

// Binary validates that the attribute carries opaque binary data and
// returns its payload, borrowed from the backing buffer.
func (a Attr) Binary() ([]byte, error) {
	// Any payload is a legal binary attribute; the check exists so that
	// callers which do care about kind (as opposed to width) go through
	// the same validation path as the typed accessors.
	return a.Payload, nil
}

// HWAddrLen is the length, in bytes, of an Ethernet hardware address.
const HWAddrLen = 6

// HWAddr validates that the attribute is binary and exactly 6 bytes
// long, and returns it borrowed from the backing buffer.
func (a Attr) HWAddr() ([]byte, error) {
	b, err := a.Binary()
	if err != nil {
		return nil, err
	}
	if len(b) != HWAddrLen {
		return nil, unix.ERANGE
	}
	return b, nil
}

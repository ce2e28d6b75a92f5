package nlattr

import (
	"golang.org/x/sys/unix"

	"github.com/vishvananda/netlink/nl"
)

var endian = nl.NativeEndian()

// sizeofHeader is the size of the 4-byte rtattr header (length, type)
// preceding every attribute's payload.
const sizeofHeader = 4

// alignTo rounds n up to the netlink attribute alignment boundary.
func alignTo(n int) int {
	return (n + unix.RTA_ALIGNTO - 1) &^ (unix.RTA_ALIGNTO - 1)
}

// ParseAll walks a flat, padded TLV byte slice and returns every
// attribute found. Unknown or malformed trailing bytes that don't even
// cover a header are silently ignored, matching the kernel's own
// lenient trailing-padding behavior; a header whose advertised length
// doesn't fit within the remaining buffer is reported as unix.EBADMSG.
func ParseAll(b []byte) ([]Attr, error) {
	var attrs []Attr
	for len(b) >= sizeofHeader {
		length := int(nativeUint16(b[0:2]))
		kind := nativeUint16(b[2:4])
		if length < sizeofHeader || length > len(b) {
			return nil, unix.EBADMSG
		}
		attrs = append(attrs, Attr{Type: kind, Payload: b[sizeofHeader:length]})
		adv := alignTo(length)
		if adv > len(b) {
			adv = len(b)
		}
		b = b[adv:]
	}
	return attrs, nil
}

func nativeUint16(b []byte) uint16 {
	return endian.Uint16(b)
}

package iface

import "golang.org/x/sys/unix"

// attrAlign mirrors nlattr's alignment boundary for composed TLVs.
func attrAlign(n int) int {
	return (n + unix.RTA_ALIGNTO - 1) &^ (unix.RTA_ALIGNTO - 1)
}

// putHeader stamps a 16-byte netlink message header at the front of
// buf[:0]'s backing array and returns buf grown to cover it.
func putHeader(buf []byte, typ uint16, flags uint16, seq, pid uint32) []byte {
	buf = buf[:16]
	e := endian()
	e.PutUint32(buf[0:4], 16) // length, corrected by caller as the message grows
	e.PutUint16(buf[4:6], typ)
	e.PutUint16(buf[6:8], flags)
	e.PutUint32(buf[8:12], seq)
	e.PutUint32(buf[12:16], pid)
	return buf
}

func setLen(buf []byte, n int) {
	endian().PutUint32(buf[0:4], uint32(n))
}

// ComposeNewLink stamps a RTM_NEWLINK request into buf[:0]'s backing
// array. typ must not be the void or none ARP sentinels; index must be
// positive. seqno and portID identify the requesting socket
// (nlsock.Socket.NextSeqno / PortID) but composition itself never
// touches the socket's transport.
func ComposeNewLink(buf []byte, seqno, portID uint32, typ uint16, index int32) ([]byte, error) {
	if typ == ArphrdVoid || typ == ArphrdNone {
		return nil, unix.EINVAL
	}
	if index <= 0 {
		return nil, unix.EINVAL
	}

	hdr := putHeader(buf[:0], unix.RTM_NEWLINK, unix.NLM_F_REQUEST|unix.NLM_F_ACK, seqno, portID)
	hdr = appendInfoHeader(hdr, typ, index, 0, 0)
	setLen(hdr, len(hdr))
	return hdr, nil
}

// ComposeDumpLink stamps a RTM_GETLINK dump request into buf[:0]'s
// backing array.
func ComposeDumpLink(buf []byte, seqno, portID uint32) []byte {
	hdr := putHeader(buf[:0], unix.RTM_GETLINK, unix.NLM_F_REQUEST|unix.NLM_F_DUMP, seqno, portID)
	hdr = appendInfoHeader(hdr, 0, 0, 0, 0)
	setLen(hdr, len(hdr))
	return hdr
}

// appendInfoHeader appends the 16-byte ifinfomsg (family = AF_UNSPEC)
// to buf and returns the grown slice.
func appendInfoHeader(buf []byte, typ uint16, index int32, flags, change uint32) []byte {
	info := make([]byte, ifinfomsgLen)
	info[0] = unix.AF_UNSPEC
	info[1] = 0
	endian().PutUint16(info[2:4], typ)
	endian().PutUint32(info[4:8], uint32(index))
	endian().PutUint32(info[8:12], flags)
	endian().PutUint32(info[12:16], change)
	return append(buf, info...)
}

// appendAttr appends a TLV attribute to buf, growing the message
// length recorded in its header, and rejects with unix.EMSGSIZE if the
// result would exceed capLimit, the caller's message-size ceiling.
func appendAttr(buf []byte, capLimit int, typ uint16, payload []byte) ([]byte, error) {
	hdrLen := 4
	grown := attrAlign(hdrLen + len(payload))
	if len(buf)+grown > capLimit {
		return nil, unix.EMSGSIZE
	}

	start := len(buf)
	buf = append(buf, make([]byte, grown)...)
	endian().PutUint16(buf[start:start+2], uint16(hdrLen+len(payload)))
	endian().PutUint16(buf[start+2:start+4], typ)
	copy(buf[start+hdrLen:], payload)

	setLen(buf, len(buf))
	return buf, nil
}

// SetUcastHWAddr appends IFLA_ADDRESS. Precondition (not validated
// here): addr is locally administered and unicast.
func SetUcastHWAddr(buf []byte, capLimit int, addr []byte) ([]byte, error) {
	return appendAttr(buf, capLimit, iflaAddress, addr)
}

// SetName appends IFLA_IFNAME. Preconditions: 0 < len(name) < IfnamSiz
// and name contains no NUL.
func SetName(buf []byte, capLimit int, name string) ([]byte, error) {
	if len(name) == 0 || len(name) >= IfnamSiz {
		return nil, unix.EINVAL
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return nil, unix.EINVAL
		}
	}
	payload := append([]byte(name), 0)
	return appendAttr(buf, capLimit, iflaIfname, payload)
}

// SetMTU appends IFLA_MTU. Precondition: 0 < mtu <= IP_MAXPACKET.
func SetMTU(buf []byte, capLimit int, mtu uint32) ([]byte, error) {
	if mtu == 0 || mtu > ipMaxPacket {
		return nil, unix.EINVAL
	}
	payload := make([]byte, 4)
	endian().PutUint32(payload, mtu)
	return appendAttr(buf, capLimit, iflaMtu, payload)
}

// SetOperState appends IFLA_OPERSTATE. Precondition: state is exactly
// OperUp or OperDown, the only transitions userspace may request.
func SetOperState(buf []byte, capLimit int, state uint8) ([]byte, error) {
	if state != OperUp && state != OperDown {
		return nil, unix.EINVAL
	}
	return appendAttr(buf, capLimit, iflaOperstate, []byte{state})
}

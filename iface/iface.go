// Package iface implements the rtnetlink link-device codec: parsing a
// RTM_NEWLINK message into a typed Iface record, and composing
// RTM_NEWLINK/RTM_GETLINK requests. The hardware-address fields of a
// parsed record alias into the caller's message buffer and must not
// outlive it; the name is a copy.
package iface

import (
	"golang.org/x/sys/unix"

	"github.com/grgbr/nlink/nlattr"
	"github.com/grgbr/nlink/nlmsg"
)

// ARP hardware type sentinels from linux/if_arp.h. Never legal on a
// parsed link record.
const (
	ArphrdVoid = 0xFFFF
	ArphrdNone = 0xFFFE
)

// Operational states from linux/if.h (IF_OPER_*).
const (
	OperUnknown        = 0
	OperNotPresent     = 1
	OperDown           = 2
	OperLowerLayerDown = 3
	OperTesting        = 4
	OperDormant        = 5
	OperUp             = 6
)

// Attribute ids from linux/if_link.h (IFLA_*). Hardcoded because these
// are fixed uapi ABI values, not exported by golang.org/x/sys/unix.
const (
	iflaAddress     = 1
	iflaBroadcast   = 2
	iflaIfname      = 3
	iflaMtu         = 4
	iflaLink        = 5
	iflaMaster      = 10
	iflaOperstate   = 16
	iflaGroup       = 27
	iflaPromiscuity = 30
	iflaCarrier     = 33
)

// ifinfomsgLen is the size of struct ifinfomsg: family, pad, type,
// index, flags, change.
const ifinfomsgLen = 16

// ipMaxPacket is IP_MAXPACKET from netinet/ip.h, the ceiling on MTU.
const ipMaxPacket = 65535

// IfnamSiz is IFNAMSIZ from linux/if.h: the kernel's interface-name
// limit, terminator included.
const IfnamSiz = 16

// Iface describes one network interface. Hardware-address fields are
// borrowed from the backing message buffer; Name is a copy of the
// IFLA_IFNAME payload.
type Iface struct {
	Type         uint16
	Index        int32
	UcastHWAddr  []byte
	BcastHWAddr  []byte
	Name         string
	NameLen      int
	MTU          uint32
	Link         uint32
	Master       uint32
	OperState    uint8
	Group        uint32
	Promisc      uint32
	CarrierState uint8
}

// ParseMsg parses a RTM_NEWLINK message into an Iface record.
// msg.Type == unix.RTM_NEWLINK and msg.Flags has no dump-interrupt bit
// are preconditions the caller must already have established via
// nlmsg.Classify; ParseMsg does not re-check them.
func ParseMsg(msg nlmsg.Message) (Iface, error) {
	if len(msg.Payload) < ifinfomsgLen {
		return Iface{}, unix.EBADMSG
	}

	e := endian()
	iface := Iface{
		Type:  e.Uint16(msg.Payload[2:4]),
		Index: int32(e.Uint32(msg.Payload[4:8])),
	}
	if iface.Type == ArphrdVoid || iface.Type == ArphrdNone {
		return Iface{}, unix.EBADMSG
	}
	if iface.Index <= 0 {
		return Iface{}, unix.EBADMSG
	}

	attrs, err := nlattr.ParseAll(msg.Payload[ifinfomsgLen:])
	if err != nil {
		return Iface{}, err
	}

	for _, a := range attrs {
		if err := applyAttr(&iface, a); err != nil {
			return Iface{}, err
		}
	}

	if iface.Name == "" {
		return Iface{}, unix.ENODEV
	}

	return iface, nil
}

// applyAttr dispatches a single attribute to its per-id parser. Unknown
// ids are silently ignored.
func applyAttr(iface *Iface, a nlattr.Attr) error {
	switch a.Type {
	case iflaAddress:
		hw, err := a.HWAddr()
		if err != nil {
			return err
		}
		iface.UcastHWAddr = hw

	case iflaBroadcast:
		hw, err := a.HWAddr()
		if err != nil {
			return err
		}
		iface.BcastHWAddr = hw

	case iflaIfname:
		name, err := a.String(IfnamSiz)
		if err != nil {
			return err
		}
		iface.Name = name
		iface.NameLen = len(name)

	case iflaMtu:
		mtu, err := a.Uint32()
		if err != nil {
			return err
		}
		if mtu > ipMaxPacket {
			return unix.ERANGE
		}
		iface.MTU = mtu

	case iflaLink:
		v, err := a.Uint32()
		if err != nil {
			return err
		}
		if v == 0 {
			return unix.ERANGE
		}
		iface.Link = v

	case iflaMaster:
		v, err := a.Uint32()
		if err != nil {
			return err
		}
		if v == 0 {
			return unix.ERANGE
		}
		iface.Master = v

	case iflaOperstate:
		v, err := a.Uint8()
		if err != nil {
			return err
		}
		if v == OperNotPresent || v == OperTesting {
			return unix.ERANGE
		}
		iface.OperState = v

	case iflaGroup:
		v, err := a.Uint32()
		if err != nil {
			return err
		}
		iface.Group = v

	case iflaPromiscuity:
		v, err := a.Uint32()
		if err != nil {
			return err
		}
		iface.Promisc = v

	case iflaCarrier:
		v, err := a.Uint8()
		if err != nil {
			return err
		}
		if v == OperNotPresent || v == OperTesting {
			return unix.ERANGE
		}
		iface.CarrierState = v
	}

	return nil
}

package iface

import (
	"encoding/binary"

	"github.com/vishvananda/netlink/nl"
)

// endian returns the host byte-order accessor used to decode and
// encode ifinfomsg fields, shared with nlattr and nlmsg so the whole
// codec agrees on one byte order source.
func endian() binary.ByteOrder {
	return nl.NativeEndian()
}

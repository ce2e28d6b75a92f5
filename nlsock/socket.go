// Package nlsock provides the thin transport glue around a netlink
// routing socket: buffer allocation, socket lifecycle, group
// subscription, sequence-number allocation, and port-id verification.
// Every Socket is single-owner: callers must not touch one from more
// than one goroutine at a time.
package nlsock

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/vishvananda/netlink/nl"
)

var nativeEndian = nl.NativeEndian()

// DumpCeiling is the kernel's maximum dump payload size, the minimum
// capacity a message buffer must have.
const DumpCeiling = 32768

// NewMessageBuffer allocates a fixed-capacity buffer sized to hold the
// largest supported netlink datagram.
func NewMessageBuffer() []byte {
	return make([]byte, DumpCeiling)
}

// transport is the raw syscall surface a Socket drives. It exists so
// tests can substitute a fake without touching a real kernel socket;
// socket_linux.go supplies the production implementation.
type transport interface {
	send(b []byte) (int, error)
	recv(b []byte) (int, error)
	setsockopt(level, name int, value int) error
	bind() (portID uint32, err error)
	joinGroup(group int) error
	leaveGroup(group int) error
	close() error
	fd() int
}

// Socket holds the opaque transport, the locally assigned port-id, and
// a private, monotonically increasing sequence counter.
type Socket struct {
	t      transport
	portID uint32
	seqno  uint32
}

// PortID returns the kernel-assigned port-id bound at Open.
func (s *Socket) PortID() uint32 {
	return s.portID
}

// NextSeqno allocates the next strictly monotonic sequence number for
// this socket.
func (s *Socket) NextSeqno() uint32 {
	s.seqno++
	return s.seqno
}

// Open binds a netlink routing socket of the given bus (e.g.
// unix.NETLINK_ROUTE) and flags, disables extended-ack reporting, and
// seeds the sequence counter from the wall clock so a restarted process
// does not replay old sequence numbers.
func Open(bus, flags int) (*Socket, error) {
	t, err := newUnixTransport(bus, flags)
	if err != nil {
		return nil, err
	}

	if err := t.setsockopt(unix.SOL_NETLINK, unix.NETLINK_CAP_ACK, 1); err != nil {
		t.close()
		return nil, err
	}

	portID, err := t.bind()
	if err != nil {
		t.close()
		return nil, err
	}

	return &Socket{
		t:      t,
		portID: portID,
		seqno:  uint32(time.Now().Unix()),
	}, nil
}

// Send writes the entirety of msg to the socket. A short write is
// treated as an impossible protocol violation and panics; a transient
// transport failure is returned as its unix.Errno.
func (s *Socket) Send(msg []byte) error {
	n, err := s.t.send(msg)
	if err != nil {
		return err
	}
	if n != len(msg) {
		panic("nlsock: short write to netlink socket")
	}
	return nil
}

// Recv reads one datagram into buf, which must be sized to at least
// DumpCeiling. It rejects a malformed-length datagram or one whose
// source port-id does not match the bound port.
func (s *Socket) Recv(buf []byte) (int, error) {
	n, err := s.t.recv(buf)
	if err != nil {
		return 0, err
	}
	if n < 16 {
		return 0, unix.EBADMSG
	}
	pid := nativeEndian.Uint32(buf[12:16])
	if pid != s.portID {
		return 0, unix.ESRCH
	}
	return n, nil
}

// JoinGroup subscribes the socket to a multicast group. group must be
// within the documented rtnetlink range.
func (s *Socket) JoinGroup(group int) error {
	return s.t.joinGroup(group)
}

// LeaveGroup unsubscribes the socket from a multicast group.
func (s *Socket) LeaveGroup(group int) error {
	return s.t.leaveGroup(group)
}

// Close tears the socket down. It is idempotent with respect to a
// signal-interrupted close, retrying via the raw file descriptor on
// EINTR.
func (s *Socket) Close() error {
	return s.t.close()
}

// FD returns the underlying file descriptor, e.g. for use with an
// external poller (select/epoll).
func (s *Socket) FD() int {
	return s.t.fd()
}

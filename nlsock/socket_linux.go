//go:build linux

package nlsock

import "golang.org/x/sys/unix"

// unixTransport drives a netlink routing socket via the raw syscalls
// exposed by golang.org/x/sys/unix, the Go analogue of the original
// source's libmnl-backed struct nlink_sock.
type unixTransport struct {
	fileDescriptor int
}

func newUnixTransport(bus, flags int) (transport, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|flags, bus)
	if err != nil {
		return nil, err
	}
	return &unixTransport{fileDescriptor: fd}, nil
}

func (t *unixTransport) send(b []byte) (int, error) {
	if err := unix.Send(t.fileDescriptor, b, 0); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (t *unixTransport) recv(b []byte) (int, error) {
	n, _, err := unix.Recvfrom(t.fileDescriptor, b, 0)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (t *unixTransport) setsockopt(level, name int, value int) error {
	return unix.SetsockoptInt(t.fileDescriptor, level, name, value)
}

func (t *unixTransport) bind() (uint32, error) {
	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: 0, Groups: 0}
	if err := unix.Bind(t.fileDescriptor, addr); err != nil {
		return 0, err
	}
	bound, err := unix.Getsockname(t.fileDescriptor)
	if err != nil {
		return 0, err
	}
	nl, ok := bound.(*unix.SockaddrNetlink)
	if !ok {
		return 0, unix.EINVAL
	}
	return nl.Pid, nil
}

func (t *unixTransport) joinGroup(group int) error {
	return t.setsockopt(unix.SOL_NETLINK, unix.NETLINK_ADD_MEMBERSHIP, group)
}

func (t *unixTransport) leaveGroup(group int) error {
	return t.setsockopt(unix.SOL_NETLINK, unix.NETLINK_DROP_MEMBERSHIP, group)
}

func (t *unixTransport) close() error {
	err := unix.Close(t.fileDescriptor)
	for err == unix.EINTR {
		err = unix.Close(t.fileDescriptor)
	}
	return err
}

func (t *unixTransport) fd() int {
	return t.fileDescriptor
}

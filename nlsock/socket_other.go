//go:build !linux

package nlsock

import "golang.org/x/sys/unix"

// rtnetlink is a Linux-only protocol; on every other platform, opening
// a socket fails rather than silently no-opping. This keeps the package
// buildable off Linux without pretending to support it.
type unsupportedTransport struct{}

func newUnixTransport(bus, flags int) (transport, error) {
	return nil, unix.ENOTSUP
}

func (unsupportedTransport) send(b []byte) (int, error)              { return 0, unix.ENOTSUP }
func (unsupportedTransport) recv(b []byte) (int, error)              { return 0, unix.ENOTSUP }
func (unsupportedTransport) setsockopt(level, name int, v int) error { return unix.ENOTSUP }
func (unsupportedTransport) bind() (uint32, error)                   { return 0, unix.ENOTSUP }
func (unsupportedTransport) joinGroup(group int) error               { return unix.ENOTSUP }
func (unsupportedTransport) leaveGroup(group int) error              { return unix.ENOTSUP }
func (unsupportedTransport) close() error                            { return unix.ENOTSUP }
func (unsupportedTransport) fd() int                                 { return -1 }

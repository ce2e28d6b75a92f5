package nlattr_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/grgbr/nlink/nlattr"
)

// putAttr appends a single TLV (len, type, payload, padding) to b.
func putAttr(b []byte, typ uint16, payload []byte) []byte {
	start := len(b)
	b = append(b, 0, 0, 0, 0) // header placeholder
	b = append(b, payload...)
	length := len(b) - start
	le := nl_littleEndianPutUint16 // see helper below
	le(b[start:start+2], uint16(length))
	le(b[start+2:start+4], typ)
	pad := (4 - (len(b)-start)%4) % 4
	for i := 0; i < pad; i++ {
		b = append(b, 0)
	}
	return b
}

func nl_littleEndianPutUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func TestParseAll(t *testing.T) {
	var buf []byte
	buf = putAttr(buf, 1, []byte("lo\x00"))
	buf = putAttr(buf, 2, []byte{1, 2, 3, 4})

	attrs, err := nlattr.ParseAll(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(attrs) != 2 {
		t.Fatalf("got %d attrs", len(attrs))
	}
	if attrs[0].Type != 1 || string(attrs[0].Payload) != "lo\x00" {
		t.Fatalf("unexpected first attr: %+v", attrs[0])
	}
	if attrs[1].Type != 2 {
		t.Fatalf("unexpected second attr: %+v", attrs[1])
	}
}

func TestParseAllRejectsOverlongAttr(t *testing.T) {
	if _, err := nlattr.ParseAll([]byte{0xFF, 0, 0, 0}); err != unix.EBADMSG {
		t.Fatalf("expected EBADMSG, got %v", err)
	}
}

// A final attribute need not carry trailing alignment padding; ParseAll
// must not read past the buffer while skipping over it.
func TestParseAllAcceptsUnpaddedFinalAttr(t *testing.T) {
	buf := []byte{5, 0, 1, 0, 0xAA, 0}
	attrs, err := nlattr.ParseAll(buf)
	if err != nil {
		t.Fatalf("ParseAll() = %v", err)
	}
	if len(attrs) != 1 || attrs[0].Type != 1 || len(attrs[0].Payload) != 1 {
		t.Fatalf("unexpected attrs: %+v", attrs)
	}
}

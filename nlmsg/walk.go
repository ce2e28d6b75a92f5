package nlmsg

import "golang.org/x/sys/unix"

// Handler processes one classified message and returns nil to keep
// walking, or a non-nil error to abort the walk and have Walk return
// it verbatim. ctx is an opaque value threaded through unchanged from
// the Walk call, mirroring the C callback's void *data argument.
type Handler func(outcome Outcome, msg Message, ctx interface{}) error

// Walk iterates every well-formed message in buf, classifying each via
// Classify and driving handler:
//
//   - Payload: handler is invoked; a nonzero return aborts the walk
//     immediately.
//   - EndOfSequence: handler is invoked and Walk returns immediately
//     afterward, discarding any bytes still left in buf. A dump's
//     terminating NLMSG_DONE (or a bare ACK) is never followed by
//     anything the caller needs to see.
//   - Empty: skipped, handler is not invoked.
//   - Interrupted: Walk aborts immediately without invoking handler.
//   - any other outcome (ErrorCode, Overrun, Malformed): handler is
//     invoked exactly once, and Walk returns whatever it returns.
//
// If the buffer is exhausted without an explicit EndOfSequence, and the
// last processed message carried the multipart flag, Walk returns
// unix.EINPROGRESS so the caller knows to receive another datagram.
// Otherwise it returns the last handler result (nil on success).
func Walk(buf []byte, handler Handler, ctx interface{}) error {
	var (
		lastMsg Message
		any     bool
	)

	for len(buf) > 0 {
		msg, n, err := Parse(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]

		any = true
		lastMsg = msg

		outcome, classifyErr := Classify(msg)
		switch outcome {
		case Payload:
			if err := handler(outcome, msg, ctx); err != nil {
				return err
			}

		case EndOfSequence:
			return handler(outcome, msg, ctx)

		case Empty:
			// Skip silently.

		case Interrupted:
			return classifyErr

		default: // ErrorCode, Overrun, Malformed
			return handler(outcome, msg, ctx)
		}
	}

	if !any {
		return nil
	}
	if lastMsg.Flags&unix.NLM_F_MULTI != 0 {
		// No explicit end-of-sequence was observed for a multipart
		// stream: the caller must receive another datagram.
		return unix.EINPROGRESS
	}
	return nil
}

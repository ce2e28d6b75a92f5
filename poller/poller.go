// Package poller repeatedly dumps the kernel's link table over a
// netlink routing socket and feeds the results into an ifcache.Cache,
// reporting only what changed since the previous cycle.
package poller

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"github.com/grgbr/nlink/ifcache"
	"github.com/grgbr/nlink/iface"
	"github.com/grgbr/nlink/metrics"
	"github.com/grgbr/nlink/nlmsg"
	"github.com/grgbr/nlink/nlsock"
	"github.com/grgbr/nlink/work"
)

// windowCap bounds the number of RTM_GETLINK dumps a Poller will track
// as in-flight at once. Poll is synchronous and releases its descriptor
// before it returns, so a Poll/Run cycle only ever has one outstanding
// request. A Poller, like the Socket and Cache it drives, must not be
// used from more than one goroutine at a time.
const windowCap = 8

// Poller drives one netlink routing socket through repeated
// RTM_GETLINK dumps.
type Poller struct {
	sock  *nlsock.Socket
	cache *ifcache.Cache
	buf   []byte
	win   *work.Window
}

// New wraps an already-open routing socket (nlsock.Open(unix.NETLINK_ROUTE, 0))
// in a Poller.
func New(sock *nlsock.Socket) *Poller {
	win := work.NewWindow(windowCap)
	for i := 0; i < windowCap; i++ {
		win.Register(&work.Work{})
	}

	return &Poller{
		sock:  sock,
		cache: ifcache.New(),
		buf:   nlsock.NewMessageBuffer(),
		win:   win,
	}
}

// Cache returns the poller's underlying ifcache.Cache, e.g. to look up
// an interface's last known state between cycles.
func (p *Poller) Cache() *ifcache.Cache {
	return p.cache
}

type pollState struct {
	cache *ifcache.Cache
	seqno uint32
}

func outcomeLabel(outcome nlmsg.Outcome) string {
	switch outcome {
	case nlmsg.ErrorCode:
		return "errorcode"
	case nlmsg.Overrun:
		return "overrun"
	case nlmsg.Malformed:
		return "malformed"
	case nlmsg.Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

func handleMsg(outcome nlmsg.Outcome, msg nlmsg.Message, ctx interface{}) error {
	state := ctx.(*pollState)

	switch outcome {
	case nlmsg.Payload:
		if msg.Seq != state.seqno {
			return nil // reply to some other in-flight request; not ours yet
		}
		link, err := iface.ParseMsg(msg)
		if err != nil {
			metrics.ErrorCount.WithLabelValues("malformed").Inc()
			return err
		}
		state.cache.Update(link)
		return nil

	case nlmsg.EndOfSequence:
		return nil

	default:
		_, err := nlmsg.Classify(msg)
		metrics.ErrorCount.WithLabelValues(outcomeLabel(outcome)).Inc()
		return err
	}
}

// Poll runs a single dump cycle: issue RTM_GETLINK, walk every reply
// datagram until the dump completes, apply every parsed link to the
// cache, and close the cycle out. It returns the deltas observed since
// the previous cycle.
//
// A kernel-reported Overrun or Interrupted dump is retried once: both
// indicate lost, not corrupt, data.
func (p *Poller) Poll() ([]ifcache.Delta, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := p.dumpOnce(); err != nil {
			if err == unix.EOVERFLOW || err == unix.EINTR {
				lastErr = err
				if attempt == 0 {
					metrics.RetryCount.Inc()
				}
				continue
			}
			return nil, err
		}
		return p.cache.EndCycle(), nil
	}
	return nil, lastErr
}

func (p *Poller) dumpOnce() error {
	w := p.win.Acquire()
	if w == nil {
		return unix.EAGAIN // windowCap concurrent dumps already in flight
	}
	seqno := p.sock.NextSeqno()
	p.win.Schedule(w, seqno)
	metrics.WindowOccupancy.Observe(float64(p.win.Count()))

	if err := p.finishDump(seqno); err != nil {
		p.win.Cancel(w)
		p.win.Release(w)
		return err
	}
	p.win.Release(p.win.Pull(seqno))
	return nil
}

func (p *Poller) finishDump(seqno uint32) error {
	var composeBuf [64]byte
	req := iface.ComposeDumpLink(composeBuf[:0], seqno, p.sock.PortID())

	start := time.Now()
	if err := p.sock.Send(req); err != nil {
		return err
	}
	metrics.SyscallTimeHistogram.WithLabelValues("send").Observe(time.Since(start).Seconds())

	state := &pollState{cache: p.cache, seqno: seqno}
	for {
		recvStart := time.Now()
		n, err := p.sock.Recv(p.buf)
		if err != nil {
			return err
		}
		metrics.SyscallTimeHistogram.WithLabelValues("recv").Observe(time.Since(recvStart).Seconds())

		err = nlmsg.Walk(p.buf[:n], handleMsg, state)
		if err == unix.EINPROGRESS {
			continue
		}
		if err != nil {
			return err
		}
		metrics.DumpLatencyHistogram.Observe(time.Since(start).Seconds())
		return nil
	}
}

// Run polls every interval until ctx is cancelled, sending each
// successful cycle's deltas down results when there are any; a failed
// cycle is counted in metrics.ErrorCount and skipped. It returns the
// context's error once cancelled.
func Run(ctx context.Context, p *Poller, interval time.Duration, results chan<- []ifcache.Delta) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		now := time.Now()
		metrics.PollingIntervalHistogram.Observe(now.Sub(last).Seconds())
		last = now

		deltas, err := p.Poll()
		if err != nil {
			metrics.ErrorCount.WithLabelValues("transport").Inc()
			continue
		}
		if len(deltas) > 0 {
			results <- deltas
		}
	}
}

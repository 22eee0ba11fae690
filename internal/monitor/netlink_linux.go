package monitor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
	"github.com/syndtr/gocapability/capability"
	"golang.org/x/sys/unix"

	apperrors "launchhook/internal/errors"
	"launchhook/internal/logging"
)

const (
	// Connector ids for the process events connector
	cnIdxProc = 1
	cnValProc = 1

	// Proc connector operation
	procCnMcastListen = 1
	procCnMcastIgnore = 2

	// Proc connector events
	procEventExec = 0x00000002

	nlMsgHdrLen    = 16
	cnMsgHdrLen    = 20
	procEventHdrLn = 16
	execEventLen   = 8

	recvTimeout = 500 * time.Millisecond
)

// NetlinkWatcher receives exec notifications from the kernel proc connector.
// Every subscription owns its own netlink socket and reader goroutine.
type NetlinkWatcher struct {
	logger *logging.Logger

	// resolve maps a pid to the image names it may be matched by
	resolve func(pid int) (names []string, path string)
	// checkPrivilege runs before the socket is opened
	checkPrivilege func() error
}

// NewNetlinkWatcher creates a proc connector watcher
func NewNetlinkWatcher(logger *logging.Logger) *NetlinkWatcher {
	if logger == nil {
		logger = logging.NewLogger("[watch]", false)
	}
	return &NetlinkWatcher{
		logger:         logger,
		resolve:        resolveProcessNames,
		checkPrivilege: checkNetAdmin,
	}
}

// checkNetAdmin fails early with a readable message when the process lacks
// CAP_NET_ADMIN, which the proc connector requires.
func checkNetAdmin() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("failed to initialize capabilities: %w", err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("failed to load capabilities: %w", err)
	}
	if !caps.Get(capability.EFFECTIVE, capability.CAP_NET_ADMIN) {
		return errors.New("CAP_NET_ADMIN is required to receive process events (run as root or use the poll watcher)")
	}
	return nil
}

// Subscribe opens a netlink socket, asks the kernel for process events and starts
// delivering matching exec events to onMatch.
func (w *NetlinkWatcher) Subscribe(filter Filter, onMatch MatchHandler) (*Handle, error) {
	if !filter.Valid() {
		return nil, apperrors.WatchSetup(errors.New("empty target name"), "invalid filter")
	}
	if onMatch == nil {
		return nil, apperrors.WatchSetup(errors.New("nil match handler"), "invalid subscription")
	}

	if w.checkPrivilege != nil {
		if err := w.checkPrivilege(); err != nil {
			return nil, apperrors.WatchSetup(err, "insufficient privilege")
		}
	}

	sock, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.NETLINK_CONNECTOR)
	if err != nil {
		return nil, apperrors.WatchSetup(err, "failed to create netlink socket")
	}

	// Port id 0 lets the kernel pick a unique one, so subscriptions never collide
	addr := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Pid:    0,
		Groups: cnIdxProc,
	}
	if err := unix.Bind(sock, addr); err != nil {
		unix.Close(sock)
		return nil, apperrors.WatchSetup(err, "failed to bind netlink socket")
	}

	tv := unix.NsecToTimeval(recvTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(sock, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(sock)
		return nil, apperrors.WatchSetup(err, "failed to set receive timeout")
	}

	if err := sendControl(sock, procCnMcastListen); err != nil {
		unix.Close(sock)
		return nil, apperrors.WatchSetup(err, "failed to subscribe to proc connector")
	}

	stopCh := make(chan struct{})
	var wg sync.WaitGroup

	h := NewHandle(filter, func() error {
		close(stopCh)
		wg.Wait()
		if err := sendControl(sock, procCnMcastIgnore); err != nil {
			w.logger.Debugf("Failed to unsubscribe from proc connector: %v", err)
		}
		return unix.Close(sock)
	})

	log := w.logger.With("watch", h.ID(), "target", filter.Image())
	log.Infof("Watching for %s via proc connector", filter.Image())

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.receive(sock, filter, onMatch, stopCh, log)
	}()

	return h, nil
}

// Unsubscribe stops h; nil and already stopped handles are ignored
func (w *NetlinkWatcher) Unsubscribe(h *Handle) error {
	return h.Stop()
}

// sendControl sends a PROC_CN_MCAST_* operation to the kernel
func sendControl(sock int, op uint32) error {
	buf := make([]byte, nlMsgHdrLen+cnMsgHdrLen+4)
	ne := binary.NativeEndian

	// netlink header
	ne.PutUint32(buf[0:], uint32(len(buf)))
	ne.PutUint16(buf[4:], unix.NLMSG_DONE)
	ne.PutUint16(buf[6:], 0)
	ne.PutUint32(buf[8:], 0)
	ne.PutUint32(buf[12:], uint32(os.Getpid()))

	// connector header
	cn := buf[nlMsgHdrLen:]
	ne.PutUint32(cn[0:], cnIdxProc)
	ne.PutUint32(cn[4:], cnValProc)
	ne.PutUint32(cn[8:], 0)
	ne.PutUint32(cn[12:], 0)
	ne.PutUint16(cn[16:], 4)
	ne.PutUint16(cn[18:], 0)

	ne.PutUint32(buf[nlMsgHdrLen+cnMsgHdrLen:], op)

	return unix.Sendto(sock, buf, 0, &unix.SockaddrNetlink{Family: unix.AF_NETLINK})
}

// receive reads netlink datagrams until stopCh is closed
func (w *NetlinkWatcher) receive(sock int, filter Filter, onMatch MatchHandler, stopCh <-chan struct{}, log *logging.Logger) {
	buf := make([]byte, 4096)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		n, _, err := unix.Recvfrom(sock, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
				continue
			}
			select {
			case <-stopCh:
				return
			default:
			}
			// ENOBUFS means the kernel dropped events under load; keep going
			log.Warnf("Error reading from netlink: %v", err)
			continue
		}

		pid, ok, err := parseExecEvent(buf[:n])
		if err != nil {
			log.Debugf("Error processing netlink message: %v", err)
			continue
		}
		if !ok {
			continue
		}

		names, path := w.resolve(pid)
		for _, name := range names {
			if filter.Matches(name) {
				log.Debugf("Process %s started (PID: %d)", name, pid)
				onMatch(Event{PID: pid, Name: name, Path: path, Time: time.Now()})
				break
			}
		}
	}
}

// parseExecEvent extracts the pid of a PROC_EVENT_EXEC message. ok is false for
// any other connector message.
func parseExecEvent(buf []byte) (pid int, ok bool, err error) {
	ne := binary.NativeEndian

	if len(buf) < nlMsgHdrLen {
		return 0, false, errors.New("message too short for netlink header")
	}
	msgLen := int(ne.Uint32(buf[0:]))
	if msgLen < nlMsgHdrLen || msgLen > len(buf) {
		return 0, false, fmt.Errorf("invalid netlink message length %d", msgLen)
	}
	buf = buf[nlMsgHdrLen:msgLen]

	if len(buf) < cnMsgHdrLen {
		return 0, false, errors.New("message too short for connector header")
	}
	if ne.Uint32(buf[0:]) != cnIdxProc || ne.Uint32(buf[4:]) != cnValProc {
		return 0, false, nil
	}
	buf = buf[cnMsgHdrLen:]

	if len(buf) < procEventHdrLn {
		return 0, false, errors.New("message too short for proc event header")
	}
	what := ne.Uint32(buf[0:])
	buf = buf[procEventHdrLn:]

	if what != procEventExec {
		return 0, false, nil
	}
	if len(buf) < execEventLen {
		return 0, false, errors.New("message too short for exec event")
	}

	// process_pid then process_tgid; the tgid identifies the process
	tgid := ne.Uint32(buf[4:])
	return int(tgid), true, nil
}

// resolveProcessNames returns the executable base name and the kernel command
// name of pid. Either may be missing when the process already exited or is not
// accessible.
func resolveProcessNames(pid int) ([]string, string) {
	var names []string

	path, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
	if err == nil {
		names = append(names, filepath.Base(path))
	} else {
		path = ""
	}

	if p, err := process.NewProcess(int32(pid)); err == nil {
		if name, err := p.Name(); err == nil && name != "" {
			names = append(names, name)
		}
	}

	return names, path
}

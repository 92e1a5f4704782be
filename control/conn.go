package control

import (
	"io"
	"net"
	"strings"
	"time"

	"github.com/LFManifesto/freedvtnc2/util"
)

// handle owns one client connection: byte-to-line framing, strictly
// sequential command execution, and response writes.  Nothing that
// happens here touches other connections or the listener.
func (s *Server) handle(conn net.Conn) {
	remote := conn.RemoteAddr()
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debugf("connection close: %v", err)
		}
		s.metrics.ConnectionClosed()
		log.Debugf("connection closed from %s", remote)
	}()

	// A connected client may idle indefinitely.
	if err := conn.SetDeadline(time.Time{}); err != nil {
		log.Debugf("clear deadline: %v", err)
	}

	buf := util.GetBuf()
	defer util.PutBuf(buf)

	var pending string
	for s.running.Load() {
		n, err := conn.Read(*buf)
		if n > 0 {
			pending += string((*buf)[:n])
			var writeFailed bool
			pending, writeFailed = s.processLines(conn, pending)
			if writeFailed {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Debugf("connection read: %v", err)
			}
			return
		}
	}
}

// processLines dispatches every complete line in the buffered input,
// in order, writing one response per line before looking at the next.
// It returns the leftover partial line, which stays buffered across
// reads, and whether a response write failed.
func (s *Server) processLines(conn net.Conn, buffered string) (string, bool) {
	for {
		i := strings.IndexByte(buffered, '\n')
		if i < 0 {
			return buffered, false
		}

		// Malformed UTF-8 is dropped rather than refused.
		line := strings.TrimSpace(strings.ToValidUTF8(buffered[:i], ""))
		buffered = buffered[i+1:]
		if line == "" {
			continue
		}

		response := s.dispatcher.Dispatch(line)
		if _, err := conn.Write([]byte(response + "\n")); err != nil {
			log.Debugf("connection write: %v", err)
			return buffered, true
		}
	}
}

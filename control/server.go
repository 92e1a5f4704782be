package control

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LFManifesto/freedvtnc2/config"
	"github.com/LFManifesto/freedvtnc2/internal/metrics"
	"github.com/LFManifesto/freedvtnc2/logging"
	"github.com/LFManifesto/freedvtnc2/util"
)

var log = logging.PackageLogger("control")

// ServerConfig holds the immutable listen parameters of a command
// server.  Zero fields take the package defaults.
type ServerConfig struct {
	Address      string        // bind address, default 0.0.0.0
	Port         int           // TCP port, default 8002
	PollInterval time.Duration // accept wait bound, default 1s
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Address == "" {
		c.Address = config.DefaultListenAddress
	}
	if c.Port == 0 {
		c.Port = config.DefaultListenPort
	}
	if c.PollInterval <= 0 {
		c.PollInterval = config.DefaultAcceptPoll
	}
	return c
}

// Server is the TCP command server.  One goroutine runs the accept
// loop; every accepted client gets its own handler goroutine, with no
// admission cap; this is a low-rate operator control channel.
type Server struct {
	cfg        ServerConfig
	devices    *Devices
	dispatcher *Dispatcher
	metrics    *metrics.Collector

	running atomic.Bool
	ln      *net.TCPListener
	wg      sync.WaitGroup // accept loop only; connections drain on their own
}

// NewServer creates a command server over the given collaborators.
func NewServer(cfg ServerConfig, devices *Devices) *Server {
	m := metrics.New()
	return &Server{
		cfg:        cfg.withDefaults(),
		devices:    devices,
		dispatcher: NewDispatcher(devices, m),
		metrics:    m,
	}
}

// Start binds the listening socket and launches the accept loop.  It
// is idempotent: starting a running server logs a warning and returns
// nil.  A bind or listen failure is fatal to startup and returned to
// the caller; it is not retried.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn("command server already running")
		return nil
	}

	addr := util.FormatAddr(s.cfg.Address, s.cfg.Port)
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("resolve %s: %w", addr, err)
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.ln = ln

	s.wg.Add(1)
	go s.acceptLoop()

	log.Infof("command server started on %s", ln.Addr())
	return nil
}

// Stop flips the running flag and closes the listening socket so the
// accept loop unblocks within one poll interval.  Idempotent.  Open
// client connections are not interrupted; they end when their peer
// disconnects.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	if s.ln != nil {
		// Close is advisory cleanup here, never a failure path.
		if err := s.ln.Close(); err != nil {
			log.Debugf("listener close: %v", err)
		}
	}
	s.wg.Wait()
	log.Info("command server stopped")
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool { return s.running.Load() }

// Addr returns the bound listener address, or nil before Start.
// Useful when the configured port is 0.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Metrics exposes the server's runtime counters.
func (s *Server) Metrics() *metrics.Collector { return s.metrics }

// acceptLoop accepts connections until the running flag drops.  Each
// accept waits at most one poll interval so the flag is re-checked
// even with no inbound traffic.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		if err := s.ln.SetDeadline(time.Now().Add(s.cfg.PollInterval)); err != nil {
			log.Debugf("accept deadline: %v", err)
		}
		conn, err := s.ln.AcceptTCP()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if !s.running.Load() {
				return
			}
			log.Errorf("accept: %v", err)
			continue
		}

		s.metrics.ConnectionOpened()
		log.Debugf("connection from %s", conn.RemoteAddr())
		go s.handle(conn)
	}
}

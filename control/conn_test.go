package control

import (
	"bufio"
	"net"
	"testing"
	"time"
)

// TestConn_FragmentedLines verifies that a command split across
// several TCP writes is reassembled before dispatch.
func TestConn_FragmentedLines(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	for _, chunk := range []string{"PI", "NG", "\n"} {
		if _, err := conn.Write([]byte(chunk)); err != nil {
			t.Fatalf("write %q: %v", chunk, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if resp != "OK PONG\n" {
		t.Errorf("response = %q", resp)
	}
}

// TestConn_PipelinedLines verifies that several commands arriving in
// one read are answered in order, one line each.
func TestConn_PipelinedLines(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("PING\nMODE\nFOO\n")); err != nil {
		t.Fatal(err)
	}

	want := []string{"OK PONG\n", "OK MODE DATAC1\n", "ERROR Unknown command: FOO\n"}
	for i, w := range want {
		resp, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if resp != w {
			t.Errorf("response %d = %q, want %q", i, resp, w)
		}
	}
}

// TestConn_CRLFAndBlankLines verifies \r trimming and that blank
// lines produce no response at all.
func TestConn_CRLFAndBlankLines(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("\r\n\nPING\r\n")); err != nil {
		t.Fatal(err)
	}

	resp, err := r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if resp != "OK PONG\n" {
		t.Errorf("response = %q (blank lines must be silent)", resp)
	}
}

// TestConn_InvalidUTF8Dropped verifies malformed bytes are discarded
// instead of poisoning the command.
func TestConn_InvalidUTF8Dropped(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	r := bufio.NewReader(conn)

	if _, err := conn.Write([]byte("PING\xff\xfe\n")); err != nil {
		t.Fatal(err)
	}

	resp, err := r.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if resp != "OK PONG\n" {
		t.Errorf("response = %q", resp)
	}
}

// TestConn_PeerCloseEndsHandler verifies the handler exits and the
// connection count drops when the client hangs up.
func TestConn_PeerCloseEndsHandler(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()

	deadline := time.After(2 * time.Second)
	for srv.Metrics().ActiveConnections() != 0 {
		select {
		case <-deadline:
			t.Fatalf("active connections = %d, want 0", srv.Metrics().ActiveConnections())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// TestConn_PartialLineGetsNoResponse verifies a line that never
// completes is never dispatched.
func TestConn_PartialLineGetsNoResponse(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("PING")); err != nil { // no newline
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 64)
	if n, err := conn.Read(buf); err == nil {
		t.Errorf("unexpected response %q to partial line", buf[:n])
	}
}

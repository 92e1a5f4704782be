package util

import (
	"net"
	"strconv"
	"testing"
)

func TestFormatAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8002, "0.0.0.0:8002"},
		{"localhost", 9000, "localhost:9000"},
		{"::1", 8002, "[::1]:8002"},
	}
	for _, tt := range tests {
		if got := FormatAddr(tt.host, tt.port); got != tt.want {
			t.Errorf("FormatAddr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestFindFreePort(t *testing.T) {
	port, err := FindFreePort()
	if err != nil {
		t.Fatalf("FindFreePort: %v", err)
	}
	if port < 1 || port > 65535 {
		t.Fatalf("port %d out of range", port)
	}

	// The port should be bindable right after.
	l, err := net.Listen("tcp", "127.0.0.1:"+strconv.Itoa(port))
	if err != nil {
		t.Fatalf("bind returned port: %v", err)
	}
	l.Close()
}

func TestBufPool(t *testing.T) {
	buf := GetBuf()
	if len(*buf) != DefaultBufSize {
		t.Fatalf("buffer size = %d, want %d", len(*buf), DefaultBufSize)
	}
	PutBuf(buf)
	PutBuf(nil) // must not panic
}

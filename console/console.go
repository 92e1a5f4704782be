// Package console implements the interactive operator client for the
// command port: it dials a running server, sends one command line at
// a time, and prints the single response line each produces.
//
// On a terminal it offers readline editing with persistent history;
// with piped input it degrades to plain line reading so it stays
// scriptable.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"

	"github.com/LFManifesto/freedvtnc2/logging"
)

var log = logging.PackageLogger("console")

const (
	prompt       = "freedvtnc2> "
	historyLimit = 500
)

// Config holds the console session parameters.
type Config struct {
	Address     string // host:port of the command server
	HistoryPath string // readline history file; empty disables persistence

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.  A non-nil
	// Stdin forces scripted (non-readline) mode.
	Stdin  io.Reader
	Stdout io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

// Run drives one console session until EOF, "exit"/"quit", context
// cancellation, or a connection failure.
func Run(ctx context.Context, cfg Config) error {
	conn, err := net.Dial("tcp", cfg.Address)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Address, err)
	}
	defer conn.Close()

	// Unblock a pending read when the surrounding context ends.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	lines, err := newLineReader(cfg)
	if err != nil {
		return err
	}
	defer lines.Close()

	responses := bufio.NewReader(conn)
	out := cfg.stdout()

	for {
		line, err := lines.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}

		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("send command: %w", err)
		}
		response, err := responses.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		fmt.Fprint(out, response)
		lines.Remember(line)
	}
}

// lineReader reads input either through readline (interactive) or a
// plain scanner (piped).
type lineReader struct {
	rl      *readline.Instance
	scanner *bufio.Scanner
}

func newLineReader(cfg Config) (*lineReader, error) {
	interactive := cfg.Stdin == nil && term.IsTerminal(int(os.Stdin.Fd()))
	if !interactive {
		in := cfg.Stdin
		if in == nil {
			in = os.Stdin
		}
		return &lineReader{scanner: bufio.NewScanner(in)}, nil
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:                 prompt,
		HistoryFile:            cfg.HistoryPath,
		HistoryLimit:           historyLimit,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		log.Debugf("readline unavailable, falling back to plain input: %v", err)
		return &lineReader{scanner: bufio.NewScanner(os.Stdin)}, nil
	}
	return &lineReader{rl: rl}, nil
}

// ReadLine returns the next input line, or io.EOF when input ends.
// Ctrl-C in interactive mode clears the current line.
func (r *lineReader) ReadLine() (string, error) {
	if r.rl != nil {
		for {
			line, err := r.rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			}
			return line, err
		}
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// Remember adds a non-empty line to the interactive history.
func (r *lineReader) Remember(line string) {
	if r.rl != nil {
		if err := r.rl.SaveToHistory(line); err != nil {
			log.Debugf("history save: %v", err)
		}
	}
}

// Close releases the readline instance, persisting history.
func (r *lineReader) Close() {
	if r.rl != nil {
		r.rl.Close()
	}
}

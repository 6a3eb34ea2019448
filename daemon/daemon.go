// Package daemon drives an mpv process over its JSON IPC socket and exposes
// it with the playback primitives of an embedded video player.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// WatchURL is the address handed to mpv for a video id.
const WatchURL = "https://www.youtube.com/watch?v="

const ioTimeout = 2 * time.Second

var (
	ErrNotConnected = errors.New("player not connected")

	errUnavailable = errors.New("property unavailable")
)

// State uses the numbering of the YouTube player API.
type State int

const (
	Unstarted State = -1
	Ended     State = 0
	Playing   State = 1
	Paused    State = 2
	Buffering State = 3
	Cued      State = 5
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Ended:
		return "ended"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Buffering:
		return "buffering"
	case Cued:
		return "cued"
	default:
		return "unknown"
	}
}

// Daemon is one mpv instance.
type Daemon struct {
	bin    string
	socket string
	log    zerolog.Logger
	cmd    *exec.Cmd

	mu       sync.Mutex
	conn     net.Conn
	reader   *bufio.Reader
	nextID   int
	loaded   bool // a video was handed over at least once
	starting bool // loadfile sent, mpv not seen busy yet
	cued     bool // loaded paused, waiting for Play
}

// New returns a daemon that runs bin and talks to it over socket.
func New(bin, socket string, log zerolog.Logger) *Daemon {
	if bin == "" {
		bin = "mpv"
	}
	return &Daemon{bin: bin, socket: socket, log: log}
}

// Start launches mpv in idle mode and connects to it.
func (d *Daemon) Start(ctx context.Context) error {
	_ = os.Remove(d.socket)
	cmd := exec.Command(d.bin,
		"--idle=yes",
		"--keep-open=yes",
		"--force-window=yes",
		"--really-quiet",
		"--input-ipc-server="+d.socket,
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", d.bin, err)
	}
	d.cmd = cmd
	d.log.Info().Str("bin", d.bin).Int("pid", cmd.Process.Pid).Msg("player process started")

	if err := d.Connect(ctx); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		d.cmd = nil
		return err
	}
	return nil
}

// Connect dials the IPC socket, retrying until ctx is done. mpv creates the
// socket a little after it starts.
func (d *Daemon) Connect(ctx context.Context) error {
	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "unix", d.socket)
		if err == nil {
			d.mu.Lock()
			d.conn = conn
			d.reader = bufio.NewReader(conn)
			d.mu.Unlock()
			d.log.Debug().Str("socket", d.socket).Msg("player connected")
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect %s: %w", d.socket, err)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Close asks mpv to quit and releases the socket.
func (d *Daemon) Close() error {
	if d.connected() {
		if _, err := d.request("quit"); err != nil {
			d.log.Debug().Err(err).Msg("quit command failed")
		}
	}
	d.mu.Lock()
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
	d.mu.Unlock()

	if d.cmd != nil {
		err := d.cmd.Wait()
		d.cmd = nil
		_ = os.Remove(d.socket)
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return fmt.Errorf("wait player: %w", err)
		}
	}
	return nil
}

// LoadOrCueVideo loads the video paused. The next Play starts it.
func (d *Daemon) LoadOrCueVideo(id string) error {
	if err := d.setProperty("pause", true); err != nil {
		return err
	}
	if _, err := d.request("loadfile", WatchURL+id, "replace"); err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}
	d.mu.Lock()
	d.loaded = true
	d.starting = true
	d.cued = true
	d.mu.Unlock()
	return nil
}

func (d *Daemon) Play() error {
	if err := d.setProperty("pause", false); err != nil {
		return err
	}
	d.mu.Lock()
	d.cued = false
	d.mu.Unlock()
	return nil
}

func (d *Daemon) Pause() error {
	return d.setProperty("pause", true)
}

// SeekTo jumps to an absolute position. Without allowSeekAhead the seek is
// exact rather than keyframe based.
func (d *Daemon) SeekTo(seconds float64, allowSeekAhead bool) error {
	mode := "absolute+exact"
	if allowSeekAhead {
		mode = "absolute"
	}
	if _, err := d.request("seek", seconds, mode); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// CurrentTime returns the playback position in seconds, 0 when nothing is
// loaded.
func (d *Daemon) CurrentTime() (float64, error) {
	return d.getFloat("time-pos")
}

// Duration returns the length of the loaded video in seconds, 0 when unknown.
func (d *Daemon) Duration() (float64, error) {
	return d.getFloat("duration")
}

// State reports the playback state.
func (d *Daemon) State() (State, error) {
	var s snapshot
	var err error
	if s.idle, err = d.getBool("idle-active"); err != nil {
		return Unstarted, err
	}
	if s.eof, err = d.getBool("eof-reached"); err != nil {
		return Unstarted, err
	}
	if s.paused, err = d.getBool("pause"); err != nil {
		return Unstarted, err
	}
	if s.buffering, err = d.getBool("paused-for-cache"); err != nil {
		return Unstarted, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !s.idle {
		d.starting = false
	}
	return resolveState(d.loaded, d.starting, d.cued, s), nil
}

type snapshot struct {
	idle      bool
	eof       bool
	paused    bool
	buffering bool
}

func resolveState(loaded, starting, cued bool, s snapshot) State {
	switch {
	case !loaded:
		return Unstarted
	case s.idle && starting:
		return Buffering
	case s.eof, s.idle:
		return Ended
	case s.buffering:
		return Buffering
	case s.paused && cued:
		return Cued
	case s.paused:
		return Paused
	default:
		return Playing
	}
}

func (d *Daemon) connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

func (d *Daemon) setProperty(name string, value any) error {
	if _, err := d.request("set_property", name, value); err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func (d *Daemon) getBool(name string) (bool, error) {
	data, err := d.request("get_property", name)
	if errors.Is(err, errUnavailable) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", name, err)
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

func (d *Daemon) getFloat(name string) (float64, error) {
	data, err := d.request("get_property", name)
	if errors.Is(err, errUnavailable) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", name, err)
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

type ipcResponse struct {
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID *int            `json:"request_id"`
	Event     string          `json:"event"`
}

// request sends one command and waits for its reply, skipping the event
// lines mpv interleaves.
func (d *Daemon) request(args ...any) (json.RawMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil, ErrNotConnected
	}

	d.nextID++
	id := d.nextID
	line, err := json.Marshal(ipcRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	_ = d.conn.SetDeadline(time.Now().Add(ioTimeout))
	if _, err := d.conn.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	for {
		raw, err := d.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("read reply: %w", err)
		}
		var resp ipcResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			d.log.Debug().Err(err).Bytes("line", raw).Msg("skipping unreadable player line")
			continue
		}
		if resp.Event != "" || resp.RequestID == nil || *resp.RequestID != id {
			continue
		}
		switch resp.Error {
		case "success":
			return resp.Data, nil
		case "property unavailable":
			return nil, errUnavailable
		default:
			return nil, fmt.Errorf("player: %s", resp.Error)
		}
	}
}

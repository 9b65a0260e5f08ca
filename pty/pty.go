// Package pty runs a shell behind a pseudo-terminal and exposes it as an
// asynchronous command/event channel pair (spec component C4).
package pty

import (
	"bufio"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"syscall"
	"time"

	creackpty "github.com/creack/pty"

	"github.com/raventerminal/core/logging"
	"github.com/raventerminal/core/vtparser"
)

// CommandKind discriminates Command payloads.
type CommandKind int

const (
	CommandWriteData CommandKind = iota
	CommandResize
	CommandShutdown
)

// Command is sent on Session's command channel to drive the PTY.
type Command struct {
	Kind CommandKind

	// CommandWriteData
	Data []byte

	// CommandResize
	Cols, Rows uint16
}

// EventKind discriminates Event payloads.
type EventKind int

const (
	EventData EventKind = iota
	EventParsedActions
	EventProcessExit
	EventError
)

// Event is received on Session's event channel.
type Event struct {
	Kind EventKind

	Data    []byte
	Actions []vtparser.ParseAction
	ExitCode int
	Err      string
}

// Session owns one shell process behind a PTY, driven by a background
// goroutine that multiplexes commands in and events out over two
// channels — mirroring the original implementation's actor-per-session
// design rather than exposing raw Read/Write to callers. The channels are
// buffered to 256 entries each and are not unbounded: SendCommand blocks
// while the command channel is full, and the session's goroutines block
// while the event channel is full.
type Session struct {
	commandCh chan Command
	eventCh   chan Event
}

// ShellConfig controls how the child shell is launched.
type ShellConfig struct {
	Path          string
	SourceRC      bool
	AdditionalEnv map[string]string
}

// StartShell spawns the configured (or auto-detected) login shell behind a
// PTY of the given size and returns a Session driving it.
func StartShell(cfg ShellConfig, cols, rows uint16) (*Session, error) {
	shellPath := findShell(cfg)
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	cmd := buildShellCommand(shellPath, cfg, currentUser)
	ptmx, err := creackpty.StartWithSize(cmd, &creackpty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, err
	}

	s := &Session{
		commandCh: make(chan Command, 256),
		eventCh:   make(chan Event, 256),
	}

	go doSessionLoop(cmd, ptmx, s.commandCh, s.eventCh)
	return s, nil
}

// SendCommand enqueues a command for the session's background goroutine.
func (s *Session) SendCommand(c Command) { s.commandCh <- c }

// WriteData is shorthand for SendCommand(Command{Kind: CommandWriteData}).
func (s *Session) WriteData(data []byte) { s.SendCommand(Command{Kind: CommandWriteData, Data: data}) }

// Resize is shorthand for SendCommand(Command{Kind: CommandResize}).
func (s *Session) Resize(cols, rows uint16) {
	s.SendCommand(Command{Kind: CommandResize, Cols: cols, Rows: rows})
}

// Shutdown is shorthand for SendCommand(Command{Kind: CommandShutdown}).
func (s *Session) Shutdown() { s.SendCommand(Command{Kind: CommandShutdown}) }

// Events returns the channel of Events the session emits. Closed once the
// background goroutine has finished cleanup.
func (s *Session) Events() <-chan Event { return s.eventCh }

// TryRecvEvent performs a non-blocking receive.
func (s *Session) TryRecvEvent() (Event, bool) {
	select {
	case e, ok := <-s.eventCh:
		return e, ok
	default:
		return Event{}, false
	}
}

func doSessionLoop(cmd *exec.Cmd, ptmx *os.File, commandCh chan Command, eventCh chan Event) {
	log := logging.New("pty")
	defer close(eventCh)
	defer ptmx.Close()

	readDone := make(chan struct{})
	go readLoop(ptmx, eventCh, readDone)

	exitCh := make(chan int, 1)
	go func() {
		err := cmd.Wait()
		code := 0
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		exitCh <- code
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var pendingExit *int
	for {
		select {
		case c := <-commandCh:
			switch c.Kind {
			case CommandWriteData:
				if _, err := ptmx.Write(c.Data); err != nil {
					eventCh <- Event{Kind: EventError, Err: err.Error()}
				}
			case CommandResize:
				if err := creackpty.Setsize(ptmx, &creackpty.Winsize{Cols: c.Cols, Rows: c.Rows}); err != nil {
					eventCh <- Event{Kind: EventError, Err: err.Error()}
				}
			case CommandShutdown:
				if cmd.Process != nil {
					cmd.Process.Kill()
				}
				log.Info().Msg("session shut down by caller")
				return
			}
		case code := <-exitCh:
			pendingExit = &code
		case <-ticker.C:
			if pendingExit != nil {
				eventCh <- Event{Kind: EventProcessExit, ExitCode: *pendingExit}
				log.Info().Int("exit_code", *pendingExit).Msg("child process exited")
				return
			}
		}
	}
}

// readLoop reads raw bytes off the PTY master, emits them as Data events,
// and separately runs each chunk through a parser to emit ParsedActions —
// mirroring the original Rust session's dual-event model.
func readLoop(ptmx *os.File, eventCh chan Event, done chan struct{}) {
	defer close(done)
	p := vtparser.NewParser()
	r := bufio.NewReaderSize(ptmx, 4096)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			eventCh <- Event{Kind: EventData, Data: chunk}
			actions := p.Parse(chunk)
			if len(actions) > 0 {
				eventCh <- Event{Kind: EventParsedActions, Actions: actions}
			}
		}
		if err != nil {
			return
		}
	}
}

func buildShellCommand(shellPath string, cfg ShellConfig, u *user.User) *exec.Cmd {
	shellBase := shellPath
	if idx := strings.LastIndex(shellPath, "/"); idx >= 0 {
		shellBase = shellPath[idx+1:]
	}

	var cmd *exec.Cmd
	if cfg.SourceRC {
		switch shellBase {
		case "fish":
			cmd = exec.Command(shellPath, "-i")
		default:
			cmd = exec.Command(shellPath, "-i")
		}
	} else {
		switch shellBase {
		case "bash":
			cmd = exec.Command(shellPath, "--noprofile", "--norc", "-i")
		case "zsh":
			cmd = exec.Command(shellPath, "--no-rcs", "-i")
		case "fish":
			cmd = exec.Command(shellPath, "--no-config", "-i")
		default:
			cmd = exec.Command(shellPath, "-i")
		}
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	env := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:" + os.Getenv("PATH"),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"HOME=" + u.HomeDir,
		"USER=" + u.Username,
		"SHELL=" + shellPath,
		"LANG=en_US.UTF-8",
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		env = append(env, "DISPLAY="+display)
	}
	for k, v := range cfg.AdditionalEnv {
		env = append(env, k+"="+v)
	}
	cmd.Env = env
	cmd.Dir = u.HomeDir
	return cmd
}

// findShell resolves the shell binary to launch: an explicit config path,
// else /etc/passwd's entry for the current user, else the first common
// shell that exists on disk, else /bin/sh.
func findShell(cfg ShellConfig) string {
	if cfg.Path != "" {
		if _, err := os.Stat(cfg.Path); err == nil {
			return cfg.Path
		}
	}
	if u, err := user.Current(); err == nil {
		if shell := userShellFromPasswd(u.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}
	for _, candidate := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "/bin/sh"
}

func userShellFromPasswd(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// DefaultShellConfig mirrors get_default_shell: respects $SHELL, defaulting
// to /bin/sh when unset.
func DefaultShellConfig() ShellConfig {
	if shell := os.Getenv("SHELL"); shell != "" {
		return ShellConfig{Path: shell, SourceRC: true}
	}
	return ShellConfig{Path: "/bin/sh", SourceRC: true}
}

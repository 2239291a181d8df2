package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"switchmap/internal/domain"
	"switchmap/internal/ios"
)

// DeviceQuerier captures the raw topology data of a single device. Any
// failure to connect, authenticate, or execute surfaces as one error for
// that host.
type DeviceQuerier interface {
	Query(ctx context.Context, host string) (*domain.DeviceCapture, error)
}

// SSHQuerierConfig holds connection settings shared across the fleet. One
// username/password pair authenticates against every device; per-host
// credentials are not supported.
type SSHQuerierConfig struct {
	Username string
	Password string
	// Port is the SSH port on the devices
	Port int
	// ConnectTimeout bounds dial and handshake
	ConnectTimeout time.Duration
	// CommandTimeout bounds each command round-trip
	CommandTimeout time.Duration
}

// DefaultSSHQuerierConfig returns sensible defaults
func DefaultSSHQuerierConfig() SSHQuerierConfig {
	return SSHQuerierConfig{
		Port:           22,
		ConnectTimeout: 10 * time.Second,
		CommandTimeout: 30 * time.Second,
	}
}

// SSHQuerier queries Cisco IOS devices over SSH
type SSHQuerier struct {
	config SSHQuerierConfig
	log    *slog.Logger
}

// NewSSHQuerier creates a querier for the given fleet credentials
func NewSSHQuerier(config SSHQuerierConfig, logger *slog.Logger) *SSHQuerier {
	if config.Port == 0 {
		config.Port = 22
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.CommandTimeout == 0 {
		config.CommandTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SSHQuerier{config: config, log: logger}
}

// Query connects to the device, disables output pagination, then captures
// the interface MAC listing and the dynamic MAC table verbatim.
func (q *SSHQuerier) Query(ctx context.Context, host string) (*domain.DeviceCapture, error) {
	client, err := q.connect(ctx, host)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if _, err := q.runCommand(client, ios.CommandDisablePaging); err != nil {
		return nil, fmt.Errorf("disable paging on %s: %w", host, err)
	}

	interfaceText, err := q.runCommand(client, ios.CommandInterfaceMacs)
	if err != nil {
		return nil, fmt.Errorf("interface listing on %s: %w", host, err)
	}

	tableText, err := q.runCommand(client, ios.CommandMacTable)
	if err != nil {
		return nil, fmt.Errorf("mac table on %s: %w", host, err)
	}

	q.log.Debug("captured device output", "host", host,
		"interface_bytes", len(interfaceText), "table_bytes", len(tableText))

	return &domain.DeviceCapture{
		Host:             host,
		InterfaceMacText: interfaceText,
		MacTableText:     tableText,
	}, nil
}

// connect establishes an SSH connection with password authentication
func (q *SSHQuerier) connect(ctx context.Context, host string) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: q.config.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(q.config.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         q.config.ConnectTimeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(q.config.Port))

	// Dial with context so a hung device honors the connect timeout
	dialer := &net.Dialer{
		Timeout: q.config.ConnectTimeout,
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// runCommand executes one command in its own session and returns the output
func (q *SSHQuerier) runCommand(client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	done := make(chan error, 1)
	var output []byte

	go func() {
		output, err = session.CombinedOutput(cmd)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			// IOS reports a non-zero status for some otherwise successful
			// show commands; keep the output in that case
			if _, ok := err.(*ssh.ExitError); ok {
				return string(output), nil
			}
			return "", fmt.Errorf("command %q failed: %w", cmd, err)
		}
		return string(output), nil
	case <-time.After(q.config.CommandTimeout):
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command %q timed out", cmd)
	}
}

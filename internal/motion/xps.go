package motion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Default timeouts for controller communication.
const (
	// defaultConnectTimeout is the maximum time to wait for the initial
	// TCP connection and login.
	defaultConnectTimeout = 10 * time.Second

	// defaultCommandTimeout bounds a single command/reply exchange.
	// Moves and homing searches block on the controller until the
	// mechanics finish, so this is generous.
	defaultCommandTimeout = 120 * time.Second

	// defaultPort is the controller's command socket port.
	defaultPort = 5001

	// replyTerminator closes every controller reply.
	replyTerminator = ",EndOfAPI"

	// codeNotAllowed is the controller's status for an action its state
	// machine forbids, e.g. initializing an already-initialized group.
	codeNotAllowed = -22
)

// XPSConfig holds connection settings for a Newport XPS-style motion
// controller speaking the plain-text command socket protocol.
type XPSConfig struct {
	// Host is the controller's address.
	Host string

	// Port is the command socket port. Default: 5001.
	Port int

	// Username and Password authenticate the command session.
	Username string
	Password string

	// ConnectTimeout is the maximum time for connection plus login.
	// Default: 10 seconds.
	ConnectTimeout time.Duration

	// CommandTimeout bounds each command/reply exchange. Default: 120
	// seconds, because moves block until the hardware arrives.
	CommandTimeout time.Duration
}

// XPSClient drives a controller over its text command socket.
//
// The protocol is strict request/reply: one command string per exchange,
// one reply terminated by "EndOfAPI" with a leading integer status code,
// zero on success. A mutex serializes exchanges so concurrent callers
// cannot interleave replies.
type XPSClient struct {
	cfg    XPSConfig
	logger Logger

	mu   sync.Mutex
	conn net.Conn
}

// Compile-time check that XPSClient satisfies Driver.
var _ Driver = (*XPSClient)(nil)

// ConnectXPS dials the controller's command socket and logs in.
//
// Parameters:
//   - ctx: Context for the connection attempt
//   - cfg: Connection settings
//   - logger: Logger instance
//
// Returns:
//   - *XPSClient: Authenticated client ready for group commands
//   - error: ErrConnectionFailed wrapping the dial or login failure
func ConnectXPS(ctx context.Context, cfg XPSConfig, logger Logger) (*XPSClient, error) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.CommandTimeout == 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var dialer net.Dialer
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := dialer.DialContext(connectCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFailed, addr, err)
	}

	c := &XPSClient{cfg: cfg, logger: logger, conn: conn}

	if _, err := c.command(connectCtx, fmt.Sprintf("Login(%s,%s)", cfg.Username, cfg.Password)); err != nil {
		conn.Close() //nolint:errcheck // Login already failed
		return nil, fmt.Errorf("%w: login: %w", ErrConnectionFailed, err)
	}

	logger.Info("controller connected", "addr", addr)
	return c, nil
}

// Initialize prepares a group for motion. A group the controller reports
// as already initialized is not an error.
func (c *XPSClient) Initialize(ctx context.Context, group string) error {
	_, err := c.command(ctx, fmt.Sprintf("GroupInitialize(%s)", group))
	if isNotAllowed(err) {
		c.logger.Debug("group already initialized", "group", group)
		return nil
	}
	return err
}

// Home runs the homing search for a group. With force set, the group is
// killed and re-initialized first so the search runs from a known state
// even when the controller considers the group referenced.
func (c *XPSClient) Home(ctx context.Context, group string, force bool) error {
	if force {
		if _, err := c.command(ctx, fmt.Sprintf("GroupKill(%s)", group)); err != nil {
			return err
		}
		if _, err := c.command(ctx, fmt.Sprintf("GroupInitialize(%s)", group)); err != nil {
			return err
		}
	}

	_, err := c.command(ctx, fmt.Sprintf("GroupHomeSearch(%s)", group))
	if !force && isNotAllowed(err) {
		c.logger.Debug("group already homed", "group", group)
		return nil
	}
	return err
}

// MoveAbsolute moves one positioner to an absolute position. The call
// returns when the controller reports the move complete.
func (c *XPSClient) MoveAbsolute(ctx context.Context, positioner string, position float64) error {
	_, err := c.command(ctx, fmt.Sprintf("GroupMoveAbsolute(%s,%s)",
		positioner, strconv.FormatFloat(position, 'f', -1, 64)))
	return err
}

// Close closes the command socket. The controller drops the session.
func (c *XPSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.logger.Info("controller connection closed")
	return err
}

// command performs one request/reply exchange and returns the reply body
// (the text between the status code and the terminator).
func (c *XPSClient) command(ctx context.Context, cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return "", ErrNotConnected
	}

	deadline := time.Now().Add(c.cfg.CommandTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	if _, err := c.conn.Write([]byte(cmd)); err != nil {
		return "", fmt.Errorf("write %s: %w", commandName(cmd), err)
	}

	reply, err := c.readReply()
	if err != nil {
		return "", fmt.Errorf("read reply to %s: %w", commandName(cmd), err)
	}

	code, body, err := parseReply(reply)
	if err != nil {
		return "", fmt.Errorf("reply to %s: %w", commandName(cmd), err)
	}
	if code != 0 {
		return body, &statusError{cmd: commandName(cmd), code: code}
	}
	return body, nil
}

// statusError is a nonzero controller status. It matches ErrCommandFailed
// under errors.Is while keeping the code inspectable.
type statusError struct {
	cmd  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("motion: controller command failed: %s returned %d", e.cmd, e.code)
}

func (e *statusError) Is(target error) bool {
	return target == ErrCommandFailed
}

// readReply accumulates bytes until the reply terminator appears.
func (c *XPSClient) readReply() (string, error) {
	var sb strings.Builder
	buf := make([]byte, 256)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
			if strings.HasSuffix(sb.String(), "EndOfAPI") {
				return sb.String(), nil
			}
		}
		if err != nil {
			return "", err
		}
	}
}

// parseReply splits "code,body,EndOfAPI" into its status code and body.
func parseReply(reply string) (int, string, error) {
	trimmed := strings.TrimSuffix(reply, replyTerminator)
	if trimmed == reply {
		return 0, "", fmt.Errorf("missing terminator in %q", reply)
	}

	codeStr := trimmed
	body := ""
	if i := strings.IndexByte(trimmed, ','); i >= 0 {
		codeStr = trimmed[:i]
		body = trimmed[i+1:]
	}

	code, err := strconv.Atoi(strings.TrimSpace(codeStr))
	if err != nil {
		return 0, "", fmt.Errorf("malformed status code in %q", reply)
	}
	return code, body, nil
}

// commandName returns the function name of a command string for logging.
func commandName(cmd string) string {
	if i := strings.IndexByte(cmd, '('); i > 0 {
		return cmd[:i]
	}
	return cmd
}

// isNotAllowed reports whether err is a controller "not allowed action"
// status, used to tolerate redundant initialize/home requests.
func isNotAllowed(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == codeNotAllowed
}

package renderer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	dialTimeout      = 5 * time.Second
	commandTimeout   = 3 * time.Second
	reconnectBackoff = 2 * time.Second
)

// amcpConnection speaks the renderer's line-based control protocol over TCP.
// One command is in flight at a time; a write or read failure drops the
// connection and the background loop redials until Close.
type amcpConnection struct {
	addr string

	mu        sync.Mutex
	conn      net.Conn
	reader    *bufio.Reader
	connected bool
	closed    bool

	listenerMu    sync.Mutex
	nextListener  int
	onConnect     map[int]func()
	onConnectOnce map[int]func()
	onDisconnect  map[int]func(error)

	redial chan struct{}
	done   chan struct{}
}

// Dial starts a connection to the renderer at host:port. The returned
// connection is usable immediately; commands fail until the background loop
// establishes the TCP session.
func Dial(host string, port int) Connection {
	c := &amcpConnection{
		addr:          net.JoinHostPort(host, strconv.Itoa(port)),
		onConnect:     make(map[int]func()),
		onConnectOnce: make(map[int]func()),
		onDisconnect:  make(map[int]func(error)),
		redial:        make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	c.redial <- struct{}{}
	go c.loop()
	return c
}

func (c *amcpConnection) loop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.redial:
		}

		for {
			conn, err := net.DialTimeout("tcp", c.addr, dialTimeout)
			if err == nil {
				c.mu.Lock()
				if c.closed {
					c.mu.Unlock()
					conn.Close()
					return
				}
				c.conn = conn
				c.reader = bufio.NewReader(conn)
				c.connected = true
				c.mu.Unlock()
				log.Info().Str("renderer", c.addr).Msg("[renderer] connected")
				c.fireConnect()
				break
			}

			log.Warn().Err(err).Str("renderer", c.addr).Msg("[renderer] dial failed, retrying")
			select {
			case <-c.done:
				return
			case <-time.After(reconnectBackoff):
			}
		}
	}
}

func (c *amcpConnection) fireConnect() {
	c.listenerMu.Lock()
	fns := make([]func(), 0, len(c.onConnect)+len(c.onConnectOnce))
	for _, fn := range c.onConnect {
		fns = append(fns, fn)
	}
	for id, fn := range c.onConnectOnce {
		fns = append(fns, fn)
		delete(c.onConnectOnce, id)
	}
	c.listenerMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *amcpConnection) fireDisconnect(err error) {
	c.listenerMu.Lock()
	fns := make([]func(error), 0, len(c.onDisconnect))
	for _, fn := range c.onDisconnect {
		fns = append(fns, fn)
	}
	c.listenerMu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

// dropConn tears down the session and schedules a redial.
func (c *amcpConnection) dropConn(err error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = false
	c.conn.Close()
	c.conn = nil
	c.reader = nil
	closed := c.closed
	c.mu.Unlock()

	log.Warn().Err(err).Str("renderer", c.addr).Msg("[renderer] connection lost")
	c.fireDisconnect(err)
	if !closed {
		select {
		case c.redial <- struct{}{}:
		default:
		}
	}
}

// send writes one command line and reads its status response. Responses in
// the 200 range carry extra data lines terminated by an empty line.
func (c *amcpConnection) send(ctx context.Context, command string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil, fmt.Errorf("renderer %s not connected", c.addr)
	}

	deadline := time.Now().Add(commandTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetDeadline(deadline)

	if _, err := fmt.Fprintf(c.conn, "%s\r\n", command); err != nil {
		go c.dropConn(err)
		return nil, err
	}

	status, err := c.reader.ReadString('\n')
	if err != nil {
		go c.dropConn(err)
		return nil, err
	}
	status = strings.TrimRight(status, "\r\n")

	code := 0
	if len(status) >= 3 {
		code, _ = strconv.Atoi(status[:3])
	}
	if code >= 400 {
		return nil, fmt.Errorf("renderer %s rejected %q: %s", c.addr, firstWord(command), status)
	}

	var data []string
	if code == 200 {
		for {
			line, err := c.reader.ReadString('\n')
			if err != nil {
				go c.dropConn(err)
				return nil, err
			}
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				break
			}
			data = append(data, line)
		}
	}
	return data, nil
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return s
}

// quote escapes a string for embedding in a protocol command.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func (c *amcpConnection) AddTemplate(ctx context.Context, channel, layer int, template string, data map[string]any, playOnLoad bool) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode template data: %w", err)
	}
	play := 0
	if playOnLoad {
		play = 1
	}
	_, err = c.send(ctx, fmt.Sprintf("CG %d-%d ADD 1 %s %d %s", channel, layer, quote(template), play, quote(string(encoded))))
	return err
}

func (c *amcpConnection) UpdateTemplate(ctx context.Context, channel, layer int, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode template data: %w", err)
	}
	_, err = c.send(ctx, fmt.Sprintf("CG %d-%d UPDATE 1 %s", channel, layer, quote(string(encoded))))
	return err
}

func (c *amcpConnection) PlayMedia(ctx context.Context, channel, layer int, clip, transition string) error {
	cmd := fmt.Sprintf("PLAY %d-%d %s", channel, layer, quote(clip))
	if transition != "" {
		cmd += " " + transition
	}
	_, err := c.send(ctx, cmd)
	return err
}

func (c *amcpConnection) Play(ctx context.Context, channel, layer int) error {
	_, err := c.send(ctx, fmt.Sprintf("CG %d-%d PLAY 1", channel, layer))
	return err
}

func (c *amcpConnection) Stop(ctx context.Context, channel, layer int) error {
	_, err := c.send(ctx, fmt.Sprintf("CG %d-%d STOP 1", channel, layer))
	return err
}

func (c *amcpConnection) Clear(ctx context.Context, channel, layer int) error {
	_, err := c.send(ctx, fmt.Sprintf("CLEAR %d-%d", channel, layer))
	return err
}

func (c *amcpConnection) Swap(ctx context.Context, channel, layerA, layerB int) error {
	_, err := c.send(ctx, fmt.Sprintf("SWAP %d-%d %d-%d TRANSFORMS", channel, layerA, channel, layerB))
	return err
}

func (c *amcpConnection) Invoke(ctx context.Context, channel, layer int, method string) error {
	_, err := c.send(ctx, fmt.Sprintf("CG %d-%d INVOKE 1 %s", channel, layer, quote(method)))
	return err
}

func (c *amcpConnection) Raw(ctx context.Context, command string) error {
	_, err := c.send(ctx, command)
	return err
}

func (c *amcpConnection) ListMedia(ctx context.Context) ([]string, error) {
	lines, err := c.send(ctx, "CLS")
	if err != nil {
		return nil, err
	}
	clips := make([]string, 0, len(lines))
	for _, line := range lines {
		// clip lines lead with the quoted name
		if i := strings.Index(line, `" `); strings.HasPrefix(line, `"`) && i > 0 {
			clips = append(clips, line[1:i])
		}
	}
	return clips, nil
}

func (c *amcpConnection) addListener(register func(id int)) (remove func()) {
	c.listenerMu.Lock()
	id := c.nextListener
	c.nextListener++
	register(id)
	c.listenerMu.Unlock()
	return func() {
		c.listenerMu.Lock()
		delete(c.onConnect, id)
		delete(c.onConnectOnce, id)
		delete(c.onDisconnect, id)
		c.listenerMu.Unlock()
	}
}

func (c *amcpConnection) OnConnect(fn func()) (remove func()) {
	return c.addListener(func(id int) { c.onConnect[id] = fn })
}

func (c *amcpConnection) OnConnectOnce(fn func()) (remove func()) {
	return c.addListener(func(id int) { c.onConnectOnce[id] = fn })
}

func (c *amcpConnection) OnDisconnect(fn func(err error)) (remove func()) {
	return c.addListener(func(id int) { c.onDisconnect[id] = fn })
}

func (c *amcpConnection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *amcpConnection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.connected = false
	c.conn = nil
	c.mu.Unlock()

	close(c.done)
	if conn != nil {
		conn.Close()
	}
	return nil
}

// Package nvdaremote is a minimal NVDA Remote relay client. It joins a
// channel as the controlling side and sends key events that the NVDA on the
// other end injects into its machine.
package nvdaremote

import (
	"bufio"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/denizsincar29/keyplayer/keys"
)

const DEFAULT_PORT = "6837"

// ErrClosed is returned when sending on a closed client.
var ErrClosed = errors.New("nvdaremote: client closed")

// Options configures Dial.
type Options struct {
	Host    string
	Port    string
	Channel string
	// ConnType is "master" to control the remote machine.
	ConnType string
	// Fingerprint pins the relay's certificate (hex SHA-256 of its DER
	// encoding). Empty accepts any certificate, like the NVDA add-on does
	// for relays it has not seen before.
	Fingerprint string
	DialTimeout time.Duration
	Logger      *slog.Logger
}

// Client is a connected relay session.
type Client struct {
	conn      *tls.Conn
	eventChan chan Packet
	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// Fingerprint computes the hex SHA-256 of a certificate's DER encoding.
func Fingerprint(cert *x509.Certificate) string {
	hash := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(hash[:])
}

func verifyPinned(want string) func([][]byte, [][]*x509.Certificate) error {
	want = strings.ToLower(strings.ReplaceAll(want, ":", ""))
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return errors.New("no peer certificates presented")
		}
		cert, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("failed to parse server's leaf certificate: %w", err)
		}
		if got := Fingerprint(cert); got != want {
			return fmt.Errorf("fingerprint mismatch: server presented %s, expected %s", got, want)
		}
		return nil
	}
}

// Dial connects to the relay, sends the handshake and joins the channel.
func Dial(opts Options) (*Client, error) {
	if opts.Port == "" {
		opts.Port = DEFAULT_PORT
	}
	if opts.ConnType == "" {
		opts.ConnType = "master"
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 10 * time.Second
	}
	lgr := opts.Logger
	if lgr == nil {
		lgr = slog.Default()
	}
	lgr.Debug("Dialing NVDA remote relay", "host", opts.Host, "port", opts.Port, "channel", opts.Channel, "connection_type", opts.ConnType)

	conf := &tls.Config{InsecureSkipVerify: true}
	if opts.Fingerprint != "" {
		conf.VerifyPeerCertificate = verifyPinned(opts.Fingerprint)
	}
	dialer := &net.Dialer{Timeout: opts.DialTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(opts.Host, opts.Port), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}

	c := &Client{
		conn:      conn,
		eventChan: make(chan Packet, 100),
		sendChan:  make(chan []byte, 100),
		closeChan: make(chan struct{}),
		logger:    lgr,
	}
	c.wg.Add(2)
	go c.readLoop()
	go c.writeLoop()

	handshake, join := NewJoinPackets(opts.Channel, opts.ConnType)
	if err := c.Send(handshake); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.Send(join); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	defer close(c.eventChan)
	reader := bufio.NewReader(c.conn)
	for {
		data, err := reader.ReadBytes('\n')
		if err != nil {
			select {
			case <-c.closeChan:
			default:
				c.logger.Error("Relay connection lost", "error", err)
			}
			return
		}
		p, err := ParsePacket(data)
		if err != nil {
			c.logger.Debug("Ignoring packet", "data", string(data), "error", err)
			continue
		}
		if _, ok := p.(PingPacket); ok {
			continue
		}
		if _, ok := p.(NvdaNotConnectedPacket); ok {
			c.logger.Warn("No NVDA on the other side of the channel, key events are dropped")
		}
		c.logger.Debug("Received packet", "packet", p.String())
		select {
		case c.eventChan <- p:
		default:
			// nobody is draining events
		}
	}
}

func (c *Client) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.closeChan:
			return
		case data := <-c.sendChan:
			if _, err := c.conn.Write(append(data, '\n')); err != nil {
				c.logger.Error("Relay write failed", "error", err)
				return
			}
		}
	}
}

// Send queues a packet for the relay.
func (c *Client) Send(p Packet) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	select {
	case <-c.closeChan:
		return ErrClosed
	default:
	}
	select {
	case <-c.closeChan:
		return ErrClosed
	case c.sendChan <- data:
		return nil
	}
}

// SendKeyEvent sends a key-down or key-up for an already resolved key.
func (c *Client) SendKeyEvent(info keys.Info, pressed bool) error {
	c.logger.Debug("Sending key event", "vk_code", info.VKCode, "pressed", pressed)
	return c.Send(NewKeyPacket(info, pressed))
}

// Events returns packets received from the relay. Packets are dropped when
// the channel is full. The channel is closed when the connection ends.
func (c *Client) Events() <-chan Packet {
	return c.eventChan
}

// Close ends the session. It is safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeChan)
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}

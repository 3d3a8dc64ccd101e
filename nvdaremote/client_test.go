package nvdaremote

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/denizsincar29/keyplayer/keys"
)

// --- Certificate and relay helpers ---

func generateSelfSignedCert(t *testing.T) (tls.Certificate, string) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate private key: %v", err)
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"Test Co"}, CommonName: "127.0.0.1"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, Fingerprint(parsed)
}

// fakeRelay accepts one TLS connection and forwards every received line.
type fakeRelay struct {
	ln    net.Listener
	lines chan string
	conns chan net.Conn
}

func startRelay(t *testing.T, cert tls.Certificate) *fakeRelay {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	r := &fakeRelay{ln: ln, lines: make(chan string, 100), conns: make(chan net.Conn, 1)}
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		r.conns <- conn
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			r.lines <- sc.Text()
		}
		close(r.lines)
	}()
	return r
}

func (r *fakeRelay) hostPort(t *testing.T) (string, string) {
	host, port, err := net.SplitHostPort(r.ln.Addr().String())
	if err != nil {
		t.Fatalf("bad listener address: %v", err)
	}
	return host, port
}

func (r *fakeRelay) next(t *testing.T) map[string]any {
	t.Helper()
	select {
	case line, ok := <-r.lines:
		if !ok {
			t.Fatal("relay connection closed")
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("relay got invalid JSON %q: %v", line, err)
		}
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for packet")
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Tests ---

func TestDialHandshakeAndKeys(t *testing.T) {
	cert, fp := generateSelfSignedCert(t)
	relay := startRelay(t, cert)
	host, port := relay.hostPort(t)

	client, err := Dial(Options{Host: host, Port: port, Channel: "game", Fingerprint: fp, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	hs := relay.next(t)
	if hs["type"] != "protocol_version" || hs["version"] != float64(2) {
		t.Errorf("handshake = %v, want protocol_version 2", hs)
	}
	join := relay.next(t)
	if join["type"] != "join" || join["channel"] != "game" || join["connection_type"] != "master" {
		t.Errorf("join = %v, want join game as master", join)
	}

	info, err := keys.Lookup("q")
	if err != nil {
		t.Fatal(err)
	}
	if err := client.SendKeyEvent(info, true); err != nil {
		t.Fatalf("SendKeyEvent(down) error = %v", err)
	}
	if err := client.SendKeyEvent(info, false); err != nil {
		t.Fatalf("SendKeyEvent(up) error = %v", err)
	}
	down := relay.next(t)
	if down["type"] != "key" || down["vk_code"] != float64(0x51) || down["pressed"] != true {
		t.Errorf("key down = %v", down)
	}
	up := relay.next(t)
	if up["pressed"] != false || up["scan_code"] != float64(0x10) {
		t.Errorf("key up = %v", up)
	}
}

func TestDialFingerprintMismatch(t *testing.T) {
	cert, _ := generateSelfSignedCert(t)
	relay := startRelay(t, cert)
	host, port := relay.hostPort(t)

	_, err := Dial(Options{Host: host, Port: port, Channel: "game", Fingerprint: strings.Repeat("ab", 32), Logger: quietLogger()})
	if err == nil {
		t.Fatal("Dial() error = nil, want fingerprint mismatch")
	}
	if !strings.Contains(err.Error(), "fingerprint mismatch") {
		t.Errorf("Dial() error = %v, want fingerprint mismatch", err)
	}
}

func TestDialNetworkError(t *testing.T) {
	_, err := Dial(Options{Host: "127.0.0.1", Port: "1", Channel: "game", DialTimeout: time.Second, Logger: quietLogger()})
	if err == nil {
		t.Fatal("Dial() error = nil, want network error")
	}
}

func TestEventsSkipPing(t *testing.T) {
	cert, _ := generateSelfSignedCert(t)
	relay := startRelay(t, cert)
	host, port := relay.hostPort(t)

	client, err := Dial(Options{Host: host, Port: port, Channel: "game", Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	conn := <-relay.conns
	io.WriteString(conn, `{"type":"ping"}`+"\n")
	io.WriteString(conn, `{"type":"motd","motd":"hello"}`+"\n")

	select {
	case p := <-client.Events():
		motd, ok := p.(MOTDPacket)
		if !ok {
			t.Fatalf("first event = %T, want MOTDPacket", p)
		}
		if motd.Motd != "hello" {
			t.Errorf("motd = %q, want hello", motd.Motd)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSendAfterClose(t *testing.T) {
	cert, _ := generateSelfSignedCert(t)
	relay := startRelay(t, cert)
	host, port := relay.hostPort(t)

	client, err := Dial(Options{Host: host, Port: port, Channel: "game", Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	client.Close()
	if err := client.SendKeyEvent(keys.Info{VKCode: 0x51}, true); err != ErrClosed {
		t.Errorf("SendKeyEvent() after Close error = %v, want ErrClosed", err)
	}
}

func TestParsePacket(t *testing.T) {
	p, err := ParsePacket([]byte(`{"type":"client_joined","client":{"id":3,"connection_type":"slave"}}`))
	if err != nil {
		t.Fatalf("ParsePacket() error = %v", err)
	}
	cj, ok := p.(ClientJoinedPacket)
	if !ok || cj.Client.ID != 3 || cj.Client.ConnectionType != "slave" {
		t.Errorf("ParsePacket() = %#v", p)
	}
	if _, err := ParsePacket([]byte(`{"type":"speak"}`)); err == nil {
		t.Error("ParsePacket(unknown) error = nil")
	}
	if _, err := ParsePacket([]byte(`not json`)); err == nil {
		t.Error("ParsePacket(garbage) error = nil")
	}
}

func TestKeyPacketString(t *testing.T) {
	if got := NewKeyPacket(keys.Info{VKCode: 0x51}, true).String(); got != "Key q was pressed" {
		t.Errorf("String() = %q", got)
	}
	if got := NewKeyPacket(keys.Info{VKCode: 0xE8}, false).String(); got != "Key with vk code 0xE8 was released" {
		t.Errorf("String() = %q", got)
	}
}

package email

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTPServer speaks just enough SMTP to accept one message without AUTH or STARTTLS
func fakeSMTPServer(t *testing.T, received chan<- string) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		write("220 localhost ESMTP")

		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					received <- data.String()
					write("250 OK")
					continue
				}
				data.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 localhost")
			case strings.HasPrefix(cmd, "DATA"):
				inData = true
				write("354 go ahead")
			case strings.HasPrefix(cmd, "QUIT"):
				write("221 bye")
				return
			default:
				write("250 OK")
			}
		}
	}()

	return listener.Addr().String()
}

func TestSMTPTransport_Send(t *testing.T) {
	received := make(chan string, 1)
	addr := fakeSMTPServer(t, received)
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	transport := NewSMTPTransport(host, port, "", "")
	msg := []byte("Subject: hi\r\n\r\nbody line\r\n")
	err = transport.Send(context.Background(), "noreply@example.com", []string{"owner@example.com"}, msg)
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Contains(t, got, "body line")
	case <-time.After(2 * time.Second):
		t.Fatal("message was not received")
	}
}

func TestSMTPTransport_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(listener.Addr().String())
	listener.Close()

	err = NewSMTPTransport(host, port, "", "").Send(context.Background(), "a@example.com", []string{"b@example.com"}, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to smtp server")
}

func TestSMTPTransport_HungServerTimesOut(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			// Never send a greeting
			time.Sleep(2 * time.Second)
			conn.Close()
		}
	}()
	host, port, _ := net.SplitHostPort(listener.Addr().String())

	transport := NewSMTPTransport(host, port, "", "")
	transport.sessionTimeout = 200 * time.Millisecond

	start := time.Now()
	err = transport.Send(context.Background(), "a@example.com", []string{"b@example.com"}, []byte("x"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

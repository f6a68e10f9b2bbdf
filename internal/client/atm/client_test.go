package atm

import (
	"context"
	"net"
	"os"
	"testing"

	"github.com/sbayu21/Secure-banking-system/internal/envelope"
	"github.com/sbayu21/Secure-banking-system/internal/keys"
	"github.com/sbayu21/Secure-banking-system/internal/logging"
	"github.com/sbayu21/Secure-banking-system/internal/server/accounts"
	serverconfig "github.com/sbayu21/Secure-banking-system/internal/server/config"
	"github.com/sbayu21/Secure-banking-system/internal/server/tcp"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) logging.Logger            { return nopLogger{} }

var (
	certsDir string
	ring     *keys.Ring
	bundle   *keys.Bundle
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "certs")
	if err != nil {
		panic(err)
	}
	certsDir = dir
	if err := keys.GenerateAll(dir, []string{"atm1"}, keys.DefaultRSABits); err != nil {
		panic(err)
	}
	if ring, err = keys.LoadServerRing(dir, []string{"atm1"}); err != nil {
		panic(err)
	}
	if bundle, err = keys.LoadTerminalBundle(dir, "atm1"); err != nil {
		panic(err)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// startServer runs a real bank server on a loopback listener and returns
// its address.
func startServer(t *testing.T) string {
	t.Helper()

	repo := accounts.NewMemoryRepository(accounts.DefaultSeed()...)
	svc := accounts.NewService(repo, nil, nopLogger{})
	srv := tcp.NewServer("127.0.0.1:0", nopLogger{}, svc, ring, serverconfig.AmountModeParsed)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.Handle(context.Background(), conn)
		}
	}()

	return ln.Addr().String()
}

func TestClient_LoginAndCommands(t *testing.T) {
	addr := startServer(t)

	client, err := Dial(addr, "atm1", bundle, envelope.SchemeRSA)
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Login("124356", "pass123")
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.Equal(t, "Authenticated", resp.Message)

	resp, err = client.Send("balance")
	require.NoError(t, err)
	require.Equal(t, "Balance: $1000", resp.Message)

	resp, err = client.Send("deposit 100")
	require.NoError(t, err)
	require.Equal(t, "Deposited $100", resp.Message)

	resp, err = client.Send("withdraw 50")
	require.NoError(t, err)
	require.Equal(t, "Withdrew $50", resp.Message)

	resp, err = client.Send("quit")
	require.NoError(t, err)
	require.Equal(t, "Session ended", resp.Message)
}

func TestClient_DSAScheme(t *testing.T) {
	addr := startServer(t)

	client, err := Dial(addr, "atm1", bundle, envelope.SchemeDSA)
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Login("124356", "pass123")
	require.NoError(t, err)
	require.True(t, resp.OK())

	resp, err = client.Send("balance")
	require.NoError(t, err)
	require.Equal(t, "Balance: $1000", resp.Message)
}

func TestClient_LoginWrongPassword(t *testing.T) {
	addr := startServer(t)

	client, err := Dial(addr, "atm1", bundle, envelope.SchemeRSA)
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Login("124356", "wrong")
	require.NoError(t, err)
	require.False(t, resp.OK())
	require.Equal(t, "Authentication failed", resp.Message)
}

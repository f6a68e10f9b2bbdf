package tcp

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/sbayu21/Secure-banking-system/internal/envelope"
	"github.com/sbayu21/Secure-banking-system/internal/keys"
	"github.com/sbayu21/Secure-banking-system/internal/logging"
	"github.com/sbayu21/Secure-banking-system/internal/protocol"
	"github.com/sbayu21/Secure-banking-system/internal/server/accounts"
	"github.com/sbayu21/Secure-banking-system/internal/server/config"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) logging.Logger            { return nopLogger{} }

var (
	ring    *keys.Ring
	bundle1 *keys.Bundle
	bundle2 *keys.Bundle
)

// TestMain generates one certs directory for all session tests; key
// generation is too slow to repeat per test.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "certs")
	if err != nil {
		panic(err)
	}
	if err := keys.GenerateAll(dir, []string{"atm1", "atm2"}, keys.DefaultRSABits); err != nil {
		panic(err)
	}
	if ring, err = keys.LoadServerRing(dir, []string{"atm1", "atm2"}); err != nil {
		panic(err)
	}
	if bundle1, err = keys.LoadTerminalBundle(dir, "atm1"); err != nil {
		panic(err)
	}
	if bundle2, err = keys.LoadTerminalBundle(dir, "atm2"); err != nil {
		panic(err)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// startSession wires a session over net.Pipe and returns the client end.
func startSession(t *testing.T, repo accounts.Repository, amountMode string) net.Conn {
	t.Helper()

	svc := accounts.NewService(repo, nil, nopLogger{})
	srv := NewServer("", nopLogger{}, svc, ring, amountMode)

	client, server := net.Pipe()
	go srv.Handle(context.Background(), server)
	t.Cleanup(func() { client.Close() })

	return client
}

func seededRepo() *accounts.MemoryRepository {
	return accounts.NewMemoryRepository(accounts.DefaultSeed()...)
}

func sealLogin(t *testing.T, b *keys.Bundle, claimedTerminal, signedPlaintext string, scheme envelope.Scheme) protocol.LoginRequest {
	t.Helper()

	priv, err := b.SigningKey(scheme)
	if err != nil {
		t.Fatalf("SigningKey error: %v", err)
	}
	ct, sig, err := envelope.Seal([]byte(signedPlaintext), b.BankPublic, priv, scheme)
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	return protocol.LoginRequest{TerminalID: claimedTerminal, Scheme: string(scheme), Ciphertext: ct, Signature: sig}
}

func sealCommand(t *testing.T, b *keys.Bundle, command string, scheme envelope.Scheme) protocol.CommandRequest {
	t.Helper()

	priv, err := b.SigningKey(scheme)
	if err != nil {
		t.Fatalf("SigningKey error: %v", err)
	}
	ct, sig, err := envelope.Seal([]byte(command), b.BankPublic, priv, scheme)
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	return protocol.CommandRequest{Command: command, Scheme: string(scheme), Ciphertext: ct, Signature: sig}
}

func roundTrip(t *testing.T, conn net.Conn, req any) protocol.Response {
	t.Helper()

	if err := protocol.WriteFrame(conn, req); err != nil {
		t.Fatalf("WriteFrame error: %v", err)
	}
	var resp protocol.Response
	if err := protocol.ReadFrame(conn, &resp); err != nil {
		t.Fatalf("ReadFrame error: %v", err)
	}
	return resp
}

func login(t *testing.T, conn net.Conn, b *keys.Bundle, terminalID, accountID, password string, scheme envelope.Scheme) protocol.Response {
	t.Helper()
	req := sealLogin(t, b, terminalID, fmt.Sprintf("%s:%s:%s", terminalID, accountID, password), scheme)
	return roundTrip(t, conn, req)
}

func mustBeClosed(t *testing.T, conn net.Conn) {
	t.Helper()
	var resp protocol.Response
	if err := protocol.ReadFrame(conn, &resp); err == nil {
		t.Fatalf("expected connection to be closed, got response %+v", resp)
	}
}

func TestSession_LoginSuccess(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)

	resp := login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)
	if !resp.OK() || resp.Message != "Authenticated" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestSession_LoginSuccess_DSAScheme(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)

	resp := login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeDSA)
	if !resp.OK() || resp.Message != "Authenticated" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestSession_LoginWrongPassword_ClosesWithoutDetail(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)

	resp := login(t, conn, bundle1, "atm1", "124356", "wrong", envelope.SchemeRSA)
	if resp.OK() || resp.Message != "Authentication failed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	mustBeClosed(t, conn)
}

func TestSession_LoginUnknownAccount_SameMessageAsWrongPassword(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)

	resp := login(t, conn, bundle1, "atm1", "000000", "pass123", envelope.SchemeRSA)
	if resp.OK() || resp.Message != "Authentication failed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	mustBeClosed(t, conn)
}

// Correct password, but the signature comes from the wrong terminal's
// private key: the session must die in Authenticating.
func TestSession_LoginWrongTerminalSignature(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)

	req := sealLogin(t, bundle2, "atm1", "atm1:124356:pass123", envelope.SchemeRSA)
	resp := roundTrip(t, conn, req)

	if resp.OK() || resp.Message != "Signature verification failed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	mustBeClosed(t, conn)
}

func TestSession_LoginMalformedPlaintext(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)

	req := sealLogin(t, bundle1, "atm1", "not-a-login", envelope.SchemeRSA)
	resp := roundTrip(t, conn, req)

	if resp.OK() || resp.Message != "Invalid login format" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	mustBeClosed(t, conn)
}

func TestSession_LoginUnknownTerminal(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)

	req := sealLogin(t, bundle1, "atm9", "atm9:124356:pass123", envelope.SchemeRSA)
	resp := roundTrip(t, conn, req)

	if resp.OK() || resp.Message != "Authentication failed" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	mustBeClosed(t, conn)
}

// The classic scenario: balance 1000, deposit 100, withdraw 50.
func TestSession_CommandScenario(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "balance", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Balance: $1000" {
		t.Fatalf("balance: %+v", resp)
	}

	resp = roundTrip(t, conn, sealCommand(t, bundle1, "deposit 100", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Deposited $100" {
		t.Fatalf("deposit: %+v", resp)
	}

	resp = roundTrip(t, conn, sealCommand(t, bundle1, "balance", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Balance: $1100" {
		t.Fatalf("balance after deposit: %+v", resp)
	}

	resp = roundTrip(t, conn, sealCommand(t, bundle1, "withdraw 50", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Withdrew $50" {
		t.Fatalf("withdraw: %+v", resp)
	}

	resp = roundTrip(t, conn, sealCommand(t, bundle1, "balance", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Balance: $1050" {
		t.Fatalf("balance after withdraw: %+v", resp)
	}
}

func TestSession_WithdrawInsufficientFunds_SessionSurvives(t *testing.T) {
	repo := accounts.NewMemoryRepository(accounts.Account{ID: "1", Password: "p"})
	conn := startSession(t, repo, config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "1", "p", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "withdraw 50", envelope.SchemeRSA))
	if resp.OK() || resp.Message != "Insufficient funds" {
		t.Fatalf("withdraw: %+v", resp)
	}

	// Recoverable failure: the session keeps serving.
	resp = roundTrip(t, conn, sealCommand(t, bundle1, "balance", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Balance: $0" {
		t.Fatalf("balance: %+v", resp)
	}
}

func TestSession_ActivityEmpty(t *testing.T) {
	repo := accounts.NewMemoryRepository(accounts.Account{ID: "1", Password: "p"})
	conn := startSession(t, repo, config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "1", "p", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "activity", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "No recent activity" {
		t.Fatalf("activity: %+v", resp)
	}
}

func TestSession_ActivityListsHistory(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	roundTrip(t, conn, sealCommand(t, bundle1, "deposit 100", envelope.SchemeRSA))

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "history", envelope.SchemeRSA))
	if !resp.OK() {
		t.Fatalf("history: %+v", resp)
	}
	if !strings.Contains(resp.Message, "atm1 124356: Deposited $100") {
		t.Fatalf("history missing record: %q", resp.Message)
	}
}

func TestSession_UnknownCommand_SessionSurvives(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "transfer 10", envelope.SchemeRSA))
	if resp.OK() || resp.Message != "Unknown command" {
		t.Fatalf("unknown: %+v", resp)
	}

	resp = roundTrip(t, conn, sealCommand(t, bundle1, "balance", envelope.SchemeRSA))
	if !resp.OK() {
		t.Fatalf("balance after unknown: %+v", resp)
	}
}

func TestSession_InvalidDepositAmount(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	for _, cmd := range []string{"deposit", "deposit abc", "deposit -5", "deposit 0"} {
		resp := roundTrip(t, conn, sealCommand(t, bundle1, cmd, envelope.SchemeRSA))
		if resp.OK() || resp.Message != "Invalid deposit amount" {
			t.Fatalf("%q: %+v", cmd, resp)
		}
	}
}

func TestSession_Quit(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "quit", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Session ended" {
		t.Fatalf("quit: %+v", resp)
	}
	mustBeClosed(t, conn)
}

// A command whose cleartext tag disagrees with the sealed plaintext is
// tampering: rejected without execution, session-fatal.
func TestSession_TamperedCommandTag(t *testing.T) {
	repo := seededRepo()
	conn := startSession(t, repo, config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	req := sealCommand(t, bundle1, "balance", envelope.SchemeRSA)
	req.Command = "withdraw 1000"

	resp := roundTrip(t, conn, req)
	if resp.OK() || resp.Message != "Tampered command" {
		t.Fatalf("tampered: %+v", resp)
	}
	mustBeClosed(t, conn)

	balance, err := repo.Balance(context.Background(), "124356")
	if err != nil || balance != 1000 {
		t.Fatalf("tampered command must not execute: balance=%d err=%v", balance, err)
	}
}

// Command signed with a different scheme than login: the declared scheme's
// key for the bound terminal must be used.
func TestSession_SchemeSwitchPerCommand(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "balance", envelope.SchemeDSA))
	if !resp.OK() || resp.Message != "Balance: $1000" {
		t.Fatalf("dsa command: %+v", resp)
	}
}

// Command signed by another terminal's key must be rejected even though it
// would verify under that terminal's own key: verification is pinned to
// the terminal bound at login.
func TestSession_CommandSignedByOtherTerminal_Fatal(t *testing.T) {
	conn := startSession(t, seededRepo(), config.AmountModeParsed)
	login(t, conn, bundle1, "atm1", "124356", "pass123", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle2, "balance", envelope.SchemeRSA))
	if resp.OK() || resp.Message != "ATM signature verification failed" {
		t.Fatalf("foreign signature: %+v", resp)
	}
	mustBeClosed(t, conn)
}

func TestSession_FixedAmountMode(t *testing.T) {
	repo := accounts.NewMemoryRepository(accounts.Account{ID: "1", Password: "p", Balance: 60})
	conn := startSession(t, repo, config.AmountModeFixed)
	login(t, conn, bundle1, "atm1", "1", "p", envelope.SchemeRSA)

	// Numeric arguments are ignored in fixed mode.
	resp := roundTrip(t, conn, sealCommand(t, bundle1, "deposit 9999", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Deposited $100" {
		t.Fatalf("fixed deposit: %+v", resp)
	}

	resp = roundTrip(t, conn, sealCommand(t, bundle1, "withdraw", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Withdrew $50" {
		t.Fatalf("fixed withdraw: %+v", resp)
	}

	resp = roundTrip(t, conn, sealCommand(t, bundle1, "balance", envelope.SchemeRSA))
	if !resp.OK() || resp.Message != "Balance: $110" {
		t.Fatalf("fixed balance: %+v", resp)
	}
}

func TestSession_FixedWithdrawBelowThreshold(t *testing.T) {
	repo := accounts.NewMemoryRepository(accounts.Account{ID: "1", Password: "p", Balance: 40})
	conn := startSession(t, repo, config.AmountModeFixed)
	login(t, conn, bundle1, "atm1", "1", "p", envelope.SchemeRSA)

	resp := roundTrip(t, conn, sealCommand(t, bundle1, "withdraw", envelope.SchemeRSA))
	if resp.OK() || resp.Message != "Insufficient funds" {
		t.Fatalf("fixed withdraw below threshold: %+v", resp)
	}
}

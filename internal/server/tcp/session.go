package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sbayu21/Secure-banking-system/internal/common"
	"github.com/sbayu21/Secure-banking-system/internal/envelope"
	"github.com/sbayu21/Secure-banking-system/internal/keys"
	"github.com/sbayu21/Secure-banking-system/internal/logging"
	"github.com/sbayu21/Secure-banking-system/internal/protocol"
	"github.com/sbayu21/Secure-banking-system/internal/server/accounts"
	"github.com/sbayu21/Secure-banking-system/internal/server/config"
)

// Fixed amounts applied in AmountModeFixed deployments.
const (
	fixedDepositAmount  = 100
	fixedWithdrawAmount = 50
)

type sessionState int

const (
	stateConnected sessionState = iota
	stateAuthenticating
	stateAuthenticated
	stateClosed
)

// session drives the protocol for one accepted connection. It is owned
// exclusively by its connection's goroutine; the only shared state it
// touches is the account service and the key ring (read-only).
//
// A session is either fully authenticated (terminal, account and scheme
// bound) or not authenticated at all; no command is processed in between.
type session struct {
	id         string
	conn       net.Conn
	accounts   *accounts.Service
	ring       *keys.Ring
	amountMode string
	logger     logging.Logger

	state      sessionState
	terminalID string
	accountID  string
	scheme     envelope.Scheme
}

func newSession(conn net.Conn, svc *accounts.Service, ring *keys.Ring, amountMode string, logger logging.Logger) *session {
	id := uuid.NewString()
	return &session{
		id:         id,
		conn:       conn,
		accounts:   svc,
		ring:       ring,
		amountMode: amountMode,
		logger:     logger.With("session", id, "remote", conn.RemoteAddr().String()),
		state:      stateConnected,
	}
}

// run executes the session to completion: login exchange, then the command
// loop. Reads carry no deadline; a stalled peer parks this goroutine until
// it disconnects (legacy behavior, kept deliberately).
func (s *session) run(ctx context.Context) {
	defer s.close(ctx)

	if err := s.login(ctx); err != nil {
		s.logger.Info(ctx, "login failed", "error", err.Error())
		return
	}

	s.commandLoop(ctx)
}

// login performs the Connected -> Authenticating -> Authenticated exchange.
// Every failure is session-fatal: one failure response (when the connection
// still works), then close. The peer reconnects to retry.
func (s *session) login(ctx context.Context) error {
	s.state = stateAuthenticating

	var req protocol.LoginRequest
	if err := protocol.ReadFrame(s.conn, &req); err != nil {
		if err == io.EOF {
			return errors.New("peer disconnected before login")
		}
		s.respondFail(ctx, "Invalid login request")
		return err
	}

	scheme := envelope.FromTag(req.Scheme)

	pub, err := s.ring.TerminalKey(req.TerminalID, scheme)
	if err != nil {
		// Unknown terminal gets the same blanket refusal as bad
		// credentials; no point confirming which terminals exist.
		s.respondFail(ctx, "Authentication failed")
		return err
	}

	plaintext, err := envelope.Open(req.Ciphertext, req.Signature, s.ring.BankPrivate, pub, scheme)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDecryptionFailed):
			s.respondFail(ctx, "Decryption error")
		case errors.Is(err, common.ErrSignatureInvalid):
			s.respondFail(ctx, "Signature verification failed")
		default:
			s.respondFail(ctx, "Invalid login request")
		}
		return err
	}

	parts := strings.Split(string(plaintext), ":")
	if len(parts) != 3 {
		s.respondFail(ctx, "Invalid login format")
		return common.ErrMalformedMessage
	}
	terminalID, accountID, password := parts[0], parts[1], parts[2]

	// The signed plaintext must name the same terminal whose key verified
	// it; a mismatch means someone is splicing envelopes.
	if terminalID != req.TerminalID {
		s.respondFail(ctx, "Invalid login format")
		return common.ErrTamperedCommand
	}

	if err := s.accounts.Authenticate(ctx, accountID, password); err != nil {
		// Deliberately does not distinguish unknown account from wrong
		// password.
		s.respondFail(ctx, "Authentication failed")
		return err
	}

	s.terminalID = terminalID
	s.accountID = accountID
	s.scheme = scheme
	s.state = stateAuthenticated

	s.logger.Info(ctx, "terminal authenticated", "terminal", terminalID, "account", accountID, "scheme", string(scheme))
	s.respondOK(ctx, "Authenticated")
	return nil
}

// commandLoop services commands until quit, disconnect or a fatal
// verification failure. Messages are processed strictly in arrival order;
// there is no pipelining within a session.
func (s *session) commandLoop(ctx context.Context) {
	for {
		var req protocol.CommandRequest
		if err := protocol.ReadFrame(s.conn, &req); err != nil {
			if err == io.EOF {
				s.logger.Info(ctx, "peer disconnected")
				return
			}
			s.respondFail(ctx, "Invalid request")
			s.logger.Warn(ctx, "malformed command frame", "error", err.Error())
			return
		}

		command, err := s.openCommand(ctx, &req)
		if err != nil {
			// Fail-closed: a command that does not decrypt and verify ends
			// the session, matching the legacy server.
			s.logger.Warn(ctx, "command rejected", "error", err.Error())
			return
		}

		response, ok, quit := s.dispatch(ctx, command)
		if ok {
			s.respondOK(ctx, response)
		} else {
			s.respondFail(ctx, response)
		}
		if quit {
			return
		}
	}
}

// openCommand unwraps one command envelope: decrypt, verify against the
// login-bound terminal under the message-declared scheme, then cross-check
// the cleartext command tag. Any failure is session-fatal; the failure
// response is sent here.
func (s *session) openCommand(ctx context.Context, req *protocol.CommandRequest) (string, error) {
	scheme := s.scheme
	if req.Scheme != "" {
		scheme = envelope.FromTag(req.Scheme)
	}

	pub, err := s.ring.TerminalKey(s.terminalID, scheme)
	if err != nil {
		s.respondFail(ctx, "ATM signature verification failed")
		return "", err
	}

	plaintext, err := envelope.Open(req.Ciphertext, req.Signature, s.ring.BankPrivate, pub, scheme)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDecryptionFailed):
			s.respondFail(ctx, "Decryption error")
		default:
			s.respondFail(ctx, "ATM signature verification failed")
		}
		return "", err
	}

	command := string(plaintext)

	// The wire carries the command in clear for routing; if it disagrees
	// with what was actually signed and encrypted, someone tampered with
	// the frame.
	if req.Command != "" && req.Command != command {
		s.respondFail(ctx, "Tampered command")
		return "", common.ErrTamperedCommand
	}

	return command, nil
}

// dispatch executes one verified command against the account store and
// returns the response text, whether it is a success, and whether the
// session should end.
func (s *session) dispatch(ctx context.Context, command string) (response string, ok, quit bool) {
	verb, arg, _ := strings.Cut(command, " ")

	switch verb {
	case "balance":
		balance, err := s.accounts.CheckBalance(ctx, s.terminalID, s.accountID)
		if err != nil {
			return "Account not found", false, false
		}
		return fmt.Sprintf("Balance: $%d", balance), true, false

	case "deposit":
		amount, err := s.amount(arg, fixedDepositAmount)
		if err != nil {
			return "Invalid deposit amount", false, false
		}
		if err := s.accounts.Deposit(ctx, s.terminalID, s.accountID, amount); err != nil {
			return "Account not found", false, false
		}
		return fmt.Sprintf("Deposited $%d", amount), true, false

	case "withdraw":
		amount, err := s.amount(arg, fixedWithdrawAmount)
		if err != nil {
			return "Invalid withdraw amount", false, false
		}
		err = s.accounts.Withdraw(ctx, s.terminalID, s.accountID, amount)
		switch {
		case errors.Is(err, common.ErrInsufficientFunds):
			return "Insufficient funds", false, false
		case err != nil:
			return "Account not found", false, false
		}
		return fmt.Sprintf("Withdrew $%d", amount), true, false

	case "activity", "history":
		records, err := s.accounts.Activity(ctx, s.accountID)
		if err != nil {
			return "Account not found", false, false
		}
		if len(records) == 0 {
			return "No recent activity", true, false
		}
		lines := make([]string, len(records))
		for i, rec := range records {
			lines[i] = rec.String()
		}
		return strings.Join(lines, "\n"), true, false

	case "quit":
		if err := s.accounts.EndSession(ctx, s.terminalID, s.accountID); err != nil {
			s.logger.Error(ctx, "recording session end failed", "error", err.Error())
		}
		return "Session ended", true, true

	default:
		return "Unknown command", false, false
	}
}

// amount resolves the numeric argument of deposit/withdraw according to
// the deployment's amount mode. In fixed mode any argument is ignored.
func (s *session) amount(arg string, fixed int64) (int64, error) {
	if s.amountMode == config.AmountModeFixed {
		return fixed, nil
	}

	amount, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", common.ErrInvalidAmount, arg)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %d", common.ErrInvalidAmount, amount)
	}
	return amount, nil
}

func (s *session) respondOK(ctx context.Context, message string) {
	s.respond(ctx, protocol.StatusOK, message)
}

func (s *session) respondFail(ctx context.Context, message string) {
	s.respond(ctx, protocol.StatusFail, message)
}

func (s *session) respond(ctx context.Context, status, message string) {
	if err := protocol.WriteFrame(s.conn, &protocol.Response{Status: status, Message: message}); err != nil {
		s.logger.Warn(ctx, "response write failed", "error", err.Error())
	}
}

// close tears the session down. Mutations committed by earlier commands
// stay committed; there is no rollback on session close.
func (s *session) close(ctx context.Context) {
	s.state = stateClosed
	_ = s.conn.Close()
	s.logger.Info(ctx, "session closed")
}

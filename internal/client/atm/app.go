// Package atm implements the interactive terminal client: it loads the
// terminal's key bundle, opens a session with the bank server and walks
// the user through the action menu.
package atm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sbayu21/Secure-banking-system/internal/client/config"
	"github.com/sbayu21/Secure-banking-system/internal/envelope"
	"github.com/sbayu21/Secure-banking-system/internal/keys"
)

var menuCommands = map[string]string{
	"1": "balance",
	"2": "deposit",
	"3": "withdraw",
	"4": "activity",
	"5": "quit",
}

type App struct {
	config *config.Config
	bundle *keys.Bundle
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	bundle, err := keys.LoadTerminalBundle(c.CertsDir, c.TerminalID)
	if err != nil {
		return nil, fmt.Errorf("error loading terminal keys: %w", err)
	}

	return &App{config: c, bundle: bundle, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run drives one ATM session: credentials, login, then the action menu
// until quit, disconnect or EOF on input.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintf(a.out, "\n--- %s ATM SESSION ---\n", strings.ToUpper(a.config.TerminalID))

	accountID, err := GetSimpleText(a.reader, "Customer ID (6-digit)", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	scheme, err := a.chooseScheme()
	if err != nil {
		return err
	}

	client, err := Dial(a.config.ServerAddr, a.config.TerminalID, a.bundle, scheme)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Login(accountID, string(password))
	if err != nil {
		return err
	}
	if !resp.OK() {
		fmt.Fprintln(a.out, "Login failed:", resp.Message)
		return nil
	}
	fmt.Fprintln(a.out, "Login successful.")

	return a.menuLoop(ctx, client)
}

// chooseScheme prompts for the signature method; an empty answer keeps
// the configured default.
func (a *App) chooseScheme() (envelope.Scheme, error) {
	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Signature method (rsa or dsa, default %s)", a.config.Scheme), a.out)
	if err != nil {
		return "", err
	}
	if answer == "" {
		answer = a.config.Scheme
	}
	return envelope.FromTag(answer), nil
}

func (a *App) menuLoop(ctx context.Context, client *Client) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(a.out, "\nChoose an action:\n1. balance\n2. deposit\n3. withdraw\n4. activity\n5. quit\n")

		choice, err := GetSimpleText(a.reader, "Choice (1-5)", a.out)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		command, found := menuCommands[choice]
		if !found {
			fmt.Fprintln(a.out, "Invalid selection.")
			continue
		}

		if command == "deposit" || command == "withdraw" {
			amount, err := GetSimpleText(a.reader, "Amount (leave empty on fixed-amount deployments)", a.out)
			if err != nil {
				return err
			}
			if amount != "" {
				command = command + " " + amount
			}
		}

		resp, err := client.Send(command)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Response:", resp.Message)

		if strings.HasPrefix(command, "quit") {
			return nil
		}
		// The server drops the session on security failures; stop instead
		// of erroring on the next write.
		if !resp.OK() && isSessionFatal(resp.Message) {
			return nil
		}
	}
}

func isSessionFatal(message string) bool {
	switch message {
	case "Decryption error", "ATM signature verification failed", "Tampered command", "Invalid request":
		return true
	}
	return false
}

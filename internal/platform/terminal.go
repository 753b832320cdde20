package platform

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/converseworks/convkit/internal/connector"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/participant"
)

// Terminal prints both sides of the conversation to a writer and feeds lines
// from a reader into the user as input events.
type Terminal struct {
	out io.Writer
	in  io.Reader
}

// NewTerminal creates a terminal platform on stdin/stdout.
func NewTerminal() *Terminal {
	return &Terminal{out: os.Stdout, in: os.Stdin}
}

// NewTerminalWith creates a terminal platform on the given streams.
func NewTerminalWith(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{out: out, in: in}
}

func (t *Terminal) Connect(userID string) error {
	return nil
}

func (t *Terminal) Disconnect(userID string) error {
	return nil
}

func (t *Terminal) Message(userID, text string) error {
	_, err := fmt.Fprintln(t.out, text)
	return err
}

func (t *Terminal) DisplayAgentUtterance(u *dialogue.AnnotatedUtterance, agentID, userID string) error {
	_, err := fmt.Fprintf(t.out, "AGENT: %s\n", u.Text())
	return err
}

func (t *Terminal) DisplayUserUtterance(u *dialogue.AnnotatedUtterance, userID string) error {
	_, err := fmt.Fprintf(t.out, "USER:  %s\n", u.Text())
	return err
}

// Listen blocks reading input lines and publishing them through the user
// until the connector closes or the input stream ends. This is the only
// place the terminal transport blocks. An ended input stream closes the
// connector so the dialogue is still flushed, like a dropped socket.
func (t *Terminal) Listen(user *participant.HumanUser, dc *connector.DialogueConnector) error {
	scanner := bufio.NewScanner(t.in)
	for !dc.Closed() {
		if !scanner.Scan() {
			if err := dc.Close(); err != nil {
				return err
			}
			return scanner.Err()
		}
		if _, err := user.HandleInput(scanner.Text()); err != nil {
			return err
		}
	}
	return nil
}

var _ Platform = (*Terminal)(nil)

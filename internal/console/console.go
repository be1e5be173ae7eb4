//go:generate mockgen -source ./console.go -destination=./mocks/console.go -package=mock_console
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/backend"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/desk"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
)

// ErrExit is returned by Run when the operator types exit.
var ErrExit = errors.New("console: exit requested")

type Desk interface {
	Snapshot() desk.Snapshot
	Subscribe() (<-chan desk.Update, func())
	Accept(ctx context.Context) error
	Reject(ctx context.Context) error
	IncrementPrep() (int, error)
	DecrementPrep() (int, error)
	OpenReject() error
	SelectReason(reason string) error
	CancelReject() error
	ToggleMute() bool
	Clear() error
}

type Console struct {
	desk Desk
	in   io.Reader

	mu  sync.Mutex
	out io.Writer

	lastOrderID string
}

func New(d Desk, in io.Reader, out io.Writer) *Console {
	return &Console{desk: d, in: in, out: out}
}

// Run reads commands line by line until exit, end of input or ctx is done.
// Desk updates are rendered as they arrive.
func (c *Console) Run(ctx context.Context) error {
	updates, unsubscribe := c.desk.Subscribe()
	defer unsubscribe()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	c.HandleHelp()
	c.HandleStatus()

	for {
		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			c.showUpdate(u)
		case line := <-lines:
			if !c.Handle(ctx, line) {
				return ErrExit
			}
		case err := <-readErr:
			return err
		}
	}
}

// Handle executes one command line. It returns false on exit.
func (c *Console) Handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "help":
		c.HandleHelp()
	case "status":
		c.HandleStatus()
	case "accept":
		c.HandleAccept(ctx)
	case "+":
		c.handlePrep(c.desk.IncrementPrep)
	case "-":
		c.handlePrep(c.desk.DecrementPrep)
	case "reject":
		c.HandleReject(ctx, args)
	case "reasons":
		c.HandleReasons()
	case "cancel":
		c.report(c.desk.CancelReject(), "Reject cancelled")
	case "mute":
		if c.desk.ToggleMute() {
			c.println("Sound muted")
		} else {
			c.println("Sound on")
		}
	case "clear":
		c.report(c.desk.Clear(), "Order cleared")
	case "exit", "quit":
		return false
	default:
		c.println("Unknown command. Type 'help' for the list of commands")
	}
	return true
}

func (c *Console) HandleHelp() {
	c.println(`Available commands:
	status - Show the pending order
	accept - Accept the pending order
	+ / - - Change preparation time by one minute
	reject - Open the reject dialog
	reject <n> - Reject with reason number n
	reasons - List reject reasons
	cancel - Close the reject dialog
	mute - Toggle the order sound
	clear - Drop the pending order without answering
	exit - Exit program`)
}

func (c *Console) HandleStatus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	render(c.out, c.desk.Snapshot())
}

func (c *Console) HandleAccept(ctx context.Context) {
	snap := c.desk.Snapshot()
	if err := c.desk.Accept(ctx); err != nil {
		c.printError(err)
		return
	}
	c.printf("Order %s accepted, ready in %d min\n", orderID(snap), snap.PrepMinutes)
}

func (c *Console) HandleReject(ctx context.Context, args []string) {
	if len(args) == 0 {
		if err := c.desk.OpenReject(); err != nil {
			c.printError(err)
			return
		}
		c.HandleReasons()
		c.println("Usage: reject <n>")
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(model.RejectReasons) {
		c.printf("Invalid reason number. Use 1-%d\n", len(model.RejectReasons))
		return
	}
	reason := model.RejectReasons[n-1]

	snap := c.desk.Snapshot()
	if err := c.desk.SelectReason(string(reason)); err != nil {
		c.printError(err)
		return
	}
	if err := c.desk.Reject(ctx); err != nil {
		c.printError(err)
		return
	}
	c.printf("Order %s rejected: %s\n", orderID(snap), reason)
}

func (c *Console) HandleReasons() {
	c.println("Reject reasons:")
	for i, r := range model.RejectReasons {
		c.printf("  %d. %s\n", i+1, r)
	}
}

func (c *Console) handlePrep(adjust func() (int, error)) {
	minutes, err := adjust()
	if err != nil {
		c.printError(err)
		return
	}
	c.printf("Preparation time: %d min\n", minutes)
}

func (c *Console) showUpdate(u desk.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.Alert != "" {
		fmt.Fprintf(c.out, "! %s\n", u.Alert)
	}

	var id string
	if u.Snapshot.Order != nil {
		id = u.Snapshot.Order.ID
	}
	if id != "" && id != c.lastOrderID && u.Snapshot.Phase == desk.PhasePending {
		fmt.Fprintln(c.out, "*** New order ***")
		render(c.out, u.Snapshot)
	}
	c.lastOrderID = id
}

func (c *Console) report(err error, ok string) {
	if err != nil {
		c.printError(err)
		return
	}
	c.println(ok)
}

func (c *Console) printError(err error) {
	switch {
	case errors.Is(err, desk.ErrNotPending):
		c.println("Error: no pending order")
	case errors.Is(err, desk.ErrBusy):
		c.println("Error: a command is already in progress")
	case errors.Is(err, desk.ErrReasonRequired):
		c.println("Error: choose a reject reason first")
	case errors.Is(err, desk.ErrClosed):
		c.println("Error: desk is shutting down")
	default:
		c.println("Error:", backend.UserMessage(err))
	}
}

func (c *Console) println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

func orderID(s desk.Snapshot) string {
	if s.Order == nil {
		return ""
	}
	return s.Order.ID
}

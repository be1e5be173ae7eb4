package console

import (
	"fmt"
	"io"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/desk"
)

func render(w io.Writer, s desk.Snapshot) {
	if s.Phase == desk.PhaseIdle || s.Order == nil {
		fmt.Fprintln(w, "No pending order")
		return
	}

	o := s.Order
	fmt.Fprintf(w, "Order %s | %s left", o.ID, s.Countdown)
	if s.Phase == desk.PhaseResolving {
		fmt.Fprint(w, " | sending...")
	}
	if s.Muted {
		fmt.Fprint(w, " | muted")
	}
	fmt.Fprintln(w)

	if !o.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  Placed: %s\n", o.CreatedAt.Local().Format("15:04:05"))
	}
	for _, item := range o.Items {
		fmt.Fprintf(w, "  %dx %s  %s\n", item.Quantity, item.Name, item.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(w, "  Total: %s\n", o.Total.StringFixed(2))
	if o.CustomerAddress != "" {
		fmt.Fprintf(w, "  Address: %s\n", o.CustomerAddress)
	}
	if o.Cutlery {
		fmt.Fprintln(w, "  Cutlery requested")
	}
	fmt.Fprintf(w, "  Preparation time: %d min\n", s.PrepMinutes)

	if s.RejectOpen {
		reason := string(s.Reason)
		if reason == "" {
			reason = "not selected"
		}
		fmt.Fprintf(w, "  Rejecting, reason: %s\n", reason)
	}
	if s.Alert != "" {
		fmt.Fprintf(w, "  ! %s\n", s.Alert)
	}
}

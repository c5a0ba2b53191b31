package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

// DryRunNotifier prints the alert that would be sent without delivering it
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to out (stdout when nil)
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the alert
func (n *DryRunNotifier) Notify(ctx context.Context, run *storage.Run) error {
	alert := FormatAlert(run)
	fmt.Fprintln(n.out, "--- Alert ---")
	fmt.Fprintln(n.out, alert)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len([]rune(alert)))
	return nil
}

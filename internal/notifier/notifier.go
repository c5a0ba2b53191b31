package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

// maxListedErrors caps how many per-fixture errors an alert lists.
const maxListedErrors = 5

// Notifier defines the interface for delivering run alerts
type Notifier interface {
	// Notify delivers an alert for the given run
	Notify(ctx context.Context, run *storage.Run) error
}

// Multi delivers to every notifier and returns the combined delivery errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, run *storage.Run) error {
	var combined error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, run); err != nil {
			combined = errors.CombineErrors(combined, err)
		}
	}
	return combined
}

// FormatAlert renders a run as a plain-text alert message.
func FormatAlert(run *storage.Run) string {
	var b strings.Builder

	if run.Status == storage.StatusError {
		b.WriteString("⚠️ fixture-sync: sincronização falhou\n")
	} else {
		b.WriteString(fmt.Sprintf("ℹ️ fixture-sync: sincronização %s\n", run.Status))
	}

	b.WriteString(fmt.Sprintf("Run: %s\n", run.ID))
	b.WriteString(fmt.Sprintf("Início: %s\n", run.StartTime.Format("2006-01-02 15:04:05 MST")))
	if run.Duration != "" {
		b.WriteString(fmt.Sprintf("Duração: %s\n", run.Duration))
	}
	if run.Message != "" {
		b.WriteString(fmt.Sprintf("Erro: %s\n", run.Message))
	}
	b.WriteString(fmt.Sprintf("Jogos: %d encontrados, %d criados, %d atualizados, %d ignorados\n",
		run.Found, run.Created, run.Updated, run.Skipped))

	for i, e := range run.Errors {
		if i == maxListedErrors {
			b.WriteString(fmt.Sprintf("… e mais %d\n", len(run.Errors)-maxListedErrors))
			break
		}
		b.WriteString(fmt.Sprintf("• %s: %s\n", e.Fixture, e.Error))
	}

	return strings.TrimRight(b.String(), "\n")
}

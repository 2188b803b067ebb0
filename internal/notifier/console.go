package notifier

import (
	"context"
	"fmt"
	"io"

	"github.com/Houeta/catalog-watcher/internal/models"
)

// Console writes the report to a local stream, usually stdout.
type Console struct {
	out       io.Writer
	formatter *Formatter
}

func NewConsole(out io.Writer, formatter *Formatter) *Console {
	return &Console{out: out, formatter: formatter}
}

func (c *Console) Name() string { return "console" }

func (c *Console) Notify(_ context.Context, changes *models.Changes, current []models.Product) error {
	if _, err := fmt.Fprintln(c.out, c.formatter.Format(changes, current)); err != nil {
		return fmt.Errorf("notifier.Console: failed to write report: %w", err)
	}

	return nil
}

package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dvelkov/toystore/internal/models"
)

const sendTimeout = 10 * time.Second

// Dispatcher sends storefront notifications in detached goroutines. Enqueue
// never fails from the caller's perspective; errors are logged inside.
type Dispatcher struct {
	Sender Sender
	Logger *slog.Logger

	wg sync.WaitGroup
}

func (d *Dispatcher) dispatch(kind, to, subject, html string) {
	if d == nil || d.Sender == nil || to == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := d.Sender.Send(ctx, to, subject, html); err != nil {
			if d.Logger != nil {
				d.Logger.Error("email dispatch failed", "kind", kind, "to", to, "error", err)
			}
		}
	}()
}

// OrderConfirmation is fired once, right after a successful order insert.
func (d *Dispatcher) OrderConfirmation(order *models.Order) {
	subject, html := orderConfirmationEmail(order)
	d.dispatch("order_confirmation", order.CustomerEmail, subject, html)
}

// OrderShipped is fired once per transition into the shipped status.
func (d *Dispatcher) OrderShipped(order *models.Order) {
	subject, html := orderShippedEmail(order)
	d.dispatch("order_shipped", order.CustomerEmail, subject, html)
}

// Wait blocks until all in-flight sends finish. Used at shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

package app

import (
	"context"
	"log/slog"

	"github.com/dmitrijs2005/pointsfarmer/internal/notify"
)

// notifyHandler mirrors warning-and-above log records to the notifier, for
// runs where nobody is watching the console. Send failures are swallowed so
// a dead webhook cannot feed back into logging.
type notifyHandler struct {
	notifier notify.Notifier
	attrs    []slog.Attr
}

func newNotifyHandler(n notify.Notifier) *notifyHandler {
	return &notifyHandler{notifier: n}
}

func (h *notifyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (h *notifyHandler) Handle(ctx context.Context, record slog.Record) error {
	body := record.Message
	record.Attrs(func(a slog.Attr) bool {
		body += " " + a.String()
		return true
	})
	for _, a := range h.attrs {
		body += " " + a.String()
	}
	_ = h.notifier.Send(ctx, record.Level.String(), body)
	return nil
}

func (h *notifyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &notifyHandler{notifier: h.notifier, attrs: merged}
}

func (h *notifyHandler) WithGroup(string) slog.Handler {
	return h
}

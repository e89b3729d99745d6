package telemetry

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAPI implements API on top of the default slog logger. Error params are
// logged under "err", everything else under "params.<n>" in report order.
type SlogAPI struct{}

func reportAttrs(id string, params []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(params)+1)
	if id != "" {
		attrs = append(attrs, slog.String("id", id))
	}
	n := 0
	for _, p := range params {
		if err, ok := p.(error); ok {
			attrs = append(attrs, slog.String("err", err.Error()))
			continue
		}
		attrs = append(attrs, slog.Any(fmt.Sprintf("params.%d", n), p))
		n++
	}
	return attrs
}

func (SlogAPI) log(level slog.Level, msg, id string, params []any) {
	slog.LogAttrs(context.Background(), level, msg, reportAttrs(id, params)...)
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	s.log(slog.LevelError, "broken component", id, params)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	s.log(slog.LevelWarn, "warning", id, params)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	s.log(slog.LevelDebug, message, "", params)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Info("count", "id", id, "n", count)
}

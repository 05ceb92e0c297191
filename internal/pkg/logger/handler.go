package logger

import (
	"context"
	"errors"
	log "log/slog"
)

// TeeHandler 同一条日志写到多个下游，某个下游失败不影响其他下游
type TeeHandler struct {
	sinks []log.Handler
}

func NewTeeHandler(sinks ...log.Handler) *TeeHandler {
	return &TeeHandler{sinks: sinks}
}

func (s *TeeHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range s.sinks {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (s *TeeHandler) Handle(ctx context.Context, r log.Record) error {
	var errs []error
	for _, h := range s.sinks {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (s *TeeHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TeeHandler{sinks: mapSinks(s.sinks, func(h log.Handler) log.Handler { return h.WithAttrs(attrs) })}
}

func (s *TeeHandler) WithGroup(name string) log.Handler {
	return &TeeHandler{sinks: mapSinks(s.sinks, func(h log.Handler) log.Handler { return h.WithGroup(name) })}
}

func mapSinks(sinks []log.Handler, fn func(log.Handler) log.Handler) []log.Handler {
	out := make([]log.Handler, len(sinks))
	for i, h := range sinks {
		out[i] = fn(h)
	}
	return out
}

// FilterHandler 只放行 keep 返回 true 的记录
type FilterHandler struct {
	next log.Handler
	keep func(log.Record) bool
}

func NewFilterHandler(next log.Handler, keep func(log.Record) bool) *FilterHandler {
	return &FilterHandler{next: next, keep: keep}
}

// NewRemoteFilterHandler 只上报请求与任务日志，启动日志留在本地
func NewRemoteFilterHandler(next log.Handler) *FilterHandler {
	return NewFilterHandler(next, hasTraceID)
}

func hasTraceID(r log.Record) bool {
	found := false
	r.Attrs(func(a log.Attr) bool {
		found = a.Key == TraceIDKey && a.Value.String() != ""
		return !found
	})
	return found
}

func (s *FilterHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *FilterHandler) Handle(ctx context.Context, r log.Record) error {
	if !s.keep(r) {
		return nil
	}
	return s.next.Handle(ctx, r)
}

func (s *FilterHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &FilterHandler{next: s.next.WithAttrs(attrs), keep: s.keep}
}

func (s *FilterHandler) WithGroup(name string) log.Handler {
	return &FilterHandler{next: s.next.WithGroup(name), keep: s.keep}
}

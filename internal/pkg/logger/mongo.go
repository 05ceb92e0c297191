package logger

import (
	"context"
	log "log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/event"
)

// NewMongoMonitor 记录命令作用的集合，成功命令只在 Debug 级别输出，慢命令与失败单独上报
func NewMongoMonitor() *event.CommandMonitor {
	var inflight sync.Map // requestID -> collection

	collectionOf := func(requestID int64) string {
		if v, ok := inflight.LoadAndDelete(requestID); ok {
			return v.(string)
		}
		return ""
	}

	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			coll, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()
			inflight.Store(evt.RequestID, coll)
			log.DebugContext(ctx, "MongoDB Started",
				log.String("command", evt.CommandName),
				log.String("collection", coll),
				log.String("cmd_detail", truncate(evt.Command.String())),
			)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			attrs := []any{
				log.String("command", evt.CommandName),
				log.String("collection", collectionOf(evt.RequestID)),
				log.Duration("latency", evt.Duration),
			}
			if evt.Duration > SlowThreshold {
				log.WarnContext(ctx, "MongoDB Slow", attrs...)
				return
			}
			log.DebugContext(ctx, "MongoDB Success", attrs...)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "MongoDB Error",
				log.String("command", evt.CommandName),
				log.String("collection", collectionOf(evt.RequestID)),
				log.Duration("latency", evt.Duration),
				log.Any("err", evt.Failure),
			)
		},
	}
}

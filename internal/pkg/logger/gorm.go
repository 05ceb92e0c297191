package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// 主持人表的 INSERT/UPDATE 会带上 bcrypt 哈希
var bcryptHash = regexp.MustCompile(`\$2[abxy]?\$\d{2}\$[./A-Za-z0-9]{53}`)

// SlogGormLogger 主持人表只有少量查询，成功语句记为 Debug
type SlogGormLogger struct {
	level logger.LogLevel
}

func NewGormLogger() *SlogGormLogger {
	return &SlogGormLogger{level: logger.Warn}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &SlogGormLogger{level: level}
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.print(ctx, logger.Info, log.LevelInfo, msg, data)
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.print(ctx, logger.Warn, log.LevelWarn, msg, data)
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.print(ctx, logger.Error, log.LevelError, msg, data)
}

func (l *SlogGormLogger) print(ctx context.Context, need logger.LogLevel, level log.Level, msg string, data []interface{}) {
	if l.level < need {
		return
	}
	log.Log(ctx, level, "gorm: "+fmt.Sprintf(msg, data...))
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	sql = redactSQL(sql)

	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	msg := "MySQL " + strings.ToUpper(verb)
	attrs := []any{
		log.String("sql", truncate(sql)),
		log.Duration("latency", elapsed),
		log.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		log.ErrorContext(ctx, msg+" Error", append(attrs, log.Any("err", err))...)
	case elapsed > SlowThreshold:
		log.WarnContext(ctx, msg+" Slow", attrs...)
	default:
		log.DebugContext(ctx, msg, attrs...)
	}
}

func redactSQL(sql string) string {
	return bcryptHash.ReplaceAllString(sql, "[REDACTED]")
}

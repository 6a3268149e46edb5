package logger

import (
	"os"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger 는 패키지 전역 로거가 만족하는 최소 인터페이스다.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields 는 로그 한 줄의 top-level JSON 키다.
type Fields map[string]any

const defaultServiceName = "llm-controller"

var (
	// Log 는 Init 전에도 info 레벨로 동작한다.
	Log Logger = NewLogger("info")

	serviceName = defaultServiceName
)

// Init 은 전역 로거를 level 로 교체하고 SERVICE_NAME 을 다시 읽는다.
func Init(level string) {
	serviceName = defaultServiceName
	if sn := strings.TrimSpace(os.Getenv("SERVICE_NAME")); sn != "" {
		serviceName = sn
	}
	Log = NewLogger(level)
}

// NewLogger 는 datetime/level/message 와 Fields 만 출력하는 JSON 콘솔 로거다.
func NewLogger(level string) Logger {
	h := handler.NewConsoleHandler(enabledLevels(level))
	h.SetFormatter(slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	}))
	return slog.NewWithHandlers(h)
}

// enabledLevels 는 level 과 그보다 심각한 레벨 목록이다. 비어 있거나 모르는 이름이면 info.
func enabledLevels(level string) slog.Levels {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error":
	case "warning":
		level = "warn"
	default:
		level = "info"
	}
	threshold := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= threshold {
			levels = append(levels, lv)
		}
	}
	return levels
}

func InfoWithFields(msg string, fields Fields)  { logWithFields(slog.InfoLevel, msg, fields) }
func DebugWithFields(msg string, fields Fields) { logWithFields(slog.DebugLevel, msg, fields) }
func WarnWithFields(msg string, fields Fields)  { logWithFields(slog.WarnLevel, msg, fields) }
func ErrorWithFields(msg string, fields Fields) { logWithFields(slog.ErrorLevel, msg, fields) }

// logWithFields 는 service_name 을 채운 뒤 출력한다. Log 가 다른 구현으로 교체된 경우
// 필드는 버리고 메시지만 남긴다.
func logWithFields(level slog.Level, msg string, fields Fields) {
	lg, ok := Log.(*slog.Logger)
	if !ok {
		switch level {
		case slog.DebugLevel:
			Log.Debug(msg)
		case slog.WarnLevel:
			Log.Warn(msg)
		case slog.ErrorLevel:
			Log.Error(msg)
		default:
			Log.Info(msg)
		}
		return
	}

	record := lg.WithFields(slog.M(withServiceName(fields)))
	switch level {
	case slog.DebugLevel:
		record.Debug(msg)
	case slog.WarnLevel:
		record.Warn(msg)
	case slog.ErrorLevel:
		record.Error(msg)
	default:
		record.Info(msg)
	}
}

// withServiceName 은 fields 를 수정하지 않고 service_name 이 채워진 사본을 반환한다.
func withServiceName(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if _, ok := out["service_name"]; !ok {
		out["service_name"] = serviceName
	}
	return out
}

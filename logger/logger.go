package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
)

const prefix = "JMAPPER"

// LogLevel defines the severity of the log
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Short aliases.
const (
	LevelSilent = LogLevelSilent
	LevelError  = LogLevelError
	LevelWarn   = LogLevelWarn
	LevelInfo   = LogLevelInfo
	LevelDebug  = LogLevelDebug
)

// ParseLevel maps a configuration string to a level. Unknown names give
// LogLevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "off", "none":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarn
	case "debug", "sql":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// LogFormat defines the output format of the log
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger is the interface for logging statements and internal messages
type Logger interface {
	SetLevel(level LogLevel)
	SetFormat(format LogFormat)
	// SetOutput sets the main writer; nil disables it
	SetOutput(w io.Writer)
	// SetLevelOutput additionally copies entries of one level to w
	SetLevelOutput(level LogLevel, w io.Writer)
	WithFields(fields map[string]any) Logger
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	// SQL logs an executed statement at debug level
	SQL(sql string, duration time.Duration, args ...any)
	// SQLError logs a failed statement at error level
	SQLError(sql string, duration time.Duration, err error, args ...any)
}

// baseLogger contains common logging functionality
type baseLogger struct {
	mu      *sync.Mutex
	level   LogLevel
	format  LogFormat
	writer  io.Writer
	writers map[LogLevel]io.Writer
	fields  map[string]any
}

func (l *baseLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *baseLogger) SetFormat(format LogFormat) {
	l.format = format
}

func (l *baseLogger) SetOutput(w io.Writer) {
	l.writer = w
}

func (l *baseLogger) SetLevelOutput(level LogLevel, w io.Writer) {
	if w == nil {
		delete(l.writers, level)
		return
	}
	l.writers[level] = w
}

func (l *baseLogger) clone() *baseLogger {
	newFields := make(map[string]any, len(l.fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	newWriters := make(map[LogLevel]io.Writer, len(l.writers))
	for k, v := range l.writers {
		newWriters[k] = v
	}
	return &baseLogger{
		mu:      l.mu,
		level:   l.level,
		format:  l.format,
		writer:  l.writer,
		writers: newWriters,
		fields:  newFields,
	}
}

// stdLogger is the default implementation of Logger
type stdLogger struct {
	baseLogger
}

// NewStdLogger creates a new standard logger writing text at info level to
// stdout.
func NewStdLogger() Logger {
	return &stdLogger{
		baseLogger: baseLogger{
			mu:      &sync.Mutex{},
			level:   LogLevelInfo,
			format:  LogFormatText,
			writer:  os.Stdout,
			writers: make(map[LogLevel]io.Writer),
			fields:  make(map[string]any),
		},
	}
}

func (l *stdLogger) WithFields(fields map[string]any) Logger {
	newLogger := &stdLogger{
		baseLogger: *l.clone(),
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *stdLogger) Debug(format string, args ...any) {
	if l.level >= LogLevelDebug {
		l.log(LogLevelDebug, "DEBUG", format, args...)
	}
}

func (l *stdLogger) Info(format string, args ...any) {
	if l.level >= LogLevelInfo {
		l.log(LogLevelInfo, "INFO", format, args...)
	}
}

func (l *stdLogger) Warn(format string, args ...any) {
	if l.level >= LogLevelWarn {
		l.log(LogLevelWarn, "WARN", format, args...)
	}
}

func (l *stdLogger) Error(format string, args ...any) {
	if l.level >= LogLevelError {
		l.log(LogLevelError, "ERROR", format, args...)
	}
}

func (l *stdLogger) SQL(sql string, duration time.Duration, args ...any) {
	if l.level < LogLevelDebug {
		return
	}
	if l.format == LogFormatJSON {
		l.logFields(LogLevelDebug, "SQL", "sql", sql, "duration", duration.String(), "args", args)
		return
	}
	l.log(LogLevelDebug, "SQL", "[%v] %s | args: %v", duration, sql, args)
}

func (l *stdLogger) SQLError(sql string, duration time.Duration, err error, args ...any) {
	if l.level < LogLevelError {
		return
	}
	if l.format == LogFormatJSON {
		l.logFields(LogLevelError, "ERROR", "sql", sql, "duration", duration.String(), "args", args, "error", fmt.Sprint(err))
		return
	}
	if args == nil {
		args = []any{}
	}
	l.log(LogLevelError, "ERROR", "| SQL: %s | Args: %v | Duration: %v | error: %v", sql, args, duration, err)
}

func (l *stdLogger) log(level LogLevel, label string, format string, args ...any) {
	now := time.Now()
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	if l.format == LogFormatJSON {
		data := l.entry(now, label)
		data["msg"] = msg
		l.writeJSON(level, data)
		return
	}

	if label == "SQL" && len(args) >= 2 {
		if sqlStr, ok := args[1].(string); ok {
			msg = getSQLColor(sqlStr) + msg + ansiReset
		}
	}

	fieldStr := ""
	if len(l.fields) > 0 {
		fieldStr = fmt.Sprintf(" fields: %v", l.fields)
	}
	tag := "[" + prefix + "]"
	if level == LogLevelError {
		tag = "[" + prefix + "-ERROR]"
	}
	l.write(level, []byte(fmt.Sprintf("%s %s %s: %s%s\n", tag, now.Format("2006-01-02 15:04:05"), label, msg, fieldStr)))
}

// logFields writes a JSON entry from key/value pairs.
func (l *stdLogger) logFields(level LogLevel, label string, kv ...any) {
	data := l.entry(time.Now(), label)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			data[key] = kv[i+1]
		}
	}
	l.writeJSON(level, data)
}

func (l *stdLogger) entry(now time.Time, label string) map[string]any {
	data := make(map[string]any, len(l.fields)+3)
	for k, v := range l.fields {
		data[k] = v
	}
	data["time"] = now.Format(time.RFC3339)
	data["level"] = label
	return data
}

func (l *stdLogger) writeJSON(level LogLevel, data map[string]any) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	l.write(level, append(b, '\n'))
}

func (l *stdLogger) write(level LogLevel, line []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer != nil {
		l.writer.Write(line)
	}
	if w, ok := l.writers[level]; ok && w != l.writer {
		w.Write(line)
	}
}

func getSQLColor(sqlStr string) string {
	s := strings.TrimSpace(strings.ToUpper(sqlStr))
	switch {
	case strings.HasPrefix(s, "SELECT"), strings.HasPrefix(s, "WITH"):
		return ansiYellow
	case strings.HasPrefix(s, "INSERT"), strings.HasPrefix(s, "UPDATE"):
		return ansiGreen
	case strings.HasPrefix(s, "DELETE"):
		return ansiRed
	case strings.HasPrefix(s, "EXEC"), strings.HasPrefix(s, "CALL"):
		return ansiMagenta
	default:
		return ansiCyan
	}
}

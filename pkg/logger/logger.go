// Package logger provides structured logging for the academic core.
// It supports log levels, structured fields, and JSON or text output.
// No external dependencies - uses only standard library.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo is for general operational information.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// Common field constructors.
func String(key, value string) Field { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.String()}
}

// Err creates an error field under the conventional "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Logger is a leveled, structured logger. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
	fields []Field
}

// New creates a logger writing to out at the given level.
func New(out io.Writer, level Level, format Format) *Logger {
	if out == nil {
		out = os.Stdout
	}
	if format != FormatJSON && format != FormatText {
		format = FormatText
	}
	return &Logger{out: out, level: level, format: format}
}

// Default returns a text logger on stdout at info level.
func Default() *Logger {
	return New(os.Stdout, LevelInfo, FormatText)
}

// Nop returns a logger that discards everything. Useful as a default in
// constructors so callers may pass nil.
func Nop() *Logger {
	return New(io.Discard, LevelError+1, FormatText)
}

// With returns a child logger that includes the given fields in every entry.
func (l *Logger) With(fields ...Field) *Logger {
	child := &Logger{
		out:    l.out,
		level:  l.level,
		format: l.format,
		fields: append(append([]Field{}, l.fields...), fields...),
	}
	return child
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Field) { l.log(LevelInfo, msg, fields) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields ...Field) { l.log(LevelWarn, msg, fields) }

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	all := append(append([]Field{}, l.fields...), fields...)
	ts := time.Now().UTC().Format(time.RFC3339)

	var line string
	if l.format == FormatJSON {
		entry := make(map[string]any, len(all)+3)
		entry["time"] = ts
		entry["level"] = level.String()
		entry["message"] = msg
		for _, f := range all {
			entry[f.Key] = f.Value
		}
		data, err := json.Marshal(entry)
		if err != nil {
			data = []byte(fmt.Sprintf(`{"time":%q,"level":%q,"message":%q}`, ts, level.String(), msg))
		}
		line = string(data)
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "%s %-5s %s", ts, level.String(), msg)
		sort.SliceStable(all, func(i, j int) bool { return all[i].Key < all[j].Key })
		for _, f := range all {
			fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
		}
		line = b.String()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}

package logging

import (
	"bytes"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerWriter adapts a zap logger to io.Writer so external processes
// (the Pulumi engine's progress streams) log through the usual sinks.
// Input is split on newlines; partial lines are buffered until complete.
type LoggerWriter struct {
	log   *zap.Logger
	level zapcore.Level
	buf   bytes.Buffer
}

func NewLoggerWriter(log *zap.Logger, level zapcore.Level) *LoggerWriter {
	return &LoggerWriter{log: log, level: level}
}

func (w *LoggerWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it buffered
			w.buf.WriteString(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

// Flush writes out any trailing partial line.
func (w *LoggerWriter) Flush() {
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *LoggerWriter) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	if ce := w.log.Check(w.level, line); ce != nil {
		ce.Write()
	}
}

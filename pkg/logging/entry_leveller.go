package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller filters entries by logger name, letting individual loggers
// ("stack", "infra.network", ...) run at their own minimum level. Lookup
// walks the dotted name from most to least specific; "" is the fallback.
type EntryLeveller struct {
	zapcore.Core

	levels map[string]zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	l := make(map[string]zapcore.Level, len(levels))
	for k, v := range levels {
		l[k] = v
	}
	return &EntryLeveller{Core: core, levels: l}
}

func (el *EntryLeveller) With(f []zapcore.Field) zapcore.Core {
	return &EntryLeveller{Core: el.Core.With(f), levels: el.levels}
}

func (el *EntryLeveller) levelFor(name string) (zapcore.Level, bool) {
	for name != "" {
		if lvl, ok := el.levels[name]; ok {
			return lvl, true
		}
		i := strings.LastIndex(name, ".")
		if i < 0 {
			break
		}
		name = name[:i]
	}
	lvl, ok := el.levels[""]
	return lvl, ok
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.LoggerName == "" {
		return el.Core.Check(e, ce)
	}
	if lvl, ok := el.levelFor(e.LoggerName); ok {
		if e.Level < lvl {
			return ce
		}
		return ce.AddCore(e, el)
	}
	return el.Core.Check(e, ce)
}

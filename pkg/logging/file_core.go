package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap/zapcore"
)

// FileCore appends every entry to a single log file, one encoded line per
// resource event. The file is opened lazily and shared across clones.
type FileCore struct {
	enc zapcore.Encoder

	mu *sync.Mutex
	f  *os.File
}

func NewFileCore(enc zapcore.Encoder, path string) (*FileCore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &FileCore{enc: enc, mu: &sync.Mutex{}, f: f}, nil
}

func (c *FileCore) Enabled(zapcore.Level) bool { return true }

func (c *FileCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &FileCore{enc: c.enc.Clone(), mu: c.mu, f: c.f}
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	return clone
}

func (c *FileCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return ce.AddCore(ent, c)
}

func (c *FileCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.f.Write(buf.Bytes())
	return err
}

func (c *FileCore) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.f.Sync()
}

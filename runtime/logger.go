package runtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/mswasm-runtime/segment"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the runtime package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the runtime package's logger.
// This must be called before creating instances.
func SetLogger(l *zap.Logger) {
	logger = l
}

// segmentLogger reports store events.
type segmentLogger struct {
	log *zap.Logger
}

func (l *segmentLogger) OnSegmentEvent(e segment.Event) {
	if ce := l.log.Check(zap.DebugLevel, "segment "+e.Type.String()); ce != nil {
		ce.Write(zap.Stringer("handle", e.Handle), zap.Uint32("size", e.Size))
	}
}

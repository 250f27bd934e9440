package taskrt

import "github.com/joeycumines/logiface"

// logifaceLogger bridges any logiface-backed sink (zerolog, stumpy,
// logrus, etc., via the corpus's logiface-* adapter packages) into this
// package's Logger interface. Grounded on the teacher's
// coverage_extra_test.go/coverage_phase2_test.go, which hand-build a
// minimal logiface.Event/EventFactory/Writer trio to exercise the
// eventloop's logging integration in tests; here the mirror-image adapter
// is a first-class, non-test component.
type logifaceLogger[E logiface.Event] struct {
	logger *logiface.Logger[E]
	toLevel func(Level) logiface.Level
}

// NewLogifaceLogger adapts logger into a Logger, mapping this package's
// Level values to logiface.Level via toLevel. A nil toLevel uses
// DefaultLevelMapping.
func NewLogifaceLogger[E logiface.Event](logger *logiface.Logger[E], toLevel func(Level) logiface.Level) Logger {
	if toLevel == nil {
		toLevel = DefaultLevelMapping
	}
	return &logifaceLogger[E]{logger: logger, toLevel: toLevel}
}

// DefaultLevelMapping maps this package's four levels onto the nearest
// syslog-style logiface levels.
func DefaultLevelMapping(l Level) logiface.Level {
	switch l {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

func (a *logifaceLogger[E]) Enabled(level Level) bool {
	ll := a.toLevel(level)
	return ll.Enabled() && ll <= a.logger.Level()
}

func (a *logifaceLogger[E]) Log(e Entry) {
	b := a.logger.Build(a.toLevel(e.Level))
	if b == nil {
		return
	}
	for k, v := range e.Fields {
		b = b.Any(k, v)
	}
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}

// pkg/utils/logger.go

package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	plog "github.com/pingcap/log"
	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	loggers = make(map[string]*logHandle)
	level   = logrus.InfoLevel
	output  io.Writer = os.Stderr
)

type logHandle struct {
	logrus.Logger

	name string
	pid  int
}

// Format renders one entry as `2006/01/02 15:04:05.000000 name[pid] <LEVEL>: message {fields}`.
func (l *logHandle) Format(e *logrus.Entry) ([]byte, error) {
	const timeFormat = "2006/01/02 15:04:05.000000"
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s[%d] <%s>: %s",
		e.Time.Format(timeFormat),
		l.name,
		l.pid,
		strings.ToUpper(e.Level.String()),
		e.Message)
	if len(e.Data) != 0 {
		fmt.Fprintf(&sb, " %v", e.Data)
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

func newLogger(name string) *logHandle {
	l := &logHandle{name: name, pid: os.Getpid()}
	l.Out = output
	l.Formatter = l
	l.Level = level
	l.Hooks = make(logrus.LevelHooks)
	return l
}

// GetLogger returns the logger registered under name, creating it on first use.
func GetLogger(name string) *logHandle {
	mu.Lock()
	defer mu.Unlock()

	if logger, ok := loggers[name]; ok {
		return logger
	}
	logger := newLogger(name)
	loggers[name] = logger
	return logger
}

// SetLogLevel sets lvl on every logger, including the ones created later.
func SetLogLevel(lvl logrus.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = lvl
	for _, logger := range loggers {
		logger.SetLevel(lvl)
	}
	// pingcap/log backs the zap loggers of some dependencies, keep it one step quieter
	var plvl string
	switch lvl {
	case logrus.TraceLevel:
		plvl = "debug"
	case logrus.DebugLevel:
		plvl = "info"
	case logrus.InfoLevel, logrus.WarnLevel:
		plvl = "warn"
	case logrus.ErrorLevel:
		plvl = "error"
	default:
		plvl = "dpanic"
	}
	l, p, err := plog.InitLogger(&plog.Config{Level: plvl})
	if err == nil {
		plog.ReplaceGlobals(l, p)
	}
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	for _, logger := range loggers {
		logger.SetOutput(w)
	}
}

// SetOutFile appends all log lines to the named file.
func SetOutFile(name string) error {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	SetOutput(file)
	return nil
}

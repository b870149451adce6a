package logger

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

// DefaultLevel keeps command output free of phase tracing.
const DefaultLevel = "WARNING"

var (
	colorFormat = logging.MustStringFormatter(
		`%{color}%{time:15:04:05.000} %{module} %{level:.4s} ▶ %{message}%{color:reset}`,
	)
	plainFormat = logging.MustStringFormatter(
		`%{time:15:04:05.000} %{module} %{level:.4s} ▶ %{message}`,
	)
)

// Library users that never call Setup get quiet stderr logging instead of
// go-logging's DEBUG default.
func init() {
	if err := Setup(os.Stderr, DefaultLevel, false); err != nil {
		panic(err)
	}
}

// Setup routes every module logger to w at the given level, one of CRITICAL,
// ERROR, WARNING, NOTICE, INFO or DEBUG. An empty level means DefaultLevel.
func Setup(w io.Writer, level string, color bool) error {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := logging.LogLevel(strings.ToUpper(level))
	if err != nil {
		return errors.Wrapf(err, "log level %q", level)
	}
	format := plainFormat
	if color {
		format = colorFormat
	}
	backend := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
	return nil
}

// Get returns the logger for module.
func Get(module string) *logging.Logger {
	return logging.MustGetLogger(module)
}

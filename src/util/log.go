// log.go provides the ambient stage logger. Grounded on the teacher's
// Verbose-mode prints in src/main.go, replaced with a real structured
// logger (logrus) the way Consensys-go-corset logs compiler stages.

package util

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// StageLog records one pipeline stage's timing and diagnostic count for
// --debug output.
type StageLog struct {
	log *logrus.Logger
}

// ---------------------
// ----- functions -----
// ---------------------

// NewStageLog returns a StageLog at Info level, or Debug level if debug is
// true.
func NewStageLog(debug bool) *StageLog {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return &StageLog{log: l}
}

// Stage logs the elapsed time and diagnostic count of a completed stage.
func (s *StageLog) Stage(name string, elapsed time.Duration, diagCount int) {
	s.log.WithFields(logrus.Fields{
		"stage":       name,
		"elapsed":     elapsed,
		"diagnostics": diagCount,
	}).Debug("stage complete")
}

// Info logs a general informational message.
func (s *StageLog) Info(format string, args ...interface{}) {
	s.log.Infof(format, args...)
}

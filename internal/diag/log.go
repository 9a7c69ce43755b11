package diag

import (
	"context"
	"log"
)

// LogSink writes diagnostics to the standard logger.
type LogSink struct {
	Logger *log.Logger // nil means the default logger
}

// NewLogSink creates a LogSink on the default logger.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Report logs the diagnostic.
func (s *LogSink) Report(_ context.Context, d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("diag: %s order=%d currency=%s orderTotal=%.4f itemTotal=%.4f: %s",
		d.Kind, d.OrderID, d.Currency, d.OrderTotal, d.ItemTotal, d.Message)
}

package report

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/scan"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig configures the rotating JSON-lines event log
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// FileSink appends one JSON record per event to a rotating log file
type FileSink struct {
	mu      sync.Mutex
	logger  *lumberjack.Logger
	encoder *json.Encoder
	failed  bool
}

// NewFileSink opens a rotating event log. The file is created on first write.
func NewFileSink(config FileConfig) (*FileSink, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("event log path is empty")
	}
	logger := &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}
	return &FileSink{logger: logger, encoder: json.NewEncoder(logger)}, nil
}

func (s *FileSink) Report(ev scan.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(NewRecord(ev)); err != nil {
		// Warn once; the scan loop keeps running without the file
		if !s.failed {
			logging.Warnf("event log write failed: %v", err)
		}
		s.failed = true
		return
	}
	s.failed = false
}

// Rotate closes the current file and starts a new one
func (s *FileSink) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger.Rotate()
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger.Close()
}

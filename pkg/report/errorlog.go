package report

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/types"
)

// ErrorLog appends one JSON object per failed rule to a file. It is safe for
// concurrent use; every record is written with a single append.
type ErrorLog struct {
	mu   sync.Mutex
	path string
}

// NewErrorLog returns a log appending to path. The file is created on the
// first record.
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path}
}

// Path returns the log file path.
func (l *ErrorLog) Path() string {
	return l.path
}

// Write appends records to the log.
func (l *ErrorLog) Write(records ...types.ErrorRecord) error {
	if l == nil || len(records) == 0 {
		return nil
	}
	var data []byte
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "failed to encode error record")
		}
		data = append(data, line...)
		data = append(data, '\n')
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open error log %s", l.path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write error log %s", l.path)
	}
	return errors.Wrapf(f.Close(), "failed to close error log %s", l.path)
}

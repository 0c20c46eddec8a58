package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide line logger. Every caller sees the same
// instance; output goes to stdout, one entry per line, no prefix.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest writes entry as a single JSON log line. Entries that fail to
// marshal are dropped, leaving a fixed error line in their place.
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"dropped unmarshalable log entry"}`)
		return
	}
	Logger().Println(string(data))
}

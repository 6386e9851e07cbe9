package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	errorLogger *log.Logger
	debugLogger *log.Logger

	// errorBursts caps how fast a single error format string may reach the
	// log. A render loop retrying a failed asset every frame would otherwise
	// write thousands of identical lines per minute.
	errorBursts   = make(map[string]*rate.Limiter)
	errorBurstsMu sync.Mutex
)

func setupLogging(debug bool) {
	logDir := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Printf("could not create log directory: %v\n", err)
	}
	ts := time.Now().Format("20060102-150405")

	errPath := filepath.Join(logDir, fmt.Sprintf("error-%s.log", ts))
	errFile, err := os.Create(errPath)
	var errWriter io.Writer = os.Stdout
	if err == nil {
		errWriter = io.MultiWriter(os.Stdout, errFile)
	}
	errorLogger = log.New(errWriter, "", log.LstdFlags)
	log.SetOutput(errWriter)

	setDebugLogging(debug)
}

func allowErrorLine(format string) bool {
	errorBurstsMu.Lock()
	defer errorBurstsMu.Unlock()
	lim, ok := errorBursts[format]
	if !ok {
		lim = rate.NewLimiter(rate.Every(2*time.Second), 5)
		errorBursts[format] = lim
	}
	return lim.Allow()
}

func logError(format string, v ...interface{}) {
	if !allowErrorLine(format) {
		return
	}
	if errorLogger != nil {
		errorLogger.Printf(format, v...)
	}
	if !silent {
		addMessage(fmt.Sprintf(format, v...))
	}
}

func logDebug(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogger.Printf(format, v...)
	}
}

// logDebugFrame dumps one raw snapshot payload. Long payloads are truncated;
// the limit of 0 dumps everything.
var debugFrameDumpLen = 256

func logDebugFrame(prefix string, data []byte) {
	if debugLogger == nil {
		return
	}
	n := len(data)
	dump := data
	if debugFrameDumpLen > 0 && n > debugFrameDumpLen {
		dump = data[:debugFrameDumpLen]
	}
	debugLogger.Printf("%s len=%d payload=% x", prefix, n, dump)
}

func setDebugLogging(enabled bool) {
	if !enabled {
		debugLogger = nil
		return
	}
	logDir := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Printf("could not create log directory: %v\n", err)
	}
	ts := time.Now().Format("20060102-150405")
	dbgPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", ts))
	dbgFile, err := os.Create(dbgPath)
	var dbgWriter io.Writer = os.Stdout
	if err == nil {
		dbgWriter = io.MultiWriter(os.Stdout, dbgFile)
	}
	debugLogger = log.New(dbgWriter, "", log.LstdFlags)
}

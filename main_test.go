package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func restoreLog(t *testing.T) {
	t.Helper()
	out, prefix, flags := log.Writer(), log.Prefix(), log.Flags()
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetPrefix(prefix)
		log.SetFlags(flags)
	})
}

func TestHeadlessLogsToStderrWithoutLogFile(t *testing.T) {
	restoreLog(t)
	closeLog, err := setupLogging("", "headless")
	if err != nil {
		t.Fatalf("setupLogging() error = %v", err)
	}
	defer closeLog()
	if log.Writer() != os.Stderr {
		t.Fatalf("expected headless log on stderr, got %T", log.Writer())
	}
}

func TestTerminalDiscardsLogWithoutLogFile(t *testing.T) {
	restoreLog(t)
	closeLog, err := setupLogging("", "term")
	if err != nil {
		t.Fatalf("setupLogging() error = %v", err)
	}
	defer closeLog()
	if log.Writer() != io.Discard {
		t.Fatalf("expected discarded log for the terminal UI, got %T", log.Writer())
	}
}

func TestLogFileWinsForEverySurface(t *testing.T) {
	restoreLog(t)
	path := filepath.Join(t.TempDir(), "orb.log")
	closeLog, err := setupLogging(path, "headless")
	if err != nil {
		t.Fatalf("setupLogging() error = %v", err)
	}
	log.Print("frame 0")
	if err := closeLog(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "frame 0") {
		t.Fatalf("expected log line in file, got %q", data)
	}
}

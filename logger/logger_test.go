/*
 * Copyright 2025 The EventFlux Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{OFF, "OFF"},
		{Level(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("Level(%d).String() = %q, want %q", test.level, got, test.expected)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)

	if l == nil {
		t.Fatal("NewLogger() returned nil")
	}

	l.Info("test message")
	output := buf.String()

	if !strings.Contains(output, "test message") {
		t.Errorf("expected log output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected log output to contain '[INFO]', got: %s", output)
	}
}

func TestLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf)

	l.Debug("debug message with %s", "parameter")
	output := buf.String()

	if !strings.Contains(output, "debug message with parameter") {
		t.Errorf("expected debug message in output, got: %s", output)
	}
	if !strings.Contains(output, "[DEBUG]") {
		t.Errorf("expected [DEBUG] in output, got: %s", output)
	}
}

func TestLoggerInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)

	l.Info("info message with %d number", 42)
	output := buf.String()

	if !strings.Contains(output, "info message with 42 number") {
		t.Errorf("expected info message in output, got: %s", output)
	}
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected [INFO] in output, got: %s", output)
	}
}

func TestLoggerWarn(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, &buf)

	l.Warn("warning message")
	output := buf.String()

	if !strings.Contains(output, "warning message") {
		t.Errorf("expected warning message in output, got: %s", output)
	}
	if !strings.Contains(output, "[WARN]") {
		t.Errorf("expected [WARN] in output, got: %s", output)
	}
}

func TestLoggerError(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(ERROR, &buf)

	l.Error("error message: %v", "something went wrong")
	output := buf.String()

	if !strings.Contains(output, "error message: something went wrong") {
		t.Errorf("expected error message in output, got: %s", output)
	}
	if !strings.Contains(output, "[ERROR]") {
		t.Errorf("expected [ERROR] in output, got: %s", output)
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf)

	l.SetLevel(ERROR)
	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") || strings.Contains(output, "warn message") {
		t.Errorf("expected no output for lower level logs, got: %s", output)
	}

	buf.Reset()
	l.Error("error message")
	output = buf.String()
	if !strings.Contains(output, "error message") {
		t.Errorf("expected error message in output, got: %s", output)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		loggerLevel  Level
		messageLevel Level
		shouldLog    bool
	}{
		{DEBUG, DEBUG, true},
		{DEBUG, INFO, true},
		{DEBUG, WARN, true},
		{DEBUG, ERROR, true},
		{INFO, DEBUG, false},
		{INFO, INFO, true},
		{INFO, WARN, true},
		{INFO, ERROR, true},
		{WARN, DEBUG, false},
		{WARN, INFO, false},
		{WARN, WARN, true},
		{WARN, ERROR, true},
		{ERROR, DEBUG, false},
		{ERROR, INFO, false},
		{ERROR, WARN, false},
		{ERROR, ERROR, true},
		{OFF, ERROR, false},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		l := NewLogger(test.loggerLevel, &buf)

		switch test.messageLevel {
		case DEBUG:
			l.Debug("test message")
		case INFO:
			l.Info("test message")
		case WARN:
			l.Warn("test message")
		case ERROR:
			l.Error("test message")
		}

		hasOutput := buf.Len() > 0
		if hasOutput != test.shouldLog {
			t.Errorf("logger level %s, message level %s: expected shouldLog=%v, got hasOutput=%v",
				test.loggerLevel, test.messageLevel, test.shouldLog, hasOutput)
		}
	}
}

func TestLoggerOFFLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(OFF, &buf)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	if buf.Len() > 0 {
		t.Errorf("expected no output when level is OFF, got: %s", buf.String())
	}
}

func TestNewDiscardLogger(t *testing.T) {
	l := NewDiscardLogger()
	if l == nil {
		t.Fatal("NewDiscardLogger() returned nil")
	}

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")
	l.SetLevel(DEBUG)
}

func TestGlobalLogger(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	var buf bytes.Buffer
	testLogger := NewLogger(DEBUG, &buf)
	SetDefault(testLogger)

	if GetDefault() != testLogger {
		t.Error("global logger was not set correctly")
	}

	Debug("global debug message")
	Info("global info message")
	Warn("global warn message")
	Error("global error message")

	output := buf.String()
	for _, msg := range []string{
		"global debug message",
		"global info message",
		"global warn message",
		"global error message",
	} {
		if !strings.Contains(output, msg) {
			t.Errorf("expected output to contain %q, got: %s", msg, output)
		}
	}
}

func TestGlobalLoggerRestore(t *testing.T) {
	original := GetDefault()

	var buf bytes.Buffer
	testLogger := NewLogger(ERROR, &buf)
	SetDefault(testLogger)
	if GetDefault() != testLogger {
		t.Error("failed to set test logger")
	}

	SetDefault(original)
	if GetDefault() != original {
		t.Error("failed to restore original logger")
	}
}

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)

	l.Info("test message")
	output := buf.String()

	if !strings.Contains(output, "[") || !strings.Contains(output, "]") {
		t.Errorf("expected timestamp format in brackets, got: %s", output)
	}
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected [INFO] in output, got: %s", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("expected 'test message' in output, got: %s", output)
	}
}

func TestLoggerTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)

	l.Info("timestamp test")
	output := buf.String()

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		t.Fatal("no output lines found")
	}

	line := lines[0]
	if !strings.Contains(line, "[") || !strings.Contains(line, "]") {
		t.Errorf("expected timestamp in brackets, got: %s", line)
	}
	if !strings.Contains(line, "2025") && !strings.Contains(line, "2024") && !strings.Contains(line, "2026") {
		t.Errorf("expected year in timestamp, got: %s", line)
	}
}

func TestLoggerWithStdout(t *testing.T) {
	l := NewLogger(INFO, os.Stdout)
	if l == nil {
		t.Fatal("NewLogger() with os.Stdout returned nil")
	}
	l.Info("test message to stdout")
}

func TestLoggerWithStderr(t *testing.T) {
	l := NewLogger(ERROR, os.Stderr)
	if l == nil {
		t.Fatal("NewLogger() with os.Stderr returned nil")
	}
	l.Error("test error message to stderr")
}

// log.Logger serializes its own Output calls internally, so writing
// concurrently through a single Logger to a shared io.Writer is safe.
func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(INFO, &buf)

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(id int) {
			l.Info("concurrent message from goroutine %d", id)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	output := buf.String()
	if len(output) == 0 {
		t.Error("expected some output from concurrent logging")
	}
	if count := strings.Count(output, "concurrent message"); count != 10 {
		t.Errorf("expected 10 concurrent messages, got %d", count)
	}
}

func TestLoggerParameterFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf)

	tests := []struct {
		format   string
		args     []interface{}
		expected string
	}{
		{"simple message", nil, "simple message"},
		{"message with %s", []interface{}{"string"}, "message with string"},
		{"message with %d", []interface{}{42}, "message with 42"},
		{"message with %v", []interface{}{true}, "message with true"},
		{"multiple %s %d %v", []interface{}{"params", 123, false}, "multiple params 123 false"},
	}

	for _, test := range tests {
		buf.Reset()
		l.Info(test.format, test.args...)
		output := buf.String()
		if !strings.Contains(output, test.expected) {
			t.Errorf("expected output to contain %q, got: %s", test.expected, output)
		}
	}
}

func TestDefaultLoggerInitialization(t *testing.T) {
	d := GetDefault()
	if d == nil {
		t.Fatal("default logger should not be nil")
	}
	d.Info("test default logger")
}

func TestLoggerInternalLogMethod(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf).(*defaultLogger)

	l.SetLevel(OFF)
	l.log(ERROR, "test message")

	if buf.Len() > 0 {
		t.Errorf("expected no output when level is OFF, got: %s", buf.String())
	}
}

func TestDiscardLoggerAllMethods(t *testing.T) {
	l := NewDiscardLogger()

	l.Debug("debug %s", "test")
	l.Info("info %d", 123)
	l.Warn("warn %v", true)
	l.Error("error %s %d", "test", 456)

	l.SetLevel(DEBUG)
	l.SetLevel(INFO)
	l.SetLevel(WARN)
	l.SetLevel(ERROR)
	l.SetLevel(OFF)
}

func TestLoggerWithNilArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(DEBUG, &buf)

	l.Info("message without args")
	if !strings.Contains(buf.String(), "message without args") {
		t.Errorf("expected message in output, got: %s", buf.String())
	}

	buf.Reset()
	l.Info("message with empty args", []interface{}{}...)
	if !strings.Contains(buf.String(), "message with empty args") {
		t.Errorf("expected message in output, got: %s", buf.String())
	}
}

func TestLevelConstants(t *testing.T) {
	expected := map[Level]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		OFF:   "OFF",
	}
	for level, want := range expected {
		if got := level.String(); got != want {
			t.Errorf("level %d should return %s, got %s", level, want, got)
		}
	}

	if DEBUG != 0 || INFO != 1 || WARN != 2 || ERROR != 3 || OFF != 4 {
		t.Error("level constants drifted from their expected ordinal values")
	}
}

package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestProductionLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger("registry")
	logger.SetOutput(&buf)
	logger.SetLevel("WARN")

	logger.Debug("debug message", nil)
	logger.Info("info message", nil)
	logger.Warn("warn message", nil)
	logger.Error("error message", nil)

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN leaked through: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("WARN/ERROR messages missing: %s", out)
	}
}

func TestProductionLoggerTextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger("registry")
	logger.SetOutput(&buf)
	logger.SetLevel("INFO")

	logger.Info("Registered metric", map[string]interface{}{
		"metric": "requests.total",
		"type":   "counter",
	})

	out := buf.String()
	if !strings.Contains(out, "metric=requests.total") {
		t.Errorf("metric field missing: %s", out)
	}
	if !strings.Contains(out, "[pulse:registry]") {
		t.Errorf("component prefix missing: %s", out)
	}
}

func TestProductionLoggerJSONFormat(t *testing.T) {
	t.Setenv("PULSE_LOG_FORMAT", "json")
	t.Setenv("PULSE_LOG_LEVEL", "INFO")

	var buf bytes.Buffer
	logger := NewProductionLogger("reporter")
	logger.SetOutput(&buf)

	logger.Info("Snapshot delivered", map[string]interface{}{"snapshot": "abc"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if entry["level"] != "INFO" || entry["component"] != "reporter" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry["snapshot"] != "abc" {
		t.Errorf("custom field missing: %+v", entry)
	}
}

func TestProductionLoggerRateLimitsErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger("reporter")
	logger.SetOutput(&buf)

	for i := 0; i < 10; i++ {
		logger.Error("backend down", nil)
	}

	if got := strings.Count(buf.String(), "backend down"); got != 1 {
		t.Errorf("expected 1 rate-limited error line, got %d", got)
	}
}

func TestProductionLoggerThrottlesPerMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProductionLogger("reporter")
	logger.SetOutput(&buf)

	logger.Error("redis unreachable", nil)
	logger.Error("prometheus scrape failed", nil)

	out := buf.String()
	if !strings.Contains(out, "redis unreachable") || !strings.Contains(out, "prometheus scrape failed") {
		t.Errorf("distinct error messages must not throttle each other: %s", out)
	}
}

func TestProductionLoggerDebugFromEnv(t *testing.T) {
	t.Setenv("PULSE_LOG_LEVEL", "DEBUG")

	var buf bytes.Buffer
	logger := NewProductionLogger("registry")
	logger.SetOutput(&buf)

	logger.Debug("construction details", nil)
	if !strings.Contains(buf.String(), "construction details") {
		t.Error("DEBUG level from environment not honored")
	}
}

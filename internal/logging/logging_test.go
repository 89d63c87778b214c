package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestConfigure_JSONFormatAndLevel(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer
	configure(l, "warn", "JSON", &buf)

	l.Info("hidden")
	l.WithField("cat", CatCore).Warn("shown")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if got["msg"] != "shown" || got["cat"] != CatCore {
		t.Fatalf("unexpected entry: %v", got)
	}
}

func TestConfigure_BadLevelFallsBackToInfo(t *testing.T) {
	l := logrus.New()
	configure(l, "loud", "", &bytes.Buffer{})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", l.GetLevel())
	}
}

func TestOr_PrefersGivenLogger(t *testing.T) {
	l, hook := test.NewNullLogger()
	Or(l, CatGame).Info("hello")
	if len(hook.Entries) != 1 {
		t.Fatalf("expected entry on given logger, got %d", len(hook.Entries))
	}
	if Or(nil, CatGame) == nil {
		t.Fatal("expected category logger for nil")
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestRun_ScriptQuits(t *testing.T) {
	log, _ := test.NewNullLogger()
	dir := t.TempDir()
	var out, errOut bytes.Buffer

	code := run([]string{
		"-no-cmd-file",
		"-out-dir", dir,
		"-debug-script", "teleport 2 2; frames 5; dump state.txt; screenshot shot.png; quit",
	}, &out, &errOut, log)
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, errOut.String())
	}
	t.Log("\n" + out.String())

	if !strings.Contains(out.String(), "Stopped: quit after 8 frames (completed=false)") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
	for _, name := range []string{"state.txt", "shot.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s not written: %v", name, err)
		}
	}
}

func TestRun_FrameLimit(t *testing.T) {
	log, _ := test.NewNullLogger()
	var out bytes.Buffer
	if code := run([]string{"-no-cmd-file", "-max-frames", "30", "-verbose"}, &out, &out, log); code != 0 {
		t.Fatalf("exit=%d", code)
	}
	if !strings.Contains(out.String(), "Stopped: frame limit 30 reached") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestRun_ExitCodes(t *testing.T) {
	log, _ := test.NewNullLogger()
	var out, errOut bytes.Buffer

	if code := run([]string{"-no-cmd-file", "-map", filepath.Join(t.TempDir(), "missing.map")}, &out, &errOut, log); code != 1 {
		t.Fatalf("missing map: exit=%d", code)
	}
	if code := run([]string{"-no-cmd-file", "-debug-script-file", filepath.Join(t.TempDir(), "missing.txt")}, &out, &errOut, log); code != 1 {
		t.Fatalf("missing script: exit=%d", code)
	}
	if code := run([]string{"-screenshot", "a.png"}, &out, &errOut, log); code != 2 {
		t.Fatalf("retired flag: exit=%d", code)
	}
	if !strings.Contains(errOut.String(), "use: -debug-script") {
		t.Fatalf("missing migration hint: %s", errOut.String())
	}
}

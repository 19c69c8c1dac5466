package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"studyplan/internal/report"
	"studyplan/internal/storage"
	logx "studyplan/pkg/logx"
)

const sampleStudy = "../studyfile/testdata/sleep-study.yaml"

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTimelineSummary(t *testing.T) {
	out, stderr, code := run(t, "timeline", sampleStudy, "--log-level", "error")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	for _, want := range []string{
		"Study sleep-study (Sleep study), status DRAFT",
		"3 sessions, 10 scheduled items, 12 notifications, 12,960 total minutes",
		"Morning survey",
		"Cognition burst",
		"Exit interview",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTimelineJSON(t *testing.T) {
	out, stderr, code := run(t, "timeline", "--json", "--log-level", "error", sampleStudy)
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}
	var doc report.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, out)
	}
	if !doc.OK || doc.Study != "sleep-study" || len(doc.Timeline.Schedule) != 10 {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestTimelineRecordsRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	cfg := writeFile(t, dir, "studyplan.yaml", "logging: {level: error}\nstorage: {driver: file, path: "+dbPath+"}\n")

	if _, stderr, code := run(t, "--config", cfg, "timeline", sampleStudy); code != 0 {
		t.Fatalf("exit code %d: %s", code, stderr)
	}

	st, err := storage.Open(storage.Config{Driver: "file", Path: dbPath}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	r, ok, err := st.LastRun(context.Background(), "sleep-study")
	if err != nil || !ok {
		t.Fatalf("expected a recorded run: ok=%v err=%v", ok, err)
	}
	if r.Source != storage.SourceCLI || r.Items != 10 || r.TotalMinutes != 12960 {
		t.Fatalf("unexpected run: %+v", r)
	}
}

func TestValidate(t *testing.T) {
	out, _, code := run(t, "validate", "--log-level", "error", sampleStudy)
	if code != 0 || !strings.Contains(out, "sleep-study: ok (3 sessions)") {
		t.Fatalf("code=%d out=%q", code, out)
	}

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", `{"identifier":"bad","schedule":{"sessions":[
		{"guid":"a","occurrences":0,"timeWindows":[{"guid":"w"}]},
		{"guid":"b","timeWindows":[{"guid":"w"}]}]}}`)
	out, stderr, code := run(t, "validate", "--log-level", "error", bad)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out, "bad: a: ") || strings.Contains(out, "bad: b:") {
		t.Fatalf("unexpected validation output:\n%s", out)
	}
	if strings.Contains(stderr, "error:") {
		t.Fatalf("invalid sessions should not print a command error: %s", stderr)
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	cases := [][]string{
		{"timeline"},
		{"timeline", filepath.Join(dir, "missing.yaml")},
		{"validate", writeFile(t, dir, "broken.yaml", "identifier: [")},
		{"timeline", "--log-level", "loud", sampleStudy},
		{"--config", writeFile(t, dir, "cfg.yaml", "bogus: 1\n"), "timeline", sampleStudy},
	}
	for _, args := range cases {
		_, stderr, code := run(t, args...)
		if code != 1 || !strings.Contains(stderr, "error:") {
			t.Fatalf("%v: expected reported error, got code=%d stderr=%q", args, code, stderr)
		}
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	study := writeFile(t, dir, "pilot.json", `{"identifier":"pilot","schedule":{"sessions":[{"guid":"s","timeWindows":[{"guid":"w","expiration":"P1D"}]}]}}`)

	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	done := make(chan int, 1)
	go func() {
		done <- Execute(ctx, []string{"watch", "--log-level", "error", study}, &out, &out)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "pilot: 1 items") {
		if time.Now().After(deadline) {
			t.Fatalf("no timeline printed:\n%s", out.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exit code %d:\n%s", code, out.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

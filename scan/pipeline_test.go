package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloudeng.io/terrasync/storage"
	_ "cloudeng.io/terrasync/storage/localfs"
)

func TestExtensionOf(t *testing.T) {
	cases := []struct{ name, want string }{
		{"report.TXT", "txt"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"trailing.", ""},
		{".hidden", "hidden"},
	}
	for _, c := range cases {
		if got := extensionOf(c.name); got != c.want {
			t.Errorf("extensionOf(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestModifiedDaysClampsFutureAndZero(t *testing.T) {
	if got := modifiedDays(time.Time{}); got != 0 {
		t.Errorf("zero mtime: got %v, want 0", got)
	}
	if got := modifiedDays(time.Now().Add(time.Hour)); got != 0 {
		t.Errorf("future mtime: got %v, want 0", got)
	}
	twelveHoursAgo := time.Now().Add(-12 * time.Hour)
	got := modifiedDays(twelveHoursAgo)
	if got <= 0 || got >= 1 {
		t.Errorf("12h ago: got %v, want in (0,1)", got)
	}
}

func TestFileTypeOf(t *testing.T) {
	if fileType(storage.Entry{IsDir: true}) != "dir" {
		t.Error("expected dir")
	}
	if fileType(storage.Entry{IsDir: false}) != "file" {
		t.Error("expected file")
	}
}

type recordingBus struct {
	messages []Message
}

func (b *recordingBus) Publish(m Message) { b.messages = append(b.messages, m) }

func TestRunEndToEndLocalFlat(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.txt"), "12345678")
	mustWrite(t, filepath.Join(root, "b.log"), "123456789")
	if err := os.Mkdir(filepath.Join(root, "d"), 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(root, "d", "c.txt"), "x")

	bus := &recordingBus{}
	err := Run(context.Background(), Params{
		JobID: "test-run",
		URI:   root,
		Depth: storage.DepthUnbounded,
		Match: []string{`name like "%.txt"`},
	}, bus)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(bus.messages) == 0 || bus.messages[0].Kind != KindConfig {
		t.Fatalf("expected first message to be Config")
	}
	last := bus.messages[len(bus.messages)-1]
	if last.Kind != KindComplete {
		t.Fatalf("expected last message to be Complete")
	}

	// Every walked entry is forwarded regardless of match outcome: a.txt,
	// b.log, d, d/c.txt. Only a.txt and d/c.txt satisfy the match
	// expression.
	var all, matched []string
	for _, m := range bus.messages {
		if m.Kind != KindResult {
			continue
		}
		all = append(all, m.Result.Entry.Name)
		if m.Result.Matched {
			matched = append(matched, m.Result.Entry.Name)
		}
	}
	if len(all) != 4 {
		t.Fatalf("got %d results, want 4: %v", len(all), all)
	}
	if len(matched) != 2 {
		t.Fatalf("got %d matched results, want 2: %v", len(matched), matched)
	}
}

func mustWrite(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

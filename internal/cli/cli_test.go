package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/format"
	"taskdeck/internal/server"
	"taskdeck/internal/store"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// newBackend starts the reference server and isolates config from $HOME.
func newBackend(t *testing.T) string {
	t.Helper()
	t.Setenv("TASKDECK_CONFIG_DIR", t.TempDir())
	t.Setenv("TASKDECK_API_URL", "")
	t.Setenv("TASKDECK_FORMAT", "")

	db, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	srv, err := server.New(db, server.Config{})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: taskdeck %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key; got %v", env)
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %#v", env["data"])
	}
	return m
}

func dataList(t *testing.T, env map[string]any) []any {
	t.Helper()
	xs, ok := env["data"].([]any)
	if !ok {
		t.Fatalf("expected array data, got %#v", env["data"])
	}
	return xs
}

func TestTasks_AddListUpdateDoneRemove(t *testing.T) {
	api := newBackend(t)
	today := time.Now().Format(time.DateOnly)

	created := dataMap(t, mustRun(t, "--api", api, "tasks", "add", "Pay", "rent",
		"--priority", "high", "--due", today, "--list", "Work", "--tag", "home", "--tag", "bills",
		"--subtask", "transfer", "--subtask", "  "))
	id, _ := created["id"].(string)
	if id == "" || created["title"] != "Pay rent" || created["list"] != "work" {
		t.Fatalf("unexpected created task %#v", created)
	}
	if subs, _ := created["subtasks"].([]any); len(subs) != 1 {
		t.Fatalf("blank subtask should be dropped, got %#v", created["subtasks"])
	}

	later := time.Now().AddDate(0, 1, 0).Format(time.DateOnly)
	mustRun(t, "--api", api, "tasks", "add", "Someday idea", "--priority", "low", "--due", later)

	today1 := mustRun(t, "--api", api, "tasks", "list", "--view", "today")
	if xs := dataList(t, today1); len(xs) != 1 {
		t.Fatalf("expected one task due today, got %#v", xs)
	}
	all := mustRun(t, "--api", api, "tasks", "list", "--sort", "priority", "--order", "desc")
	xs := dataList(t, all)
	if len(xs) != 2 || xs[0].(map[string]any)["id"] != id {
		t.Fatalf("high priority task should sort first, got %#v", xs)
	}
	if meta, _ := all["meta"].(map[string]any); meta["total"] != float64(2) {
		t.Fatalf("unexpected meta %#v", all["meta"])
	}
	tagged := mustRun(t, "--api", api, "tasks", "list", "--tag", "bills")
	if xs := dataList(t, tagged); len(xs) != 1 {
		t.Fatalf("tag filter: got %#v", xs)
	}

	upd := mustRun(t, "--api", api, "tasks", "update", id, "--title", "Pay rent", "--list", "")
	if changed, _ := upd["meta"].(map[string]any)["changed"].([]any); len(changed) != 1 || changed[0] != "list" {
		t.Fatalf("only list should change, got %#v", upd["meta"])
	}
	if _, ok := dataMap(t, upd)["list"]; ok {
		t.Fatalf("list should be cleared, got %#v", upd["data"])
	}

	done := dataMap(t, mustRun(t, "--api", api, "tasks", "done", id))
	if done["status"] != "done" {
		t.Fatalf("expected done, got %#v", done)
	}
	reopened := dataMap(t, mustRun(t, "--api", api, "tasks", "done", id, "--undo"))
	if reopened["status"] != "todo" {
		t.Fatalf("expected todo, got %#v", reopened)
	}

	rm := dataMap(t, mustRun(t, "--api", api, "tasks", "rm", id))
	if rm["id"] != id || rm["kind"] != "task" {
		t.Fatalf("unexpected rm output %#v", rm)
	}
	_, _, err := runCLI(t, []string{"--api", api, "tasks", "show", id})
	if err == nil || !strings.Contains(err.Error(), "Task with id "+id+" not found") {
		t.Fatalf("expected server not-found detail, got %v", err)
	}
}

func TestTasks_AddValidatesLocally(t *testing.T) {
	api := newBackend(t)

	_, _, err := runCLI(t, []string{"--api", api, "tasks", "add", "   "})
	if err == nil || err.Error() != "Task title is required" {
		t.Fatalf("expected title error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"--api", api, "tasks", "add", "x", "--due", "2024-13-01"})
	if err == nil || err.Error() != "Due date must be a valid YYYY-MM-DD date" {
		t.Fatalf("expected due error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"--api", api, "tasks", "add", "x", "--priority", "urgent"})
	var fe invalidFlagError
	if !errors.As(err, &fe) || fe.flag != "priority" {
		t.Fatalf("expected invalid priority flag, got %v", err)
	}
	_, _, err = runCLI(t, []string{"--api", api, "tasks", "list", "--sort", "title"})
	if !errors.As(err, &fe) || fe.flag != "sort" {
		t.Fatalf("expected invalid sort flag, got %v", err)
	}
}

func TestTasks_ParseAndCounts(t *testing.T) {
	api := newBackend(t)

	parsed := dataMap(t, mustRun(t, "--api", api, "tasks", "parse", "Buy milk tomorrow high priority"))
	if parsed["title"] != "Buy milk" || parsed["priority"] != "high" {
		t.Fatalf("unexpected parse %#v", parsed)
	}
	created := dataMap(t, mustRun(t, "--api", api, "tasks", "parse", "--create", "Call mom today"))
	if created["id"] == nil || created["title"] != "Call mom" {
		t.Fatalf("unexpected created %#v", created)
	}
	mustRun(t, "--api", api, "tasks", "parse", "--create", "Buy milk tomorrow high priority")

	counts := dataMap(t, mustRun(t, "--api", api, "tasks", "counts"))
	if counts["today"] != float64(1) || counts["upcoming"] != float64(1) {
		t.Fatalf("unexpected counts %#v", counts)
	}
	lists, _ := counts["lists"].(map[string]any)
	if _, ok := lists["personal"]; !ok {
		t.Fatalf("built-in lists should be counted, got %#v", lists)
	}
}

func TestLists_AddRejectsDuplicatesAndBuiltins(t *testing.T) {
	api := newBackend(t)

	added := dataMap(t, mustRun(t, "--api", api, "lists", "add", "  Errands "))
	if added["name"] != "errands" {
		t.Fatalf("name should be normalized, got %#v", added)
	}
	_, _, err := runCLI(t, []string{"--api", api, "lists", "add", "errands"})
	if err == nil || err.Error() != "List 'errands' already exists" {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"--api", api, "lists", "rm", "work"})
	if err == nil || err.Error() != "Built-in lists cannot be created or deleted" {
		t.Fatalf("expected built-in error, got %v", err)
	}

	rows := dataList(t, mustRun(t, "--api", api, "lists"))
	if len(rows) != 4 {
		t.Fatalf("expected three built-ins plus errands, got %#v", rows)
	}
	mustRun(t, "--api", api, "lists", "rm", "errands")
	if rows := dataList(t, mustRun(t, "--api", api, "lists")); len(rows) != 3 {
		t.Fatalf("errands should be gone, got %#v", rows)
	}
}

func TestTags_ShowColors(t *testing.T) {
	api := newBackend(t)

	first := dataMap(t, mustRun(t, "--api", api, "tags", "add", "urgent"))
	if first["color"] != "#86efac" {
		t.Fatalf("first tag gets the first palette color, got %#v", first)
	}
	mustRun(t, "--api", api, "tags", "add", "Home")
	rows := dataList(t, mustRun(t, "--api", api, "tags"))
	if len(rows) != 2 {
		t.Fatalf("expected two tags, got %#v", rows)
	}
	_, _, err := runCLI(t, []string{"--api", api, "tags", "rm", "missing"})
	if err == nil {
		t.Fatalf("deleting a missing tag should fail")
	}
}

func TestTasks_TextFormat(t *testing.T) {
	api := newBackend(t)
	mustRun(t, "--api", api, "tasks", "add", "Water plants", "--tag", "home")

	stdout, stderr, err := runCLI(t, []string{"--api", api, "--format", "text", "tasks", "list"})
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, stderr)
	}
	out := string(stdout)
	for _, want := range []string{"TITLE", "Water plants", "todo", "medium", "home"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRoot_Errors(t *testing.T) {
	newBackend(t)

	_, _, err := runCLI(t, nil)
	if !errors.As(err, new(notTerminalError)) {
		t.Fatalf("expected notTerminalError without a tty, got %v", err)
	}

	_, _, err = runCLI(t, []string{"--format", "edn", "tasks", "list"})
	if !errors.As(err, new(format.UnknownFormatError)) {
		t.Fatalf("expected UnknownFormatError, got %v", err)
	}

	_, _, err = runCLI(t, []string{"--api", "http://127.0.0.1:1", "tasks", "list"})
	if err == nil || !strings.Contains(err.Error(), "Please check if backend is running.") {
		t.Fatalf("expected unreachable backend message, got %v", err)
	}
}

func TestConfig_ShowAppliesFlagsOverEnv(t *testing.T) {
	newBackend(t)
	t.Setenv("TASKDECK_API_URL", "http://env.example:9000")
	t.Setenv("TASKDECK_LOG_LEVEL", "debug")

	stdout, _, err := runCLI(t, []string{"config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(string(stdout), "api_url: http://env.example:9000") {
		t.Fatalf("env should override defaults:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"--api", "http://flag.example:1", "config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(string(stdout), "api_url: http://flag.example:1") || !strings.Contains(string(stdout), "log_level: debug") {
		t.Fatalf("flag should override env:\n%s", stdout)
	}

	path := dataMap(t, mustRun(t, "config", "path"))
	if path["exists"] != false {
		t.Fatalf("no config file yet, got %#v", path)
	}
	mustRun(t, "config", "init")
	if _, _, err := runCLI(t, []string{"config", "init"}); err == nil {
		t.Fatalf("second init without --force should fail")
	}
	mustRun(t, "config", "init", "--force")
	if path := dataMap(t, mustRun(t, "config", "path")); path["exists"] != true {
		t.Fatalf("config file should exist, got %#v", path)
	}
}

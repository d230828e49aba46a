package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"taskdeck/internal/model"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "taskdeck.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestTasks_CRUDRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	older := model.Task{
		ID: "a", Title: "older", Status: model.StatusTodo, Priority: model.PriorityLow,
		DueDate:   model.Some("2024-01-15"),
		Tags:      []string{"home"},
		CreatedAt: "2024-01-01T10:00:00Z", UpdatedAt: "2024-01-01T10:00:00Z",
	}
	newer := model.Task{
		ID: "b", Title: "newer", Status: model.StatusDone, Priority: model.PriorityHigh,
		List:      model.Some("work"),
		Subtasks:  []model.Subtask{{ID: "s1", Title: "step"}},
		CreatedAt: "2024-02-01T10:00:00Z", UpdatedAt: "2024-02-01T10:00:00Z",
	}
	for _, task := range []model.Task{older, newer} {
		if err := db.InsertTask(ctx, task); err != nil {
			t.Fatalf("insert %s: %v", task.ID, err)
		}
	}

	got, err := db.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if list, _ := got[0].List.Get(); list != "work" || len(got[0].Subtasks) != 1 {
		t.Fatalf("fields lost in round trip: %+v", got[0])
	}
	if got[1].List.Present() {
		t.Fatalf("absent list came back present")
	}

	older.Title = "renamed"
	if err := db.UpdateTask(ctx, older); err != nil {
		t.Fatalf("update: %v", err)
	}
	one, err := db.GetTask(ctx, "a")
	if err != nil || one.Title != "renamed" {
		t.Fatalf("get after update: %+v %v", one, err)
	}

	if err := db.DeleteTask(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nf NotFoundError
	if err := db.DeleteTask(ctx, "a"); !errors.As(err, &nf) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := db.GetTask(ctx, "a"); !errors.As(err, &nf) {
		t.Fatalf("expected not found on get, got %v", err)
	}
	if err := db.UpdateTask(ctx, model.Task{ID: "zzz", Title: "x"}); !errors.As(err, &nf) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestNames_DuplicateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	if err := db.InsertList(ctx, model.List{ID: "1", Name: "errands"}); err != nil {
		t.Fatalf("insert list: %v", err)
	}
	var ex ExistsError
	if err := db.InsertList(ctx, model.List{ID: "2", Name: "errands"}); !errors.As(err, &ex) {
		t.Fatalf("expected ExistsError, got %v", err)
	}

	// Tags are case-sensitive.
	if err := db.InsertTag(ctx, model.Tag{Name: "Home"}); err != nil {
		t.Fatalf("insert tag: %v", err)
	}
	if err := db.InsertTag(ctx, model.Tag{Name: "home"}); err != nil {
		t.Fatalf("insert tag differing in case: %v", err)
	}
	tags, err := db.ListTags(ctx)
	if err != nil || len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %+v %v", tags, err)
	}

	if err := db.DeleteList(ctx, "errands"); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	var nf NotFoundError
	if err := db.DeleteList(ctx, "errands"); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
	lists, _ := db.ListLists(ctx)
	if len(lists) != 0 {
		t.Fatalf("expected no lists, got %+v", lists)
	}
}

func TestNameCache_ReplaceKeepsOrder(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	if err := db.SaveNames(ctx, KindTag, []string{"zeta", "alpha", " ", "zeta", "mid"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.LoadNames(ctx, KindTag)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"zeta", "alpha", "mid"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if err := db.SaveNames(ctx, KindTag, []string{"only"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = db.LoadNames(ctx, KindTag)
	if len(got) != 1 || got[0] != "only" {
		t.Fatalf("replace did not drop old names: %v", got)
	}
	if lists, _ := db.LoadNames(ctx, KindList); len(lists) != 0 {
		t.Fatalf("kinds leaked into each other: %v", lists)
	}
}

func TestUIState_RoundTripAndDefault(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	st, err := db.LoadUIState(ctx)
	if err != nil || st.Version != 1 || st.View != "" {
		t.Fatalf("expected default state, got %+v %v", st, err)
	}
	if err := db.SaveUIState(ctx, UIState{View: "upcoming", SortBy: "priority", Order: "desc"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err = db.LoadUIState(ctx)
	if err != nil || st.View != "upcoming" || st.SortBy != "priority" || st.Version != 1 {
		t.Fatalf("unexpected state %+v %v", st, err)
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	defer db.Close()
	if n, err := db.CountTasks(context.Background()); err != nil || n != 0 {
		t.Fatalf("expected empty db, got %d %v", n, err)
	}
}

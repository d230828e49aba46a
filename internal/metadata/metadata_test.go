package metadata

import (
	"context"
	"errors"
	"slices"
	"testing"

	"taskdeck/internal/api"
	"taskdeck/internal/model"
	"taskdeck/internal/store"
)

type fakeBackend struct {
	lists   []string
	tags    []string
	down    bool
	creates int
}

func (f *fakeBackend) ListLists(context.Context) ([]model.List, error) {
	if f.down {
		return nil, api.ErrNetwork
	}
	out := []model.List{}
	for _, n := range f.lists {
		out = append(out, model.List{Name: n})
	}
	return out, nil
}

func (f *fakeBackend) ListTags(context.Context) ([]model.Tag, error) {
	if f.down {
		return nil, api.ErrNetwork
	}
	out := []model.Tag{}
	for _, n := range f.tags {
		out = append(out, model.Tag{Name: n})
	}
	return out, nil
}

func (f *fakeBackend) CreateList(_ context.Context, name string) (model.List, error) {
	f.creates++
	if f.down {
		return model.List{}, api.ErrNetwork
	}
	if slices.Contains(f.lists, name) {
		return model.List{}, api.DuplicateError{Kind: "List", Name: name, Detail: "List '" + name + "' already exists"}
	}
	f.lists = append(f.lists, name)
	return model.List{Name: name}, nil
}

func (f *fakeBackend) DeleteList(_ context.Context, name string) error {
	i := slices.Index(f.lists, name)
	if i < 0 {
		return api.NotFoundError{Kind: "List", ID: name}
	}
	f.lists = slices.Delete(f.lists, i, i+1)
	return nil
}

func (f *fakeBackend) CreateTag(_ context.Context, name string) (model.Tag, error) {
	f.creates++
	f.tags = append(f.tags, name)
	return model.Tag{Name: name}, nil
}

func (f *fakeBackend) DeleteTag(_ context.Context, name string) error {
	f.tags = slices.DeleteFunc(f.tags, func(s string) bool { return s == name })
	return nil
}

func TestRefresh_SeparatesBuiltinLists(t *testing.T) {
	b := &fakeBackend{lists: []string{"work", "Errands", "reading"}, tags: []string{"home"}}
	c := New(b)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := c.CustomLists(); !slices.Equal(got, []string{"errands", "reading"}) {
		t.Fatalf("custom lists = %v", got)
	}
	if got := c.AllLists(); !slices.Equal(got, []string{"personal", "work", "list1", "errands", "reading"}) {
		t.Fatalf("all lists = %v", got)
	}
	if !c.IsKnownList("work") || !c.IsKnownList("ERRANDS") {
		t.Fatalf("builtin and custom lists should both be assignable")
	}
}

func TestCreateList_LocalValidation(t *testing.T) {
	b := &fakeBackend{lists: []string{"errands"}}
	c := New(b)
	_ = c.Refresh(context.Background())

	cases := []struct {
		name string
		want error
	}{
		{"   ", ErrEmptyName},
		{"Work", ErrBuiltinList},
		{"today", ErrReservedName},
		{"errands", api.ErrDuplicate},
	}
	for _, tc := range cases {
		if _, err := c.CreateList(context.Background(), tc.name); !errors.Is(err, tc.want) {
			t.Fatalf("CreateList(%q) = %v, want %v", tc.name, err, tc.want)
		}
	}
	if b.creates != 0 {
		t.Fatalf("local rejections must not reach the backend")
	}

	name, err := c.CreateList(context.Background(), "  Reading ")
	if err != nil || name != "reading" {
		t.Fatalf("create: %q %v", name, err)
	}
	if !slices.Contains(c.CustomLists(), "reading") {
		t.Fatalf("new list not visible after refresh")
	}
}

func TestCreateList_DuplicateDistinctFromNetwork(t *testing.T) {
	b := &fakeBackend{lists: []string{"errands"}}
	c := New(b)
	// Not refreshed: the duplicate is only detected by the backend.
	_, err := c.CreateList(context.Background(), "errands")
	if !errors.Is(err, api.ErrDuplicate) || errors.Is(err, api.ErrNetwork) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	b.down = true
	_, err = c.CreateList(context.Background(), "other")
	if !errors.Is(err, api.ErrNetwork) || errors.Is(err, api.ErrDuplicate) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestDeleteList_RejectsBuiltin(t *testing.T) {
	c := New(&fakeBackend{})
	if err := c.DeleteList(context.Background(), "personal"); !errors.Is(err, ErrBuiltinList) {
		t.Fatalf("expected ErrBuiltinList, got %v", err)
	}
}

func TestTags_CaseSensitiveAndColored(t *testing.T) {
	b := &fakeBackend{tags: []string{"a", "b", "c", "d", "e", "f"}}
	c := New(b)
	_ = c.Refresh(context.Background())

	if got := c.TagColor("a"); got != DefaultPalette[0] {
		t.Fatalf("color a = %q", got)
	}
	if got := c.TagColor("f"); got != DefaultPalette[0] {
		t.Fatalf("palette should cycle, color f = %q", got)
	}
	if got := c.TagColor("missing"); got != "" {
		t.Fatalf("unknown tag color = %q", got)
	}

	if _, err := c.CreateTag(context.Background(), "A"); err != nil {
		t.Fatalf("tags differing in case are distinct: %v", err)
	}
	if _, err := c.CreateTag(context.Background(), "A"); !errors.Is(err, api.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestRefresh_FallsBackToLocalCache(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	b := &fakeBackend{lists: []string{"errands"}, tags: []string{"home", "urgent"}}
	online := New(b, WithFallback(db))
	if err := online.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	b.down = true
	offline := New(b, WithFallback(db))
	err = offline.Refresh(ctx)
	if !errors.Is(err, api.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !offline.Degraded() {
		t.Fatalf("expected degraded mode")
	}
	if got := offline.CustomLists(); !slices.Equal(got, []string{"errands"}) {
		t.Fatalf("fallback lists = %v", got)
	}
	if got := offline.Tags(); !slices.Equal(got, []string{"home", "urgent"}) {
		t.Fatalf("fallback tags = %v", got)
	}
	if got := offline.AllLists(); len(got) != 4 {
		t.Fatalf("builtins must stay available offline: %v", got)
	}
}

func TestMutations_RefusedWhileDegraded(t *testing.T) {
	ctx := context.Background()
	b := &fakeBackend{lists: []string{"errands"}, tags: []string{"home"}, down: true}
	c := New(b)
	_ = c.Refresh(ctx)
	if !c.Degraded() {
		t.Fatalf("expected degraded mode")
	}

	if _, err := c.CreateList(ctx, "reading"); !errors.Is(err, ErrDegraded) {
		t.Fatalf("CreateList = %v, want ErrDegraded", err)
	}
	if _, err := c.CreateTag(ctx, "work"); !errors.Is(err, ErrDegraded) {
		t.Fatalf("CreateTag = %v, want ErrDegraded", err)
	}
	if err := c.DeleteList(ctx, "errands"); !errors.Is(err, ErrDegraded) {
		t.Fatalf("DeleteList = %v, want ErrDegraded", err)
	}
	if err := c.DeleteTag(ctx, "home"); !errors.Is(err, ErrDegraded) {
		t.Fatalf("DeleteTag = %v, want ErrDegraded", err)
	}
	if b.creates != 0 || len(b.lists) != 1 || len(b.tags) != 1 {
		t.Fatalf("degraded cache reached the backend: creates=%d lists=%v tags=%v", b.creates, b.lists, b.tags)
	}

	// Once the backend answers again the retry clears degraded mode.
	b.down = false
	name, err := c.CreateList(ctx, "reading")
	if err != nil || name != "reading" {
		t.Fatalf("create after recovery: %q %v", name, err)
	}
	if c.Degraded() {
		t.Fatalf("still degraded after a successful refresh")
	}
}

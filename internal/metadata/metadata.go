// Package metadata caches the list and tag names offered by select controls
// and the sidebar.
//
// Refresh is explicit: on mount and after every successful create or delete.
// When the backend cannot be reached the cache serves the names it last saved
// locally and reports itself as degraded.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"taskdeck/internal/api"
	"taskdeck/internal/model"
	"taskdeck/internal/store"
	"taskdeck/internal/viewfilter"
)

var (
	ErrEmptyName    = errors.New("name is required")
	ErrBuiltinList  = errors.New("built-in lists cannot be changed")
	ErrReservedName = errors.New("name is reserved for a view")
	ErrDegraded     = errors.New("lists and tags are read-only while the backend is unreachable")
)

// DefaultPalette is cycled by tag position to pick a display color.
var DefaultPalette = []string{"#86efac", "#f9a8d4", "#fbbf24", "#60a5fa", "#ec4899"}

type Backend interface {
	ListLists(ctx context.Context) ([]model.List, error)
	CreateList(ctx context.Context, name string) (model.List, error)
	DeleteList(ctx context.Context, name string) error
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateTag(ctx context.Context, name string) (model.Tag, error)
	DeleteTag(ctx context.Context, name string) error
}

// Fallback persists names between runs. *store.DB satisfies it.
type Fallback interface {
	SaveNames(ctx context.Context, kind string, names []string) error
	LoadNames(ctx context.Context, kind string) ([]string, error)
}

type Option func(*Cache)

func WithFallback(f Fallback) Option {
	return func(c *Cache) { c.fallback = f }
}

func WithPalette(colors []string) Option {
	return func(c *Cache) {
		if len(colors) > 0 {
			c.palette = slices.Clone(colors)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

type Cache struct {
	backend  Backend
	fallback Fallback
	palette  []string
	log      *slog.Logger

	mu       sync.RWMutex
	lists    []string // custom list names, server order
	tags     []string
	loaded   bool
	degraded bool
}

func New(b Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: b,
		palette: slices.Clone(DefaultPalette),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refresh replaces lists and tags wholesale from the backend. On failure the
// cache falls back to locally saved names and the error is returned so the
// caller can tell the user.
func (c *Cache) Refresh(ctx context.Context) error {
	lists, lerr := c.backend.ListLists(ctx)
	tags, terr := c.backend.ListTags(ctx)
	if err := errors.Join(lerr, terr); err != nil {
		c.useFallback(ctx)
		return fmt.Errorf("refresh lists and tags: %w", err)
	}

	listNames := make([]string, 0, len(lists))
	for _, l := range lists {
		if n := model.NormalizeListName(l.Name); n != "" && !slices.Contains(listNames, n) {
			listNames = append(listNames, n)
		}
	}
	tagNames := make([]string, 0, len(tags))
	for _, t := range tags {
		if n := strings.TrimSpace(t.Name); n != "" && !slices.Contains(tagNames, n) {
			tagNames = append(tagNames, n)
		}
	}

	c.mu.Lock()
	c.lists = listNames
	c.tags = tagNames
	c.loaded = true
	c.degraded = false
	c.mu.Unlock()

	if c.fallback != nil {
		if err := c.fallback.SaveNames(ctx, store.KindList, listNames); err != nil {
			c.log.Warn("save list cache", "err", err)
		}
		if err := c.fallback.SaveNames(ctx, store.KindTag, tagNames); err != nil {
			c.log.Warn("save tag cache", "err", err)
		}
	}
	return nil
}

func (c *Cache) useFallback(ctx context.Context) {
	var lists, tags []string
	if c.fallback != nil {
		var err error
		if lists, err = c.fallback.LoadNames(ctx, store.KindList); err != nil {
			c.log.Warn("load list cache", "err", err)
		}
		if tags, err = c.fallback.LoadNames(ctx, store.KindTag); err != nil {
			c.log.Warn("load tag cache", "err", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.degraded = true
	// Keep whatever we already have if the local cache is empty too.
	if len(lists) > 0 || !c.loaded {
		c.lists = customOnly(lists)
	}
	if len(tags) > 0 || !c.loaded {
		c.tags = tags
	}
}

// Degraded reports whether the names come from the local cache.
func (c *Cache) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}

// AllLists returns the built-in lists followed by custom lists. Every entry
// is a valid assignment target.
func (c *Cache) AllLists() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := slices.Clone(model.BuiltinLists)
	for _, n := range c.lists {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// CustomLists excludes the built-in names.
func (c *Cache) CustomLists() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return customOnly(c.lists)
}

func (c *Cache) Tags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tags)
}

func (c *Cache) IsKnownList(name string) bool {
	return slices.Contains(c.AllLists(), model.NormalizeListName(name))
}

func (c *Cache) HasTag(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.tags, name)
}

// TagColor cycles the palette by the tag's position in the fetched list.
// Unknown tags get "".
func (c *Cache) TagColor(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := slices.Index(c.tags, name)
	if i < 0 || len(c.palette) == 0 {
		return ""
	}
	return c.palette[i%len(c.palette)]
}

// CreateList validates locally, creates on the backend and refreshes.
func (c *Cache) CreateList(ctx context.Context, name string) (string, error) {
	name = model.NormalizeListName(name)
	switch {
	case name == "":
		return "", ErrEmptyName
	case model.IsBuiltinList(name):
		return "", fmt.Errorf("%w: %s", ErrBuiltinList, name)
	case viewfilter.IsReservedView(name):
		return "", fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	if err := c.writable(ctx); err != nil {
		return "", err
	}
	if slices.Contains(c.CustomLists(), name) {
		return "", api.DuplicateError{Kind: "List", Name: name}
	}
	created, err := c.backend.CreateList(ctx, name)
	if err != nil {
		return "", err
	}
	if n := model.NormalizeListName(created.Name); n != "" {
		name = n
	}
	c.afterCreate(ctx, func() {
		if !slices.Contains(c.lists, name) {
			c.lists = append(c.lists, name)
		}
	})
	return name, nil
}

func (c *Cache) DeleteList(ctx context.Context, name string) error {
	name = model.NormalizeListName(name)
	if name == "" {
		return ErrEmptyName
	}
	if model.IsBuiltinList(name) {
		return fmt.Errorf("%w: %s", ErrBuiltinList, name)
	}
	if err := c.writable(ctx); err != nil {
		return err
	}
	if err := c.backend.DeleteList(ctx, name); err != nil {
		return err
	}
	c.afterCreate(ctx, func() {
		c.lists = slices.DeleteFunc(c.lists, func(s string) bool { return s == name })
	})
	return nil
}

// CreateTag keeps the name's case; tags are case-sensitive.
func (c *Cache) CreateTag(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if err := c.writable(ctx); err != nil {
		return "", err
	}
	if c.HasTag(name) {
		return "", api.DuplicateError{Kind: "Tag", Name: name}
	}
	created, err := c.backend.CreateTag(ctx, name)
	if err != nil {
		return "", err
	}
	if n := strings.TrimSpace(created.Name); n != "" {
		name = n
	}
	c.afterCreate(ctx, func() {
		if !slices.Contains(c.tags, name) {
			c.tags = append(c.tags, name)
		}
	})
	return name, nil
}

func (c *Cache) DeleteTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := c.writable(ctx); err != nil {
		return err
	}
	if err := c.backend.DeleteTag(ctx, name); err != nil {
		return err
	}
	c.afterCreate(ctx, func() {
		c.tags = slices.DeleteFunc(c.tags, func(s string) bool { return s == name })
	})
	return nil
}

// writable refuses mutations while names come from the local cache. A
// degraded cache retries the backend once first.
func (c *Cache) writable(ctx context.Context) error {
	if !c.Degraded() {
		return nil
	}
	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDegraded, err)
	}
	return nil
}

// afterCreate refreshes after a successful mutation. If the refresh itself
// fails, patch applies the mutation locally so the new name is still offered.
func (c *Cache) afterCreate(ctx context.Context, patch func()) {
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn("refresh after mutation", "err", err)
		c.mu.Lock()
		patch()
		c.mu.Unlock()
	}
}

func customOnly(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = model.NormalizeListName(n)
		if n == "" || model.IsBuiltinList(n) || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

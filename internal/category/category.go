// Package category is the user-extensible registry of labels applied to
// time entries.
package category

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sadopc/timetag/internal/entry"
)

// StorageKey is the durable key holding the serialized registry.
const StorageKey = "categories"

// Labels shown for references that cannot be resolved to a category.
const (
	UncategorizedLabel = "No Category"
	OrphanLabel        = "Unknown category"
)

var (
	ErrDuplicateName = errors.New("category name already exists")
	ErrEmptyName     = errors.New("category name is empty")
	ErrNotFound      = errors.New("category not found")
)

type Category struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Icon        string `json:"icon"`
}

// Ref returns the entry-side reference to c.
func (c Category) Ref() entry.CategoryRef {
	return entry.Known(c.ID)
}

type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Defaults are seeded on first run. Their ids derive from the name, so a
// fallback after corrupt storage yields the same ids on every start.
func Defaults() []Category {
	return []Category{
		{ID: defaultID("Work"), DisplayName: "Work", Icon: "briefcase"},
		{ID: defaultID("Study"), DisplayName: "Study", Icon: "book"},
		{ID: defaultID("Personal"), DisplayName: "Personal", Icon: "user"},
	}
}

func defaultID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("timetag.category."+name)).String()
}

// Registry holds the category list. Mutations persist before they are
// visible to readers.
type Registry struct {
	mu   sync.RWMutex
	kv   KV
	log  zerolog.Logger
	cats []Category
}

// Load builds the registry from durable storage. A missing payload seeds
// and persists the defaults; a malformed one falls back to the defaults
// without overwriting what is stored.
func Load(kv KV, log zerolog.Logger) (*Registry, error) {
	r := &Registry{kv: kv, log: log.With().Str("component", "categories").Logger()}

	payload, ok, err := kv.Get(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if !ok {
		r.cats = Defaults()
		if err := r.flush(r.cats); err != nil {
			return nil, err
		}
		r.log.Debug().Int("categories", len(r.cats)).Msg("seeded default categories")
		return r, nil
	}

	var cats []Category
	if err := json.Unmarshal([]byte(payload), &cats); err != nil || !wellFormed(cats) {
		r.log.Warn().Err(err).Msg("stored categories are malformed, using defaults")
		r.cats = Defaults()
		return r, nil
	}
	r.cats = cats
	return r, nil
}

func wellFormed(cats []Category) bool {
	seenIDs := make(map[string]bool, len(cats))
	seenNames := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.ID == "" || c.DisplayName == "" || seenIDs[c.ID] || seenNames[c.DisplayName] {
			return false
		}
		seenIDs[c.ID] = true
		seenNames[c.DisplayName] = true
	}
	return true
}

// List returns a copy of the categories in registry order.
func (r *Registry) List() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, len(r.cats))
	copy(out, r.cats)
	return out
}

// Add creates a category with a fresh id. Names are unique, case-sensitive.
func (r *Registry) Add(name, icon string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cats {
		if c.DisplayName == name {
			return Category{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}

	c := Category{ID: uuid.NewString(), DisplayName: name, Icon: strings.TrimSpace(icon)}
	next := append(append([]Category(nil), r.cats...), c)
	if err := r.flush(next); err != nil {
		return Category{}, err
	}
	r.cats = next
	r.log.Info().Str("id", c.ID).Str("name", name).Msg("category added")
	return c, nil
}

// Remove deletes the category with id. Entries that reference it keep
// the reference and render with OrphanLabel.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, c := range r.cats {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	next := make([]Category, 0, len(r.cats)-1)
	next = append(next, r.cats[:idx]...)
	next = append(next, r.cats[idx+1:]...)
	if err := r.flush(next); err != nil {
		return err
	}
	r.cats = next
	r.log.Info().Str("id", id).Msg("category removed")
	return nil
}

// Lookup finds a category by id.
func (r *Registry) Lookup(id string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cats {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Resolve finds a category by display name first, then by id.
func (r *Registry) Resolve(nameOrID string) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cats {
		if c.DisplayName == nameOrID {
			return c, nil
		}
	}
	for _, c := range r.cats {
		if c.ID == nameOrID {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrNotFound, nameOrID)
}

// Label renders ref for display, with fallbacks for uncategorized and
// orphaned references.
func (r *Registry) Label(ref entry.CategoryRef) string {
	id, ok := ref.ID()
	if !ok {
		return UncategorizedLabel
	}
	if c, found := r.Lookup(id); found {
		return c.DisplayName
	}
	return OrphanLabel
}

func (r *Registry) flush(cats []Category) error {
	if cats == nil {
		cats = []Category{}
	}
	data, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}
	if err := r.kv.Set(StorageKey, string(data)); err != nil {
		r.log.Error().Err(err).Msg("persisting categories failed")
		return fmt.Errorf("%w: write categories: %v", entry.ErrPersistence, err)
	}
	return nil
}

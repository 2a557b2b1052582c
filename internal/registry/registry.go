// Package registry models the runtime table that maps each published
// script's file name to the composition id it registered.
//
// Published scripts write into a shared FILE_TO_ID object when a host page
// loads them. Table is the explicit, owned form of that object for tools
// that need to reason about a set of published assets.
package registry

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Entry is one registration.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// Collision is a composition id registered by more than one file, which
// happens when a published script is copied instead of re-exported.
type Collision struct {
	ID    string   `json:"id" yaml:"id"`
	Names []string `json:"names" yaml:"names"`
}

// Table maps file names to composition ids. The zero value is empty and
// ready to use. Not safe for concurrent use.
type Table struct {
	ids map[string]string
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// Register records name -> id. Registering the same pair again is a no-op;
// registering name with a different id fails.
func (t *Table) Register(name, id string) error {
	if t.ids == nil {
		t.ids = make(map[string]string)
	}
	if prev, ok := t.ids[name]; ok && prev != id {
		return fmt.Errorf("registry: %q already registered with id %s, got %s", name, prev, id)
	}
	t.ids[name] = id
	return nil
}

// Lookup returns the composition id registered for name.
func (t *Table) Lookup(name string) (string, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// Len returns the number of registered names.
func (t *Table) Len() int {
	return len(t.ids)
}

// Names returns the registered names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.ids))
	for n := range t.ids {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns every registration sorted by name.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.ids))
	for _, n := range t.Names() {
		entries = append(entries, Entry{Name: n, ID: t.ids[n]})
	}
	return entries
}

// Collisions returns ids shared by several names, sorted by id, each with
// its names sorted.
func (t *Table) Collisions() []Collision {
	byID := make(map[string][]string)
	for _, n := range t.Names() {
		id := t.ids[n]
		byID[id] = append(byID[id], n)
	}

	out := []Collision{}
	for id, names := range byID {
		if len(names) > 1 {
			out = append(out, Collision{ID: id, Names: names})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var (
	registrationRe = regexp.MustCompile(`FILE_TO_ID\[("(?:[^"\\]|\\.)*")\] = lib\.properties\.id;`)
	propertyIDRe   = regexp.MustCompile(`(?m)^\s*id: ("(?:[^"\\]|\\.)*"),?\s*$`)
)

// Scan extracts the registration a published script performs: the file
// name it registers and the composition id in its library properties.
// A script force-published more than once carries several registrations,
// and a concatenated bundle several property ids. The last of each wins, as
// it does at runtime.
func Scan(text string) (Entry, bool) {
	regs := registrationRe.FindAllStringSubmatch(text, -1)
	props := propertyIDRe.FindAllStringSubmatch(text, -1)
	if len(regs) == 0 || len(props) == 0 {
		return Entry{}, false
	}
	reg, prop := regs[len(regs)-1], props[len(props)-1]
	name, err := strconv.Unquote(reg[1])
	if err != nil {
		return Entry{}, false
	}
	id, err := strconv.Unquote(prop[1])
	if err != nil {
		return Entry{}, false
	}
	return Entry{Name: name, ID: id}, true
}

// LoadDir scans the .js files directly inside dir and registers every
// published one. Files without a registration are skipped.
func LoadDir(fs billy.Filesystem, dir string) (*Table, error) {
	infos, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: read dir %s: %w", dir, err)
	}

	t := New()
	for _, fi := range infos {
		if fi.IsDir() || filepath.Ext(fi.Name()) != ".js" {
			continue
		}
		path := filepath.Join(dir, fi.Name())
		data, err := util.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("registry: read %s: %w", path, err)
		}
		entry, ok := Scan(string(data))
		if !ok {
			continue
		}
		if err := t.Register(entry.Name, entry.ID); err != nil {
			return nil, fmt.Errorf("registry: %s: %w", path, err)
		}
	}
	return t, nil
}

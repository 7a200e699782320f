// Package seen remembers which published forms each user has already been
// shown, so listings can flag the new ones.
package seen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a YAML file of form ids keyed by user email. Every change reads
// the file, applies itself and writes it back whole, so concurrent processes
// resolve as last write wins.
type Store struct {
	path string
	mu   sync.Mutex
}

type document struct {
	Users map[string][]int `yaml:"users"`
}

func Open(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is seen.yaml in the recruit directory of the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "recruit", "seen.yaml"), nil
}

func key(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}

func (s *Store) load() (document, error) {
	doc := document{Users: map[string][]int{}}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read seen forms: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse seen forms: %w", err)
	}
	if doc.Users == nil {
		doc.Users = map[string][]int{}
	}
	return doc, nil
}

func (s *Store) save(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create seen forms directory: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal seen forms: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".seen-*.yaml")
	if err != nil {
		return fmt.Errorf("write seen forms: %w", err)
	}
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), s.path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write seen forms: %w", err)
	}
	return nil
}

// Seen returns the form ids user has been shown.
func (s *Store) Seen(user string) (map[int]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := map[int]bool{}
	for _, id := range doc.Users[key(user)] {
		out[id] = true
	}
	return out, nil
}

// Mark adds formIDs to the forms user has been shown.
func (s *Store) Mark(user string, formIDs ...int) error {
	if len(formIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	k := key(user)
	set := map[int]bool{}
	for _, id := range doc.Users[k] {
		set[id] = true
	}
	for _, id := range formIDs {
		set[id] = true
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	doc.Users[k] = ids

	return s.save(doc)
}

// Unseen filters formIDs down to those user has not been shown, keeping
// their order.
func (s *Store) Unseen(user string, formIDs []int) ([]int, error) {
	seen, err := s.Seen(user)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, id := range formIDs {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

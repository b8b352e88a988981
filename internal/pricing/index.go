package pricing

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// IndexEntry is one item of the catalog index.
type IndexEntry struct {
	ID   string
	Name string
	// MaxLevel is the highest reinforcement level the item supports; 0 when
	// the index does not know.
	MaxLevel int
}

// Index resolves item names to catalog ids.
type Index struct {
	byName map[string]IndexEntry
	byID   map[string]IndexEntry
}

// ParseIndex reads the items_index.json layout:
//
//	{"items": [{"id": "1004422", "name": "...", "max_star": 22}]}
func ParseIndex(data []byte) (*Index, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("item index: invalid json")
	}
	idx := &Index{byName: map[string]IndexEntry{}, byID: map[string]IndexEntry{}}
	gjson.GetBytes(data, "items").ForEach(func(_, it gjson.Result) bool {
		e := IndexEntry{
			ID:       strings.TrimSpace(it.Get("id").String()),
			Name:     strings.TrimSpace(it.Get("name").String()),
			MaxLevel: int(it.Get("max_star").Int()),
		}
		if e.ID == "" || e.Name == "" {
			return true
		}
		idx.byName[strings.ToLower(e.Name)] = e
		idx.byID[e.ID] = e
		return true
	})
	return idx, nil
}

// LoadIndex reads an index file. A missing file yields an empty index.
func LoadIndex(path string) (*Index, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{byName: map[string]IndexEntry{}, byID: map[string]IndexEntry{}}, nil
		}
		return nil, err
	}
	return ParseIndex(b)
}

// Len is the number of indexed items.
func (idx *Index) Len() int { return len(idx.byID) }

// Lookup finds an item by name (case-insensitive) when byName is set,
// otherwise by id.
func (idx *Index) Lookup(token string, byName bool) (IndexEntry, bool) {
	token = strings.TrimSpace(token)
	if byName {
		e, ok := idx.byName[strings.ToLower(token)]
		return e, ok
	}
	e, ok := idx.byID[token]
	return e, ok
}

// Resolve returns the catalog id for token. Ids not in the index pass
// through unchanged; unknown names are an error.
func (idx *Index) Resolve(token string, byName bool) (IndexEntry, error) {
	if e, ok := idx.Lookup(token, byName); ok {
		return e, nil
	}
	if byName {
		return IndexEntry{}, fmt.Errorf("item name not in index: %q", token)
	}
	return IndexEntry{ID: strings.TrimSpace(token)}, nil
}

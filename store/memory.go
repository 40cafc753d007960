package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Memory is a map-backed store. It seeds the static fallback datasets
// and stands in for Firestore in tests. GetAll preserves insertion
// order so ranking tie-breaks stay stable.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]map[string]Document
	order map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		data:  make(map[string]map[string]Document),
		order: make(map[string][]string),
	}
}

// LoadStatic builds a Memory store seeded from the JSON datasets in
// dir: hospitals.json and ambulances.json, each an array of documents
// in the same shape the live store uses.
func LoadStatic(dir string) (*Memory, error) {
	m := NewMemory()
	seeds := map[string]string{
		CollectionHospitals:  "hospitals.json",
		CollectionAmbulances: "ambulances.json",
	}
	for collection, file := range seeds {
		if err := m.seedFile(collection, filepath.Join(dir, file)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Memory) seedFile(collection, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading static dataset %s: %w", path, err)
	}
	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("parsing static dataset %s: %w", path, err)
	}
	ctx := context.Background()
	for i, doc := range docs {
		id := doc.ID()
		if id == "" {
			id = fmt.Sprintf("%s-%d", collection, i)
		}
		if err := m.Set(ctx, collection, id, doc); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) GetAll(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.order[collection]
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, cloneDoc(m.data[collection][id]))
	}
	return docs, nil
}

func (m *Memory) GetByID(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *Memory) Set(_ context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Document)
	}
	existing, present := m.data[collection][id]
	merged := cloneDoc(doc)
	if present {
		for k, v := range merged {
			existing[k] = v
		}
		existing["id"] = id
		return nil
	}
	merged["id"] = id
	m.data[collection][id] = merged
	m.order[collection] = append(m.order[collection], id)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *Memory) Append(_ context.Context, collection, id, field string, values ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	list, _ := doc[field].([]interface{})
	doc[field] = append(list, values...)
	return nil
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

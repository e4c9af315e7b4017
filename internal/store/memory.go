package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store for local development and tests. Identifiers
// are ObjectID hex strings so it accepts and rejects the same ids as Mongo.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]map[string]any
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

func (m *Memory) collection(name string) *memCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]any)}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter Filter, out any) error {
	if err := checkMemoryID(filter.ID); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	for _, id := range c.order {
		if doc := c.docs[id]; memMatch(id, doc, filter) {
			return remarshal(memView(id, doc), out)
		}
	}
	return ErrNotFound
}

func (m *Memory) FindMany(ctx context.Context, collection string, filter Filter, out any) error {
	if err := checkMemoryID(filter.ID); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := []map[string]any{}
	c, ok := m.collections[collection]
	if !ok {
		return remarshal(docs, out)
	}
	for _, id := range c.order {
		if doc := c.docs[id]; memMatch(id, doc, filter) {
			docs = append(docs, memView(id, doc))
		}
	}
	return remarshal(docs, out)
}

func (m *Memory) InsertOne(ctx context.Context, collection string, doc any) (InsertResult, error) {
	fields := map[string]any{}
	if err := remarshal(doc, &fields); err != nil {
		return InsertResult{}, err
	}
	delete(fields, "_id")

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if field, ok := uniqueFields[collection]; ok {
		if value, present := fields[field]; present {
			for _, existing := range c.docs {
				if reflect.DeepEqual(existing[field], value) {
					return InsertResult{}, fmt.Errorf("inserting %s document: %w", collection, ErrDuplicateKey)
				}
			}
		}
	}

	id := primitive.NewObjectID().Hex()
	c.docs[id] = fields
	c.order = append(c.order, id)
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (m *Memory) UpdateOne(ctx context.Context, collection, id string, patch map[string]any, mode UpdateMode) (UpdateResult, error) {
	if err := checkMemoryID(id); err != nil {
		return UpdateResult{}, err
	}
	values := map[string]any{}
	if err := remarshal(patch, &values); err != nil {
		return UpdateResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collection(collection).docs[id]
	if !ok {
		return UpdateResult{}, nil
	}

	res := UpdateResult{Matched: 1}
	switch mode {
	case ReplaceFields:
		for field, value := range values {
			if old, present := doc[field]; !present || !reflect.DeepEqual(old, value) {
				res.Modified = 1
			}
			doc[field] = value
		}
	case AppendToArray:
		for field, value := range values {
			arr, _ := doc[field].([]any)
			doc[field] = append(arr, value)
		}
		res.Modified = 1
	default:
		return UpdateResult{}, fmt.Errorf("unsupported update mode %d", mode)
	}
	return res, nil
}

func (m *Memory) DeleteOne(ctx context.Context, collection, id string) (int64, error) {
	if err := checkMemoryID(id); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close(ctx context.Context) error { return nil }

func checkMemoryID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func memView(id string, doc map[string]any) map[string]any {
	view := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		view[k] = v
	}
	view["_id"] = id
	return view
}

func memMatch(id string, doc map[string]any, f Filter) bool {
	if f.ID != "" && f.ID != id {
		return false
	}
	for field, want := range f.Equal {
		got, ok := doc[field]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	if f.Search != nil && f.Search.Term != "" {
		term := strings.ToLower(f.Search.Term)
		for _, field := range f.Search.Fields {
			if s, ok := doc[field].(string); ok && strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
		return false
	}
	return true
}

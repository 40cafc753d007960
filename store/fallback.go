package store

import (
	"context"
	"log"
)

// Fallback wraps a primary store with a static dataset. Reads fall
// through to the static data when the primary errors or comes back
// empty; the substitution is silent to callers beyond a log line, and
// the item shape is identical. Writes that fail against the primary
// land in the static store so mission progress is never dropped.
type Fallback struct {
	primary Store
	static  *Memory
}

// NewFallback builds the wrapper. primary may be nil (no live store
// configured), in which case everything runs against the static data.
func NewFallback(primary Store, static *Memory) *Fallback {
	if static == nil {
		static = NewMemory()
	}
	return &Fallback{primary: primary, static: static}
}

func (f *Fallback) GetAll(ctx context.Context, collection string) ([]Document, error) {
	if f.primary != nil {
		docs, err := f.primary.GetAll(ctx, collection)
		if err == nil && len(docs) > 0 {
			return docs, nil
		}
		if err != nil {
			log.Printf("store: primary GetAll(%s) failed, using static data: %v", collection, err)
		}
	}
	return f.static.GetAll(ctx, collection)
}

func (f *Fallback) GetByID(ctx context.Context, collection, id string) (Document, error) {
	if f.primary != nil {
		doc, err := f.primary.GetByID(ctx, collection, id)
		if err == nil {
			return doc, nil
		}
		if err != ErrNotFound {
			log.Printf("store: primary GetByID(%s/%s) failed, using static data: %v", collection, id, err)
		}
	}
	return f.static.GetByID(ctx, collection, id)
}

func (f *Fallback) Set(ctx context.Context, collection, id string, doc Document) error {
	if f.primary != nil {
		if err := f.primary.Set(ctx, collection, id, doc); err != nil {
			log.Printf("store: primary Set(%s/%s) failed, keeping locally: %v", collection, id, err)
		}
	}
	return f.static.Set(ctx, collection, id, doc)
}

func (f *Fallback) Update(ctx context.Context, collection, id string, fields Document) error {
	if f.primary != nil {
		if err := f.primary.Update(ctx, collection, id, fields); err != nil && err != ErrNotFound {
			log.Printf("store: primary Update(%s/%s) failed, keeping locally: %v", collection, id, err)
		}
	}
	if err := f.static.Update(ctx, collection, id, fields); err == ErrNotFound {
		return f.static.Set(ctx, collection, id, fields)
	} else if err != nil {
		return err
	}
	return nil
}

func (f *Fallback) Append(ctx context.Context, collection, id, field string, values ...interface{}) error {
	if f.primary != nil {
		if err := f.primary.Append(ctx, collection, id, field, values...); err != nil && err != ErrNotFound {
			log.Printf("store: primary Append(%s/%s.%s) failed, keeping locally: %v", collection, id, field, err)
		}
	}
	if err := f.static.Append(ctx, collection, id, field, values...); err == ErrNotFound {
		doc := Document{field: values}
		return f.static.Set(ctx, collection, id, doc)
	} else if err != nil {
		return err
	}
	return nil
}

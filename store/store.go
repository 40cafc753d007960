package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-medalert/types"
)

// Collection names used by the dispatch engine.
const (
	CollectionAlerts     = "alerts"
	CollectionHospitals  = "hospitals"
	CollectionAmbulances = "ambulances"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one stored record. The "id" key is merged in on reads.
type Document map[string]interface{}

// ID returns the document id, if present.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Store is the document-store contract the dispatch engine needs:
// get-all / get-by-id / set / partial update / array append, with
// last-write-wins semantics.
type Store interface {
	GetAll(ctx context.Context, collection string) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	Update(ctx context.Context, collection, id string, fields Document) error
	Append(ctx context.Context, collection, id, field string, values ...interface{}) error
}

// DecodeFacility converts a stored hospital document into the domain type.
func DecodeFacility(doc Document) (types.Facility, error) {
	var f types.Facility
	if err := decodeInto(doc, &f); err != nil {
		return types.Facility{}, fmt.Errorf("decode facility %q: %w", doc.ID(), err)
	}
	return f, nil
}

// DecodeFleetUnit converts a stored ambulance document into the domain type.
func DecodeFleetUnit(doc Document) (types.FleetUnit, error) {
	var u types.FleetUnit
	if err := decodeInto(doc, &u); err != nil {
		return types.FleetUnit{}, fmt.Errorf("decode fleet unit %q: %w", doc.ID(), err)
	}
	if u.Class == "" {
		u.Class = types.ClassStandard
	}
	return u, nil
}

// EncodeDoc converts a domain value into a Document for writes.
func EncodeDoc(v interface{}) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeInto(doc Document, v interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

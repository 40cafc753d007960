package store

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore backs the document store with Cloud Firestore via the
// Firebase Admin SDK. The handle is constructed once by the composition
// root and injected, never shared through package globals.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore initializes a Firestore-backed store from base64-encoded
// service-account credentials.
func NewFirestore(ctx context.Context, encodedCreds string) (*Firestore, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Firestore credentials: %w", err)
	}

	opt := option.WithCredentialsJSON(creds)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client.
func (s *Firestore) Close() error {
	return s.client.Close()
}

func (s *Firestore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating %s: %w", collection, err)
		}
		doc := Document(snap.Data())
		doc["id"] = snap.Ref.ID
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Firestore) GetByID(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	doc := Document(snap.Data())
	doc["id"] = snap.Ref.ID
	return doc, nil
}

func (s *Firestore) Set(ctx context.Context, collection, id string, doc Document) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]interface{}(doc), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("setting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Firestore) Update(ctx context.Context, collection, id string, fields Document) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Firestore) Append(ctx context.Context, collection, id, field string, values ...interface{}) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.ArrayUnion(values...)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("appending to %s/%s.%s: %w", collection, id, field, err)
	}
	return nil
}

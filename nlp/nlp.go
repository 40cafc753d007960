// Package nlp extracts address and place-name entities from free text
// via the Cloud Natural Language API. It feeds the geocode cascade when
// an alert's literal address field cannot be resolved: patients often
// bury the usable location inside the symptom description.
package nlp

import (
	"context"
	"encoding/base64"
	"fmt"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"google.golang.org/api/option"
)

// Extractor wraps an injected language client.
type Extractor struct {
	client *language.Client
}

// NewExtractor creates a language client from base64-encoded
// service-account credentials.
func NewExtractor(ctx context.Context, encodedCreds string) (*Extractor, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode language credentials: %w", err)
	}

	opt := option.WithCredentialsJSON(creds)
	client, err := language.NewClient(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create language client: %w", err)
	}
	return &Extractor{client: client}, nil
}

// Close releases the underlying client.
func (e *Extractor) Close() error {
	return e.client.Close()
}

// AddressHints returns the names of ADDRESS and LOCATION entities found
// in text, in detection order.
func (e *Extractor) AddressHints(ctx context.Context, text string) ([]string, error) {
	req := &languagepb.AnalyzeEntitiesRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{
				Content: text,
			},
			Type: languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	}

	resp, err := e.client.AnalyzeEntities(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeEntities error: %w", err)
	}

	var hints []string
	for _, entity := range resp.Entities {
		switch entity.Type {
		case languagepb.Entity_ADDRESS, languagepb.Entity_LOCATION:
			hints = append(hints, entity.Name)
		}
	}
	return hints, nil
}

package locate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLocatorLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("successful lookup", func(t *testing.T) {
		var gotKey, gotIP string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.URL.Query().Get("api_key")
			gotIP = r.URL.Query().Get("ip_address")
			w.Write([]byte(`{"latitude": 33.5731, "longitude": -7.5898, "city": "Casablanca", "country": "Morocco"}`))
		}))
		defer server.Close()

		l := NewIPLocator("key", server.URL, nil)
		signal := l.Lookup(ctx, "196.200.0.1")
		require.NotNil(t, signal)
		require.NotNil(t, signal.Coordinate)
		assert.Equal(t, "key", gotKey)
		assert.Equal(t, "196.200.0.1", gotIP)
		assert.InDelta(t, 33.5731, signal.Coordinate.Lat, 1e-9)
		assert.Equal(t, "Casablanca, Morocco", signal.Address)
		assert.Equal(t, "ip_based", signal.Accuracy)
	})

	t.Run("no api key means no signal", func(t *testing.T) {
		l := NewIPLocator("", "", nil)
		assert.Nil(t, l.Lookup(ctx, "196.200.0.1"))
	})

	t.Run("server failure means no signal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		l := NewIPLocator("key", server.URL, nil)
		assert.Nil(t, l.Lookup(ctx, "196.200.0.1"))
	})

	t.Run("zero coordinates mean no signal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"latitude": 0, "longitude": 0}`))
		}))
		defer server.Close()

		l := NewIPLocator("key", server.URL, nil)
		assert.Nil(t, l.Lookup(ctx, "196.200.0.1"))
	})
}

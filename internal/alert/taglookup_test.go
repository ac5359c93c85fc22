package alert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTagLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("address") {
		case "0xknown":
			w.Write([]byte(`{"display_tag":"whale","twitter":"bigfish"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	lookup := NewHTTPTagLookup(srv.URL)

	tag, err := lookup.Get(context.Background(), "0xknown")
	require.NoError(t, err)
	assert.Equal(t, "whale", tag.DisplayTag)
	assert.Equal(t, "bigfish", tag.Twitter)

	tag, err = lookup.Get(context.Background(), "0xunknown")
	require.NoError(t, err, "404 means unlabeled, not an error")
	assert.Equal(t, Tag{}, tag)
}

func TestHTTPTagLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPTagLookup(srv.URL).Get(context.Background(), "0xany")
	assert.Error(t, err)
}

func TestStaticTagLookup(t *testing.T) {
	lookup := StaticTagLookup{"0xa": {DisplayTag: "fund"}}

	tag, err := lookup.Get(context.Background(), "0xa")
	require.NoError(t, err)
	assert.Equal(t, "fund", tag.DisplayTag)

	tag, err = lookup.Get(context.Background(), "0xb")
	require.NoError(t, err)
	assert.Equal(t, Tag{}, tag)
}

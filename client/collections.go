package cmrclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/robert-malhotra/go-cmr-client/pkg/umm"
)

// CollectionResult is one page of collection search results.
type CollectionResult struct {
	Collections []*umm.Collection
	// Hits is the catalog's total match count for the query, which may
	// exceed the page.
	Hits int
	// SearchAfter resumes the search at the next page when passed back
	// via WithSearchAfter. Empty when the catalog offers no marker.
	SearchAfter string
}

// CollectionService executes collection searches.
type CollectionService struct {
	client *Client
}

// Search performs a single-page collection search. Zero matches yield
// an empty result, not an error.
func (s *CollectionService) Search(ctx context.Context, params SearchParams, opts ...RequestOption) (*CollectionResult, error) {
	values, err := params.Values()
	if err != nil {
		return nil, err
	}

	data, headers, err := s.client.doRaw(ctx, http.MethodGet, "/search/collections.umm_json", values, nil, "", opts)
	if err != nil {
		return nil, err
	}

	collections, err := umm.ParseCollections(data)
	if err != nil {
		return nil, err
	}

	result := &CollectionResult{
		Collections: collections,
		SearchAfter: headers.Get("CMR-Search-After"),
	}
	if hits := headers.Get("CMR-Hits"); hits != "" {
		result.Hits, _ = strconv.Atoi(hits)
	}
	return result, nil
}

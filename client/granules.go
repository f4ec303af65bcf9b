package cmrclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/robert-malhotra/go-cmr-client/pkg/umm"
)

// GranuleResult is one page of granule search results.
type GranuleResult struct {
	Granules []*umm.Granule
	// Hits is the catalog's total match count for the query.
	Hits int
	// SearchAfter resumes the search at the next page when passed back
	// via WithSearchAfter. Empty when the catalog offers no marker.
	SearchAfter string
}

// GranuleService executes granule searches.
type GranuleService struct {
	client *Client
}

// Search performs a single-page granule search against the umm_json
// endpoint. Zero matches yield an empty result, not an error.
func (s *GranuleService) Search(ctx context.Context, params SearchParams, opts ...RequestOption) (*GranuleResult, error) {
	return s.search(ctx, "/search/granules.umm_json", params, opts)
}

// SearchLegacy queries the legacy feed endpoint. The result wrapper
// normalizes both shapes into the same descriptors.
func (s *GranuleService) SearchLegacy(ctx context.Context, params SearchParams, opts ...RequestOption) (*GranuleResult, error) {
	return s.search(ctx, "/search/granules.json", params, opts)
}

func (s *GranuleService) search(ctx context.Context, endpoint string, params SearchParams, opts []RequestOption) (*GranuleResult, error) {
	values, err := params.Values()
	if err != nil {
		return nil, err
	}

	data, headers, err := s.client.doRaw(ctx, http.MethodGet, endpoint, values, nil, "", opts)
	if err != nil {
		return nil, err
	}
	return granuleResult(data, headers)
}

// SearchWithBoundary performs a granule search constrained to an
// uploaded spatial boundary (zipped shapefile, GeoJSON or KML). The
// scalar params travel as multipart form fields alongside the file.
func (s *GranuleService) SearchWithBoundary(ctx context.Context, params SearchParams, boundary *Boundary, opts ...RequestOption) (*GranuleResult, error) {
	body, contentType, err := multipartBody(params, boundary)
	if err != nil {
		return nil, err
	}

	data, headers, err := s.client.doRaw(ctx, http.MethodPost, "/search/granules.umm_json", nil, body, contentType, opts)
	if err != nil {
		return nil, err
	}
	return granuleResult(data, headers)
}

func granuleResult(data []byte, headers http.Header) (*GranuleResult, error) {
	granules, err := umm.ParseGranules(data)
	if err != nil {
		return nil, err
	}

	result := &GranuleResult{
		Granules:    granules,
		SearchAfter: headers.Get("CMR-Search-After"),
	}
	if hits := headers.Get("CMR-Hits"); hits != "" {
		result.Hits, _ = strconv.Atoi(hits)
	}
	return result, nil
}

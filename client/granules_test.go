package cmrclient_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmrclient "github.com/robert-malhotra/go-cmr-client/client"
)

const ummGranulePage = `{
  "hits": 42,
  "took": 11,
  "items": [
    {
      "meta": {"concept-id": "G2081588885-NSIDC_ECS", "provider-id": "NSIDC_ECS"},
      "umm": {
        "GranuleUR": "ATL03_20190521210346_08290301_006_02.h5",
        "TemporalExtent": {"RangeDateTime": {"BeginningDateTime": "2019-05-21T21:03:46Z", "EndingDateTime": "2019-05-21T21:12:56Z"}},
        "CollectionReference": {"ShortName": "ATL03", "Version": "006"},
        "DataGranule": {"ArchiveAndDistributionInformation": [{"Size": 1859.4, "SizeUnit": "MB"}]},
        "RelatedUrls": [
          {"URL": "https://n5eil01u.ecs.nsidc.org/ATL03.h5", "Type": "GET DATA"},
          {"URL": "s3://nsidc-cumulus-prod/ATL03.h5", "Type": "GET DATA VIA DIRECT ACCESS"},
          {"URL": "https://n5eil01u.ecs.nsidc.org/ATL03.png", "Type": "GET RELATED VISUALIZATION"}
        ]
      }
    }
  ]
}`

func TestGranuleSearchSendsUnionOfParams(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("CMR-Hits", "42")
		w.Header().Set("CMR-Search-After", `["atl03",123]`)
		w.Write([]byte(ummGranulePage))
	})

	params := cmrclient.SearchParams{
		ShortName:     "ATL03",
		Provider:      "NSIDC_ECS",
		BoundingBox:   []float64{-134.7, 58.9, -133.9, 59.2},
		TemporalStart: "2019-05-01T00:00:00Z",
		TemporalEnd:   "2019-05-31T23:59:59Z",
		PageSize:      10,
	}
	result, err := client.Granules().Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "/search/granules.umm_json", gotPath)
	assert.Equal(t, "ATL03", gotQuery["short_name"][0])
	assert.Equal(t, "NSIDC_ECS", gotQuery["provider"][0])
	assert.Equal(t, "-134.7,58.9,-133.9,59.2", gotQuery["bounding_box"][0])
	assert.Equal(t, "2019-05-01T00:00:00Z,2019-05-31T23:59:59Z", gotQuery["temporal"][0])
	assert.Equal(t, "10", gotQuery["page_size"][0])
	assert.Len(t, gotQuery, 5)

	require.Len(t, result.Granules, 1)
	assert.Equal(t, 42, result.Hits)
	assert.Equal(t, `["atl03",123]`, result.SearchAfter)
	assert.Equal(t, "G2081588885-NSIDC_ECS", result.Granules[0].ConceptID)
}

func TestGranuleSearchLegacyEndpoint(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"feed":{"entry":[{"id":"G1-PROV","title":"one","links":[]}]}}`))
	})

	result, err := client.Granules().SearchLegacy(context.Background(), cmrclient.SearchParams{ShortName: "MOD10A1"})
	require.NoError(t, err)
	assert.Equal(t, "/search/granules.json", gotPath)
	require.Len(t, result.Granules, 1)
	assert.Equal(t, "G1-PROV", result.Granules[0].ConceptID)
}

func TestGranuleSearchWithBoundaryPostsMultipart(t *testing.T) {
	var gotMethod, gotContentType string
	var gotShortName, gotFileName, gotFileType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotShortName = r.FormValue("short_name")
		if file, header, err := r.FormFile("shapefile"); err == nil {
			file.Close()
			gotFileName = header.Filename
			gotFileType = header.Header.Get("Content-Type")
		}
		w.Write([]byte(ummGranulePage))
	})

	boundary := &cmrclient.Boundary{
		Kind:    cmrclient.BoundaryKML,
		Name:    "basin.kml",
		Content: strings.NewReader("<kml></kml>"),
	}
	result, err := client.Granules().SearchWithBoundary(context.Background(), cmrclient.SearchParams{ShortName: "ATL06"}, boundary)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
	assert.Equal(t, "ATL06", gotShortName)
	assert.Equal(t, "basin.kml", gotFileName)
	assert.Equal(t, "application/vnd.google-earth.kml+xml", gotFileType)
	require.Len(t, result.Granules, 1)
}

func TestSearchAfterRequestOption(t *testing.T) {
	var gotMarker string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMarker = r.Header.Get("CMR-Search-After")
		w.Write([]byte(`{"items":[]}`))
	})

	_, err := client.Granules().Search(context.Background(), cmrclient.SearchParams{},
		cmrclient.WithSearchAfter(`["marker"]`))
	require.NoError(t, err)
	assert.Equal(t, `["marker"]`, gotMarker)
}

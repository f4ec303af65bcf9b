package cmrclient

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchParamsValuesUnion(t *testing.T) {
	params := SearchParams{
		ShortName:     "ATL03",
		Provider:      "NSIDC_ECS",
		ConceptID:     "C1234567-NSIDC_ECS",
		BoundingBox:   []float64{-134.7, 58.9, -133.9, 59.2},
		TemporalStart: "2019-05-01T00:00:00Z",
		TemporalEnd:   "2019-05-31T23:59:59Z",
		PageSize:      25,
		PageNum:       2,
		Additional:    url.Values{"downloadable": {"true"}},
	}

	values, err := params.Values()
	require.NoError(t, err)

	// Exactly the supplied keys, none omitted or renamed.
	want := url.Values{
		"short_name":   {"ATL03"},
		"provider":     {"NSIDC_ECS"},
		"concept_id":   {"C1234567-NSIDC_ECS"},
		"bounding_box": {"-134.7,58.9,-133.9,59.2"},
		"temporal":     {"2019-05-01T00:00:00Z,2019-05-31T23:59:59Z"},
		"page_size":    {"25"},
		"page_num":     {"2"},
		"downloadable": {"true"},
	}
	assert.Equal(t, want, values)
}

func TestSearchParamsOmitsEmptyKeys(t *testing.T) {
	values, err := SearchParams{ShortName: "ATL03"}.Values()
	require.NoError(t, err)
	assert.Equal(t, url.Values{"short_name": {"ATL03"}}, values)
}

func TestSearchParamsOpenTemporalRange(t *testing.T) {
	values, err := SearchParams{TemporalStart: "2020-01-01T00:00:00Z"}.Values()
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01T00:00:00Z,", values.Get("temporal"))

	values, err = SearchParams{TemporalEnd: "2020-06-01T00:00:00Z"}.Values()
	require.NoError(t, err)
	assert.Equal(t, ",2020-06-01T00:00:00Z", values.Get("temporal"))
}

func TestSearchParamsBBoxValidation(t *testing.T) {
	_, err := SearchParams{BoundingBox: []float64{1, 2, 3}}.Values()
	assert.Error(t, err)
}

func TestSearchParamsCloneIsIndependent(t *testing.T) {
	params := SearchParams{
		BoundingBox: []float64{1, 2, 3, 4},
		Additional:  url.Values{"k": {"v"}},
	}
	clone := params.Clone()
	clone.BoundingBox[0] = 99
	clone.Additional.Set("k", "changed")

	assert.Equal(t, float64(1), params.BoundingBox[0])
	assert.Equal(t, "v", params.Additional.Get("k"))
}

func TestBoundaryKindMIMETypes(t *testing.T) {
	assert.Equal(t, "application/shapefile+zip", BoundaryShapefile.MIMEType())
	assert.Equal(t, "application/geo+json", BoundaryGeoJSON.MIMEType())
	assert.Equal(t, "application/vnd.google-earth.kml+xml", BoundaryKML.MIMEType())
	assert.Empty(t, BoundaryKind("gpx").MIMEType())
}

func TestMultipartBody(t *testing.T) {
	boundary := &Boundary{
		Kind:    BoundaryGeoJSON,
		Name:    "jakobshavn.geojson",
		Content: strings.NewReader(`{"type":"FeatureCollection","features":[]}`),
	}
	body, contentType, err := multipartBody(SearchParams{ShortName: "ATL06", Provider: "NSIDC_ECS"}, boundary)
	require.NoError(t, err)

	mediaType, mtParams, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(body, mtParams["boundary"])
	fields := map[string]string{}
	var fileName, fileType, fileContent string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(part)
		require.NoError(t, err)
		if part.FileName() != "" {
			fileName = part.FileName()
			fileType = part.Header.Get("Content-Type")
			fileContent = string(data)
			assert.Equal(t, "shapefile", part.FormName())
			continue
		}
		fields[part.FormName()] = string(data)
	}

	assert.Equal(t, map[string]string{"short_name": "ATL06", "provider": "NSIDC_ECS"}, fields)
	assert.Equal(t, "jakobshavn.geojson", fileName)
	assert.Equal(t, "application/geo+json", fileType)
	assert.True(t, bytes.Contains([]byte(fileContent), []byte("FeatureCollection")))
}

func TestMultipartBodyRequiresBoundary(t *testing.T) {
	_, _, err := multipartBody(SearchParams{}, nil)
	assert.Error(t, err)
}

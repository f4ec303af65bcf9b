package cmrclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SearchParams holds the recognized CMR filter keys for one search
// call. A zero value is a valid unfiltered search. Params are encoded
// once per call; the outbound query is exactly the union of the
// supplied keys.
type SearchParams struct {
	ShortName string
	Provider  string
	ConceptID string

	// BoundingBox is min-lon, min-lat, max-lon, max-lat.
	BoundingBox []float64

	// TemporalStart and TemporalEnd are ISO-8601 timestamps. Either
	// side may be empty for an open-ended range.
	TemporalStart string
	TemporalEnd   string

	PageSize int
	PageNum  int

	// Additional carries filter keys the struct does not model.
	Additional url.Values
}

// Validate ensures the provided search parameters are usable.
func (p SearchParams) Validate() error {
	if len(p.BoundingBox) != 0 && len(p.BoundingBox) != 4 {
		return fmt.Errorf("bounding box must contain 4 coordinates")
	}
	return nil
}

// Values encodes the parameters as CMR query parameters.
func (p SearchParams) Values() (url.Values, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	values := url.Values{}
	if p.ShortName != "" {
		values.Set("short_name", p.ShortName)
	}
	if p.Provider != "" {
		values.Set("provider", p.Provider)
	}
	if p.ConceptID != "" {
		values.Set("concept_id", p.ConceptID)
	}
	if len(p.BoundingBox) == 4 {
		coords := make([]string, len(p.BoundingBox))
		for i, c := range p.BoundingBox {
			coords[i] = strconv.FormatFloat(c, 'g', -1, 64)
		}
		values.Set("bounding_box", strings.Join(coords, ","))
	}
	if p.TemporalStart != "" || p.TemporalEnd != "" {
		values.Set("temporal", p.TemporalStart+","+p.TemporalEnd)
	}
	if p.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.PageNum > 0 {
		values.Set("page_num", strconv.Itoa(p.PageNum))
	}
	for key, vals := range p.Additional {
		for _, v := range vals {
			values.Add(key, v)
		}
	}
	return values, nil
}

// Clone returns a copy of the SearchParams with copied slices/maps.
func (p SearchParams) Clone() SearchParams {
	cp := p
	if len(p.BoundingBox) > 0 {
		cp.BoundingBox = append([]float64{}, p.BoundingBox...)
	}
	if p.Additional != nil {
		cp.Additional = make(url.Values, len(p.Additional))
		for k, v := range p.Additional {
			cp.Additional[k] = append([]string{}, v...)
		}
	}
	return cp
}

// BoundaryKind identifies the format of an uploaded search boundary.
type BoundaryKind string

const (
	// BoundaryShapefile is an ESRI shapefile, zipped.
	BoundaryShapefile BoundaryKind = "shapefile"
	// BoundaryGeoJSON is a GeoJSON document.
	BoundaryGeoJSON BoundaryKind = "geojson"
	// BoundaryKML is a KML document.
	BoundaryKML BoundaryKind = "kml"
)

// MIMEType returns the fixed content type CMR expects for the kind.
func (k BoundaryKind) MIMEType() string {
	switch k {
	case BoundaryShapefile:
		return "application/shapefile+zip"
	case BoundaryGeoJSON:
		return "application/geo+json"
	case BoundaryKML:
		return "application/vnd.google-earth.kml+xml"
	default:
		return ""
	}
}

// Boundary is an uploaded spatial filter. The content is consumed
// opaquely as the request payload; the client never inspects it.
type Boundary struct {
	Kind    BoundaryKind
	Name    string
	Content io.Reader
}

// BoundaryFromFile opens path and infers the boundary kind from its
// extension. The caller owns closing the returned reader via the
// search call consuming it.
func BoundaryFromFile(path string) (*Boundary, error) {
	var kind BoundaryKind
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		kind = BoundaryShapefile
	case ".geojson", ".json":
		kind = BoundaryGeoJSON
	case ".kml":
		kind = BoundaryKML
	default:
		return nil, fmt.Errorf("cmrclient: unrecognized boundary file extension: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Boundary{Kind: kind, Name: filepath.Base(path), Content: f}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody renders the params as form fields plus the boundary
// file part, returning the encoded body and its content type.
func multipartBody(params SearchParams, boundary *Boundary) (io.Reader, string, error) {
	values, err := params.Values()
	if err != nil {
		return nil, "", err
	}
	if boundary == nil || boundary.Content == nil {
		return nil, "", fmt.Errorf("cmrclient: boundary file is required")
	}
	if boundary.Kind.MIMEType() == "" {
		return nil, "", fmt.Errorf("cmrclient: unsupported boundary kind %q", boundary.Kind)
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, vals := range values {
		for _, v := range vals {
			if err := writer.WriteField(key, v); err != nil {
				return nil, "", err
			}
		}
	}

	name := boundary.Name
	if name == "" {
		name = "boundary"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="shapefile"; filename="%s"`, quoteEscaper.Replace(name)))
	header.Set("Content-Type", boundary.Kind.MIMEType())

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, boundary.Content); err != nil {
		return nil, "", err
	}
	if closer, ok := boundary.Content.(io.Closer); ok {
		closer.Close()
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf, writer.FormDataContentType(), nil
}

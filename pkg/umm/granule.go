// Package umm holds normalized descriptors for CMR search results and
// the parsers that produce them from the catalog's wire shapes.
package umm

import (
	"encoding/json"
	"strings"
)

// Related URL types as reported by the catalog.
const (
	TypeGetData       = "GET DATA"
	TypeGetDataDirect = "GET DATA VIA DIRECT ACCESS"
	TypeBrowse        = "GET RELATED VISUALIZATION"
)

// RelatedURL is one tagged access URL attached to a granule.
type RelatedURL struct {
	URL         string `json:"URL"`
	Type        string `json:"Type,omitempty"`
	Subtype     string `json:"Subtype,omitempty"`
	Description string `json:"Description,omitempty"`
	MimeType    string `json:"MimeType,omitempty"`

	// AdditionalFields holds foreign members the descriptor does not
	// model (e.g., "GetData" sizing blocks).
	AdditionalFields map[string]any `json:"-"`
}

var knownRelatedURLFields = map[string]bool{
	"URL": true, "Type": true, "Subtype": true, "Description": true,
	"MimeType": true,
}

// UnmarshalJSON implements custom unmarshaling to capture foreign members.
func (u *RelatedURL) UnmarshalJSON(data []byte) error {
	type urlAlias RelatedURL
	var aux urlAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = RelatedURL(aux)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	u.AdditionalFields = make(map[string]any)
	for key, val := range raw {
		if !knownRelatedURLFields[key] {
			var decoded any
			if err := json.Unmarshal(val, &decoded); err != nil {
				continue
			}
			u.AdditionalFields[key] = decoded
		}
	}

	return nil
}

// MarshalJSON implements custom marshaling to include foreign members.
func (u RelatedURL) MarshalJSON() ([]byte, error) {
	type urlAlias RelatedURL
	aux := urlAlias(u)

	data, err := json.Marshal(aux)
	if err != nil {
		return nil, err
	}

	if len(u.AdditionalFields) == 0 {
		return data, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	for key, val := range u.AdditionalFields {
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		obj[key] = encoded
	}

	return json.Marshal(obj)
}

// Granule is one normalized granule descriptor. Fields are read-only
// after parsing; accessors never mutate the URL list.
type Granule struct {
	ConceptID  string       `json:"concept_id"`
	Title      string       `json:"title"`
	Collection string       `json:"collection,omitempty"`
	SizeMB     float64      `json:"size_mb,omitempty"`
	TimeStart  string       `json:"time_start,omitempty"`
	TimeEnd    string       `json:"time_end,omitempty"`
	Boxes      []string     `json:"boxes,omitempty"`
	Polygons   []string     `json:"polygons,omitempty"`
	URLs       []RelatedURL `json:"urls,omitempty"`
}

// DataLinks returns only the retrievable-data URLs, excluding browse
// imagery and metadata links.
func (g *Granule) DataLinks() []RelatedURL {
	if g == nil {
		return nil
	}
	var out []RelatedURL
	for _, u := range g.URLs {
		if strings.HasPrefix(u.Type, TypeGetData) {
			out = append(out, u)
		}
	}
	return out
}

// DirectS3Links returns the subset of DataLinks with an s3 scheme,
// usable for in-region direct access.
func (g *Granule) DirectS3Links() []RelatedURL {
	var out []RelatedURL
	for _, u := range g.DataLinks() {
		if strings.HasPrefix(u.URL, "s3://") {
			out = append(out, u)
		}
	}
	return out
}

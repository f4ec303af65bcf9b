package umm

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The catalog serves two response shapes for the same records: the
// umm_json item list ({"items":[{"meta":…,"umm":…}]}) and the legacy
// feed ({"feed":{"entry":[…]}}). Parsing inspects the document once
// and dispatches to the matching normalizer. A document in neither
// shape, or one that does not decode, normalizes to zero results; the
// HTTP status is the error signal, not the body.

type responseProbe struct {
	Hits  int             `json:"hits"`
	Items json.RawMessage `json:"items"`
	Feed  json.RawMessage `json:"feed"`
}

// ParseGranules decodes a raw granule search response in either
// supported shape into descriptors, preserving response order.
func ParseGranules(data []byte) ([]*Granule, error) {
	var probe responseProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return []*Granule{}, nil
	}
	switch {
	case probe.Items != nil:
		return parseUMMGranules(probe.Items)
	case probe.Feed != nil:
		return parseLegacyGranules(probe.Feed)
	default:
		return []*Granule{}, nil
	}
}

// ParseCollections decodes a raw collection search response in either
// supported shape into descriptors, preserving response order.
func ParseCollections(data []byte) ([]*Collection, error) {
	var probe responseProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return []*Collection{}, nil
	}
	switch {
	case probe.Items != nil:
		return parseUMMCollections(probe.Items)
	case probe.Feed != nil:
		return parseLegacyCollections(probe.Feed)
	default:
		return []*Collection{}, nil
	}
}

type ummMeta struct {
	ConceptID           string `json:"concept-id"`
	ProviderID          string `json:"provider-id"`
	CollectionConceptID string `json:"collection-concept-id"`
}

type ummGranuleDoc struct {
	GranuleUR      string `json:"GranuleUR"`
	TemporalExtent struct {
		RangeDateTime struct {
			BeginningDateTime string `json:"BeginningDateTime"`
			EndingDateTime    string `json:"EndingDateTime"`
		} `json:"RangeDateTime"`
	} `json:"TemporalExtent"`
	SpatialExtent struct {
		HorizontalSpatialDomain struct {
			Geometry struct {
				BoundingRectangles []struct {
					West  float64 `json:"WestBoundingCoordinate"`
					South float64 `json:"SouthBoundingCoordinate"`
					East  float64 `json:"EastBoundingCoordinate"`
					North float64 `json:"NorthBoundingCoordinate"`
				} `json:"BoundingRectangles"`
				GPolygons []struct {
					Boundary struct {
						Points []struct {
							Longitude float64 `json:"Longitude"`
							Latitude  float64 `json:"Latitude"`
						} `json:"Points"`
					} `json:"Boundary"`
				} `json:"GPolygons"`
			} `json:"Geometry"`
		} `json:"HorizontalSpatialDomain"`
	} `json:"SpatialExtent"`
	DataGranule struct {
		ArchiveAndDistributionInformation []struct {
			Size     float64 `json:"Size"`
			SizeUnit string  `json:"SizeUnit"`
		} `json:"ArchiveAndDistributionInformation"`
	} `json:"DataGranule"`
	CollectionReference struct {
		EntryTitle string `json:"EntryTitle"`
		ShortName  string `json:"ShortName"`
		Version    string `json:"Version"`
	} `json:"CollectionReference"`
	RelatedUrls []RelatedURL `json:"RelatedUrls"`
}

func parseUMMGranules(raw json.RawMessage) ([]*Granule, error) {
	var items []struct {
		Meta ummMeta       `json:"meta"`
		UMM  ummGranuleDoc `json:"umm"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []*Granule{}, nil
	}

	granules := make([]*Granule, 0, len(items))
	for _, item := range items {
		doc := item.UMM
		g := &Granule{
			ConceptID: item.Meta.ConceptID,
			Title:     doc.GranuleUR,
			TimeStart: doc.TemporalExtent.RangeDateTime.BeginningDateTime,
			TimeEnd:   doc.TemporalExtent.RangeDateTime.EndingDateTime,
			URLs:      doc.RelatedUrls,
		}

		switch {
		case doc.CollectionReference.EntryTitle != "":
			g.Collection = doc.CollectionReference.EntryTitle
		case doc.CollectionReference.ShortName != "":
			g.Collection = doc.CollectionReference.ShortName
		default:
			g.Collection = item.Meta.CollectionConceptID
		}

		if info := doc.DataGranule.ArchiveAndDistributionInformation; len(info) > 0 {
			g.SizeMB = sizeToMB(info[0].Size, info[0].SizeUnit)
		}

		geom := doc.SpatialExtent.HorizontalSpatialDomain.Geometry
		for _, r := range geom.BoundingRectangles {
			g.Boxes = append(g.Boxes, formatBox(r.South, r.West, r.North, r.East))
		}
		for _, p := range geom.GPolygons {
			var parts []string
			for _, pt := range p.Boundary.Points {
				parts = append(parts, formatCoord(pt.Latitude), formatCoord(pt.Longitude))
			}
			if len(parts) > 0 {
				g.Polygons = append(g.Polygons, strings.Join(parts, " "))
			}
		}

		granules = append(granules, g)
	}
	return granules, nil
}

type legacyLink struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

func parseLegacyGranules(raw json.RawMessage) ([]*Granule, error) {
	var feed struct {
		Entry []struct {
			ID          string       `json:"id"`
			Title       string       `json:"title"`
			DatasetID   string       `json:"dataset_id"`
			GranuleSize string       `json:"granule_size"`
			TimeStart   string       `json:"time_start"`
			TimeEnd     string       `json:"time_end"`
			Boxes       []string     `json:"boxes"`
			Polygons    [][]string   `json:"polygons"`
			Links       []legacyLink `json:"links"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(raw, &feed); err != nil {
		return []*Granule{}, nil
	}

	granules := make([]*Granule, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		g := &Granule{
			ConceptID:  entry.ID,
			Title:      entry.Title,
			Collection: entry.DatasetID,
			TimeStart:  entry.TimeStart,
			TimeEnd:    entry.TimeEnd,
			Boxes:      entry.Boxes,
		}
		if entry.GranuleSize != "" {
			if size, err := strconv.ParseFloat(entry.GranuleSize, 64); err == nil {
				g.SizeMB = size
			}
		}
		for _, ring := range entry.Polygons {
			g.Polygons = append(g.Polygons, strings.Join(ring, " "))
		}
		for _, link := range entry.Links {
			g.URLs = append(g.URLs, RelatedURL{
				URL:         link.Href,
				Type:        legacyRelType(link.Rel, link.Href),
				Description: link.Title,
				MimeType:    link.Type,
			})
		}
		granules = append(granules, g)
	}
	return granules, nil
}

func parseUMMCollections(raw json.RawMessage) ([]*Collection, error) {
	var items []struct {
		Meta ummMeta `json:"meta"`
		UMM  struct {
			ShortName  string `json:"ShortName"`
			Version    string `json:"Version"`
			EntryTitle string `json:"EntryTitle"`
			Abstract   string `json:"Abstract"`
		} `json:"umm"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []*Collection{}, nil
	}

	collections := make([]*Collection, 0, len(items))
	for _, item := range items {
		collections = append(collections, &Collection{
			ConceptID: item.Meta.ConceptID,
			ShortName: item.UMM.ShortName,
			Version:   item.UMM.Version,
			Provider:  item.Meta.ProviderID,
			Title:     item.UMM.EntryTitle,
			Abstract:  item.UMM.Abstract,
		})
	}
	return collections, nil
}

func parseLegacyCollections(raw json.RawMessage) ([]*Collection, error) {
	var feed struct {
		Entry []struct {
			ID         string `json:"id"`
			ShortName  string `json:"short_name"`
			VersionID  string `json:"version_id"`
			DataCenter string `json:"data_center"`
			DatasetID  string `json:"dataset_id"`
			Summary    string `json:"summary"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(raw, &feed); err != nil {
		return []*Collection{}, nil
	}

	collections := make([]*Collection, 0, len(feed.Entry))
	for _, entry := range feed.Entry {
		collections = append(collections, &Collection{
			ConceptID: entry.ID,
			ShortName: entry.ShortName,
			Version:   entry.VersionID,
			Provider:  entry.DataCenter,
			Title:     entry.DatasetID,
			Abstract:  entry.Summary,
		})
	}
	return collections, nil
}

// legacyRelType maps a legacy fedsearch link rel onto the umm_json
// related-URL type vocabulary so both shapes filter identically.
func legacyRelType(rel, href string) string {
	switch {
	case strings.HasSuffix(rel, "/data#"):
		if strings.HasPrefix(href, "s3://") {
			return TypeGetDataDirect
		}
		return TypeGetData
	case strings.HasSuffix(rel, "/s3#"):
		return TypeGetDataDirect
	case strings.HasSuffix(rel, "/browse#"):
		return TypeBrowse
	default:
		return "VIEW RELATED INFORMATION"
	}
}

func sizeToMB(size float64, unit string) float64 {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "KB":
		return size / 1024
	case "GB":
		return size * 1024
	case "TB":
		return size * 1024 * 1024
	case "B", "BYTES":
		return size / (1024 * 1024)
	default:
		return size
	}
}

func formatBox(south, west, north, east float64) string {
	return strings.Join([]string{
		formatCoord(south), formatCoord(west), formatCoord(north), formatCoord(east),
	}, " ")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

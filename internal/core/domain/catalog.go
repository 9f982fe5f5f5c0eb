package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString accepts either a JSON string or a JSON number.
// Catalog authors write capacity as 4 or as "4 guests".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

// CatalogLinks holds the optional outbound actions of a record.
type CatalogLinks struct {
	DetailsURL string `json:"detailsUrl,omitempty"`
	BookingURL string `json:"bookingUrl,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// CatalogRecord is display metadata for one feature id.
type CatalogRecord struct {
	Title       string       `json:"title,omitempty"`
	Subtitle    string       `json:"subtitle,omitempty"`
	Description string       `json:"desc,omitempty"`
	Capacity    FlexString   `json:"capacity,omitempty"`
	Price       FlexString   `json:"price,omitempty"`
	Distance    FlexString   `json:"distance,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Photo       string       `json:"photo,omitempty"`
	Links       CatalogLinks `json:"links,omitempty"`
}

// Catalog maps feature id to record. A missing id means "no metadata".
type Catalog map[string]CatalogRecord

// Lookup returns the record for id, or an empty record when absent.
func (c Catalog) Lookup(id string) (CatalogRecord, bool) {
	if id == "" || c == nil {
		return CatalogRecord{}, false
	}
	rec, ok := c[id]
	return rec, ok
}

// StringifyProperty renders id/label properties that may be authored as numbers.
func StringifyProperty(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

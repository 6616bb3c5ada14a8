package targets

import (
	"encoding/json"
	"strconv"
	"unicode/utf8"
)

// Descriptor is one entry of a host's /json listing. Every field comes from an
// untrusted peer and is coerced to a string; missing fields are empty.
type Descriptor struct {
	Title                string `json:"title,omitempty"`
	Description          string `json:"description,omitempty"`
	URL                  string `json:"url,omitempty"`
	Type                 string `json:"type,omitempty"`
	ID                   string `json:"id,omitempty"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl,omitempty"`
	DevtoolsFrontendURL  string `json:"devtoolsFrontendUrl,omitempty"`
}

const shortIDLength = 12

// ParseDescriptors converts raw array elements into descriptors. Elements that
// are not JSON objects are skipped.
func ParseDescriptors(items []json.RawMessage) []Descriptor {
	descriptors := make([]Descriptor, 0, len(items))
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		descriptors = append(descriptors, Descriptor{
			Title:                stringField(fields, "title"),
			Description:          stringField(fields, "description"),
			URL:                  stringField(fields, "url"),
			Type:                 stringField(fields, "type"),
			ID:                   stringField(fields, "id"),
			WebSocketDebuggerURL: stringField(fields, "webSocketDebuggerUrl"),
			DevtoolsFrontendURL:  stringField(fields, "devtoolsFrontendUrl"),
		})
	}
	return descriptors
}

// stringField renders scalars the way they would print; falsy values, objects
// and arrays become "".
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

// DisplayTitle is the card heading: title, then description, then "Untitled".
func (d Descriptor) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	if d.Description != "" {
		return d.Description
	}
	return "Untitled"
}

// DisplayType is the kind badge, "unknown" when the peer did not say.
func (d Descriptor) DisplayType() string {
	if d.Type == "" {
		return "unknown"
	}
	return d.Type
}

// ShortID truncates the target id for badges.
func (d Descriptor) ShortID() string {
	if utf8.RuneCountInString(d.ID) <= shortIDLength {
		return d.ID
	}
	return string([]rune(d.ID)[:shortIDLength])
}

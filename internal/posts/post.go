// Package posts models legacy blog posts and reads them from exports.
package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawPost is one legacy post row as exported from the relational database.
type RawPost struct {
	ID      LegacyID `json:"id"`
	Title   string   `json:"title"`
	Slug    string   `json:"slug,omitempty"`
	Content string   `json:"content"`
	Excerpt string   `json:"excerpt,omitempty"`
	Date    string   `json:"date"`
	Meta    Meta     `json:"meta,omitempty"`
}

// LegacyID is the numeric legacy post id. JSON exports may carry it as a
// number or as a quoted string.
type LegacyID int64

func (id LegacyID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id *LegacyID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("posts: id is null")
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("posts: invalid id %s: %w", string(data), err)
	}
	*id = LegacyID(parsed)
	return nil
}

// Meta holds post metadata as strings. Non-string JSON values are kept in
// their JSON text form and nulls become empty strings.
type Meta map[string]string

func (m *Meta) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Meta, len(raw))
	for key, value := range raw {
		var s string
		switch {
		case bytes.Equal(value, []byte("null")):
		case json.Unmarshal(value, &s) == nil:
		default:
			s = string(value)
		}
		out[key] = s
	}
	*m = out
	return nil
}

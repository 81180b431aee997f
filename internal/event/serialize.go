package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alp54/fastmail-caldav/internal/datetime"
)

// JSON is the external representation of one occurrence. Field order is
// the wire key order.
type JSON struct {
	UID         string `json:"uid"`
	DTStart     string `json:"dtstart"`
	DTEnd       string `json:"dtend"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`
	RRule       string `json:"rrule"`
}

// Serializer renders occurrences with the display rules of its codec
type Serializer struct {
	codec *datetime.Codec
}

func NewSerializer(codec *datetime.Codec) *Serializer {
	if codec == nil {
		codec = datetime.NewCodec(nil)
	}
	return &Serializer{codec: codec}
}

// Object builds the JSON value of o
func (s *Serializer) Object(o Occurrence) JSON {
	r := o.Record
	if r == nil {
		r = &Record{}
	}
	return JSON{
		UID:         r.UID,
		DTStart:     s.codec.Format(o.Start),
		DTEnd:       s.codec.FormatOption(o.End),
		Summary:     r.Summary,
		Description: r.Description,
		Location:    r.Location,
		RRule:       r.RRule,
	}
}

// IsDegenerate reports whether o has no usable start once rendered
func (s *Serializer) IsDegenerate(o Occurrence) bool {
	return datetime.IsDegenerate(s.codec.Format(o.Start))
}

// Marshal renders o as a single-line JSON object
func (s *Serializer) Marshal(o Occurrence) (string, error) {
	return encode(s.Object(o))
}

// MarshalAll renders every usable occurrence, dropping degenerate ones
func (s *Serializer) MarshalAll(occurrences []Occurrence) ([]string, error) {
	out := make([]string, 0, len(occurrences))
	for _, o := range occurrences {
		if s.IsDegenerate(o) {
			continue
		}
		line, err := s.Marshal(o)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize event %q: %w", s.Object(o).UID, err)
		}
		out = append(out, line)
	}
	return out, nil
}

// NormalizeJSON re-renders the dtstart and dtend of a previously serialized
// event object through the loose date normaliser. Input that is not a JSON
// object is returned unchanged.
func NormalizeJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return raw
	}
	var obj JSON
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return raw
	}
	obj.DTStart = datetime.NormalizeLooseDateString(obj.DTStart)
	obj.DTEnd = datetime.NormalizeLooseDateString(obj.DTEnd)
	out, err := encode(obj)
	if err != nil {
		return raw
	}
	return out
}

func encode(v JSON) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

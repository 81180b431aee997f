package xml

import (
	"strconv"
	"strings"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/beevik/etree"
)

// Multistatus represents a parsed 207 multistatus body
type Multistatus struct {
	Responses []Response
}

// Response represents a single response within a multistatus
type Response struct {
	Href      string
	Status    int
	PropStats []PropStat
}

// PropStat represents property status in a response. Only the properties
// a calendar query asks for are kept.
type PropStat struct {
	Status          int
	ETag            string
	CalendarData    string
	HasCalendarData bool
}

// CalendarResource is one calendar object returned by a REPORT
type CalendarResource struct {
	Href string
	ETag string
	Data string
}

// ParseMultistatus parses a multistatus body. Anything that is not a
// well-formed DAV:multistatus document is a malformed response.
func ParseMultistatus(body []byte) (*Multistatus, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, caldaverr.New(caldaverr.ErrMalformedResponse, "empty multistatus body", nil)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, caldaverr.New(caldaverr.ErrMalformedResponse, "failed to parse multistatus body", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, caldaverr.New(caldaverr.ErrMalformedResponse, "multistatus body has no root element", nil)
	}
	if !is(root, DAV, TagMultistatus) {
		return nil, caldaverr.New(caldaverr.ErrMalformedResponse,
			"unexpected root element "+root.FullTag(), nil)
	}

	m := &Multistatus{}
	for _, respElem := range childrenNS(root, DAV, TagResponse) {
		resp := Response{Status: 200}

		if hrefElem := childNS(respElem, DAV, TagHref); hrefElem != nil {
			resp.Href = strings.TrimSpace(hrefElem.Text())
		}
		if statusElem := childNS(respElem, DAV, TagStatus); statusElem != nil {
			resp.Status = parseStatusLine(statusElem.Text())
		}

		for _, psElem := range childrenNS(respElem, DAV, TagPropstat) {
			ps := PropStat{Status: 200}
			if statusElem := childNS(psElem, DAV, TagStatus); statusElem != nil {
				ps.Status = parseStatusLine(statusElem.Text())
			}
			if propElem := childNS(psElem, DAV, TagProp); propElem != nil {
				if etag := childNS(propElem, DAV, TagGetETag); etag != nil {
					ps.ETag = strings.TrimSpace(etag.Text())
				}
				if data := childNS(propElem, CalDAV, TagCalendarData); data != nil {
					ps.CalendarData = data.Text()
					ps.HasCalendarData = true
				}
			}
			resp.PropStats = append(resp.PropStats, ps)
		}

		m.Responses = append(m.Responses, resp)
	}

	return m, nil
}

// CalendarResources returns every successful response that carries
// calendar-data, in document order.
func (m *Multistatus) CalendarResources() []CalendarResource {
	var out []CalendarResource
	for _, resp := range m.Responses {
		if !isSuccess(resp.Status) || resp.Href == "" {
			continue
		}
		res := CalendarResource{Href: resp.Href}
		found := false
		for _, ps := range resp.PropStats {
			if !isSuccess(ps.Status) {
				continue
			}
			if ps.ETag != "" {
				res.ETag = ps.ETag
			}
			if ps.HasCalendarData {
				res.Data = ps.CalendarData
				found = true
			}
		}
		if found {
			out = append(out, res)
		}
	}
	return out
}

// parseStatusLine extracts the code from "HTTP/1.1 200 OK". Unparseable
// lines count as 500.
func parseStatusLine(line string) int {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 500
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 500
	}
	return code
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

package xml

import (
	"os"
	"strings"
	"testing"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultistatus_RealData(t *testing.T) {
	body, err := os.ReadFile("testdata/report/fastmail_query_response.xml")
	require.NoError(t, err)

	ms, err := ParseMultistatus(body)
	require.NoError(t, err)
	require.Len(t, ms.Responses, 4)

	resources := ms.CalendarResources()
	require.Len(t, resources, 2)

	assert.Equal(t, "/dav/calendars/user/alice@example.com/Default/a1.ics", resources[0].Href)
	assert.Equal(t, `"e-a1"`, resources[0].ETag)
	assert.Contains(t, resources[0].Data, "UID:a1\r\n")

	assert.Equal(t, "/dav/calendars/user/alice@example.com/Default/a2.ics", resources[1].Href)
	assert.Contains(t, resources[1].Data, "DTSTART;VALUE=DATE:20250601")

	require.Len(t, ms.Responses, 4)
	assert.Equal(t, 404, ms.Responses[3].PropStats[0].Status)
}

func TestParseMultistatus_PrefixIndependent(t *testing.T) {
	body := `<?xml version="1.0"?>
<multistatus xmlns="DAV:">
  <response>
    <href>/cal/x.ics</href>
    <propstat>
      <prop>
        <getetag>"1"</getetag>
        <calendar-data xmlns="urn:ietf:params:xml:ns:caldav">BEGIN:VCALENDAR
END:VCALENDAR</calendar-data>
      </prop>
      <status>HTTP/1.1 200 OK</status>
    </propstat>
  </response>
  <response>
    <href>/cal/failed.ics</href>
    <status>HTTP/1.1 403 Forbidden</status>
  </response>
</multistatus>`

	ms, err := ParseMultistatus([]byte(body))
	require.NoError(t, err)

	resources := ms.CalendarResources()
	require.Len(t, resources, 1)
	assert.Equal(t, "/cal/x.ics", resources[0].Href)
	assert.Equal(t, `"1"`, resources[0].ETag)
	assert.True(t, strings.HasPrefix(resources[0].Data, "BEGIN:VCALENDAR"))

	require.Len(t, ms.Responses, 2)
	assert.Equal(t, 403, ms.Responses[1].Status)
}

func TestParseMultistatus_Empty(t *testing.T) {
	ms, err := ParseMultistatus([]byte(`<D:multistatus xmlns:D="DAV:"/>`))
	require.NoError(t, err)
	assert.Empty(t, ms.CalendarResources())
}

func TestParseMultistatus_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "whitespace body", body: "  \n "},
		{name: "not xml", body: "<html><body>oops"},
		{name: "wrong root", body: `<D:propfind xmlns:D="DAV:"/>`},
		{name: "root in wrong namespace", body: `<multistatus xmlns="urn:example"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMultistatus([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, caldaverr.IsType(err, caldaverr.ErrMalformedResponse))
		})
	}
}

func TestParseStatusLine(t *testing.T) {
	assert.Equal(t, 200, parseStatusLine("HTTP/1.1 200 OK"))
	assert.Equal(t, 404, parseStatusLine(" HTTP/1.1 404 Not Found "))
	assert.Equal(t, 500, parseStatusLine("garbage"))
	assert.Equal(t, 500, parseStatusLine("HTTP/1.1 abc"))
}

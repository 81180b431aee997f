package davclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	principalPath = "/dav/principals/user/alice@example.com/"
	homeSetPath   = "/dav/calendars/user/alice@example.com/"
	calendarPath  = "/dav/calendars/user/alice@example.com/Default/"
)

func davResponse(href, props string) string {
	return fmt.Sprintf(`<d:response><d:href>%s</d:href><d:propstat><d:prop>%s</d:prop>`+
		`<d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response>`, href, props)
}

func writeMultistatus(w http.ResponseWriter, responses ...string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>`+
		`<d:multistatus xmlns:d="DAV:" xmlns:c="urn:ietf:params:xml:ns:caldav">`+
		strings.Join(responses, "")+`</d:multistatus>`)
}

func TestFindCalendars(t *testing.T) {
	var steps []string
	authorized := true
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice@example.com" || pass != "app-password" {
			authorized = false
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method != "PROPFIND" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		body, _ := io.ReadAll(r.Body)
		switch {
		case strings.Contains(string(body), "current-user-principal"):
			steps = append(steps, "principal "+r.URL.Path)
			writeMultistatus(w, davResponse(r.URL.Path,
				`<d:current-user-principal><d:href>`+principalPath+`</d:href></d:current-user-principal>`))
		case strings.Contains(string(body), "calendar-home-set"):
			steps = append(steps, "home "+r.URL.Path)
			writeMultistatus(w, davResponse(r.URL.Path,
				`<c:calendar-home-set><d:href>`+homeSetPath+`</d:href></c:calendar-home-set>`))
		default:
			steps = append(steps, "list "+r.URL.Path)
			writeMultistatus(w,
				davResponse(homeSetPath, `<d:resourcetype><d:collection/></d:resourcetype>`+
					`<d:displayname>Home</d:displayname>`),
				davResponse(calendarPath, `<d:resourcetype><d:collection/><c:calendar/></d:resourcetype>`+
					`<d:displayname>Personal</d:displayname>`+
					`<c:calendar-description>Work and home</c:calendar-description>`+
					`<c:max-resource-size>1000000</c:max-resource-size>`+
					`<c:supported-calendar-component-set><c:comp name="VEVENT"/></c:supported-calendar-component-set>`),
			)
		}
	})

	calendars, err := client.FindCalendars(context.Background())
	require.NoError(t, err)
	assert.True(t, authorized)

	assert.Equal(t, []CalendarInfo{{
		Path:        calendarPath,
		Name:        "Personal",
		Description: "Work and home",
	}}, calendars)

	require.Len(t, steps, 3)
	assert.True(t, strings.HasPrefix(steps[0], "principal "))
	assert.Equal(t, "home "+principalPath, steps[1])
	assert.Equal(t, "list "+homeSetPath, steps[2])
}

func TestFindCalendars_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: "current-user-principal"},
		{name: "server error", status: http.StatusInternalServerError, wantErr: "current-user-principal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod string
			client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				w.WriteHeader(tt.status)
			})

			_, err := client.FindCalendars(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, "PROPFIND", gotMethod)
		})
	}
}

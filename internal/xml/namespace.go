package xml

import "github.com/beevik/etree"

// Namespace definitions for CalDAV and WebDAV
const (
	// DAV is the WebDAV namespace
	DAV = "DAV:"
	// CalDAV is the CalDAV namespace
	CalDAV = "urn:ietf:params:xml:ns:caldav"
)

// Prefixes used when writing request bodies
const (
	prefixDAV    = "D"
	prefixCalDAV = "C"
)

// Common XML tag names used in CalDAV
const (
	TagMultistatus   = "multistatus"
	TagResponse      = "response"
	TagHref          = "href"
	TagPropstat      = "propstat"
	TagProp          = "prop"
	TagStatus        = "status"
	TagGetETag       = "getetag"
	TagCalendarData  = "calendar-data"
	TagCalendarQuery = "calendar-query"
	TagFilter        = "filter"
	TagCompFilter    = "comp-filter"
	TagPropFilter    = "prop-filter"
	TagTextMatch     = "text-match"
	TagTimeRange     = "time-range"
)

// AddNamespaces declares the D and C prefixes on the document root
func AddNamespaces(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	root.CreateAttr("xmlns:"+prefixDAV, DAV)
	root.CreateAttr("xmlns:"+prefixCalDAV, CalDAV)
}

func prefixFor(ns string) string {
	if ns == DAV {
		return prefixDAV
	}
	return prefixCalDAV
}

// is reports whether elem is the element local in namespace ns. Servers
// pick their own prefixes, so matching is done on the resolved URI.
func is(elem *etree.Element, ns, local string) bool {
	return elem != nil && elem.Tag == local && elem.NamespaceURI() == ns
}

func childrenNS(elem *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range elem.ChildElements() {
		if is(child, ns, local) {
			out = append(out, child)
		}
	}
	return out
}

func childNS(elem *etree.Element, ns, local string) *etree.Element {
	for _, child := range elem.ChildElements() {
		if is(child, ns, local) {
			return child
		}
	}
	return nil
}

package xml

import (
	"github.com/beevik/etree"
)

const wireTimeLayout = "20060102T150405Z"

// ToXML converts a CalendarQuery to an XML document
func (q *CalendarQuery) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement(prefixCalDAV + ":" + TagCalendarQuery)
	AddNamespaces(doc)

	if len(q.Props) > 0 {
		prop := root.CreateElement(prefixDAV + ":" + TagProp)
		for _, p := range q.Props {
			prop.CreateElement(prefixFor(p.Namespace) + ":" + p.Name)
		}
	}

	filter := root.CreateElement(prefixCalDAV + ":" + TagFilter)
	q.Filter.toElement(filter)
	return doc
}

// Bytes serializes the query as an XML request body
func (q *CalendarQuery) Bytes() ([]byte, error) {
	return q.ToXML().WriteToBytes()
}

func (f *CompFilter) toElement(parent *etree.Element) {
	comp := parent.CreateElement(prefixCalDAV + ":" + TagCompFilter)
	comp.CreateAttr("name", f.Name)

	if f.TimeRange != nil {
		tr := comp.CreateElement(prefixCalDAV + ":" + TagTimeRange)
		if !f.TimeRange.Start.IsZero() {
			tr.CreateAttr("start", f.TimeRange.Start.UTC().Format(wireTimeLayout))
		}
		if !f.TimeRange.End.IsZero() {
			tr.CreateAttr("end", f.TimeRange.End.UTC().Format(wireTimeLayout))
		}
	}

	for _, pf := range f.PropFilters {
		pf.toElement(comp)
	}

	for i := range f.Children {
		f.Children[i].toElement(comp)
	}
}

func (pf *PropFilter) toElement(parent *etree.Element) {
	elem := parent.CreateElement(prefixCalDAV + ":" + TagPropFilter)
	elem.CreateAttr("name", pf.Name)

	if pf.TextMatch != nil {
		tm := elem.CreateElement(prefixCalDAV + ":" + TagTextMatch)
		if pf.TextMatch.Collation != "" {
			tm.CreateAttr("collation", pf.TextMatch.Collation)
		}
		tm.SetText(pf.TextMatch.Value)
	}
}

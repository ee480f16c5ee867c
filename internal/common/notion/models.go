package notion

import (
	"encoding/json"
	"time"

	"github.com/jomei/notionapi"
)

// PlainTitle returns the plain text of the first title fragment.
func PlainTitle(p notionapi.Property) string {
	if t, ok := p.(*notionapi.TitleProperty); ok && len(t.Title) > 0 {
		return t.Title[0].PlainText
	}
	return ""
}

// OptionName returns the status or select option name, "" when unset.
func OptionName(p notionapi.Property) string {
	switch v := p.(type) {
	case *notionapi.StatusProperty:
		return v.Status.Name
	case *notionapi.SelectProperty:
		return v.Select.Name
	}
	return ""
}

// DateStart returns the start of a date property as YYYY-MM-DD, "" when
// unset.
func DateStart(p notionapi.Property) string {
	d, ok := p.(*notionapi.DateProperty)
	if !ok || d.Date == nil || d.Date.Start == nil {
		return ""
	}
	return time.Time(*d.Date.Start).Format("2006-01-02")
}

// Builders for write payloads.

func TitleValue(content string) notionapi.Property {
	return notionapi.TitleProperty{Title: []notionapi.RichText{{Text: &notionapi.Text{Content: content}}}}
}

func StatusValue(name string) notionapi.Property {
	return notionapi.StatusProperty{Status: notionapi.Status{Name: name}}
}

// SelectValue sets a select option, or clears it when name is "".
func SelectValue(name string) notionapi.Property {
	if name == "" {
		return rawValue{kind: notionapi.PropertyTypeSelect, body: map[string]any{"select": nil}}
	}
	return notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

// DateValue sets a calendar date, or clears it when start is "".
func DateValue(start string) notionapi.Property {
	if start == "" {
		return notionapi.DateProperty{}
	}
	return rawValue{kind: notionapi.PropertyTypeDate, body: map[string]any{"date": map[string]any{"start": start}}}
}

// rawValue writes a property body as given. The library's select cannot be
// null and its dates always carry a time.
type rawValue struct {
	kind notionapi.PropertyType
	body map[string]any
}

func (v rawValue) GetID() string                   { return "" }
func (v rawValue) GetType() notionapi.PropertyType { return v.kind }

func (v rawValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.body)
}

package connectwise

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Tiliavir/cwr/internal/model"
)

// DecodeEntries maps a time/entries response array to raw entries. Fields
// that are missing, null or of an unexpected type decode to zero values;
// elements that are not objects are skipped. n is the length of the array.
func DecodeEntries(body []byte) (entries []model.RawEntry, n int, err error) {
	if !gjson.ValidBytes(body) {
		return nil, 0, fmt.Errorf("decoding time entries: invalid JSON")
	}
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, 0, fmt.Errorf("decoding time entries: expected an array, got %s", result.Type)
	}
	elems := result.Array()
	entries = []model.RawEntry{}
	for _, value := range elems {
		if value.IsObject() {
			entries = append(entries, decodeEntry(value))
		}
	}
	return entries, len(elems), nil
}

func decodeEntry(v gjson.Result) model.RawEntry {
	e := model.RawEntry{
		ID:           v.Get("id").Int(),
		TimeStart:    str(v.Get("timeStart")),
		TimeEnd:      str(v.Get("timeEnd")),
		ActualHours:  v.Get("actualHours").Float(),
		Notes:        str(v.Get("notes")),
		TicketBoard:  str(v.Get("ticketBoard")),
		TicketStatus: str(v.Get("ticketStatus")),
		Member:       named(v.Get("member")),
		Project:      named(v.Get("project")),
		WorkType:     named(v.Get("workType")),
	}
	if t := v.Get("ticket"); t.IsObject() {
		e.Ticket = &model.TicketRef{Summary: str(t.Get("summary"))}
		if id := t.Get("id"); id.Type == gjson.Number || id.Type == gjson.String {
			e.Ticket.ID = id.String()
		}
	}
	return e
}

// str returns strings and numbers as text; objects, arrays, booleans and
// null become "".
func str(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number:
		return v.String()
	}
	return ""
}

func named(v gjson.Result) *model.NamedRef {
	if !v.IsObject() {
		return nil
	}
	return &model.NamedRef{Name: str(v.Get("name"))}
}

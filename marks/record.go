package marks

import "encoding/json"

// RecordVersion is written into every metadata payload so later grammar
// changes can be detected when reading documents written by older builds.
const RecordVersion = 1

// Record is the session metadata embedded in the host document. It is
// serialized as a single JSON line inside the metadata region.
type Record struct {
	Version     int    `json:"version"`
	ID          string `json:"id"`
	Lines       int    `json:"lines"`
	PageSize    int    `json:"page_size"`
	Snippets    int    `json:"snippets"`
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	Positions   []int  `json:"positions"`
}

func (r Record) encode() string {
	data, err := json.Marshal(r)
	if err != nil {
		// Record has no unmarshalable fields
		panic(err)
	}
	return string(data)
}

func decodeRecord(payload string) (Record, bool) {
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Record{}, false
	}
	if rec.ID == "" {
		return Record{}, false
	}
	return rec, true
}

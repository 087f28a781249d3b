package index

import "encoding/json"

// Document is the full record for one indexed movie. Raw holds the source
// record verbatim so arbitrary metadata fields survive a save/load cycle;
// ID, Title and Description are parsed out of it for direct access.
type Document struct {
	ID          int
	Title       string
	Description string
	Raw         json.RawMessage
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	d.ID = fields.ID
	d.Title = fields.Title
	d.Description = fields.Description
	d.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.Raw) > 0 {
		return d.Raw, nil
	}
	return json.Marshal(struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}{d.ID, d.Title, d.Description})
}

package entity

// Document is one raw invoice text blob, read once per batch run.
// ID is the source filename; rendering PDF to text happens upstream.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

package fetch

import "github.com/nojima/go-fetch/body"

// FormData is an ordered sequence of (name, string|Blob) entries, the
// conceptual FormData type spec.md §3 calls "form-data." It implements
// body.FormDataEntries, which is how the body extractor (C1) recognizes
// it as variant 6.
type FormData struct {
	entries []body.FormValue
}

func NewFormData() *FormData { return &FormData{} }

// Append adds a plain string field.
func (f *FormData) Append(name, value string) {
	f.entries = append(f.entries, body.FormValue{Name: name, Value: value})
}

// AppendFile adds a blob field, encoded as a file part by the multipart
// encoder (C2).
func (f *FormData) AppendFile(name string, file Blob) {
	f.entries = append(f.entries, body.FormValue{Name: name, File: file})
}

func (f *FormData) Entries() []body.FormValue { return f.entries }

package fetch

import "time"

// File is a Blob with a filename and a modification time, spec.md §1's
// conceptual File type. Unlike the observed source, this module never
// installs a global File shim — spec.md §9 explicitly calls that
// host-compatibility hack out as something new implementations should
// not replicate.
type File struct {
	Blob
	name         string
	lastModified time.Time
}

// NewFile wraps data as a named File. lastModified may be the zero
// time if unknown.
func NewFile(data []byte, name, contentType string, lastModified time.Time) *File {
	return &File{
		Blob:         NewBlob(data, contentType),
		name:         name,
		lastModified: lastModified,
	}
}

func (f *File) Name() string            { return f.name }
func (f *File) LastModified() time.Time { return f.lastModified }

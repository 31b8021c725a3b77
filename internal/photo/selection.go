package photo

import (
	"bytes"
	"io"
	"mime/multipart"

	"github.com/aanand-mishra/student-registry/internal/types"
)

// FromFileHeader wraps an uploaded multipart file. It returns nil when the
// browser sent an empty file part, which is what an untouched file input
// produces.
func FromFileHeader(fh *multipart.FileHeader) *types.PhotoSelection {
	if fh == nil || (fh.Filename == "" && fh.Size == 0) {
		return nil
	}
	return &types.PhotoSelection{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromBytes wraps in-memory file contents.
func FromBytes(filename, contentType string, data []byte) *types.PhotoSelection {
	return &types.PhotoSelection{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

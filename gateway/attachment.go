package gateway

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxAttachmentSize caps files read by LoadAttachment
const MaxAttachmentSize = 20 << 20

// Attachment is a file sent alongside a query. Path is the local reference
// kept in the message log; it is never sent to the backend.
type Attachment struct {
	Path        string
	Name        string
	ContentType string
	Data        []byte
}

// LoadAttachment reads a file from disk and sniffs its content type
func LoadAttachment(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, Validation(fmt.Sprintf("cannot read attachment: %v", err))
	}
	if info.IsDir() {
		return Attachment{}, Validation(fmt.Sprintf("attachment %s is a directory", path))
	}
	if info.Size() > MaxAttachmentSize {
		return Attachment{}, Validation(fmt.Sprintf("attachment %s is larger than %d MB", filepath.Base(path), MaxAttachmentSize>>20))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, Validation(fmt.Sprintf("cannot read attachment: %v", err))
	}

	return Attachment{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// IsImage reports whether the attachment was sniffed as an image
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// IsPDF reports whether the attachment was sniffed as a PDF document
func (a Attachment) IsPDF() bool {
	return mimetype.EqualsAny(a.ContentType, "application/pdf")
}

// LoadImage loads path and rejects anything that is not an image
func LoadImage(path string) (Attachment, error) {
	att, err := LoadAttachment(path)
	if err != nil {
		return Attachment{}, err
	}
	if !att.IsImage() {
		return Attachment{}, Validation(fmt.Sprintf("%s is not an image (%s)", att.Name, att.ContentType))
	}
	return att, nil
}

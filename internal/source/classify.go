package source

import "strings"

// Supported file type labels.
const (
	FileTypeAudio = "audio"
	FileTypePDF   = "pdf"
)

// ClassifyMime maps a MIME type onto a supported file type label. Any audio
// subtype qualifies; documents must be PDF. Everything else is skipped at
// discovery time.
func ClassifyMime(mimeType string) (string, bool) {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	switch {
	case strings.HasPrefix(mime, "audio/"):
		return FileTypeAudio, true
	case mime == "application/pdf":
		return FileTypePDF, true
	default:
		return "", false
	}
}

// DefaultExtension returns the fallback file extension for a file type.
func DefaultExtension(fileType string) string {
	switch fileType {
	case FileTypeAudio:
		return ".mp3"
	case FileTypePDF:
		return ".pdf"
	default:
		return ".bin"
	}
}

package source

import (
	"fmt"
	"strings"
)

// SynthesizeName builds a file name for attachments that carry none. Audio
// tracks prefer their tag metadata; everything else falls back to a
// message-derived name with the type's default extension.
func SynthesizeName(fileType string, messageID int64, performer, title string) string {
	ext := DefaultExtension(fileType)
	if fileType == FileTypeAudio {
		performer = strings.TrimSpace(performer)
		title = strings.TrimSpace(title)
		switch {
		case performer != "" && title != "":
			return performer + " - " + title + ext
		case title != "":
			return title + ext
		}
	}
	return fmt.Sprintf("file_%d%s", messageID, ext)
}

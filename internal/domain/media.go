package domain

import (
	"path/filepath"
	"strings"
)

// MediaKind decides which Telegram send method is used for a downloaded file.
type MediaKind int

const (
	MediaDocument MediaKind = iota
	MediaVideo
	MediaImage
)

func (k MediaKind) String() string {
	switch k {
	case MediaVideo:
		return "video"
	case MediaImage:
		return "image"
	default:
		return "document"
	}
}

var mediaByExt = map[string]MediaKind{
	".mp4":  MediaVideo,
	".mov":  MediaVideo,
	".mkv":  MediaVideo,
	".webm": MediaVideo,
	".jpg":  MediaImage,
	".jpeg": MediaImage,
	".png":  MediaImage,
	".webp": MediaImage,
}

// ClassifyFile maps a file path to a MediaKind using its extension only.
// Unknown extensions are sent as documents.
func ClassifyFile(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := mediaByExt[ext]; ok {
		return kind
	}
	return MediaDocument
}

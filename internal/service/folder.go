package service

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"GoGallery/model"
)

var folderPattern = regexp.MustCompile(`^/[a-zA-Z0-9/_-]*$`)
var fileNamePattern = regexp.MustCompile(`^[^<>:"/\\|?*]+$`)

// allowedVideoExtensions covers containers that browsers upload with a
// generic mimetype instead of video/*.
var allowedVideoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".webm": true, ".avi": true,
	".mov": true, ".flv": true, ".3gp": true, ".mpeg": true,
}

// NormalizeFolder coerces a folder tag to start with "/". Empty means root.
func NormalizeFolder(folder string) string {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return "/"
	}
	if !strings.HasPrefix(folder, "/") {
		folder = "/" + folder
	}
	if len(folder) > 1 {
		folder = strings.TrimRight(folder, "/")
		if folder == "" {
			folder = "/"
		}
	}
	return folder
}

// ValidFolder reports whether a folder path is acceptable.
func ValidFolder(folder string) bool {
	return folderPattern.MatchString(folder)
}

// ValidFileName reports whether a display file name is acceptable. The
// length bound counts characters, not bytes.
func ValidFileName(name string) bool {
	length := utf8.RuneCountInString(name)
	if length < 1 || length > 255 {
		return false
	}
	return fileNamePattern.MatchString(name)
}

// ClassifyUpload decides the media kind from the mimetype, falling back to
// the video extension allow-list for generic container mimetypes.
func ClassifyUpload(mimeType, fileName string) (model.MediaKind, error) {
	if strings.HasPrefix(mimeType, "image/") {
		return model.KindImage, nil
	}
	ext := strings.ToLower(path.Ext(fileName))
	if strings.HasPrefix(mimeType, "video/") || allowedVideoExtensions[ext] {
		return model.KindVideo, nil
	}
	return "", ErrUnsupportedFileType
}

// StorageKey generates an object key for an upload. Two uploads of the same
// name within the same millisecond can still collide; the scheme is kept
// for URL compatibility.
func StorageKey(fileName string) string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), fileName)
}

// RenamedObjectKey builds the destination key for a rename, preserving the
// upload-time numeric prefix when the old key carries one.
func RenamedObjectKey(oldKey, newFileName string) string {
	if idx := strings.Index(oldKey, "_"); idx > 0 {
		prefix := oldKey[:idx]
		if isDigits(prefix) {
			return prefix + "_" + newFileName
		}
	}
	return newFileName
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ObjectKeyFromURL derives the storage key from a stored location: the last
// path segment, URL-decoded.
func ObjectKeyFromURL(fileURL string) string {
	segment := fileURL
	if idx := strings.LastIndex(segment, "/"); idx >= 0 {
		segment = segment[idx+1:]
	}
	if decoded, err := url.PathUnescape(segment); err == nil {
		return decoded
	}
	return segment
}

// ChildSegments computes the distinct first path segments strictly below
// parent across all folder tags. Querying "/" against {"/holiday/2024"}
// yields {"holiday"}.
func ChildSegments(folders []string, parent string) []string {
	parent = NormalizeFolder(parent)
	prefix := parent
	if prefix != "/" {
		prefix += "/"
	}
	seen := make(map[string]bool)
	for _, folder := range folders {
		folder = NormalizeFolder(folder)
		if folder == parent || !strings.HasPrefix(folder, prefix) {
			continue
		}
		rest := strings.TrimPrefix(folder, prefix)
		segment := rest
		if idx := strings.Index(rest, "/"); idx >= 0 {
			segment = rest[:idx]
		}
		if segment != "" {
			seen[segment] = true
		}
	}
	out := make([]string, 0, len(seen))
	for segment := range seen {
		out = append(out, segment)
	}
	sort.Strings(out)
	return out
}

package utils

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
)

var imageExtensions = []string{".bmp", ".jpeg", ".jpg", ".png", ".tif", ".tiff"}

var videoExtensions = []string{".avi", ".flv", ".mkv", ".mov", ".mp4", ".mpeg", ".webm"}

// IsImageFile reports whether name has a recognized image extension
// (case-insensitive suffix match).
func IsImageFile(name string) bool {
	return hasExtension(name, imageExtensions)
}

// IsVideoFile reports whether name has a recognized video extension.
func IsVideoFile(name string) bool {
	return hasExtension(name, videoExtensions)
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// GetFolder returns path as a usable folder, creating it (and any parents)
// if it doesn't exist.
func GetFolder(path string) (string, error) {
	if err := os.MkdirAll(path, 0777); err != nil {
		return "", err
	}
	log.Debugf("Requested folder: %s", path)
	return path, nil
}

// GetImagePaths returns the image files that reside in dir, sorted by name.
// A missing directory is created instead of reported as an error.
func GetImagePaths(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Debugf("Creating folder: %s", dir)
		if _, err := GetFolder(dir); err != nil {
			return nil, err
		}
	}
	entries, err := os.ReadDir(dir) // already sorted by file name
	if err != nil {
		return nil, err
	}
	paths := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	log.Debugf("Found %d images in %s", len(paths), dir)
	return paths, nil
}

// CamelCaseSplit splits a camel case identifier into its words, keeping
// acronym runs together: "parseJSONFile" -> ["parse", "JSON", "File"].
func CamelCaseSplit(identifier string) []string {
	runes := []rune(identifier)
	if len(runes) == 0 {
		return nil
	}
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		boundary := false
		if unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			// lower followed by upper; digits and punctuation don't split
			boundary = true
		} else if i+1 < len(runes) && unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]) {
			// end of an acronym run: "JSONFile" splits before "File"
			boundary = true
		}
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))
	return words
}

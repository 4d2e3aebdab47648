package services

import (
	"encoding/json"
	"strings"

	"github.com/BradenHooton/family-album/internal/models"
)

// legacySeparator joins multiple photos in a legacy media_url
const legacySeparator = "|"

// PhotoFormat names the stored representation a photo set was read from
type PhotoFormat string

const (
	PhotoFormatNone   PhotoFormat = ""
	PhotoFormatNative PhotoFormat = "native"
	PhotoFormatJSON   PhotoFormat = "json"
	PhotoFormatLegacy PhotoFormat = "legacy"
)

// PhotoSet is the ordered list of photos on a post. URLs[0] is the cover.
type PhotoSet struct {
	URLs   []string
	Format PhotoFormat
}

// NewPhotoSet builds a set from urls, dropping blanks and duplicates.
// A non-empty cover that is part of the set is moved to the front.
func NewPhotoSet(urls []string, cover string) PhotoSet {
	seen := make(map[string]struct{}, len(urls))
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		cleaned = append(cleaned, u)
	}

	set := PhotoSet{URLs: cleaned, Format: PhotoFormatNative}
	if cover = strings.TrimSpace(cover); cover != "" {
		if moved, err := set.SetCover(cover); err == nil {
			set = moved
		}
	}
	return set
}

// DecodePhotoSet reads the photo set of a stored post. Formats are tried in
// order: native photo_urls, a JSON array in media_url, then a single URL or
// "|" separated list in media_url.
func DecodePhotoSet(post *models.Post) PhotoSet {
	if len(post.PhotoURLs) > 0 {
		set := NewPhotoSet(post.PhotoURLs, post.CoverURL)
		set.Format = PhotoFormatNative
		return set
	}

	media := strings.TrimSpace(post.MediaURL)
	if media == "" {
		return PhotoSet{}
	}

	if strings.HasPrefix(media, "[") {
		var urls []string
		if err := json.Unmarshal([]byte(media), &urls); err == nil {
			set := NewPhotoSet(urls, post.CoverURL)
			set.Format = PhotoFormatJSON
			return set
		}
	}

	set := NewPhotoSet(strings.Split(media, legacySeparator), "")
	set.Format = PhotoFormatLegacy
	return set
}

// Cover returns the cover photo, or "" for an empty set
func (s PhotoSet) Cover() string {
	if len(s.URLs) == 0 {
		return ""
	}
	return s.URLs[0]
}

// Contains reports whether url is part of the set
func (s PhotoSet) Contains(url string) bool {
	for _, u := range s.URLs {
		if u == url {
			return true
		}
	}
	return false
}

// Reorder returns the set in the given order. order must be a permutation
// of the current URLs.
func (s PhotoSet) Reorder(order []string) (PhotoSet, error) {
	if len(order) != len(s.URLs) {
		return PhotoSet{}, models.ErrInvalidPhotoOrder
	}

	remaining := make(map[string]int, len(s.URLs))
	for _, u := range s.URLs {
		remaining[u]++
	}
	for _, u := range order {
		if remaining[u] == 0 {
			return PhotoSet{}, models.ErrInvalidPhotoOrder
		}
		remaining[u]--
	}

	return PhotoSet{URLs: append([]string(nil), order...), Format: PhotoFormatNative}, nil
}

// SetCover moves url to the front, keeping the relative order of the rest
func (s PhotoSet) SetCover(url string) (PhotoSet, error) {
	if !s.Contains(url) {
		return PhotoSet{}, models.ErrPhotoNotInSet
	}

	urls := make([]string, 0, len(s.URLs))
	urls = append(urls, url)
	for _, u := range s.URLs {
		if u != url {
			urls = append(urls, u)
		}
	}
	return PhotoSet{URLs: urls, Format: PhotoFormatNative}, nil
}

// ApplyTo writes the set onto post in the native format and mirrors the
// cover into media_url for readers that only understand a single URL
func (s PhotoSet) ApplyTo(post *models.Post) {
	post.PhotoURLs = append([]string(nil), s.URLs...)
	post.CoverURL = s.Cover()
	post.MediaURL = s.Cover()
}

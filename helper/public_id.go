package helper

import (
	"net/url"
	"path"
	"strings"
)

// ExtractPublicID returns the Cloudinary public id of a delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v123/attractions/falls.png
// ("attractions/falls"). URLs served by anyone else yield "".
func ExtractPublicID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "res.cloudinary.com" {
		return ""
	}
	_, rest, found := strings.Cut(u.Path, "/upload/")
	if !found || rest == "" {
		return ""
	}

	segments := strings.Split(rest, "/")
	if len(segments) > 1 && isVersionSegment(segments[0]) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	return strings.TrimSuffix(id, path.Ext(id))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Package links classifies link URLs and keeps the per-layout link table.
package links

import (
	"net/url"
	"strings"
)

// Parts holds the components of a parsed URL. Every field is empty when the
// URL could not be parsed.
type Parts struct {
	Scheme   string
	Host     string
	Path     string
	Query    string
	Fragment string
}

// Parse splits raw into its components.
func Parse(raw string) (Parts, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return Parts{}, false
	}
	p := Parts{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Path:     u.EscapedPath(),
		Query:    u.RawQuery,
		Fragment: u.EscapedFragment(),
	}
	if u.Opaque != "" {
		p.Path = u.Opaque
	}
	return p, true
}

// Host returns the host of raw, or "" if raw does not parse.
func Host(raw string) string {
	p, _ := Parse(raw)
	return p.Host
}

// Resolve resolves ref against base, merging scheme, authority and path and
// removing "." and ".." segments. If either side fails to parse, ref is
// returned unchanged.
func Resolve(base, ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if base == "" || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

var (
	imageExts = []string{".gif", ".jpg", ".jpeg", ".png", ".tga", ".psd", ".hdr", ".pic"}
	audioExts = []string{".mp3", ".wav", ".mid"}
)

// Classify derives the scheme, remote and media flags of an absolute URL.
// localHost is the host of the document the link appears in.
func Classify(absURL, localHost string) Flags {
	p, ok := Parse(absURL)
	if !ok {
		// Unparseable: no scheme flags, so the link is unsupported.
		if localHost != "" {
			return Remote
		}
		return 0
	}
	var f Flags
	if !strings.EqualFold(p.Host, localHost) {
		f |= Remote
	}
	scheme := strings.ToLower(p.Scheme)
	switch {
	case strings.HasPrefix(scheme, "gemini"):
		f |= Gemini
	case strings.HasPrefix(scheme, "http"):
		f |= HTTP
	case scheme == "gopher":
		f |= Gopher
	case scheme == "file":
		f |= File
	case scheme == "data":
		f |= Data
	}
	if p.Path != "" {
		path := strings.ToLower(p.Path)
		switch {
		case hasAnySuffix(path, imageExts):
			f |= ImageExt
		case hasAnySuffix(path, audioExts):
			f |= AudioExt
		}
	}
	if f&schemeMask != 0 {
		f |= SupportedProtocol
	}
	return f
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

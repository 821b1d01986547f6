package links

import (
	"strings"
	"time"
)

// Flags is the set of properties derived for a link.
type Flags uint16

const (
	Remote Flags = 1 << iota
	Gemini
	HTTP
	Gopher
	File
	Data
	ImageExt
	AudioExt
	Visited
	UserFriendly
	Content
	SupportedProtocol
)

const schemeMask = Gemini | HTTP | Gopher | File | Data

var flagNames = []struct {
	f    Flags
	name string
}{
	{Remote, "remote"},
	{Gemini, "gemini"},
	{HTTP, "http"},
	{Gopher, "gopher"},
	{File, "file"},
	{Data, "data"},
	{ImageExt, "image-ext"},
	{AudioExt, "audio-ext"},
	{Visited, "visited"},
	{UserFriendly, "user-friendly"},
	{Content, "content"},
	{SupportedProtocol, "supported-protocol"},
}

// Has reports whether every flag in mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// IsMedia reports whether the URL names an image or audio file.
func (f Flags) IsMedia() bool { return f&(ImageExt|AudioExt) != 0 }

func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			names = append(names, fn.name)
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// MarshalText writes the flag names, for the layout debug dump.
func (f Flags) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ID is the 1-based index of a link in a Table. Zero means no link.
type ID int

// Link is a parsed link line.
type Link struct {
	URL   string    `json:"url"`
	When  time.Time `json:"when,omitzero"`
	Flags Flags     `json:"flags"`
}

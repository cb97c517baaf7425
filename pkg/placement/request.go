package placement

import (
	"github.com/paulmach/orb"
)

// Kind distinguishes images from text labels.
type Kind int

const (
	KindImage Kind = iota
	KindLabel
)

// String returns the name used for the kind in layout artifacts.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Content is the text drawn for a label, or the asset name of an image.
type Content struct {
	Name    string
	Caption string
}

// Request asks for one item to be placed near Anchor.
type Request struct {
	ID      string
	Kind    Kind
	Anchor  orb.Point
	Content Content
	Color   string
	URL     string

	// RawScale is the unresolved label size; see package scale.
	RawScale float64
	// Weight breaks ties between labels of equal tier and size. Heavier
	// labels are placed first.
	Weight float64
	// IsTop exempts a label from being discarded.
	IsTop bool
}

// Category returns the category encoded in the request id.
func (r Request) Category() Category {
	return ParseCategory(r.ID)
}

// NewImage returns an image request for the asset called name.
func NewImage(name string, anchor orb.Point) Request {
	return Request{ID: name, Kind: KindImage, Anchor: anchor, Content: Content{Name: name}}
}

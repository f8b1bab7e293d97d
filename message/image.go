package message

import (
	"strings"

	"github.com/AtriKawaii/atri-go/ffi"
	"github.com/AtriKawaii/atri-go/loader"
)

// Image is an image held by the host.
type Image struct {
	raw ffi.ManagedCloneable
}

// ImageFromFFI wraps a host image handle, taking ownership of it.
func ImageFromFFI(raw ffi.ManagedCloneable) Image {
	return Image{raw: raw}
}

// ID returns the host's identifier for the image.
func (i Image) ID() string {
	return loader.Table().ImageGetID(i.raw.Pointer()).String()
}

// URL returns a download URL for the image.
func (i Image) URL() string {
	return loader.Table().ImageGetURL(i.raw.Pointer()).Into()
}

// Clone duplicates the host handle.
func (i Image) Clone() Image {
	return Image{raw: i.raw.Clone()}
}

// Release drops the host handle.
func (i *Image) Release() {
	i.raw.Drop()
}

func (i Image) writeText(sb *strings.Builder) {
	sb.WriteString("[Image:")
	sb.WriteString(i.URL())
	sb.WriteString("]")
}

func (i Image) clone() Element { return i.Clone() }

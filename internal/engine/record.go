package engine

import (
	"github.com/docker/docker/api/types/image"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Inspection record of a local image, as reported by "image inspect".
type Record struct {
	image.InspectResponse
}

// Returns the platform the image was built for.
func (r *Record) Platform() ocispec.Platform {
	return ocispec.Platform{
		Architecture: r.Architecture,
		OS:           r.Os,
		OSVersion:    r.OsVersion,
		Variant:      r.Variant,
	}
}

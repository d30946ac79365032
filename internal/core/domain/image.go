package domain

import "time"

type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
)

// ClassifyOrientation compares the decoded dimensions.
func ClassifyOrientation(width, height int) Orientation {
	switch {
	case width > height:
		return OrientationLandscape
	case height > width:
		return OrientationPortrait
	default:
		return OrientationSquare
	}
}

// NormalizeOutcome tags how an admitted image was stored.
type NormalizeOutcome string

const (
	// OutcomeNormalized means a canonical JPEG main artifact and thumbnail exist.
	OutcomeNormalized NormalizeOutcome = "normalized"
	// OutcomeRawCopy means the bytes could not be decoded and were stored verbatim
	// without a thumbnail.
	OutcomeRawCopy NormalizeOutcome = "raw_copy"
)

const CanonicalImageType = "image/jpeg"

// StoredImage is the result of running an upload through the normalizer.
// Filename keeps the upload's extension even when the stored bytes were
// re-encoded, so a ".png" name may hold JPEG data. ContentType is the
// authoritative type of the main artifact.
type StoredImage struct {
	Outcome          NormalizeOutcome
	Filename         string
	ThumbnailName    string
	OriginalFilename string
	Size             int64
	ContentType      string
	Orientation      Orientation
	Width            int
	Height           int
	OriginalWidth    int
	OriginalHeight   int
}

// Optimized reports whether derived artifacts were produced.
func (s *StoredImage) Optimized() bool {
	return s.Outcome == OutcomeNormalized
}

// ThumbnailFilename derives the thumbnail name from the main artifact name.
func ThumbnailFilename(filename string) string {
	return "thumb_" + filename
}

// ItemImage is the persisted gallery entry of an item.
type ItemImage struct {
	ID               int64
	ItemID           int64
	Filename         string
	OriginalFilename string
	FileSize         int64
	Width            int
	Height           int
	Orientation      Orientation
	Optimized        bool
	Rotation         int
	IsPrimary        bool
	SortOrder        int
	CreatedAt        time.Time
}

var validRotations = map[int]bool{0: true, 90: true, 180: true, 270: true}

// ValidRotation reports whether r is a quarter turn.
func ValidRotation(r int) bool {
	return validRotations[r]
}

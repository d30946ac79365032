package domain

// Item is the owning entity of every artifact. Only the columns the media
// pipeline reads or keeps consistent are modelled here; the rest of the item
// record belongs to the inventory CRUD layer.
type Item struct {
	ID            int64
	Name          string
	ImageFilename *string
	QRCode        *string
}

// HasImage reports whether the item currently references a primary image.
func (i *Item) HasImage() bool {
	return i.ImageFilename != nil && *i.ImageFilename != ""
}

// HasQRCode reports whether a QR identity has been assigned.
func (i *Item) HasQRCode() bool {
	return i.QRCode != nil && *i.QRCode != ""
}

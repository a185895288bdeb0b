package models

// ImageSlot is a named image reference. Data is self-describing: either a
// data URI produced by the codec or a URL returned by the upload side-channel.
// A slot holds at most one current value; writes replace it outright.
type ImageSlot struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

// GalleryItem is one entry of the clearable community gallery.
// IDs are UUIDv7, so lexical order matches creation order.
type GalleryItem struct {
	ID        string `json:"id"`
	Data      string `json:"data"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// GuestMoment is a gallery entry with guest-provided metadata.
// Moments are append-only and are never bulk-cleared.
type GuestMoment struct {
	ID        string `json:"id"`
	Data      string `json:"data"`
	Caption   string `json:"caption"`
	Author    string `json:"author"`
	Location  string `json:"location"`
	CreatedAt int64  `json:"createdAt"`
}

// Pass is a demo identity record. The secret is stored and compared in
// plaintext; that is the documented contract of this system, not an oversight.
type Pass struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Secret    string `json:"-"`
	CreatedAt int64  `json:"createdAt"`
	Avatar    string `json:"avatar"`
}

// UploadCounts are sitewide counters flushed in batches by the counter worker.
type UploadCounts struct {
	Slots   int `json:"slots"`
	Gallery int `json:"gallery"`
	Moments int `json:"moments"`
}

// Package usersync holds the value types for user-sync pixels. The host
// decides when to fire them; the adapter only describes them.
package usersync

// SyncTypePixel is the only sync kind the exchange offers.
const SyncTypePixel = "image"

// Sync is one user sync for the user's device to perform.
type Sync struct {
	URL         string
	Type        string
	SupportCORS bool
}

// Options are the sync capabilities the host is willing to render.
type Options struct {
	IframeEnabled bool
	PixelEnabled  bool
}

// Package demand holds the host-side model of an auction: the ad slots a
// publisher wants filled and the page/device/consent context shared by all
// of them. The adapter core reads these values and never mutates them.
package demand

import (
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/deltaprojects/openrtb-adapter/openrtb_ext"
)

// DemandUnit is one ad slot. Exactly one unit maps to exactly one wire
// impression; BidID is the join key recovered later from the wire
// impression id.
type DemandUnit struct {
	// Bidder is the adapter the host addressed this unit to.
	Bidder openrtb_ext.BidderName

	Params openrtb_ext.ExtImpDeltaProjects

	// Sizes is the legacy whole-unit size list, used as the banner fallback
	// when the banner media type declares no sizes of its own.
	Sizes []openrtb2.Format

	MediaTypes MediaTypes

	TransactionID string

	// BidID is unique per slot within an auction.
	BidID string
}

// MediaTypes describes which impression payloads a unit wants. The kinds are
// not mutually exclusive; every applicable block is attached to the same
// impression.
type MediaTypes struct {
	Banner *BannerSpec
	Video  *VideoSpec
	Native *NativeSpec
}

type BannerSpec struct {
	// Sizes, when set, wins over DemandUnit.Sizes.
	Sizes []openrtb2.Format
}

// VideoContextInstream is the only video context that produces a wire video
// object.
const VideoContextInstream = "instream"

type VideoSpec struct {
	Context        string
	MIMEs          []string
	PlayerSize     []openrtb2.Format
	Protocols      []int
	API            []int
	PlaybackMethod []int
}

// NativeSpec maps asset kinds to their request config. A nil entry means the
// kind is absent from the native request entirely.
type NativeSpec struct {
	Title       *NativeAssetSpec
	Image       *NativeAssetSpec
	Icon        *NativeAssetSpec
	Body        *NativeAssetSpec
	CTA         *NativeAssetSpec
	SponsoredBy *NativeAssetSpec
}

type NativeAssetSpec struct {
	Required bool
	// Len is only meaningful for title assets.
	Len int64
}

// AuctionContext is shared, read-only, across all units of one auction.
type AuctionContext struct {
	AuctionID   string
	RefererInfo RefererInfo
	Consent     *Consent
	// TimeoutBudget is the auction budget in milliseconds; it populates tmax
	// only when strictly positive. The core never enforces it.
	TimeoutBudget int64
	Device        DeviceInfo
}

type RefererInfo struct {
	// Page is the full URL of the hosting page.
	Page string
	Ref  string
}

// Consent carries the regulatory consent signals as the host received them.
// Applies is tri-state: nil means the consent regime is unknown, which is
// distinct from "does not apply".
type Consent struct {
	Applies       *bool
	ConsentString string
}

// DeviceInfo is sourced once by the host from the page's environment and
// injected; the core never probes ambient state.
type DeviceInfo struct {
	UA string
	W  int64
	H  int64
}

package openrtb_ext

// BidType describes the allowed values for a bid result's media type.
type BidType string

const (
	BidTypeBanner BidType = "banner"
	BidTypeVideo  BidType = "video"
	BidTypeNative BidType = "native"
)

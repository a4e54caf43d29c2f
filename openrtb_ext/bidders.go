package openrtb_ext

// BidderName refers to a core bidder id. A demand unit carries one so the
// host can route it to the right adapter; the validator rejects units
// addressed to someone else.
type BidderName string

const (
	BidderDeltaProjects BidderName = "deltaprojects"
)

func (name BidderName) String() string {
	return string(name)
}

// Package deltaprojects translates demand units into OpenRTB 2.x wire
// requests for the Delta Projects exchange and decodes its responses back
// into normalized bid results. The package performs no I/O; the host's
// transport POSTs the request bodies and hands the raw responses back.
package deltaprojects

import (
	"github.com/golang/glog"

	"github.com/deltaprojects/openrtb-adapter/config"
	"github.com/deltaprojects/openrtb-adapter/demand"
	"github.com/deltaprojects/openrtb-adapter/openrtb_ext"
)

const (
	bidderCode = openrtb_ext.BidderDeltaProjects

	// supportedNativeVer is the native markup version sent in both the
	// serialized native request and the plain ver field beside it.
	supportedNativeVer = "1.1"

	// priceMacro is substituted with the clearing price, in micros, when the
	// host reports a win.
	priceMacro = "${AUCTION_PRICE}"

	// bidTTLSeconds is how long a returned bid stays usable.
	bidTTLSeconds = 60
)

type Adapter struct {
	endpoint    string
	userSyncURL string
}

// Builder builds a new instance of the DeltaProjects adapter for the given
// bidder with the given config.
func Builder(bidderName openrtb_ext.BidderName, cfg config.Adapter) (*Adapter, error) {
	return &Adapter{
		endpoint:    cfg.Endpoint,
		userSyncURL: cfg.UserSyncURL,
	}, nil
}

// BidderCode is the identifier the host keys passthrough extensions and
// sync cookies under.
func (a *Adapter) BidderCode() openrtb_ext.BidderName {
	return bidderCode
}

// IsValid reports whether a demand unit has the minimum fields the exchange
// requires before a wire request is worth building. Rejections are logged
// and the unit is simply excluded from the batch; IsValid never panics.
func (a *Adapter) IsValid(unit *demand.DemandUnit) bool {
	if unit == nil {
		glog.Errorf("%s: rejecting nil demand unit", bidderCode)
		return false
	}
	if unit.Bidder != bidderCode {
		glog.Errorf("%s: rejecting unit %s addressed to bidder %q", bidderCode, unit.BidID, unit.Bidder)
		return false
	}
	if unit.Params.PublisherID == "" {
		glog.Errorf("%s: rejecting unit %s without a publisher id", bidderCode, unit.BidID)
		return false
	}
	return true
}

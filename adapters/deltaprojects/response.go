package deltaprojects

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/deltaprojects/openrtb-adapter/adapters"
	"github.com/deltaprojects/openrtb-adapter/errortypes"
	"github.com/deltaprojects/openrtb-adapter/openrtb_ext"
)

// BidResult is one normalized bid, ready for the host's auction. Exactly one
// of Ad, VastXML and Native is populated, per MediaType.
type BidResult struct {
	RequestID  string              `json:"requestId"`
	CPM        float64             `json:"cpm"`
	Width      int64               `json:"width"`
	Height     int64               `json:"height"`
	CreativeID string              `json:"creativeId"`
	DealID     string              `json:"dealId,omitempty"`
	Currency   string              `json:"currency"`
	NetRevenue bool                `json:"netRevenue"`
	TTL        int64               `json:"ttl"`
	MediaType  openrtb_ext.BidType `json:"mediaType"`

	Ad      string    `json:"ad,omitempty"`
	VastXml string    `json:"vastXml,omitempty"`
	Native  *NativeAd `json:"native,omitempty"`

	// Ext is the exchange's per-bid passthrough block, verbatim, keyed under
	// the adapter's bidder code when the result is serialized.
	Ext json.RawMessage `json:"deltaprojects,omitempty"`
}

// InterpretResponse decodes the exchange's raw response into bid results,
// one per matched raw bid, in bid-arrival order. Defective pieces of the
// response degrade to fewer results plus errors, never an abort.
func (a *Adapter) InterpretResponse(response *adapters.ResponseData, request *openrtb2.BidRequest) ([]*BidResult, []error) {
	if response == nil {
		return nil, nil
	}

	if response.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if response.StatusCode == http.StatusBadRequest {
		return nil, []error{&errortypes.BadInput{
			Message: fmt.Sprintf("Unexpected status code: %d. Run with request.debug = 1 for more info", response.StatusCode),
		}}
	}
	if response.StatusCode != http.StatusOK {
		return nil, []error{&errortypes.BadServerResponse{
			Message: fmt.Sprintf("Unexpected status code: %d. Run with request.debug = 1 for more info", response.StatusCode),
		}}
	}

	if len(response.Body) == 0 {
		glog.Warningf("%s: empty response body", bidderCode)
		return nil, nil
	}

	if !hasIDOrSeatBid(response.Body) {
		glog.Warningf("%s: response carries neither id nor seatbid, ignoring it", bidderCode)
		return nil, []error{&errortypes.Warning{
			Message:     "response carries neither id nor seatbid, ignoring it",
			WarningCode: errortypes.MalformedResponseWarningCode,
		}}
	}

	var bidResp openrtb2.BidResponse
	if err := json.Unmarshal(response.Body, &bidResp); err != nil {
		return nil, []error{&errortypes.BadServerResponse{
			Message: fmt.Sprintf("error while decoding response, err: %s", err),
		}}
	}

	var results []*BidResult
	var errs []error

	for _, seatBid := range bidResp.SeatBid {
		for i := range seatBid.Bid {
			bid := seatBid.Bid[i]

			imp := impForBid(request, bid.ImpID)
			if imp == nil {
				glog.Errorf("%s: ignoring bid id=%s, request doesn't contain any impression with id=%s", bidderCode, bid.ID, bid.ImpID)
				errs = append(errs, &errortypes.BadServerResponse{
					Message: fmt.Sprintf("ignoring bid id=%s, request doesn't contain any impression with id=%s", bid.ID, bid.ImpID),
				})
				continue
			}

			result := &BidResult{
				RequestID:  bid.ImpID,
				CPM:        bid.Price,
				Width:      bid.W,
				Height:     bid.H,
				CreativeID: bid.CrID,
				DealID:     bid.DealID,
				Currency:   bidResp.Cur,
				NetRevenue: true,
				TTL:        bidTTLSeconds,
			}
			if result.CreativeID == "" {
				result.CreativeID = bid.ID
			}

			// branch on the matched impression, not on the bid
			switch {
			case imp.Video != nil:
				result.MediaType = openrtb_ext.BidTypeVideo
				result.VastXml = bid.AdM
			case imp.Native != nil:
				native, err := decodeNativeAd(bid.AdM)
				if err != nil {
					glog.Errorf("%s: dropping bid id=%s, native adm is not valid JSON: %s", bidderCode, bid.ID, err)
					errs = append(errs, &errortypes.BadServerResponse{
						Message: fmt.Sprintf("dropping bid id=%s, native adm is not valid JSON: %s", bid.ID, err),
					})
					continue
				}
				result.MediaType = openrtb_ext.BidTypeNative
				result.Native = native
			default:
				result.MediaType = openrtb_ext.BidTypeBanner
				result.Ad = appendWinPixel(bid.AdM, bid.NURL)
			}

			if len(bid.Ext) > 0 {
				result.Ext = bid.Ext
			}

			results = append(results, result)
		}
	}

	return results, errs
}

// hasIDOrSeatBid probes the raw body without a full unmarshal; a response
// lacking both keys is ignored wholesale.
func hasIDOrSeatBid(body []byte) bool {
	if _, err := jsonparser.GetString(body, "id"); err == nil {
		return true
	}
	if _, _, _, err := jsonparser.Get(body, "seatbid"); err == nil {
		return true
	}
	return false
}

// impForBid resolves the impression a bid answers. Single-impression
// requests match directly since not every exchange echoes impid faithfully
// when there is nothing to disambiguate.
func impForBid(request *openrtb2.BidRequest, impID string) *openrtb2.Imp {
	if request == nil {
		return nil
	}
	if len(request.Imp) == 1 {
		return &request.Imp[0]
	}
	for i := range request.Imp {
		if request.Imp[i].ID == impID {
			return &request.Imp[i]
		}
	}
	return nil
}

// appendWinPixel attaches an invisible tracking image for the win-notice URL
// to banner markup.
func appendWinPixel(adm, nurl string) string {
	if nurl == "" {
		return adm
	}
	decoded, err := url.QueryUnescape(nurl)
	if err != nil {
		decoded = nurl
	}
	return adm + `<div style="position:absolute;left:0px;top:0px;visibility:hidden;"><img src="` + decoded + `"></div>`
}

// OnBidWon substitutes the price macro in the winning bid's markup with the
// clearing price expressed in micros.
func (a *Adapter) OnBidWon(bid *BidResult) {
	if bid == nil {
		return
	}
	price := strconv.FormatInt(int64(math.Round(bid.CPM*1000000)), 10)
	bid.Ad = strings.ReplaceAll(bid.Ad, priceMacro, price)
	bid.VastXml = strings.ReplaceAll(bid.VastXml, priceMacro, price)
}

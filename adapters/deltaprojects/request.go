package deltaprojects

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/deltaprojects/openrtb-adapter/adapters"
	"github.com/deltaprojects/openrtb-adapter/demand"
	"github.com/deltaprojects/openrtb-adapter/errortypes"
	"github.com/deltaprojects/openrtb-adapter/openrtb_ext"
	"github.com/deltaprojects/openrtb-adapter/util/ptrutil"
)

type userExt struct {
	Consent string `json:"consent,omitempty"`
}

type regsExt struct {
	GDPR *int8 `json:"gdpr,omitempty"`
}

// BuildRequests produces one wire request per demand unit, in unit order.
// Units are assumed to have passed IsValid; missing optional fields are
// omitted from the wire, never defaulted.
func (a *Adapter) BuildRequests(units []demand.DemandUnit, auction *demand.AuctionContext) ([]*adapters.RequestData, []error) {
	if len(units) == 0 || auction == nil {
		return nil, nil
	}

	var errs []error

	site := makeSite(units, auction)
	device := makeDevice(&auction.Device)
	user, regs := makeUserRegs(auction.Consent)

	headers := http.Header{}
	headers.Add("Content-Type", "application/json")
	if auction.Device.UA != "" {
		headers.Add("User-Agent", auction.Device.UA)
	}

	reqs := make([]*adapters.RequestData, 0, len(units))
	for i := range units {
		unit := &units[i]

		imp, err := makeImp(unit)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		bidRequest := &openrtb2.BidRequest{
			ID:     auction.AuctionID,
			Imp:    []openrtb2.Imp{imp},
			Site:   site,
			Device: device,
			User:   user,
			Regs:   regs,
			Source: &openrtb2.Source{
				FD:  ptrutil.ToPtr[int8](1),
				TID: unit.TransactionID,
			},
		}
		if unit.Params.Test {
			bidRequest.Test = 1
		}
		if unit.Params.Currency != "" {
			bidRequest.Cur = []string{unit.Params.Currency}
		}
		if auction.TimeoutBudget > 0 {
			bidRequest.TMax = auction.TimeoutBudget
		}

		body, err := json.Marshal(bidRequest)
		if err != nil {
			errs = append(errs, &errortypes.FailedToMarshal{
				Message: fmt.Sprintf("error while encoding bidRequest for unit %s, err: %s", unit.BidID, err),
			})
			continue
		}

		reqs = append(reqs, &adapters.RequestData{
			Method:     http.MethodPost,
			Uri:        a.endpoint,
			Body:       body,
			Headers:    headers,
			BidRequest: bidRequest,
		})
	}

	return reqs, errs
}

// makeSite derives the shared site object. Publisher and site ids come from
// the first unit in the batch that defines them, which lets one slot's
// config apply site-wide.
func makeSite(units []demand.DemandUnit, auction *demand.AuctionContext) *openrtb2.Site {
	site := &openrtb2.Site{
		Page: auction.RefererInfo.Page,
		Ref:  auction.RefererInfo.Ref,
	}
	if pageURL, err := url.Parse(auction.RefererInfo.Page); err == nil {
		site.Domain = pageURL.Hostname()
	}

	site.ID = firstSet(units, func(unit *demand.DemandUnit) string {
		return unit.Params.SiteID
	})
	if publisherID := firstSet(units, func(unit *demand.DemandUnit) string {
		return unit.Params.PublisherID
	}); publisherID != "" {
		site.Publisher = &openrtb2.Publisher{ID: publisherID}
	}

	return site
}

func makeDevice(info *demand.DeviceInfo) *openrtb2.Device {
	return &openrtb2.Device{
		UA: info.UA,
		W:  info.W,
		H:  info.H,
	}
}

// makeUserRegs builds the user and regs objects. Both ext blocks are always
// present, {} when empty; the gdpr key is entirely absent unless the
// applies flag is a definite boolean.
func makeUserRegs(consent *demand.Consent) (*openrtb2.User, *openrtb2.Regs) {
	var userExtData userExt
	var regsExtData regsExt

	if consent != nil {
		userExtData.Consent = consent.ConsentString
		if consent.Applies != nil {
			gdpr := int8(0)
			if *consent.Applies {
				gdpr = 1
			}
			regsExtData.GDPR = &gdpr
		}
	}

	// marshaling these two structs is total
	userExtJSON, _ := json.Marshal(userExtData)
	regsExtJSON, _ := json.Marshal(regsExtData)

	return &openrtb2.User{Ext: userExtJSON}, &openrtb2.Regs{Ext: regsExtJSON}
}

func makeImp(unit *demand.DemandUnit) (openrtb2.Imp, error) {
	imp := openrtb2.Imp{
		ID:    unit.BidID,
		TagID: unit.Params.TagID,
	}

	mediaTypes := unit.MediaTypes
	if mediaTypes.Video != nil && mediaTypes.Video.Context == demand.VideoContextInstream {
		imp.Video = makeVideo(mediaTypes.Video, unit.Params.Video)
	}
	if mediaTypes.Native != nil {
		native, err := makeNative(mediaTypes.Native)
		if err != nil {
			return imp, err
		}
		imp.Native = native
	}
	// banner is the default fallback when no other media type is configured
	if mediaTypes.Banner != nil || (mediaTypes.Video == nil && mediaTypes.Native == nil) {
		imp.Banner = makeBanner(bannerSizes(unit))
	}

	if unit.Params.Floor > 0 {
		imp.BidFloor = unit.Params.Floor
	}

	if len(unit.Params.Ext) > 0 {
		impExt, err := json.Marshal(unit.Params.Ext)
		if err != nil {
			return imp, &errortypes.FailedToMarshal{
				Message: fmt.Sprintf("error while encoding imp ext for unit %s, err: %s", unit.BidID, err),
			}
		}
		imp.Ext = impExt
	}

	return imp, nil
}

// bannerSizes prefers the banner media type's own size list over the legacy
// whole-unit one.
func bannerSizes(unit *demand.DemandUnit) []openrtb2.Format {
	if unit.MediaTypes.Banner != nil && len(unit.MediaTypes.Banner.Sizes) > 0 {
		return unit.MediaTypes.Banner.Sizes
	}
	return unit.Sizes
}

func makeBanner(sizes []openrtb2.Format) *openrtb2.Banner {
	banner := &openrtb2.Banner{}
	if len(sizes) > 0 {
		banner.Format = make([]openrtb2.Format, len(sizes))
		for i, size := range sizes {
			banner.Format[i] = openrtb2.Format{W: size.W, H: size.H}
		}
	}
	return banner
}

func makeVideo(spec *demand.VideoSpec, params *openrtb_ext.ExtImpDeltaProjectsVideo) *openrtb2.Video {
	video := &openrtb2.Video{
		MIMEs:     spec.MIMEs,
		Placement: adcom1.VideoPlacementInStream,
	}
	if video.MIMEs == nil {
		video.MIMEs = []string{}
	}

	if len(spec.PlayerSize) > 0 {
		video.W = ptrutil.ToPtr(spec.PlayerSize[0].W)
		video.H = ptrutil.ToPtr(spec.PlayerSize[0].H)
	}
	if len(spec.Protocols) > 0 {
		video.Protocols = make([]adcom1.MediaCreativeSubtype, len(spec.Protocols))
		for i, p := range spec.Protocols {
			video.Protocols[i] = adcom1.MediaCreativeSubtype(p)
		}
	}
	if len(spec.API) > 0 {
		video.API = make([]adcom1.APIFramework, len(spec.API))
		for i, api := range spec.API {
			video.API[i] = adcom1.APIFramework(api)
		}
	}
	if len(spec.PlaybackMethod) > 0 {
		video.PlaybackMethod = make([]adcom1.PlaybackMethod, len(spec.PlaybackMethod))
		for i, pm := range spec.PlaybackMethod {
			video.PlaybackMethod[i] = adcom1.PlaybackMethod(pm)
		}
	}

	if params != nil {
		if params.MinDuration != nil {
			video.MinDuration = *params.MinDuration
		}
		if params.MaxDuration != nil {
			video.MaxDuration = *params.MaxDuration
		}
		if params.StartDelay != nil {
			video.StartDelay = ptrutil.ToPtr(adcom1.StartDelay(*params.StartDelay))
		}
	}

	return video
}

// firstSet scans the units in order and returns the first non-zero value
// produced by get, so one slot's config can stand in for the whole batch.
func firstSet[T comparable](units []demand.DemandUnit, get func(*demand.DemandUnit) T) T {
	var zero T
	for i := range units {
		if v := get(&units[i]); v != zero {
			return v
		}
	}
	return zero
}

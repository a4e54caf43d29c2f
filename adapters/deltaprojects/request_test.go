package deltaprojects

import (
	"encoding/json"
	"testing"

	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltaprojects/openrtb-adapter/demand"
	"github.com/deltaprojects/openrtb-adapter/openrtb_ext"
	"github.com/deltaprojects/openrtb-adapter/util/ptrutil"
)

func bannerUnit() demand.DemandUnit {
	return demand.DemandUnit{
		Bidder: openrtb_ext.BidderDeltaProjects,
		Params: openrtb_ext.ExtImpDeltaProjects{
			PublisherID: "pub-1",
			SiteID:      "example.com",
			TagID:       "403370",
		},
		Sizes:         []openrtb2.Format{{W: 300, H: 250}},
		TransactionID: "f1e2d3",
		BidID:         "30b31c1838de1e",
	}
}

func testAuction() *demand.AuctionContext {
	return &demand.AuctionContext{
		AuctionID: "1d1a030790a475",
		RefererInfo: demand.RefererInfo{
			Page: "http://example.com/page?param=val",
		},
		Device: demand.DeviceInfo{UA: "test-agent", W: 1920, H: 1080},
	}
}

func TestBuildRequestsBanner(t *testing.T) {
	adapter := testAdapter(t)

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{bannerUnit()}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)

	req := reqs[0]
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "https://test.endpoint/openrtb", req.Uri)
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Equal(t, "test-agent", req.Headers.Get("User-Agent"))

	bidRequest := req.BidRequest
	require.NotNil(t, bidRequest)
	assert.Equal(t, "1d1a030790a475", bidRequest.ID)
	require.Len(t, bidRequest.Imp, 1)

	imp := bidRequest.Imp[0]
	assert.Equal(t, "30b31c1838de1e", imp.ID)
	assert.Equal(t, "403370", imp.TagID)
	require.NotNil(t, imp.Banner)
	assert.Equal(t, []openrtb2.Format{{W: 300, H: 250}}, imp.Banner.Format)
	assert.Nil(t, imp.Video)
	assert.Nil(t, imp.Native)

	assert.Equal(t, "example.com", bidRequest.Site.Domain)
	assert.Equal(t, "http://example.com/page?param=val", bidRequest.Site.Page)
	assert.Equal(t, "example.com", bidRequest.Site.ID)
	require.NotNil(t, bidRequest.Site.Publisher)
	assert.Equal(t, "pub-1", bidRequest.Site.Publisher.ID)

	assert.Equal(t, "test-agent", bidRequest.Device.UA)
	assert.Equal(t, int64(1920), bidRequest.Device.W)
	assert.Equal(t, int64(1080), bidRequest.Device.H)

	require.NotNil(t, bidRequest.Source)
	assert.Equal(t, "f1e2d3", bidRequest.Source.TID)
	assert.Equal(t, ptrutil.ToPtr[int8](1), bidRequest.Source.FD)

	assert.Equal(t, int8(0), bidRequest.Test)
	assert.Empty(t, bidRequest.Cur)
	assert.Zero(t, bidRequest.TMax)

	// the marshaled body must round-trip to the same request
	var decoded openrtb2.BidRequest
	require.NoError(t, json.Unmarshal(req.Body, &decoded))
	assert.Equal(t, bidRequest.ID, decoded.ID)
	assert.Equal(t, bidRequest.Imp, decoded.Imp)
}

func TestBuildRequestsOnePerUnit(t *testing.T) {
	adapter := testAdapter(t)

	first := bannerUnit()
	second := bannerUnit()
	second.BidID = "30b31c1838de1f"
	second.Params.TagID = "403371"

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{first, second}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 2)
	assert.Equal(t, "30b31c1838de1e", reqs[0].BidRequest.Imp[0].ID)
	assert.Equal(t, "30b31c1838de1f", reqs[1].BidRequest.Imp[0].ID)
}

func TestBuildRequestsEmptyBatch(t *testing.T) {
	adapter := testAdapter(t)

	reqs, errs := adapter.BuildRequests(nil, testAuction())
	assert.Nil(t, reqs)
	assert.Nil(t, errs)
}

func TestBuildRequestsFirstMatchSiteConfig(t *testing.T) {
	adapter := testAdapter(t)

	first := bannerUnit()
	first.Params.SiteID = ""
	first.Params.PublisherID = "pub-1"
	second := bannerUnit()
	second.Params.SiteID = "site-from-second"
	second.Params.PublisherID = "pub-2"

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{first, second}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 2)

	// one slot's config applies site-wide, on every request in the batch
	for _, req := range reqs {
		assert.Equal(t, "site-from-second", req.BidRequest.Site.ID)
		assert.Equal(t, "pub-1", req.BidRequest.Site.Publisher.ID)
	}
}

func TestBuildRequestsGDPR(t *testing.T) {
	adapter := testAdapter(t)
	consentString := "BOJ/P2HOJ/P2HABABMAAAAAZ+A=="

	tests := []struct {
		name        string
		consent     *demand.Consent
		wantUserExt string
		wantRegsExt string
	}{
		{
			name:        "applies true",
			consent:     &demand.Consent{Applies: ptrutil.ToPtr(true), ConsentString: consentString},
			wantUserExt: `{"consent":"BOJ/P2HOJ/P2HABABMAAAAAZ+A=="}`,
			wantRegsExt: `{"gdpr":1}`,
		},
		{
			name:        "applies false",
			consent:     &demand.Consent{Applies: ptrutil.ToPtr(false), ConsentString: consentString},
			wantUserExt: `{"consent":"BOJ/P2HOJ/P2HABABMAAAAAZ+A=="}`,
			wantRegsExt: `{"gdpr":0}`,
		},
		{
			name:        "applies unknown",
			consent:     &demand.Consent{ConsentString: consentString},
			wantUserExt: `{"consent":"BOJ/P2HOJ/P2HABABMAAAAAZ+A=="}`,
			wantRegsExt: `{}`,
		},
		{
			name:        "no consent at all",
			consent:     nil,
			wantUserExt: `{}`,
			wantRegsExt: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auction := testAuction()
			auction.Consent = tt.consent

			reqs, errs := adapter.BuildRequests([]demand.DemandUnit{bannerUnit()}, auction)
			assert.Empty(t, errs)
			require.Len(t, reqs, 1)

			bidRequest := reqs[0].BidRequest
			require.NotNil(t, bidRequest.User)
			require.NotNil(t, bidRequest.Regs)
			assert.JSONEq(t, tt.wantUserExt, string(bidRequest.User.Ext))
			assert.JSONEq(t, tt.wantRegsExt, string(bidRequest.Regs.Ext))
		})
	}
}

func TestBuildRequestsNativeAssets(t *testing.T) {
	adapter := testAdapter(t)

	unit := bannerUnit()
	unit.MediaTypes.Native = &demand.NativeSpec{
		Title:       &demand.NativeAssetSpec{Required: true, Len: 100},
		Image:       &demand.NativeAssetSpec{Required: true},
		Icon:        &demand.NativeAssetSpec{Required: true},
		Body:        &demand.NativeAssetSpec{Required: true},
		CTA:         &demand.NativeAssetSpec{Required: true},
		SponsoredBy: &demand.NativeAssetSpec{Required: true},
	}

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{unit}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)

	imp := reqs[0].BidRequest.Imp[0]
	require.NotNil(t, imp.Native)
	assert.Equal(t, "1.1", imp.Native.Ver)
	assert.Nil(t, imp.Banner, "configured native suppresses the banner fallback")

	var payload struct {
		Ver    string            `json:"ver"`
		Assets []json.RawMessage `json:"assets"`
	}
	require.NoError(t, json.Unmarshal([]byte(imp.Native.Request), &payload))
	assert.Equal(t, "1.1", payload.Ver)
	require.Len(t, payload.Assets, 6)

	expected := []string{
		`{"id":0,"required":1,"title":{"len":100}}`,
		`{"id":1,"required":1,"img":{"type":3,"wmin":1,"hmin":1}}`,
		`{"id":2,"required":1,"img":{"type":1,"wmin":1,"hmin":1}}`,
		`{"id":3,"required":1,"data":{"type":2}}`,
		`{"id":4,"required":1,"data":{"type":12}}`,
		`{"id":5,"required":1,"data":{"type":1}}`,
	}
	for i, want := range expected {
		assert.JSONEq(t, want, string(payload.Assets[i]))
	}
}

func TestBuildRequestsNativeSubset(t *testing.T) {
	adapter := testAdapter(t)

	unit := bannerUnit()
	unit.MediaTypes.Native = &demand.NativeSpec{
		Image: &demand.NativeAssetSpec{Required: true},
		Body:  &demand.NativeAssetSpec{},
	}

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{unit}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)

	var payload struct {
		Assets []json.RawMessage `json:"assets"`
	}
	require.NoError(t, json.Unmarshal([]byte(reqs[0].BidRequest.Imp[0].Native.Request), &payload))
	require.Len(t, payload.Assets, 2)

	// ids are positional among present assets, and the required key is
	// entirely absent when not set
	assert.JSONEq(t, `{"id":0,"required":1,"img":{"type":3,"wmin":1,"hmin":1}}`, string(payload.Assets[0]))
	assert.JSONEq(t, `{"id":1,"data":{"type":2}}`, string(payload.Assets[1]))
	assert.NotContains(t, string(payload.Assets[1]), `"required"`)
}

func TestBuildRequestsVideo(t *testing.T) {
	adapter := testAdapter(t)

	unit := bannerUnit()
	unit.Sizes = nil
	unit.Params.Video = &openrtb_ext.ExtImpDeltaProjectsVideo{
		MinDuration: ptrutil.ToPtr[int64](5),
		MaxDuration: ptrutil.ToPtr[int64](10),
		StartDelay:  ptrutil.ToPtr[int64](0),
	}
	unit.MediaTypes.Video = &demand.VideoSpec{
		Context:        demand.VideoContextInstream,
		MIMEs:          []string{"video/x-ms-wmv"},
		PlayerSize:     []openrtb2.Format{{W: 400, H: 300}},
		API:            []int{0},
		Protocols:      []int{2, 3},
		PlaybackMethod: []int{1},
	}

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{unit}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)

	imp := reqs[0].BidRequest.Imp[0]
	require.NotNil(t, imp.Video)
	assert.Nil(t, imp.Banner)

	video := imp.Video
	assert.Equal(t, adcom1.VideoPlacementInStream, video.Placement)
	assert.Equal(t, []string{"video/x-ms-wmv"}, video.MIMEs)
	assert.Equal(t, ptrutil.ToPtr[int64](400), video.W)
	assert.Equal(t, ptrutil.ToPtr[int64](300), video.H)
	assert.Equal(t, []adcom1.MediaCreativeSubtype{2, 3}, video.Protocols)
	assert.Equal(t, []adcom1.APIFramework{0}, video.API)
	assert.Equal(t, []adcom1.PlaybackMethod{1}, video.PlaybackMethod)
	assert.Equal(t, int64(5), video.MinDuration)
	assert.Equal(t, int64(10), video.MaxDuration)
	assert.Equal(t, ptrutil.ToPtr(adcom1.StartDelay(0)), video.StartDelay)
}

func TestBuildRequestsOutstreamVideoBuildsNothing(t *testing.T) {
	adapter := testAdapter(t)

	unit := bannerUnit()
	unit.MediaTypes.Video = &demand.VideoSpec{Context: "outstream"}

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{unit}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)

	imp := reqs[0].BidRequest.Imp[0]
	assert.Nil(t, imp.Video)
	assert.Nil(t, imp.Banner, "configured video suppresses the banner fallback even when not instream")
}

func TestBuildRequestsExplicitBannerBesideVideo(t *testing.T) {
	adapter := testAdapter(t)

	unit := bannerUnit()
	unit.MediaTypes.Banner = &demand.BannerSpec{Sizes: []openrtb2.Format{{W: 728, H: 90}}}
	unit.MediaTypes.Video = &demand.VideoSpec{
		Context:    demand.VideoContextInstream,
		MIMEs:      []string{"video/mp4"},
		PlayerSize: []openrtb2.Format{{W: 640, H: 480}},
	}

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{unit}, testAuction())
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)

	imp := reqs[0].BidRequest.Imp[0]
	require.NotNil(t, imp.Banner)
	require.NotNil(t, imp.Video)
	// media-type sizes win over the legacy whole-unit list
	assert.Equal(t, []openrtb2.Format{{W: 728, H: 90}}, imp.Banner.Format)
}

func TestBuildRequestsOptionalFields(t *testing.T) {
	adapter := testAdapter(t)

	unit := bannerUnit()
	unit.Params.Floor = 0.21
	unit.Params.Currency = "SEK"
	unit.Params.Test = true
	unit.Params.Ext = map[string]json.RawMessage{
		"partner": json.RawMessage(`{"seat":"a1"}`),
	}

	auction := testAuction()
	auction.TimeoutBudget = 500

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{unit}, auction)
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)

	bidRequest := reqs[0].BidRequest
	assert.Equal(t, int8(1), bidRequest.Test)
	assert.Equal(t, []string{"SEK"}, bidRequest.Cur)
	assert.Equal(t, int64(500), bidRequest.TMax)
	assert.Equal(t, 0.21, bidRequest.Imp[0].BidFloor)
	assert.JSONEq(t, `{"partner":{"seat":"a1"}}`, string(bidRequest.Imp[0].Ext))
}

func TestBuildRequestsNonPositiveFloorAndTimeout(t *testing.T) {
	adapter := testAdapter(t)

	unit := bannerUnit()
	unit.Params.Floor = -1

	auction := testAuction()
	auction.TimeoutBudget = -100

	reqs, errs := adapter.BuildRequests([]demand.DemandUnit{unit}, auction)
	assert.Empty(t, errs)
	require.Len(t, reqs, 1)
	assert.Zero(t, reqs[0].BidRequest.TMax)
	assert.Zero(t, reqs[0].BidRequest.Imp[0].BidFloor)
}

package deltaprojects

import (
	"encoding/json"
	"fmt"

	"github.com/prebid/openrtb/v20/native1"
	nativeRequest "github.com/prebid/openrtb/v20/native1/request"
	nativeResponse "github.com/prebid/openrtb/v20/native1/response"
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/deltaprojects/openrtb-adapter/demand"
	"github.com/deltaprojects/openrtb-adapter/errortypes"
)

// Asset ids the exchange uses in native bid markup. These are fixed by the
// wire contract and unrelated to the positional ids assigned on the request
// side.
const (
	nativeAdAssetTitle       = 1
	nativeAdAssetImage       = 2
	nativeAdAssetIcon        = 3
	nativeAdAssetBody        = 4
	nativeAdAssetCTA         = 5
	nativeAdAssetSponsoredBy = 6
)

func makeNative(spec *demand.NativeSpec) (*openrtb2.Native, error) {
	payload, err := json.Marshal(nativeRequest.Request{
		Ver:    supportedNativeVer,
		Assets: makeNativeAssets(spec),
	})
	if err != nil {
		return nil, &errortypes.FailedToMarshal{
			Message: fmt.Sprintf("error while encoding native request, err: %s", err),
		}
	}

	return &openrtb2.Native{
		Request: string(payload),
		Ver:     supportedNativeVer,
	}, nil
}

// makeNativeAssets builds the asset catalog from whichever kinds the spec
// configures, in fixed catalog order. Ids are positional among the present
// assets, starting at 0; the required key is absent entirely unless set.
func makeNativeAssets(spec *demand.NativeSpec) []nativeRequest.Asset {
	assets := make([]nativeRequest.Asset, 0, 6)

	add := func(cfg *demand.NativeAssetSpec, asset nativeRequest.Asset) {
		if cfg == nil {
			return
		}
		asset.ID = int64(len(assets))
		if cfg.Required {
			asset.Required = 1
		}
		assets = append(assets, asset)
	}

	var titleLen int64
	if spec.Title != nil {
		titleLen = spec.Title.Len
	}
	add(spec.Title, nativeRequest.Asset{
		Title: &nativeRequest.Title{Len: titleLen},
	})
	add(spec.Image, nativeRequest.Asset{
		Img: &nativeRequest.Image{Type: native1.ImageAssetTypeMain, WMin: 1, HMin: 1},
	})
	add(spec.Icon, nativeRequest.Asset{
		Img: &nativeRequest.Image{Type: native1.ImageAssetTypeIcon, WMin: 1, HMin: 1},
	})
	add(spec.Body, nativeRequest.Asset{
		Data: &nativeRequest.Data{Type: native1.DataAssetTypeDesc},
	})
	add(spec.CTA, nativeRequest.Asset{
		Data: &nativeRequest.Data{Type: native1.DataAssetTypeCTAText},
	})
	add(spec.SponsoredBy, nativeRequest.Asset{
		Data: &nativeRequest.Data{Type: native1.DataAssetTypeSponsored},
	})

	return assets
}

// NativeAd is the decoded form of a native bid's markup.
type NativeAd struct {
	ClickURL    string       `json:"clickUrl,omitempty"`
	Title       string       `json:"title,omitempty"`
	Image       *NativeImage `json:"image,omitempty"`
	Icon        *NativeImage `json:"icon,omitempty"`
	Body        string       `json:"body,omitempty"`
	CTA         string       `json:"cta,omitempty"`
	SponsoredBy string       `json:"sponsoredBy,omitempty"`
}

// NativeImage serializes as a plain URL string when the exchange returned no
// dimensions, and as {url,width,height} when it did.
type NativeImage struct {
	URL    string
	Width  int64
	Height int64
}

func (img NativeImage) MarshalJSON() ([]byte, error) {
	if img.Width == 0 && img.Height == 0 {
		return json.Marshal(img.URL)
	}
	return json.Marshal(struct {
		URL    string `json:"url"`
		Width  int64  `json:"width"`
		Height int64  `json:"height"`
	}{img.URL, img.Width, img.Height})
}

// decodeNativeAd parses a native bid's adm. A parse failure drops only the
// one bid carrying it. Only link and assets are read; the exchange
// serializes ver as a bare number, so decoding the full response shape
// would reject otherwise valid markup.
func decodeNativeAd(adm string) (*NativeAd, error) {
	var payload struct {
		Link   nativeResponse.Link    `json:"link"`
		Assets []nativeResponse.Asset `json:"assets"`
	}
	if err := json.Unmarshal([]byte(adm), &payload); err != nil {
		return nil, err
	}

	ad := &NativeAd{ClickURL: payload.Link.URL}
	for _, asset := range payload.Assets {
		if asset.ID == nil {
			continue
		}
		switch *asset.ID {
		case nativeAdAssetTitle:
			if asset.Title != nil {
				ad.Title = asset.Title.Text
			}
		case nativeAdAssetImage:
			if asset.Img != nil {
				ad.Image = makeNativeImage(asset.Img)
			}
		case nativeAdAssetIcon:
			if asset.Img != nil {
				ad.Icon = makeNativeImage(asset.Img)
			}
		case nativeAdAssetBody:
			if asset.Data != nil {
				ad.Body = asset.Data.Value
			}
		case nativeAdAssetCTA:
			if asset.Data != nil {
				ad.CTA = asset.Data.Value
			}
		case nativeAdAssetSponsoredBy:
			if asset.Data != nil {
				ad.SponsoredBy = asset.Data.Value
			}
		}
	}

	return ad, nil
}

func makeNativeImage(img *nativeResponse.Image) *NativeImage {
	return &NativeImage{
		URL:    img.URL,
		Width:  img.W,
		Height: img.H,
	}
}

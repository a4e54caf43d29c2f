package deltaprojects

import (
	"net/url"

	"github.com/deltaprojects/openrtb-adapter/adapters"
	"github.com/deltaprojects/openrtb-adapter/demand"
	"github.com/deltaprojects/openrtb-adapter/usersync"
)

// GetUserSyncs returns at most one pixel sync against the configured sync
// endpoint. The gdpr parameter is attached only when the applies flag is a
// definite boolean; the consent string rides along whenever consent info is
// present at all.
func (a *Adapter) GetUserSyncs(opts usersync.Options, responses []*adapters.ResponseData, consent *demand.Consent) []usersync.Sync {
	if !opts.PixelEnabled || a.userSyncURL == "" {
		return nil
	}

	syncURL := a.userSyncURL
	if consent != nil {
		params := url.Values{}
		if consent.Applies != nil {
			if *consent.Applies {
				params.Set("gdpr", "1")
			} else {
				params.Set("gdpr", "0")
			}
		}
		params.Set("gdpr_consent", consent.ConsentString)
		syncURL += "?" + params.Encode()
	}

	return []usersync.Sync{{
		URL:  syncURL,
		Type: usersync.SyncTypePixel,
	}}
}

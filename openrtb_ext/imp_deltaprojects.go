package openrtb_ext

import "encoding/json"

// ExtImpDeltaProjects defines the publisher-facing parameters of a single
// demand unit. PublisherID is the only field the validator insists on; the
// rest tune the wire impression built for the unit.
type ExtImpDeltaProjects struct {
	PublisherID string  `json:"publisherId"`
	SiteID      string  `json:"siteId,omitempty"`
	TagID       string  `json:"tagId,omitempty"`
	Floor       float64 `json:"floor,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Test        bool    `json:"test,omitempty"`

	Video *ExtImpDeltaProjectsVideo `json:"video,omitempty"`

	// Ext holds partner-keyed blocks copied verbatim into the wire
	// impression's ext under each partner's key.
	Ext map[string]json.RawMessage `json:"ext,omitempty"`
}

// ExtImpDeltaProjectsVideo carries the per-unit video tuning. Pointer fields
// distinguish "not configured" from an explicit zero; startdelay 0 in
// particular means pre-roll and must survive to the wire.
type ExtImpDeltaProjectsVideo struct {
	MinDuration *int64 `json:"minduration,omitempty"`
	MaxDuration *int64 `json:"maxduration,omitempty"`
	StartDelay  *int64 `json:"startdelay,omitempty"`
}

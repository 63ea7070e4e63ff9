package domain

import (
	"encoding/json"
	"time"
)

// CostModel is the pricing basis applied to a content's views or actions.
type CostModel string

const (
	CostPerAction  CostModel = "cpa"
	CostPerClick   CostModel = "cpc"
	CostPerView    CostModel = "cpv"
	CostPerInstall CostModel = "cpi"
	CostPerReach   CostModel = "cpr"
)

// ContentKind distinguishes Instagram media subtypes. A single video
// carries at most one file, an album carries up to ten images.
type ContentKind string

const (
	KindDefault ContentKind = ""
	KindVideo   ContentKind = "video"
	KindAlbum   ContentKind = "album"
)

// Content is one creative unit of a campaign. Contents are created and
// edited while the campaign is in draft and frozen once it is approved.
type Content struct {
	ID             int64
	CampaignID     int64
	Title          string
	Landing        json.RawMessage
	CostModel      CostModel
	CostModelPrice int64 // integer units; CPV prices are per thousand views
	Kind           ContentKind
	FileIDs        []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

package models

// Requests for market HTTP endpoints. Defined in domain for consistency and reuse.

type AlertsRequest struct {
	Pair  string `query:"pair" json:"pair"`
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=200"`
	Since int64  `query:"since" json:"since" validate:"gte=0"`
}

type SnapshotRequest struct {
	Pair    string `query:"pair" json:"pair" validate:"required"`
	Windows []int  `query:"windows" json:"windows"`
}

type CandlesRequest struct {
	Pair     string `query:"pair" json:"pair" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1m" validate:"oneof=1m 15m 1h 4h 1d"`
	From     string `query:"from" json:"from"`
	To       string `query:"to" json:"to"`
	Limit    int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=5000"`
}

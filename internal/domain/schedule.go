package domain

// ChannelListing groups one channel's raw broadcasts for a single day.
type ChannelListing struct {
	Channel  Channel           `json:"channel"`
	Programs []*BroadcastEntry `json:"programs"`
	Count    int               `json:"count"`
}

type DayMetadata struct {
	Timestamp            string `json:"timestamp"`
	TargetDate           string `json:"target_date"`
	TotalChannels        int    `json:"total_channels"`
	ChannelsWithPrograms int    `json:"channels_with_programs"`
}

// DaySchedule is the persisted unit of the 7-day rolling window: everything
// fetched for one date, keyed by channel. Stored raw; annotation is derived
// per request so exclusion changes apply retroactively.
type DaySchedule struct {
	Metadata DayMetadata                `json:"metadata"`
	Programs map[string]*ChannelListing `json:"programs"`
}

// AnnotatedChannelListing is the response-side counterpart of
// ChannelListing with annotations applied.
type AnnotatedChannelListing struct {
	Channel  Channel               `json:"channel"`
	Programs []*AnnotatedBroadcast `json:"programs"`
	Count    int                   `json:"count"`
}

type AnnotatedDaySchedule struct {
	Metadata DayMetadata                         `json:"metadata"`
	Programs map[string]*AnnotatedChannelListing `json:"programs"`
}

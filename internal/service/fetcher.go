package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kpenchev/tvprograma-go/internal/constants"
	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Fetcher scrapes every active channel for one date, stores the raw result
// as that date's DaySchedule and prunes days that fell out of the rolling
// window. Annotation happens at read time, not here.
type Fetcher struct {
	scraper     *ListingsScraper
	channels    *ChannelRepository
	programs    *ProgramRepository
	logger      *zap.Logger
	concurrency int
}

func NewFetcher(
	scraper *ListingsScraper,
	channels *ChannelRepository,
	programs *ProgramRepository,
	concurrency int,
	logger *zap.Logger,
) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		scraper:     scraper,
		channels:    channels,
		programs:    programs,
		logger:      logger,
		concurrency: concurrency,
	}
}

// TargetDate maps a listings date path onto the concrete Sofia date it
// refers to. Unknown paths mean today.
func TargetDate(datePath string) string {
	switch datePath {
	case DatePathYesterday:
		return util.DateOffset(-1)
	case DatePathTomorrow:
		return util.DateOffset(1)
	default:
		return util.Today()
	}
}

// FetchDay scrapes all active channels for the given date path, persists
// the assembled schedule and returns it.
func (f *Fetcher) FetchDay(ctx context.Context, datePath string) (*domain.DaySchedule, error) {
	targetDate := TargetDate(datePath)

	channels, err := f.channels.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	schedule := &domain.DaySchedule{
		Metadata: domain.DayMetadata{
			Timestamp:     util.NowSofia().Format(time.RFC3339),
			TargetDate:    targetDate,
			TotalChannels: len(channels),
		},
		Programs: make(map[string]*domain.ChannelListing),
	}

	if len(channels) == 0 {
		f.logger.Warn("No active channels to fetch")
		return schedule, f.programs.SaveDay(ctx, targetDate, schedule)
	}

	f.logger.Info("Fetching programs",
		zap.String("date_path", datePath),
		zap.String("target_date", targetDate),
		zap.Int("channels", len(channels)),
	)

	listings := make([]*domain.ChannelListing, len(channels))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(f.concurrency)
	for idx, channel := range channels {
		idx, channel := idx, channel
		p.Go(func() {
			programs, err := f.scraper.FetchPrograms(ctx, channel.ID, datePath)
			if err != nil {
				f.logger.Warn("Channel fetch failed",
					zap.String("channel", channel.ID),
					zap.Error(err),
				)
				return
			}
			if len(programs) == 0 {
				return
			}

			for _, program := range programs {
				program.ChannelID = channel.ID
				program.ChannelName = channel.Name
				program.ChannelIcon = channel.Icon
				program.Date = targetDate
			}

			mu.Lock()
			listings[idx] = &domain.ChannelListing{
				Channel:  channel,
				Programs: programs,
				Count:    len(programs),
			}
			mu.Unlock()
		})
	}
	p.Wait()

	for _, listing := range listings {
		if listing == nil {
			continue
		}
		schedule.Programs[listing.Channel.ID] = listing
		schedule.Metadata.ChannelsWithPrograms++
	}

	if err := f.programs.SaveDay(ctx, targetDate, schedule); err != nil {
		return nil, err
	}

	cutoff := util.DateOffset(-(constants.WindowConfig.Days - 1))
	if _, err := f.programs.DeleteOlderThan(ctx, cutoff); err != nil {
		// Pruning failure leaves stale rows behind but the fetch itself
		// succeeded; next run retries.
		f.logger.Warn("Window pruning failed", zap.Error(err))
	}

	f.logger.Info("Fetch complete",
		zap.String("target_date", targetDate),
		zap.Int("channels_with_programs", schedule.Metadata.ChannelsWithPrograms),
	)

	return schedule, nil
}

// Summary renders a short human-readable fetch report for the CLI tool.
func Summary(schedule *domain.DaySchedule) string {
	out := fmt.Sprintf("date %s: %d/%d channels with programs\n",
		schedule.Metadata.TargetDate,
		schedule.Metadata.ChannelsWithPrograms,
		schedule.Metadata.TotalChannels,
	)
	for id, listing := range schedule.Programs {
		out += fmt.Sprintf("  %-24s %3d programs\n", id, listing.Count)
	}
	return out
}

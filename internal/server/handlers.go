package server

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/kpenchev/tvprograma-go/internal/constants"
	"github.com/kpenchev/tvprograma-go/internal/domain"
	"github.com/kpenchev/tvprograma-go/internal/service"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

const aggregateFilmsKey = "aggregate:oscars:7days"

var dateParamRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func dayScheduleKey(date string) string {
	return "programs:day:" + date
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"listings_base_url": s.cfg.Listings.BaseURL,
		"series_markers":    s.cfg.Listings.SeriesMarkers,
		"watch_region":      s.cfg.TMDB.WatchRegion,
		"window_days":       constants.WindowConfig.Days,
		"fetch_cron":        s.cfg.Fetch.CronSpec,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	dates, err := s.deps.Programs.ListDates(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	total, active, err := s.deps.Channels.Count(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stored_dates":    dates,
		"channels_total":  total,
		"channels_active": active,
		"catalog_films":   s.deps.Catalog.Len(),
		"exclusion_rules": s.deps.Exclusions.Len(),
		"redis_connected": s.deps.Cache.IsConnected(ctx),
	})
}

func (s *Server) handleFetch(c *gin.Context) {
	var body struct {
		DatePath string `json:"date_path"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.DatePath == "" {
		body.DatePath = service.DatePathToday
	}

	schedule, err := s.deps.Fetcher.FetchDay(c.Request.Context(), body.DatePath)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.invalidateDerived(c)
	c.JSON(http.StatusOK, gin.H{"metadata": schedule.Metadata})
}

func (s *Server) handlePrograms(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = util.Today()
	}
	if !dateParamRe.MatchString(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	ctx := c.Request.Context()
	key := dayScheduleKey(date)

	var cached domain.AnnotatedDaySchedule
	if found, err := s.deps.Cache.Get(ctx, key, &cached); err == nil && found {
		c.JSON(http.StatusOK, &cached)
		return
	}

	schedule, err := s.deps.Programs.LoadDay(ctx, date)
	if err != nil {
		s.fail(c, err)
		return
	}
	if schedule == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no schedule stored for " + date})
		return
	}

	annotated, err := s.deps.Annotator.AnnotateSchedule(ctx, schedule)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.deps.Cache.Set(ctx, key, annotated, constants.CacheTTL.DaySchedule); err != nil {
		s.logger.Warn("Day schedule cache write failed", zap.String("date", date), zap.Error(err))
	}
	c.JSON(http.StatusOK, annotated)
}

func (s *Server) handleProgramsWindow(c *gin.Context) {
	ctx := c.Request.Context()
	dates := util.LastNDates(constants.WindowConfig.Days)

	window, err := s.deps.Programs.LoadWindow(ctx, dates)
	if err != nil {
		s.fail(c, err)
		return
	}

	days := make(map[string]*domain.AnnotatedDaySchedule, len(window))
	for date, schedule := range window {
		annotated, err := s.deps.Annotator.AnnotateSchedule(ctx, schedule)
		if err != nil {
			s.fail(c, err)
			return
		}
		days[date] = annotated
	}

	c.JSON(http.StatusOK, gin.H{
		"dates": dates,
		"days":  days,
	})
}

func (s *Server) handleChannels(c *gin.Context) {
	channels, err := s.deps.Channels.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels, "count": len(channels)})
}

func (s *Server) handleActiveChannels(c *gin.Context) {
	channels, err := s.deps.Channels.ListActive(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels, "count": len(channels)})
}

func (s *Server) handleUpdateChannels(c *gin.Context) {
	var body struct {
		Channels []domain.Channel `json:"channels"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel list: " + err.Error()})
		return
	}
	if len(body.Channels) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel list is empty"})
		return
	}
	for _, ch := range body.Channels {
		if ch.ID == "" || ch.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every channel needs id and name"})
			return
		}
	}

	if err := s.deps.Channels.UpsertAll(c.Request.Context(), body.Channels); err != nil {
		s.fail(c, err)
		return
	}

	s.invalidateDerived(c)
	c.JSON(http.StatusOK, gin.H{"updated": len(body.Channels)})
}

func (s *Server) handleToggleChannel(c *gin.Context) {
	id := c.Param("id")

	active, found, err := s.deps.Channels.Toggle(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown channel " + id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "active": active})
}

// handleOscars serves the grouped film view over the rolling window. The
// result is cached briefly; every exclusion or channel mutation drops the
// cache so the next read reflects it.
func (s *Server) handleOscars(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []*domain.GroupedFilm
	if found, err := s.deps.Cache.Get(ctx, aggregateFilmsKey, &cached); err == nil && found {
		c.JSON(http.StatusOK, gin.H{"films": cached, "count": len(cached)})
		return
	}

	dates := util.LastNDates(constants.WindowConfig.Days)
	window, err := s.deps.Programs.LoadWindow(ctx, dates)
	if err != nil {
		s.fail(c, err)
		return
	}

	var all []*domain.AnnotatedBroadcast
	for _, date := range dates {
		schedule, ok := window[date]
		if !ok {
			continue
		}
		for _, listing := range schedule.Programs {
			annotated, err := s.deps.Annotator.AnnotateAll(ctx, listing.Programs)
			if err != nil {
				s.fail(c, err)
				return
			}
			all = append(all, annotated...)
		}
	}

	films := s.deps.Aggregator.Aggregate(all)

	if err := s.deps.Cache.Set(ctx, aggregateFilmsKey, films, constants.CacheTTL.AggregateFilms); err != nil {
		s.logger.Warn("Aggregate cache write failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"films": films, "count": len(films)})
}

func (s *Server) handleOscarsCatalog(c *gin.Context) {
	entries := s.deps.Catalog.All()
	c.JSON(http.StatusOK, gin.H{"films": entries, "count": len(entries)})
}

func (s *Server) handleListExclusions(c *gin.Context) {
	rules := s.deps.Exclusions.List()
	c.JSON(http.StatusOK, gin.H{"exclusions": rules, "count": len(rules)})
}

func (s *Server) handleAddExclusion(c *gin.Context) {
	var rule domain.ExclusionRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exclusion rule: " + err.Error()})
		return
	}
	if err := rule.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.deps.Exclusions.Add(c.Request.Context(), rule); err != nil {
		s.fail(c, err)
		return
	}

	s.invalidateDerived(c)
	c.JSON(http.StatusOK, gin.H{"added": true, "rules": s.deps.Exclusions.Len()})
}

func (s *Server) handleRemoveExclusion(c *gin.Context) {
	var rule domain.ExclusionRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exclusion rule: " + err.Error()})
		return
	}
	if err := rule.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := s.deps.Exclusions.Remove(c.Request.Context(), rule)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching exclusion rule"})
		return
	}

	s.invalidateDerived(c)
	c.JSON(http.StatusOK, gin.H{"removed": true, "rules": s.deps.Exclusions.Len()})
}

// invalidateDerived drops every cached view that bakes annotations in, so
// rule and channel changes become visible on the next request.
func (s *Server) invalidateDerived(c *gin.Context) {
	keys := []string{aggregateFilmsKey}
	for _, date := range util.LastNDates(constants.WindowConfig.Days) {
		keys = append(keys, dayScheduleKey(date))
	}
	keys = append(keys, dayScheduleKey(util.DateOffset(1)))

	if err := s.deps.Cache.Del(c.Request.Context(), keys...); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}
}

// fail maps service errors onto a 500; the typed error message is safe to
// show, the cause stays in the logs.
func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/models"
)

const (
	defaultRevenueLimit = 10
	maxRevenueLimit     = 100
	defaultClickLimit   = 100
	maxClickLimit       = 500
	defaultSinceDays    = 30
	defaultTraceEvents  = 500
	maxTraceEvents      = 2000
	defaultCohortUsers  = 50
	maxCohortUsers      = 500
	cohortTopSequences  = 20

	minReportYear = 2000
	maxReportYear = 2100
)

// clickAnalyticsStore is the slice of the document store the reports need.
// Narrowed to an interface so tests can run without a live server.
type clickAnalyticsStore interface {
	EventsByUser(ctx context.Context, userID string, limit int) ([]models.ClickstreamEvent, error)
	EventsByUsers(ctx context.Context, userIDs []string, limit int) ([]models.ClickstreamEvent, error)
	PageClickStats(ctx context.Context, since time.Time, limit int) ([]models.PageClickStat, error)
	ListingClickStats(ctx context.Context, since time.Time, limit int) ([]models.ListingClickStat, error)
}

// AnalyticsService composes the admin reports. Relational and document
// aggregations stay independent; anything that needs both is merged here in
// application code.
type AnalyticsService struct {
	analytics *database.AnalyticsRepository
	users     *database.UserRepository
	clicks    clickAnalyticsStore
	logger    *logrus.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analytics *database.AnalyticsRepository, users *database.UserRepository, clicks clickAnalyticsStore, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		analytics: analytics,
		users:     users,
		clicks:    clicks,
		logger:    logger,
	}
}

// TopPropertiesByRevenue ranks listings by confirmed revenue for one year.
// The resolved year is returned so the handler can echo it.
func (s *AnalyticsService) TopPropertiesByRevenue(yearRaw, limitRaw string) (int, []models.PropertyRevenue, error) {
	year, err := parseYear(yearRaw)
	if err != nil {
		return 0, nil, err
	}
	limit := parseClampedLimit(limitRaw, defaultRevenueLimit, maxRevenueLimit)

	start, end := yearWindow(year)
	rows, err := s.analytics.TopPropertiesByRevenue(start, end, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to rank properties by revenue")
		return 0, nil, models.Internal(err)
	}
	if rows == nil {
		rows = []models.PropertyRevenue{}
	}

	s.logger.WithFields(logrus.Fields{
		"year": year,
		"rows": len(rows),
	}).Info("Property revenue report built")

	return year, rows, nil
}

// CityRevenueForYear merges hotel, car and flight revenue per city. The
// three aggregations run concurrently and are summed here.
func (s *AnalyticsService) CityRevenueForYear(yearRaw string) (int, []models.CityRevenue, error) {
	year, err := parseYear(yearRaw)
	if err != nil {
		return 0, nil, err
	}

	start, end := yearWindow(year)

	var hotelRows, carRows, flightRows []models.CityRevenue
	var g errgroup.Group
	g.Go(func() error {
		var err error
		hotelRows, err = s.analytics.HotelRevenueByCity(start, end)
		return err
	})
	g.Go(func() error {
		var err error
		carRows, err = s.analytics.CarRevenueByCity(start, end)
		return err
	})
	g.Go(func() error {
		var err error
		flightRows, err = s.analytics.FlightRevenueByCity(start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).Error("Failed to aggregate city revenue")
		return 0, nil, models.Internal(err)
	}

	merged := map[string]*models.CityRevenue{}
	add := func(rows []models.CityRevenue) {
		for _, row := range rows {
			city := strings.TrimSpace(row.City)
			if city == "" {
				city = "Unknown"
			}
			entry, ok := merged[city]
			if !ok {
				entry = &models.CityRevenue{City: city}
				merged[city] = entry
			}
			entry.TotalRevenue += row.TotalRevenue
			entry.Bookings += row.Bookings
		}
	}
	add(hotelRows)
	add(carRows)
	add(flightRows)

	cities := make([]models.CityRevenue, 0, len(merged))
	for _, entry := range merged {
		cities = append(cities, *entry)
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].TotalRevenue != cities[j].TotalRevenue {
			return cities[i].TotalRevenue > cities[j].TotalRevenue
		}
		return cities[i].City < cities[j].City
	})

	s.logger.WithFields(logrus.Fields{
		"year":   year,
		"cities": len(cities),
	}).Info("City revenue report built")

	return year, cities, nil
}

// TopProvidersForMonth ranks sellers by confirmed revenue in one calendar
// month. The resolved year and month are returned for the handler to echo.
func (s *AnalyticsService) TopProvidersForMonth(yearRaw, monthRaw, limitRaw string) (int, int, []models.ProviderStat, error) {
	year, err := parseYear(yearRaw)
	if err != nil {
		return 0, 0, nil, err
	}
	month, err := parseMonth(monthRaw)
	if err != nil {
		return 0, 0, nil, err
	}
	limit := parseClampedLimit(limitRaw, defaultRevenueLimit, maxRevenueLimit)

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	rows, err := s.analytics.TopProviders(start, end, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to rank providers")
		return 0, 0, nil, models.Internal(err)
	}
	if rows == nil {
		rows = []models.ProviderStat{}
	}

	return year, month, rows, nil
}

// PageClickStats counts clickstream events per (page, eventType) in the
// trailing window
func (s *AnalyticsService) PageClickStats(ctx context.Context, sinceDaysRaw, limitRaw string) ([]models.PageClickStat, error) {
	since := time.Now().UTC().AddDate(0, 0, -parseSinceDays(sinceDaysRaw))
	limit := parseClampedLimit(limitRaw, defaultClickLimit, maxClickLimit)

	stats, err := s.clicks.PageClickStats(ctx, since, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to aggregate page clicks")
		return nil, models.Internal(err)
	}
	if stats == nil {
		stats = []models.PageClickStat{}
	}

	return stats, nil
}

// ListingClickStats counts clickstream events per (listingType, listingId)
// in the trailing window
func (s *AnalyticsService) ListingClickStats(ctx context.Context, sinceDaysRaw, limitRaw string) ([]models.ListingClickStat, error) {
	since := time.Now().UTC().AddDate(0, 0, -parseSinceDays(sinceDaysRaw))
	limit := parseClampedLimit(limitRaw, defaultClickLimit, maxClickLimit)

	stats, err := s.clicks.ListingClickStats(ctx, since, limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to aggregate listing clicks")
		return nil, models.Internal(err)
	}
	if stats == nil {
		stats = []models.ListingClickStat{}
	}

	return stats, nil
}

// UserTrace partitions one user's events into per-session page walks,
// preserving event order within each session
func (s *AnalyticsService) UserTrace(ctx context.Context, userIDRaw, limitEventsRaw string) (*models.UserTrace, error) {
	userID, err := uuid.Parse(strings.TrimSpace(userIDRaw))
	if err != nil {
		return nil, models.ErrUserNotFound
	}
	limitEvents := parseClampedLimit(limitEventsRaw, defaultTraceEvents, maxTraceEvents)

	events, err := s.clicks.EventsByUser(ctx, userID.String(), limitEvents)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load user events")
		return nil, models.Internal(err)
	}

	trace := &models.UserTrace{
		UserID:   userID.String(),
		Sessions: []models.SessionTrace{},
	}

	index := map[string]int{}
	for i := range events {
		event := &events[i]
		createdAt := event.CreatedAt

		idx, ok := index[event.SessionID]
		if !ok {
			idx = len(trace.Sessions)
			index[event.SessionID] = idx
			trace.Sessions = append(trace.Sessions, models.SessionTrace{
				SessionID: event.SessionID,
				Pages:     []string{},
				FirstAt:   &createdAt,
			})
		}

		session := &trace.Sessions[idx]
		session.EventCount++
		session.LastAt = &createdAt
		if n := len(session.Pages); n == 0 || session.Pages[n-1] != event.Page {
			session.Pages = append(session.Pages, event.Page)
		}
		trace.EventCount++
	}

	return trace, nil
}

// CohortTraceByCity finds the page sequences most shared by users whose
// profile city matches. Matching is case-insensitive on the relational side.
func (s *AnalyticsService) CohortTraceByCity(ctx context.Context, cityRaw, limitUsersRaw, limitEventsRaw string) (*models.CohortTrace, error) {
	city := strings.TrimSpace(cityRaw)
	if city == "" {
		return nil, models.MissingField("city")
	}
	limitUsers := parseClampedLimit(limitUsersRaw, defaultCohortUsers, maxCohortUsers)
	limitEvents := parseClampedLimit(limitEventsRaw, defaultTraceEvents, maxTraceEvents)

	userIDs, err := s.users.IDsByCity(city)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list cohort users")
		return nil, models.Internal(err)
	}
	if len(userIDs) > limitUsers {
		userIDs = userIDs[:limitUsers]
	}

	trace := &models.CohortTrace{
		City:         city,
		UserCount:    len(userIDs),
		TopSequences: []models.CohortSequence{},
	}
	if len(userIDs) == 0 {
		return trace, nil
	}

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}

	events, err := s.clicks.EventsByUsers(ctx, ids, limitEvents)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load cohort events")
		return nil, models.Internal(err)
	}

	// Events arrive sorted by user then time, so one pass builds every
	// (user, session) page walk.
	type sessionKey struct {
		userID    string
		sessionID string
	}
	walks := map[sessionKey][]string{}
	for i := range events {
		key := sessionKey{userID: events[i].UserID, sessionID: events[i].SessionID}
		pages := walks[key]
		if n := len(pages); n == 0 || pages[n-1] != events[i].Page {
			walks[key] = append(pages, events[i].Page)
		}
	}
	trace.SessionCount = len(walks)

	counts := map[string]int{}
	shapes := map[string][]string{}
	for _, pages := range walks {
		key := strings.Join(pages, "\x1f")
		counts[key]++
		shapes[key] = pages
	}

	for key, count := range counts {
		trace.TopSequences = append(trace.TopSequences, models.CohortSequence{
			Pages: shapes[key],
			Count: count,
		})
	}
	sort.Slice(trace.TopSequences, func(i, j int) bool {
		if trace.TopSequences[i].Count != trace.TopSequences[j].Count {
			return trace.TopSequences[i].Count > trace.TopSequences[j].Count
		}
		return strings.Join(trace.TopSequences[i].Pages, "\x1f") < strings.Join(trace.TopSequences[j].Pages, "\x1f")
	})
	if len(trace.TopSequences) > cohortTopSequences {
		trace.TopSequences = trace.TopSequences[:cohortTopSequences]
	}

	s.logger.WithFields(logrus.Fields{
		"city":     city,
		"users":    trace.UserCount,
		"sessions": trace.SessionCount,
	}).Info("Cohort trace built")

	return trace, nil
}

func parseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC().Year(), nil
	}

	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.ErrInvalidYear.WithCause(err)
	}
	if year < minReportYear || year > maxReportYear {
		return 0, models.ErrInvalidYear
	}

	return year, nil
}

func parseMonth(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return int(time.Now().UTC().Month()), nil
	}

	month, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.ErrInvalidMonth.WithCause(err)
	}
	if month < 1 || month > 12 {
		return 0, models.ErrInvalidMonth
	}

	return month, nil
}

func parseSinceDays(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultSinceDays
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		return defaultSinceDays
	}
	if days < 0 {
		return 0
	}

	return days
}

func parseClampedLimit(raw string, def, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}

	return limit
}

func yearWindow(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

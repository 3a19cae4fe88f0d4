package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

const (
	// DefaultRemoteURL is the xmlcalendar.ru production calendar endpoint
	DefaultRemoteURL   = "https://xmlcalendar.ru/data/ru/{year}/calendar.json"
	defaultHTTPTimeout = 10 * time.Second
)

// productionYear represents xmlcalendar.ru JSON structure
type productionYear struct {
	Year      int               `json:"year"`
	Months    []productionMonth `json:"months"`
	Statistic struct {
		Workdays int `json:"workdays"`
		Holidays int `json:"holidays"`
	} `json:"statistic"`
}

type productionMonth struct {
	Month int    `json:"month"`
	Days  string `json:"days"` // "1,2,3+,4,7*,8" where * = shortened, + = transferred
}

// RemoteSource downloads yearly production calendars and turns their
// non-working days into holiday periods
type RemoteSource struct {
	httpClient *http.Client
	urlPattern string
	years      []int
	logger     *zap.Logger

	cacheMu sync.RWMutex
	cache   map[int][]calendar.HolidayPeriod
}

// NewRemoteSource creates a new RemoteSource. urlPattern must contain "{year}".
func NewRemoteSource(urlPattern string, years []int, timeout time.Duration, logger *zap.Logger) *RemoteSource {
	if urlPattern == "" {
		urlPattern = DefaultRemoteURL
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &RemoteSource{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		urlPattern: urlPattern,
		years:      append([]int(nil), years...),
		logger:     logger,
		cache:      make(map[int][]calendar.HolidayPeriod),
	}
}

// Holidays returns the non-working days of every configured year
func (rs *RemoteSource) Holidays(ctx context.Context) ([]calendar.HolidayPeriod, error) {
	var all []calendar.HolidayPeriod
	for _, year := range rs.years {
		periods, err := rs.Year(ctx, year)
		if err != nil {
			return nil, err
		}
		all = append(all, periods...)
	}
	return all, nil
}

// Year returns the non-working days of one year, downloading it once
func (rs *RemoteSource) Year(ctx context.Context, year int) ([]calendar.HolidayPeriod, error) {
	rs.cacheMu.RLock()
	cached, ok := rs.cache[year]
	rs.cacheMu.RUnlock()
	if ok {
		rs.logger.Debug("Using cached production calendar", zap.Int("year", year))
		return cached, nil
	}

	data, err := rs.download(ctx, year)
	if err != nil {
		return nil, err
	}

	periods, err := convertYear(year, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse production calendar %d: %w", year, err)
	}

	rs.cacheMu.Lock()
	rs.cache[year] = periods
	rs.cacheMu.Unlock()

	return periods, nil
}

// ClearCache drops all downloaded years
func (rs *RemoteSource) ClearCache() {
	rs.cacheMu.Lock()
	defer rs.cacheMu.Unlock()

	rs.cache = make(map[int][]calendar.HolidayPeriod)
	rs.logger.Info("Production calendar cache cleared")
}

func (rs *RemoteSource) download(ctx context.Context, year int) (*productionYear, error) {
	url := strings.ReplaceAll(rs.urlPattern, "{year}", strconv.Itoa(year))

	rs.logger.Info("Downloading production calendar",
		zap.String("url", url),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := rs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch production calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("production calendar returned status %d", resp.StatusCode)
	}

	var data productionYear
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse production calendar JSON: %w", err)
	}

	rs.logger.Info("Production calendar downloaded",
		zap.Int("year", year),
		zap.Int("months", len(data.Months)),
		zap.Int("workdays", data.Statistic.Workdays))

	return &data, nil
}

// convertYear collects the non-working days of a year and merges runs of
// consecutive days into ranges. Shortened days ('*') are working days.
func convertYear(year int, data *productionYear) ([]calendar.HolidayPeriod, error) {
	if data.Year != 0 && data.Year != year {
		return nil, fmt.Errorf("%w: document is for year %d", calendar.ErrMalformedHolidayConfig, data.Year)
	}

	var keys []int
	for _, m := range data.Months {
		if m.Month < 1 || m.Month > 12 {
			return nil, fmt.Errorf("%w: month %d", calendar.ErrMalformedHolidayConfig, m.Month)
		}
		month := time.Month(m.Month)

		for _, part := range strings.Split(m.Days, ",") {
			part = strings.TrimSpace(part)
			if part == "" || strings.HasSuffix(part, "*") {
				continue
			}
			day, err := strconv.Atoi(strings.TrimSuffix(part, "+"))
			if err != nil || day < 1 || day > dateutil.DaysIn(year, month) {
				return nil, fmt.Errorf("%w: bad day %q in month %d", calendar.ErrMalformedHolidayConfig, part, m.Month)
			}
			keys = append(keys, dateutil.DateKey(year, month, day))
		}
	}
	sort.Ints(keys)

	var periods []calendar.HolidayPeriod
	for i := 0; i < len(keys); {
		start := keyDate(keys[i])
		end := start
		j := i + 1
		for ; j < len(keys); j++ {
			next := keyDate(keys[j])
			if next.Equal(end) {
				continue
			}
			if !next.Equal(end.AddDate(0, 0, 1)) {
				break
			}
			end = next
		}

		period := calendar.SingleDay(start, "")
		period.End = calendar.SingleDay(end, "").End
		periods = append(periods, period)
		i = j
	}

	return periods, nil
}

func keyDate(key int) time.Time {
	return time.Date(key/10000, time.Month(key/100%100), key%100, 0, 0, 0, 0, time.UTC)
}

package holidays

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/username/business-calendar/internal/calendar"
	"go.uber.org/zap"
)

// FileSource reads holidays from a local text file
type FileSource struct {
	filePath string
	logger   *zap.Logger
}

// NewFileSource creates a new FileSource
func NewFileSource(filePath string, logger *zap.Logger) *FileSource {
	return &FileSource{
		filePath: filePath,
		logger:   logger,
	}
}

// Holidays loads holiday periods from the file.
//
// Format: one entry per line, "yyyy-MM-dd[:yyyy-MM-dd] [note]".
// Example: *-12-31:*-01-08 New Year holidays
// Blank lines and lines starting with '#' are skipped.
func (fs *FileSource) Holidays(ctx context.Context) ([]calendar.HolidayPeriod, error) {
	file, err := os.Open(fs.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open holidays file: %w", err)
	}
	defer file.Close()

	var periods []calendar.HolidayPeriod
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, note := line, ""
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			entry, note = line[:i], strings.TrimSpace(line[i+1:])
		}

		period, err := calendar.ParseHolidayPeriod(entry)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", fs.filePath, lineNo, err)
		}
		period.Note = note
		periods = append(periods, period)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading holidays file: %w", err)
	}

	fs.logger.Info("Holidays file loaded",
		zap.String("file", fs.filePath),
		zap.Int("periods", len(periods)))

	return periods, nil
}

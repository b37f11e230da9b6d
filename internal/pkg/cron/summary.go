package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/clock"
)

const summaryInterval = 15 * time.Minute

// StatsSource reports per-day totals. attendance.AttendanceService satisfies it.
type StatsSource interface {
	GetDailyStats(ctx context.Context, date string) (attendance.DailyStatsResponse, error)
}

// DailySummaryJob logs the previous day's attendance totals once per day.
type DailySummaryJob struct {
	stats StatsSource
	clock clock.Clock

	mu           sync.Mutex
	lastReported string
}

func NewDailySummaryJob(stats StatsSource, clk clock.Clock) *DailySummaryJob {
	return &DailySummaryJob{stats: stats, clock: clk}
}

func (j *DailySummaryJob) Register(s *Scheduler) {
	s.AddJob("daily_attendance_summary", summaryInterval, j.Run)
}

func (j *DailySummaryJob) Run(ctx context.Context) error {
	yesterday := j.clock.Now().AddDate(0, 0, -1).Format("2006-01-02")

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastReported == yesterday {
		return nil
	}

	stats, err := j.stats.GetDailyStats(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to get daily stats for %s: %w", yesterday, err)
	}

	slog.Info("Daily attendance summary",
		"date", stats.Date,
		"total", stats.Total,
		"present", stats.Present,
		"absent", stats.Absent,
		"check_in_count", stats.CheckInCount,
		"check_out_count", stats.CheckOutCount,
	)
	j.lastReported = yesterday
	return nil
}

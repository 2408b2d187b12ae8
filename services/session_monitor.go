package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/cueside/club-app/events"
	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/utils"
)

// SessionMonitor pushes live elapsed-time updates for running sessions to
// the dashboard hub once a second. Read-side only: it never blocks a
// transition and ticking does not accumulate state, the elapsed figure is
// recomputed from StartTime/TotalPauseSeconds on every tick.
type SessionMonitor struct {
	db   *gorm.DB
	stop chan struct{}
}

func NewSessionMonitor(db *gorm.DB) *SessionMonitor {
	return &SessionMonitor{
		db:   db,
		stop: make(chan struct{}),
	}
}

type sessionTick struct {
	TableID        uint  `json:"table_id"`
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

func (m *SessionMonitor) Start() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case now := <-ticker.C:
				m.broadcastTicks(now)
			}
		}
	}()
}

func (m *SessionMonitor) Stop() {
	close(m.stop)
}

func (m *SessionMonitor) broadcastTicks(now time.Time) {
	var sessions []models.ActiveSession
	if err := m.db.Where("status = ?", models.SessionStatusRunning).
		Find(&sessions).Error; err != nil {
		utils.ErrorLogger.Printf("session monitor read failed: %v", err)
		return
	}
	if len(sessions) == 0 {
		return
	}

	ticks := make([]sessionTick, 0, len(sessions))
	for i := range sessions {
		ticks = append(ticks, sessionTick{
			TableID:        sessions[i].TableID,
			ElapsedSeconds: RunningElapsed(&sessions[i], now),
		})
	}
	events.BroadcastSessionTick(ticks)
}

// StartCheckpointScheduler persists the computed elapsed seconds of running
// sessions once a minute so a crash loses at most a minute of display state.
// The write skips the version column: checkpoints must never conflict with a
// terminal's transition, and authoritative elapsed time is derived from
// StartTime/TotalPauseSeconds regardless.
func StartCheckpointScheduler(db *gorm.DB) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			checkpointRunningSessions(db, time.Now())
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}

func checkpointRunningSessions(db *gorm.DB, now time.Time) {
	var sessions []models.ActiveSession
	if err := db.Where("status = ?", models.SessionStatusRunning).
		Find(&sessions).Error; err != nil {
		utils.ErrorLogger.Printf("session checkpoint read failed: %v", err)
		return
	}

	for i := range sessions {
		elapsed := RunningElapsed(&sessions[i], now)
		err := db.Model(&models.ActiveSession{}).
			Where("id = ? AND status = ?", sessions[i].ID, models.SessionStatusRunning).
			Update("elapsed_seconds", elapsed).Error
		if err != nil {
			utils.ErrorLogger.Printf("session checkpoint write failed for table %d: %v",
				sessions[i].TableID, err)
		}
	}
}

package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Table{},
		&models.MenuItem{},
		&models.MembershipPlan{},
		&models.Member{},
		&models.ActiveSession{},
		&models.SessionItem{},
		&models.Transaction{},
		&models.TransactionItem{},
	))
	return db
}

// testClock lets tests move session time deterministically.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSessionService(t *testing.T) (*SessionService, *gorm.DB, *testClock) {
	db := setupTestDB(t)
	clock := newTestClock()
	svc := NewSessionService(db)
	svc.SetClock(clock.Now)
	return svc, db, clock
}

func seedTable(t *testing.T, db *gorm.DB, rate float64) models.Table {
	table := models.Table{Name: "AP-1", Category: models.CategoryAmericanPool, Rate: rate}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.MenuItem {
	item := models.MenuItem{Name: name, Category: "Drinks", Price: price, Stock: stock}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func TestStartCreatesRunningSession(t *testing.T) {
	svc, _, clock := newTestSessionService(t)
	table := seedTable(t, svc.db, 120)

	session, err := svc.Start(table.ID)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusRunning, session.Status)
	assert.Equal(t, clock.Now(), session.StartTime)
	assert.Zero(t, session.ElapsedSeconds)
	assert.Equal(t, models.DefaultCustomerName, session.CustomerName)
	assert.Nil(t, session.MemberID)
	assert.Empty(t, session.Items)
}

func TestStartRejectsExistingSession(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)

	first, err := svc.Start(table.ID)
	require.NoError(t, err)

	for _, status := range []string{
		models.SessionStatusRunning,
		models.SessionStatusPaused,
		models.SessionStatusStopped,
	} {
		require.NoError(t, db.Model(&models.ActiveSession{}).
			Where("id = ?", first.ID).Update("status", status).Error)

		_, err = svc.Start(table.ID)
		assert.ErrorIs(t, err, ErrSessionExists, "status %s", status)
	}

	// the existing session is untouched
	existing, err := svc.GetSession(table.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)
}

func TestStartOnUnknownTable(t *testing.T) {
	svc, _, _ := newTestSessionService(t)

	_, err := svc.Start(999)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestElapsedTimeContinuityAcrossPauses(t *testing.T) {
	svc, _, clock := newTestSessionService(t)
	table := seedTable(t, svc.db, 120)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)

	// run 10 min
	clock.Advance(10 * time.Minute)
	session, err := svc.Pause(table.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 600, session.ElapsedSeconds)

	// paused 25 min, no time accrues
	clock.Advance(25 * time.Minute)
	session, err = svc.Resume(table.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 600, RunningElapsed(session, clock.Now()))

	// run 5 more min
	clock.Advance(5 * time.Minute)
	session, err = svc.Pause(table.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 900, session.ElapsedSeconds)

	// a second long pause changes nothing
	clock.Advance(2 * time.Hour)
	session, err = svc.Resume(table.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 900, RunningElapsed(session, clock.Now()))
}

func TestStopFreezesElapsed(t *testing.T) {
	svc, _, clock := newTestSessionService(t)
	table := seedTable(t, svc.db, 120)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)

	clock.Advance(90 * time.Minute)
	session, err := svc.Stop(table.ID)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusStopped, session.Status)
	assert.EqualValues(t, 5400, session.ElapsedSeconds)
	assert.Nil(t, session.PauseTime)

	// frozen value does not move
	clock.Advance(time.Hour)
	assert.EqualValues(t, 5400, RunningElapsed(session, clock.Now()))
}

func TestResumeFromStoppedRebasesClock(t *testing.T) {
	svc, _, clock := newTestSessionService(t)
	table := seedTable(t, svc.db, 120)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = svc.Stop(table.ID)
	require.NoError(t, err)

	// stopped for a while, then re-opened
	clock.Advance(40 * time.Minute)
	session, err := svc.Resume(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusRunning, session.Status)
	assert.Zero(t, session.TotalPauseSeconds)

	// elapsed continues exactly where it was frozen
	clock.Advance(3 * time.Minute)
	session, err = svc.Pause(table.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 20*60+3*60, session.ElapsedSeconds)
}

func TestStopFromPausedKeepsFrozenElapsed(t *testing.T) {
	svc, _, clock := newTestSessionService(t)
	table := seedTable(t, svc.db, 120)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)

	clock.Advance(7 * time.Minute)
	_, err = svc.Pause(table.ID)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	session, err := svc.Stop(table.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 420, session.ElapsedSeconds)
}

func TestInvalidTransitions(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	table := seedTable(t, svc.db, 120)

	_, err := svc.Pause(table.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = svc.Start(table.ID)
	require.NoError(t, err)

	_, err = svc.Resume(table.ID) // running already
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Stop(table.ID)
	require.NoError(t, err)

	_, err = svc.Pause(table.ID) // stopped
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Stop(table.ID) // stopped
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)
	cola := seedMenuItem(t, db, "Cola", 30, 10)
	chips := seedMenuItem(t, db, "Chips", 20, 5)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)

	_, err = svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)
	session, err := svc.AddItem(table.ID, chips.ID)
	require.NoError(t, err)

	require.Len(t, session.Items, 2)
	assert.Equal(t, 2, session.Items[0].Quantity)
	assert.Equal(t, "Cola", session.Items[0].Name)
	assert.Equal(t, 1, session.Items[1].Quantity)
}

func TestAddItemBeforeStartPreSeedsIdleSession(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)
	cola := seedMenuItem(t, db, "Cola", 30, 10)

	session, err := svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusIdle, session.Status)
	require.Len(t, session.Items, 1)

	// starting keeps the pre-ordered items
	session, err = svc.Start(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusRunning, session.Status)
	require.Len(t, session.Items, 1)
	assert.Equal(t, "Cola", session.Items[0].Name)
}

func TestRemoveItemDecrementsAndDeletes(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)
	cola := seedMenuItem(t, db, "Cola", 30, 10)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)

	session, err := svc.RemoveItem(table.ID, cola.ID)
	require.NoError(t, err)
	require.Len(t, session.Items, 1)
	assert.Equal(t, 1, session.Items[0].Quantity)

	session, err = svc.RemoveItem(table.ID, cola.ID)
	require.NoError(t, err)
	assert.Empty(t, session.Items)

	// never persisted at quantity zero
	var count int64
	db.Model(&models.SessionItem{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Zero(t, count)
}

func TestRemoveItemNotPresentIsNoOp(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)
	cola := seedMenuItem(t, db, "Cola", 30, 10)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)
	before, err := svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)

	after, err := svc.RemoveItem(table.ID, 424242)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	require.Len(t, after.Items, 1)
	assert.Equal(t, 1, after.Items[0].Quantity)
}

func TestAttachMemberSetsNameAndBackReference(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)

	plan := models.MembershipPlan{Name: "Gold", Price: 5000, TotalHours: 50}
	require.NoError(t, db.Create(&plan).Error)
	member := models.Member{Name: "Ravi Kumar", PlanID: plan.ID, RemainingHours: 50}
	require.NoError(t, db.Create(&member).Error)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)

	session, err := svc.AttachMember(table.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, session.MemberID)
	assert.Equal(t, member.ID, *session.MemberID)
	assert.Equal(t, "Ravi Kumar", session.CustomerName)
}

func TestSessionRoundTripPersistence(t *testing.T) {
	svc, db, clock := newTestSessionService(t)
	table := seedTable(t, db, 120)
	cola := seedMenuItem(t, db, "Cola", 30, 10)

	plan := models.MembershipPlan{Name: "Gold", Price: 5000, TotalHours: 50}
	require.NoError(t, db.Create(&plan).Error)
	member := models.Member{Name: "Ravi Kumar", PlanID: plan.ID, RemainingHours: 50}
	require.NoError(t, db.Create(&member).Error)

	_, err := svc.Start(table.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)
	_, err = svc.AttachMember(table.ID, member.ID)
	require.NoError(t, err)

	clock.Advance(4 * time.Minute)
	want, err := svc.Pause(table.ID)
	require.NoError(t, err)

	// every mutation above persisted; a fresh read matches in-memory state
	got, err := svc.GetSession(table.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.ElapsedSeconds, got.ElapsedSeconds)
	assert.Equal(t, want.TotalPauseSeconds, got.TotalPauseSeconds)
	require.NotNil(t, got.PauseTime)
	assert.WithinDuration(t, *want.PauseTime, *got.PauseTime, time.Second)
	assert.Equal(t, want.CustomerName, got.CustomerName)
	require.NotNil(t, got.MemberID)
	assert.Equal(t, *want.MemberID, *got.MemberID)
	assert.Equal(t, want.Version, got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Cola", got.Items[0].Name)
}

func TestStaleWriteRejected(t *testing.T) {
	svc, db, clock := newTestSessionService(t)
	table := seedTable(t, db, 120)

	session, err := svc.Start(table.ID)
	require.NoError(t, err)

	// another terminal writes the row behind our back
	require.NoError(t, db.Model(&models.ActiveSession{}).
		Where("id = ?", session.ID).
		Update("version", session.Version+5).Error)

	clock.Advance(time.Minute)
	stale := *session
	err = svc.save(&stale)
	assert.ErrorIs(t, err, ErrSessionConflict)
}

// bumpVersionOnItemWrite simulates another terminal writing the session row
// in the window between the item line write and the version check.
func bumpVersionOnItemWrite(d *gorm.DB, sessionID uint) {
	if d.Statement.Table != "session_items" {
		return
	}
	d.Session(&gorm.Session{NewDB: true}).
		Exec("UPDATE active_sessions SET version = version + 1 WHERE id = ?", sessionID)
}

func TestAddItemConflictLeavesNoLine(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)
	cola := seedMenuItem(t, db, "Cola", 30, 10)

	session, err := svc.Start(table.ID)
	require.NoError(t, err)

	require.NoError(t, db.Callback().Create().After("gorm:create").
		Register("concurrent_bump", func(d *gorm.DB) {
			bumpVersionOnItemWrite(d, session.ID)
		}))

	_, err = svc.AddItem(table.ID, cola.ID)
	assert.ErrorIs(t, err, ErrSessionConflict)

	// the rejected write rolled back whole, no orphaned line
	var count int64
	db.Model(&models.SessionItem{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Zero(t, count)

	var fresh models.ActiveSession
	require.NoError(t, db.First(&fresh, session.ID).Error)
	assert.Equal(t, session.Version, fresh.Version)
}

func TestRemoveItemConflictKeepsQuantity(t *testing.T) {
	svc, db, _ := newTestSessionService(t)
	table := seedTable(t, db, 120)
	cola := seedMenuItem(t, db, "Cola", 30, 10)

	session, err := svc.Start(table.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)
	_, err = svc.AddItem(table.ID, cola.ID)
	require.NoError(t, err)

	require.NoError(t, db.Callback().Update().After("gorm:update").
		Register("concurrent_bump", func(d *gorm.DB) {
			bumpVersionOnItemWrite(d, session.ID)
		}))

	_, err = svc.RemoveItem(table.ID, cola.ID)
	assert.ErrorIs(t, err, ErrSessionConflict)

	var line models.SessionItem
	require.NoError(t, db.Where("session_id = ?", session.ID).First(&line).Error)
	assert.Equal(t, 2, line.Quantity)
}

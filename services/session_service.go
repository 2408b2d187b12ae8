package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/utils"
)

// SessionService owns the table session state machine. Every mutation goes
// through a per-table mutex (serializes handlers in this process) and an
// optimistic version check on the row (catches writers in other processes).
type SessionService struct {
	db  *gorm.DB
	now func() time.Time

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{
		db:    db,
		now:   time.Now,
		locks: make(map[uint]*sync.Mutex),
	}
}

// SetClock overrides the time source, used by tests.
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SessionService) tableLock(tableID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[tableID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[tableID] = l
	return l
}

// GetSession returns the session for a table, or ErrNoSession when the table
// is available.
func (s *SessionService) GetSession(tableID uint) (*models.ActiveSession, error) {
	var session models.ActiveSession
	err := s.db.Preload("Items").Where("table_id = ?", tableID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RunningElapsed computes the displayed elapsed seconds at a point in time.
// Authoritative while running; the frozen value otherwise.
func RunningElapsed(session *models.ActiveSession, at time.Time) int64 {
	if session.Status != models.SessionStatusRunning {
		return session.ElapsedSeconds
	}
	return int64(at.Sub(session.StartTime)/time.Second) - session.TotalPauseSeconds
}

// Start begins the timer for a table. A table with a running, paused or
// stopped session rejects the start; an idle session (items pre-ordered
// before the timer) is promoted to running and keeps its items.
func (s *SessionService) Start(tableID uint) (*models.ActiveSession, error) {
	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	var table models.Table
	if err := s.db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	now := s.now()

	existing, err := s.GetSession(tableID)
	if err != nil && !errors.Is(err, ErrNoSession) {
		return nil, err
	}
	if existing != nil {
		if existing.Status != models.SessionStatusIdle {
			return nil, ErrSessionExists
		}
		existing.Status = models.SessionStatusRunning
		existing.StartTime = now
		existing.ElapsedSeconds = 0
		existing.TotalPauseSeconds = 0
		existing.PauseTime = nil
		if err := s.save(existing); err != nil {
			return nil, err
		}
		utils.InfoLogger.Printf("Session started on table %d (pre-ordered items kept)", tableID)
		return existing, nil
	}

	session := &models.ActiveSession{
		TableID:        tableID,
		Status:         models.SessionStatusRunning,
		StartTime:      now,
		ElapsedSeconds: 0,
		CustomerName:   models.DefaultCustomerName,
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Session started on table %d", tableID)
	return session, nil
}

// Pause freezes the timer. Valid only while running.
func (s *SessionService) Pause(tableID uint) (*models.ActiveSession, error) {
	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(tableID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusRunning {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	session.ElapsedSeconds = RunningElapsed(session, now)
	session.Status = models.SessionStatusPaused
	session.PauseTime = &now

	if err := s.save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Resume restarts the timer from paused or stopped. From paused the pause
// gap is added to TotalPauseSeconds so the elapsed formula stays continuous.
// From stopped the clock is re-based: StartTime is set so that elapsed time
// continues exactly where it was frozen.
func (s *SessionService) Resume(tableID uint) (*models.ActiveSession, error) {
	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(tableID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch session.Status {
	case models.SessionStatusPaused:
		if session.PauseTime != nil {
			session.TotalPauseSeconds += int64(now.Sub(*session.PauseTime) / time.Second)
		}
		session.PauseTime = nil
		session.Status = models.SessionStatusRunning
	case models.SessionStatusStopped:
		session.StartTime = now.Add(-time.Duration(session.ElapsedSeconds) * time.Second)
		session.TotalPauseSeconds = 0
		session.PauseTime = nil
		session.Status = models.SessionStatusRunning
	default:
		return nil, ErrInvalidTransition
	}

	if err := s.save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Stop freezes the timer for billing. Valid from running or paused; the
// session can still be re-opened with Resume until settlement deletes it.
func (s *SessionService) Stop(tableID uint) (*models.ActiveSession, error) {
	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(tableID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case models.SessionStatusRunning:
		session.ElapsedSeconds = RunningElapsed(session, s.now())
	case models.SessionStatusPaused:
		// elapsed already frozen by Pause
	default:
		return nil, ErrInvalidTransition
	}
	session.PauseTime = nil
	session.Status = models.SessionStatusStopped

	if err := s.save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddItem puts one unit of a menu item on the session's bill. Allowed in any
// status; on a table with no session it creates an idle one so staff can
// pre-order before starting the timer.
func (s *SessionService) AddItem(tableID uint, menuItemID uint) (*models.ActiveSession, error) {
	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	var item models.MenuItem
	if err := s.db.First(&item, menuItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	session, err := s.GetSession(tableID)
	if errors.Is(err, ErrNoSession) {
		session = &models.ActiveSession{
			TableID:      tableID,
			Status:       models.SessionStatusIdle,
			StartTime:    s.now(),
			CustomerName: models.DefaultCustomerName,
		}
		if err := s.db.Create(session).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	var line *models.SessionItem
	for i := range session.Items {
		if session.Items[i].MenuItemID == menuItemID {
			line = &session.Items[i]
			break
		}
	}

	// The line write and the version bump commit together; a stale version
	// rolls the line back instead of leaving it behind.
	newLine := models.SessionItem{
		SessionID:  session.ID,
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if line != nil {
			res := tx.Model(&models.SessionItem{}).
				Where("id = ?", line.ID).
				Update("quantity", gorm.Expr("quantity + 1"))
			if res.Error != nil {
				return res.Error
			}
		} else {
			if err := tx.Create(&newLine).Error; err != nil {
				return err
			}
		}
		return s.saveTx(tx, session)
	})
	if err != nil {
		return nil, err
	}

	if line != nil {
		line.Quantity++
	} else {
		session.Items = append(session.Items, newLine)
	}
	return session, nil
}

// RemoveItem takes one unit of a menu item off the bill, deleting the line
// when its quantity reaches zero. Removing an item that is not on the
// session is a no-op.
func (s *SessionService) RemoveItem(tableID uint, menuItemID uint) (*models.ActiveSession, error) {
	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(tableID)
	if err != nil {
		return nil, err
	}

	for i := range session.Items {
		line := &session.Items[i]
		if line.MenuItemID != menuItemID {
			continue
		}
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if line.Quantity > 1 {
				res := tx.Model(&models.SessionItem{}).
					Where("id = ?", line.ID).
					Update("quantity", gorm.Expr("quantity - 1"))
				if res.Error != nil {
					return res.Error
				}
			} else {
				if err := tx.Delete(&models.SessionItem{}, line.ID).Error; err != nil {
					return err
				}
			}
			return s.saveTx(tx, session)
		})
		if err != nil {
			return nil, err
		}
		if line.Quantity > 1 {
			line.Quantity--
		} else {
			session.Items = append(session.Items[:i], session.Items[i+1:]...)
		}
		return session, nil
	}

	// Item not on the bill: nothing to persist.
	return session, nil
}

// AttachMember links a member to the session for membership settlement and
// replaces the walk-in customer name.
func (s *SessionService) AttachMember(tableID uint, memberID uint) (*models.ActiveSession, error) {
	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	var member models.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	session, err := s.GetSession(tableID)
	if err != nil {
		return nil, err
	}

	session.MemberID = &member.ID
	session.CustomerName = member.Name
	if err := s.save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// save writes a session's mutable fields with an optimistic version check.
// Zero rows updated means someone else wrote since our read.
func (s *SessionService) save(session *models.ActiveSession) error {
	return s.saveTx(s.db, session)
}

// saveTx is save against a caller-supplied handle, so item mutations can
// commit the line write and the version bump in one transaction.
func (s *SessionService) saveTx(tx *gorm.DB, session *models.ActiveSession) error {
	prev := session.Version
	session.Version = prev + 1

	res := tx.Model(&models.ActiveSession{}).
		Where("id = ? AND version = ?", session.ID, prev).
		Updates(map[string]interface{}{
			"status":              session.Status,
			"start_time":          session.StartTime,
			"elapsed_seconds":     session.ElapsedSeconds,
			"total_pause_seconds": session.TotalPauseSeconds,
			"pause_time":          session.PauseTime,
			"customer_name":       session.CustomerName,
			"member_id":           session.MemberID,
			"version":             session.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		session.Version = prev
		utils.ErrorLogger.Printf("Stale session write rejected for table %d (version %d)", session.TableID, prev)
		return ErrSessionConflict
	}
	return nil
}

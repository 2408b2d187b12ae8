package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cueside/club-app/events"
	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/utils"
)

// SettlementRequest is the staff terminal's payment input for a stopped
// session.
type SettlementRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=cash upi split membership"`
	CashAmount    float64 `json:"cash_amount"` // split pay only
	UpiAmount     float64 `json:"upi_amount"`  // split pay only
}

// SettlementService validates a payment against a stopped session and
// commits the whole settlement as one database transaction: transaction
// record + stock decrements + member hours deduction + session deletion.
// Nothing survives a failed commit.
type SettlementService struct {
	db       *gorm.DB
	sessions *SessionService
	now      func() time.Time
}

func NewSettlementService(db *gorm.DB, sessions *SessionService) *SettlementService {
	return &SettlementService{db: db, sessions: sessions, now: time.Now}
}

// SetClock overrides the time source, used by tests.
func (s *SettlementService) SetClock(now func() time.Time) {
	s.now = now
}

// Settle closes out a table. On success the ActiveSession is gone and the
// table is available again.
func (s *SettlementService) Settle(tableID uint, req SettlementRequest) (*models.Transaction, error) {
	lock := s.sessions.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.GetSession(tableID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusStopped {
		return nil, ErrSessionNotStopped
	}

	var table models.Table
	if err := s.db.First(&table, tableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}

	bill := CalculateBill(session, table.Rate, req.PaymentMethod)

	member, err := s.validate(session, bill, req)
	if err != nil {
		return nil, err
	}

	txn := s.buildTransaction(session, table, bill, req)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}

		if err := s.decrementStock(tx, session.Items); err != nil {
			return err
		}

		if member != nil {
			newHours := utils.RoundHours(member.RemainingHours - bill.PlayedHours)
			res := tx.Model(&models.Member{}).
				Where("id = ? AND remaining_hours = ?", member.ID, member.RemainingHours).
				Update("remaining_hours", newHours)
			if res.Error != nil {
				return fmt.Errorf("deduct member hours: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Balance moved under us, likely a settlement on another
				// table; the caller re-reads and resubmits.
				return ErrSessionConflict
			}
		}

		res := tx.Where("id = ? AND version = ?", session.ID, session.Version).
			Delete(&models.ActiveSession{})
		if res.Error != nil {
			return fmt.Errorf("delete session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrSessionConflict
		}
		if err := tx.Where("session_id = ?", session.ID).
			Delete(&models.SessionItem{}).Error; err != nil {
			return fmt.Errorf("delete session items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %s settled: %s total %.2f (ref %s)",
		table.Name, txn.PaymentMethod, txn.TotalAmount, txn.ReferenceID)

	events.Broadcast(events.Message{Event: events.EventSessionSettled, Data: txn})
	events.BroadcastStockUpdate(settledItemIDs(session.Items))

	return txn, nil
}

// validate applies the per-method rules before any write. Returns the loaded
// member for membership settlements.
func (s *SettlementService) validate(session *models.ActiveSession, bill Bill, req SettlementRequest) (*models.Member, error) {
	for _, line := range session.Items {
		if line.MenuItemID == 0 {
			return nil, ErrMalformedItem
		}
	}

	switch req.PaymentMethod {
	case models.PaymentMethodCash, models.PaymentMethodUPI:
		return nil, nil
	case models.PaymentMethodSplit:
		if utils.FloorAmount(req.CashAmount+req.UpiAmount) != bill.TotalPayable {
			return nil, ErrSplitMismatch
		}
		return nil, nil
	case models.PaymentMethodMembership:
		if session.MemberID == nil {
			return nil, ErrNoMemberAttached
		}
		var member models.Member
		if err := s.db.First(&member, *session.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, err
		}
		if utils.RoundHours(member.RemainingHours) < bill.PlayedHours {
			return nil, ErrInsufficientHours
		}
		return &member, nil
	default:
		return nil, ErrNoPaymentMethod
	}
}

// decrementStock reduces stock for every line by its quantity. A missing
// menu item aborts the whole commit; going negative does not, it is only
// warned about.
func (s *SettlementService) decrementStock(tx *gorm.DB, lines []models.SessionItem) error {
	for _, line := range lines {
		var item models.MenuItem
		if err := tx.First(&item, line.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("load menu item %d: %w", line.MenuItemID, err)
		}

		res := tx.Model(&models.MenuItem{}).
			Where("id = ?", item.ID).
			Update("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return fmt.Errorf("decrement stock for %q: %w", item.Name, res.Error)
		}

		if item.Stock-line.Quantity < 0 {
			utils.ErrorLogger.Warnf("Stock for %q went negative (%d) after settlement",
				item.Name, item.Stock-line.Quantity)
		}
	}
	return nil
}

func (s *SettlementService) buildTransaction(session *models.ActiveSession, table models.Table, bill Bill, req SettlementRequest) *models.Transaction {
	now := s.now()
	txn := &models.Transaction{
		ReferenceID:     uuid.NewString(),
		TableID:         table.ID,
		TableName:       table.Name,
		StartTime:       session.StartTime,
		EndTime:         now,
		DurationSeconds: session.ElapsedSeconds,
		TableCost:       bill.TableCost,
		ItemsCost:       bill.ItemsCost,
		TotalAmount:     bill.TotalPayable,
		PaymentMethod:   req.PaymentMethod,
		MemberID:        session.MemberID,
		CustomerName:    session.CustomerName,
		CreatedAt:       now,
	}
	if req.PaymentMethod == models.PaymentMethodSplit {
		cash, upi := req.CashAmount, req.UpiAmount
		txn.CashAmount = &cash
		txn.UpiAmount = &upi
	}
	for _, line := range session.Items {
		txn.Items = append(txn.Items, models.TransactionItem{
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Price:      line.Price,
			Quantity:   line.Quantity,
		})
	}
	return txn
}

func settledItemIDs(lines []models.SessionItem) []uint {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}
	return ids
}

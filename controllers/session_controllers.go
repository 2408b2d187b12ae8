package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cueside/club-app/events"
	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/services"
	"github.com/cueside/club-app/utils"
)

// SessionController exposes the table session lifecycle to the staff
// terminals.
type SessionController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
}

func NewSessionController(db *gorm.DB, sessions *services.SessionService) *SessionController {
	return &SessionController{DB: db, Sessions: sessions}
}

// sessionView is a session plus the live elapsed figure the terminal shows.
type sessionView struct {
	*models.ActiveSession
	DisplayElapsed int64 `json:"display_elapsed_seconds"`
}

func newSessionView(session *models.ActiveSession) sessionView {
	return sessionView{
		ActiveSession:  session,
		DisplayElapsed: services.RunningElapsed(session, time.Now()),
	}
}

func parseTableID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("table_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return 0, false
	}
	return uint(id), true
}

// GetSession -> current session for a table; "available" when there is none
func (sc *SessionController) GetSession(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	session, err := sc.Sessions.GetSession(tableID)
	if errors.Is(err, services.ErrNoSession) {
		utils.RespondJSON(c, http.StatusOK, "Table is available", gin.H{
			"table_id": tableID,
			"status":   "available",
		})
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active session", newSessionView(session))
}

// StartSession -> begin the timer for a table
func (sc *SessionController) StartSession(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	session, err := sc.Sessions.Start(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.Broadcast(events.Message{Event: events.EventSessionStart, Data: session})
	utils.RespondJSON(c, http.StatusCreated, "Session started", newSessionView(session))
}

// PauseSession -> freeze the timer
func (sc *SessionController) PauseSession(c *gin.Context) {
	sc.transition(c, sc.Sessions.Pause, "Session paused")
}

// ResumeSession -> continue the timer from paused or stopped
func (sc *SessionController) ResumeSession(c *gin.Context) {
	sc.transition(c, sc.Sessions.Resume, "Session resumed")
}

// StopSession -> freeze the timer for billing
func (sc *SessionController) StopSession(c *gin.Context) {
	sc.transition(c, sc.Sessions.Stop, "Session stopped")
}

func (sc *SessionController) transition(c *gin.Context, fn func(uint) (*models.ActiveSession, error), message string) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	session, err := fn(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastSessionUpdate(session)
	utils.InfoLogger.Printf("%s on table %d", message, tableID)
	utils.RespondJSON(c, http.StatusOK, message, newSessionView(session))
}

// AddItem -> put one unit of a menu item on the session bill
func (sc *SessionController) AddItem(c *gin.Context) {
	sc.mutateItems(c, sc.Sessions.AddItem, "Item added")
}

// RemoveItem -> take one unit off the bill
func (sc *SessionController) RemoveItem(c *gin.Context) {
	sc.mutateItems(c, sc.Sessions.RemoveItem, "Item removed")
}

func (sc *SessionController) mutateItems(c *gin.Context, fn func(uint, uint) (*models.ActiveSession, error), message string) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	var body struct {
		MenuItemID uint `json:"menu_item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := fn(tableID, body.MenuItemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastSessionUpdate(session)
	utils.RespondJSON(c, http.StatusOK, message, newSessionView(session))
}

// AttachMember -> link a member to the session after search-and-select
func (sc *SessionController) AttachMember(c *gin.Context) {
	tableID, ok := parseTableID(c)
	if !ok {
		return
	}

	var body struct {
		MemberID uint `json:"member_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.AttachMember(tableID, body.MemberID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastSessionUpdate(session)
	utils.RespondJSON(c, http.StatusOK, "Member attached to session", newSessionView(session))
}

package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/services"
	"github.com/cueside/club-app/utils"
)

type MemberController struct {
	DB      *gorm.DB
	Members *services.MemberService
}

func NewMemberController(db *gorm.DB, members *services.MemberService) *MemberController {
	return &MemberController{DB: db, Members: members}
}

// SearchMembers -> name-prefix or exact-mobile lookup for the settlement
// dialog's search-and-select step
func (mc *MemberController) SearchMembers(c *gin.Context) {
	members, err := mc.Members.SearchMembers(c.Query("q"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Member search results", members)
}

// GetAllMembers -> full list for the admin memberships page
func (mc *MemberController) GetAllMembers(c *gin.Context) {
	var members []models.Member
	if err := mc.DB.Preload("Plan").Order("name").Find(&members).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of members", members)
}

// CreateMember -> register a member on a plan, hours seeded from the plan
func (mc *MemberController) CreateMember(c *gin.Context) {
	var req struct {
		Name         string     `json:"name" binding:"required"`
		PlanID       uint       `json:"plan_id" binding:"required"`
		MobileNumber string     `json:"mobile_number"`
		ValidityDate *time.Time `json:"validity_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	member, err := mc.Members.CreateMember(req.Name, req.PlanID, req.MobileNumber, req.ValidityDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.InfoLogger.Printf("New member %q on plan %d (%.2f hours)", member.Name, member.PlanID, member.RemainingHours)
	utils.RespondJSON(c, http.StatusCreated, "Member created", member)
}

// UpdateMember -> admin edit, including manual hours correction
func (mc *MemberController) UpdateMember(c *gin.Context) {
	var req struct {
		Name           string     `json:"name"`
		PlanID         *uint      `json:"plan_id"`
		MobileNumber   *string    `json:"mobile_number"`
		ValidityDate   *time.Time `json:"validity_date"`
		RemainingHours *float64   `json:"remaining_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var member models.Member
	if err := mc.DB.First(&member, c.Param("member_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if req.Name != "" {
		member.Name = req.Name
	}
	if req.PlanID != nil {
		member.PlanID = *req.PlanID
	}
	if req.MobileNumber != nil {
		member.MobileNumber = *req.MobileNumber
	}
	if req.ValidityDate != nil {
		member.ValidityDate = req.ValidityDate
	}
	if req.RemainingHours != nil {
		member.RemainingHours = utils.RoundHours(*req.RemainingHours)
	}

	if err := mc.DB.Save(&member).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Member updated", member)
}

// GetMembershipPlans -> plans ordered by price
func (mc *MemberController) GetMembershipPlans(c *gin.Context) {
	var plans []models.MembershipPlan
	if err := mc.DB.Order("price").Find(&plans).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of membership plans", plans)
}

// CreateMembershipPlan -> add a plan
func (mc *MemberController) CreateMembershipPlan(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"min=0"`
		TotalHours  float64 `json:"total_hours" binding:"required,min=1"`
		Color       string  `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	plan := models.MembershipPlan{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		TotalHours:  req.TotalHours,
		Color:       req.Color,
	}
	if err := mc.DB.Create(&plan).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Membership plan created", plan)
}

package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cueside/club-app/controllers"
	"github.com/cueside/club-app/models"
	"github.com/cueside/club-app/services"
)

func setupMemberRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	ctrl := controllers.NewMemberController(db, services.NewMemberService(db))

	router.GET("/members/search", ctrl.SearchMembers)
	router.GET("/members", ctrl.GetAllMembers)
	router.POST("/members", ctrl.CreateMember)
	router.POST("/plans", ctrl.CreateMembershipPlan)
	return router
}

func seedMembers(t *testing.T, db *gorm.DB) models.MembershipPlan {
	plan := models.MembershipPlan{Name: "Gold", Price: 5000, TotalHours: 50}
	require.NoError(t, db.Create(&plan).Error)

	members := []models.Member{
		{Name: "Ravi Kumar", PlanID: plan.ID, RemainingHours: 50, MobileNumber: "9876543210"},
		{Name: "Ravi Shankar", PlanID: plan.ID, RemainingHours: 20, MobileNumber: "9123456780"},
		{Name: "Anita Desai", PlanID: plan.ID, RemainingHours: 35, MobileNumber: "9000011111"},
	}
	for i := range members {
		require.NoError(t, db.Create(&members[i]).Error)
	}
	return plan
}

func TestSearchMembersByNamePrefix(t *testing.T) {
	db := setupTestDB(t)
	seedMembers(t, db)
	router := setupMemberRouter(db)

	w := doJSON(t, router, "GET", "/members/search?q=Ravi", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestSearchMembersByExactMobile(t *testing.T) {
	db := setupTestDB(t)
	seedMembers(t, db)
	router := setupMemberRouter(db)

	w := doJSON(t, router, "GET", "/members/search?q=9000011111", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Anita Desai", data[0].(map[string]interface{})["name"])
}

func TestSearchMembersUnionsWithoutDuplicates(t *testing.T) {
	db := setupTestDB(t)
	plan := seedMembers(t, db)

	// name starts with the same digits as the mobile number
	odd := models.Member{Name: "9876543210 Club Guest", PlanID: plan.ID, RemainingHours: 5, MobileNumber: "9876543210"}
	require.NoError(t, db.Create(&odd).Error)

	router := setupMemberRouter(db)
	w := doJSON(t, router, "GET", "/members/search?q=9876543210", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// one hit by name prefix, one by mobile; the overlap appears once
	data := decodeResponse(t, w)["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestSearchMembersEmptyTerm(t *testing.T) {
	db := setupTestDB(t)
	seedMembers(t, db)
	router := setupMemberRouter(db)

	w := doJSON(t, router, "GET", "/members/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	response := decodeResponse(t, w)
	// empty term matches nobody rather than everybody
	assert.Nil(t, response["data"])
}

func TestCreateMemberSeedsHoursFromPlan(t *testing.T) {
	db := setupTestDB(t)
	router := setupMemberRouter(db)

	w := doJSON(t, router, "POST", "/plans", map[string]interface{}{
		"name": "Silver", "price": 2500, "total_hours": 25,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	plan := decodeResponse(t, w)["data"].(map[string]interface{})

	w = doJSON(t, router, "POST", "/members", map[string]interface{}{
		"name":          "New Member",
		"plan_id":       plan["id"],
		"mobile_number": "9555500000",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	member := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 25, member["remaining_hours"])
}

func TestCreateMemberUnknownPlan(t *testing.T) {
	db := setupTestDB(t)
	router := setupMemberRouter(db)

	w := doJSON(t, router, "POST", "/members", map[string]interface{}{
		"name":    "No Plan",
		"plan_id": 777,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

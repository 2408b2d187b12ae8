package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cueside/club-app/controllers"
	"github.com/cueside/club-app/middlewares"
	"github.com/cueside/club-app/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	sessionSvc := services.NewSessionService(db)
	settlementSvc := services.NewSettlementService(db, sessionSvc)
	memberSvc := services.NewMemberService(db)

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	menuCtrl := controllers.NewMenuController(db)
	memberCtrl := controllers.NewMemberController(db, memberSvc)
	sessionCtrl := controllers.NewSessionController(db, sessionSvc)
	settlementCtrl := controllers.NewSettlementController(db, sessionSvc, settlementSvc)
	txnCtrl := controllers.NewTransactionController(db)

	r.POST("/login", userCtrl.Login)

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	ws.GET("/dashboard", controllers.DashboardSocket)

	staff := r.Group("/staff")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("staff"))
	{
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.GET("/tables/:table_id", tableCtrl.GetTableByID)
		staff.GET("/menu", menuCtrl.GetAllItems)
		staff.GET("/members/search", memberCtrl.SearchMembers)

		staff.GET("/tables/:table_id/session", sessionCtrl.GetSession)
		staff.POST("/tables/:table_id/session/start", sessionCtrl.StartSession)
		staff.POST("/tables/:table_id/session/pause", sessionCtrl.PauseSession)
		staff.POST("/tables/:table_id/session/resume", sessionCtrl.ResumeSession)
		staff.POST("/tables/:table_id/session/stop", sessionCtrl.StopSession)
		staff.POST("/tables/:table_id/session/items", sessionCtrl.AddItem)
		staff.DELETE("/tables/:table_id/session/items", sessionCtrl.RemoveItem)
		staff.POST("/tables/:table_id/session/member", sessionCtrl.AttachMember)

		staff.GET("/tables/:table_id/bill", settlementCtrl.PreviewBill)
		staff.POST("/tables/:table_id/settle", settlementCtrl.SettleBill)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("admin"))
	{
		admin.POST("/users", userCtrl.CreateUser)

		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		admin.POST("/menu", menuCtrl.CreateItem)
		admin.PATCH("/menu/:item_id", menuCtrl.UpdateItem)
		admin.PATCH("/menu/:item_id/stock", menuCtrl.UpdateStock)
		admin.DELETE("/menu/:item_id", menuCtrl.DeleteItem)

		admin.GET("/members", memberCtrl.GetAllMembers)
		admin.POST("/members", memberCtrl.CreateMember)
		admin.PATCH("/members/:member_id", memberCtrl.UpdateMember)
		admin.GET("/plans", memberCtrl.GetMembershipPlans)
		admin.POST("/plans", memberCtrl.CreateMembershipPlan)

		admin.GET("/transactions", txnCtrl.GetAllTransactions)
		admin.GET("/transactions/:reference_id", txnCtrl.GetTransaction)
		admin.GET("/reports/revenue", txnCtrl.GetSummary)
	}

	return r
}

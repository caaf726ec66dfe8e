package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the supplier endpoints
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/partner/suppliers")
	suppliers.POST("", h.Create)
	suppliers.GET("", h.List)
	suppliers.GET("/:id", h.GetByID)
	suppliers.PUT("/:id", h.Update)
	suppliers.POST("/:id/deactivate", h.Deactivate)
	suppliers.POST("/:id/activate", h.Activate)
}

// RegisterRoutes mounts the purchase endpoints
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/ledger/purchases")
	purchases.POST("", h.Create)
	purchases.GET("", h.List)
	purchases.GET("/:id", h.GetByID)
	purchases.GET("/:id/payments", h.ListPayments)

	rg.GET("/ledger/suppliers/:id/payable", h.ListPayable)
}

// RegisterRoutes mounts the payment and reversal endpoints
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/ledger/purchases")
	purchases.POST("/:id/pay", h.PayTotal)
	purchases.POST("/:id/pay-partial", h.PayPartial)
	purchases.POST("/:id/reverse", h.Reverse)

	rg.POST("/ledger/suppliers/:id/pay-all", h.PayAllForSupplier)
}

// RegisterRoutes mounts the settlement account endpoints
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/ledger/accounts")
	accounts.POST("", h.Open)
	accounts.GET("/:id", h.GetByID)
	accounts.POST("/:id/validate-debit", h.ValidateDebit)
}

// RegisterRoutes mounts the health endpoint
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

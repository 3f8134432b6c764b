package main

import (
	"errors"
	"net/http"
	"time"

	"finbooks/models"
	"finbooks/pkg/ledger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type debtLoanRequest struct {
	WithWho  string                   `json:"with_who" binding:"required,max=255"`
	Title    *string                  `json:"title" binding:"omitempty,max=255"`
	Amount   *decimal.Decimal         `json:"amount" binding:"required"`
	Category *models.DebtLoanCategory `json:"category" binding:"required"`
}

func createDebtLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req debtLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	candidate := models.DebtLoan{WithWho: req.WithWho, Amount: *req.Amount, Category: *req.Category}
	if err := candidate.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, debtLoanFieldError(err))
		return
	}
	dl, err := createDebtLoan(user.ID, req.WithWho, req.Title, *req.Amount, *req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": dl.ID})
}

// listDebtLoansHandler lists the user's active debt/loan rows newest-first
// with the per-category totals (null when the category is empty).
func listDebtLoansHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.DebtLoan
	if err := db.Where("user_id = ?", user.ID).
		Where("active = ?", true).
		Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"debt_loans": items,
		"debt_total": ledger.SumDebtLoans(items, models.Debt),
		"loan_total": ledger.SumDebtLoans(items, models.Loan),
	})
}

func getDebtLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var dl models.DebtLoan
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&dl).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, dl)
}

func updateDebtLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req debtLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	var dl models.DebtLoan
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&dl).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	dl.WithWho = req.WithWho
	dl.Title = req.Title
	dl.Amount = *req.Amount
	dl.Category = *req.Category
	if err := dl.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, debtLoanFieldError(err))
		return
	}
	dl.Modified = time.Now()
	if err := db.Save(&dl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, dl)
}

func deleteDebtLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	res := db.Model(&models.DebtLoan{}).
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Updates(map[string]interface{}{"active": false, "modified": time.Now()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func debtLoanFieldError(err error) gin.H {
	switch {
	case errors.Is(err, models.ErrWithWhoRequired):
		return fieldError("with_who", err.Error())
	case errors.Is(err, models.ErrInvalidCategory):
		return fieldError("category", err.Error())
	case errors.Is(err, models.ErrAmountPrecision), errors.Is(err, models.ErrAmountTooManyDig):
		return fieldError("amount", err.Error())
	default:
		return gin.H{"error": err.Error()}
	}
}

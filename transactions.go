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

type transactionRequest struct {
	Title    *string                     `json:"title" binding:"omitempty,max=255"`
	Amount   *decimal.Decimal            `json:"amount" binding:"required"`
	Category *models.TransactionCategory `json:"category" binding:"required"`
}

// createTransactionHandler records a new transaction owned by the authenticated user.
func createTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	candidate := models.Transaction{Amount: *req.Amount, Category: *req.Category}
	if err := candidate.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, transactionFieldError(err))
		return
	}
	tr, err := createTransaction(user.ID, req.Title, *req.Amount, *req.Category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": tr.ID})
}

// listTransactionsHandler lists the user's active transactions newest-first,
// optionally restricted to a calendar window via ?filter=, together with the
// income and expense sums over the returned set. The sums are null, not 0,
// when no record of that category is present.
func listTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	// Unknown filter values fall back to all_time on purpose; the filter
	// entry point never errors.
	window := ledger.ParseWindow(c.Query("filter"))

	q := db.Model(&models.Transaction{}).
		Where("user_id = ?", user.ID).
		Where("active = ?", true)
	if start, end, bounded := window.Range(time.Now()); bounded {
		q = q.Where("created >= ? AND created < ?", start, end)
	}
	var items []models.Transaction
	if err := q.Order("id desc").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions":  items,
		"income_total":  ledger.SumTransactions(items, models.Income),
		"expense_total": ledger.SumTransactions(items, models.Expense),
	})
}

// getTransactionHandler returns a single transaction by id, including
// soft-deleted ones: a deleted row stays addressable, it just leaves the lists.
func getTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var tr models.Transaction
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&tr).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, tr)
}

// updateTransactionHandler mutates title, amount and category. Ownership and
// the created timestamp are untouchable; modified is bumped.
func updateTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}
	var tr models.Transaction
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&tr).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	tr.Title = req.Title
	tr.Amount = *req.Amount
	tr.Category = *req.Category
	if err := tr.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, transactionFieldError(err))
		return
	}
	tr.Modified = time.Now()
	if err := db.Save(&tr).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, tr)
}

// deleteTransactionHandler soft-deletes: the row keeps its id and data,
// active flips to false. Repeating the call changes nothing further.
func deleteTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	res := db.Model(&models.Transaction{}).
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

// transactionFieldError maps entity validation errors onto the field that caused them.
func transactionFieldError(err error) gin.H {
	switch {
	case errors.Is(err, models.ErrInvalidCategory):
		return fieldError("category", err.Error())
	case errors.Is(err, models.ErrAmountPrecision), errors.Is(err, models.ErrAmountTooManyDig):
		return fieldError("amount", err.Error())
	default:
		return gin.H{"error": err.Error()}
	}
}

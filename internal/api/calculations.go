package api

import (
	"calc_system/internal/calc"   // Operation registry
	"calc_system/internal/domain" // Importing domain models
	"calc_system/internal/utils"  // Utility functions
	"context"                     // Context for Redis operations
	"errors"                      // Error matching
	"net/http"                    // HTTP status codes
	"strconv"                     // String conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CalculationRequest carries the operands and operation for create and update.
// Operands are pointers so an explicit zero passes the required check.
type CalculationRequest struct {
	A    *float64 `json:"a" binding:"required"`    // First operand
	B    *float64 `json:"b" binding:"required"`    // Second operand
	Type string   `json:"type" binding:"required"` // Operation type
}

// computeResult validates the request semantics and dispatches the operation.
// Returns the result, or an HTTP status and message for the caller to emit.
func computeResult(req *CalculationRequest) (float64, int, string) {
	// Reject names outside the closed operation set before dispatch
	if !calc.IsValidType(req.Type) {
		return 0, http.StatusBadRequest, "Unknown operation type: " + req.Type
	}
	// Zero divisors are rejected at validation time, ahead of the registry
	if req.Type == calc.OpDivide && *req.B == 0 {
		return 0, http.StatusBadRequest, "Division by zero"
	}
	result, err := calc.Apply(req.Type, *req.A, *req.B)
	if err != nil {
		if errors.Is(err, calc.ErrDivisionByZero) {
			return 0, http.StatusBadRequest, "Division by zero"
		}
		return 0, http.StatusBadRequest, err.Error()
	}
	return result, 0, ""
}

// invalidateStats drops the cached stats response after any mutation so
// aggregate reads never serve stale totals
func invalidateStats(rdb *redis.Client) {
	_ = utils.DeleteCache(context.Background(), rdb, statsCacheKey)
}

// CreateCalculationHandler persists a new calculation with its computed result
func CreateCalculationHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CalculationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Malformed body or missing fields
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body"})
			return
		}
		result, status, msg := computeResult(&req) // Validate and compute
		if status != 0 {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		calculation := domain.Calculation{A: *req.A, B: *req.B, Type: req.Type, Result: result}
		// Persist the new row
		if err := db.Create(&calculation).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"type":  req.Type,    // Operation type
				"error": err.Error(), // Error message
			}).Error("Failed to create calculation") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create calculation"})
			return
		}
		invalidateStats(rdb)                    // Drop stale aggregate cache
		c.JSON(http.StatusCreated, calculation) // Return the full record
	}
}

// ListCalculationsHandler returns all calculations in insertion order
func ListCalculationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var calculations []domain.Calculation // Slice to hold records
		if err := db.Find(&calculations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch calculations"})
			return
		}
		c.JSON(http.StatusOK, calculations) // Return the list
	}
}

// GetCalculationHandler returns a single calculation by ID
func GetCalculationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse path ID
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid calculation ID"})
			return
		}
		var calculation domain.Calculation
		if err := db.First(&calculation, id).Error; err != nil {
			// If record not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Calculation not found"})
			return
		}
		c.JSON(http.StatusOK, calculation) // Return the record
	}
}

// UpdateCalculationHandler replaces a/b/type and recomputes the result in
// place; the creation timestamp is preserved
func UpdateCalculationHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse path ID
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid calculation ID"})
			return
		}
		var calculation domain.Calculation
		if err := db.First(&calculation, id).Error; err != nil {
			// Absent ID fails before validation
			c.JSON(http.StatusNotFound, gin.H{"error": "Calculation not found"})
			return
		}
		var req CalculationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request body"})
			return
		}
		result, status, msg := computeResult(&req) // Same validation as create
		if status != 0 {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		// Map update so zero-valued operands are written too
		updates := map[string]any{"a": *req.A, "b": *req.B, "type": req.Type, "result": result}
		if err := db.Model(&calculation).Updates(updates).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"calculation_id": id,          // Record ID
				"error":          err.Error(), // Error message
			}).Error("Failed to update calculation") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update calculation"})
			return
		}
		invalidateStats(rdb)               // Drop stale aggregate cache
		c.JSON(http.StatusOK, calculation) // Return the updated record
	}
}

// DeleteCalculationHandler removes a calculation permanently
func DeleteCalculationHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse path ID
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid calculation ID"})
			return
		}
		var calculation domain.Calculation
		if err := db.First(&calculation, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Calculation not found"})
			return
		}
		if err := db.Delete(&calculation).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete calculation"})
			return
		}
		invalidateStats(rdb)        // Drop stale aggregate cache
		c.Status(http.StatusNoContent) // Empty success response
	}
}

package api

import (
	"calc_system/internal/calc"   // Operation registry type list
	"calc_system/internal/domain" // Importing domain models
	"calc_system/internal/utils"  // Utility functions
	"context"                     // Context for Redis operations
	"net/http"                    // HTTP status codes
	"strconv"                     // String conversion
	"time"                        // Cache TTL

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// statsCacheKey is the single cache key for the aggregate stats response.
// Mutations invalidate it, so a fixed key set is enough.
const statsCacheKey = "calc:stats"

// statsCacheTTL bounds staleness if an invalidation is ever missed
const statsCacheTTL = 60 * time.Second

// StatsResponse is the aggregate view over all calculations. Averages are
// null when the table is empty.
type StatsResponse struct {
	TotalCount   int64            `json:"total_count"`    // Total row count
	AvgA         *float64         `json:"avg_a"`          // Mean of operand a
	AvgB         *float64         `json:"avg_b"`          // Mean of operand b
	AvgResult    *float64         `json:"avg_result"`     // Mean of result
	CountsByType map[string]int64 `json:"counts_by_type"` // Per-type counts, zero-filled
}

// HistoryResponse is a reverse-chronological page of calculations
type HistoryResponse struct {
	Total int64                `json:"total"` // Total row count before paging
	Items []domain.Calculation `json:"items"` // The requested page
}

// computeStats runs the aggregate queries for the stats endpoints
func computeStats(db *gorm.DB) (*StatsResponse, error) {
	var total int64 // Total calculation count
	if err := db.Model(&domain.Calculation{}).Count(&total).Error; err != nil {
		return nil, err
	}
	resp := &StatsResponse{
		TotalCount:   total,
		CountsByType: make(map[string]int64, len(calc.Types)),
	}
	// Zero-fill every known type so absent operations still appear
	for _, t := range calc.Types {
		resp.CountsByType[t] = 0
	}
	if total > 0 {
		// Averages are only defined over a non-empty table
		var avgs struct {
			AvgA      float64 // Mean of a
			AvgB      float64 // Mean of b
			AvgResult float64 // Mean of result
		}
		if err := db.Model(&domain.Calculation{}).
			Select("AVG(a) AS avg_a, AVG(b) AS avg_b, AVG(result) AS avg_result").
			Scan(&avgs).Error; err != nil {
			return nil, err
		}
		resp.AvgA = &avgs.AvgA
		resp.AvgB = &avgs.AvgB
		resp.AvgResult = &avgs.AvgResult
	}
	// Per-type counts grouped in one query
	var counts []struct {
		Type  string // Operation type
		Count int64  // Rows of that type
	}
	if err := db.Model(&domain.Calculation{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, row := range counts {
		resp.CountsByType[row.Type] = row.Count
	}
	return resp, nil
}

// StatsHandler returns aggregate statistics over all calculations. Serves
// both GET /calculations/stats and its alias GET /reports/summary.
func StatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var cached StatsResponse
		// Try the cached aggregate first
		found, err := utils.GetCache(ctx, rdb, statsCacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, cached) // Return cached stats
			return
		}
		resp, err := computeStats(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		// Cache the aggregate for future requests
		_ = utils.SetCache(ctx, rdb, statsCacheKey, resp, statsCacheTTL)
		c.JSON(http.StatusOK, resp) // Return the aggregate
	}
}

// HistoryHandler returns a paginated reverse-chronological listing.
// limit/offset default to 20/0; limit has no enforced upper bound.
func HistoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20 // Default page size
		offset := 0 // Default skip count
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				limit = v // Set limit if valid
			}
		}
		if o := c.Query("offset"); o != "" {
			if v, err := strconv.Atoi(o); err == nil && v >= 0 {
				offset = v // Set offset if valid
			}
		}
		var total int64 // Total count before paging
		if err := db.Model(&domain.Calculation{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count calculations"})
			return
		}
		var items []domain.Calculation // The requested page
		// Most recent first; id breaks ties between same-instant rows
		if err := db.Order("created_at desc, id desc").
			Offset(offset).
			Limit(limit).
			Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}
		c.JSON(http.StatusOK, HistoryResponse{Total: total, Items: items}) // Return the page
	}
}

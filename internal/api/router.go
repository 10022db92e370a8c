package api

import (
	"calc_system/internal/config"     // Application configuration
	"calc_system/internal/middleware" // JWT middleware
	"net/http"                        // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter wires every route onto a gin engine. The same wiring serves the
// server binary and the HTTP tests. rdb may be nil when Redis is unconfigured.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default() // Gin router instance

	// Health/root endpoint
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Calculation service running"})
	})

	// User routes
	r.POST("/users/", CreateUserHandler(db))          // Plain user creation
	r.POST("/users/register", RegisterHandler(db, cfg)) // Registration with token
	r.POST("/users/login", LoginHandler(db, cfg))       // Login

	// Authenticated profile routes (protected by JWT)
	meGroup := r.Group("/users/me")
	meGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	meGroup.GET("", MeHandler(db))                            // Current user
	meGroup.PUT("", UpdateProfileHandler(db))                 // Profile update
	meGroup.POST("/change-password", ChangePasswordHandler(db)) // Password change

	// Calculation BREAD routes; static /stats is registered before /:id
	r.POST("/calculations", CreateCalculationHandler(db, rdb))       // Add
	r.GET("/calculations", ListCalculationsHandler(db))              // Browse
	r.GET("/calculations/stats", StatsHandler(db, rdb))              // Aggregate stats
	r.GET("/calculations/:id", GetCalculationHandler(db))            // Read
	r.PUT("/calculations/:id", UpdateCalculationHandler(db, rdb))    // Edit
	r.DELETE("/calculations/:id", DeleteCalculationHandler(db, rdb)) // Delete

	// Report routes
	r.GET("/reports/summary", StatsHandler(db, rdb)) // Alias of stats
	r.GET("/reports/history", HistoryHandler(db))    // Paginated history

	return r
}

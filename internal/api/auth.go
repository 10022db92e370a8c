package api

import (
	"calc_system/internal/config"     // Application configuration
	"calc_system/internal/domain"     // Importing domain models
	"calc_system/internal/middleware" // Claims context key
	"calc_system/internal/utils"      // Utility functions
	"net/http"                        // HTTP status codes
	"time"                            // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request and Response structs
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"` // Username, 3-50 chars
	Email    string `json:"email" binding:"required,email"`           // Valid email address
	Password string `json:"password" binding:"required,min=6"`        // Password, at least 6 chars
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for profile update; nil fields are left unchanged
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,min=3,max=50"` // New username
	Email    *string `json:"email" binding:"omitempty,email"`           // New email
}

// Request struct for password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`    // Must verify against the stored hash
	NewPassword     string `json:"new_password" binding:"required,min=6"`  // Replacement password
}

// checkUserConflicts rejects a username/email already taken by another user.
// excludeID skips the caller's own row on profile updates (0 excludes nothing).
// Returns a conflict message, or "" when both values are free.
func checkUserConflicts(db *gorm.DB, username, email string, excludeID uint) string {
	var existing domain.User
	if username != "" {
		if err := db.Where("username = ? AND id <> ?", username, excludeID).First(&existing).Error; err == nil {
			return "Username already exists"
		}
	}
	if email != "" {
		if err := db.Where("email = ? AND id <> ?", email, excludeID).First(&existing).Error; err == nil {
			return "Email already exists"
		}
	}
	return ""
}

// createUser hashes the password and persists a new user row
func createUser(db *gorm.DB, username, email, password string) (*domain.User, error) {
	hash, err := utils.HashPassword(password) // Hash the password
	if err != nil {
		return nil, err
	}
	user := domain.User{Username: username, Email: email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// tokenResponse builds the issued-token payload returned by register and login
func tokenResponse(user *domain.User, cfg *config.Config) (gin.H, error) {
	ttl := time.Duration(cfg.TokenTTLMinutes) * time.Minute
	token, err := utils.GenerateJWT(user.ID, user.Username, cfg.JWTSecret, ttl)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"access_token": token,    // Signed bearer token
		"token_type":   "bearer", // Scheme hint for clients
		"user": gin.H{
			"id":       user.ID,       // User ID
			"username": user.Username, // Username
			"email":    user.Email,    // Email address
		},
	}, nil
}

// CreateUserHandler registers a user and returns the bare record, no token
func CreateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Reject duplicate username or email before inserting
		if msg := checkUserConflicts(db, req.Username, req.Email, 0); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		user, err := createUser(db, req.Username, req.Email, req.Password)
		if err != nil {
			// Hashing or insert failed (e.g. a concurrent duplicate hit the unique index)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		c.JSON(http.StatusCreated, user) // Return the created record
	}
}

// RegisterHandler registers a user and returns the record plus an issued token
func RegisterHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Reject duplicate username or email before inserting
		if msg := checkUserConflicts(db, req.Username, req.Email, 0); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		user, err := createUser(db, req.Username, req.Email, req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		resp, err := tokenResponse(user, cfg)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // User ID
			"username": user.Username, // Username
		}).Info("User registered")
		c.JSON(http.StatusCreated, resp) // Return token and user
	}
}

// LoginHandler authenticates a user and returns a JWT token. The failure
// message is identical for unknown username and wrong password so callers
// cannot enumerate accounts.
func LoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		// Compare provided password with stored hash
		if !utils.VerifyPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		resp, err := tokenResponse(&user, cfg)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, resp) // Return the token in the response
	}
}

// currentUser resolves the authenticated user from validated token claims.
// Lookup is by the subject username first, falling back to the embedded user
// ID so tokens issued before a username change still resolve.
func currentUser(c *gin.Context, db *gorm.DB) (*domain.User, bool) {
	raw, exists := c.Get(middleware.ClaimsKey) // Get claims from context
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*utils.Claims)
	if !ok {
		return nil, false
	}
	var user domain.User
	if claims.Subject != "" {
		if err := db.Where("username = ?", claims.Subject).First(&user).Error; err == nil {
			return &user, true // Resolved by username
		}
	}
	if claims.UserID != 0 {
		if err := db.First(&user, claims.UserID).Error; err == nil {
			return &user, true // Resolved by ID fallback
		}
	}
	return nil, false // Neither claim matches an existing user
}

// MeHandler returns the authenticated user's record
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			// Token was valid but no user matches its claims
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user) // Return the user record
	}
}

// UpdateProfileHandler updates the supplied profile fields, leaving the rest
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Only the supplied fields participate in the conflict check
		username, email := "", ""
		if req.Username != nil {
			username = *req.Username
		}
		if req.Email != nil {
			email = *req.Email
		}
		// Reject values already taken by a different user
		if msg := checkUserConflicts(db, username, email, user.ID); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		updates := map[string]any{} // Column updates for the supplied fields
		if req.Username != nil {
			updates["username"] = *req.Username
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if len(updates) > 0 {
			if err := db.Model(user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
				return
			}
		}
		c.JSON(http.StatusOK, user) // Return the updated record
	}
}

// ChangePasswordHandler verifies the current password and stores a new hash
func ChangePasswordHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, db)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The caller must prove knowledge of the current password
		if !utils.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
			return
		}
		hash, err := utils.HashPassword(req.NewPassword) // Hash the new password
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
			return
		}
		// Log successful password change
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // User ID
		}).Info("Password changed")
		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}

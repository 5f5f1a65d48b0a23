package utils

import (
	"log"
	"os"
	"time"

	"business-registration-server/models"

	"github.com/golang-jwt/jwt"
	"github.com/joho/godotenv"
)

var JwtSecret []byte

func init() {
	// It's okay if the .env file isn't found; environment variables may be set elsewhere
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set in the environment")
	}

	JwtSecret = []byte(secret)
}

// GenerateToken creates a signed JWT for a logged-in representative
func GenerateToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     user.ID,
		"email":       user.Email,
		"business_id": user.BusinessID,
		"role":        user.Role,
		"exp":         time.Now().Add(72 * time.Hour).Unix(),
	})

	return token.SignedString(JwtSecret)
}

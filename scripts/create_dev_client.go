package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/config"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/database"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	log "github.com/sirupsen/logrus"
)

func main() {
	email := flag.String("email", "dev@phrasebook.local", "Developer user email")
	password := flag.String("password", "dev-pass-123", "Developer user password")
	name := flag.String("name", "Development Client", "Consumer name")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	db, err := database.InitDatabase(database.NewDatabaseConfig(cfg))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	ctx := context.Background()
	users := services.NewUserService(db)
	user, err := getOrCreateUser(ctx, users, *email, *password)
	if err != nil {
		log.Fatal("Failed to get developer user: ", err)
	}

	consumer, err := services.NewConsumerService(db).CreateConsumer(ctx, user.ID, services.ConsumerInput{Name: *name})
	if err != nil {
		log.Fatal("Failed to create consumer: ", err)
	}

	fmt.Printf("✓ Development consumer '%s' created for %s\n", consumer.Name, user.Email)
	fmt.Printf("Consumer ID: %s\n", consumer.ID)
	fmt.Printf("Secret: %s\n", consumer.SecretCode)
	fmt.Println("\nRequest a token pair with:")
	fmt.Printf("curl http://%s:%d/auth \\\n", cfg.Host, cfg.Port)
	fmt.Printf("  -H 'Authorization: Secret %s' \\\n", consumer.SecretCode)
	fmt.Printf("  -H 'X-User-Authorization: Basic '$(printf '%%s:%%s' '%s' '%s' | base64)\n", *email, *password)
}

// getOrCreateUser signs in as email, registering it first when unknown
func getOrCreateUser(ctx context.Context, users services.UserService, email, password string) (*models.User, error) {
	user, err := users.Authenticate(ctx, email, password)
	if err == nil {
		fmt.Printf("Found existing user: %s (ID: %s)\n", user.Email, user.ID)
		return user, nil
	}
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		return nil, err
	}

	input := services.UserInput{Email: &email, Password: &password}
	if user, err = users.CreateUser(ctx, input); err != nil {
		return nil, err
	}
	fmt.Printf("Created new user: %s (ID: %s)\n", user.Email, user.ID)
	return user, nil
}

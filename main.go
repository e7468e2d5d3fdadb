package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/swagdogge/intramon-collectible-game/catalog"
	"github.com/swagdogge/intramon-collectible-game/handlers"
	"github.com/swagdogge/intramon-collectible-game/models"
	"github.com/swagdogge/intramon-collectible-game/services"
	"github.com/swagdogge/intramon-collectible-game/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB — JSON API only
	})

	// CORS: origins come from the environment so staging and production
	// front-ends can differ without a rebuild.
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Player-ID, X-Player-Name, X-Player-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.GrantedEvaluation{},
		&models.MonsterInstance{},
		&models.ClaimCode{},
		&models.ClaimCodeRedemption{},
		&models.Gift{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// --- CONFIGURE Presence Service Details ---
	presenceURL := os.Getenv("PRESENCE_SERVICE_URL")
	if presenceURL == "" {
		log.Fatal("PRESENCE_SERVICE_URL environment variable not set")
	}
	presenceToken := os.Getenv("PRESENCE_SERVICE_TOKEN")
	if presenceToken == "" {
		log.Fatal("PRESENCE_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	cat := catalog.New()
	clock := clockwork.NewRealClock()
	presence := services.NewPresenceClient(presenceURL, presenceToken)

	playerService := services.NewPlayerService(db, cat, uuid.NewString)
	inventoryService := services.NewInventoryService(db)
	claimCodeService := services.NewClaimCodeService(db)
	giftService := services.NewGiftService(db, uuid.NewString)
	crystalService := services.NewCrystalService(db, clock)
	grantService := services.NewGrantService(claimCodeService, inventoryService, cat, clock, uuid.NewString)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	evalSyncWorker := workers.NewEvaluationSyncWorker(db, playerService, presence)
	evalSyncWorker.Start(ctx)

	giftService.StartRetentionScheduler(30 * 24 * time.Hour)

	handlers.SetupMonsterRoutes(app, playerService, inventoryService, giftService, grantService, crystalService, presence, cat)
	handlers.SetupAdminRoutes(app, claimCodeService, cat)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Evaluation Sync Worker running")
	log.Println("✅ Gift retention scheduler running (daily)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}

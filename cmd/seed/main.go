package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"ticketing/internal/shared/config"
	"ticketing/internal/shared/constants"
	"ticketing/internal/shared/database"
	"ticketing/internal/tickets"
	"ticketing/internal/users"
	"ticketing/pkg/cache"
	"ticketing/pkg/money"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type options struct {
	eventID       string
	standard      int
	vip           int
	standardPrice string
	vipPrice      string
	withUsers     bool
	clean         bool
}

type Seeder struct {
	db      *database.DB
	tickets tickets.Repository
}

func main() {
	var opts options
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&opts.eventID, "event", "", "event id to stock (default: a new random id)")
	flagSet.IntVar(&opts.standard, "standard", 100, "number of STANDARD tickets")
	flagSet.IntVar(&opts.vip, "vip", 20, "number of VIP tickets")
	flagSet.StringVar(&opts.standardPrice, "standard-price", "50.00", "STANDARD ticket price")
	flagSet.StringVar(&opts.vipPrice, "vip-price", "150.00", "VIP ticket price")
	flagSet.BoolVar(&opts.withUsers, "users", true, "create demo admin and buyer accounts")
	flagSet.BoolVar(&opts.clean, "clean", false, "truncate ticketing tables first")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("Invalid flags: %v", err)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	fmt.Println("🌱 Starting ticketing seeder...")

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{
		db:      db,
		tickets: tickets.NewRepository(db.GetPostgreSQL(), cfg.Provider.Currency),
	}

	if opts.clean {
		fmt.Println("🧹 Cleaning ticketing tables...")
		if err := seeder.Clean(context.Background()); err != nil {
			log.Fatalf("Failed to clean database: %v", err)
		}
	}

	if opts.withUsers {
		if err := seeder.SeedUsers(); err != nil {
			log.Fatalf("Failed to seed users: %v", err)
		}
	}

	eventID, err := seeder.SeedInventory(context.Background(), opts)
	if err != nil {
		log.Fatalf("Failed to seed tickets: %v", err)
	}

	fmt.Printf("🎉 Seeding completed. Event: %s\n", eventID)
}

// Clean empties the tables this service owns and the summaries cached from
// them. Users are left alone.
func (s *Seeder) Clean(ctx context.Context) error {
	for _, table := range []string{"invoices", "payments", "tickets"} {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
		fmt.Printf("  Truncated table: %s\n", table)
	}

	if s.db.Redis != nil {
		if err := cache.NewService(s.db.GetRedisClient()).DeletePattern(ctx, constants.CACHE_KEY_TICKET_SUMMARY+"*"); err != nil {
			return fmt.Errorf("failed to clear cached summaries: %w", err)
		}
		fmt.Println("  Cleared cached ticket summaries")
	}
	return nil
}

// SeedUsers creates the demo accounts if they are missing.
func (s *Seeder) SeedUsers() error {
	fmt.Println("  👤 Seeding users...")

	accounts := []users.User{
		{FirstName: "Admin", LastName: "User", Email: "admin@ticketing.local", Role: users.RoleAdmin},
		{FirstName: "Olive", LastName: "Organizer", Email: "organizer@ticketing.local", Role: users.RoleOrganizer},
		{FirstName: "Bea", LastName: "Buyer", Email: "buyer@ticketing.local", Role: users.RoleUser},
	}

	for i := range accounts {
		account := accounts[i]
		result := s.db.PostgreSQL.Where(users.User{Email: account.Email}).FirstOrCreate(&account)
		if result.Error != nil {
			return fmt.Errorf("failed to create user %s: %w", account.Email, result.Error)
		}
		fmt.Printf("    ✅ %s (%s) id=%s\n", account.Email, account.Role, account.ID)
	}
	return nil
}

func (s *Seeder) SeedInventory(ctx context.Context, opts options) (uuid.UUID, error) {
	eventID := uuid.New()
	if opts.eventID != "" {
		parsed, err := uuid.Parse(opts.eventID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid --event: %w", err)
		}
		eventID = parsed
	}

	tiers := []struct {
		ticketType tickets.Type
		quantity   int
		price      string
	}{
		{tickets.TypeStandard, opts.standard, opts.standardPrice},
		{tickets.TypeVIP, opts.vip, opts.vipPrice},
	}

	fmt.Println("  🎟️  Seeding tickets...")
	for _, tier := range tiers {
		if tier.quantity == 0 {
			continue
		}
		price, err := money.ParseAmount(tier.price)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid %s price: %w", tier.ticketType, err)
		}
		created, err := s.tickets.CreateBulk(ctx, eventID, price, tier.ticketType, tier.quantity)
		if err != nil {
			return uuid.Nil, err
		}
		fmt.Printf("    ✅ %d %s tickets at %s\n", len(created), tier.ticketType, price)
	}
	return eventID, nil
}

package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/klncollege/od-provider/database"
	"gorm.io/gorm"
)

func main() {
	adminOnly := flag.Bool("admin", false, "seed only the admin account")
	teacherOnly := flag.Bool("teacher", false, "seed only the principal teacher account")
	both := flag.Bool("both", false, "seed the admin and the principal teacher")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	gormDB := store.GetDB().(*gorm.DB)
	seeder := database.NewSeeder(gormDB)

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("OD Provider - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	switch {
	case *both:
		err = seeder.SeedAll()
	case *adminOnly:
		err = seeder.SeedAdminUser()
	case *teacherOnly:
		err = seeder.SeedPrincipal()
	default:
		err = seeder.SeedAll()
	}
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("🎉 Seeding completed successfully!")
	fmt.Println(separator)
	fmt.Println()
	fmt.Println("Admin account comes from ADMIN_EMAIL and ADMIN_PASSWORD.")
	fmt.Println("Principal account comes from PRINCIPAL_EMAIL and PRINCIPAL_PASSWORD.")
	fmt.Println("Unset variables skip the corresponding account.")
	fmt.Println()
}

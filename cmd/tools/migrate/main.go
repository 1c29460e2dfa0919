package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding the migration files")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+*dir, migrateURL(dbURL))
	if err != nil {
		log.Fatalf("Failed to open migrations: %v", err)
	}
	defer m.Close()

	switch cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration up failed: %v", err)
		}
	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration down failed: %v", err)
		}
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Failed to read version: %v", err)
		}
		log.Printf("Version %d (dirty=%v)", version, dirty)
		return
	default:
		log.Fatalf("Unknown command %q (want up, down or version)", cmd)
	}

	log.Println("Migration completed successfully!")
}

// migrateURL rewrites a postgres:// DSN to the pgx5:// scheme the migrate
// driver registers under.
func migrateURL(dbURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dbURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(dbURL, prefix)
		}
	}
	return dbURL
}

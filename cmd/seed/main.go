// Command seed populates an empty database with the default rank and
// Verwaltung taxonomies and an initial admin account. It is idempotent:
// tables that already contain rows are skipped.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/syndikat/teamliste/internal/config"
	"github.com/syndikat/teamliste/internal/database"
	"github.com/syndikat/teamliste/internal/model"
	"github.com/syndikat/teamliste/internal/repository"
)

var defaultRanks = []string{
	"Projektleitung",
	"Stv.Projektleitung",
	"Leadership",
	"Head-Admin",
	"Admin",
	"T-Admin",
	"Head-Moderation",
	"Moderation",
	"T-Moderation",
	"Head-Support",
	"Support",
	"T-Support",
	"Head-Analyst",
	"Analyst",
	"Developer",
	"Development Cars",
	"Development Mapping",
	"Development Kleidung",
	"Medien Gestalter",
	"Highteam",
}

var defaultVerwaltungen = []string{
	"Frakverwaltungs Leitung",
	"Frakverwaltung",
	"Eventmanagement",
	"Teamverwaltungs Leitung",
	"Teamverwaltung",
	"Regelwerkteam",
	"Teamüberwachung",
	"Support Leitung",
	"Mod Leitung",
	"Spendenverwaltung",
	"Streamingverwaltung",
}

// slugify turns a display name into the stable slug stored on members.
func slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ".", "")
	return s
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedTaxonomy(ctx, repository.NewRankRepo(db), "ranks", defaultRanks)
	seedTaxonomy(ctx, repository.NewVerwaltungRepo(db), "verwaltungen", defaultVerwaltungen)
	seedAdmin(ctx, cfg, repository.NewUserRepo(db))

	log.Println("seed complete")
}

func seedTaxonomy(ctx context.Context, repo *repository.TaxonomyRepo, label string, names []string) {
	n, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("count %s: %v", label, err)
	}
	if n > 0 {
		log.Printf("%s: %d existing entries, skipping", label, n)
		return
	}
	for i, name := range names {
		if _, err := repo.Create(ctx, slugify(name), name, true, i); err != nil {
			log.Fatalf("insert %s %q: %v", label, name, err)
		}
	}
	log.Printf("%s: inserted %d entries", label, len(names))
}

func seedAdmin(ctx context.Context, cfg config.Config, users *repository.UserRepo) {
	username := os.Getenv("SEED_ADMIN_USERNAME")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Println("SEED_ADMIN_USERNAME/SEED_ADMIN_PASSWORD not set, skipping admin user")
		return
	}
	if len(password) < 6 {
		log.Fatal("SEED_ADMIN_PASSWORD must be at least 6 characters")
	}
	_, err := users.Create(ctx, username, password, "Administrator", model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			log.Printf("admin user %q already exists, skipping", username)
			return
		}
		log.Fatalf("create admin user: %v", err)
	}
	log.Printf("created admin user %q", username)
}

package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ourevents/internal/domain"
)

//go:embed migrations/schema.sql
var schemaSQL string

// ApplySchema creates the tables when they do not exist yet. It is safe to run repeatedly.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SeedSummary reports how many rows Seed inserted per table.
type SeedSummary struct {
	Users      int
	Categories int
	Premises   int
	Events     int
}

type seedEvent struct {
	title, description, image string
	capacity                  int
	startIn, duration         time.Duration
	premise                   int
	categories                []int
}

var (
	seedCategories = []string{"Musique", "Sport", "Technologie", "Art", "Cuisine", "Voyage", "Santé", "Education"}
	seedPremises   = [][3]string{
		{"123 Rue de Paris", "Paris", "75001"},
		{"45 Avenue des Champs", "Lyon", "69000"},
		{"78 Boulevard Saint-Michel", "Marseille", "13001"},
		{"12 Rue Lafayette", "Toulouse", "31000"},
		{"99 Rue Victor Hugo", "Nice", "06000"},
	}
	seedEvents = []seedEvent{
		{"Concert Jazz Live", "Un concert exceptionnel avec les meilleurs musiciens de jazz.",
			"https://example.com/images/jazz.jpg", 150, 10 * 24 * time.Hour, 2 * time.Hour, 0, []int{0}},
		{"Hackathon Tech 2025", "Un week-end pour innover autour des nouvelles technologies.",
			"https://example.com/images/hackathon.jpg", 300, 15 * 24 * time.Hour, 48 * time.Hour, 1, []int{2, 7}},
		{"Exposition d'Art Moderne", "Découvrez les talents émergents de la scène artistique contemporaine.",
			"https://example.com/images/art.jpg", 200, 20 * 24 * time.Hour, 5 * time.Hour, 2, []int{3}},
		{"Cours de Cuisine Italienne", "Apprenez les secrets de la cuisine italienne avec un chef renommé.",
			"https://example.com/images/cuisine.jpg", 20, 25 * 24 * time.Hour, 3 * time.Hour, 0, []int{4}},
	}
)

// Seed loads the demo data set: one regular user and one admin (password "password"),
// the default categories and premises, and a few upcoming events. Existing rows are left alone.
func Seed(ctx context.Context, db *sql.DB, hasher domain.PasswordHasher, now time.Time) (*SeedSummary, error) {
	summary := &SeedSummary{}
	hash, err := hasher.Hash("password")
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	err = withTx(ctx, db, nil, func(tx *sql.Tx) error {
		users := []*domain.User{
			{Email: "user@eventapi.com", FirstName: "user_first", LastName: "user_last",
				Roles: []string{domain.RoleUser}, IsVerified: true},
			{Email: "admin@eventapi.com", FirstName: "admin_first", LastName: "admin_last",
				Roles: []string{domain.RoleUser, domain.RoleAdmin}, IsVerified: true},
		}
		var managerID int64
		for _, u := range users {
			n, err := execCount(ctx, tx, `
				INSERT INTO users (email, password_hash, first_name, last_name, roles, is_verified)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (email) DO NOTHING`,
				u.Email, hash, u.FirstName, u.LastName, pq.Array(u.Roles), u.IsVerified)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			summary.Users += n
		}
		if err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, "admin@eventapi.com").Scan(&managerID); err != nil {
			return fmt.Errorf("find seed manager: %w", err)
		}

		categoryIDs := make([]int64, len(seedCategories))
		for i, name := range seedCategories {
			n, err := execCount(ctx, tx, `INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
			if err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
			summary.Categories += n
			if err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = $1`, name).Scan(&categoryIDs[i]); err != nil {
				return err
			}
		}

		var existing int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM premises`).Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		premiseIDs := make([]int64, len(seedPremises))
		for i, p := range seedPremises {
			err := tx.QueryRowContext(ctx,
				`INSERT INTO premises (address, city, postal_code) VALUES ($1, $2, $3) RETURNING id`, p[0], p[1], p[2],
			).Scan(&premiseIDs[i])
			if err != nil {
				return fmt.Errorf("seed premise %s: %w", p[1], err)
			}
			summary.Premises++
		}

		for _, ev := range seedEvents {
			start := now.Add(ev.startIn).Truncate(time.Hour)
			var eventID int64
			err := tx.QueryRowContext(ctx, `
				INSERT INTO events (title, description, image_url, capacity, start_datetime, end_datetime, premise_id, manager_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`,
				ev.title, ev.description, ev.image, ev.capacity, start, start.Add(ev.duration), premiseIDs[ev.premise], managerID,
			).Scan(&eventID)
			if err != nil {
				return fmt.Errorf("seed event %q: %w", ev.title, err)
			}
			ids := make([]int64, 0, len(ev.categories))
			for _, idx := range ev.categories {
				ids = append(ids, categoryIDs[idx])
			}
			if err := linkCategories(ctx, tx, eventID, ids); err != nil {
				return err
			}
			summary.Events++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func execCount(ctx context.Context, tx *sql.Tx, query string, args ...any) (int, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

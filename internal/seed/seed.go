package seed

import (
	"fmt"
	"log"

	"aviary/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with demo data: a social mesh of users and
// follow edges, plus the posts, likes, and comments that make feeds look
// lived-in.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll removes all seeded rows. Identity restarts so reruns produce
// stable IDs.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, comments, likes, follows, posts, users RESTART IDENTITY CASCADE;`
	if err := s.db.Exec(sql).Error; err != nil {
		// SQLite has no TRUNCATE; fall back to per-table deletes
		tables := []string{"notifications", "comments", "likes", "follows", "posts", "users"}
		for _, table := range tables {
			if derr := s.db.Exec("DELETE FROM " + table).Error; derr != nil {
				return derr
			}
		}
	}
	return nil
}

// SeedSocialMesh creates `count` users and a follow graph between them.
// A few well-known accounts are always included so developers have stable
// logins to poke around with.
func (s *Seeder) SeedSocialMesh(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)

	for _, username := range []string{"aviary", "robin", "test"} {
		if len(users) >= count {
			break
		}
		u, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = username
			u.Email = fmt.Sprintf("%s@example.com", username)
			u.Bio = "One of the OGs."
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create base user %s: %w", username, err)
		}
		users = append(users, *u)
	}

	for i := len(users); i < count; i++ {
		u, err := s.factory.CreateUser(func(u *models.User) {
			// Suffix guarantees uniqueness across a large run
			u.Username = fmt.Sprintf("%s%d", u.Username, i)
			u.Email = fmt.Sprintf("%s@example.com", u.Username)
		})
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, *u)

		if i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	// Each user follows a handful of others
	for i := range users {
		targets := s.factory.rand.Intn(5) + 1
		seen := map[int]struct{}{i: {}}
		for t := 0; t < targets; t++ {
			j := s.factory.rand.Intn(len(users))
			if _, dup := seen[j]; dup {
				continue
			}
			seen[j] = struct{}{}
			if err := s.factory.CreateFollow(&users[i], &users[j]); err != nil {
				log.Printf("Failed to create follow %d->%d: %v", users[i].ID, users[j].ID, err)
			}
		}
	}

	log.Printf("✓ %d users created with follow mesh", len(users))
	return users, nil
}

// SeedEngagement creates `count` posts spread across the given users, then
// sprinkles likes and comments over them.
func (s *Seeder) SeedEngagement(users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed posts for")
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.factory.rand.Intn(len(users))]
		post, err := s.factory.CreatePost(&author)
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, *post)

		if i%100 == 0 {
			log.Printf("Created %d posts...", i)
		}
	}

	for i := range posts {
		likers := s.factory.rand.Intn(4)
		seen := map[uint]struct{}{}
		for l := 0; l < likers; l++ {
			liker := users[s.factory.rand.Intn(len(users))]
			if _, dup := seen[liker.ID]; dup {
				continue
			}
			seen[liker.ID] = struct{}{}
			if err := s.factory.CreateLike(&liker, &posts[i]); err != nil {
				log.Printf("Failed to create like on post %d: %v", posts[i].ID, err)
			}
		}

		if s.factory.rand.Float32() < 0.5 {
			commenter := users[s.factory.rand.Intn(len(users))]
			if _, err := s.factory.CreateComment(&commenter, &posts[i]); err != nil {
				log.Printf("Failed to create comment on post %d: %v", posts[i].ID, err)
			}
		}
	}

	log.Printf("✓ %d posts created with likes and comments", len(posts))
	return posts, nil
}

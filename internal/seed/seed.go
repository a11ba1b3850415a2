// Package seed populates the database with realistic demo data.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"warbler/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder creates fake users, messages, follows and likes.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// ClearAll wipes all rows in dependency order.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, table := range []string{"likes", "follows", "messages", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Run creates numUsers users with numMessages messages spread across them,
// then wires a random social mesh of follows and likes. Every seeded user
// shares the same password ("password") to keep demo logins simple.
func (s *Seeder) Run(numUsers, numMessages int) error {
	users, err := s.createUsers(numUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	messages, err := s.createMessages(users, numMessages)
	if err != nil {
		return fmt.Errorf("failed to create messages: %w", err)
	}
	log.Printf("Created %d messages", len(messages))

	follows, err := s.createFollows(users)
	if err != nil {
		return fmt.Errorf("failed to create follows: %w", err)
	}
	log.Printf("Created %d follows", follows)

	likes, err := s.createLikes(users, messages)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("Created %d likes", likes)

	return nil
}

func (s *Seeder) createUsers(n int) ([]models.User, error) {
	// One bcrypt hash shared across seeded users; hashing per user makes
	// large seeds painfully slow.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			Username:       fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 99)),
			Email:          gofakeit.Email(),
			Password:       string(hashed),
			Bio:            gofakeit.Sentence(8),
			Location:       gofakeit.City(),
			ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
			HeaderImageURL: models.DefaultHeaderImageURL,
		}
		if err := s.db.Create(&user).Error; err != nil {
			// Random usernames can collide; skip and carry on.
			continue
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users created")
	}
	return users, nil
}

func (s *Seeder) createMessages(users []models.User, n int) ([]models.Message, error) {
	messages := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		text := gofakeit.Sentence(gofakeit.Number(3, 12))
		if len(text) > models.MaxMessageLength {
			text = text[:models.MaxMessageLength]
		}
		msg := models.Message{
			Text:   text,
			UserID: users[rand.Intn(len(users))].ID,
		}
		if err := s.db.Create(&msg).Error; err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *Seeder) createFollows(users []models.User) (int, error) {
	created := 0
	seen := map[[2]uint]bool{}
	for _, u := range users {
		for i := 0; i < gofakeit.Number(1, 5); i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == u.ID {
				continue
			}
			key := [2]uint{u.ID, target.ID}
			if seen[key] {
				continue
			}
			seen[key] = true
			follow := models.Follow{FollowerID: u.ID, FollowedID: target.ID}
			if err := s.db.Create(&follow).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) createLikes(users []models.User, messages []models.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}
	created := 0
	seen := map[[2]uint]bool{}
	for _, u := range users {
		for i := 0; i < gofakeit.Number(0, 8); i++ {
			msg := messages[rand.Intn(len(messages))]
			if msg.UserID == u.ID {
				continue
			}
			key := [2]uint{u.ID, msg.ID}
			if seen[key] {
				continue
			}
			seen[key] = true
			like := models.Like{UserID: u.ID, MessageID: msg.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/messages"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

// Seeder populates the database with development or test fixtures.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating cities...")
	cities, err := s.seedCities(40)
	if err != nil {
		return fmt.Errorf("failed to seed cities: %w", err)
	}

	log("Creating users...")
	users, err := s.seedUsers(cities, 100)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating trail reports...")
	posts, err := s.seedPosts(users, cities, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating post comments and likes...")
	if err := s.seedPostActivity(users, posts, 600); err != nil {
		return fmt.Errorf("failed to seed post activity: %w", err)
	}

	log("Creating trek buddy requests...")
	if err := s.seedRequests(users, cities, 120); err != nil {
		return fmt.Errorf("failed to seed requests: %w", err)
	}

	log("Creating chat messages...")
	if err := s.seedChatMessages(users, cities, 800); err != nil {
		return fmt.Errorf("failed to seed chat messages: %w", err)
	}

	log("Creating direct messages...")
	if err := s.seedDirectMessages(users, 400); err != nil {
		return fmt.Errorf("failed to seed direct messages: %w", err)
	}

	return nil
}

// SeedTest seeds the test database with a small fixed cast
func (s *Seeder) SeedTest() error {
	cities, err := s.seedCities(3)
	if err != nil {
		return fmt.Errorf("failed to seed cities: %w", err)
	}

	names := []string{"alice", "bob", "charlie", "diana"}
	var users []models.User
	for _, name := range names {
		authID := "test-" + name
		user := models.User{
			ID:       uuid.NewString(),
			AuthID:   &authID,
			Username: name,
		}
		if err := s.db.FirstOrCreate(&user, models.User{AuthID: &authID}).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", name, err)
		}
		users = append(users, user)
	}

	if _, err := s.seedPosts(users, cities, 6); err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}
	if err := s.seedRequests(users, cities, 4); err != nil {
		return fmt.Errorf("failed to seed requests: %w", err)
	}
	return nil
}

// Clean removes all seeded data. Order follows the dependency graph.
func (s *Seeder) Clean() error {
	tables := []string{
		"typing_indicators",
		"direct_messages",
		"chat_messages",
		"request_comments",
		"request_interests",
		"requests",
		"post_comments",
		"post_likes",
		"post_images",
		"posts",
		"reports",
		"user_blocks",
		"visited_cities",
		"users",
		"cities",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) seedCities(count int) ([]models.City, error) {
	var existing []models.City
	if err := s.db.Find(&existing).Error; err != nil {
		return nil, err
	}
	if len(existing) >= count {
		return existing, nil
	}

	cities := existing
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Name] = true
	}

	for len(cities) < count {
		name := gofakeit.City()
		if seen[name] {
			continue
		}
		seen[name] = true

		city := models.City{
			ID:          uuid.NewString(),
			Name:        name,
			Country:     gofakeit.Country(),
			CountryCode: gofakeit.CountryAbr(),
			Latitude:    gofakeit.Latitude(),
			Longitude:   gofakeit.Longitude(),
		}
		if err := s.db.Create(&city).Error; err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, nil
}

func (s *Seeder) seedUsers(cities []models.City, count int) ([]models.User, error) {
	var users []models.User

	for i := 0; i < count; i++ {
		username := gofakeit.Username()
		city := cities[rand.Intn(len(cities))]

		user := models.User{
			ID:            uuid.NewString(),
			Username:      username,
			AvatarURL:     fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
			Bio:           gofakeit.HipsterSentence(),
			Location:      fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
			CurrentCityID: &city.ID,
		}

		// Roughly a quarter of seeded users stay guests
		if rand.Float32() < 0.25 {
			sessionID := uuid.NewString()
			user.SessionID = &sessionID
			user.Username = fmt.Sprintf("traveler-%s", sessionID[:8])
		} else {
			authID := fmt.Sprintf("seed-%s-%d", username, i)
			email := gofakeit.Email()
			user.AuthID = &authID
			user.Email = &email
		}

		lastSeen := gofakeit.DateRange(time.Now().Add(-72*time.Hour), time.Now())
		user.LastSeenAt = &lastSeen

		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		if err := s.db.Create(&models.VisitedCity{
			ID:     uuid.NewString(),
			UserID: user.ID,
			CityID: city.ID,
		}).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

var trailWords = []string{
	"pass", "ridge", "glacier", "base camp", "viewpoint", "suspension bridge",
	"tea house", "descent", "river crossing", "summit",
}

func (s *Seeder) seedPosts(users []models.User, cities []models.City, count int) ([]models.Post, error) {
	var posts []models.Post
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		city := cities[rand.Intn(len(cities))]

		post := models.Post{
			ID:       uuid.NewString(),
			AuthorID: author.ID,
			CityID:   city.ID,
			Title:    fmt.Sprintf("Conditions at the %s", trailWords[rand.Intn(len(trailWords))]),
			Body:     gofakeit.Paragraph(1, 3, 12, " "),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedPostActivity(users []models.User, posts []models.Post, count int) error {
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		post := posts[rand.Intn(len(posts))]

		if rand.Float32() < 0.5 {
			// Likes are unique per (post, user); skip collisions
			like := models.PostLike{
				ID:     uuid.NewString(),
				PostID: post.ID,
				UserID: user.ID,
			}
			_ = s.db.Create(&like).Error
			continue
		}

		comment := models.PostComment{
			ID:       uuid.NewString(),
			PostID:   post.ID,
			AuthorID: user.ID,
			Content:  gofakeit.Sentence(10),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedRequests(users []models.User, cities []models.City, count int) error {
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		city := cities[rand.Intn(len(cities))]

		start := gofakeit.DateRange(time.Now(), time.Now().Add(90*24*time.Hour))
		status := models.RequestStatusOpen
		if rand.Float32() < 0.2 {
			status = models.RequestStatusClosed
		}

		request := models.Request{
			ID:        uuid.NewString(),
			AuthorID:  author.ID,
			CityID:    city.ID,
			Title:     fmt.Sprintf("Looking for a buddy: %s", gofakeit.HipsterWord()),
			Body:      gofakeit.Paragraph(1, 2, 10, " "),
			Status:    status,
			StartDate: &start,
		}
		if err := s.db.Create(&request).Error; err != nil {
			return err
		}

		// A few interested users per request, never the author
		for j := 0; j < rand.Intn(4); j++ {
			user := users[rand.Intn(len(users))]
			if user.ID == author.ID {
				continue
			}
			_ = s.db.Create(&models.RequestInterest{
				ID:        uuid.NewString(),
				RequestID: request.ID,
				UserID:    user.ID,
			}).Error
		}
	}
	return nil
}

func (s *Seeder) seedChatMessages(users []models.User, cities []models.City, count int) error {
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		city := cities[rand.Intn(len(cities))]

		message := models.ChatMessage{
			ID:       uuid.NewString(),
			RoomType: models.RoomTypeCity,
			RoomID:   city.ID,
			UserID:   user.ID,
			Content:  gofakeit.Sentence(8),
		}
		// A fifth of traffic goes to the country rooms
		if rand.Float32() < 0.2 {
			message.RoomType = models.RoomTypeCountry
			message.RoomID = city.CountryCode
		}
		if err := s.db.Create(&message).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedDirectMessages(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		sender := users[rand.Intn(len(users))]
		recipient := users[rand.Intn(len(users))]
		if sender.ID == recipient.ID {
			continue
		}

		message := models.DirectMessage{
			ID:             uuid.NewString(),
			ConversationID: messages.ConversationID(sender.ID, recipient.ID),
			SenderID:       sender.ID,
			RecipientID:    recipient.ID,
			Content:        gofakeit.Sentence(10),
		}
		if rand.Float32() < 0.6 {
			readAt := time.Now()
			message.ReadAt = &readAt
		}
		if err := s.db.Create(&message).Error; err != nil {
			return err
		}
	}
	return nil
}

// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"aviary/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// SkipBcrypt stores the demo password in plain text. Dev fast mode only;
	// those accounts cannot log in.
	SkipBcrypt bool
	// MaxDays bounds how far back seeded content timestamps spread.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// spreadTimestamp places content at a random point in the recent past.
func (f *Factory) spreadTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:   gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		FullName:   gofakeit.Name(),
		Email:      gofakeit.Email(),
		Bio:        gofakeit.Sentence(10),
		Link:       gofakeit.URL(),
		ProfileImg: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		CoverImg:   fmt.Sprintf("https://picsum.photos/seed/cover-%s/1200/400", gofakeit.UUID()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample `models.Post` for the given
// user. Roughly a third of the generated posts carry an image.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Text:      gofakeit.Paragraph(1, 3, 5, " "),
		UserID:    user.ID,
		CreatedAt: f.spreadTimestamp(),
	}
	if f.rand.Float32() < 0.35 {
		post.Img = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:   gofakeit.Sentence(8),
		UserID: user.ID,
		PostID: post.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like from `user` on `post` together with the
// notification the API would have written.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID: user.ID,
		PostID: post.ID,
	}
	if err := f.db.Create(like).Error; err != nil {
		return err
	}
	return f.db.Create(&models.Notification{
		FromUserID: user.ID,
		ToUserID:   post.UserID,
		Type:       models.NotificationTypeLike,
	}).Error
}

// CreateFollow persists a follow edge together with its notification.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	edge := &models.Follow{
		FollowerID: follower.ID,
		FolloweeID: followee.ID,
	}
	if err := f.db.Create(edge).Error; err != nil {
		return err
	}
	return f.db.Create(&models.Notification{
		FromUserID: follower.ID,
		ToUserID:   followee.ID,
		Type:       models.NotificationTypeFollow,
	}).Error
}

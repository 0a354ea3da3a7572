package posts

import (
	"context"
	"strings"
	"testing"

	"github.com/JamesDimonaco/trek-together-sub000/internal/blocks"
	"github.com/JamesDimonaco/trek-together-sub000/internal/database"
	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeDeleter struct {
	deleted []string
	fail    bool
}

func (f *fakeDeleter) DeleteFile(ctx context.Context, key string) error {
	if f.fail {
		return assert.AnError
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db))
	return db
}

func newService(db *gorm.DB, files *fakeDeleter) *Service {
	if files == nil {
		return NewService(db, blocks.NewRegistry(db), nil)
	}
	return NewService(db, blocks.NewRegistry(db), files)
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCity(t *testing.T, db *gorm.DB, name string) *models.City {
	t.Helper()
	city := &models.City{Name: name, Country: "Peru", CountryCode: "PE"}
	require.NoError(t, db.Create(city).Error)
	return city
}

func TestCreate_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, nil)
	ctx := context.Background()

	author := createUser(t, db, "alice")
	city := createCity(t, db, "Cusco")

	_, err := svc.Create(ctx, author.ID, CreateInput{Title: "", Body: "b", CityID: city.ID})
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	_, err = svc.Create(ctx, author.ID, CreateInput{
		Title: strings.Repeat("x", MaxTitleLength+1), Body: "b", CityID: city.ID,
	})
	apiErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, apiErr.Code)
	assert.Equal(t, MaxTitleLength, apiErr.Limit)

	_, err = svc.Create(ctx, author.ID, CreateInput{
		Title: "ok", Body: strings.Repeat("x", MaxBodyLength+1), CityID: city.ID,
	})
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	_, err = svc.Create(ctx, author.ID, CreateInput{Title: "ok", Body: "b", CityID: "missing"})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestCreate_StoresPostWithImages(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, nil)
	ctx := context.Background()

	author := createUser(t, db, "alice")
	city := createCity(t, db, "Cusco")

	post, err := svc.Create(ctx, author.ID, CreateInput{
		Title:  "  Salkantay in June  ",
		Body:   "Snow on the pass, bring layers.",
		CityID: city.ID,
		Images: []ImageInput{{StorageKey: "images/1.jpg", URL: "https://cdn/1.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Salkantay in June", post.Title)

	view, err := svc.Get(ctx, author.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, view.Images, 1)
	assert.Equal(t, "images/1.jpg", view.Images[0].StorageKey)
	assert.EqualValues(t, 0, view.LikeCount)
}

func TestToggleLike_FlipsAndBacks(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, nil)
	ctx := context.Background()

	author := createUser(t, db, "alice")
	liker := createUser(t, db, "bo")
	city := createCity(t, db, "Cusco")
	post, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	view, err := svc.Get(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.LikeCount)
	assert.True(t, view.ViewerLiked)

	liked, err = svc.ToggleLike(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	view, err = svc.Get(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, view.LikeCount)
	assert.False(t, view.ViewerLiked)

	_, err = svc.ToggleLike(ctx, liker.ID, "missing")
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestComments_AddListDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(db, nil)
	ctx := context.Background()

	author := createUser(t, db, "alice")
	commenter := createUser(t, db, "bo")
	city := createCity(t, db, "Cusco")
	post, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, commenter.ID, post.ID, "")
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	_, err = svc.AddComment(ctx, commenter.ID, post.ID, strings.Repeat("x", MaxCommentLength+1))
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	comment, err := svc.AddComment(ctx, commenter.ID, post.ID, "great report")
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, author.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "bo", comments[0].Author.Username)

	err = svc.DeleteComment(ctx, author.ID, comment.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden))

	require.NoError(t, svc.DeleteComment(ctx, commenter.ID, comment.ID))

	comments, err = svc.ListComments(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestDelete_CascadesAndReleasesBlobs(t *testing.T) {
	db := setupTestDB(t)
	files := &fakeDeleter{}
	svc := newService(db, files)
	ctx := context.Background()

	author := createUser(t, db, "alice")
	liker := createUser(t, db, "bo")
	city := createCity(t, db, "Cusco")

	post, err := svc.Create(ctx, author.ID, CreateInput{
		Title: "t", Body: "b", CityID: city.ID,
		Images: []ImageInput{{StorageKey: "images/del.jpg", URL: "u"}},
	})
	require.NoError(t, err)

	_, err = svc.ToggleLike(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, liker.ID, post.ID, "hi")
	require.NoError(t, err)

	err = svc.Delete(ctx, liker.ID, post.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, author.ID, post.ID))

	// No dependent rows survive the delete
	for _, model := range []interface{}{
		&models.PostComment{}, &models.PostLike{}, &models.PostImage{},
	} {
		var count int64
		db.Model(model).Count(&count)
		assert.EqualValues(t, 0, count)
	}
	assert.Equal(t, []string{"images/del.jpg"}, files.deleted)

	err = svc.Delete(ctx, author.ID, post.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestDelete_BlobFailureDoesNotFailDelete(t *testing.T) {
	db := setupTestDB(t)
	files := &fakeDeleter{fail: true}
	svc := newService(db, files)
	ctx := context.Background()

	author := createUser(t, db, "alice")
	city := createCity(t, db, "Cusco")
	post, err := svc.Create(ctx, author.ID, CreateInput{
		Title: "t", Body: "b", CityID: city.ID,
		Images: []ImageInput{{StorageKey: "images/x.jpg", URL: "u"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, author.ID, post.ID))

	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestListByCity_FiltersBlockedAuthors(t *testing.T) {
	db := setupTestDB(t)
	registry := blocks.NewRegistry(db)
	svc := NewService(db, registry, nil)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bo := createUser(t, db, "bo")
	viewer := createUser(t, db, "cory")
	city := createCity(t, db, "Cusco")

	_, err := svc.Create(ctx, alice.ID, CreateInput{Title: "a", Body: "b", CityID: city.ID})
	require.NoError(t, err)
	boPost, err := svc.Create(ctx, bo.ID, CreateInput{Title: "c", Body: "d", CityID: city.ID})
	require.NoError(t, err)

	views, err := svc.ListByCity(ctx, viewer.ID, city.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	// bo blocks the viewer; filtering is symmetric so bo's posts vanish
	require.NoError(t, registry.Block(ctx, bo.ID, viewer.ID, ""))

	views, err = svc.ListByCity(ctx, viewer.ID, city.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, alice.ID, views[0].AuthorID)

	// Detail access to a blocked author's post reads as missing
	_, err = svc.Get(ctx, viewer.ID, boPost.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	// Anonymous viewers see everything
	views, err = svc.ListByCity(ctx, "", city.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

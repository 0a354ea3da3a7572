package requests

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

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCity(t *testing.T, db *gorm.DB, name string) *models.City {
	t.Helper()
	city := &models.City{Name: name, Country: "Nepal", CountryCode: "NP"}
	require.NoError(t, db.Create(city).Error)
	return city
}

func TestCreate_DefaultsToOpen(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, blocks.NewRegistry(db))
	ctx := context.Background()

	author := createUser(t, db, "alice")
	city := createCity(t, db, "Pokhara")

	request, err := svc.Create(ctx, author.ID, CreateInput{
		Title: "ABC circuit, October", Body: "Looking for 2-3 people.", CityID: city.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusOpen, request.Status)

	_, err = svc.Create(ctx, author.ID, CreateInput{
		Title: "t", Body: strings.Repeat("x", MaxBodyLength+1), CityID: city.ID,
	})
	apiErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrValidation, apiErr.Code)
	assert.Equal(t, MaxBodyLength, apiErr.Limit)

	_, err = svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: "missing"})
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestToggleInterest_SelfInterestForbidden(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, blocks.NewRegistry(db))
	ctx := context.Background()

	author := createUser(t, db, "alice")
	city := createCity(t, db, "Pokhara")
	request, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	_, err = svc.ToggleInterest(ctx, author.ID, request.ID)
	apiErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrSelfInterest, apiErr.Code)

	// The rejected toggle leaves no ledger row behind
	var count int64
	db.Model(&models.RequestInterest{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestToggleInterest_FlipsAndBacks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, blocks.NewRegistry(db))
	ctx := context.Background()

	author := createUser(t, db, "alice")
	buddy := createUser(t, db, "bo")
	city := createCity(t, db, "Pokhara")
	request, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	interested, err := svc.ToggleInterest(ctx, buddy.ID, request.ID)
	require.NoError(t, err)
	assert.True(t, interested)

	view, err := svc.Get(ctx, buddy.ID, request.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.InterestCount)
	assert.True(t, view.ViewerInterested)

	interested, err = svc.ToggleInterest(ctx, buddy.ID, request.ID)
	require.NoError(t, err)
	assert.False(t, interested)

	view, err = svc.Get(ctx, buddy.ID, request.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, view.InterestCount)
}

func TestListInterested_AuthorOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, blocks.NewRegistry(db))
	ctx := context.Background()

	author := createUser(t, db, "alice")
	buddy := createUser(t, db, "bo")
	city := createCity(t, db, "Pokhara")
	request, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	_, err = svc.ToggleInterest(ctx, buddy.ID, request.ID)
	require.NoError(t, err)

	_, err = svc.ListInterested(ctx, buddy.ID, request.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden))

	interests, err := svc.ListInterested(ctx, author.ID, request.ID)
	require.NoError(t, err)
	require.Len(t, interests, 1)
	assert.Equal(t, "bo", interests[0].User.Username)
}

func TestSetStatus_AuthorOnlyAndLedgersSurvive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, blocks.NewRegistry(db))
	ctx := context.Background()

	author := createUser(t, db, "alice")
	buddy := createUser(t, db, "bo")
	city := createCity(t, db, "Pokhara")
	request, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	_, err = svc.ToggleInterest(ctx, buddy.ID, request.ID)
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, buddy.ID, request.ID, "when do you leave?")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, buddy.ID, request.ID, models.RequestStatusClosed)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden))

	_, err = svc.SetStatus(ctx, author.ID, request.ID, "archived")
	assert.True(t, errors.IsCode(err, errors.ErrValidation))

	closed, err := svc.SetStatus(ctx, author.ID, request.ID, models.RequestStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusClosed, closed.Status)

	// Closing changes only the status, the ledgers keep their rows
	var interests, comments int64
	db.Model(&models.RequestInterest{}).Count(&interests)
	db.Model(&models.RequestComment{}).Count(&comments)
	assert.EqualValues(t, 1, interests)
	assert.EqualValues(t, 1, comments)

	reopened, err := svc.SetStatus(ctx, author.ID, request.ID, models.RequestStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusOpen, reopened.Status)
}

func TestListByCity_ClosedHiddenByDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, blocks.NewRegistry(db))
	ctx := context.Background()

	author := createUser(t, db, "alice")
	city := createCity(t, db, "Pokhara")

	open, err := svc.Create(ctx, author.ID, CreateInput{Title: "open", Body: "b", CityID: city.ID})
	require.NoError(t, err)
	closed, err := svc.Create(ctx, author.ID, CreateInput{Title: "closed", Body: "b", CityID: city.ID})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, author.ID, closed.ID, models.RequestStatusClosed)
	require.NoError(t, err)

	views, err := svc.ListByCity(ctx, "", city.ID, false, 20, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, open.ID, views[0].ID)

	views, err = svc.ListByCity(ctx, "", city.ID, true, 20, 0)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestBlockFiltering_ListAndDetail(t *testing.T) {
	db := setupTestDB(t)
	registry := blocks.NewRegistry(db)
	svc := NewService(db, registry)
	ctx := context.Background()

	author := createUser(t, db, "alice")
	viewer := createUser(t, db, "bo")
	city := createCity(t, db, "Pokhara")
	request, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	require.NoError(t, registry.Block(ctx, viewer.ID, author.ID, ""))

	views, err := svc.ListByCity(ctx, viewer.ID, city.ID, false, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = svc.Get(ctx, viewer.ID, request.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestDelete_Cascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, blocks.NewRegistry(db))
	ctx := context.Background()

	author := createUser(t, db, "alice")
	buddy := createUser(t, db, "bo")
	city := createCity(t, db, "Pokhara")
	request, err := svc.Create(ctx, author.ID, CreateInput{Title: "t", Body: "b", CityID: city.ID})
	require.NoError(t, err)

	_, err = svc.ToggleInterest(ctx, buddy.ID, request.ID)
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, buddy.ID, request.ID, "hi")
	require.NoError(t, err)

	err = svc.Delete(ctx, buddy.ID, request.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, author.ID, request.ID))

	var interests, comments, rows int64
	db.Model(&models.RequestInterest{}).Count(&interests)
	db.Model(&models.RequestComment{}).Count(&comments)
	db.Model(&models.Request{}).Count(&rows)
	assert.EqualValues(t, 0, interests)
	assert.EqualValues(t, 0, comments)
	assert.EqualValues(t, 0, rows)
}

package identity

import (
	"context"
	"testing"

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

// setupTestDB creates an in-memory SQLite database for testing
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

func createCity(t *testing.T, db *gorm.DB, name string) *models.City {
	t.Helper()
	city := &models.City{Name: name, Country: "Peru", CountryCode: "PE"}
	require.NoError(t, db.Create(city).Error)
	return city
}

func TestResolveOrCreateGuest_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.ResolveOrCreateGuest(ctx, "sess-abc", "wanderer")
	require.NoError(t, err)
	require.NotNil(t, first.SessionID)
	assert.Equal(t, "sess-abc", *first.SessionID)
	assert.Nil(t, first.AuthID)

	second, err := svc.ResolveOrCreateGuest(ctx, "sess-abc", "someone-else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "wanderer", second.Username)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestResolveOrCreateGuest_EmptyToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.ResolveOrCreateGuest(context.Background(), "", "wanderer")
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestResolveOrCreateAuthenticated_PatchesProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	email := "trekker@example.com"
	first, err := svc.ResolveOrCreateAuthenticated(ctx, "ext-1", "trekker", "https://cdn/a1.png", &email)
	require.NoError(t, err)
	require.NotNil(t, first.AuthID)
	assert.Equal(t, "ext-1", *first.AuthID)

	second, err := svc.ResolveOrCreateAuthenticated(ctx, "ext-1", "trekker-renamed", "https://cdn/a2.png", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	reloaded, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "trekker-renamed", reloaded.Username)
	assert.Equal(t, "https://cdn/a2.png", reloaded.AvatarURL)
	require.NotNil(t, reloaded.Email)
	assert.Equal(t, email, *reloaded.Email)
}

func TestMigrate_GuestNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.MigrateGuestToAuthenticated(context.Background(), "nope", "ext-1", "trekker", "")
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestMigrate_ConvertsGuestInPlace(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	cusco := createCity(t, db, "Cusco")

	guest, err := svc.ResolveOrCreateGuest(ctx, "sess-abc", "wanderer")
	require.NoError(t, err)
	require.NoError(t, svc.JoinCity(ctx, guest.ID, cusco.ID))

	merged, err := svc.MigrateGuestToAuthenticated(ctx, guest.ID, "ext-1", "trekker", "https://cdn/a.png")
	require.NoError(t, err)

	// Same record, converted in place
	assert.Equal(t, guest.ID, merged.ID)
	require.NotNil(t, merged.AuthID)
	assert.Equal(t, "ext-1", *merged.AuthID)
	assert.Nil(t, merged.SessionID)
	assert.Equal(t, "trekker", merged.Username)

	// Visited cities preserved
	cityIDs, err := svc.VisitedCityIDs(ctx, merged.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cusco.ID}, cityIDs)
	require.NotNil(t, merged.CurrentCityID)
	assert.Equal(t, cusco.ID, *merged.CurrentCityID)

	// The old session token resolves to nothing
	var bySession models.User
	err = db.Where("session_id = ?", "sess-abc").First(&bySession).Error
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestMigrate_MergesIntoExistingAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	c1 := createCity(t, db, "Cusco")
	c2 := createCity(t, db, "Huaraz")
	c3 := createCity(t, db, "Arequipa")

	existing, err := svc.ResolveOrCreateAuthenticated(ctx, "ext-1", "trekker", "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.JoinCity(ctx, existing.ID, c1.ID))
	require.NoError(t, svc.JoinCity(ctx, existing.ID, c2.ID))

	guest, err := svc.ResolveOrCreateGuest(ctx, "sess-xyz", "wanderer")
	require.NoError(t, err)
	require.NoError(t, svc.JoinCity(ctx, guest.ID, c2.ID))
	require.NoError(t, svc.JoinCity(ctx, guest.ID, c3.ID))

	merged, err := svc.MigrateGuestToAuthenticated(ctx, guest.ID, "ext-1", "trekker", "")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, merged.ID)

	// Visited sets unioned, duplicate-free
	cityIDs, err := svc.VisitedCityIDs(ctx, existing.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{c1.ID, c2.ID, c3.ID}, cityIDs)

	// Existing user's current city wins
	require.NotNil(t, merged.CurrentCityID)
	assert.Equal(t, c2.ID, *merged.CurrentCityID)

	// Guest record is gone, along with its visit rows
	var gone models.User
	err = db.Unscoped().Where("id = ?", guest.ID).First(&gone).Error
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	var orphanVisits int64
	db.Model(&models.VisitedCity{}).Where("user_id = ?", guest.ID).Count(&orphanVisits)
	assert.EqualValues(t, 0, orphanVisits)
}

func TestMigrate_GuestCurrentCityAdoptedWhenExistingHasNone(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	cusco := createCity(t, db, "Cusco")

	existing, err := svc.ResolveOrCreateAuthenticated(ctx, "ext-2", "trekker", "", nil)
	require.NoError(t, err)
	require.Nil(t, existing.CurrentCityID)

	guest, err := svc.ResolveOrCreateGuest(ctx, "sess-2", "wanderer")
	require.NoError(t, err)
	require.NoError(t, svc.JoinCity(ctx, guest.ID, cusco.ID))

	merged, err := svc.MigrateGuestToAuthenticated(ctx, guest.ID, "ext-2", "trekker", "")
	require.NoError(t, err)
	require.NotNil(t, merged.CurrentCityID)
	assert.Equal(t, cusco.ID, *merged.CurrentCityID)
}

func TestJoinCity_DuplicateFree(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	cusco := createCity(t, db, "Cusco")
	guest, err := svc.ResolveOrCreateGuest(ctx, "sess-j", "wanderer")
	require.NoError(t, err)

	require.NoError(t, svc.JoinCity(ctx, guest.ID, cusco.ID))
	require.NoError(t, svc.JoinCity(ctx, guest.ID, cusco.ID))

	cityIDs, err := svc.VisitedCityIDs(ctx, guest.ID)
	require.NoError(t, err)
	assert.Len(t, cityIDs, 1)
}

func TestJoinCity_UnknownCity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	guest, err := svc.ResolveOrCreateGuest(ctx, "sess-k", "wanderer")
	require.NoError(t, err)

	err = svc.JoinCity(ctx, guest.ID, "no-such-city")
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

func TestAnonymize_StripsIdentityKeepsRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	email := "trekker@example.com"
	user, err := svc.ResolveOrCreateAuthenticated(ctx, "ext-3", "trekker", "https://cdn/a.png", &email)
	require.NoError(t, err)

	require.NoError(t, svc.Anonymize(ctx, user.ID))

	reloaded, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.AuthID)
	assert.Nil(t, reloaded.SessionID)
	assert.Nil(t, reloaded.Email)
	assert.Equal(t, "deleted user", reloaded.Username)
}

func TestHardDelete_RemovesRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.ResolveOrCreateGuest(ctx, "sess-h", "wanderer")
	require.NoError(t, err)

	require.NoError(t, svc.HardDelete(ctx, user.ID))

	_, err = svc.GetByID(ctx, user.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	err = svc.HardDelete(ctx, user.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}

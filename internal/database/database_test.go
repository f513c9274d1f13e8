package database

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-while/go-postboard/internal/models"
)

// openTestDB opens a fresh database in a temporary directory.
// A single connection keeps the pragmas (foreign_keys) on every statement.
func openTestDB(t *testing.T) *Database {
	t.Helper()
	dbconfig := &DBConfig{
		DataDir:      t.TempDir(),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		WALMode:      true,
		SyncMode:     "OFF",
		CacheSize:    -2048,
		TempStore:    "MEMORY",
	}
	db, err := OpenDatabase(dbconfig)
	require.NoError(t, err)
	t.Cleanup(func() {
		close(db.StopChan)
		_ = db.Shutdown()
	})
	return db
}

func insertTestUser(t *testing.T, db *Database, username, email string) *models.User {
	t.Helper()
	err := db.InsertUser(&models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$fakehashfortesting",
		DisplayName:  username,
	})
	require.NoError(t, err)
	user, err := db.GetUserByUsername(username)
	require.NoError(t, err)
	return user
}

func TestUserCRUD(t *testing.T) {
	db := openTestDB(t)

	user := insertTestUser(t, db, "Alice", "Alice@Example.com")
	assert.Equal(t, "Alice", user.Username)
	assert.Equal(t, "Alice@Example.com", user.Email)
	assert.Equal(t, 0, user.LoginAttempts)
	assert.Nil(t, user.LastLoginAt)

	// Lookups are case-insensitive but the stored form is preserved
	byName, err := db.GetUserByUsername("ALICE")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "Alice", byName.Username)

	byEmail, err := db.GetUserByEmail("alice@example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Username)

	// Unknown user
	_, err = db.GetUserByUsername("nobody")
	assert.Error(t, err)

	// Update email
	require.NoError(t, db.UpdateUserEmail(user.ID, "new@example.com"))
	updated, err := db.GetUserByEmail("NEW@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)

	// Update password
	require.NoError(t, db.UpdateUserPassword(user.ID, "newhash"))
	updated, err = db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", updated.PasswordHash)

	// Delete
	require.NoError(t, db.DeleteUser(user.ID))
	_, err = db.GetUserByID(user.ID)
	assert.Error(t, err)
}

func TestUserUniquenessIsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)

	insertTestUser(t, db, "bob", "bob@example.com")

	// Same username with different case must be rejected
	err := db.InsertUser(&models.User{
		Username:     "BOB",
		Email:        "other@example.com",
		PasswordHash: "x",
	})
	assert.Error(t, err)

	// Same email with different case must be rejected
	err = db.InsertUser(&models.User{
		Username:     "carol",
		Email:        "BOB@EXAMPLE.COM",
		PasswordHash: "x",
	})
	assert.Error(t, err)

	users, err := db.GetAllUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserPermissions(t *testing.T) {
	db := openTestDB(t)
	user := insertTestUser(t, db, "mod", "mod@example.com")

	require.NoError(t, db.InsertUserPermission(&models.UserPermission{
		UserID:     user.ID,
		Permission: "admin",
	}))

	perms, err := db.GetUserPermissions(user.ID)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "admin", perms[0].Permission)
	assert.False(t, perms[0].GrantedAt.IsZero())

	// Duplicate permission is rejected
	err = db.InsertUserPermission(&models.UserPermission{
		UserID:     user.ID,
		Permission: "admin",
	})
	assert.Error(t, err)

	// Permissions cascade on user deletion
	require.NoError(t, db.DeleteUser(user.ID))
	perms, err = db.GetUserPermissions(user.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	user := insertTestUser(t, db, "dave", "dave@example.com")

	sessionID, err := db.CreateUserSession(user.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, sessionID, SessionIDLength)

	// Valid session returns the user and session
	gotUser, gotSession, err := db.ValidateUserSession(sessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, gotUser.ID)
	assert.Equal(t, sessionID, gotSession.ID)
	assert.True(t, gotSession.ExpiresAt.After(time.Now()))

	// Login bookkeeping was updated
	gotUser, err = db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", gotUser.LastLoginIP)
	require.NotNil(t, gotUser.LastLoginAt)

	// A second login replaces the first session
	newSessionID, err := db.CreateUserSession(user.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, sessionID, newSessionID)
	_, _, err = db.ValidateUserSession(sessionID)
	assert.Error(t, err)

	// Logout invalidates the session, a second logout is harmless
	require.NoError(t, db.InvalidateUserSessionBySessionID(newSessionID))
	require.NoError(t, db.InvalidateUserSessionBySessionID(newSessionID))
	_, _, err = db.ValidateUserSession(newSessionID)
	assert.Error(t, err)
}

func TestValidateUserSessionRejectsBadIDs(t *testing.T) {
	db := openTestDB(t)

	_, _, err := db.ValidateUserSession("")
	assert.Error(t, err)

	_, _, err = db.ValidateUserSession("nonexistent-session-id")
	assert.Error(t, err)
}

func TestSessionExpiryAndCleanup(t *testing.T) {
	db := openTestDB(t)
	user := insertTestUser(t, db, "erin", "erin@example.com")

	// Insert an already expired session directly
	_, err := db.GetMainDB().Exec(
		`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`,
		strings.Repeat("ab", 32), user.ID, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	_, _, err = db.ValidateUserSession(strings.Repeat("ab", 32))
	assert.Error(t, err)

	require.NoError(t, db.CleanupExpiredSessions())
	_, err = db.GetSession(strings.Repeat("ab", 32))
	assert.Error(t, err)
}

func TestLoginLockout(t *testing.T) {
	db := openTestDB(t)
	user := insertTestUser(t, db, "frank", "frank@example.com")

	locked, err := db.IsUserLockedOut("frank")
	require.NoError(t, err)
	assert.False(t, locked)

	for i := 0; i < MaxLoginAttempts; i++ {
		require.NoError(t, db.IncrementLoginAttempts("FRANK"))
	}

	locked, err = db.IsUserLockedOut("frank")
	require.NoError(t, err)
	assert.True(t, locked)

	// Lockout expires after the lockout window and the counter resets
	_, err = db.GetMainDB().Exec(
		`UPDATE users SET updated_at = datetime('now', '-16 minutes') WHERE id = ?`, user.ID)
	require.NoError(t, err)

	locked, err = db.IsUserLockedOut("frank")
	require.NoError(t, err)
	assert.False(t, locked)

	// A successful login resets the counter too
	for i := 0; i < MaxLoginAttempts; i++ {
		require.NoError(t, db.IncrementLoginAttempts("frank"))
	}
	_, err = db.CreateUserSession(user.ID, "10.0.0.1")
	require.NoError(t, err)
	locked, err = db.IsUserLockedOut("frank")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestPosts(t *testing.T) {
	db := openTestDB(t)
	user := insertTestUser(t, db, "grace", "grace@example.com")

	var postIDs []int64
	for _, subject := range []string{"first", "second", "third"} {
		p := &models.Post{UserID: user.ID, Subject: subject, Body: "body of " + subject}
		require.NoError(t, db.InsertPost(p))
		require.NotZero(t, p.ID)
		postIDs = append(postIDs, p.ID)
	}

	count, err := db.CountPosts()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = db.CountPostsByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Newest first, username joined in
	posts, err := db.GetRecentPosts(1, 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "third", posts[0].Subject)
	assert.Equal(t, "second", posts[1].Subject)
	assert.Equal(t, "grace", posts[0].Username)

	posts, err = db.GetRecentPosts(2, 2)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "first", posts[0].Subject)

	// Hidden posts disappear from listing and counts
	require.NoError(t, db.HidePost(postIDs[2]))
	count, err = db.CountPosts()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	posts, err = db.GetRecentPosts(1, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	// The hidden post is still loadable by ID
	hidden, err := db.GetPostByID(postIDs[2])
	require.NoError(t, err)
	assert.False(t, hidden.IsVisible)

	// Deleting a post removes it
	require.NoError(t, db.DeletePost(postIDs[0]))
	_, err = db.GetPostByID(postIDs[0])
	assert.Error(t, err)

	// Deleting the user cascades to the remaining posts
	require.NoError(t, db.DeleteUser(user.ID))
	count, err = db.CountPostsByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestConfigValues(t *testing.T) {
	db := openTestDB(t)

	// Missing keys return empty string without error
	value, err := db.GetConfigValue("nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, db.SetConfigValue("site_name", "postboard"))
	value, err = db.GetConfigValue("site_name")
	require.NoError(t, err)
	assert.Equal(t, "postboard", value)

	// Overwrite
	require.NoError(t, db.SetConfigValue("site_name", "postboard2"))
	value, err = db.GetConfigValue("site_name")
	require.NoError(t, err)
	assert.Equal(t, "postboard2", value)

	// Booleans
	enabled, err := db.GetConfigBool("flag")
	require.NoError(t, err)
	assert.False(t, enabled)
	require.NoError(t, db.SetConfigBool("flag", true))
	enabled, err = db.GetConfigBool("flag")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestRegistrationToggle(t *testing.T) {
	db := openTestDB(t)

	// Registration defaults to enabled when no value is stored
	enabled, err := db.IsRegistrationEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, db.SetConfigValue("registration_enabled", "false"))
	enabled, err = db.IsRegistrationEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, db.SetConfigValue("registration_enabled", "true"))
	enabled, err = db.IsRegistrationEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestFoldCase(t *testing.T) {
	testCases := []struct {
		a, b string
	}{
		{"Alice", "alice"},
		{"ALICE", "alice"},
		{"User@Example.COM", "user@example.com"},
		{"Straße", "strasse"},
	}
	for _, tc := range testCases {
		if FoldCase(tc.a) != FoldCase(tc.b) {
			t.Errorf("FoldCase(%q) = %q, want equal to FoldCase(%q) = %q",
				tc.a, FoldCase(tc.a), tc.b, FoldCase(tc.b))
		}
	}
}

func TestGenerateSecureSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateSecureSessionID()
		require.NoError(t, err)
		assert.Len(t, id, SessionIDLength)
		assert.False(t, seen[id], "duplicate session ID generated")
		seen[id] = true
	}
}

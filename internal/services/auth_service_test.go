package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"umrahtransfer/internal/domain"
	"umrahtransfer/internal/domain/models"
)

type memUsers struct {
	rows map[int64]models.User
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range m.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *memUsers) GetByID(_ context.Context, id int64) (models.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return u, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m *memUsers) Upsert(_ context.Context, u models.User) (int64, error) {
	for id, old := range m.rows {
		if old.Email == u.Email {
			u.ID = id
			m.rows[id] = u
			return id, nil
		}
	}
	u.ID = int64(len(m.rows) + 1)
	m.rows[u.ID] = u
	return u.ID, nil
}

func authFixture(t *testing.T) (AuthService, *memUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &memUsers{rows: map[int64]models.User{
		1: {ID: 1, Name: "Ops", Email: "ops@umrah.test", PasswordHash: string(hash), Role: domain.RoleAdmin, Active: true},
		2: {ID: 2, Name: "Old", Email: "old@umrah.test", PasswordHash: string(hash), Role: domain.RoleDispatcher},
	}}
	return AuthService{Users: users, Secret: []byte("test-secret"), Now: fixedNow}, users
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := authFixture(t)

	res, err := svc.Login(context.Background(), " OPS@umrah.test ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(DefaultTokenTTL), res.ExpiresAt)
	assert.Equal(t, int64(1), res.User.ID)

	claims, err := svc.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	me, err := svc.Me(context.Background(), claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ops@umrah.test", me.Email)
}

func TestLoginRejections(t *testing.T) {
	svc, _ := authFixture(t)
	tests := []struct{ email, password string }{
		{"ops@umrah.test", "wrong"},
		{"nobody@umrah.test", "s3cret-pass"},
		{"old@umrah.test", "s3cret-pass"},
	}
	for _, tt := range tests {
		_, err := svc.Login(context.Background(), tt.email, tt.password)
		assert.True(t, domain.IsUnauthorized(err), tt.email)
	}
	_, err := svc.Login(context.Background(), "", "")
	assert.True(t, domain.IsValidation(err))
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	svc, _ := authFixture(t)
	res, err := svc.Login(context.Background(), "ops@umrah.test", "s3cret-pass")
	require.NoError(t, err)

	later := svc
	later.Now = func() time.Time { return testNow.Add(DefaultTokenTTL + time.Minute) }
	_, err = later.ParseToken(res.Token)
	assert.True(t, domain.IsUnauthorized(err))

	other := svc
	other.Secret = []byte("another-secret")
	_, err = other.ParseToken(res.Token)
	assert.True(t, domain.IsUnauthorized(err))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1, Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour))}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(none)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestEnsureUserUpserts(t *testing.T) {
	svc, users := authFixture(t)

	id, err := svc.EnsureUser(context.Background(), "", "New@Umrah.test", "longenough", domain.RoleDispatcher)
	require.NoError(t, err)
	u := users.rows[id]
	assert.Equal(t, "new@umrah.test", u.Name)
	assert.True(t, u.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")))

	again, err := svc.EnsureUser(context.Background(), "New Name", "new@umrah.test", "changed-pass", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, domain.RoleAdmin, users.rows[id].Role)

	_, err = svc.EnsureUser(context.Background(), "x", "x@umrah.test", "short", domain.RoleAdmin)
	assert.True(t, domain.IsValidation(err))
	_, err = svc.EnsureUser(context.Background(), "x", "x@umrah.test", "longenough", "driver")
	assert.True(t, domain.IsValidation(err))
}

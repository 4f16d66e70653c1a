package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kidsvids/internal/session"
	"kidsvids/internal/validation"
)

func newAuth(t *testing.T) (*fixture, *AuthService, *fakeMailer) {
	f := newFixture(t)
	mailer := &fakeMailer{}
	return f, NewAuthService(f.parents, mailer, zap.NewNop()), mailer
}

func openSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.Open(context.Background(), "device-1", session.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	return sess
}

func TestSignup(t *testing.T) {
	_, auth, mailer := newAuth(t)
	ctx := context.Background()

	parent, err := auth.Signup(ctx, SignupInput{FullName: " Pat ", Email: "Pat@Example.com", Password: "secret1", PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "Pat", parent.FullName)
	assert.Equal(t, "pat@example.com", parent.Email)
	assert.NotEqual(t, "secret1", parent.PasswordHash)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "welcome", mailer.sent[0].kind)

	_, err = auth.Signup(ctx, SignupInput{FullName: "Other", Email: "pat@example.com", Password: "secret1", PIN: "4321"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupValidation(t *testing.T) {
	_, auth, _ := newAuth(t)

	tests := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"blank name", SignupInput{FullName: " ", Email: "a@b.co", Password: "secret1", PIN: "1234"}, "full_name"},
		{"bad email", SignupInput{FullName: "Pat", Email: "nope", Password: "secret1", PIN: "1234"}, "email"},
		{"short password", SignupInput{FullName: "Pat", Email: "a@b.co", Password: "123", PIN: "1234"}, "password"},
		{"three digit pin", SignupInput{FullName: "Pat", Email: "a@b.co", Password: "secret1", PIN: "123"}, "pin"},
		{"letters in pin", SignupInput{FullName: "Pat", Email: "a@b.co", Password: "secret1", PIN: "12a4"}, "pin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Signup(context.Background(), tt.input)
			var verrs validation.Errors
			require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestSignupSurvivesMailFailure(t *testing.T) {
	_, auth, mailer := newAuth(t)
	mailer.err = errors.New("ses down")

	_, err := auth.Signup(context.Background(), SignupInput{FullName: "Pat", Email: "pat@example.com", Password: "secret1", PIN: "1234"})
	assert.NoError(t, err)
}

func TestLogin(t *testing.T) {
	f, auth, _ := newAuth(t)
	ctx := context.Background()
	parent := f.parent(t, "pat@example.com", "secret1")
	inactive := f.parent(t, "off@example.com", "secret1")
	require.NoError(t, f.parents.SetActive(ctx, inactive.ID, false))

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"wrong password", "pat@example.com", "secret2", ErrInvalidCredentials},
		{"unknown email", "who@example.com", "secret1", ErrInvalidCredentials},
		{"inactive parent", "off@example.com", "secret1", ErrInactiveParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := openSession(t)
			_, err := auth.Login(ctx, sess, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, sess.State().LoggedIn())
		})
	}

	t.Run("invalid input", func(t *testing.T) {
		_, err := auth.Login(ctx, openSession(t), "nope", "123")
		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs, "email")
		assert.Contains(t, verrs, "password")
	})

	t.Run("success", func(t *testing.T) {
		sess := openSession(t)
		got, err := auth.Login(ctx, sess, " PAT@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, parent.ID, got.ID)

		id, ok := sess.ParentID()
		assert.True(t, ok)
		assert.Equal(t, parent.ID, id)

		stored, err := f.parents.GetParentByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLoginAt)
	})
}

func TestLogoutClearsSession(t *testing.T) {
	f, auth, _ := newAuth(t)
	ctx := context.Background()
	f.parent(t, "pat@example.com", "secret1")

	sess := openSession(t)
	_, err := auth.Login(ctx, sess, "pat@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, sess))
	assert.False(t, sess.State().LoggedIn())
}

func TestResetPIN(t *testing.T) {
	f, auth, mailer := newAuth(t)
	ctx := context.Background()
	parent := f.parent(t, "pat@example.com", "secret1")

	require.NoError(t, auth.ResetPIN(ctx, "who@example.com"))
	assert.Empty(t, mailer.sent)

	require.NoError(t, auth.ResetPIN(ctx, "pat@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "pin", mailer.sent[0].kind)
	assert.Regexp(t, `^[0-9]{4}$`, mailer.sent[0].pin)

	stored, err := f.parents.GetParentByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, mailer.sent[0].pin, stored.PIN)

	var verrs validation.Errors
	assert.True(t, errors.As(auth.ResetPIN(ctx, "bad"), &verrs))
}

func TestResetPINKeepsPINWhenEmailUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		disabled bool
		sendErr  error
		wantErr  error
	}{
		{name: "email disabled", disabled: true, wantErr: ErrEmailDisabled},
		{name: "send fails", sendErr: errors.New("ses down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, auth, mailer := newAuth(t)
			ctx := context.Background()
			parent := f.parent(t, "pat@example.com", "secret1")
			mailer.disabled = tt.disabled
			mailer.err = tt.sendErr

			err := auth.ResetPIN(ctx, "pat@example.com")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.sendErr != nil {
				assert.ErrorIs(t, err, tt.sendErr)
			}

			stored, err := f.parents.GetParentByID(ctx, parent.ID)
			require.NoError(t, err)
			assert.Equal(t, parent.PIN, stored.PIN)
		})
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alzy/commerce-api/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	repo := &memUserRepo{}
	pub := &recordingPublisher{}
	svc := NewUserService(repo, prefixHasher{}, NewEvents(pub, logging.Discard()))

	in := validRegistration()
	in.Email = "  test@example.com "
	user, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "hashed:Test1234!", user.PasswordHash)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, EventUserRegistered, pub.messages[0].channel)
	var event UserRegistered
	require.NoError(t, json.Unmarshal(pub.messages[0].data, &event))
	assert.Equal(t, 1, event.UserID)
	assert.Equal(t, "test@example.com", event.Email)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		field   string
		message string
	}{
		{"missing name", func(in *RegisterInput) { in.FullName = "  " }, "full_name", "is required"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email", "must be a valid email address"},
		{"short phone", func(in *RegisterInput) { in.Phone = "+7950066444" }, "phone", "must be +7 followed by 10 digits"},
		{"foreign phone", func(in *RegisterInput) { in.Phone = "+19500664444" }, "phone", "must be +7 followed by 10 digits"},
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "Te1!", "Te1!" }, "password", "password must be at least 8 characters"},
		{"no uppercase", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "test1234!", "test1234!" }, "password", "password must contain at least one uppercase letter"},
		{"no special", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "Test12345", "Test12345" }, "password", "password must contain at least one of $%&!:"},
		{"mismatch", func(in *RegisterInput) { in.ConfirmPassword = "Test1234:" }, "confirm_password", "passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memUserRepo{}
			svc := NewUserService(repo, prefixHasher{}, nil)
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
			assert.Empty(t, repo.users)
		})
	}
}

func TestRegister_TooLongPassword(t *testing.T) {
	svc := NewUserService(&memUserRepo{}, prefixHasher{}, nil)
	in := validRegistration()
	long := "A!" + strings.Repeat("a", 71)
	in.Password, in.ConfirmPassword = long, long

	_, err := svc.Register(context.Background(), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password must be at most 72 bytes", verr.Message)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &memUserRepo{}
	pub := &recordingPublisher{}
	svc := NewUserService(repo, prefixHasher{}, NewEvents(pub, logging.Discard()))

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	again := validRegistration()
	again.Phone = "+79500660000"
	_, err = svc.Register(context.Background(), again)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.Len(t, pub.messages, 1)
}

func TestRegister_DuplicatePhone(t *testing.T) {
	repo := &memUserRepo{}
	svc := NewUserService(repo, prefixHasher{}, nil)

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	again := validRegistration()
	again.Email = "other@example.com"
	_, err = svc.Register(context.Background(), again)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestRegister_StoreFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewUserService(&memUserRepo{createErr: boom}, prefixHasher{}, nil)

	_, err := svc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDuplicateIdentity)
}

func TestRegister_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewUserService(&memUserRepo{}, prefixHasher{}, NewEvents(pub, logging.Discard()))

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
}

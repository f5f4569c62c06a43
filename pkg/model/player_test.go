package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"riverroom-server/internal/util"
)

func TestCreatePlayer_validation(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	_, err := CreatePlayer(ctx, "not-an-email", "Player", "password", 10000)
	a.EqualError(err, "invalid email address")

	_, err = CreatePlayer(ctx, util.RandomEmail(), "Player", "short", 10000)
	a.EqualError(err, "password is too short")
}

func TestPlayer_passwords(t *testing.T) {
	a := assert.New(t)

	var p Player
	a.EqualError(p.SetPassword("short"), "password is too short")
	a.NoError(p.SetPassword("my-secret-password"))

	a.NoError(p.ValidatePassword("my-secret-password"))
	a.Equal(ErrInvalidEmailOrPassword, p.ValidatePassword("wrong-password"))
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct-horse", hash)

	t.Run("Correct Password Verifies", func(t *testing.T) {
		assert.NoError(t, VerifyPassword("correct-horse", hash))
	})

	t.Run("Wrong Password Fails", func(t *testing.T) {
		assert.Error(t, VerifyPassword("battery-staple", hash))
	})

	t.Run("Hashes Are Salted", func(t *testing.T) {
		second, err := HashPassword("correct-horse")
		require.NoError(t, err)
		assert.NotEqual(t, hash, second)
	})
}

func TestDirectory(t *testing.T) {
	dir := NewDirectory([]Account{
		{User: User{ID: "u1", Email: "Admin@Flashcart.dev", Role: RoleAdmin}},
	})

	t.Run("Lookup Is Case Insensitive", func(t *testing.T) {
		a, ok := dir.Lookup("admin@flashcart.dev")
		require.True(t, ok)
		assert.Equal(t, "u1", a.ID)
	})

	t.Run("Unknown Email Misses", func(t *testing.T) {
		_, ok := dir.Lookup("nobody@flashcart.dev")
		assert.False(t, ok)
	})
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	assert.NoError(t, err)

	u := &User{PasswordHash: string(hash)}
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))

	// 明文与哈希直接相等不应通过
	u = &User{PasswordHash: "secret123"}
	assert.False(t, u.CheckPassword("secret123"))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleCustomer))
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleVendor))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}

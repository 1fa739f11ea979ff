package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository/memory"
)

func testEnvironment() *environment {
	return &environment{
		cfg: &config.Config{Auth: config.AuthConfig{
			JWTSecret:             "cli-secret",
			AccessTokenTTLMinutes: 5,
			BcryptCost:            bcrypt.MinCost,
		}},
		users: memory.NewUserRepository(memory.New()),
	}
}

func run(t *testing.T, env *environment, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddUserThenToken(t *testing.T) {
	env := testEnvironment()

	out, err := run(t, env, "adduser",
		"--email", "ada@example.com",
		"--first-name", "Ada",
		"--last-name", "Lovelace",
		"--role", "admin",
		"--password", "correct horse")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin Ada Lovelace (ada@example.com)")

	out, err = run(t, env, "token", "--email", "ada@example.com", "--password", "correct horse")
	require.NoError(t, err)

	claims, err := auth.NewTokenManager("cli-secret", 5).ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestAddUserRejectsInvalidInput(t *testing.T) {
	env := testEnvironment()

	_, err := run(t, env, "adduser", "--email", "ada@example.com", "--first-name", "Ada", "--last-name", "L", "--password", "short")
	assert.Error(t, err)

	_, err = run(t, env, "adduser", "--first-name", "Ada")
	assert.Error(t, err)
}

func TestTokenRejectsWrongPassword(t *testing.T) {
	env := testEnvironment()
	_, err := run(t, env, "adduser", "--email", "sam@example.com", "--first-name", "Sam", "--last-name", "S", "--password", "long-enough")
	require.NoError(t, err)

	_, err = run(t, env, "token", "--email", "sam@example.com", "--password", "nope-nope")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.3")
	out, err := run(t, &environment{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "supportctl 1.2.3\n", out)
}

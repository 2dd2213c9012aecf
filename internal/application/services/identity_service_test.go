package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/config"
	"github.com/tmtrack/core/internal/infrastructure/logger"
)

const (
	sampleTokens = `[
		{"userid": "dana", "auth_token": "token_dana"},
		{"userid": "michelle", "auth_token": "token_michelle"}
	]`
	sampleGroups = `[
		{"group_name": "Group A", "userids": ["dana", "michelle"]},
		{"group_name": "Group B", "userids": ["dana"]},
		{"group_name": "Guests", "userids": ["guest"]}
	]`
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(config.LoggerConfig{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return l
}

func writeIdentityFiles(t *testing.T, tokens, groups string) config.IdentityConfig {
	t.Helper()
	dir := t.TempDir()

	tokensFile := filepath.Join(dir, "user_authentication.json")
	if err := os.WriteFile(tokensFile, []byte(tokens), 0o600); err != nil {
		t.Fatal(err)
	}

	groupsFile := filepath.Join(dir, "user_authorization.json")
	if err := os.WriteFile(groupsFile, []byte(groups), 0o600); err != nil {
		t.Fatal(err)
	}

	return config.IdentityConfig{TokensFile: tokensFile, GroupsFile: groupsFile}
}

func newTestResolver(t *testing.T) *IdentityService {
	t.Helper()
	svc, err := NewIdentityService(writeIdentityFiles(t, sampleTokens, sampleGroups), testLogger(t))
	if err != nil {
		t.Fatalf("failed to load identity tables: %v", err)
	}
	return svc
}

func TestResolveKnownTokens(t *testing.T) {
	svc := newTestResolver(t)

	assert.Equal(t, "dana", svc.Resolve("token_dana").UserID)
	assert.Equal(t, "michelle", svc.Resolve("token_michelle").UserID)
}

func TestResolveUnknownTokenIsGuest(t *testing.T) {
	svc := newTestResolver(t)

	assert.Equal(t, entities.GuestUserID, svc.Resolve("invalid_token").UserID)
}

func TestResolveEmptyTokenIsGuest(t *testing.T) {
	svc := newTestResolver(t)

	ident := svc.Resolve("")
	assert.Equal(t, entities.GuestUserID, ident.UserID)
	assert.Equal(t, []string{"Guests"}, ident.Groups)
}

func TestResolveNoPrefixMatching(t *testing.T) {
	svc := newTestResolver(t)

	// An exact lookup only: prefixes and extensions of a valid token must
	// not authenticate.
	assert.Equal(t, entities.GuestUserID, svc.Resolve("token_dan").UserID)
	assert.Equal(t, entities.GuestUserID, svc.Resolve("token_dana2").UserID)
}

func TestGroupsForPreservesTableOrder(t *testing.T) {
	svc := newTestResolver(t)

	assert.Equal(t, []string{"Group A", "Group B"}, svc.GroupsFor("dana"))
	assert.Equal(t, []string{"Group A"}, svc.GroupsFor("michelle"))
	assert.Equal(t, []string{"Guests"}, svc.GroupsFor("guest"))
}

func TestGroupsForUnknownUserIsEmpty(t *testing.T) {
	svc := newTestResolver(t)

	groups := svc.GroupsFor("unknown_user")
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestUsersInTableOrder(t *testing.T) {
	svc := newTestResolver(t)

	assert.Equal(t, []string{"dana", "michelle"}, svc.Users())
}

func TestMalformedTokenTableFailsStartup(t *testing.T) {
	cfg := writeIdentityFiles(t, `{"not": "a list"`, sampleGroups)

	_, err := NewIdentityService(cfg, testLogger(t))
	assert.Error(t, err)
}

func TestMalformedGroupTableFailsStartup(t *testing.T) {
	cfg := writeIdentityFiles(t, sampleTokens, `[{"group_name": 42}]`)

	_, err := NewIdentityService(cfg, testLogger(t))
	assert.Error(t, err)
}

func TestMissingTokenTableFailsStartup(t *testing.T) {
	cfg := writeIdentityFiles(t, sampleTokens, sampleGroups)
	cfg.TokensFile = filepath.Join(t.TempDir(), "does_not_exist.json")

	_, err := NewIdentityService(cfg, testLogger(t))
	assert.Error(t, err)
}

func TestDuplicateTokenFailsStartup(t *testing.T) {
	cfg := writeIdentityFiles(t, `[
		{"userid": "dana", "auth_token": "same_token"},
		{"userid": "michelle", "auth_token": "same_token"}
	]`, sampleGroups)

	_, err := NewIdentityService(cfg, testLogger(t))
	assert.Error(t, err)
}

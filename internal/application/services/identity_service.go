package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/config"
	"github.com/tmtrack/core/internal/infrastructure/logger"
	"github.com/tmtrack/core/internal/ports"
)

// tokenRecord is one entry of the token table file.
type tokenRecord struct {
	UserID    string `json:"userid"`
	AuthToken string `json:"auth_token"`
}

// groupRecord is one entry of the group table file. File order is preserved
// so that group annotations are deterministic.
type groupRecord struct {
	GroupName string   `json:"group_name"`
	UserIDs   []string `json:"userids"`
}

// IdentityService resolves bearer tokens against two static tables loaded
// once at construction. It is immutable afterwards and safe for unlimited
// concurrent readers; refreshing the tables requires a process restart.
type IdentityService struct {
	tokens map[string]string
	users  []string
	groups []groupRecord
	logger *logger.Logger
}

// NewIdentityService loads both identity tables. Any unreadable or malformed
// table is a startup failure: the service must not come up with identity
// annotation silently disabled.
func NewIdentityService(cfg config.IdentityConfig, appLogger *logger.Logger) (*IdentityService, error) {
	tokenRecords, err := loadTable[tokenRecord](cfg.TokensFile)
	if err != nil {
		return nil, fmt.Errorf("load token table: %w", err)
	}

	groupRecords, err := loadTable[groupRecord](cfg.GroupsFile)
	if err != nil {
		return nil, fmt.Errorf("load group table: %w", err)
	}

	tokens := make(map[string]string, len(tokenRecords))
	users := make([]string, 0, len(tokenRecords))
	seen := make(map[string]bool, len(tokenRecords))
	for _, rec := range tokenRecords {
		if rec.UserID == "" || rec.AuthToken == "" {
			return nil, fmt.Errorf("token table %s: entry with empty userid or auth_token", cfg.TokensFile)
		}
		if _, dup := tokens[rec.AuthToken]; dup {
			return nil, fmt.Errorf("token table %s: duplicate token for user %q", cfg.TokensFile, rec.UserID)
		}
		tokens[rec.AuthToken] = rec.UserID
		if !seen[rec.UserID] {
			seen[rec.UserID] = true
			users = append(users, rec.UserID)
		}
	}

	for _, grp := range groupRecords {
		if grp.GroupName == "" {
			return nil, fmt.Errorf("group table %s: entry with empty group_name", cfg.GroupsFile)
		}
	}

	appLogger.Infow("Identity tables loaded",
		"tokens", len(tokens),
		"users", len(users),
		"groups", len(groupRecords),
	)

	return &IdentityService{
		tokens: tokens,
		users:  users,
		groups: groupRecords,
		logger: appLogger,
	}, nil
}

func loadTable[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// Resolve maps a bearer token to an identity. An absent, empty, or unknown
// token resolves to the guest sentinel. Matching is exact, never by prefix.
func (s *IdentityService) Resolve(token string) entities.Identity {
	userID := entities.GuestUserID
	if token != "" {
		if mapped, ok := s.tokens[token]; ok {
			userID = mapped
		}
	}
	return entities.Identity{UserID: userID, Groups: s.GroupsFor(userID)}
}

// GroupsFor returns every group whose membership list contains userID, in
// the order groups appear in the source table. A user in no group gets an
// empty (non-nil) list; the guest case is covered by the table itself when
// it defines a group listing the guest sentinel.
func (s *IdentityService) GroupsFor(userID string) []string {
	groups := []string{}
	for _, grp := range s.groups {
		for _, member := range grp.UserIDs {
			if member == userID {
				groups = append(groups, grp.GroupName)
				break
			}
		}
	}
	return groups
}

// Users returns the distinct userids of the token table in file order.
func (s *IdentityService) Users() []string {
	out := make([]string, len(s.users))
	copy(out, s.users)
	return out
}

var _ ports.IdentityResolver = (*IdentityService)(nil)

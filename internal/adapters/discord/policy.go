// internal/adapters/discord/policy.go
// Minimal privilege check based on configured admin roles or the
// Administrator permission.

package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

type Policy struct {
	adminRoles map[string]struct{}
}

func NewPolicy(roleIDs []string) *Policy {
	p := &Policy{adminRoles: map[string]struct{}{}}
	for _, id := range roleIDs {
		id = strings.Trim(strings.TrimSpace(id), `"'`)
		if id != "" {
			p.adminRoles[id] = struct{}{}
		}
	}
	return p
}

// IsPrivileged returns true if the member has Administrator or one of the
// admin roles. Direct messages carry no member and are never privileged.
func (p *Policy) IsPrivileged(m *discordgo.Member) bool {
	if m == nil {
		return false
	}
	if m.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	for _, r := range m.Roles {
		if _, ok := p.adminRoles[r]; ok {
			return true
		}
	}
	return false
}

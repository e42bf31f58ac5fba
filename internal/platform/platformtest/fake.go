// Package platformtest provides an in-memory platform.Platform for tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/platform"
)

// Operation names accepted by FailOn and CallCount.
const (
	OpRoles         = "roles"
	OpCreateRole    = "create_role"
	OpChannels      = "channels"
	OpCreateChannel = "create_channel"
	OpMember        = "member"
	OpAddRole       = "add_role"
	OpRemoveRole    = "remove_role"
	OpSend          = "send"
)

// SentMessage is an embed posted through the fake.
type SentMessage struct {
	ChannelID court.Snowflake
	Embed     platform.Embed
}

// RoleChange is one grant or revocation, in call order.
type RoleChange struct {
	GuildID court.Snowflake
	UserID  court.Snowflake
	RoleID  court.Snowflake
	Added   bool
}

// ChannelGrant records the posting role a channel was created with.
type ChannelGrant struct {
	ChannelID court.Snowflake
	RoleID    court.Snowflake
}

// Fake is a goroutine-safe in-memory guild platform.
type Fake struct {
	mu sync.Mutex

	nextID   court.Snowflake
	roles    map[court.Snowflake][]platform.Role
	channels map[court.Snowflake][]platform.Channel
	members  map[court.Snowflake]map[court.Snowflake]map[court.Snowflake]bool
	grants   []ChannelGrant
	messages []SentMessage
	changes  []RoleChange
	calls    map[string]int
	failures map[string]error
}

// New returns an empty fake platform.
func New() *Fake {
	return &Fake{
		nextID:   1000,
		roles:    make(map[court.Snowflake][]platform.Role),
		channels: make(map[court.Snowflake][]platform.Channel),
		members:  make(map[court.Snowflake]map[court.Snowflake]map[court.Snowflake]bool),
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

func (f *Fake) newID() court.Snowflake {
	f.nextID++
	return f.nextID
}

// AddMember adds guild members without roles.
func (f *Fake) AddMember(guildID court.Snowflake, userIDs ...court.Snowflake) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[guildID] == nil {
		f.members[guildID] = make(map[court.Snowflake]map[court.Snowflake]bool)
	}
	for _, id := range userIDs {
		if f.members[guildID][id] == nil {
			f.members[guildID][id] = make(map[court.Snowflake]bool)
		}
	}
}

// RemoveMember drops a member and their roles, as if they left the guild.
func (f *Fake) RemoveMember(guildID, userID court.Snowflake) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[guildID], userID)
}

// AddCategory creates a category and returns its id.
func (f *Fake) AddCategory(guildID court.Snowflake, name string) court.Snowflake {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID()
	f.channels[guildID] = append(f.channels[guildID], platform.Channel{ID: id, Name: name, IsCategory: true})
	return id
}

// AddChannel creates a text channel, optionally under a category, and returns its id.
func (f *Fake) AddChannel(guildID court.Snowflake, name string, parentID *court.Snowflake) court.Snowflake {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID()
	f.channels[guildID] = append(f.channels[guildID], platform.Channel{ID: id, Name: name, ParentID: parentID})
	return id
}

// DeleteChannel removes a channel, as if deleted by a moderator.
func (f *Fake) DeleteChannel(guildID, channelID court.Snowflake) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.channels[guildID][:0]
	for _, c := range f.channels[guildID] {
		if c.ID != channelID {
			kept = append(kept, c)
		}
	}
	f.channels[guildID] = kept
}

// AddRole creates a role and returns its id.
func (f *Fake) AddRole(guildID court.Snowflake, name string) court.Snowflake {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID()
	f.roles[guildID] = append(f.roles[guildID], platform.Role{ID: id, Name: name})
	return id
}

// FailOn makes every later call of op return err. A nil err clears the failure.
func (f *Fake) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// HasRole reports whether the member currently holds the role.
func (f *Fake) HasRole(guildID, userID, roleID court.Snowflake) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[guildID][userID][roleID]
}

// CallCount returns how many times op was called.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Messages returns the embeds sent so far.
func (f *Fake) Messages() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.messages...)
}

// RoleChanges returns member role grants and revocations in call order.
func (f *Fake) RoleChanges() []RoleChange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RoleChange(nil), f.changes...)
}

// ChannelGrants returns the posting roles of channels created through the fake.
func (f *Fake) ChannelGrants() []ChannelGrant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChannelGrant(nil), f.grants...)
}

// call records the call and returns the injected failure, if any. Caller holds mu.
func (f *Fake) call(op string) error {
	f.calls[op]++
	return f.failures[op]
}

// Roles implements platform.Platform.
func (f *Fake) Roles(_ context.Context, guildID court.Snowflake) ([]platform.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpRoles); err != nil {
		return nil, err
	}
	return append([]platform.Role(nil), f.roles[guildID]...), nil
}

// CreateRole implements platform.Platform.
func (f *Fake) CreateRole(_ context.Context, guildID court.Snowflake, name string) (platform.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpCreateRole); err != nil {
		return platform.Role{}, err
	}
	role := platform.Role{ID: f.newID(), Name: name}
	f.roles[guildID] = append(f.roles[guildID], role)
	return role, nil
}

// Channels implements platform.Platform.
func (f *Fake) Channels(_ context.Context, guildID court.Snowflake) ([]platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpChannels); err != nil {
		return nil, err
	}
	return append([]platform.Channel(nil), f.channels[guildID]...), nil
}

// CreateChannel implements platform.Platform.
func (f *Fake) CreateChannel(_ context.Context, guildID court.Snowflake, params platform.CreateChannelParams) (platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpCreateChannel); err != nil {
		return platform.Channel{}, err
	}
	parent := params.CategoryID
	channel := platform.Channel{ID: f.newID(), Name: params.Name, ParentID: &parent}
	f.channels[guildID] = append(f.channels[guildID], channel)
	f.grants = append(f.grants, ChannelGrant{ChannelID: channel.ID, RoleID: params.PostingRole})
	return channel, nil
}

// Member implements platform.Platform.
func (f *Fake) Member(_ context.Context, guildID, userID court.Snowflake) (platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpMember); err != nil {
		return platform.Member{}, err
	}
	roles, ok := f.members[guildID][userID]
	if !ok {
		return platform.Member{}, fmt.Errorf("unknown member %s in guild %s", userID, guildID)
	}
	member := platform.Member{UserID: userID}
	for id := range roles {
		member.Roles = append(member.Roles, id)
	}
	return member, nil
}

// AddMemberRole implements platform.Platform.
func (f *Fake) AddMemberRole(_ context.Context, guildID, userID, roleID court.Snowflake) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpAddRole); err != nil {
		return err
	}
	roles, ok := f.members[guildID][userID]
	if !ok {
		return fmt.Errorf("unknown member %s in guild %s", userID, guildID)
	}
	roles[roleID] = true
	f.changes = append(f.changes, RoleChange{GuildID: guildID, UserID: userID, RoleID: roleID, Added: true})
	return nil
}

// RemoveMemberRole implements platform.Platform.
func (f *Fake) RemoveMemberRole(_ context.Context, guildID, userID, roleID court.Snowflake) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpRemoveRole); err != nil {
		return err
	}
	roles, ok := f.members[guildID][userID]
	if !ok {
		return fmt.Errorf("unknown member %s in guild %s", userID, guildID)
	}
	delete(roles, roleID)
	f.changes = append(f.changes, RoleChange{GuildID: guildID, UserID: userID, RoleID: roleID, Added: false})
	return nil
}

// SendEmbed implements platform.Platform.
func (f *Fake) SendEmbed(_ context.Context, channelID court.Snowflake, embed platform.Embed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call(OpSend); err != nil {
		return err
	}
	f.messages = append(f.messages, SentMessage{ChannelID: channelID, Embed: embed})
	return nil
}

var _ platform.Platform = (*Fake)(nil)

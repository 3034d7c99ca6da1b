package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pulsehub/pulsehub/internal/space/domain"
	spacerepo "github.com/pulsehub/pulsehub/internal/space/repository"
	"github.com/pulsehub/pulsehub/internal/spacectx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   domain.Service
	genID *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Space{},
		&domain.SpaceMember{},
		&domain.Channel{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  spacerepo.Provide(),
	})

	return &fixture{db: conn, svc: svc, genID: node}
}

func (f *fixture) createSpace(t *testing.T, name string) (domain.Space, snowflake.ID) {
	t.Helper()
	ownerID := f.genID.Generate()
	space, err := f.svc.Create(context.Background(), domain.CreateSpaceRequest{
		Name:    name,
		OwnerID: ownerID.String(),
	})
	require.NoError(t, err)
	return space, ownerID
}

func (f *fixture) ctxFor(space domain.Space) context.Context {
	return spacectx.WithSpaceID(context.Background(), int64(space.ID))
}

func TestCreateSlugsNameAndSeedsOwner(t *testing.T) {
	f := newFixture(t)
	space, ownerID := f.createSpace(t, "Runners Club")

	assert.Equal(t, "runners-club", space.Slug)
	assert.Equal(t, ownerID, space.OwnerID)

	role, err := f.svc.RoleOf(f.ctxFor(space), ownerID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, role)
}

func TestCreateSlugCollisionGetsSuffix(t *testing.T) {
	f := newFixture(t)
	first, _ := f.createSpace(t, "Runners Club")
	second, _ := f.createSpace(t, "Runners Club")

	assert.Equal(t, "runners-club", first.Slug)
	assert.Equal(t, "runners-club-"+second.ID.String(), second.Slug)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateSpaceRequest{
		Name: "  ", OwnerID: f.genID.Generate().String(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(context.Background(), domain.CreateSpaceRequest{
		Name: "Runners Club", OwnerID: "nope",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestGetByIDAndSlug(t *testing.T) {
	f := newFixture(t)
	space, _ := f.createSpace(t, "Runners Club")

	byID, err := f.svc.Get(context.Background(), domain.GetSpaceRequest{ID: space.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, space.ID, byID.ID)

	bySlug, err := f.svc.Get(context.Background(), domain.GetSpaceRequest{Slug: "runners-club"})
	require.NoError(t, err)
	assert.Equal(t, space.ID, bySlug.ID)

	_, err = f.svc.Get(context.Background(), domain.GetSpaceRequest{Slug: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Get(context.Background(), domain.GetSpaceRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidSpace)
}

func TestAddMemberDefaultsToMemberRole(t *testing.T) {
	f := newFixture(t)
	space, _ := f.createSpace(t, "Runners Club")
	ctx := f.ctxFor(space)
	userID := f.genID.Generate()

	member, err := f.svc.AddMember(ctx, domain.AddMemberRequest{UserID: userID.String()})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, member.Role)

	_, err = f.svc.AddMember(ctx, domain.AddMemberRequest{
		UserID: f.genID.Generate().String(), Role: "superadmin",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestAddMemberTwiceFoldsToExisting(t *testing.T) {
	f := newFixture(t)
	space, _ := f.createSpace(t, "Runners Club")
	ctx := f.ctxFor(space)
	userID := f.genID.Generate()

	first, err := f.svc.AddMember(ctx, domain.AddMemberRequest{UserID: userID.String(), Role: domain.RoleAdmin})
	require.NoError(t, err)
	second, err := f.svc.AddMember(ctx, domain.AddMemberRequest{UserID: userID.String()})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.RoleAdmin, second.Role)

	members, err := f.svc.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRemoveMemberRevokesRole(t *testing.T) {
	f := newFixture(t)
	space, _ := f.createSpace(t, "Runners Club")
	ctx := f.ctxFor(space)
	userID := f.genID.Generate()

	_, err := f.svc.AddMember(ctx, domain.AddMemberRequest{UserID: userID.String()})
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveMember(ctx, userID.String()))

	_, err = f.svc.RoleOf(ctx, userID.String())
	assert.ErrorIs(t, err, domain.ErrNotMember)
}

func TestCreateChannelValidatesKind(t *testing.T) {
	f := newFixture(t)
	space, _ := f.createSpace(t, "Runners Club")
	ctx := f.ctxFor(space)

	channel, err := f.svc.CreateChannel(ctx, domain.CreateChannelRequest{Name: "Morning Runs"})
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelKindGeneral, channel.Kind)
	assert.Equal(t, "morning-runs", channel.Slug)

	_, err = f.svc.CreateChannel(ctx, domain.CreateChannelRequest{Name: "x", Kind: "forum"})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)

	channels, err := f.svc.ListChannels(ctx)
	require.NoError(t, err)
	assert.Len(t, channels, 1)
}

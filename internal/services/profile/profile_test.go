package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_kampus/internal/repository/memstore"
)

func TestUpdateFreelancerPropagatesName(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store, zap.NewNop())
	f := models.Principal{UserID: uuid.New(), Role: models.RoleFreelancer}

	prop := &models.Proposal{ProjectID: uuid.New(), FreelancerID: f.UserID, FreelancerName: "rina", Content: "x", Bid: decimal.NewFromInt(5), Status: models.ProposalPending}
	require.NoError(t, store.Proposals().Create(ctx, prop))

	p, err := svc.UpdateFreelancer(ctx, f, FreelancerInput{DisplayName: " Rina Putri ", University: "UGM", Skills: []string{"Figma", " "}})
	require.NoError(t, err)
	assert.Equal(t, "Rina Putri", p.DisplayName)
	assert.Equal(t, []string{"Figma"}, []string(p.Skills))

	got, err := store.Proposals().FindByID(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rina Putri", got.FreelancerName)

	again, err := svc.GetFreelancer(ctx, f.UserID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID, "second save updates the same profile")
}

func TestUpdateClientPropagatesName(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store, zap.NewNop())
	c := models.Principal{UserID: uuid.New(), Role: models.RoleClient}

	project := &models.Project{ClientID: c.UserID, ClientName: "old", Title: "t", Description: "d", Status: models.ProjectOpen}
	require.NoError(t, store.Projects().Create(ctx, project))

	_, err := svc.UpdateClient(ctx, c, ClientInput{DisplayName: "Acme Studio", PhotoURL: "https://cdn.example/a.png"})
	require.NoError(t, err)

	got, err := store.Projects().FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Studio", got.ClientName)
}

func TestUpdateProfileRules(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store, zap.NewNop())
	c := models.Principal{UserID: uuid.New(), Role: models.RoleClient}
	f := models.Principal{UserID: uuid.New(), Role: models.RoleFreelancer}

	_, err := svc.UpdateFreelancer(ctx, c, FreelancerInput{DisplayName: "x"})
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	_, err = svc.UpdateClient(ctx, f, ClientInput{DisplayName: "x"})
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = svc.UpdateClient(ctx, c, ClientInput{DisplayName: "  ", PhotoURL: "not a url"})
	require.ErrorIs(t, err, apperr.ErrValidation)
	fields := apperr.FieldErrors(err)
	assert.Contains(t, fields, "display_name")
	assert.Contains(t, fields, "photo_url")

	_, err = svc.GetClient(ctx, c.UserID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateRollsBackWhenPropagationFails(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store, zap.NewNop())
	f := models.Principal{UserID: uuid.New(), Role: models.RoleFreelancer}

	store.InjectFault("proposals.set_freelancer_name", errors.New("lock timeout"))
	_, err := svc.UpdateFreelancer(ctx, f, FreelancerInput{DisplayName: "Rina"})
	require.ErrorIs(t, err, apperr.ErrUnavailable)

	_, err = svc.GetFreelancer(ctx, f.UserID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

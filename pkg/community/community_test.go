package community_test

import (
	"context"
	"testing"

	"github.com/entrhq/wppgo/pkg/bridge"
	"github.com/entrhq/wppgo/pkg/bridge/bridgetest"
	"github.com/entrhq/wppgo/pkg/community"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_SendsNamedArguments(t *testing.T) {
	page := bridgetest.New().Handle("community.create", func(args map[string]any) (any, error) {
		return map[string]any{"wid": map[string]any{"_serialized": "120363000000000001@g.us"}, "subGroups": args["subGroupsIds"]}, nil
	})

	raw, err := community.Create(context.Background(), bridge.New(page), "Neighbours", "Street group", " 1@g.us", "2@g.us")
	require.NoError(t, err)
	assert.JSONEq(t, `{"wid":{"_serialized":"120363000000000001@g.us"},"subGroups":["1@g.us","2@g.us"]}`, string(raw))

	calls := page.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"name":         "Neighbours",
		"description":  "Street group",
		"subGroupsIds": []any{"1@g.us", "2@g.us"},
	}, calls[0].Args)
}

func TestMemberOperations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		op      string
		argName string
		call    func(inv bridge.Invoker) error
	}{
		{"community.addSubgroups", "subgroupsIds", func(inv bridge.Invoker) error {
			_, err := community.AddSubgroups(ctx, inv, "c@g.us", "1@g.us", "2@g.us")
			return err
		}},
		{"community.removeSubgroups", "subgroupsIds", func(inv bridge.Invoker) error {
			_, err := community.RemoveSubgroups(ctx, inv, "c@g.us", "1@g.us", "2@g.us")
			return err
		}},
		{"community.promoteParticipants", "participantsIds", func(inv bridge.Invoker) error {
			_, err := community.PromoteParticipants(ctx, inv, "c@g.us", "1@g.us", "2@g.us")
			return err
		}},
		{"community.demoteParticipants", "participantsIds", func(inv bridge.Invoker) error {
			_, err := community.DemoteParticipants(ctx, inv, "c@g.us", "1@g.us", "2@g.us")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			page := bridgetest.New().Return(tt.op, true)
			require.NoError(t, tt.call(bridge.New(page)))

			calls := page.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.op, calls[0].Op)
			assert.Equal(t, "c@g.us", calls[0].Args["communityId"])
			assert.Equal(t, []any{"1@g.us", "2@g.us"}, calls[0].Args[tt.argName])
		})
	}
}

func TestDeactivate(t *testing.T) {
	page := bridgetest.New().Return("community.deactivate", true)

	raw, err := community.Deactivate(context.Background(), bridge.New(page), "c@g.us")
	require.NoError(t, err)
	assert.JSONEq(t, "true", string(raw))
}

func TestValidation_FailsBeforeDispatch(t *testing.T) {
	ctx := context.Background()
	page := bridgetest.New()
	b := bridge.New(page)

	_, err := community.Create(ctx, b, "  ", "desc")
	assert.ErrorIs(t, err, community.ErrMissingID)

	_, err = community.Create(ctx, b, "name", "desc", "1@g.us", "")
	assert.ErrorIs(t, err, community.ErrMissingID)

	_, err = community.Deactivate(ctx, b, "")
	assert.ErrorIs(t, err, community.ErrMissingID)

	_, err = community.AddSubgroups(ctx, b, "c@g.us")
	assert.ErrorIs(t, err, community.ErrMissingID)

	_, err = community.PromoteParticipants(ctx, b, "", "1@c.us")
	assert.ErrorIs(t, err, community.ErrMissingID)

	_, err = community.GetParticipants(ctx, b, " ")
	assert.ErrorIs(t, err, community.ErrMissingID)

	assert.Empty(t, page.Calls())
}

func TestGetParticipants(t *testing.T) {
	page := bridgetest.New().Return("community.getParticipants", []any{
		map[string]any{"server": "c.us", "user": "5511999990001", "_serialized": "5511999990001@c.us"},
		map[string]any{"server": "c.us", "user": "5511999990002", "_serialized": "5511999990002@c.us"},
	})

	got, err := community.GetParticipants(context.Background(), bridge.New(page), "c@g.us")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "5511999990001@c.us", got[0].String())
	assert.Equal(t, "c.us", got[1].Server)
}

func TestOperations_SurfaceInPageErrors(t *testing.T) {
	page := bridgetest.New().Throw("community.deactivate", "Error", "Community not found")

	_, err := community.Deactivate(context.Background(), bridge.New(page), "c@g.us")

	var de *bridge.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "community.deactivate", de.Op)
	assert.Equal(t, "Community not found", de.Message())
}

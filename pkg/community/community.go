// Package community groups the community operations of the in-page API.
//
// Every function is a thin dispatch through a bridge.Invoker; none retries,
// since most of them mutate remote state. Callers that chain several calls
// must serialize them themselves.
package community

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/wppgo/pkg/bridge"
)

// ErrMissingID is returned before dispatch when a required id is blank.
var ErrMissingID = errors.New("id is required")

// Wid is a WhatsApp id as serialized by the in-page API.
type Wid struct {
	Server     string `json:"server"`
	User       string `json:"user"`
	Serialized string `json:"_serialized"`
}

// String returns the serialized form, e.g. 5511999999999@c.us.
func (w Wid) String() string {
	if w.Serialized != "" {
		return w.Serialized
	}
	if w.User == "" {
		return ""
	}
	return w.User + "@" + w.Server
}

var (
	createOp = bridge.Op("community.create",
		`(wpp, args) => wpp.community.create(args.name, args.description, args.subGroupsIds)`)
	deactivateOp = bridge.Op("community.deactivate",
		`(wpp, args) => wpp.community.deactivate(args.communityId)`)
	addSubgroupsOp = bridge.Op("community.addSubgroups",
		`(wpp, args) => wpp.community.addSubgroups(args.communityId, args.subgroupsIds)`)
	removeSubgroupsOp = bridge.Op("community.removeSubgroups",
		`(wpp, args) => wpp.community.removeSubgroups(args.communityId, args.subgroupsIds)`)
	promoteOp = bridge.Op("community.promoteParticipants",
		`(wpp, args) => wpp.community.promoteParticipants(args.communityId, args.participantsIds)`)
	demoteOp = bridge.Op("community.demoteParticipants",
		`(wpp, args) => wpp.community.demoteParticipants(args.communityId, args.participantsIds)`)
	participantsOp = bridge.Op("community.getParticipants",
		`(wpp, args) => wpp.community.getParticipants(args.communityId)`)
)

// Create creates a community and links the given groups as subgroups.
func Create(ctx context.Context, inv bridge.Invoker, name, description string, subGroupIDs ...string) (json.RawMessage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("create community: name: %w", ErrMissingID)
	}
	ids, err := cleanIDs("subgroup", subGroupIDs)
	if err != nil {
		return nil, fmt.Errorf("create community: %w", err)
	}
	return inv.Invoke(ctx, createOp, bridge.Args{
		"name":         name,
		"description":  description,
		"subGroupsIds": ids,
	})
}

// Deactivate disables a community (00000@g.us).
func Deactivate(ctx context.Context, inv bridge.Invoker, communityID string) (json.RawMessage, error) {
	if err := requireID("community", communityID); err != nil {
		return nil, fmt.Errorf("deactivate community: %w", err)
	}
	return inv.Invoke(ctx, deactivateOp, bridge.Args{"communityId": communityID})
}

// AddSubgroups links groups to a community.
func AddSubgroups(ctx context.Context, inv bridge.Invoker, communityID string, subgroupIDs ...string) (json.RawMessage, error) {
	return withMembers(ctx, inv, addSubgroupsOp, "subgroupsIds", "subgroup", communityID, subgroupIDs)
}

// RemoveSubgroups unlinks groups from a community.
func RemoveSubgroups(ctx context.Context, inv bridge.Invoker, communityID string, subgroupIDs ...string) (json.RawMessage, error) {
	return withMembers(ctx, inv, removeSubgroupsOp, "subgroupsIds", "subgroup", communityID, subgroupIDs)
}

// PromoteParticipants makes participants (number@c.us) community admins.
func PromoteParticipants(ctx context.Context, inv bridge.Invoker, communityID string, participantIDs ...string) (json.RawMessage, error) {
	return withMembers(ctx, inv, promoteOp, "participantsIds", "participant", communityID, participantIDs)
}

// DemoteParticipants removes admin rights from participants.
func DemoteParticipants(ctx context.Context, inv bridge.Invoker, communityID string, participantIDs ...string) (json.RawMessage, error) {
	return withMembers(ctx, inv, demoteOp, "participantsIds", "participant", communityID, participantIDs)
}

// GetParticipants lists the participants of a community.
func GetParticipants(ctx context.Context, inv bridge.Invoker, communityID string) ([]Wid, error) {
	if err := requireID("community", communityID); err != nil {
		return nil, fmt.Errorf("get community participants: %w", err)
	}
	return bridge.Call[[]Wid](ctx, inv, participantsOp, bridge.Args{"communityId": communityID})
}

func withMembers(ctx context.Context, inv bridge.Invoker, op bridge.Operation, argName, what, communityID string, memberIDs []string) (json.RawMessage, error) {
	if err := requireID("community", communityID); err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	ids, err := cleanIDs(what, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s: at least one %s: %w", op.Name, what, ErrMissingID)
	}
	return inv.Invoke(ctx, op, bridge.Args{
		"communityId": communityID,
		argName:       ids,
	})
}

func requireID(what, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s %w", what, ErrMissingID)
	}
	return nil
}

// cleanIDs trims ids and rejects blanks. A nil or empty list stays empty.
func cleanIDs(what string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for i, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%s #%d: %w", what, i+1, ErrMissingID)
		}
		out = append(out, id)
	}
	return out, nil
}

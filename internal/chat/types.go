package chat

import (
	"context"

	"github.com/wzgate/estatechat/internal/model"
)

// TurnInput is the projection of conversation state a subsystem receives for
// one turn. Histories are passed by value snapshot; subsystems return their
// extended copies instead of mutating shared state in place.
type TurnInput struct {
	Lang     Lang
	UserText string
	Shared   []model.Message
	Local    []model.Message
}

// TurnOutput carries the reply plus the histories as extended by the
// subsystem. The router persists these wholesale.
type TurnOutput struct {
	Reply  string
	Shared []model.Message
	Local  []model.Message
}

// Subsystem is one of the two response generators the router can dispatch a
// turn to.
type Subsystem interface {
	Route() model.Route
	HandleTurn(ctx context.Context, in TurnInput) (TurnOutput, error)
}

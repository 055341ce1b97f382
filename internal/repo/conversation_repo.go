package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/errs"
)

// ConversationRepo persists one row of conversation state per user. The three
// histories are stored as JSONB so the aggregate is written in a single
// statement; callers never observe a row with only some histories updated.
type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) Get(ctx context.Context, userID string) (*model.ConversationState, error) {
	const query = `
		SELECT user_id, shared_history, rag_history, units_history, last_route, mtime
		FROM conversation_states
		WHERE user_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, userID)
	var state model.ConversationState
	var shared, rag, units []byte
	var lastRoute string
	if err := row.Scan(&state.UserID, &shared, &rag, &units, &lastRoute, &state.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if err := decodeHistories(&state, shared, rag, units); err != nil {
		return nil, err
	}
	route, err := model.ParseRoute(lastRoute)
	if err != nil {
		return nil, fmt.Errorf("conversation state for %s: %w", userID, err)
	}
	state.LastRoute = route
	return &state, nil
}

func (r *ConversationRepo) Upsert(ctx context.Context, state *model.ConversationState) error {
	shared, err := json.Marshal(historyOrEmpty(state.Shared))
	if err != nil {
		return err
	}
	rag, err := json.Marshal(historyOrEmpty(state.RAG))
	if err != nil {
		return err
	}
	units, err := json.Marshal(historyOrEmpty(state.Units))
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO conversation_states (user_id, shared_history, rag_history, units_history, last_route, mtime)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			shared_history = EXCLUDED.shared_history,
			rag_history = EXCLUDED.rag_history,
			units_history = EXCLUDED.units_history,
			last_route = EXCLUDED.last_route,
			mtime = EXCLUDED.mtime
	`
	_, err = r.db.ExecContext(ctx, query,
		state.UserID, shared, rag, units, state.LastRoute.String(), state.Mtime)
	return err
}

func (r *ConversationRepo) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM conversation_states WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *ConversationRepo) DeleteIdleBefore(ctx context.Context, cutoff int64) (int64, error) {
	const query = `DELETE FROM conversation_states WHERE mtime < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func decodeHistories(state *model.ConversationState, shared, rag, units []byte) error {
	if err := json.Unmarshal(shared, &state.Shared); err != nil {
		return fmt.Errorf("decode shared history: %w", err)
	}
	if err := json.Unmarshal(rag, &state.RAG); err != nil {
		return fmt.Errorf("decode rag history: %w", err)
	}
	if err := json.Unmarshal(units, &state.Units); err != nil {
		return fmt.Errorf("decode units history: %w", err)
	}
	return nil
}

func historyOrEmpty(history []model.Message) []model.Message {
	if history == nil {
		return []model.Message{}
	}
	return history
}

package store

import (
	"context"
	"encoding/json"
)

const (
	AuditRegister       = "user.register"
	AuditLogin          = "user.login"
	AuditLogout         = "user.logout"
	AuditPasswordChange = "user.password_change"
	AuditAddFunds       = "cash.add"
	AuditBuy            = "trade.buy"
	AuditSell           = "trade.sell"
)

type AuditStore struct{}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Log(ctx context.Context, tx Execer, actorID, action, entityType, entityID string, data map[string]any) error {
	payload := []byte("{}")
	if len(data) > 0 {
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload = encoded
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, data)
		VALUES (gen_random_uuid()::text, $1, $2, $3, $4, $5)
	`, actorID, action, entityType, entityID, string(payload))
	return err
}

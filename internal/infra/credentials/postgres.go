package credentials

import (
	"context"
	"strings"

	"listingai/internal/infra"
	"listingai/internal/sqlinline"
)

// PostgresBackend stores values in the integration_tokens table, one row per key.
type PostgresBackend struct {
	sql infra.SQLExecutor
}

func NewPostgresBackend(sql infra.SQLExecutor) *PostgresBackend {
	return &PostgresBackend{sql: sql}
}

// EnsureSchema creates integration_tokens when it does not exist yet.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := p.sql.Exec(ctx, sqlinline.QCreateIntegrationTokens)
	return err
}

func (p *PostgresBackend) Load(ctx context.Context, key string) (string, bool, error) {
	row := p.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, key)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(token), true, nil
}

func (p *PostgresBackend) Save(ctx context.Context, key, value string) error {
	_, err := p.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, key, value, []byte(`{"source":"listingai"}`))
	return err
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := p.sql.Exec(ctx, sqlinline.QDeleteIntegrationToken, key)
	return err
}

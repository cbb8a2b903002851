package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConditions_Where(t *testing.T) {
	var empty conditions
	assert.Equal(t, "", empty.where())
	assert.Empty(t, empty.args)

	var cond conditions
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cond.add("status = $%d", "pending")
	cond.add("created_at < $%d", cutoff)

	assert.Equal(t, " WHERE status = $1 AND created_at < $2", cond.where())
	assert.Equal(t, []any{"pending", cutoff}, cond.args)
}

func TestMarshalNullable(t *testing.T) {
	b, err := marshalNullable(nil, true)
	assert.NoError(t, err)
	assert.Nil(t, b)

	b, err = marshalNullable(map[string][]string{"skills": {"Go"}}, false)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"skills":["Go"]}`, string(b))
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"jobs", "candidates", "resumes", "email_templates"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}

package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	for _, dialect := range []string{"postgres", "mysql"} {
		ms, err := For(dialect)
		require.NoError(t, err, dialect)
		require.NotEmpty(t, ms, dialect)
		assert.Equal(t, "001_contact_submissions", ms[0].Name)
		assert.Contains(t, ms[0].SQL, "contact_submissions")
	}

	_, err := For("sqlite")
	assert.Error(t, err)
}

func TestStatements(t *testing.T) {
	m := Migration{SQL: "-- header\nCREATE TABLE a (\n  id INT\n);\n\nCREATE INDEX i ON a (id);\nSELECT 1"}

	stmts := m.Statements()

	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE a (\n  id INT\n);", stmts[0])
	assert.Equal(t, "CREATE INDEX i ON a (id);", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])

	ms, err := For("postgres")
	require.NoError(t, err)
	assert.Len(t, ms[0].Statements(), 3)
}

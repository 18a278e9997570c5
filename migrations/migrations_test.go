package migrations

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrateCreatesAllTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, name := range []string{"pricing_types", "pricing_configurations", "pricing_rules", "road_services"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + name).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, AutoMigrate(0, db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateReportsFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pricing_types").WillReturnError(errors.New("access denied"))

	err = AutoMigrate(0, db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing_types")
}

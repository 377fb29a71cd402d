package handlers

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/addisfuel/fuelwatch/middleware"
)

// newTestApp wires the handler set to a sqlmock-backed gorm handle. Default
// transactions are disabled so expectations only cover statements the code
// under test issues itself.
func newTestApp(t *testing.T) (*App, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	app := NewApp(db, zerolog.Nop(), middleware.NewTokenManager("test-secret"))

	cleanup := func() {
		mockDB.Close()
	}
	return app, mock, cleanup
}

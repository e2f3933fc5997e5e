package database

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db, err := Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.True(t, db.Migrator().HasTable(&models.StudentSprintRecord{}))
	require.True(t, db.Migrator().HasTable(&models.IngestionLog{}))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	require.Error(t, err)

	_, err = Open("sqlite", "")
	require.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis("redis://" + mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = ConnectRedis("")
	require.Error(t, err)
}

package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/care-assistant-api/internal/config"
)

var showTables = regexp.QuoteMeta("SHOW TABLES")

func TestListCollections(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(showTables).WillReturnRows(
		sqlmock.NewRows([]string{"Tables_in_clinic"}).
			AddRow("patients").
			AddRow("visits").
			AddRow("beds"))

	c := NewMySQLCatalog(db, "clinic")
	names, err := c.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"patients", "visits", "beds"}, names)
	assert.Equal(t, "clinic", c.Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCollectionsEmptySchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(showTables).WillReturnRows(sqlmock.NewRows([]string{"Tables_in_clinic"}))

	names, err := NewMySQLCatalog(db, "clinic").ListCollections(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestListCollectionsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("Error 1049: Unknown database 'clinic'")
	mock.ExpectQuery(showTables).WillReturnError(boom)

	_, err = NewMySQLCatalog(db, "clinic").ListCollections(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestListCollectionsRowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(showTables).WillReturnRows(
		sqlmock.NewRows([]string{"Tables_in_clinic"}).
			AddRow("patients").
			RowError(0, boom))

	_, err = NewMySQLCatalog(db, "clinic").ListCollections(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestResolveNotConfigured(t *testing.T) {
	h, err := Resolve(context.Background(), config.Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, h.Installed)
	assert.Nil(t, h.Catalog)
}

func TestResolveBadDSNIsInstalledButUninitialized(t *testing.T) {
	h, err := Resolve(context.Background(), config.Config{DatabaseURL: "not a dsn"})
	assert.Error(t, err)
	assert.True(t, h.Installed)
	assert.Nil(t, h.Catalog)
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "clinic", schemaName("user:pw@tcp(db:3306)/clinic?charset=utf8mb4"))
	assert.Equal(t, "", schemaName("not a dsn"))
}

package db

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	ID   uint
	Name string
}

func TestLoggerIgnoresRecordNotFound(t *testing.T) {
	var out bytes.Buffer
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())),
		&gorm.Config{Logger: newLogger(&out)})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&row{}))

	var r row
	err = gormDB.First(&r, 42).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, out.String())

	err = gormDB.Exec("SELECT * FROM missing_table").Error
	assert.Error(t, err)
	assert.Contains(t, out.String(), "missing_table")
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.ErrorContains(t, err, "unsupported database driver")
}

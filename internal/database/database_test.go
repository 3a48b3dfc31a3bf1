package database_test

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tournament-arena/internal/models"
	"tournament-arena/internal/testutil"
)

func TestLogger_SkipsRecordNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	hook := test.NewGlobal()
	defer hook.Reset()

	var user models.User
	err := db.First(&user, "uid = ?", "nobody").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, hook.AllEntries())

	var n int64
	require.Error(t, db.Table("no_such_table").Count(&n).Error)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, "gorm", entry.Data["component"])
	assert.Contains(t, entry.Message, "no_such_table")
}

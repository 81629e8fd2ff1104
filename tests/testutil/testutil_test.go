package testutil

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/reqtrace/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedFixture(t *testing.T) {
	db := NewSQLiteDB(t)
	f := SeedFixture(t, db)

	var users, members, tasks int64
	require.NoError(t, db.Model(&models.UserModel{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.WorkspaceMemberModel{}).Count(&members).Error)
	require.NoError(t, db.Model(&models.TaskModel{}).Where("project_id = ?", f.ProjectID).Count(&tasks).Error)

	assert.Equal(t, int64(5), users)
	assert.Equal(t, int64(3), members)
	assert.Equal(t, int64(1), tasks)
	assert.NotEqual(t, f.ProjectID, f.OtherProjectID)
}

func TestAddStakeholder(t *testing.T) {
	f := SeedFixture(t, NewSQLiteDB(t))

	id := f.AddStakeholder(t, f.ProjectID, "ada")

	var m models.StakeholderModel
	require.NoError(t, f.DB.First(&m, "id = ?", id).Error)
	assert.Equal(t, "ada", m.Name)
	assert.Equal(t, f.ProjectID, m.ProjectID)
}

func TestNewMockDB(t *testing.T) {
	m := NewMockDB(t)
	m.Mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, m.DB.Exec("SELECT 1").Error)
	m.ExpectationsWereMet(t)
}

func TestPerformRequestAndEnvelope(t *testing.T) {
	r := gin.New()
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": body, "message": "ok"})
	})
	r.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "missing",
			"error":   gin.H{"code": "NOT_FOUND", "message": "missing"},
		})
	})

	w := PerformRequest(t, r, http.MethodPost, "/echo", map[string]string{"a": "b"}, nil)
	data := DecodeData[map[string]string](t, w)
	assert.Equal(t, "b", data["a"])

	w = PerformRequest(t, r, http.MethodGet, "/fail", nil, map[string]string{"X-Request-ID": "r1"})
	AssertErrorResponse(t, w, http.StatusNotFound, "NOT_FOUND")
}

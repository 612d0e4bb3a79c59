package repository_test

import (
	"context"
	"testing"
	"time"

	"todoapi/internal/apperror"
	"todoapi/internal/model"
	"todoapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func todoColumns() []string {
	return []string{"id", "title", "description", "status", "priority", "due_date", "created_at", "updated_at"}
}

func TestTodoRepository_GetByID_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoRepository(gormDB)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM "todos" WHERE "todos"."id" = `).
		WillReturnRows(sqlmock.NewRows(todoColumns()).
			AddRow(1, "buy milk", "", "pending", "medium", nil, now, now))

	// Act
	todo, err := repo.GetByID(context.Background(), 1)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "buy milk", todo.Title)
	assert.Equal(t, model.StatusPending, todo.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoRepository(gormDB)

	mock.ExpectQuery(`SELECT (.+) FROM "todos" WHERE "todos"."id" = `).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	todo, err := repo.GetByID(context.Background(), 42)

	// Assert
	assert.Nil(t, todo)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.Contains(t, err.Error(), "todo with id 42")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_Update_RecognizedFieldBumpsUpdatedAt(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "todos" SET (.+)"updated_at"=(.+) WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := repo.Update(context.Background(), 1, map[string]interface{}{
		"title":  "buy oat milk",
		"status": model.StatusInProgress,
	})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_Update_EmptyFieldsIsNoOp(t *testing.T) {
	// Arrange: no expectations, so any SQL would fail the test
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoRepository(gormDB)

	// Act
	err := repo.Update(context.Background(), 1, map[string]interface{}{})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_Update_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "todos" SET `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := repo.Update(context.Background(), 9000, map[string]interface{}{"title": "ghost"})

	// Assert
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_GetOverdue(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTodoRepository(gormDB)
	now := time.Now()
	due := now.Add(-24 * time.Hour)

	mock.ExpectQuery(`SELECT (.+) FROM "todos" WHERE due_date < (.+) AND status != (.+) ORDER BY due_date ASC`).
		WillReturnRows(sqlmock.NewRows(todoColumns()).
			AddRow(1, "late", "", "pending", "high", due, now, now))

	// Act
	todos, err := repo.GetOverdue(context.Background(), now)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, "late", todos[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

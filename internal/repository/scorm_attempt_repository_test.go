package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newAttemptRepoMock(t *testing.T) (*ScormAttemptRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return NewScormAttemptRepository(db), mock
}

// 轮换必须是一条UPDATE：旧token失效和新token生效之间没有两个token同时可用的窗口
func TestRotateLaunchTokenSingleUpdate(t *testing.T) {
	repo, mock := newAttemptRepoMock(t)

	mock.ExpectExec("UPDATE `scorm_attempts` SET .*`launch_token`=\\?.* WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM `scorm_attempts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "launch_token", "status", "student_id", "lesson_id"}).
			AddRow(7, "new-token", "in_progress", 3, 9))

	attempt, err := repo.RotateLaunchToken(7, "new-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt.LaunchToken != "new-token" {
		t.Errorf("launchToken = %q, want rotated token", attempt.LaunchToken)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// 轮换后旧token查不到行：id和launch_token必须同时匹配，miss等同于不存在
func TestFindByIDAndTokenRejectsStaleToken(t *testing.T) {
	repo, mock := newAttemptRepoMock(t)

	mock.ExpectQuery("SELECT (.+) FROM `scorm_attempts` WHERE .*id = \\? AND launch_token = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "launch_token"}))

	if _, err := repo.FindByIDAndToken(7, "stale-token"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for stale token, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFindByIDAndTokenMatch(t *testing.T) {
	repo, mock := newAttemptRepoMock(t)

	mock.ExpectQuery("SELECT (.+) FROM `scorm_attempts` WHERE .*id = \\? AND launch_token = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "launch_token", "status"}).
			AddRow(7, "current-token", "in_progress"))

	attempt, err := repo.FindByIDAndToken(7, "current-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt.ID != 7 || attempt.LaunchToken != "current-token" {
		t.Errorf("unexpected attempt: %+v", attempt)
	}
}

// 进入完成族状态时completed_at由COALESCE保证只写一次
func TestUpdateRuntimeFinalStatusCoalescesCompletedAt(t *testing.T) {
	repo, mock := newAttemptRepoMock(t)

	mock.ExpectExec("UPDATE `scorm_attempts` SET .*COALESCE\\(completed_at.*").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM `scorm_attempts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "total_time_seconds"}).
			AddRow(7, "passed", 450))

	attempt, err := repo.UpdateRuntime(7, RuntimeUpdate{
		RuntimeState:     []byte(`{}`),
		Status:           "passed",
		TotalTimeSeconds: 450,
		EnteredFinal:     true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt.TotalTimeSeconds != 450 {
		t.Errorf("totalTimeSeconds = %d, want 450", attempt.TotalTimeSeconds)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateRuntimeMissingAttempt(t *testing.T) {
	repo, mock := newAttemptRepoMock(t)

	mock.ExpectExec("UPDATE `scorm_attempts` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := repo.UpdateRuntime(404, RuntimeUpdate{Status: "in_progress"}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

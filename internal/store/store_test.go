package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"multicurrency_wallet/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(db), mock
}

var userColumns = []string{"id", "first_name", "last_name", "avatar", "default_currency", "mail_id", "password", "created_at"}

func TestStore_FindUser(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE `users`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "Ada", "Lovelace", "", "USD", "ada@example.com", "hash", now))

	user, err := s.FindUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "Ada Lovelace", user.FullName())
	assert.Equal(t, "USD", user.DefaultCurrency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindUser_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE `users`.`id` = ?")).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := s.FindUser(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestStore_FindUser_DatabaseError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users`")).
		WillReturnError(errors.New("connection reset"))

	_, err := s.FindUser(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
}

func TestStore_FindUserByMail(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE mail_id = ?")).
		WithArgs("ada@example.com", 1).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(7, "Ada", "Lovelace", "", "EUR", "ada@example.com", "hash", time.Now()))

	user, err := s.FindUserByMail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "EUR", user.DefaultCurrency)
}

func TestStore_CreateUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE mail_id = ?")).
		WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	user := &domain.User{FirstName: "New", LastName: "User", MailID: "new@example.com", Password: "hash"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	assert.Equal(t, uint(5), user.ID)
	assert.Equal(t, domain.DefaultCurrency, user.DefaultCurrency)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateUser_DuplicateMail(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE mail_id = ?")).
		WithArgs("dup@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	err := s.CreateUser(context.Background(), &domain.User{MailID: "dup@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateMail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET `default_currency`=?,`first_name`=? WHERE id = ?")).
		WithArgs("JPY", "Grace", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.UpdateUser(context.Background(), 3, map[string]any{"first_name": "Grace", "default_currency": "JPY"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateUser_MailTakenByAnotherUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE mail_id = ? AND id <> ?")).
		WithArgs("taken@example.com", 3).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	err := s.UpdateUser(context.Background(), 3, map[string]any{"mail_id": "taken@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateMail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateUser_NoFields(t *testing.T) {
	s, mock := newMockStore(t)

	require.NoError(t, s.UpdateUser(context.Background(), 3, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListOtherUsers(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE id <> ? ORDER BY id")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(2, "Bob", "B", "", "EUR", "bob@example.com", "hash", time.Now()).
			AddRow(3, "Cy", "C", "", "USD", "cy@example.com", "hash", time.Now()))

	users, err := s.ListOtherUsers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Bob", users[0].FirstName)
	assert.Equal(t, uint(3), users[1].ID)
}

func TestStore_ListLedgerEntries(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "debited_to_user_id", "created_by_user_id", "currency_type", "amount", "created_at",
		"sender_first_name", "sender_last_name", "recipient_first_name", "recipient_last_name",
	}).
		AddRow(10, 1, 2, "EUR", "50.00000000", created, "Bob", "B", "Ada", "A").
		AddRow(11, 2, 1, "USD", "12.50000000", created, "Ada", "A", "Bob", "B")
	mock.ExpectQuery(`FROM wallet_entries AS w LEFT JOIN users AS s .+ LEFT JOIN users AS r .+ WHERE w\.debited_to_user_id = \? OR w\.created_by_user_id = \? ORDER BY w\.id`).
		WithArgs(1, 1).
		WillReturnRows(rows)

	entries, err := s.ListLedgerEntries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, uint(10), entries[0].ID)
	assert.Equal(t, uint(2), entries[0].CreatedByUserID)
	assert.Equal(t, "Bob B", entries[0].SenderName())
	assert.True(t, decimal.RequireFromString("50").Equal(entries[0].Amount))
	assert.Equal(t, "Bob B", entries[1].RecipientName())
	assert.Equal(t, created, entries[1].CreatedAt)
}

func TestStore_ListLedgerEntries_Empty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM wallet_entries AS w")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	entries, err := s.ListLedgerEntries(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_CreateWalletEntry(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `wallet_entries`")).
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	entry := &domain.WalletEntry{
		DebitedToUserID: 1,
		CreatedByUserID: 2,
		CurrencyType:    "EUR",
		Amount:          decimal.RequireFromString("50.00"),
	}
	require.NoError(t, s.CreateWalletEntry(context.Background(), entry))
	assert.Equal(t, uint(21), entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CreateWalletEntry_Error(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `wallet_entries`")).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := s.CreateWalletEntry(context.Background(), &domain.WalletEntry{CurrencyType: "USD", Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

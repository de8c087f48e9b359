package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

var (
	qDecrement   = `UPDATE events\s+SET available_tickets = available_tickets - \?\s+WHERE id = \? AND available_tickets >= \?`
	qExists      = regexp.QuoteMeta(`SELECT 1 FROM events WHERE id = ?`)
	qInsertOrder = regexp.QuoteMeta(`INSERT INTO orders`)
	qEventByID   = regexp.QuoteMeta(`WHERE e.id = ?`)
	qRatings     = regexp.QuoteMeta(`SELECT user_id, value FROM event_ratings WHERE event_id = ?`)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var eventCols = []string{
	"id", "title", "description", "location", "image_url", "url",
	"start_at", "end_at", "price", "is_free",
	"category_id", "category_name",
	"organizer_id", "first_name", "last_name",
	"total_tickets", "available_tickets", "average_rating", "created_at",
}

func eventRow(id string, total, available int) []driver.Value {
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, "Jazz night", "", "Hall A", "https://img", "",
		ts, ts.Add(2 * time.Hour), "25.00", false,
		"cat-1", "Music",
		"org-1", "Ada", "Lovelace",
		total, available, 0.0, ts,
	}
}

func TestDecrementTicketsSuccess(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(qDecrement).WithArgs(3, "ev-1", 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(qEventByID).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(eventRow("ev-1", 100, 97)...))
	mock.ExpectQuery(qRatings).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "value"}))

	ev, err := repo.DecrementTickets(context.Background(), "ev-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 97, ev.AvailableTickets)
	assert.Equal(t, "Music", ev.Category.Name)
	assert.Equal(t, "Ada", ev.Organizer.FirstName)
	assert.True(t, ev.Price.Decimal.Equal(decimal.RequireFromString("25")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementTicketsInsufficient(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(qDecrement).WithArgs(5, "ev-1", 5).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(qExists).WithArgs("ev-1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.DecrementTickets(context.Background(), "ev-1", 5)
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementTicketsUnknownEvent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(qDecrement).WithArgs(1, "nope", 1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(qExists).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.DecrementTickets(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementTicketsRejectsNonPositiveQuantity(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := repo.DecrementTickets(context.Background(), "ev-1", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newOrder() *model.Order {
	return &model.Order{
		PaymentRef:  "pay_1",
		TotalAmount: decimal.New(3000, -2),
		Quantity:    3,
		EventID:     "ev-1",
		BuyerID:     "buyer-1",
	}
}

func TestPlaceOrderCommitsInsertAndDecrement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepo(db, NewEventRepo(db))

	mock.ExpectBegin()
	mock.ExpectExec(qInsertOrder).
		WithArgs(sqlmock.AnyArg(), "pay_1", sqlmock.AnyArg(), 3, "ev-1", "buyer-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDecrement).WithArgs(3, "ev-1", 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o := newOrder()
	require.NoError(t, repo.PlaceOrder(context.Background(), o))
	assert.NotEmpty(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderDuplicateReferenceSkipsDecrement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepo(db, NewEventRepo(db))

	mock.ExpectBegin()
	mock.ExpectExec(qInsertOrder).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'pay_1'"})
	mock.ExpectRollback()

	err := repo.PlaceOrder(context.Background(), newOrder())
	assert.ErrorIs(t, err, ErrDuplicateOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderInsufficientInventoryRollsBackOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepo(db, NewEventRepo(db))

	mock.ExpectBegin()
	mock.ExpectExec(qInsertOrder).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qDecrement).WithArgs(3, "ev-1", 3).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(qExists).WithArgs("ev-1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.PlaceOrder(context.Background(), newOrder())
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderUnknownEventIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepo(db, NewEventRepo(db))

	mock.ExpectBegin()
	mock.ExpectExec(qInsertOrder).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row: a foreign key constraint fails"})
	mock.ExpectRollback()

	err := repo.PlaceOrder(context.Background(), newOrder())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByPaymentRef(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepo(db, NewEventRepo(db))
	q := regexp.QuoteMeta(`FROM orders WHERE payment_ref = ?`)
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q).WithArgs("pay_1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "payment_ref", "total_amount", "quantity", "event_id", "buyer_id", "created_at"}).
			AddRow("ord-1", "pay_1", "30.00", 3, "ev-1", "buyer-1", ts))
	o, err := repo.GetByPaymentRef(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", o.ID)
	assert.Equal(t, 3, o.Quantity)
	assert.True(t, decimal.New(3000, -2).Equal(o.TotalAmount))

	mock.ExpectQuery(q).WithArgs("pay_x").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByPaymentRef(context.Background(), "pay_x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderWithoutEventSkipsDecrement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepo(db, NewEventRepo(db))

	mock.ExpectBegin()
	mock.ExpectExec(qInsertOrder).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	o := newOrder()
	o.EventID = ""
	require.NoError(t, repo.PlaceOrder(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRatingPersistsRecomputedAverage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM events WHERE id = ? FOR UPDATE`)).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
	mock.ExpectQuery(qRatings).WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "value"}).AddRow("u1", 4).AddRow("u2", 5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO event_ratings`)).WithArgs("ev-1", "u1", 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE events SET average_rating = ? WHERE id = ?`)).WithArgs(3.5, "ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	avg, err := repo.UpsertRating(context.Background(), "ev-1", "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRatingUnknownEvent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).WithArgs("ev-x").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.UpsertRating(context.Background(), "ev-x", "u1", 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserRatingAbsentIsNotZero(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN event_ratings er`)).WithArgs("u1", "ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(nil))
	v, ok, err := repo.GetUserRating(context.Background(), "ev-1", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)

	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN event_ratings er`)).WithArgs("u2", "ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(4))
	v, ok, err = repo.GetUserRating(context.Background(), "ev-1", "u2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBuildsFiltersAndPagination(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs("%jazz%", "%music%", "ev-9").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`ORDER BY e\.created_at DESC, e\.id\s+LIMIT \? OFFSET \?`).
		WithArgs("%jazz%", "%music%", "ev-9", 3, 3).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(eventRow("ev-1", 10, 10)...))

	items, total, err := repo.Search(context.Background(), EventSearchQuery{
		Text: "Jazz", Category: "MUSIC", ExcludeID: "ev-9", Page: 2, Limit: 3,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Ratings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventIsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewEventRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM events WHERE id = ?`)).WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, repo.Delete(context.Background(), "gone"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE cm.id = ?`)).WithArgs("c-1").WillReturnError(sql.ErrNoRows)
	_, err := repo.GetByID(context.Background(), "c-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentCreateForDeletedEventIsNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCommentRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO comments`)).
		WithArgs(sqlmock.AnyArg(), "hello", "ev-gone", "u1", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1452})
	_, err := repo.Create(context.Background(), "ev-gone", "u1", "hello")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO categories`)).
		WithArgs(sqlmock.AnyArg(), "Music").
		WillReturnError(&mysql.MySQLError{Number: 1062})
	_, err := repo.Create(context.Background(), " Music ")
	assert.ErrorIs(t, err, ErrCategoryExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/court-case-tracker/internal/courtcase"
)

func TestUpsertManyWritesOneStatement(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "")
	require.NoError(t, err)

	cases := []courtcase.CourtCase{
		{CaseNumber: "A", ProcessNumber: "pa", OriginNumber: "0001", Court: "TJAL", CrawlStatus: courtcase.StatusPending},
		{CaseNumber: "B", ProcessNumber: "pb", OriginNumber: "0002", Court: "TJCE", CrawlStatus: courtcase.StatusCompleted},
	}

	mock.ExpectExec("INSERT INTO court_cases").
		WithArgs(
			[]string{"A", "B"},
			[]string{"pa", "pb"},
			[]string{"0001", "0002"},
			[]string{"TJAL", "TJCE"},
			[]string{"pending", "completed"},
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, store.UpsertMany(context.Background(), cases))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertManyCollapsesDuplicatesToLastWrite(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "court_cases")
	require.NoError(t, err)

	cases := []courtcase.CourtCase{
		{CaseNumber: "A", CrawlStatus: courtcase.StatusPending},
		{CaseNumber: "B", CrawlStatus: courtcase.StatusPending},
		{CaseNumber: "A", Court: "TJAL", CrawlStatus: courtcase.StatusFailed},
	}

	mock.ExpectExec("INSERT INTO court_cases").
		WithArgs(
			[]string{"A", "B"},
			[]string{"", ""},
			[]string{"", ""},
			[]string{"TJAL", ""},
			[]string{"failed", "pending"},
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, store.UpsertMany(context.Background(), cases))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertManyEmptySkipsDatabase(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "court_cases")
	require.NoError(t, err)

	require.NoError(t, store.UpsertMany(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertManyWrapsError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "court_cases")
	require.NoError(t, err)

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO court_cases").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(boom)

	err = store.UpsertMany(context.Background(), []courtcase.CourtCase{{CaseNumber: "A"}})
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "upsert court cases")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManyByCaseNumbersScansRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "court_cases")
	require.NoError(t, err)

	rows := mock.NewRows([]string{"case_number", "process_number", "origin_number", "court", "crawl_status"}).
		AddRow("A", "pa", "0001", "TJAL", "completed").
		AddRow("C", "pc", "0003", "TJCE", "pending")
	mock.ExpectQuery("FROM court_cases").
		WithArgs([]string{"A", "B", "C"}).
		WillReturnRows(rows)

	got, err := store.FindManyByCaseNumbers(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Equal(t, []courtcase.CourtCase{
		{CaseNumber: "A", ProcessNumber: "pa", OriginNumber: "0001", Court: "TJAL", CrawlStatus: courtcase.StatusCompleted},
		{CaseNumber: "C", ProcessNumber: "pc", OriginNumber: "0003", Court: "TJCE", CrawlStatus: courtcase.StatusPending},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManyByCaseNumbersEmptySkipsDatabase(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "court_cases")
	require.NoError(t, err)

	got, err := store.FindManyByCaseNumbers(context.Background(), []string{})
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindManyByCaseNumbersQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "court_cases")
	require.NoError(t, err)

	mock.ExpectQuery("FROM court_cases").
		WithArgs([]string{"A"}).
		WillReturnError(errors.New("relation does not exist"))

	_, err = store.FindManyByCaseNumbers(context.Background(), []string{"A"})
	require.ErrorContains(t, err, "query court cases")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaCreatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "cases_v2")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cases_v2").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPingWrapsError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewCaseStoreWithPool(mock, "court_cases")
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("no route"))
	require.ErrorContains(t, store.Ping(context.Background()), "ping postgres")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewCaseStoreWithPoolValidation(t *testing.T) {
	t.Parallel()

	_, err := NewCaseStoreWithPool(nil, "court_cases")
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewCaseStoreWithPool(mock, "cases; DROP TABLE x")
	require.ErrorContains(t, err, "invalid table name")
}

func TestNewCaseStoreRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := NewCaseStore(context.Background(), CaseStoreConfig{})
	require.ErrorContains(t, err, "db.dsn")
}

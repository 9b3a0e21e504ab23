package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
)

func newTestStore(t *testing.T, expenses ...model.Expense) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "expenses.csv"), nil)
	for _, e := range expenses {
		require.NoError(t, s.Append(e))
	}
	return s
}

func scanAll(t *testing.T, s *Store, f model.Filter) []model.Expense {
	t.Helper()
	records, skipped, err := Collect(s.Scan(f))
	require.NoError(t, err)
	require.Empty(t, skipped)
	return records
}

func names(records []model.Expense) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func writeFile(t *testing.T, s *Store, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.Path(), []byte(contents), 0o644))
}

func TestInit_CreatesHeaderOnly(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nested", "expenses.csv"), nil)
	require.NoError(t, s.Init())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))

	// Idempotent: existing content is untouched.
	require.NoError(t, s.Append(expense("Coffee", "Food", "3", date(2024, 1, 1))))
	require.NoError(t, s.Init())
	assert.Len(t, scanAll(t, s, model.Filter{}), 1)
}

func TestAppendThenScan_RoundTrip(t *testing.T) {
	want := expense("Groceries", "Food", "54.20", date(2024, 3, 9))
	s := newTestStore(t, want)

	got := scanAll(t, s, model.Filter{})
	require.Len(t, got, 1)
	assert.True(t, want.Equal(got[0]), "want %+v got %+v", want, got[0])
	assert.NotEmpty(t, got[0].ID)
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	s := newTestStore(t, expense("Coffee", "Food", "3.5", date(2024, 1, 2)))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, Header+"\nCoffee,3.50,Food,2024-01-02\n", string(data))
}

func TestAppend_RejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	err := s.Append(expense("", "Food", "3", date(2024, 1, 1)))
	assert.ErrorIs(t, err, model.ErrInvalid)

	_, statErr := os.Stat(s.Path())
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "nothing should be written")
}

func TestAppend_AcceptsAnyCategory(t *testing.T) {
	s := newTestStore(t, expense("Bus", "Transport", "2.75", date(2024, 1, 1)))
	got := scanAll(t, s, model.ByCategory("Transport"))
	require.Len(t, got, 1)
}

func TestAppend_TerminatesUnterminatedLastRow(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, Header+"\nCoffee,3.00,Food,2024-01-01")

	require.NoError(t, s.Append(expense("Tea", "Food", "2", date(2024, 1, 2))))
	assert.Equal(t, []string{"Coffee", "Tea"}, names(scanAll(t, s, model.Filter{})))
}

func TestAppend_SchemaMismatch(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "date,amount\n2024-01-01,3\n")

	err := s.Append(expense("Tea", "Food", "2", date(2024, 1, 2)))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestScan_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, scanAll(t, s, model.Filter{}))
}

func TestScan_FilterUsesAllFields(t *testing.T) {
	s := newTestStore(t,
		expense("Lunch", "Food", "12", date(2024, 1, 5)),
		expense("Lunch", "Work", "15", date(2024, 1, 5)),
		expense("Lunch", "Food", "11", date(2024, 1, 6)),
		expense("Cinema", "Fun", "9", date(2024, 1, 5)),
	)

	assert.Len(t, scanAll(t, s, model.ByName("Lunch")), 3)
	assert.Len(t, scanAll(t, s, model.ByName("Lunch").And(model.ByCategory("Food"))), 2)
	assert.Len(t, scanAll(t, s, model.ByName("Lunch").And(model.ByCategory("Food")).And(model.ByDate(date(2024, 1, 6)))), 1)
	assert.Len(t, scanAll(t, s, model.ByDate(date(2024, 1, 5))), 3)
	assert.Empty(t, scanAll(t, s, model.ByCategory("Home")))
}

func TestScan_IsRestartable(t *testing.T) {
	s := newTestStore(t, expense("A", "Food", "1", date(2024, 1, 1)))
	seq := s.Scan(model.Filter{})

	first, _, err := Collect(seq)
	require.NoError(t, err)
	require.NoError(t, s.Append(expense("B", "Food", "2", date(2024, 1, 2))))
	second, _, err := Collect(seq)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
}

func TestScan_StopsEarly(t *testing.T) {
	s := newTestStore(t,
		expense("A", "Food", "1", date(2024, 1, 1)),
		expense("B", "Food", "2", date(2024, 1, 2)),
	)
	count := 0
	for range s.Scan(model.Filter{}) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestScan_MalformedRowsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, Header+"\n"+
		"Coffee,3.00,Food,2024-01-01\n"+
		"Bad amount,three,Food,2024-01-02\n"+
		"Bad date,4.00,Food,01/03/2024\n"+
		"Tea,2.00,Food,2024-01-04\n")

	records, skipped, err := Collect(s.Scan(model.Filter{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee", "Tea"}, names(records))
	require.Len(t, skipped, 2)
	assert.Equal(t, 3, skipped[0].Line)
	assert.Equal(t, "amount", skipped[0].Column)
	assert.Equal(t, 4, skipped[1].Line)
	assert.Equal(t, "date", skipped[1].Column)
}

func TestScan_SchemaErrorIsFatal(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "name,amount,category,date\nCoffee,3.00,Food,2024-01-01\n")

	records, _, err := Collect(s.Scan(model.Filter{}))
	assert.Nil(t, records)
	var serr *SchemaError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, []string{"name", "amount", "category", "date"}, serr.Got)
}

func TestUpdate_ReplacesFirstMatchInPlace(t *testing.T) {
	s := newTestStore(t,
		expense("Rent", "Home", "900", date(2024, 1, 1)),
		expense("Lunch", "Food", "12", date(2024, 1, 2)),
		expense("Lunch", "Food", "14", date(2024, 1, 3)),
		expense("Gym", "Fun", "30", date(2024, 1, 4)),
	)

	n, err := s.Update("Lunch", "Work", dec("20.00"), date(2024, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := scanAll(t, s, model.Filter{})
	require.Len(t, got, 4)
	assert.Equal(t, []string{"Rent", "Lunch", "Lunch", "Gym"}, names(got))
	assert.True(t, got[1].Equal(expense("Lunch", "Work", "20", date(2024, 1, 10))))
	assert.True(t, got[2].Equal(expense("Lunch", "Food", "14", date(2024, 1, 3))), "second Lunch untouched")
}

func TestUpdate_NoMatchLeavesFileUnchanged(t *testing.T) {
	s := newTestStore(t,
		expense("Rent", "Home", "900", date(2024, 1, 1)),
		expense("Lunch", "Food", "12", date(2024, 1, 2)),
	)
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	n, err := s.Update("Nope", "Food", dec("1"), date(2024, 1, 1))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdate_ValidatesNewValues(t *testing.T) {
	s := newTestStore(t, expense("Lunch", "Food", "12", date(2024, 1, 2)))

	n, err := s.Update("Lunch", "Food", dec("-5"), date(2024, 1, 2))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, model.ErrInvalid)
	assert.True(t, scanAll(t, s, model.Filter{})[0].Amount.Equal(dec("12")))
}

func TestUpdateByID_DisambiguatesDuplicateNames(t *testing.T) {
	s := newTestStore(t,
		expense("Lunch", "Food", "12", date(2024, 1, 2)),
		expense("Lunch", "Food", "14", date(2024, 1, 3)),
	)
	second := scanAll(t, s, model.Filter{})[1]

	n, err := s.UpdateByID(second.ID, "Work", dec("16"), date(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := scanAll(t, s, model.Filter{})
	assert.Equal(t, "Food", got[0].Category)
	assert.Equal(t, "Work", got[1].Category)

	_, err = s.UpdateByID(second.ID, "Fun", dec("1"), date(2024, 1, 3))
	assert.ErrorIs(t, err, ErrNotFound, "content changed so the old ID is gone")
}

func TestDelete_ByCategoryKeepsOthersInOrder(t *testing.T) {
	s := newTestStore(t,
		expense("Groceries", "Food", "50", date(2024, 1, 1)),
		expense("Rent", "Home", "900", date(2024, 1, 1)),
		expense("Snacks", "Food", "5", date(2024, 1, 2)),
		expense("Laptop", "Work", "1500", date(2024, 1, 3)),
		expense("Dinner", "Food", "40", date(2024, 1, 4)),
		expense("Cinema", "Fun", "12", date(2024, 1, 5)),
	)

	n, err := s.Delete(model.ByCategory("Food"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Rent", "Laptop", "Cinema"}, names(scanAll(t, s, model.Filter{})))
}

func TestDelete_MultiFieldUsesAnd(t *testing.T) {
	s := newTestStore(t,
		expense("Lunch", "Food", "12", date(2024, 1, 5)),
		expense("Lunch", "Work", "15", date(2024, 1, 5)),
		expense("Dinner", "Food", "20", date(2024, 1, 5)),
	)

	n, err := s.Delete(model.ByName("Lunch").And(model.ByCategory("Food")))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got := scanAll(t, s, model.Filter{})
	require.Len(t, got, 2)
	assert.Equal(t, "Work", got[0].Category)
	assert.Equal(t, "Dinner", got[1].Name)
}

func TestDelete_NoMatch(t *testing.T) {
	s := newTestStore(t, expense("Lunch", "Food", "12", date(2024, 1, 5)))

	n, err := s.Delete(model.ByDate(date(1999, 1, 1)))
	assert.Equal(t, 0, n)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "date=1999-01-01", nf.Query)
	assert.Len(t, scanAll(t, s, model.Filter{}), 1)
}

func TestDelete_EmptyFilterRejected(t *testing.T) {
	s := newTestStore(t, expense("Lunch", "Food", "12", date(2024, 1, 5)))

	n, err := s.Delete(model.Filter{})
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, model.ErrInvalid)
	assert.Len(t, scanAll(t, s, model.Filter{}), 1)
}

func TestDeleteByID(t *testing.T) {
	s := newTestStore(t,
		expense("Coffee", "Food", "3", date(2024, 1, 1)),
		expense("Coffee", "Food", "3", date(2024, 1, 1)),
	)
	recs := scanAll(t, s, model.Filter{})
	require.Len(t, recs, 2)

	n, err := s.DeleteByID(recs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, scanAll(t, s, model.Filter{}), 1)
}

func TestMutation_PreservesMalformedRows(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, Header+"\n"+
		"Coffee,3.00,Food,2024-01-01\n"+
		"Mystery,???,Misc,2024-01-02\n"+
		"Tea,2.00,Food,2024-01-03\n")

	n, err := s.Delete(model.ByName("Coffee"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, Header+"\nMystery,???,Misc,2024-01-02\nTea,2.00,Food,2024-01-03\n", string(data))
}

func TestMutation_LeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t,
		expense("A", "Food", "1", date(2024, 1, 1)),
		expense("B", "Food", "2", date(2024, 1, 2)),
	)
	_, err := s.Update("A", "Home", dec("3"), date(2024, 1, 3))
	require.NoError(t, err)
	_, err = s.Delete(model.ByName("B"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "expenses.csv", entries[0].Name())
}

func TestMutation_SchemaErrorIsFatal(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "Name;Amount;Category;Date\n")

	_, err := s.Delete(model.ByName("x"))
	assert.ErrorIs(t, err, ErrSchema)
	_, err = s.Update("x", "Food", dec("1"), date(2024, 1, 1))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestAppend_Batch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(
		expense("A", "Food", "1", date(2024, 1, 1)),
		expense("B", "Home", "2", date(2024, 1, 2)),
	))
	assert.Equal(t, []string{"A", "B"}, names(scanAll(t, s, model.Filter{})))

	err := s.Append(
		expense("C", "Food", "3", date(2024, 1, 3)),
		expense("D", "Food", "-1", date(2024, 1, 4)),
	)
	assert.ErrorIs(t, err, model.ErrInvalid)
	assert.Len(t, scanAll(t, s, model.Filter{}), 2, "an invalid expense blocks the whole batch")

	require.NoError(t, s.Append())
}

func TestByID_RejectsMalformedID(t *testing.T) {
	s := newTestStore(t, expense("Coffee", "Food", "3", date(2024, 1, 1)))

	for _, bad := range []string{"", "xyz", "3fa2c01b9d-1", "3fa2c01b9d-x"} {
		_, err := s.DeleteByID(bad)
		assert.ErrorIs(t, err, model.ErrInvalid, "id %q", bad)
		_, err = s.UpdateByID(bad, "Food", dec("1"), date(2024, 1, 1))
		assert.ErrorIs(t, err, model.ErrInvalid, "id %q", bad)
	}
	assert.Len(t, scanAll(t, s, model.Filter{}), 1)
}

func TestScan_SubCentAmountsAreCounted(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, Header+"\n"+
		"Fuel,12.345,Misc,2024-01-05\n"+
		"Coffee,3.50,Food,2024-01-06\n")

	records := scanAll(t, s, model.Filter{})
	require.Len(t, records, 2)
	assert.True(t, records[0].Amount.Equal(dec("12.345")))

	n, err := s.Update("Coffee", "Food", dec("4"), date(2024, 1, 6))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, Header+"\nFuel,12.345,Misc,2024-01-05\nCoffee,4.00,Food,2024-01-06\n", string(data))
}

func TestAppend_BlankFileGetsHeader(t *testing.T) {
	for _, contents := range []string{"\n", "\n\n\n"} {
		s := newTestStore(t)
		writeFile(t, s, contents)

		require.NoError(t, s.Append(expense("Coffee", "Food", "3.50", date(2024, 1, 6))))
		records := scanAll(t, s, model.Filter{})
		require.Len(t, records, 1, "contents %q", contents)
		assert.Equal(t, "Coffee", records[0].Name)

		n, err := s.Delete(model.ByName("Coffee"))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}
}

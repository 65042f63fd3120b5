package app

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tablesift/adapters/excel"
	"tablesift/domain/core"
	"tablesift/domain/grid"
	"tablesift/domain/table"
	"tablesift/internal/errors"
	"tablesift/internal/extract"
	"tablesift/models"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context, name string, r io.Reader) (*grid.Workbook, error) {
	args := m.Called(ctx, name, r)
	wb, _ := args.Get(0).(*grid.Workbook)
	return wb, args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSink) ReplaceAll(ctx context.Context, tables []table.CleanTable) ([]string, error) {
	args := m.Called(ctx, tables)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

type MockUploads struct {
	mock.Mock
}

func (m *MockUploads) Create(ctx context.Context, u *models.UploadedFile) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUploads) DeactivateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUploads) List(ctx context.Context, limit int, activeOnly bool) ([]models.UploadedFile, error) {
	args := m.Called(ctx, limit, activeOnly)
	list, _ := args.Get(0).([]models.UploadedFile)
	return list, args.Error(1)
}

func twoSheetWorkbook() *grid.Workbook {
	sales := grid.FromStrings([][]string{
		{"Sales", ""},
		{"region", "amount"},
		{"north", "10"},
	})
	sales2 := grid.New([][]grid.Cell{
		{grid.Text("Sales")},
		{grid.Text("region"), grid.Text("amount")},
		{grid.Text("south"), grid.Number(math.Inf(1))},
		{grid.Text("east"), grid.Number(5)},
	})
	return &grid.Workbook{
		FileName: "book.xlsx",
		FileType: "xlsx",
		Sheets: []grid.Sheet{
			{Name: "S1", Base: "S1", Grid: sales},
			{Name: "s1", Base: "s1", Grid: sales2},
		},
	}
}

func TestExtractResolvesAndSanitizes(t *testing.T) {
	tests := []struct {
		policy extract.NamePolicy
		names  []string
	}{
		{extract.PolicyLastWins, []string{"s1_sales"}},
		{extract.PolicySuffix, []string{"s1_sales", "s1_sales_2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			loader := new(MockLoader)
			loader.On("Load", mock.Anything, "book.xlsx", mock.Anything).Return(twoSheetWorkbook(), nil)

			opts := DefaultUploadOptions()
			opts.NamePolicy = tt.policy
			svc := NewUploadService(loader, nil, nil, opts, nil)

			res, err := svc.Extract(context.Background(), "book.xlsx", strings.NewReader("payload"))
			require.NoError(t, err)

			var got []string
			for _, tbl := range res.Tables {
				got = append(got, tbl.Name)
				for _, row := range tbl.Rows {
					for _, c := range row {
						assert.False(t, c.IsNonFinite())
					}
				}
			}
			assert.Equal(t, tt.names, got)
			assert.Equal(t, 2, res.Sheets)
			assert.Equal(t, int64(7), res.Size)
			assert.Equal(t, core.NewHash([]byte("payload")), res.Hash)
			loader.AssertExpectations(t)
		})
	}
}

func TestExtractLastWinsKeepsLaterTable(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything, mock.Anything).Return(twoSheetWorkbook(), nil)

	res, err := NewUploadService(loader, nil, nil, DefaultUploadOptions(), nil).
		Extract(context.Background(), "book.xlsx", strings.NewReader(""))
	require.NoError(t, err)
	require.Len(t, res.Tables, 1)

	tbl := res.Tables[0]
	assert.Equal(t, grid.Text("south"), tbl.Rows[0][0])
	assert.Equal(t, grid.Absent(), tbl.Rows[0][1], "infinity sanitized")
	assert.Equal(t, grid.Number(5), tbl.Rows[1][1])
}

func TestExtractNoTables(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything, mock.Anything).Return(&grid.Workbook{
		FileName: "t.csv",
		Sheets:   []grid.Sheet{{Name: "t.csv", Base: "t", Grid: grid.FromStrings([][]string{{"only a title"}})}},
	}, nil)

	_, err := NewUploadService(loader, nil, nil, DefaultUploadOptions(), nil).
		Extract(context.Background(), "t.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNoTables, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrNoTables)
}

func TestExtractRowLimit(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything, mock.Anything).Return(twoSheetWorkbook(), nil)

	opts := DefaultUploadOptions()
	opts.MaxRows = 3
	_, err := NewUploadService(loader, nil, nil, opts, nil).
		Extract(context.Background(), "book.xlsx", strings.NewReader(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTooManyRows)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestExtractLoaderError(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.LoadFailed("x.xlsx", fmt.Errorf("zip: not a valid zip file")))

	_, err := NewUploadService(loader, nil, nil, DefaultUploadOptions(), nil).
		Extract(context.Background(), "x.xlsx", strings.NewReader(""))
	assert.Equal(t, errors.CodeLoadFailed, errors.GetCode(err))
}

func TestExtractWithCSVLoader(t *testing.T) {
	input := "Q1,\nid,amount\n1,10\n,\nQ2,\nid,amount\n2,20\n"
	svc := NewUploadService(excel.NewLoader(excel.DefaultLoaderConfig(), nil), nil, nil, DefaultUploadOptions(), nil)

	res, err := svc.Extract(context.Background(), "report.csv", strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, res.Tables, 2)
	assert.Equal(t, "report_q1", res.Tables[0].Name)
	assert.Equal(t, "report_q2", res.Tables[1].Name)
}

func TestUploadStoresAndRecords(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything, mock.Anything).Return(twoSheetWorkbook(), nil)

	sink := new(MockSink)
	sink.On("EnsureSchema", mock.Anything).Return(nil)
	sink.On("ReplaceAll", mock.Anything, mock.MatchedBy(func(tables []table.CleanTable) bool {
		return len(tables) == 2 && tables[0].Name == "s1_sales" && tables[1].Name == "s1_sales_2"
	})).Return([]string{"old"}, nil).Once()

	uploads := new(MockUploads)
	uploads.On("DeactivateAll", mock.Anything).Return(nil)
	uploads.On("Create", mock.Anything, mock.AnythingOfType("*models.UploadedFile")).Return(nil)

	opts := DefaultUploadOptions()
	opts.NamePolicy = extract.PolicySuffix
	rec, err := NewUploadService(loader, sink, uploads, opts, nil).
		Upload(context.Background(), "book.xlsx", strings.NewReader("x"))
	require.NoError(t, err)

	assert.False(t, rec.ID.String() == "")
	assert.Equal(t, "xlsx", rec.FileType)
	assert.Equal(t, []string{"s1_sales", "s1_sales_2"}, rec.TablesCreated.Names())
	assert.Equal(t, 3, rec.RowCount)
	assert.Equal(t, 4, rec.ColumnCount)
	assert.True(t, rec.IsActive)

	sink.AssertExpectations(t)
	uploads.AssertExpectations(t)
}

func TestUploadStopsOnSinkError(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything, mock.Anything, mock.Anything).Return(twoSheetWorkbook(), nil)

	sink := new(MockSink)
	sink.On("EnsureSchema", mock.Anything).Return(nil)
	sink.On("ReplaceAll", mock.Anything, mock.Anything).Return(nil, errors.DatabaseError("failed to create table s1_sales", fmt.Errorf("conn reset")))
	uploads := new(MockUploads)

	_, err := NewUploadService(loader, sink, uploads, DefaultUploadOptions(), nil).
		Upload(context.Background(), "book.xlsx", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	uploads.AssertNotCalled(t, "DeactivateAll", mock.Anything)
	uploads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadRequiresStorage(t *testing.T) {
	_, err := NewUploadService(new(MockLoader), nil, nil, DefaultUploadOptions(), nil).
		Upload(context.Background(), "book.xlsx", strings.NewReader("x"))
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestListUploads(t *testing.T) {
	uploads := new(MockUploads)
	uploads.On("List", mock.Anything, 10, true).Return([]models.UploadedFile{{Filename: "a.csv"}}, nil)

	list, err := NewUploadService(new(MockLoader), nil, uploads, DefaultUploadOptions(), nil).
		ListUploads(context.Background(), 10, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ourevents/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventRowColumns = []string{
	"id", "title", "description", "image_url", "capacity", "start_datetime", "end_datetime",
	"manager_id", "premise_id", "address", "city", "postal_code",
}

func eventRows(start time.Time, ids ...int64) *sqlmock.Rows {
	rows := sqlmock.NewRows(eventRowColumns)
	for _, id := range ids {
		rows.AddRow(id, "Event", nil, "https://example.com/e.png", 100, start, start.Add(2*time.Hour),
			int64(2), int64(1), "123 Rue de Paris", "Paris", "75001")
	}
	return rows
}

func ptrInt64(v int64) *int64 { return &v }

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		filter     domain.EventFilter
		page       domain.PaginationParams
		mock       func(mock sqlmock.Sqlmock)
		wantTotal  int
		wantIDs    []int64
		wantCats   map[int64][]string
		wantErr    bool
	}{
		{
			name:   "no filter first page",
			filter: domain.EventFilter{},
			page:   domain.PaginationParams{Page: 1, PageSize: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM events e JOIN premises p ON p.id = e.premise_id$`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
				mock.ExpectQuery(`FROM events e JOIN premises p ON p.id = e.premise_id ORDER BY e.id ASC LIMIT \$1 OFFSET \$2`).
					WithArgs(3, 0).
					WillReturnRows(eventRows(start, 1, 2, 3))
				mock.ExpectQuery(`FROM event_categories ec JOIN categories c`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name"}).
						AddRow(int64(1), int64(1), "Musique").
						AddRow(int64(1), int64(3), "Technologie").
						AddRow(int64(3), int64(2), "Sport"))
				mock.ExpectCommit()
			},
			wantTotal: 5,
			wantIDs:   []int64{1, 2, 3},
			wantCats:  map[int64][]string{1: {"Musique", "Technologie"}, 2: {}, 3: {"Sport"}},
		},
		{
			name:   "category and city filters share the predicate",
			filter: domain.EventFilter{CategoryID: ptrInt64(2), City: "Paris"},
			page:   domain.PaginationParams{Page: 2, PageSize: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events e JOIN premises p ON p.id = e.premise_id WHERE EXISTS \(SELECT 1 FROM event_categories ec WHERE ec.event_id = e.id AND ec.category_id = \$1\) AND p.city = \$2$`).
					WithArgs(int64(2), "Paris").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
				mock.ExpectQuery(`WHERE EXISTS .* AND p.city = \$2 ORDER BY e.id ASC LIMIT \$3 OFFSET \$4`).
					WithArgs(int64(2), "Paris", 3, 3).
					WillReturnRows(eventRows(start, 9))
				mock.ExpectQuery(`FROM event_categories ec JOIN categories c`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name"}).
						AddRow(int64(9), int64(2), "Sport"))
				mock.ExpectCommit()
			},
			wantTotal: 4,
			wantIDs:   []int64{9},
			wantCats:  map[int64][]string{9: {"Sport"}},
		},
		{
			name:   "city only",
			filter: domain.EventFilter{City: "Nice"},
			page:   domain.PaginationParams{Page: 1, PageSize: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`WHERE p.city = \$1$`).
					WithArgs("Nice").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectQuery(`WHERE p.city = \$1 ORDER BY e.id ASC LIMIT \$2 OFFSET \$3`).
					WithArgs("Nice", 3, 0).
					WillReturnRows(eventRows(start, 4))
				mock.ExpectQuery(`FROM event_categories ec`).
					WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name"}))
				mock.ExpectCommit()
			},
			wantTotal: 1,
			wantIDs:   []int64{4},
			wantCats:  map[int64][]string{4: {}},
		},
		{
			name:   "empty result skips the page query",
			filter: domain.EventFilter{CategoryID: ptrInt64(999)},
			page:   domain.PaginationParams{Page: 1, PageSize: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COUNT\(\*\)`).
					WithArgs(int64(999)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectCommit()
			},
			wantTotal: 0,
			wantIDs:   []int64{},
		},
		{
			name:   "page beyond the end returns empty items with total",
			filter: domain.EventFilter{},
			page:   domain.PaginationParams{Page: 10, PageSize: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COUNT\(\*\)`).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
				mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
					WithArgs(3, 27).
					WillReturnRows(sqlmock.NewRows(eventRowColumns))
				mock.ExpectCommit()
			},
			wantTotal: 5,
			wantIDs:   []int64{},
		},
		{
			name:   "count error rolls back",
			filter: domain.EventFilter{},
			page:   domain.PaginationParams{Page: 1, PageSize: 3},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT COUNT\(\*\)`).WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			page, err := repo.List(ctx, tt.filter, tt.page)
			if tt.wantErr {
				require.Error(t, err)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
			assert.Equal(t, tt.wantTotal, page.TotalCount)
			require.NotNil(t, page.Items)
			gotIDs := make([]int64, 0, len(page.Items))
			for _, e := range page.Items {
				gotIDs = append(gotIDs, e.ID)
				require.NotNil(t, e.Premise)
				assert.Equal(t, "Paris", e.Premise.City)
				assert.Equal(t, e.Premise.ID, e.PremiseID)
				if want, ok := tt.wantCats[e.ID]; ok {
					names := make([]string, 0, len(e.Categories))
					for _, c := range e.Categories {
						names = append(names, c.Name)
					}
					assert.Equal(t, want, names)
				}
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

	t.Run("found with categories", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE e.id = \$1`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(eventRowColumns).AddRow(
				int64(7), "Concert", "Live jazz", "https://example.com/j.png", 150, start, start.Add(time.Hour),
				int64(2), int64(1), "123 Rue de Paris", "Paris", "75001"))
		mock.ExpectQuery(`FROM event_categories ec`).
			WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name"}).AddRow(int64(7), int64(1), "Musique"))

		e, err := NewEventRepository(db).GetByID(ctx, 7)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, "Concert", e.Title)
		require.NotNil(t, e.Description)
		assert.Equal(t, "Live jazz", *e.Description)
		assert.Equal(t, int64(2), e.ManagerID)
		require.Len(t, e.Categories, 1)
		assert.Equal(t, "Musique", e.Categories[0].Name)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE e.id = \$1`).
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(eventRowColumns))

		_, err = NewEventRepository(db).GetByID(ctx, 404)
		require.ErrorIs(t, err, domain.ErrEventNotFound)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	newEvent := func() *domain.Event {
		e := &domain.Event{
			Title:         "Conf 2030",
			ImageURL:      "https://example.com/c.png",
			Capacity:      300,
			StartDatetime: start,
			EndDatetime:   start.Add(8 * time.Hour),
			PremiseID:     1,
			ManagerID:     2,
		}
		e.SetCategoryIDs([]int64{1, 42})
		return e
	}

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  int64
		wantErr error
	}{
		{
			name: "success links categories in the same transaction",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events \(title, description, image_url, capacity, start_datetime, end_datetime, premise_id, manager_id\)`).
					WithArgs("Conf 2030", sqlmock.AnyArg(), "https://example.com/c.png", 300, start, start.Add(8*time.Hour), int64(1), int64(2)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
				mock.ExpectExec(`INSERT INTO event_categories \(event_id, category_id\) SELECT \$1, c.id FROM categories c WHERE c.id = ANY\(\$2\)`).
					WithArgs(int64(11), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantID: 11,
		},
		{
			name: "missing premise",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23503"})
				mock.ExpectRollback()
			},
			wantErr: domain.ErrPremiseNotFound,
		},
		{
			name: "category link failure rolls back the event",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))
				mock.ExpectExec(`INSERT INTO event_categories`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			e := newEvent()
			err = NewEventRepository(db).Create(ctx, e)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, e.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	e := &domain.Event{
		ID: 5, Title: "Updated", ImageURL: "https://example.com/u.png", Capacity: 10,
		StartDatetime: start, EndDatetime: start.Add(time.Hour), PremiseID: 3,
	}
	e.SetCategoryIDs([]int64{2})

	t.Run("replaces categories", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE events SET title = \$1`).
			WithArgs("Updated", sqlmock.AnyArg(), "https://example.com/u.png", 10, start, start.Add(time.Hour), int64(3), int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM event_categories WHERE event_id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO event_categories`).
			WithArgs(int64(5), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewEventRepository(db).Update(ctx, e, true))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps categories", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, NewEventRepository(db).Update(ctx, e, false))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		require.ErrorIs(t, NewEventRepository(db).Update(ctx, e, true), domain.ErrEventNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "clears category links then deletes",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM event_categories WHERE event_id = \$1`).
					WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "not found rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM event_categories`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(`DELETE FROM events`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			err = NewEventRepository(db).Delete(ctx, 3)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListByAttendee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`JOIN event_registrations er ON er.event_id = e.id WHERE er.user_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(eventRows(start, 2, 5))
	mock.ExpectQuery(`FROM event_categories ec`).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "id", "name"}))

	events, err := NewEventRepository(db).ListByAttendee(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, events, 2)
	assert.Empty(t, events[0].Categories)
	assert.NotNil(t, events[0].Categories)
}

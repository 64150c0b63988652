package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"testing"

	"linire-backend/internal/domain"
	"linire-backend/internal/repository/memory"
	"linire-backend/internal/usecase"
	"linire-backend/pkg/apperror"
	"linire-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Mock Repository
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) (int64, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepo) CountByStatus(ctx context.Context, filter domain.StatusFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepo) ListPage(ctx context.Context, filter domain.StatusFilter, page, pageSize int) ([]domain.Submission, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) ListAll(ctx context.Context, filter domain.StatusFilter) ([]domain.Submission, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) UpdateStatus(ctx context.Context, id int64, status domain.SubmissionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockSubmissionRepo) AggregateCounts(ctx context.Context) (*domain.SubmissionStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubmissionStats), args.Error(1)
}

func (m *MockSubmissionRepo) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	subs []domain.Submission
}

func (d *recordingDispatcher) Dispatch(sub domain.Submission) {
	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
}

func (d *recordingDispatcher) Dispatched() []domain.Submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Submission(nil), d.subs...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminCtx() context.Context {
	return domain.WithAdminPrincipal(context.Background(), domain.AdminPrincipal{Username: "admin"})
}

func validForm() domain.ContactForm {
	return domain.ContactForm{
		FirstName: "Jo",
		LastName:  "Banda",
		Email:     "jo@x.com",
		Phone:     "0977450621",
		Service:   "corporate",
		Message:   "I need legal help please",
		Consent:   "1",
	}
}

func TestContactSubmit(t *testing.T) {
	t.Run("valid form is stored then dispatched", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		dispatcher := &recordingDispatcher{}
		uc := usecase.NewContactUsecase(repo, validation.NewContactValidator(), dispatcher, quietLogger())

		repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Submission) bool {
			return s.FirstName == "Jo" && s.Consent && s.Service == "corporate"
		})).Return(int64(7), nil).Once()

		res, err := uc.Submit(context.Background(), validForm())

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, int64(7), res.SubmissionID)
		assert.Equal(t, domain.MsgContactAccepted, res.Message)
		require.Len(t, dispatcher.Dispatched(), 1)
		assert.Equal(t, int64(7), dispatcher.Dispatched()[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("invalid form never reaches the store", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		dispatcher := &recordingDispatcher{}
		uc := usecase.NewContactUsecase(repo, validation.NewContactValidator(), dispatcher, quietLogger())

		form := validForm()
		form.Email = "not-an-email"
		form.Consent = ""

		res, err := uc.Submit(context.Background(), form)

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, domain.MsgContactInvalid, res.Message)
		assert.Equal(t, "Please enter a valid email address", res.Errors["email"])
		assert.Equal(t, "You must agree to the privacy policy", res.Errors["consent"])
		assert.Len(t, res.Errors, 2)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, dispatcher.Dispatched())
	})

	t.Run("storage failure returns generic error and skips notifications", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		dispatcher := &recordingDispatcher{}
		uc := usecase.NewContactUsecase(repo, validation.NewContactValidator(), dispatcher, quietLogger())

		dbErr := domain.NewStorageError("create submission", errors.New("dial tcp 10.0.0.5:5432: connection refused"))
		repo.On("Create", mock.Anything, mock.Anything).Return(int64(0), dbErr)

		res, err := uc.Submit(context.Background(), validForm())

		assert.Nil(t, res)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusInternalServerError, appErr.Code)
		assert.Equal(t, domain.MsgContactFailed, appErr.Message)
		assert.NotContains(t, appErr.Message, "10.0.0.5")
		assert.Empty(t, dispatcher.Dispatched())
	})

	t.Run("fields are sanitized before storage", func(t *testing.T) {
		repo := new(MockSubmissionRepo)
		uc := usecase.NewContactUsecase(repo, validation.NewContactValidator(), &recordingDispatcher{}, quietLogger())

		var stored *domain.Submission
		repo.On("Create", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Submission) }).
			Return(int64(1), nil)

		form := validForm()
		form.FirstName = "  <b>Jo</b>  "
		form.Message = `I need \"legal\" help please`
		form.Consent = "on"

		res, err := uc.Submit(context.Background(), form)

		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, "&lt;b&gt;Jo&lt;/b&gt;", stored.FirstName)
		assert.Equal(t, "I need &#34;legal&#34; help please", stored.Message)
		assert.True(t, stored.Consent)
	})
}

func TestAdminUsecase_RequiresSession(t *testing.T) {
	repo := new(MockSubmissionRepo)
	uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)
	ctx := context.Background()

	_, err := uc.ListSubmissions(ctx, domain.FilterAll, 1, 20)
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(err))

	_, err = uc.UpdateStatus(ctx, 1, "read")
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(err))

	_, err = uc.GetSubmission(ctx, 1)
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(err))

	_, err = uc.ExportSubmissions(ctx, domain.FilterAll)
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusOf(err))

	repo.AssertNotCalled(t, "CountByStatus", mock.Anything, mock.Anything)
}

func TestAdminUsecase_ListSubmissions(t *testing.T) {
	repo := new(MockSubmissionRepo)
	uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)
	filter := domain.ParseStatusFilter("new")

	repo.On("CountByStatus", mock.Anything, filter).Return(int64(41), nil)
	repo.On("ListPage", mock.Anything, filter, 1, 20).Return(make([]domain.Submission, 20), nil)
	repo.On("AggregateCounts", mock.Anything).Return(&domain.SubmissionStats{Total: 50, New: 41, Read: 5, Replied: 3}, nil)

	listing, err := uc.ListSubmissions(adminCtx(), filter, 0, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, listing.Page, "page is clamped to 1")
	assert.Equal(t, 3, listing.TotalPages)
	assert.Equal(t, int64(41), listing.Total)
	assert.Len(t, listing.Data, 20)
	assert.Equal(t, int64(50), listing.Stats.Total, "stats ignore the filter")
	repo.AssertExpectations(t)
}

func TestAdminUsecase_ListSubmissions_PastLastPageSkipsStore(t *testing.T) {
	repo := new(MockSubmissionRepo)
	uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)

	repo.On("CountByStatus", mock.Anything, domain.FilterAll).Return(int64(3), nil)
	repo.On("AggregateCounts", mock.Anything).Return(&domain.SubmissionStats{Total: 3, New: 3}, nil)

	listing, err := uc.ListSubmissions(adminCtx(), domain.FilterAll, math.MaxInt, 20)

	require.NoError(t, err)
	assert.NotNil(t, listing.Data)
	assert.Empty(t, listing.Data)
	assert.Equal(t, math.MaxInt, listing.Page)
	repo.AssertNotCalled(t, "ListPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminUsecase_ListSubmissions_StorageError(t *testing.T) {
	repo := new(MockSubmissionRepo)
	uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)

	repo.On("CountByStatus", mock.Anything, domain.FilterAll).Return(int64(0), errors.New("db down"))

	_, err := uc.ListSubmissions(adminCtx(), domain.FilterAll, 1, 20)
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
}

func TestAdminUsecase_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		action  string
		repoErr error
		callsDB bool
		want    domain.StatusUpdateResult
	}{
		{"success", 3, "replied", nil, true, domain.StatusUpdateResult{Success: true, FlashMessage: domain.MsgStatusUpdated}},
		{"unknown action rejected", 3, "deleted", nil, false, domain.StatusUpdateResult{FlashMessage: domain.MsgStatusUpdateFailed}},
		{"empty action rejected", 3, "", nil, false, domain.StatusUpdateResult{FlashMessage: domain.MsgStatusUpdateFailed}},
		{"non-positive id rejected", 0, "read", nil, false, domain.StatusUpdateResult{FlashMessage: domain.MsgStatusUpdateFailed}},
		{"missing row", 99, "read", domain.ErrSubmissionNotFound, true, domain.StatusUpdateResult{FlashMessage: domain.MsgStatusUpdateFailed}},
		{"storage failure", 3, "archived", domain.NewStorageError("update status", errors.New("timeout")), true, domain.StatusUpdateResult{FlashMessage: domain.MsgStatusUpdateFailed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSubmissionRepo)
			uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)
			if tt.callsDB {
				repo.On("UpdateStatus", mock.Anything, tt.id, domain.SubmissionStatus(tt.action)).Return(tt.repoErr).Once()
			}

			res, err := uc.UpdateStatus(adminCtx(), tt.id, tt.action)

			require.NoError(t, err)
			assert.Equal(t, tt.want, *res)
			if tt.callsDB {
				repo.AssertExpectations(t)
			} else {
				repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAdminUsecase_GetSubmission(t *testing.T) {
	repo := new(MockSubmissionRepo)
	uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)

	repo.On("GetByID", mock.Anything, int64(5)).Return(&domain.Submission{ID: 5, FirstName: "Jo"}, nil)
	repo.On("GetByID", mock.Anything, int64(6)).Return(nil, domain.ErrSubmissionNotFound)

	sub, err := uc.GetSubmission(adminCtx(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Jo", sub.FirstName)

	_, err = uc.GetSubmission(adminCtx(), 6)
	assert.Equal(t, http.StatusNotFound, apperror.StatusOf(err))

	_, err = uc.GetSubmission(adminCtx(), -1)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusOf(err))
}

// End-to-end flows over the in-memory store

type system struct {
	repo       *memory.SubmissionRepository
	dispatcher *recordingDispatcher
	contact    domain.ContactUsecase
	admin      domain.AdminUsecase
}

func newSystem() *system {
	repo := memory.NewSubmissionRepository()
	dispatcher := &recordingDispatcher{}
	return &system{
		repo:       repo,
		dispatcher: dispatcher,
		contact:    usecase.NewContactUsecase(repo, validation.NewContactValidator(), dispatcher, quietLogger()),
		admin:      usecase.NewAdminUsecase(repo, nil, quietLogger(), domain.DefaultAdminPageSize),
	}
}

func TestE2E_ValidSubmissionCreatesNewRow(t *testing.T) {
	sys := newSystem()

	res, err := sys.contact.Submit(context.Background(), validForm())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotZero(t, res.SubmissionID)

	sub, err := sys.admin.GetSubmission(adminCtx(), res.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, sub.Status)
	assert.Equal(t, "Banda", sub.LastName)
	assert.Len(t, sys.dispatcher.Dispatched(), 1)
}

func TestE2E_InvalidEmailCreatesNothing(t *testing.T) {
	sys := newSystem()
	form := validForm()
	form.Email = "not-an-email"

	res, err := sys.contact.Submit(context.Background(), form)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors, "email")

	total, err := sys.repo.CountByStatus(context.Background(), domain.FilterAll)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestE2E_Pagination(t *testing.T) {
	sys := newSystem()
	for i := 0; i < 25; i++ {
		form := validForm()
		form.FirstName = fmt.Sprintf("Client%02d", i)
		res, err := sys.contact.Submit(context.Background(), form)
		require.NoError(t, err)
		require.True(t, res.Success)
	}

	page1, err := sys.admin.ListSubmissions(adminCtx(), domain.FilterAll, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page1.Data, 20)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Equal(t, int64(25), page1.Stats.New)

	page2, err := sys.admin.ListSubmissions(adminCtx(), domain.FilterAll, 2, 20)
	require.NoError(t, err)
	assert.Len(t, page2.Data, 5)

	page3, err := sys.admin.ListSubmissions(adminCtx(), domain.FilterAll, 3, 20)
	require.NoError(t, err)
	assert.Empty(t, page3.Data)

	for _, page := range []int{1 << 40, math.MaxInt / 10, math.MaxInt} {
		far, err := sys.admin.ListSubmissions(adminCtx(), domain.FilterAll, page, 20)
		require.NoError(t, err, "page %d", page)
		assert.Empty(t, far.Data, "page %d", page)
		assert.Equal(t, 2, far.TotalPages)
	}
}

func TestE2E_StatusUpdateMovesBetweenFilters(t *testing.T) {
	sys := newSystem()
	res, err := sys.contact.Submit(context.Background(), validForm())
	require.NoError(t, err)
	id := res.SubmissionID

	upd, err := sys.admin.UpdateStatus(adminCtx(), id, "replied")
	require.NoError(t, err)
	require.True(t, upd.Success)

	replied, err := sys.admin.ListSubmissions(adminCtx(), domain.ParseStatusFilter("replied"), 1, 20)
	require.NoError(t, err)
	assert.True(t, containsID(replied.Data, id))

	fresh, err := sys.admin.ListSubmissions(adminCtx(), domain.ParseStatusFilter("new"), 1, 20)
	require.NoError(t, err)
	assert.False(t, containsID(fresh.Data, id))

	// Applying the same status again changes nothing observable.
	before, err := sys.admin.GetSubmission(adminCtx(), id)
	require.NoError(t, err)
	upd, err = sys.admin.UpdateStatus(adminCtx(), id, "replied")
	require.NoError(t, err)
	require.True(t, upd.Success)
	after, err := sys.admin.GetSubmission(adminCtx(), id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestE2E_Export(t *testing.T) {
	sys := newSystem()
	for i := 0; i < 3; i++ {
		form := validForm()
		form.LastName = fmt.Sprintf("O'Banda%d", i)
		_, err := sys.contact.Submit(context.Background(), form)
		require.NoError(t, err)
	}
	_, err := sys.admin.UpdateStatus(adminCtx(), 1, "archived")
	require.NoError(t, err)

	export, err := sys.admin.ExportSubmissions(adminCtx(), domain.ParseStatusFilter("new"))
	require.NoError(t, err)
	assert.Contains(t, export.Filename, "contact_submissions_new_")
	assert.Contains(t, export.ContentType, "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Submissions")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two new rows")
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "O'Banda2", rows[1][3], "newest first, unescaped")
	assert.Equal(t, "Corporate & Business Advisory", rows[1][6])
	assert.Equal(t, "new", rows[1][9])
}

func containsID(subs []domain.Submission, id int64) bool {
	for _, s := range subs {
		if s.ID == id {
			return true
		}
	}
	return false
}

func TestAdminUsecase_ExportReadsOnce(t *testing.T) {
	repo := new(MockSubmissionRepo)
	uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)

	rows := make([]domain.Submission, 1200)
	for i := range rows {
		rows[i] = domain.Submission{ID: int64(len(rows) - i), Status: domain.StatusNew}
	}
	repo.On("ListAll", mock.Anything, domain.FilterAll).Return(rows, nil).Once()

	export, err := uc.ExportSubmissions(adminCtx(), domain.FilterAll)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	sheet, err := f.GetRows("Submissions")
	require.NoError(t, err)
	assert.Len(t, sheet, 1201)
	repo.AssertNotCalled(t, "ListPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestAdminUsecase_ExportStorageError(t *testing.T) {
	repo := new(MockSubmissionRepo)
	uc := usecase.NewAdminUsecase(repo, nil, quietLogger(), 20)

	repo.On("ListAll", mock.Anything, domain.FilterAll).Return(nil, errors.New("db down"))

	_, err := uc.ExportSubmissions(adminCtx(), domain.FilterAll)
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
}

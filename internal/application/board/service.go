package board

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/bizdata-console/internal/application"
	"github.com/bryanwahyu/bizdata-console/internal/domain/business"
)

var (
	// ErrBusy: submit ditolak karena submit sebelumnya belum selesai
	ErrBusy = errors.New("a submission is already in progress")
	// ErrUnknownRecord: id tidak ada di list yang sedang ditampilkan
	ErrUnknownRecord = errors.New("record not found in current list")
	// ErrInvalidDraft: name dan story wajib diisi
	ErrInvalidDraft = errors.New("name and story are required")
)

// Sync operation names passed to OnSync.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Service implements use-cases untuk console.
// Every remote call runs as its own Task and reports back to the Store
// with a message; nothing is queued, retried or applied optimistically.
type Service struct {
	Remote business.Remote
	Store  *Store
	Log    zerolog.Logger
	// OnSync dipanggil setelah setiap remote call (boleh nil)
	OnSync func(op string, err error)
}

func NewService(remote business.Remote, store *Store, log zerolog.Logger) *Service {
	return &Service{Remote: remote, Store: store, Log: log}
}

// SubmitOutcome describes a finished create or update.
type SubmitOutcome struct {
	Updated bool
	ID      business.ID
	// RefreshErr is the error of the list refetch that follows a success.
	RefreshErr error
}

// State returns the current view model.
func (s *Service) State() State { return s.Store.State() }

// Refresh fetches the whole list and replaces the local one.
// On failure the previous list stays.
func (s *Service) Refresh(ctx context.Context) *application.Task[[]business.Business] {
	return application.Go(ctx, func(ctx context.Context) ([]business.Business, error) {
		list, err := s.Remote.List(ctx)
		s.observe(OpList, err)
		if err != nil {
			s.Log.Error().Err(err).Msg("failed to load businesses")
			s.Store.Dispatch(LoadFailed{Err: err})
			return nil, err
		}
		s.Store.Dispatch(LoadSucceeded{Records: list})
		return list, nil
	})
}

// Submit stores the form fields and sends them, as an update when a
// record is being edited and as a create otherwise. While another submit
// is in flight it fails with ErrBusy and the form is not touched. A success clears the
// form (and edit mode) and triggers exactly one refresh.
func (s *Service) Submit(ctx context.Context, name, story string) *application.Task[SubmitOutcome] {
	st, err := s.Store.beginSubmit(name, story)
	if err != nil {
		return application.Resolved(SubmitOutcome{}, err)
	}
	payload := business.NewPayload(st.Name, st.Story)
	id, editing := st.Editing()

	return application.Go(ctx, func(ctx context.Context) (SubmitOutcome, error) {
		out := SubmitOutcome{Updated: editing, ID: id}

		var err error
		op := OpCreate
		if editing {
			op = OpUpdate
			err = s.Remote.Update(ctx, id, payload)
		} else {
			err = s.Remote.Create(ctx, payload)
		}
		s.observe(op, err)
		if err != nil {
			s.Log.Error().Err(err).Str("op", op).Int64("id", int64(id)).Msg("submit failed")
			s.Store.Dispatch(SubmitFailed{Err: err})
			return out, err
		}

		s.Log.Info().Str("op", op).Int64("id", int64(id)).Msg("submit done")
		s.Store.Dispatch(SubmitSucceeded{Updated: editing})
		out.RefreshErr = s.Refresh(ctx).Wait().Err
		return out, nil
	})
}

// Delete removes a record after the user confirmed it. Without
// confirmation nothing happens and the task resolves to false.
func (s *Service) Delete(ctx context.Context, id business.ID, confirmed bool) *application.Task[bool] {
	if !confirmed {
		return application.Resolved(false, nil)
	}
	return application.Go(ctx, func(ctx context.Context) (bool, error) {
		err := s.Remote.Delete(ctx, id)
		s.observe(OpDelete, err)
		if err != nil {
			s.Log.Error().Err(err).Int64("id", int64(id)).Msg("delete failed")
			s.Store.Dispatch(DeleteFailed{ID: id, Err: err})
			return false, err
		}
		s.Store.Dispatch(DeleteSucceeded{ID: id})
		s.Refresh(ctx).Wait()
		return true, nil
	})
}

// StartEdit binds the form to a record of the current list.
func (s *Service) StartEdit(id business.ID) error {
	rec, ok := s.Store.State().Find(id)
	if !ok {
		return ErrUnknownRecord
	}
	s.Store.Dispatch(EditStarted{Record: rec})
	return nil
}

// CancelEdit leaves edit mode and empties the form. No request is made.
func (s *Service) CancelEdit() {
	s.Store.Dispatch(EditCancelled{})
}

// ToggleTag selects tag as filter, or clears it when already selected.
func (s *Service) ToggleTag(tag string) {
	s.Store.Dispatch(TagToggled{Tag: tag})
}

func (s *Service) ClearTag() {
	s.Store.Dispatch(TagCleared{})
}

func (s *Service) observe(op string, err error) {
	if s.OnSync != nil {
		s.OnSync(op, err)
	}
}

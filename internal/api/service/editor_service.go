package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"flowcore"
	"flowcore/internal/api/models"
	"flowcore/internal/editor"

	"github.com/rs/zerolog"
)

// ErrNotWriter is returned when another client holds the edit lease of a session.
var ErrNotWriter = errors.New("another user is editing this flow")

// ChangePublisher is told about every flow that reached the database.
type ChangePublisher interface {
	PublishFlowSaved(endpointID uint, flow models.Flow, report editor.Report) error
}

type EditorServiceDeps struct {
	Store        FlowStore
	Drafts       DraftStore      // optional
	Publisher    ChangePublisher // optional
	Layout       editor.Layout
	SaveDebounce time.Duration
	Logger       zerolog.Logger
}

// EditorService hosts one live editing session per endpoint.
type EditorService struct {
	deps EditorServiceDeps

	mu       sync.Mutex
	sessions map[uint]*Session
}

func NewEditorService(publisher ChangePublisher) *EditorService {
	cfg := flowcore.GetConfig()
	return NewEditorServiceWith(EditorServiceDeps{
		Store:        NewEndpointService(),
		Drafts:       NewDefaultFlowDraftStore(),
		Publisher:    publisher,
		Layout:       cfg.EditorLayout(),
		SaveDebounce: cfg.EditorConfig.SaveDebounce,
		Logger:       flowcore.Logger,
	})
}

func NewEditorServiceWith(deps EditorServiceDeps) *EditorService {
	return &EditorService{
		deps:     deps,
		sessions: make(map[uint]*Session),
	}
}

// Join registers clientID in the session of endpointID, opening it if needed.
// An unsaved draft wins over the stored flow.
func (slf *EditorService) Join(endpointID uint, clientID string) (*Session, error) {
	slf.mu.Lock()
	defer slf.mu.Unlock()

	s, ok := slf.sessions[endpointID]
	if !ok {
		var err error
		if s, err = slf.open(endpointID); err != nil {
			return nil, err
		}
		slf.sessions[endpointID] = s
	}

	s.mu.Lock()
	s.clients[clientID] = struct{}{}
	s.mu.Unlock()
	return s, nil
}

func (slf *EditorService) open(endpointID uint) (*Session, error) {
	logger := slf.deps.Logger.With().Uint("endpointId", endpointID).Logger()
	s := &Session{
		endpointID: endpointID,
		svc:        slf,
		logger:     logger,
		clients:    make(map[string]struct{}),
	}
	s.editor = editor.New(
		editor.WithLayout(slf.deps.Layout),
		editor.WithLogger(logger),
		editor.OnChange(func(string, models.Flow) { s.touched() }),
	)

	flow, err := slf.deps.Store.LoadFlow(endpointID)
	if err != nil {
		return nil, err
	}
	draft := false
	if slf.deps.Drafts != nil {
		d, found, err := slf.deps.Drafts.LoadDraft(context.Background(), endpointID)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not read flow draft")
		} else if found {
			flow, draft = d, true
		}
	}

	s.editor.Load(strconv.FormatUint(uint64(endpointID), 10), flow)
	if draft {
		logger.Info().Msg("Resuming unsaved draft")
		s.mu.Lock()
		s.dirty = true
		s.scheduleLocked()
		s.mu.Unlock()
	}
	logger.Debug().Msg("Editor session opened")
	return s, nil
}

// Session returns the open session of endpointID, if any.
func (slf *EditorService) Session(endpointID uint) (*Session, bool) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	s, ok := slf.sessions[endpointID]
	return s, ok
}

// Leave drops clientID from the session. The last client out saves pending edits
// and closes the session.
func (slf *EditorService) Leave(endpointID uint, clientID string) {
	slf.mu.Lock()
	defer slf.mu.Unlock()

	s, ok := slf.sessions[endpointID]
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, clientID)
	if s.writer == clientID {
		s.writer = ""
	}
	if len(s.clients) > 0 {
		return
	}
	s.stopTimerLocked()
	if err := s.flushLocked(); err != nil {
		s.logger.Error().Err(err).Msg("Could not save flow on session close, draft kept")
	}
	s.closed = true
	delete(slf.sessions, endpointID)
	s.logger.Debug().Msg("Editor session closed")
}

// SavedFlow is the outcome of a save made outside of a session.
type SavedFlow struct {
	Report editor.Report
	// Live is set when an open session took the new document; Revision is then
	// its revision after the swap.
	Live     bool
	Revision uint64
}

// SaveFlow persists flow as the document of endpointID, e.g. for a save through
// the REST API. An open session is replaced in the same critical section as the
// write, so a pending debounced save can no longer overwrite it.
func (slf *EditorService) SaveFlow(endpointID uint, flow models.Flow) (SavedFlow, error) {
	slf.mu.Lock()
	defer slf.mu.Unlock()

	s, ok := slf.sessions[endpointID]
	if !ok {
		report, err := slf.deps.Store.SaveFlow(endpointID, flow)
		if err != nil {
			return SavedFlow{}, err
		}
		slf.publish(endpointID, flow, report, slf.deps.Logger)
		return SavedFlow{Report: report}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	report, err := slf.deps.Store.SaveFlow(endpointID, flow)
	if err != nil {
		if s.dirty {
			s.scheduleLocked()
		}
		return SavedFlow{}, err
	}
	s.dirty = false
	s.editor.Load(s.editor.Key(), flow)
	s.revision++
	s.discardDraftLocked()
	slf.publish(endpointID, flow, report, s.logger)
	return SavedFlow{Report: report, Live: true, Revision: s.revision}, nil
}

func (slf *EditorService) publish(endpointID uint, flow models.Flow, report editor.Report, logger zerolog.Logger) {
	if slf.deps.Publisher == nil {
		return
	}
	if err := slf.deps.Publisher.PublishFlowSaved(endpointID, flow, report); err != nil {
		logger.Warn().Err(err).Uint("endpointId", endpointID).Msg("Could not publish flow change")
	}
}

// Discard drops the session of a deleted endpoint without saving it.
func (slf *EditorService) Discard(endpointID uint) {
	slf.mu.Lock()
	defer slf.mu.Unlock()

	s, ok := slf.sessions[endpointID]
	if !ok {
		return
	}
	s.mu.Lock()
	s.stopTimerLocked()
	s.dirty = false
	s.closed = true
	s.discardDraftLocked()
	s.mu.Unlock()
	delete(slf.sessions, endpointID)
}

// FlushAll saves every session with pending edits. Used on shutdown.
func (slf *EditorService) FlushAll() {
	slf.mu.Lock()
	sessions := make([]*Session, 0, len(slf.sessions))
	for _, s := range slf.sessions {
		sessions = append(sessions, s)
	}
	slf.mu.Unlock()

	for _, s := range sessions {
		if err := s.Flush(); err != nil {
			s.logger.Error().Err(err).Msg("Could not save flow on shutdown")
		}
	}
}

func (slf *EditorService) Stats() map[string]int {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	clients := 0
	for _, s := range slf.sessions {
		s.mu.Lock()
		clients += len(s.clients)
		s.mu.Unlock()
	}
	return map[string]int{"sessions": len(slf.sessions), "clients": clients}
}

// Session serializes access to one editor. The first client that edits takes the
// writer lease and keeps it until it leaves.
type Session struct {
	endpointID uint
	svc        *EditorService
	logger     zerolog.Logger

	mu       sync.Mutex
	editor   *editor.Editor
	clients  map[string]struct{}
	writer   string
	revision uint64
	dirty    bool
	closed   bool
	timer    *time.Timer
}

// EditResult describes what an edit did to the document.
type EditResult struct {
	Changed  bool
	Revision uint64
	Flow     models.Flow
}

func (s *Session) EndpointID() uint { return s.endpointID }

// Edit runs fn against the editor on behalf of clientID.
func (s *Session) Edit(clientID string, fn func(e *editor.Editor)) (EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != "" && s.writer != clientID {
		return EditResult{}, ErrNotWriter
	}
	if s.writer == "" {
		s.writer = clientID
		s.logger.Debug().Str("clientId", clientID).Msg("Writer lease taken")
	}

	before := s.revision
	fn(s.editor)
	res := EditResult{Changed: s.revision != before, Revision: s.revision}
	if res.Changed {
		res.Flow = s.editor.Flow()
	}
	return res, nil
}

// View runs fn with read access to the editor. fn must not mutate it.
func (s *Session) View(fn func(e *editor.Editor)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.editor)
}

func (s *Session) Writer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer
}

// Release gives the writer lease back if clientID holds it.
func (s *Session) Release(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == clientID {
		s.writer = ""
	}
}

func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Snapshot returns the live document and whether it holds unsaved edits.
func (s *Session) Snapshot() (models.Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Flow(), s.dirty
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush saves pending edits now.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	return s.flushLocked()
}

// touched runs from the editor change callback, with s.mu held.
func (s *Session) touched() {
	s.revision++
	s.dirty = true

	if drafts := s.svc.deps.Drafts; drafts != nil {
		if err := drafts.SaveDraft(context.Background(), s.endpointID, s.editor.Flow()); err != nil {
			s.logger.Warn().Err(err).Msg("Could not store flow draft")
		}
	}
	s.scheduleLocked()
}

func (s *Session) scheduleLocked() {
	d := s.svc.deps.SaveDebounce
	if d <= 0 {
		if err := s.flushLocked(); err != nil {
			s.logger.Error().Err(err).Msg("Could not save flow")
		}
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(d, func() {
			if err := s.Flush(); err != nil {
				s.logger.Error().Err(err).Msg("Could not save flow")
			}
		})
		return
	}
	s.timer.Reset(d)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Session) flushLocked() error {
	if !s.dirty || s.closed {
		return nil
	}
	flow := s.editor.Flow()
	report, err := s.svc.deps.Store.SaveFlow(s.endpointID, flow)
	if err != nil {
		return err
	}
	s.dirty = false
	s.discardDraftLocked()
	s.svc.publish(s.endpointID, flow, report, s.logger)
	return nil
}

func (s *Session) discardDraftLocked() {
	if drafts := s.svc.deps.Drafts; drafts != nil {
		if err := drafts.DiscardDraft(context.Background(), s.endpointID); err != nil {
			s.logger.Warn().Err(err).Msg("Could not discard flow draft")
		}
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"inkwell/internal/domain"
)

var testClock Clock = func() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]domain.SignatureRequest
	updates  int
	failNext error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]domain.SignatureRequest)}
}

func (r *fakeRequestRepo) Create(_ context.Context, req domain.SignatureRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = req
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*domain.SignatureRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := req
	return &out, nil
}

func (r *fakeRequestRepo) GetByToken(_ context.Context, token string) (*domain.SignatureRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.PublicToken == token {
			out := req
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRequestRepo) Update(_ context.Context, req domain.SignatureRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	if _, ok := r.requests[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.requests[req.ID] = req
	r.updates++
	return nil
}

type fakeFieldRepo struct {
	mu     sync.Mutex
	fields map[string][]domain.SignatureField
}

func newFakeFieldRepo() *fakeFieldRepo {
	return &fakeFieldRepo{fields: make(map[string][]domain.SignatureField)}
}

func (r *fakeFieldRepo) ReplaceForRequest(_ context.Context, requestID string, fields []domain.SignatureField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SignatureField, len(fields))
	copy(out, fields)
	r.fields[requestID] = out
	return nil
}

func (r *fakeFieldRepo) ListByRequest(_ context.Context, requestID string) ([]domain.SignatureField, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SignatureField, len(r.fields[requestID]))
	copy(out, r.fields[requestID])
	return out, nil
}

type fakeImageRepo struct {
	mu     sync.Mutex
	images map[string]map[string]domain.FieldSignatureImage
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]map[string]domain.FieldSignatureImage)}
}

func (r *fakeImageRepo) Upsert(_ context.Context, img domain.FieldSignatureImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byField := r.images[img.RequestID]
	if byField == nil {
		byField = make(map[string]domain.FieldSignatureImage)
		r.images[img.RequestID] = byField
	}
	byField[img.FieldID] = img
	return nil
}

func (r *fakeImageRepo) ListByRequest(_ context.Context, requestID string) ([]domain.FieldSignatureImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FieldSignatureImage
	for _, img := range r.images[requestID] {
		out = append(out, img)
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *fakeAuditRepo) Append(_ context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return event, nil
}

func (r *fakeAuditRepo) ListByRequest(_ context.Context, requestID string) ([]domain.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEvent
	for _, e := range r.events {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) eventTypes() []domain.AuditEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}

type fakeObjectStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	seq        int
	deleted    []string
	failDelete bool
	failPut    bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(_ context.Context, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return "", errors.New("object store down")
	}
	s.seq++
	ref := fmt.Sprintf("fake://obj-%d", s.seq)
	out := make([]byte, len(data))
	copy(out, data)
	s.objects[ref] = out
	return ref, nil
}

func (s *fakeObjectStore) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errors.New("delete refused")
	}
	delete(s.objects, ref)
	s.deleted = append(s.deleted, ref)
	return nil
}

func (s *fakeObjectStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, ref string
}

func (n *fakeNotifier) SendDocument(_ context.Context, to, subject, documentRef string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{to: to, subject: subject, ref: documentRef})
	return n.err
}

// fakeComposer tags the output with a composition counter so tests can tell
// artifacts apart without parsing PDF bytes.
type fakeComposer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *fakeComposer) Compose(source []byte, fields *domain.FieldSet, images map[string]domain.FieldSignatureImage) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.calls++
	return []byte(fmt.Sprintf("composed-%d:%d-images:%s", c.calls, len(images), source)), nil
}

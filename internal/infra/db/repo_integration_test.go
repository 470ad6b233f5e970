//go:build integration
// +build integration

package db

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"inkwell/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN_TEST"))
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set")
	}
	dbConn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := &Store{DB: dbConn}
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	resetDB(t, dbConn)
	return dbConn
}

func resetDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, table := range []string{"audit_events", "field_signature_images", "signature_fields", "signature_requests"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}

func mustUUID(t *testing.T) string {
	t.Helper()
	id, err := newUUID()
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func testRequest(t *testing.T) domain.SignatureRequest {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.SignatureRequest{
		ID:           mustUUID(t),
		Title:        "Integration Lease",
		SourcePDFRef: "fs://source.pdf",
		Status:       domain.StatusDraft,
		PublicToken:  mustUUID(t),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRequestRepository_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req := testRequest(t)
	if err := repo.Create(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := repo.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Title != req.Title || byID.Status != domain.StatusDraft {
		t.Errorf("got %+v", byID)
	}

	byToken, err := repo.GetByToken(ctx, req.PublicToken)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if byToken.ID != req.ID {
		t.Errorf("token resolved to %s", byToken.ID)
	}

	req.Status = domain.StatusSent
	req.SignedPDFRef = "fs://signed.pdf"
	req.UpdatedAt = req.UpdatedAt.Add(time.Minute)
	if err := repo.Update(ctx, req); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := repo.GetByID(ctx, req.ID)
	if updated.Status != domain.StatusSent || updated.SignedPDFRef != "fs://signed.pdf" {
		t.Errorf("after update: %+v", updated)
	}

	if _, err := repo.GetByID(ctx, mustUUID(t)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	missing := testRequest(t)
	if err := repo.Update(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing: got %v, want ErrNotFound", err)
	}
}

func TestFieldRepository_ReplaceAndOrder(t *testing.T) {
	db := setupTestDB(t)
	requests := NewRequestRepository(db)
	fields := NewFieldRepository(db)
	ctx := context.Background()

	req := testRequest(t)
	if err := requests.Create(ctx, req); err != nil {
		t.Fatal(err)
	}

	first := []domain.SignatureField{
		{ID: mustUUID(t), RequestID: req.ID, PageNumber: 2, X: 0.1, Y: 0.1, Width: 0.2, Height: 0.05, Kind: domain.FieldSignature},
		{ID: mustUUID(t), RequestID: req.ID, PageNumber: 1, X: 0.5, Y: 0.8, Width: 0.2, Height: 0.05, Kind: domain.FieldDataEntry, Label: "Date"},
		{ID: mustUUID(t), RequestID: req.ID, PageNumber: 1, X: 0.1, Y: 0.2, Width: 0.2, Height: 0.05, Kind: domain.FieldSignature},
	}
	if err := fields.ReplaceForRequest(ctx, req.ID, first); err != nil {
		t.Fatalf("replace: %v", err)
	}

	listed, err := fields.ListByRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("len = %d", len(listed))
	}
	// Reading order: page, then top to bottom.
	if listed[0].PageNumber != 1 || listed[0].Y != 0.2 {
		t.Errorf("first listed = %+v", listed[0])
	}
	if listed[2].PageNumber != 2 {
		t.Errorf("last listed = %+v", listed[2])
	}
	if listed[1].Label != "Date" {
		t.Errorf("second listed = %+v", listed[1])
	}

	// A replace drops the old set entirely.
	second := []domain.SignatureField{
		{ID: mustUUID(t), RequestID: req.ID, PageNumber: 1, X: 0.3, Y: 0.3, Width: 0.2, Height: 0.05, Kind: domain.FieldSignature},
	}
	if err := fields.ReplaceForRequest(ctx, req.ID, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	listed, _ = fields.ListByRequest(ctx, req.ID)
	if len(listed) != 1 || listed[0].ID != second[0].ID {
		t.Errorf("after replace: %+v", listed)
	}
}

func TestImageRepository_UpsertLastWriteWins(t *testing.T) {
	db := setupTestDB(t)
	requests := NewRequestRepository(db)
	images := NewImageRepository(db)
	ctx := context.Background()

	req := testRequest(t)
	if err := requests.Create(ctx, req); err != nil {
		t.Fatal(err)
	}
	fieldID := mustUUID(t)

	first := domain.FieldSignatureImage{
		FieldID: fieldID, RequestID: req.ID, PNG: []byte("png-1"),
		SignerName: "Jane", SignerEmail: "jane@example.com", SignerIP: "203.0.113.9",
		CapturedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := images.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := first
	second.PNG = []byte("png-2")
	second.CapturedAt = first.CapturedAt.Add(time.Minute)
	if err := images.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	listed, err := images.ListByRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("len = %d, want 1 after overwrite", len(listed))
	}
	if string(listed[0].PNG) != "png-2" {
		t.Errorf("png = %q, last write should win", listed[0].PNG)
	}
}

func TestImageRepository_RejectsEmptyPNG(t *testing.T) {
	db := setupTestDB(t)
	images := NewImageRepository(db)
	err := images.Upsert(context.Background(), domain.FieldSignatureImage{
		FieldID: mustUUID(t), RequestID: mustUUID(t),
	})
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("got %v, want ErrInvalidImage", err)
	}
}

func TestAuditEventRepository_AppendAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditEventRepository(db)
	ctx := context.Background()
	requestID := mustUUID(t)

	first, err := repo.Append(ctx, domain.AuditEvent{
		RequestID:  requestID,
		EventType:  domain.AuditEventRequestCreated,
		Payload:    map[string]any{"field_count": 2},
		ActorType:  domain.AuditActorAdminAPIKey,
		TargetType: domain.AuditTargetRequest,
		TargetID:   requestID,
		Result:     domain.AuditResultSuccess,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected an assigned event id")
	}

	if _, err := repo.Append(ctx, domain.AuditEvent{
		RequestID:  requestID,
		EventType:  domain.AuditEventRequestSent,
		ActorType:  domain.AuditActorAdminAPIKey,
		TargetType: domain.AuditTargetRequest,
		TargetID:   requestID,
		Result:     domain.AuditResultSuccess,
		CreatedAt:  time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("append second: %v", err)
	}

	events, err := repo.ListByRequest(ctx, requestID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d", len(events))
	}
	if events[0].EventType != domain.AuditEventRequestCreated || events[1].EventType != domain.AuditEventRequestSent {
		t.Errorf("order = %s, %s", events[0].EventType, events[1].EventType)
	}
	payload, ok := events[0].Payload.(map[string]any)
	if !ok || payload["field_count"] != float64(2) {
		t.Errorf("payload = %#v", events[0].Payload)
	}
}

package flyerapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flyerdeck/flyerctl/internal/fakeapi"
	"github.com/flyerdeck/flyerctl/internal/flyerapi"
)

func newTestBackend(t *testing.T) (*fakeapi.Server, *flyerapi.Client) {
	t.Helper()
	backend := fakeapi.New()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return backend, flyerapi.New(srv.URL, backend.Token)
}

func seedFlyer(backend *fakeapi.Server) string {
	return backend.AddFlyer(flyerapi.Flyer{
		Title:            "Bassline Sessions",
		ExtractionStatus: flyerapi.ExtractionCompleted,
		InformationExtraction: &flyerapi.Extraction{
			EventTitle:    "Bassline Sessions",
			EventDateTime: "2026-09-12 22:00",
			VenueName:     "The Crypt",
			FieldConfidenceLevels: map[string]string{
				flyerapi.FieldEventTitle:    "0.95",
				flyerapi.FieldEventDateTime: "0.97",
				flyerapi.FieldVenueName:     "0.92",
			},
		},
	})
}

var ctx = context.Background()

func TestLogin(t *testing.T) {
	backend, _ := newTestBackend(t)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	anon := flyerapi.New(srv.URL, "")
	token, err := anon.Login(ctx, backend.Username, backend.Password)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != backend.Token {
		t.Errorf("token = %q, want %q", token, backend.Token)
	}

	if _, err := anon.Login(ctx, backend.Username, "wrong"); !errors.Is(err, flyerapi.ErrUnauthorized) {
		t.Errorf("bad credentials error = %v, want ErrUnauthorized", err)
	}

	var verr *flyerapi.ValidationError
	if _, err := anon.Login(ctx, "", ""); !errors.As(err, &verr) {
		t.Errorf("empty credentials error = %v, want ValidationError", err)
	}
}

func TestListAndGetFlyers(t *testing.T) {
	backend, client := newTestBackend(t)
	id := seedFlyer(backend)

	flyers, err := client.ListFlyers(ctx)
	if err != nil {
		t.Fatalf("ListFlyers: %v", err)
	}
	if len(flyers) != 1 {
		t.Fatalf("got %d flyers, want 1", len(flyers))
	}

	f, err := client.GetFlyer(ctx, id)
	if err != nil {
		t.Fatalf("GetFlyer: %v", err)
	}
	if f.Title != "Bassline Sessions" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.InformationExtraction == nil {
		t.Fatal("InformationExtraction is nil")
	}
	if got := f.InformationExtraction.FieldConfidenceLevels[flyerapi.FieldEventTitle]; got != "0.95" {
		t.Errorf("event_title confidence = %q, want 0.95", got)
	}

	if _, err := client.GetFlyer(ctx, "missing"); !errors.Is(err, flyerapi.ErrNotFound) {
		t.Errorf("missing flyer error = %v, want ErrNotFound", err)
	}
}

func TestUnauthorizedRequests(t *testing.T) {
	backend, _ := newTestBackend(t)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	stale := flyerapi.New(srv.URL, "expired-token")
	_, err := stale.ListFlyers(ctx)
	if !errors.Is(err, flyerapi.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
	var apiErr *flyerapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("error = %v, want *APIError with status 401", err)
	}
}

func TestUpdateExtraction(t *testing.T) {
	backend, client := newTestBackend(t)
	id := seedFlyer(backend)

	f, err := client.UpdateExtraction(ctx, id, map[string]string{
		flyerapi.FieldVenueName: "The Vaults",
	})
	if err != nil {
		t.Fatalf("UpdateExtraction: %v", err)
	}
	if f.InformationExtraction.VenueName != "The Vaults" {
		t.Errorf("VenueName = %q, want The Vaults", f.InformationExtraction.VenueName)
	}
	// Untouched fields survive a partial update.
	if f.InformationExtraction.EventTitle != "Bassline Sessions" {
		t.Errorf("EventTitle = %q, want unchanged", f.InformationExtraction.EventTitle)
	}

	var verr *flyerapi.ValidationError
	if _, err := client.UpdateExtraction(ctx, id, nil); !errors.As(err, &verr) {
		t.Errorf("empty update error = %v, want ValidationError", err)
	}
	if _, err := client.UpdateExtraction(ctx, id, map[string]string{"bogus": "x"}); !errors.As(err, &verr) {
		t.Errorf("unknown field error = %v, want ValidationError", err)
	}
}

func TestGenerateImagesAndPoll(t *testing.T) {
	backend, client := newTestBackend(t)
	id := seedFlyer(backend)

	if err := client.GenerateImages(ctx, id); err != nil {
		t.Fatalf("GenerateImages: %v", err)
	}
	backend.FinishGenerationAfter(id, 3)

	var f flyerapi.Flyer
	var err error
	for i := 0; i < 3; i++ {
		if f, err = client.GetFlyer(ctx, id); err != nil {
			t.Fatalf("GetFlyer: %v", err)
		}
	}
	if !f.HasGeneratedImages() {
		t.Fatal("images not generated after countdown elapsed")
	}
	if len(f.GeneratedImages) != 3 {
		t.Errorf("got %d images, want 3", len(f.GeneratedImages))
	}
	for _, img := range f.GeneratedImages {
		if img.URL == "" {
			t.Errorf("image %s has no URL", img.ID)
		}
	}
}

func TestInstagramScheduling(t *testing.T) {
	backend, client := newTestBackend(t)
	id := seedFlyer(backend)

	if err := client.GenerateImages(ctx, id); err != nil {
		t.Fatalf("GenerateImages: %v", err)
	}
	backend.FinishGenerationAfter(id, 1)
	f, err := client.GetFlyer(ctx, id)
	if err != nil {
		t.Fatalf("GetFlyer: %v", err)
	}
	imageID := f.GeneratedImages[0].ID

	if err := client.SelectInstagramImages(ctx, id, []string{imageID}); err != nil {
		t.Fatalf("SelectInstagramImages: %v", err)
	}

	when := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	post, err := client.ScheduleInstagramPost(ctx, id, flyerapi.SchedulePostRequest{
		ImageID:     imageID,
		Caption:     "Doors at ten.",
		ScheduledAt: when,
	})
	if err != nil {
		t.Fatalf("ScheduleInstagramPost: %v", err)
	}
	if post.PostStatus != flyerapi.PostScheduled {
		t.Errorf("PostStatus = %q, want scheduled", post.PostStatus)
	}

	posts, err := client.ListScheduledInstagram(ctx, id)
	if err != nil {
		t.Fatalf("ListScheduledInstagram: %v", err)
	}
	if len(posts) != 1 || !posts[0].ScheduledAt.Equal(when) {
		t.Errorf("scheduled posts = %+v, want one at %v", posts, when)
	}

	if err := client.CancelScheduledInstagram(ctx, id, imageID); err != nil {
		t.Fatalf("CancelScheduledInstagram: %v", err)
	}
	posts, err = client.ListScheduledInstagram(ctx, id)
	if err != nil {
		t.Fatalf("ListScheduledInstagram after cancel: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("got %d posts after cancel, want 0", len(posts))
	}
}

func TestInstagramLocalValidation(t *testing.T) {
	_, client := newTestBackend(t)

	long := make([]byte, flyerapi.MaxCaptionLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name string
		req  flyerapi.SchedulePostRequest
	}{
		{"missing image id", flyerapi.SchedulePostRequest{ScheduledAt: time.Now().Add(time.Hour)}},
		{"caption too long", flyerapi.SchedulePostRequest{ImageID: "i", Caption: string(long), ScheduledAt: time.Now().Add(time.Hour)}},
		{"scheduled in the past", flyerapi.SchedulePostRequest{ImageID: "i", ScheduledAt: time.Now().Add(-time.Minute)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ScheduleInstagramPost(ctx, "any", tt.req)
			var verr *flyerapi.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}

	// The limit counts characters, not bytes: a caption of exactly
	// MaxCaptionLength multibyte runes passes local validation.
	t.Run("multibyte caption at the limit", func(t *testing.T) {
		req := flyerapi.SchedulePostRequest{
			ImageID:     "i",
			Caption:     strings.Repeat("é", flyerapi.MaxCaptionLength),
			ScheduledAt: time.Now().Add(time.Hour),
		}
		_, err := client.ScheduleInstagramPost(ctx, "any", req)
		var verr *flyerapi.ValidationError
		if errors.As(err, &verr) {
			t.Errorf("caption of %d runes rejected locally: %v", flyerapi.MaxCaptionLength, err)
		}
	})
}

func TestWordPressPosting(t *testing.T) {
	backend, client := newTestBackend(t)
	id := seedFlyer(backend)

	post, err := client.PostWordPressNow(ctx, id, flyerapi.WordPressPostRequest{
		ImageID: "img-1",
		Title:   "Bassline Sessions — September",
		Content: "<p>Doors at <strong>ten</strong>.</p>",
	})
	if err != nil {
		t.Fatalf("PostWordPressNow: %v", err)
	}
	if post.PostStatus != flyerapi.PostPosted {
		t.Errorf("PostStatus = %q, want posted", post.PostStatus)
	}
	if post.PostedAt == nil {
		t.Error("PostedAt is nil for an immediate post")
	}

	var verr *flyerapi.ValidationError
	_, err = client.ScheduleWordPressPost(ctx, id, flyerapi.WordPressPostRequest{
		ImageID:     "img-1",
		Title:       "t",
		ScheduledAt: time.Now().Add(-time.Hour),
	})
	if !errors.As(err, &verr) {
		t.Errorf("past schedule error = %v, want ValidationError", err)
	}
	_, err = client.PostWordPressNow(ctx, id, flyerapi.WordPressPostRequest{ImageID: "img-1"})
	if !errors.As(err, &verr) {
		t.Errorf("missing title error = %v, want ValidationError", err)
	}
}

func TestUploadFlyer(t *testing.T) {
	backend, client := newTestBackend(t)
	_ = backend

	dir := t.TempDir()
	path := filepath.Join(dir, "flyer.png")
	if err := os.WriteFile(path, []byte("not a real png"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := client.UploadFlyer(ctx, path, "Warehouse Party")
	if err != nil {
		t.Fatalf("UploadFlyer: %v", err)
	}
	if f.ID == "" {
		t.Error("uploaded flyer has no id")
	}
	if f.Title != "Warehouse Party" {
		t.Errorf("Title = %q, want Warehouse Party", f.Title)
	}
	if f.ExtractionStatus != flyerapi.ExtractionPending {
		t.Errorf("ExtractionStatus = %q, want pending", f.ExtractionStatus)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"f1","title":"x","extraction_status":"exploded","generated_images":[],"created_at":"2026-01-01T00:00:00Z"}`))
	}))
	t.Cleanup(srv.Close)

	client := flyerapi.New(srv.URL, "t")
	_, err := client.GetFlyer(ctx, "f1")
	if err == nil {
		t.Fatal("expected error for unknown extraction status")
	}
}

// Package fakeapi is an in-process double of the flyer dashboard backend,
// implementing just enough of its REST contract for client and CLI tests. It
// is a test fixture, not a server design: state lives in memory and behavior
// knobs (extraction/generation countdowns) simulate the backend's
// asynchronous work.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flyerdeck/flyerctl/internal/flyerapi"
)

// Server holds the fake backend state. All exported mutators are safe for
// concurrent use with request handling.
type Server struct {
	Username string
	Password string
	Token    string

	mu      sync.Mutex
	flyers  map[string]*flyerapi.Flyer
	igPosts map[string][]flyerapi.ScheduledPost
	wpPosts map[string][]flyerapi.ScheduledPost

	// extractTicks / generateTicks count down on each read of a flyer
	// (list or detail); when a counter hits zero the pending transition
	// completes. This lets tests drive the client's polling loops
	// deterministically.
	extractTicks  map[string]int
	generateTicks map[string]int

	router chi.Router
}

// New creates a fake backend with a fixed login credential pair.
func New() *Server {
	s := &Server{
		Username:      "operator",
		Password:      "hunter2",
		Token:         "fake-token-" + uuid.New().String(),
		flyers:        make(map[string]*flyerapi.Flyer),
		igPosts:       make(map[string][]flyerapi.ScheduledPost),
		wpPosts:       make(map[string][]flyerapi.ScheduledPost),
		extractTicks:  make(map[string]int),
		generateTicks: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get("/flyers", s.handleListFlyers)
		r.Post("/flyers", s.handleUploadFlyer)
		r.Get("/flyers/{id}", s.handleGetFlyer)
		r.Patch("/flyers/{id}/extraction", s.handlePatchExtraction)
		r.Post("/flyers/{id}/generate-images", s.handleGenerateImages)

		r.Post("/flyers/{id}/instagram/select-images", s.handleSelectImages)
		r.Post("/flyers/{id}/instagram/schedule", s.handleSchedule(s.igPosts))
		r.Get("/flyers/{id}/instagram/scheduled", s.handleListScheduled(s.igPosts))
		r.Delete("/flyers/{id}/instagram/scheduled/{imageID}", s.handleCancelScheduled(s.igPosts))

		r.Post("/flyers/{id}/wordpress/schedule", s.handleSchedule(s.wpPosts))
		r.Post("/flyers/{id}/wordpress/post-now", s.handlePostNow)
		r.Get("/flyers/{id}/wordpress/scheduled", s.handleListScheduled(s.wpPosts))
		r.Delete("/flyers/{id}/wordpress/scheduled/{imageID}", s.handleCancelScheduled(s.wpPosts))
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddFlyer seeds a flyer and returns its id (generated when empty).
func (s *Server) AddFlyer(f flyerapi.Flyer) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	s.flyers[f.ID] = &f
	return f.ID
}

// CompleteExtractionAfter makes the flyer's extraction flip to completed
// after n GETs of its detail resource.
func (s *Server) CompleteExtractionAfter(id string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractTicks[id] = n
}

// FinishGenerationAfter makes requested images flip to generated after n GETs
// of the flyer's detail resource.
func (s *Server) FinishGenerationAfter(id string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateTicks[id] = n
}

// ScheduledInstagram returns a copy of the flyer's scheduled Instagram posts.
func (s *Server) ScheduledInstagram(flyerID string) []flyerapi.ScheduledPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]flyerapi.ScheduledPost(nil), s.igPosts[flyerID]...)
}

// --- middleware and helpers ---

func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, prefix) || auth[len(prefix):] != s.Token {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func httpError(w http.ResponseWriter, code int, errType, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// --- handlers ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}
	if req.Username != s.Username || req.Password != s.Password {
		httpError(w, http.StatusUnauthorized, "authentication_error", "invalid credentials")
		return
	}
	writeJSON(w, map[string]string{"token": s.Token})
}

func (s *Server) handleListFlyers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]flyerapi.Flyer, 0, len(s.flyers))
	for _, f := range s.flyers {
		s.tick(f)
		out = append(out, *f)
	}
	writeJSON(w, out)
}

func (s *Server) handleGetFlyer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flyers[id]
	if !ok {
		httpError(w, http.StatusNotFound, "not_found", "flyer not found")
		return
	}
	s.tick(f)
	writeJSON(w, *f)
}

// tick advances pending asynchronous transitions. Callers hold s.mu.
func (s *Server) tick(f *flyerapi.Flyer) {
	if n, ok := s.extractTicks[f.ID]; ok {
		if n <= 1 {
			delete(s.extractTicks, f.ID)
			f.ExtractionStatus = flyerapi.ExtractionCompleted
		} else {
			s.extractTicks[f.ID] = n - 1
		}
	}
	if n, ok := s.generateTicks[f.ID]; ok {
		if n <= 1 {
			delete(s.generateTicks, f.ID)
			for i := range f.GeneratedImages {
				f.GeneratedImages[i].GenerationStatus = flyerapi.GenerationGenerated
				f.GeneratedImages[i].URL = "https://cdn.example.com/" + f.GeneratedImages[i].ID + ".png"
			}
		} else {
			s.generateTicks[f.ID] = n - 1
		}
	}
}

func (s *Server) handlePatchExtraction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flyers[id]
	if !ok {
		httpError(w, http.StatusNotFound, "not_found", "flyer not found")
		return
	}
	if f.InformationExtraction == nil {
		f.InformationExtraction = &flyerapi.Extraction{}
	}
	e := f.InformationExtraction
	for key, value := range fields {
		switch key {
		case flyerapi.FieldEventDateTime:
			e.EventDateTime = value
		case flyerapi.FieldLocationTownCity:
			e.LocationTownCity = value
		case flyerapi.FieldEventTitle:
			e.EventTitle = value
		case flyerapi.FieldPerformers:
			e.Performers = value
		case flyerapi.FieldVenueName:
			e.VenueName = value
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown field %q", key)
			return
		}
	}
	writeJSON(w, *f)
}

func (s *Server) handleGenerateImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flyers[id]
	if !ok {
		httpError(w, http.StatusNotFound, "not_found", "flyer not found")
		return
	}
	if f.ExtractionStatus != flyerapi.ExtractionCompleted {
		httpError(w, http.StatusConflict, "invalid_state", "extraction not completed")
		return
	}
	if len(f.GeneratedImages) == 0 {
		for _, t := range []flyerapi.ImageType{flyerapi.ImageTimeDate, flyerapi.ImagePerformers, flyerapi.ImageLocation} {
			f.GeneratedImages = append(f.GeneratedImages, flyerapi.GeneratedImage{
				ID:               uuid.New().String(),
				ImageType:        t,
				GenerationStatus: flyerapi.GenerationRequested,
			})
		}
	}
	writeJSON(w, map[string]string{"status": "requested"})
}

func (s *Server) handleUploadFlyer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid multipart form: %v", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "file is required")
		return
	}
	file.Close()

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	f := flyerapi.Flyer{
		ID:               uuid.New().String(),
		Title:            title,
		ExtractionStatus: flyerapi.ExtractionPending,
		CreatedAt:        time.Now().UTC(),
	}
	s.mu.Lock()
	s.flyers[f.ID] = &f
	s.mu.Unlock()
	writeJSON(w, f)
}

func (s *Server) handleSelectImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		ImageIDs []string `json:"image_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flyers[id]
	if !ok {
		httpError(w, http.StatusNotFound, "not_found", "flyer not found")
		return
	}
	for _, imgID := range req.ImageIDs {
		if !hasImage(f, imgID) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown image %q", imgID)
			return
		}
	}
	writeJSON(w, map[string]string{"status": "selected"})
}

func hasImage(f *flyerapi.Flyer, imageID string) bool {
	for _, img := range f.GeneratedImages {
		if img.ID == imageID {
			return true
		}
	}
	return false
}

func (s *Server) handleSchedule(posts map[string][]flyerapi.ScheduledPost) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		// Superset of the Instagram and WordPress schedule payloads.
		var req struct {
			ImageID     string    `json:"image_id"`
			Caption     string    `json:"caption"`
			Title       string    `json:"title"`
			Content     string    `json:"content"`
			ScheduledAt time.Time `json:"scheduled_at"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.flyers[id]; !ok {
			httpError(w, http.StatusNotFound, "not_found", "flyer not found")
			return
		}
		post := flyerapi.ScheduledPost{
			ImageID:     req.ImageID,
			PostStatus:  flyerapi.PostScheduled,
			Caption:     req.Caption,
			Title:       req.Title,
			Content:     req.Content,
			ScheduledAt: req.ScheduledAt,
		}
		posts[id] = append(posts[id], post)
		writeJSON(w, post)
	}
}

func (s *Server) handlePostNow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req flyerapi.WordPressPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flyers[id]; !ok {
		httpError(w, http.StatusNotFound, "not_found", "flyer not found")
		return
	}
	now := time.Now().UTC()
	post := flyerapi.ScheduledPost{
		ImageID:     req.ImageID,
		PostStatus:  flyerapi.PostPosted,
		Title:       req.Title,
		Content:     req.Content,
		ScheduledAt: now,
		PostedAt:    &now,
	}
	s.wpPosts[id] = append(s.wpPosts[id], post)
	writeJSON(w, post)
}

func (s *Server) handleListScheduled(posts map[string][]flyerapi.ScheduledPost) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.flyers[id]; !ok {
			httpError(w, http.StatusNotFound, "not_found", "flyer not found")
			return
		}
		out := posts[id]
		if out == nil {
			out = []flyerapi.ScheduledPost{}
		}
		writeJSON(w, out)
	}
}

func (s *Server) handleCancelScheduled(posts map[string][]flyerapi.ScheduledPost) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		imageID := chi.URLParam(r, "imageID")

		s.mu.Lock()
		defer s.mu.Unlock()
		list := posts[id]
		for i, p := range list {
			if p.ImageID == imageID {
				posts[id] = append(list[:i], list[i+1:]...)
				writeJSON(w, map[string]string{"status": "canceled"})
				return
			}
		}
		httpError(w, http.StatusNotFound, "not_found", "no scheduled post for image %q", imageID)
	}
}

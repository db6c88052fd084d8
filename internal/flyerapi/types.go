package flyerapi

import (
	"encoding/json"
	"fmt"
	"time"
)

// ExtractionStatus is the server-side lifecycle of flyer field extraction.
type ExtractionStatus string

const (
	ExtractionPending    ExtractionStatus = "pending"
	ExtractionProcessing ExtractionStatus = "processing"
	ExtractionCompleted  ExtractionStatus = "completed"
	ExtractionFailed     ExtractionStatus = "failed"
)

// Terminal reports whether extraction has finished, successfully or not.
func (s ExtractionStatus) Terminal() bool {
	return s == ExtractionCompleted || s == ExtractionFailed
}

func (s *ExtractionStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, "extraction status",
		ExtractionPending, ExtractionProcessing, ExtractionCompleted, ExtractionFailed)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ImageType identifies which promotional variant a generated image is.
type ImageType string

const (
	ImageTimeDate   ImageType = "time_date"
	ImagePerformers ImageType = "performers"
	ImageLocation   ImageType = "location"
)

func (t *ImageType) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, "image type", ImageTimeDate, ImagePerformers, ImageLocation)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// GenerationStatus is the server-side lifecycle of a generated image.
type GenerationStatus string

const (
	GenerationRequested  GenerationStatus = "requested"
	GenerationGenerating GenerationStatus = "generating"
	GenerationGenerated  GenerationStatus = "generated"
	GenerationFailed     GenerationStatus = "failed"
)

func (s *GenerationStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, "generation status",
		GenerationRequested, GenerationGenerating, GenerationGenerated, GenerationFailed)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// PostStatus is the server-side lifecycle of a scheduled social post.
type PostStatus string

const (
	PostPending   PostStatus = "pending"
	PostScheduled PostStatus = "scheduled"
	PostPosting   PostStatus = "posting"
	PostPosted    PostStatus = "posted"
	PostFailed    PostStatus = "failed"
)

func (s *PostStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, "post status",
		PostPending, PostScheduled, PostPosting, PostPosted, PostFailed)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// decodeEnum decodes a JSON string and rejects values outside the allowed
// set. Unknown statuses from the backend are an error, never a silent
// default.
func decodeEnum[T ~string](b []byte, name string, allowed ...T) (T, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	for _, a := range allowed {
		if T(s) == a {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q", name, s)
}

// Canonical extraction field keys. These match the backend's
// field_confidence_levels map and the auto-generation gate.
const (
	FieldEventDateTime    = "event_date_time"
	FieldLocationTownCity = "location_town_city"
	FieldEventTitle       = "event_title"
	FieldPerformers       = "performers_djs_soundsystems"
	FieldVenueName        = "venue_name"
)

// FieldKeys lists the canonical extraction fields in display order.
func FieldKeys() []string {
	return []string{
		FieldEventTitle,
		FieldEventDateTime,
		FieldVenueName,
		FieldLocationTownCity,
		FieldPerformers,
	}
}

// Extraction holds the AI-derived event fields of a flyer plus the per-field
// confidence strings reported by the extractor. Values are read-only apart
// from operator corrections submitted via UpdateExtraction.
type Extraction struct {
	EventDateTime    string `json:"event_date_time"`
	LocationTownCity string `json:"location_town_city"`
	EventTitle       string `json:"event_title"`
	Performers       string `json:"performers_djs_soundsystems"`
	VenueName        string `json:"venue_name"`

	// FieldConfidenceLevels maps field key to a raw confidence string
	// (fraction or percentage form). Absent when the extractor reported no
	// confidence data.
	FieldConfidenceLevels map[string]string `json:"field_confidence_levels,omitempty"`
}

// FieldValues returns the extraction fields as a key/value map using the
// canonical field keys.
func (e Extraction) FieldValues() map[string]string {
	return map[string]string{
		FieldEventDateTime:    e.EventDateTime,
		FieldLocationTownCity: e.LocationTownCity,
		FieldEventTitle:       e.EventTitle,
		FieldPerformers:       e.Performers,
		FieldVenueName:        e.VenueName,
	}
}

// GeneratedImage is a promotional image variant produced server-side.
type GeneratedImage struct {
	ID               string           `json:"id"`
	ImageType        ImageType        `json:"image_type"`
	GenerationStatus GenerationStatus `json:"generation_status"`
	URL              string           `json:"url,omitempty"`
}

// Flyer is the aggregate root: an uploaded event image, its extraction state,
// and any generated images.
type Flyer struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	ExtractionStatus      ExtractionStatus `json:"extraction_status"`
	InformationExtraction *Extraction      `json:"information_extraction,omitempty"`
	GeneratedImages       []GeneratedImage `json:"generated_images"`
	CreatedAt             time.Time        `json:"created_at"`
}

// HasGeneratedImages reports whether at least one image has finished
// generating. This is the poller's satisfaction condition after a
// generate-images request.
func (f Flyer) HasGeneratedImages() bool {
	for _, img := range f.GeneratedImages {
		if img.GenerationStatus == GenerationGenerated {
			return true
		}
	}
	return false
}

// ScheduledPost is a social post scheduled against a generated image. Created
// and mutated entirely server-side; the client issues commands and re-reads.
type ScheduledPost struct {
	ImageID     string     `json:"image_id"`
	PostStatus  PostStatus `json:"post_status"`
	Caption     string     `json:"caption,omitempty"`
	Title       string     `json:"title,omitempty"`
	Content     string     `json:"content,omitempty"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

package document

// Point is a position on a page in engine units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Quad is the bounding quadrilateral of one text match on a page.
type Quad struct {
	UL Point `json:"ul"`
	UR Point `json:"ur"`
	LL Point `json:"ll"`
	LR Point `json:"lr"`
}

// ImagePolicy tells the engine what to do with images under a redaction mark.
type ImagePolicy int

const (
	// ImagesUntouched leaves embedded images as they are.
	ImagesUntouched ImagePolicy = iota

	// ImagesRemove removes images that overlap a mark.
	ImagesRemove

	// ImagesBlank blanks out the overlapping pixels.
	ImagesBlank
)

// String returns the policy name.
func (p ImagePolicy) String() string {
	switch p {
	case ImagesUntouched:
		return "untouched"
	case ImagesRemove:
		return "remove"
	case ImagesBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// ApplyOptions configures ApplyRedactions.
type ApplyOptions struct {
	Images ImagePolicy
}

// SaveOptions configures Save.
type SaveOptions struct {
	// Compact asks the engine to garbage-collect unused objects and
	// deflate streams while saving.
	Compact bool
}

// Engine opens documents.
type Engine interface {
	// Open opens the document at path. The caller must Close it.
	Open(path string) (Document, error)
}

// Document is an open document handle. Pages are numbered from 0.
// A Document is used by one goroutine at a time.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Search returns the bounding quads of every occurrence of text on page.
	Search(page int, text string) ([]Quad, error)

	// MarkRedaction adds a pending redaction mark on page.
	MarkRedaction(page int, quad Quad) error

	// ApplyRedactions applies all pending marks on page.
	ApplyRedactions(page int, opts ApplyOptions) error

	// Save writes the document to dst.
	Save(dst string, opts SaveOptions) error

	// Close releases the handle.
	Close() error
}

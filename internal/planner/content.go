package planner

import "fmt"

// ContentType classifies study material.
type ContentType string

const (
	ContentTypeBook    ContentType = "book"
	ContentTypeLecture ContentType = "lecture"
	ContentTypeCustom  ContentType = "custom"
)

// ContentInput is a resolved content item as handed over by the resolution stage.
// RangeStart and RangeEnd are both inclusive, matching how page and unit ranges
// are entered by users.
type ContentInput struct {
	ContentID       string
	ContentType     ContentType
	RangeStart      int
	RangeEnd        int
	Subject         string
	SubjectCategory string
}

// ContentInfo is a normalized content item. EndRange is exclusive, so
// TotalAmount is always EndRange - StartRange. Immutable after creation.
type ContentInfo struct {
	ContentID       string
	ContentType     ContentType
	StartRange      int
	EndRange        int
	TotalAmount     int
	Subject         string
	SubjectCategory string
}

// NormalizeContent converts an inclusive range into the half-open form the
// allocation engine works with.
func NormalizeContent(in ContentInput) (ContentInfo, error) {
	if in.ContentID == "" {
		return ContentInfo{}, fmt.Errorf("content id is required")
	}
	if in.RangeEnd < in.RangeStart {
		return ContentInfo{}, fmt.Errorf("content %s: range end %d is before start %d", in.ContentID, in.RangeEnd, in.RangeStart)
	}
	end := in.RangeEnd + 1
	return ContentInfo{
		ContentID:       in.ContentID,
		ContentType:     in.ContentType,
		StartRange:      in.RangeStart,
		EndRange:        end,
		TotalAmount:     end - in.RangeStart,
		Subject:         in.Subject,
		SubjectCategory: in.SubjectCategory,
	}, nil
}

// NormalizeContents normalizes a batch, failing on the first invalid item.
func NormalizeContents(inputs []ContentInput) ([]ContentInfo, error) {
	contents := make([]ContentInfo, 0, len(inputs))
	for _, in := range inputs {
		info, err := NormalizeContent(in)
		if err != nil {
			return nil, err
		}
		contents = append(contents, info)
	}
	return contents, nil
}

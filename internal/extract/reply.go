package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// GeneralCourse is used when the model could not name a course.
const GeneralCourse = "General"

// Descriptor is one event as the model describes it. Optional fields are
// nil when the model answered null.
type Descriptor struct {
	Title      string  `json:"title"`
	CourseName string  `json:"courseName"`
	Category   *string `json:"category,omitempty"`
	Date       string  `json:"date"`
	Time       *string `json:"time"`
	Desc       *string `json:"desc"`
}

type Result struct {
	Events []Descriptor `json:"events"`
}

var fenceRe = regexp.MustCompile("```(?:json)?")

// StripFences removes Markdown code fence markers and surrounding space.
func StripFences(reply string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(reply, ""))
}

// ParseReply turns the model's raw text into a Result. Descriptors without a
// title or a YYYY-MM-DD date are dropped and returned as skipped.
func ParseReply(reply string) (Result, int, error) {
	payload := StripFences(reply)
	if payload == "" {
		return Result{}, 0, ErrEmptyReply
	}

	var res Result
	if strings.HasPrefix(payload, "[") {
		// tolerate a bare array
		if err := decodeStrict(payload, &res.Events); err != nil {
			return Result{}, 0, fmt.Errorf("%w: %v", ErrBadReply, err)
		}
	} else if err := decodeStrict(payload, &res); err != nil {
		return Result{}, 0, fmt.Errorf("%w: %v", ErrBadReply, err)
	}

	kept := make([]Descriptor, 0, len(res.Events))
	skipped := 0
	for _, d := range res.Events {
		d.Title = strings.TrimSpace(d.Title)
		d.Date = strings.TrimSpace(d.Date)
		if d.Title == "" {
			skipped++
			continue
		}
		if _, err := time.Parse(time.DateOnly, d.Date); err != nil {
			skipped++
			continue
		}
		if strings.TrimSpace(d.CourseName) == "" {
			d.CourseName = GeneralCourse
		}
		d.Time = nullIfBlank(d.Time)
		d.Desc = nullIfBlank(d.Desc)
		kept = append(kept, d)
	}
	res.Events = kept
	return res, skipped, nil
}

func decodeStrict(payload string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}

func nullIfBlank(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

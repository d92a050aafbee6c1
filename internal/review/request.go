package review

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateRequest is the body of POST /api/wl/review.
type CreateRequest struct {
	Locale                    string  `json:"locale" validate:"omitempty,oneof=en is"`
	OverallStars              *int    `json:"overall_stars" validate:"required,min=1,max=5"`
	RecommendScore            *int    `json:"recommend_score" validate:"required,min=0,max=10"`
	BookingCommunicationStars *int    `json:"booking_communication_stars" validate:"omitempty,min=1,max=5"`
	StaffServiceStars         *int    `json:"staff_service_stars" validate:"omitempty,min=1,max=5"`
	SpaceCleanlinessStars     *int    `json:"space_cleanliness_stars" validate:"omitempty,min=1,max=5"`
	ImproveOneThing           *string `json:"improve_one_thing" validate:"omitempty,max=4000"`
}

const defaultLocale = "en"

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Build validates req and returns the review to store, segment included.
func (req CreateRequest) Build(v *validator.Validate) (*Review, error) {
	req.Locale = strings.ToLower(strings.TrimSpace(req.Locale))
	if err := v.Struct(req); err != nil {
		return nil, describe(err)
	}
	if req.Locale == "" {
		req.Locale = defaultLocale
	}

	r := &Review{
		Locale:                    req.Locale,
		OverallStars:              *req.OverallStars,
		RecommendScore:            *req.RecommendScore,
		BookingCommunicationStars: req.BookingCommunicationStars,
		StaffServiceStars:         req.StaffServiceStars,
		SpaceCleanlinessStars:     req.SpaceCleanlinessStars,
		ImproveOneThing:           blankToNil(req.ImproveOneThing),
	}
	r.Segment = Classify(r.OverallStars, r.RecommendScore)
	return r, nil
}

func describe(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return invalid("invalid review")
	}
	fe := ves[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field() + " is required")
	case "oneof":
		return invalid(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	case "min", "max":
		if fe.Kind() == reflect.String {
			return invalid(fmt.Sprintf("%s is too long", fe.Field()))
		}
		if fe.Field() == "recommend_score" {
			return invalid("recommend_score must be an integer between 0 and 10")
		}
		return invalid(fe.Field() + " must be an integer between 1 and 5")
	}
	return invalid(fe.Field() + " is invalid")
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

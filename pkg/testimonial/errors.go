package testimonial

import "errors"

var (
	ErrAlreadySubmitted    = errors.New("testimonial: already submitted for this subscription")
	ErrNoSubscriptionFound = errors.New("testimonial: customer has no subscription to review")
	ErrUnauthorized        = errors.New("testimonial: unauthorized")
	ErrFailedToSave        = errors.New("testimonial: failed to save")
	ErrFailedToLoad        = errors.New("testimonial: failed to load")
)

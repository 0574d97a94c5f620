package template

import "errors"

// Domain errors for the template package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, template.ErrTemplateNotFound) {
//	    // the section referencing this template fails; siblings compile
//	}
var (
	// ErrTemplateNotFound is returned when a template ID or slug does
	// not exist in the catalogue.
	ErrTemplateNotFound = errors.New("template: not found")

	// ErrTemplateExists is returned when creating a template whose ID or
	// slug is already in use.
	ErrTemplateExists = errors.New("template: already exists")

	// ErrInvalidTemplate is returned when template validation fails.
	ErrInvalidTemplate = errors.New("template: invalid")

	// ErrInvalidStep is returned when a step definition is invalid.
	ErrInvalidStep = errors.New("template: invalid step")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("template: invalid slug")

	// ErrNoSteps is returned when a template has no steps defined.
	ErrNoSteps = errors.New("template: no steps")
)

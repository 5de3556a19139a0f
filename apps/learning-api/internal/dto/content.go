package dto

import "strings"

// CreateContentRequest represents a new blog post, learning path or resource.
// Content is used by blogs, Description by learning paths and resources.
type CreateContentRequest struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Level       *string `json:"level"`
}

// Body returns whichever of Content or Description is set
func (r *CreateContentRequest) Body() string {
	if r.Content != "" {
		return r.Content
	}
	return r.Description
}

// Validate checks required fields
func (r *CreateContentRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Title) == "" {
		return false, "Title is required"
	}
	if strings.TrimSpace(r.Body()) == "" {
		return false, "Content or description is required"
	}
	return true, ""
}

// UpdateContentRequest carries the fields to change; nil fields are kept
type UpdateContentRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	Level       *string `json:"level"`
}

// Body returns the new body, nil when neither Content nor Description is set
func (r *UpdateContentRequest) Body() *string {
	if r.Content != nil {
		return r.Content
	}
	return r.Description
}

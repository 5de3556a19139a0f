package domain

import "time"

// ContentKind is the type of tutor-authored content
type ContentKind string

const (
	ContentBlog         ContentKind = "blog"
	ContentLearningPath ContentKind = "learning_path"
	ContentResource     ContentKind = "resource"
)

// Content is a blog post, learning path or resource owned by a tutor.
// Body holds the post content or the description.
type Content struct {
	ID        string      `json:"id"`
	TutorID   string      `json:"tutorId"`
	Kind      ContentKind `json:"kind"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	Level     *string     `json:"level,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// DataType is the kind of a stored user data item
type DataType string

const (
	DataFile      DataType = "file"
	DataAIPackage DataType = "ai_package"
)

// ParseDataType validates a data item type
func ParseDataType(s string) (DataType, error) {
	switch t := DataType(s); t {
	case DataFile, DataAIPackage:
		return t, nil
	}
	return "", NewError(KindInvalidInput, "type must be file or ai_package")
}

// FileInfo describes an object uploaded to storage
type FileInfo struct {
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	StorageID    string `json:"storageId"`
	URL          string `json:"url"`
}

// DataItem is a file or AI package saved by a user
type DataItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       DataType  `json:"type"`
	Content    string    `json:"content,omitempty"`
	File       *FileInfo `json:"fileInfo,omitempty"`
	AISolution string    `json:"aiSolution,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UsageRecord is one permitted AI call, kept in the usage ledger
type UsageRecord struct {
	UserID     string    `json:"userId" dynamodbav:"user_id"`
	RecordedAt time.Time `json:"recordedAt" dynamodbav:"recorded_at"`
	Plan       Plan      `json:"plan" dynamodbav:"plan"`
	TokensLeft string    `json:"tokensLeft" dynamodbav:"tokens_left"`
	PromptSize int       `json:"promptSize" dynamodbav:"prompt_size"`
	RequestID  string    `json:"requestId,omitempty" dynamodbav:"request_id,omitempty"`
}

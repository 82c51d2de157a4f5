package models

// These structs define the JSON payloads accepted and returned by the
// html-to-pdf function. The same tags are used for YAML request files.

// PageType selects how the renderer treats a page.
type PageType string

const (
	PageTypeCover   PageType = "cover"
	PageTypeContent PageType = "content"
	PageTypeTOC     PageType = "toc"
)

// Option is a renderer flag. Value is nil for boolean flags.
type Option struct {
	Name  string  `json:"name" yaml:"name"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Page is one document to render. Non-TOC pages need HTMLURL or HTMLBase64.
type Page struct {
	PageType   PageType `json:"page_type" yaml:"page_type"`
	HTMLURL    *string  `json:"html_url,omitempty" yaml:"html_url,omitempty"`
	HTMLBase64 *string  `json:"html_base64,omitempty" yaml:"html_base64,omitempty"`
	Options    []Option `json:"options,omitempty" yaml:"options,omitempty"`
}

// StorageTarget is where the rendered PDF is written.
type StorageTarget struct {
	Bucket    string  `json:"bucket" yaml:"bucket"`
	ObjectKey string  `json:"object_key" yaml:"object_key"`
	Region    *string `json:"region,omitempty" yaml:"region,omitempty"`
	// Provider is "s3" or "gcs"; empty uses the configured default.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// PdfRequest is the input for the html-to-pdf function.
type PdfRequest struct {
	Pages   []Page        `json:"pages" yaml:"pages"`
	Options []Option      `json:"options,omitempty" yaml:"options,omitempty"`
	Output  StorageTarget `json:"output" yaml:"output"`
}

// PdfResponse is the output of the html-to-pdf function.
type PdfResponse struct {
	Success  bool     `json:"success"`
	Messages []string `json:"messages"`
}

// NewFailureResponse builds a non-success response carrying the given messages.
func NewFailureResponse(messages ...string) *PdfResponse {
	if messages == nil {
		messages = []string{}
	}
	return &PdfResponse{Success: false, Messages: messages}
}

// PubSubMessage is the envelope of a Pub/Sub CloudEvent. Data holds the
// JSON encoded PdfRequest.
type PubSubMessage struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes,omitempty"`
		MessageID  string            `json:"messageId,omitempty"`
	} `json:"message"`
	Subscription string `json:"subscription,omitempty"`
}

// String returns a pointer to s. Handy for optional request fields.
func String(s string) *string {
	return &s
}

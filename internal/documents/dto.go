package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID   string     `json:"documentId"`
	FileName     string     `json:"fileName"`
	FileType     string     `json:"fileType"`
	MimeType     string     `json:"mimeType"`
	SizeBytes    int64      `json:"sizeBytes"`
	Processed    bool       `json:"processed"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	Analysis     any        `json:"analysis,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:   doc.ID,
		FileName:     doc.FileName,
		FileType:     string(doc.FileType),
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		Processed:    doc.Processed,
		ProcessedAt:  doc.ProcessedAt,
		ErrorMessage: doc.ErrorMessage,
		UploadedAt:   doc.CreatedAt,
	}
}

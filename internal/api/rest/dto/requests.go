package dto

// AttachmentPayload is one inline attachment in a JSON submission
type AttachmentPayload struct {
	FileName string `json:"filename"`
	// Content is the base64-encoded file body
	Content string `json:"content"`
}

// CreateEmailRequest is the body of POST /api/v1/emails. Attachments arrive
// either as multipart file parts or inline as base64 payloads.
type CreateEmailRequest struct {
	SenderName  string              `form:"sender_name" json:"sender_name"`
	Recipient   string              `form:"recipient" json:"recipient"`
	Subject     string              `form:"subject" json:"subject"`
	Body        string              `form:"body" json:"body"`
	EmailType   string              `form:"email_type" json:"email_type"`
	Attachments []AttachmentPayload `form:"-" json:"attachments"`
}

// CreateDocumentRequest is the body of POST /api/v1/documents
type CreateDocumentRequest struct {
	SenderName  string              `form:"sender_name" json:"sender_name"`
	DocType     string              `form:"doc_type" json:"doc_type"`
	Subject     string              `form:"subject" json:"subject"`
	Direction   string              `form:"direction" json:"direction"`
	Remarks     string              `form:"remarks" json:"remarks"`
	ForwardedTo string              `form:"forwarded_to" json:"forwarded_to"`
	COF         string              `form:"cof" json:"cof"`
	Attachments []AttachmentPayload `form:"-" json:"attachments"`
}

// UpdateStatusRequest is the body of PUT /api/v1/status
type UpdateStatusRequest struct {
	RecordType  string `form:"record_type" json:"record_type"`
	RecordID    int64  `form:"record_id" json:"record_id"`
	Status      string `form:"status" json:"status"`
	Direction   string `form:"direction" json:"direction"`
	ForwardedTo string `form:"forwarded_to" json:"forwarded_to"`
	COF         string `form:"cof" json:"cof"`
	Remarks     string `form:"remarks" json:"remarks"`
	UpdatedBy   string `form:"updated_by" json:"updated_by"`
}

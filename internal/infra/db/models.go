package db

import "time"

type RequestModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Title        string    `gorm:"not null"`
	SourcePDFRef string    `gorm:"column:source_pdf_ref;not null"`
	SignedPDFRef string    `gorm:"column:signed_pdf_ref"`
	Status       string    `gorm:"index;not null"`
	PublicToken  string    `gorm:"uniqueIndex;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (RequestModel) TableName() string {
	return "signature_requests"
}

type FieldModel struct {
	ID         string  `gorm:"type:uuid;primaryKey"`
	RequestID  string  `gorm:"type:uuid;index;not null"`
	PageNumber int     `gorm:"not null"`
	X          float64 `gorm:"not null"`
	Y          float64 `gorm:"not null"`
	Width      float64 `gorm:"not null"`
	Height     float64 `gorm:"not null"`
	Kind       string  `gorm:"not null"`
	Label      string
}

func (FieldModel) TableName() string {
	return "signature_fields"
}

type FieldImageModel struct {
	FieldID     string    `gorm:"type:uuid;primaryKey"`
	RequestID   string    `gorm:"type:uuid;index;not null"`
	PNG         []byte    `gorm:"column:png;type:bytea;not null"`
	SignerName  string    `gorm:"not null"`
	SignerEmail string    `gorm:"not null"`
	SignerIP    string    `gorm:"column:signer_ip;not null"`
	CapturedAt  time.Time `gorm:"not null"`
}

func (FieldImageModel) TableName() string {
	return "field_signature_images"
}

type AuditEventModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	RequestID   string `gorm:"type:uuid;index;not null"`
	EventType   string `gorm:"column:event_type;not null"`
	PayloadJSON []byte `gorm:"type:jsonb"`
	ActorType   string `gorm:"not null"`
	ActorIDHash string
	TargetType  string `gorm:"not null"`
	TargetID    string
	Result      string `gorm:"not null"`
	ErrorCode   string
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (AuditEventModel) TableName() string {
	return "audit_events"
}

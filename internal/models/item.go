package models

import "time"

// Item represents a product owned by a store.
type Item struct {
	ID          int64     `json:"item_id" gorm:"primaryKey;autoIncrement"`
	StoreID     string    `json:"store_id,omitempty" gorm:"index;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(100)"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	ImageURL    *string   `json:"image_url"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// ItemFields holds the mutable fields of an item as sent on create and update.
// ImageURL is encoded as null when no image has been uploaded.
type ItemFields struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	ImageURL    *string `json:"image_url"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

// Fields returns the mutable fields of the item.
func (i Item) Fields() ItemFields {
	return ItemFields{
		Name:        i.Name,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Quantity:    i.Quantity,
		Price:       i.Price,
	}
}

// WithFields returns a copy of the item with its mutable fields replaced.
func (i Item) WithFields(f ItemFields) Item {
	i.Name = f.Name
	i.Description = f.Description
	i.ImageURL = f.ImageURL
	i.Quantity = f.Quantity
	i.Price = f.Price
	return i
}

// ImageFile is an image selected for upload but not yet sent.
type ImageFile struct {
	Name string
	Data []byte
}

// UploadResult is the response of the file upload endpoint.
type UploadResult struct {
	URL string `json:"url"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package models

// DraftMode tells whether a draft creates a new item or edits an existing one.
type DraftMode int

const (
	DraftCreate DraftMode = iota
	DraftEdit
)

func (m DraftMode) String() string {
	if m == DraftEdit {
		return "edit"
	}
	return "create"
}

// Draft is the locally edited form of an item before it is submitted.
// Price is nil until a value has been entered.
type Draft struct {
	Mode        DraftMode
	EditingID   int64    // set in edit mode only
	Name        string   `json:"name" validate:"notblank"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"image_url"` // image of the item being edited
	Quantity    int      `json:"quantity"`
	Price       *float64 `json:"price" validate:"required,gt=0"`
}

// NewDraft returns an empty create-mode draft.
func NewDraft() Draft {
	return Draft{Mode: DraftCreate}
}

// DraftFromItem returns an edit-mode draft pre-populated from item.
func DraftFromItem(item Item) Draft {
	price := item.Price
	return Draft{
		Mode:        DraftEdit,
		EditingID:   item.ID,
		Name:        item.Name,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Quantity:    item.Quantity,
		Price:       &price,
	}
}

// Fields returns the fields to send for this draft with imageURL attached.
func (d Draft) Fields(imageURL *string) ItemFields {
	f := ItemFields{
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    imageURL,
		Quantity:    d.Quantity,
	}
	if d.Price != nil {
		f.Price = *d.Price
	}
	return f
}

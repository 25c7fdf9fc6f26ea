package models

import "strings"

// Agent is the contact block printed in the flyer footer and share page.
type Agent struct {
	Name      string `json:"name"`
	Brokerage string `json:"brokerage"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	LogoURL   string `json:"logoUrl"`
}

// Listing is the unit of persistence: one property's marketing content
// plus the metadata needed to render it.
//
// Every field except ID and CreatedAt is optional. All of them are plain
// strings that default to "" so the persisted JSON never contains null;
// price, beds etc. stay in whatever raw form the client sent them.
type Listing struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`

	Tone        string `json:"tone"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Price     string `json:"price"`
	Beds      string `json:"beds"`
	Baths     string `json:"baths"`
	Sqft      string `json:"sqft"`
	YearBuilt string `json:"yearBuilt"`
	Features  string `json:"features"`

	// DescriptionInput keeps the raw notes the user fed to the copywriter.
	DescriptionInput string `json:"descriptionInput"`

	// ImageURL is either a blob-store reference (/uploads/...) or an
	// external URL. Only blob references are inlined into documents.
	ImageURL string `json:"imageUrl"`

	Agent Agent `json:"agent"`
}

// AddressLine composes the single-line location used in document headers.
func (l *Listing) AddressLine() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Address, l.City, l.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

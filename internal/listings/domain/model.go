package domain

import "errors"

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNotOwner         = errors.New("not the property owner")
	ErrListingBlocked   = errors.New("trust score too low to list")
)

const (
	TypeSale = "sale"
	TypeRent = "rent"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Property is a real-estate listing document.
type Property struct {
	ID          string   `firestore:"-" json:"id"`
	Title       string   `firestore:"title" json:"title"`
	Price       float64  `firestore:"price" json:"price"`
	Location    string   `firestore:"location" json:"location"`
	Type        string   `firestore:"type" json:"type"`
	Category    string   `firestore:"category" json:"category"`
	Status      string   `firestore:"status" json:"status"`
	Bedrooms    int      `firestore:"bedrooms" json:"bedrooms"`
	Bathrooms   int      `firestore:"bathrooms" json:"bathrooms"`
	Area        float64  `firestore:"area" json:"area"`
	Description string   `firestore:"description" json:"description"`
	ImageURL    string   `firestore:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Images      []string `firestore:"images,omitempty" json:"images,omitempty"`
	UserID      string   `firestore:"userId" json:"userId"`
	Username    string   `firestore:"username" json:"username"`
	SellerName  string   `firestore:"sellerName" json:"sellerName"`
	Views       int64    `firestore:"views" json:"views"`
	CreatedAt   int64    `firestore:"createdAt" json:"createdAt"`
	Verified    bool     `firestore:"verified" json:"verified"`
	Rating      float64  `firestore:"rating" json:"rating"`
	ReviewCount int64    `firestore:"reviewCount" json:"reviewCount"`
	Latitude    float64  `firestore:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude   float64  `firestore:"longitude,omitempty" json:"longitude,omitempty"`
}

// Filter narrows a listing query. Zero values mean "any".
type Filter struct {
	Type        string
	Category    string
	MinPrice    float64
	MaxPrice    float64
	MinBedrooms int
	Search      string
	SortBy      string // newest | price_asc | price_desc | views
	Page        int
	PageSize    int
}
